package viewer

// CameraState is the orbit camera pose in a snapshot.
type CameraState struct {
	Target     [3]float32 `json:"target"`
	Distance   float32    `json:"distance"`
	Azimuth    float32    `json:"azimuth"`
	Polar      float32    `json:"polar"`
	AutoRotate bool       `json:"auto_rotate"`
}

// CardState is the info card in a snapshot.
type CardState struct {
	Visible bool     `json:"visible"`
	X       float32  `json:"x"`
	Y       float32  `json:"y"`
	Lines   []string `json:"lines,omitempty"`
}

// Snapshot is a self-contained copy of the session state for remote
// clients. It shares no memory with the session.
type Snapshot struct {
	Model       string      `json:"model"`
	ModelName   string      `json:"model_name"`
	Parts       []string    `json:"parts"`
	Highlighted string      `json:"highlighted,omitempty"`
	Exploded    bool        `json:"exploded"`
	Animations  int         `json:"animations"`
	Clips       []string    `json:"clips,omitempty"`
	Orientation [4]float32  `json:"orientation"`
	Camera      CameraState `json:"camera"`
	Card        CardState   `json:"card"`
	FPS         int         `json:"fps"`
	Static      bool        `json:"static"`
}

// Snapshot captures the current state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Model:      s.entry.ID,
		ModelName:  s.entry.Name,
		Parts:      s.Phone.PartNames(),
		Exploded:   s.Explode.Exploded(),
		Animations: s.Anims.ActiveCount(),
		Clips:      s.Clips(),
		Camera: CameraState{
			Target:     [3]float32{s.Camera.Target.X, s.Camera.Target.Y, s.Camera.Target.Z},
			Distance:   s.Camera.Distance,
			Azimuth:    s.Camera.Azimuth,
			Polar:      s.Camera.Polar,
			AutoRotate: s.AutoRotate.Enabled(),
		},
		FPS:    s.lastFrame.FPS,
		Static: s.lastFrame.Static,
	}
	if n := s.Phone.Highlighted(); n != nil {
		snap.Highlighted = n.Name
	}
	if m := s.Phone.Current(); m != nil {
		q := m.Root.Rotation
		snap.Orientation = [4]float32{q.X, q.Y, q.Z, q.W}
	}
	if s.Card.Visible() {
		pos := s.Card.Position()
		snap.Card = CardState{Visible: true, X: pos.X, Y: pos.Y, Lines: s.Card.Lines()}
	}
	return snap
}
