package animation

import "github.com/Faultbox/phoneview/pkg/math"

// Path is the node property a track animates.
type Path int

const (
	PathTranslation Path = iota
	PathRotation
	PathScale
)

func (p Path) String() string {
	switch p {
	case PathTranslation:
		return "translation"
	case PathRotation:
		return "rotation"
	case PathScale:
		return "scale"
	default:
		return "unknown"
	}
}

// ClipTarget receives sampled poses by node name. It reports false for
// names it does not know.
type ClipTarget interface {
	SetTranslation(node string, v math.Vec3) bool
	SetRotation(node string, q math.Quat) bool
	SetScale(node string, v math.Vec3) bool
}

// Vec3Key is a translation or scale keyframe. Time is in seconds.
type Vec3Key struct {
	Time  float32
	Value math.Vec3
}

// QuatKey is a rotation keyframe. Time is in seconds.
type QuatKey struct {
	Time  float32
	Value math.Quat
}

// Track animates one property of one node. Only the key slice matching
// Path is used. Keys must be sorted by time.
type Track struct {
	Node string
	Path Path
	Step bool // hold each key until the next instead of interpolating

	Vec3Keys []Vec3Key
	QuatKeys []QuatKey
}

// Clip is a named set of tracks, as authored in the model file.
type Clip struct {
	Name     string
	Duration float32 // seconds
	Tracks   []Track
}

// NewClip builds a clip whose duration is the last key time of any track.
func NewClip(name string, tracks []Track) *Clip {
	c := &Clip{Name: name, Tracks: tracks}
	for i := range tracks {
		c.Duration = max(c.Duration, tracks[i].end())
	}
	return c
}

// Apply writes the pose at time t (seconds) to target.
func (c *Clip) Apply(target ClipTarget, t float32) {
	for i := range c.Tracks {
		tr := &c.Tracks[i]
		switch tr.Path {
		case PathTranslation:
			if len(tr.Vec3Keys) > 0 {
				target.SetTranslation(tr.Node, tr.sampleVec3(t))
			}
		case PathScale:
			if len(tr.Vec3Keys) > 0 {
				target.SetScale(tr.Node, tr.sampleVec3(t))
			}
		case PathRotation:
			if len(tr.QuatKeys) > 0 {
				target.SetRotation(tr.Node, tr.sampleQuat(t))
			}
		}
	}
}

func (tr *Track) end() float32 {
	if tr.Path == PathRotation {
		if n := len(tr.QuatKeys); n > 0 {
			return tr.QuatKeys[n-1].Time
		}
		return 0
	}
	if n := len(tr.Vec3Keys); n > 0 {
		return tr.Vec3Keys[n-1].Time
	}
	return 0
}

// span finds the keys surrounding t and the blend factor between them.
func span(n int, at func(int) float32, t float32, step bool) (prev, next int, alpha float32) {
	for i := 0; i < n; i++ {
		if at(i) > t {
			next = i
			break
		}
		prev = i
		next = i
	}
	if prev == next || step {
		return prev, prev, 0
	}
	if d := at(next) - at(prev); d > 0 {
		alpha = (t - at(prev)) / d
	}
	return prev, next, alpha
}

func (tr *Track) sampleVec3(t float32) math.Vec3 {
	keys := tr.Vec3Keys
	prev, next, alpha := span(len(keys), func(i int) float32 { return keys[i].Time }, t, tr.Step)
	return keys[prev].Value.Lerp(keys[next].Value, alpha)
}

func (tr *Track) sampleQuat(t float32) math.Quat {
	keys := tr.QuatKeys
	prev, next, alpha := span(len(keys), func(i int) float32 { return keys[i].Time }, t, tr.Step)
	if prev == next {
		return keys[prev].Value
	}
	return keys[prev].Value.Slerp(keys[next].Value, alpha)
}
