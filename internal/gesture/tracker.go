package gesture

import "github.com/Faultbox/phoneview/pkg/math"

// Tracker keeps the ordered list of active contacts keyed by finger id, in
// the order they went down. Touch backends report fingers one at a time;
// the recognizer wants the whole set.
type Tracker struct {
	ids []int64
	pos map[int64]math.Vec2
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{pos: make(map[int64]math.Vec2)}
}

// Down adds or repositions a contact and returns the active set.
func (t *Tracker) Down(id int64, p math.Vec2) []math.Vec2 {
	if _, ok := t.pos[id]; !ok {
		t.ids = append(t.ids, id)
	}
	t.pos[id] = p
	return t.Points()
}

// Move repositions a known contact. ok is false for unknown ids.
func (t *Tracker) Move(id int64, p math.Vec2) (points []math.Vec2, ok bool) {
	if _, ok := t.pos[id]; !ok {
		return nil, false
	}
	t.pos[id] = p
	return t.Points(), true
}

// Up removes a contact and returns the contacts still down.
func (t *Tracker) Up(id int64) []math.Vec2 {
	if _, ok := t.pos[id]; ok {
		delete(t.pos, id)
		for i, v := range t.ids {
			if v == id {
				t.ids = append(t.ids[:i], t.ids[i+1:]...)
				break
			}
		}
	}
	return t.Points()
}

// Points returns the active contacts in down order.
func (t *Tracker) Points() []math.Vec2 {
	out := make([]math.Vec2, 0, len(t.ids))
	for _, id := range t.ids {
		out = append(out, t.pos[id])
	}
	return out
}

// Len returns the number of active contacts.
func (t *Tracker) Len() int {
	return len(t.ids)
}

// Reset forgets every contact.
func (t *Tracker) Reset() {
	t.ids = t.ids[:0]
	clear(t.pos)
}
