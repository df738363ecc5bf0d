package scene

import "github.com/milk9111/usch/timeline"

// Sequence is the ordered list of scenes making up a production.
type Sequence []Scene

// Active returns the index of the scene showing at t and the time since that
// scene started. ok is false once t is past the end of the production.
// Zero-length scenes are never active.
func (s Sequence) Active(t timeline.Time) (index int, local timeline.Time, ok bool) {
	for i := range s {
		d := s[i].Duration
		if t.Before(d) {
			return i, t, true
		}
		t = t.Sub(d)
	}
	return -1, timeline.Time{}, false
}

// Start returns the global time at which scene i begins.
func (s Sequence) Start(i int) timeline.Time {
	var t timeline.Time
	for _, sc := range s[:i] {
		t = t.Add(sc.Duration)
	}
	return t
}

// Duration is the length of the whole production.
func (s Sequence) Duration() timeline.Time {
	return s.Start(len(s))
}
