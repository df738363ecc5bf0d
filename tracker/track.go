package tracker

import "sort"

// Key is a single keyframe on a track.
type Key struct {
	Row   uint32  `yaml:"row"`
	Value float32 `yaml:"value"`
}

// Track is a named list of keys ordered by strictly increasing row.
type Track struct {
	Name string `yaml:"name"`
	Keys []Key  `yaml:"keys"`
}

// Value returns the key stored exactly at row.
func (t *Track) Value(row uint32) (float32, bool) {
	i, ok := t.find(row)
	if !ok {
		return 0, false
	}
	return t.Keys[i].Value, true
}

// Held returns the value of the last key at or before row.
func (t *Track) Held(row uint32) (float32, bool) {
	i := sort.Search(len(t.Keys), func(i int) bool { return t.Keys[i].Row > row })
	if i == 0 {
		return 0, false
	}
	return t.Keys[i-1].Value, true
}

func (t *Track) set(row uint32, value float32) {
	i, ok := t.find(row)
	if ok {
		t.Keys[i].Value = value
		return
	}
	t.Keys = append(t.Keys, Key{})
	copy(t.Keys[i+1:], t.Keys[i:])
	t.Keys[i] = Key{Row: row, Value: value}
}

func (t *Track) find(row uint32) (int, bool) {
	i := sort.Search(len(t.Keys), func(i int) bool { return t.Keys[i].Row >= row })
	return i, i < len(t.Keys) && t.Keys[i].Row == row
}

func (t *Track) clone() Track {
	keys := make([]Key, len(t.Keys))
	copy(keys, t.Keys)
	return Track{Name: t.Name, Keys: keys}
}
