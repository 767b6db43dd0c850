package settings

import "sort"

// Snapshot is an immutable copy of the stored raw values of every catalog
// option that has a key. Absent options are simply missing.
type Snapshot struct {
	ID         string
	Generation uint64
	raw        map[string]string
}

// NewSnapshot builds a snapshot from raw values. Intended for tests and for
// resolving hypothetical states without a store.
func NewSnapshot(raw map[string]string) Snapshot {
	cloned := make(map[string]string, len(raw))
	for k, v := range raw {
		cloned[k] = v
	}
	return Snapshot{raw: cloned}
}

// Raw returns the stored string for id.
func (s Snapshot) Raw(id string) (string, bool) {
	v, ok := s.raw[id]
	return v, ok
}

// Keys lists present keys sorted lexically.
func (s Snapshot) Keys() []string {
	keys := make([]string, 0, len(s.raw))
	for k := range s.raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of present keys.
func (s Snapshot) Len() int {
	return len(s.raw)
}

// apply returns a copy of s with writes applied.
func (s Snapshot) apply(writes []Write) Snapshot {
	next := Snapshot{ID: s.ID, Generation: s.Generation, raw: make(map[string]string, len(s.raw))}
	for k, v := range s.raw {
		next.raw[k] = v
	}
	for _, w := range writes {
		if w.Remove {
			delete(next.raw, w.ID)
			continue
		}
		next.raw[w.ID] = w.Raw
	}
	return next
}
