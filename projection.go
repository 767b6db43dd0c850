package settings

// Source records where an entry's effective value came from.
type Source string

const (
	// SourceDefault means the key was absent and the descriptor default applies.
	SourceDefault Source = "default"
	// SourceStored means the stored value was in domain.
	SourceStored Source = "stored"
	// SourceCoerced means the stored value was moved to the nearest legal value.
	SourceCoerced Source = "coerced"
	// SourceForced means a rule pinned the value.
	SourceForced Source = "forced"
)

// Reasons attached to disabled entries.
const (
	ReasonUnsupported = "unsupported by selected vehicle"
	ReasonDriving     = "unavailable while driving"
	ReasonExclusive   = "another option in the group is on"
)

// Entry is the projected state of one option.
type Entry struct {
	ID      string
	Visible bool
	Enabled bool
	Value   Value
	Display string
	Source  Source
	Reason  string
	Locked  bool
}

// Write is a store mutation a resolution requires. Remove deletes the key;
// otherwise Raw is stored.
type Write struct {
	ID     string
	Raw    string
	Remove bool
}

// Projection is the full derived view of every option for one snapshot. It is
// recomputed from scratch on every resolution and never mutated afterwards.
type Projection struct {
	// Generation is the store generation of the snapshot the projection was
	// computed from.
	Generation uint64
	SnapshotID string
	// Writes lists the store mutations needed to reach the settled state, in
	// catalog order.
	Writes []Write
	// Locks maps locked option ids to the reason.
	Locks map[string]string
	// Passes counts the settle iterations used.
	Passes int

	entries map[string]Entry
	order   []string
}

// Entry returns the projected state of id.
func (p *Projection) Entry(id string) (Entry, bool) {
	if p == nil {
		return Entry{}, false
	}
	e, ok := p.entries[id]
	return e, ok
}

// Visible reports whether id should be shown.
func (p *Projection) Visible(id string) bool {
	e, ok := p.Entry(id)
	return ok && e.Visible
}

// Enabled reports whether id accepts operator input.
func (p *Projection) Enabled(id string) bool {
	e, ok := p.Entry(id)
	return ok && e.Enabled
}

// Bool returns the effective boolean value of id.
func (p *Projection) Bool(id string) bool {
	e, _ := p.Entry(id)
	return e.Value.Bool()
}

// Int returns the effective integer value of id.
func (p *Projection) Int(id string) int {
	e, _ := p.Entry(id)
	return e.Value.Int
}

// Entries lists every entry in catalog order.
func (p *Projection) Entries() []Entry {
	if p == nil {
		return nil
	}
	out := make([]Entry, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.entries[id])
	}
	return out
}

// Len returns the number of entries.
func (p *Projection) Len() int {
	if p == nil {
		return 0
	}
	return len(p.order)
}

// Settled reports whether the snapshot already satisfied every rule.
func (p *Projection) Settled() bool {
	return p != nil && len(p.Writes) == 0
}

func decode(d Descriptor, raw string, present bool) (Value, Source) {
	if !present || raw == "" {
		return d.DefaultValue(), SourceDefault
	}
	v, coerced := d.Coerce(raw)
	if coerced {
		return v, SourceCoerced
	}
	return v, SourceStored
}
