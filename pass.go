package settings

import "time"

// Pass is the working state of one evaluation of the rule set. Reads come
// from the immutable snapshot the pass started with; visibility and the other
// entry fields accumulate as rules run, later rules overwriting earlier ones.
type Pass struct {
	catalog    *Catalog
	snapshot   Snapshot
	values     map[string]Value
	present    map[string]bool
	entries    map[string]*Entry
	writes     map[string]Write
	writeOrder []string
	locks      map[string]string
	capability Capability
	parked     bool
	changed    string
	number     int
	logger     EvaluatorLogger
	engine     string
}

func newPass(r *Resolver, snapshot Snapshot, in Input, number int) *Pass {
	p := &Pass{
		catalog:    r.catalog,
		snapshot:   snapshot,
		values:     make(map[string]Value, r.catalog.Len()),
		present:    make(map[string]bool, r.catalog.Len()),
		entries:    make(map[string]*Entry, r.catalog.Len()),
		writes:     map[string]Write{},
		locks:      map[string]string{},
		capability: in.Capability,
		parked:     in.Parked,
		changed:    in.Changed,
		number:     number,
		logger:     r.cfg.logger,
		engine:     evaluatorEngineName(r.cfg.evaluator),
	}
	for _, id := range r.catalog.order {
		d := r.catalog.byID[id]
		raw, ok := snapshot.Raw(id)
		v, source := decode(d, raw, ok)
		p.values[id] = v
		p.present[id] = ok
		p.entries[id] = &Entry{
			ID:      id,
			Visible: true,
			Enabled: true,
			Value:   v,
			Source:  source,
		}
	}
	return p
}

// Value returns the snapshot value of id.
func (p *Pass) Value(id string) Value {
	return p.values[id]
}

// Bool returns the snapshot value of id as a boolean.
func (p *Pass) Bool(id string) bool {
	return p.values[id].Bool()
}

// Int returns the snapshot value of id as an integer.
func (p *Pass) Int(id string) int {
	return p.values[id].Int
}

// Present reports whether the snapshot holds a key for id.
func (p *Pass) Present(id string) bool {
	return p.present[id]
}

// Visible reports the visibility accumulated so far in this pass.
func (p *Pass) Visible(id string) bool {
	e, ok := p.entries[id]
	return ok && e.Visible
}

// Capability returns the vehicle capability snapshot.
func (p *Pass) Capability() Capability {
	return p.capability
}

// Parked reports whether the vehicle is parked.
func (p *Pass) Parked() bool {
	return p.parked
}

// Changed is the option the operator just mutated, if any.
func (p *Pass) Changed() string {
	return p.changed
}

// Number is the 1-based settle iteration.
func (p *Pass) Number() int {
	return p.number
}

// Show marks ids visible.
func (p *Pass) Show(ids ...string) {
	for _, id := range ids {
		if e, ok := p.entries[id]; ok {
			e.Visible = true
		}
	}
}

// Hide marks ids hidden.
func (p *Pass) Hide(ids ...string) {
	for _, id := range ids {
		if e, ok := p.entries[id]; ok {
			e.Visible = false
		}
	}
}

// Disable marks ids as not accepting input.
func (p *Pass) Disable(reason string, ids ...string) {
	for _, id := range ids {
		if e, ok := p.entries[id]; ok {
			e.Enabled = false
			e.Reason = reason
		}
	}
}

// Force pins id to v and records the write needed to persist it.
func (p *Pass) Force(id string, v Value) {
	e, ok := p.entries[id]
	if !ok {
		return
	}
	e.Value = v
	e.Source = SourceForced
	p.record(Write{ID: id, Raw: v.Raw()})
}

// Remove records deletion of id's key; the entry falls back to its default.
func (p *Pass) Remove(id string) {
	e, ok := p.entries[id]
	if !ok {
		return
	}
	d := p.catalog.byID[id]
	e.Value = d.DefaultValue()
	e.Source = SourceForced
	p.record(Write{ID: id, Remove: true})
}

// Lock disables id and rejects operator writes to it.
func (p *Pass) Lock(id, reason string) {
	e, ok := p.entries[id]
	if !ok {
		return
	}
	e.Enabled = false
	e.Locked = true
	e.Reason = reason
	p.locks[id] = reason
}

// Context builds the expression context for rule.
func (p *Pass) Context(rule string) RuleContext {
	values := make(map[string]any, len(p.values))
	for id, v := range p.values {
		values[id] = v.Native()
	}
	return RuleContext{
		Values:     values,
		Capability: p.capability.binding(),
		Parked:     p.parked,
		Changed:    p.changed,
		Rule:       rule,
	}
}

func (p *Pass) evaluate(rule string, expression string, program CompiledRule) (bool, error) {
	start := time.Now()
	result, err := program.Evaluate(p.Context(rule))
	var value bool
	if err == nil {
		value, err = asBool(p.engine, expression, result)
	}
	p.logger.LogEvaluation(EvaluatorLogEvent{
		Engine:   p.engine,
		Expr:     expression,
		Rule:     rule,
		Duration: time.Since(start),
		Err:      err,
	})
	return value, err
}

func (p *Pass) record(w Write) {
	if _, seen := p.writes[w.ID]; !seen {
		p.writeOrder = append(p.writeOrder, w.ID)
	}
	p.writes[w.ID] = w
}

// pending returns the recorded writes that would change the snapshot.
func (p *Pass) pending() []Write {
	var out []Write
	for _, id := range p.writeOrder {
		w := p.writes[id]
		raw, ok := p.snapshot.Raw(id)
		if w.Remove && !ok {
			continue
		}
		if !w.Remove && ok && raw == w.Raw {
			continue
		}
		if !w.Remove && !ok && w.Raw == p.catalog.byID[id].DefaultValue().Raw() {
			continue
		}
		out = append(out, w)
	}
	return out
}

func (p *Pass) projection(origin Snapshot, settled Snapshot) *Projection {
	proj := &Projection{
		Generation: origin.Generation,
		SnapshotID: origin.ID,
		Locks:      make(map[string]string, len(p.locks)),
		Passes:     p.number,
		entries:    make(map[string]Entry, len(p.entries)),
		order:      append([]string(nil), p.catalog.order...),
	}
	for id, reason := range p.locks {
		proj.Locks[id] = reason
	}
	for _, id := range p.catalog.order {
		e := *p.entries[id]
		e.Display = p.catalog.byID[id].Display(e.Value)
		proj.entries[id] = e

		before, hadBefore := origin.Raw(id)
		after, hasAfter := settled.Raw(id)
		switch {
		case hadBefore && !hasAfter:
			proj.Writes = append(proj.Writes, Write{ID: id, Remove: true})
		case hasAfter && (!hadBefore || before != after):
			proj.Writes = append(proj.Writes, Write{ID: id, Raw: after})
		}
	}
	return proj
}
