package settings

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule is one declarative dependency. Rules are bound once against a catalog
// and evaluator, then applied in declaration order on every pass.
type Rule interface {
	// Name identifies the rule in logs and errors.
	Name() string
	// Triggers lists the options whose values the rule reads.
	Triggers() []string
	// Targets lists the options the rule may affect.
	Targets() []string
	// Bind validates ids and compiles expressions, returning a ready copy.
	Bind(catalog *Catalog, evaluator Evaluator) (Rule, error)
	// Apply writes the rule's effect into pass.
	Apply(pass *Pass) error
}

// CascadeRule hides children while the parent is off or hidden.
type CascadeRule struct {
	parent   string
	children []string
	clear    bool
}

// Cascade declares children visible only while parent is on and visible.
func Cascade(parent string, children ...string) *CascadeRule {
	return &CascadeRule{parent: parent, children: append([]string(nil), children...)}
}

// ClearWhenHidden additionally forces hidden children to off (booleans) or
// their default (everything else).
func (r *CascadeRule) ClearWhenHidden() *CascadeRule {
	clone := *r
	clone.clear = true
	return &clone
}

func (r *CascadeRule) Name() string {
	return "cascade(" + r.parent + ")"
}

func (r *CascadeRule) Triggers() []string { return []string{r.parent} }

func (r *CascadeRule) Targets() []string { return append([]string(nil), r.children...) }

func (r *CascadeRule) Bind(catalog *Catalog, _ Evaluator) (Rule, error) {
	if len(r.children) == 0 {
		return nil, fmt.Errorf("settings: %s: no children", r.Name())
	}
	if err := catalog.requireAll(r.Name(), append([]string{r.parent}, r.children...)...); err != nil {
		return nil, err
	}
	clone := *r
	return &clone, nil
}

func (r *CascadeRule) Apply(pass *Pass) error {
	if pass.Bool(r.parent) && pass.Visible(r.parent) {
		return nil
	}
	pass.Hide(r.children...)
	if !r.clear {
		return nil
	}
	for _, child := range r.children {
		d := pass.catalog.byID[child]
		if d.Kind == KindBool {
			pass.Force(child, BoolValue(false))
			continue
		}
		pass.Force(child, d.DefaultValue())
	}
	return nil
}

var identifierPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// ShowWhenRule sets the visibility of children from a boolean expression over
// option values, capability, parked and changed.
type ShowWhenRule struct {
	expression string
	children   []string
	triggers   []string
	program    CompiledRule
}

// ShowWhen declares children visible exactly when expression is true.
func ShowWhen(expression string, children ...string) *ShowWhenRule {
	return &ShowWhenRule{expression: strings.TrimSpace(expression), children: append([]string(nil), children...)}
}

func (r *ShowWhenRule) Name() string {
	return "show_when(" + r.expression + ")"
}

func (r *ShowWhenRule) Triggers() []string { return append([]string(nil), r.triggers...) }

func (r *ShowWhenRule) Targets() []string { return append([]string(nil), r.children...) }

func (r *ShowWhenRule) Bind(catalog *Catalog, evaluator Evaluator) (Rule, error) {
	if r.expression == "" {
		return nil, fmt.Errorf("settings: show_when: expression must not be empty")
	}
	if len(r.children) == 0 {
		return nil, fmt.Errorf("settings: %s: no children", r.Name())
	}
	if err := catalog.requireAll(r.Name(), r.children...); err != nil {
		return nil, err
	}
	if evaluator == nil {
		return nil, fmt.Errorf("settings: %s: evaluator is required", r.Name())
	}
	program, err := compileFor(catalog, evaluator, r.expression)
	if err != nil {
		return nil, wrapEvaluatorError(evaluatorEngineName(evaluator), err)
	}
	clone := *r
	clone.program = program
	clone.triggers = referencedOptions(catalog, r.expression)
	return &clone, nil
}

func (r *ShowWhenRule) Apply(pass *Pass) error {
	if r.program == nil {
		return fmt.Errorf("settings: %s: rule not bound", r.Name())
	}
	show, err := pass.evaluate(r.Name(), r.expression, r.program)
	if err != nil {
		return err
	}
	if show {
		pass.Show(r.children...)
	} else {
		pass.Hide(r.children...)
	}
	return nil
}

func referencedOptions(catalog *Catalog, expression string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, ident := range identifierPattern.FindAllString(expression, -1) {
		if _, dup := seen[ident]; dup || !catalog.Has(ident) {
			continue
		}
		seen[ident] = struct{}{}
		out = append(out, ident)
	}
	return out
}

// ExclusiveRule keeps at most one boolean member on.
type ExclusiveRule struct {
	members []string
	disable bool
}

// Exclusive declares members mutually exclusive. The member the operator just
// changed wins; otherwise the earliest declared member that is on wins.
func Exclusive(members ...string) *ExclusiveRule {
	return &ExclusiveRule{members: append([]string(nil), members...)}
}

// DisableLosers additionally disables every other member while one is on, so
// the operator has to turn the winner off before switching.
func (r *ExclusiveRule) DisableLosers() *ExclusiveRule {
	clone := *r
	clone.disable = true
	return &clone
}

func (r *ExclusiveRule) Name() string {
	return "exclusive(" + strings.Join(r.members, ",") + ")"
}

func (r *ExclusiveRule) Triggers() []string { return append([]string(nil), r.members...) }

func (r *ExclusiveRule) Targets() []string { return append([]string(nil), r.members...) }

func (r *ExclusiveRule) Bind(catalog *Catalog, _ Evaluator) (Rule, error) {
	if len(r.members) < 2 {
		return nil, fmt.Errorf("settings: %s: needs at least two members", r.Name())
	}
	if err := catalog.requireAll(r.Name(), r.members...); err != nil {
		return nil, err
	}
	for _, id := range r.members {
		if d := catalog.byID[id]; d.Kind != KindBool {
			return nil, fmt.Errorf("settings: %s: member %q is not boolean", r.Name(), id)
		}
	}
	clone := *r
	return &clone, nil
}

func (r *ExclusiveRule) Apply(pass *Pass) error {
	winner := ""
	if changed := pass.Changed(); changed != "" && pass.Bool(changed) {
		for _, id := range r.members {
			if id == changed {
				winner = id
				break
			}
		}
	}
	if winner == "" {
		for _, id := range r.members {
			if pass.Bool(id) {
				winner = id
				break
			}
		}
	}
	if winner == "" {
		return nil
	}
	for _, id := range r.members {
		if id == winner {
			continue
		}
		if pass.Bool(id) {
			pass.Force(id, BoolValue(false))
		}
		if e := pass.entries[id]; r.disable && e != nil && !e.Locked {
			pass.Disable(ReasonExclusive, id)
		}
	}
	return nil
}

// CapabilityRule disables, clears and locks options the selected vehicle
// cannot use. An unknown capability always gates.
type CapabilityRule struct {
	flag      string
	ids       []string
	forbidden bool
}

// DisallowWhen gates ids when the capability flag is set.
func DisallowWhen(flag string, ids ...string) *CapabilityRule {
	return &CapabilityRule{flag: flag, ids: append([]string(nil), ids...), forbidden: true}
}

// RequireCapability gates ids unless the capability flag is set.
func RequireCapability(flag string, ids ...string) *CapabilityRule {
	return &CapabilityRule{flag: flag, ids: append([]string(nil), ids...)}
}

func (r *CapabilityRule) Name() string {
	if r.forbidden {
		return "disallow_when(" + r.flag + ")"
	}
	return "require_capability(" + r.flag + ")"
}

func (r *CapabilityRule) Triggers() []string { return nil }

func (r *CapabilityRule) Targets() []string { return append([]string(nil), r.ids...) }

func (r *CapabilityRule) Bind(catalog *Catalog, _ Evaluator) (Rule, error) {
	if strings.TrimSpace(r.flag) == "" {
		return nil, fmt.Errorf("settings: capability rule: flag must not be empty")
	}
	if err := catalog.requireAll(r.Name(), r.ids...); err != nil {
		return nil, err
	}
	clone := *r
	return &clone, nil
}

func (r *CapabilityRule) Apply(pass *Pass) error {
	if !r.gated(pass.Capability()) {
		return nil
	}
	for _, id := range r.ids {
		pass.Remove(id)
		pass.Lock(id, ReasonUnsupported)
	}
	return nil
}

func (r *CapabilityRule) gated(c Capability) bool {
	value, known := c.Flag(r.flag)
	if !known {
		return true
	}
	if r.forbidden {
		return value
	}
	return !value
}

// ParkedOnlyRule disables options while the vehicle is driving.
type ParkedOnlyRule struct {
	ids []string
}

// ParkedOnly declares ids editable only while parked.
func ParkedOnly(ids ...string) *ParkedOnlyRule {
	return &ParkedOnlyRule{ids: append([]string(nil), ids...)}
}

func (r *ParkedOnlyRule) Name() string { return "parked_only" }

func (r *ParkedOnlyRule) Triggers() []string { return nil }

func (r *ParkedOnlyRule) Targets() []string { return append([]string(nil), r.ids...) }

func (r *ParkedOnlyRule) Bind(catalog *Catalog, _ Evaluator) (Rule, error) {
	if err := catalog.requireAll(r.Name(), r.ids...); err != nil {
		return nil, err
	}
	clone := *r
	return &clone, nil
}

func (r *ParkedOnlyRule) Apply(pass *Pass) error {
	if pass.Parked() {
		return nil
	}
	for _, id := range r.ids {
		if e := pass.entries[id]; e != nil && e.Locked {
			continue
		}
		pass.Disable(ReasonDriving, id)
	}
	return nil
}

// FuncRule adapts a function into a Rule for effects the declarative
// constructors cannot express.
type FuncRule struct {
	name     string
	triggers []string
	targets  []string
	fn       func(*Pass) error
}

// RuleFunc wraps fn. triggers and targets must name catalog options.
func RuleFunc(name string, triggers, targets []string, fn func(*Pass) error) *FuncRule {
	return &FuncRule{
		name:     name,
		triggers: append([]string(nil), triggers...),
		targets:  append([]string(nil), targets...),
		fn:       fn,
	}
}

func (r *FuncRule) Name() string { return r.name }

func (r *FuncRule) Triggers() []string { return append([]string(nil), r.triggers...) }

func (r *FuncRule) Targets() []string { return append([]string(nil), r.targets...) }

func (r *FuncRule) Bind(catalog *Catalog, _ Evaluator) (Rule, error) {
	if r.fn == nil {
		return nil, fmt.Errorf("settings: rule %q: function is nil", r.name)
	}
	if err := catalog.requireAll(r.Name(), append(r.Triggers(), r.targets...)...); err != nil {
		return nil, err
	}
	clone := *r
	return &clone, nil
}

func (r *FuncRule) Apply(pass *Pass) error {
	return r.fn(pass)
}
