package settings

// RuleSet is the ordered, static rule table. Order is part of the contract:
// when two rules touch the same entry field, the later one wins.
type RuleSet struct {
	rules []Rule
}

// NewRuleSet declares rules in evaluation order.
func NewRuleSet(rules ...Rule) *RuleSet {
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r != nil {
			out = append(out, r)
		}
	}
	return &RuleSet{rules: out}
}

// Rules returns the rules in declaration order.
func (rs *RuleSet) Rules() []Rule {
	if rs == nil {
		return nil
	}
	return append([]Rule(nil), rs.rules...)
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rules)
}

// Affecting lists the rules that read or write id, in declaration order.
func (rs *RuleSet) Affecting(id string) []Rule {
	var out []Rule
	for _, r := range rs.Rules() {
		if contains(r.Triggers(), id) || contains(r.Targets(), id) {
			out = append(out, r)
		}
	}
	return out
}

func (rs *RuleSet) bind(catalog *Catalog, evaluator Evaluator) ([]Rule, error) {
	bound := make([]Rule, 0, rs.Len())
	for _, r := range rs.Rules() {
		b, err := r.Bind(catalog, evaluator)
		if err != nil {
			return nil, err
		}
		bound = append(bound, b)
	}
	return bound, nil
}

func contains(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
