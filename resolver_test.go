package settings

import (
	"errors"
	"reflect"
	"slices"
	"sort"
	"testing"
)

type resolverCase struct {
	Name       string            `json:"name"`
	Stored     map[string]string `json:"stored"`
	Capability struct {
		Known   bool            `json:"known"`
		Vehicle string          `json:"vehicle"`
		Flags   map[string]bool `json:"flags"`
	} `json:"capability"`
	Parked   bool              `json:"parked"`
	Changed  string            `json:"changed"`
	Visible  map[string]bool   `json:"visible"`
	Enabled  map[string]bool   `json:"enabled"`
	Values   map[string]string `json:"values"`
	Sources  map[string]string `json:"sources"`
	Displays map[string]string `json:"displays"`
	Reasons  map[string]string `json:"reasons"`
	Writes   []struct {
		ID     string `json:"id"`
		Raw    string `json:"raw"`
		Remove bool   `json:"remove"`
	} `json:"writes"`
	Locks []string `json:"locks"`
}

func (c resolverCase) input() Input {
	capability := UnknownCapability()
	if c.Capability.Known {
		capability = NewCapability(c.Capability.Vehicle, c.Capability.Flags)
	}
	return Input{
		Snapshot:   NewSnapshot(c.Stored),
		Capability: capability,
		Parked:     c.Parked,
		Changed:    c.Changed,
	}
}

func (c resolverCase) writes() []Write {
	var out []Write
	for _, w := range c.Writes {
		out = append(out, Write{ID: w.ID, Raw: w.Raw, Remove: w.Remove})
	}
	return out
}

func TestResolverFixtures(t *testing.T) {
	cases := loadFixture[[]resolverCase](t, "resolver_cases.json")
	for _, factory := range evaluatorFactories {
		t.Run(factory.name, func(t *testing.T) {
			evaluator := factory.new(NewProgramCache(), nil)
			if evaluator == nil {
				t.Skipf("%s evaluator not built", factory.name)
			}
			resolver := newTestResolver(t, evaluator)
			for _, tc := range cases {
				t.Run(tc.Name, func(t *testing.T) {
					proj, err := resolver.Resolve(tc.input())
					if err != nil {
						t.Fatalf("resolve: %v", err)
					}
					assertProjection(t, proj, tc)
				})
			}
		})
	}
}

func assertProjection(t *testing.T, proj *Projection, tc resolverCase) {
	t.Helper()
	for id, want := range tc.Visible {
		if got := proj.Visible(id); got != want {
			t.Fatalf("%s visible: expected %v, got %v", id, want, got)
		}
	}
	for id, want := range tc.Enabled {
		if got := proj.Enabled(id); got != want {
			t.Fatalf("%s enabled: expected %v, got %v", id, want, got)
		}
	}
	for id, want := range tc.Values {
		e, _ := proj.Entry(id)
		if got := e.Value.Raw(); got != want {
			t.Fatalf("%s value: expected %q, got %q", id, want, got)
		}
	}
	for id, want := range tc.Sources {
		e, _ := proj.Entry(id)
		if string(e.Source) != want {
			t.Fatalf("%s source: expected %s, got %s", id, want, e.Source)
		}
	}
	for id, want := range tc.Displays {
		e, _ := proj.Entry(id)
		if e.Display != want {
			t.Fatalf("%s display: expected %q, got %q", id, want, e.Display)
		}
	}
	for id, want := range tc.Reasons {
		e, _ := proj.Entry(id)
		if e.Reason != want {
			t.Fatalf("%s reason: expected %q, got %q", id, want, e.Reason)
		}
	}
	if want := tc.writes(); !reflect.DeepEqual(proj.Writes, want) {
		t.Fatalf("writes: expected %+v, got %+v", want, proj.Writes)
	}
	var locks []string
	for id := range proj.Locks {
		locks = append(locks, id)
	}
	sort.Strings(locks)
	if !slices.Equal(locks, tc.Locks) {
		t.Fatalf("locks: expected %v, got %v", tc.Locks, locks)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	resolver := newTestResolver(t, NewExprEvaluator())
	in := Input{
		Snapshot: NewSnapshot(map[string]string{
			testEnforceTorque: "1",
			testCustomTorque:  "1",
			testLiveTorque:    "1",
			testSLC:           "1",
		}),
		Capability: torqueCapability(),
		Parked:     true,
	}
	first, err := resolver.Resolve(in)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	second, err := resolver.Resolve(in)
	if err != nil {
		t.Fatalf("resolve again: %v", err)
	}
	if !reflect.DeepEqual(first.Entries(), second.Entries()) || !reflect.DeepEqual(first.Writes, second.Writes) {
		t.Fatalf("same input must produce the same projection")
	}

	settled := in
	settled.Snapshot = in.Snapshot.apply(first.Writes)
	again, err := resolver.Resolve(settled)
	if err != nil {
		t.Fatalf("resolve settled: %v", err)
	}
	if !again.Settled() {
		t.Fatalf("settled snapshot must need no writes, got %+v", again.Writes)
	}
	for _, e := range first.Entries() {
		got, _ := again.Entry(e.ID)
		if got.Visible != e.Visible || got.Enabled != e.Enabled || got.Value != e.Value {
			t.Fatalf("%s: settled projection differs: %+v vs %+v", e.ID, got, e)
		}
	}
}

func TestResolveLeavesInputSnapshotUntouched(t *testing.T) {
	resolver := newTestResolver(t, NewExprEvaluator())
	snap := NewSnapshot(map[string]string{testEnforceTorque: "0", testCustomTorque: "1"})
	if _, err := resolver.Resolve(Input{Snapshot: snap, Capability: torqueCapability(), Parked: true}); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if raw, _ := snap.Raw(testCustomTorque); raw != "1" {
		t.Fatalf("resolve must not mutate the snapshot, got %q", raw)
	}
}

func TestExclusiveNeverLeavesTwoMembersOn(t *testing.T) {
	resolver := newTestResolver(t, NewExprEvaluator())
	for _, changed := range []string{"", testCustomTorque, testLiveTorque, testEnforceTorque} {
		proj, err := resolver.Resolve(Input{
			Snapshot: NewSnapshot(map[string]string{
				testEnforceTorque: "1",
				testCustomTorque:  "1",
				testLiveTorque:    "1",
			}),
			Capability: torqueCapability(),
			Parked:     true,
			Changed:    changed,
		})
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if proj.Bool(testCustomTorque) && proj.Bool(testLiveTorque) {
			t.Fatalf("changed=%q: both tunes on", changed)
		}
		want := testCustomTorque
		if changed == testLiveTorque {
			want = testLiveTorque
		}
		if !proj.Bool(want) {
			t.Fatalf("changed=%q: expected %s to win", changed, want)
		}
	}
}

func TestExclusiveDisableLosers(t *testing.T) {
	resolver, err := NewResolver(testCatalog(t), NewRuleSet(Exclusive(testCustomTorque, testLiveTorque).DisableLosers()))
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	resolve := func(values map[string]string) *Projection {
		t.Helper()
		proj, err := resolver.Resolve(Input{Snapshot: NewSnapshot(values), Capability: torqueCapability(), Parked: true})
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		return proj
	}

	proj := resolve(map[string]string{testCustomTorque: "1", testLiveTorque: "1"})
	if !proj.Enabled(testCustomTorque) || !proj.Bool(testCustomTorque) {
		t.Fatalf("expected %s to win and stay editable", testCustomTorque)
	}
	if e, _ := proj.Entry(testLiveTorque); e.Enabled || e.Value.Bool() || e.Reason != ReasonExclusive {
		t.Fatalf("expected %s forced off and disabled, got %+v", testLiveTorque, e)
	}

	proj = resolve(nil)
	if !proj.Enabled(testCustomTorque) || !proj.Enabled(testLiveTorque) {
		t.Fatalf("expected both members editable while neither is on")
	}
}

func TestRuleOrderIsLastWriteWins(t *testing.T) {
	catalog := testCatalog(t)
	snap := NewSnapshot(map[string]string{testSLC: "0", testLaneTimer: "2"})
	in := Input{Snapshot: snap, Capability: torqueCapability(), Parked: true}

	cascadeLast, err := NewResolver(catalog, NewRuleSet(
		ShowWhen("AutoLaneChangeTimer != 0", testSLCPerc),
		Cascade(testSLC, testSLCPerc),
	))
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	proj, err := cascadeLast.Resolve(in)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if proj.Visible(testSLCPerc) {
		t.Fatalf("later cascade must hide the child")
	}

	showLast, err := NewResolver(catalog, NewRuleSet(
		Cascade(testSLC, testSLCPerc),
		ShowWhen("AutoLaneChangeTimer != 0", testSLCPerc),
	))
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	proj, err = showLast.Resolve(in)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !proj.Visible(testSLCPerc) {
		t.Fatalf("later show_when must show the child")
	}
}

func TestResolveReportsUnstableRules(t *testing.T) {
	catalog := testCatalog(t)
	flip := RuleFunc("flip", []string{testSLC}, []string{testSLC}, func(p *Pass) error {
		p.Force(testSLC, BoolValue(!p.Bool(testSLC)))
		return nil
	})
	resolver, err := NewResolver(catalog, NewRuleSet(flip), WithMaxPasses(4))
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	_, err = resolver.Resolve(Input{Snapshot: NewSnapshot(nil), Capability: torqueCapability()})
	if !errors.Is(err, ErrUnstableRules) {
		t.Fatalf("expected ErrUnstableRules, got %v", err)
	}
}

func TestResolveWrapsRuleErrors(t *testing.T) {
	catalog := testCatalog(t)
	boom := errors.New("boom")
	resolver, err := NewResolver(catalog, NewRuleSet(
		RuleFunc("exploding", nil, nil, func(*Pass) error { return boom }),
	))
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	_, err = resolver.Resolve(Input{Snapshot: NewSnapshot(nil)})
	if !errors.Is(err, boom) {
		t.Fatalf("expected rule error, got %v", err)
	}
}

func TestShowWhenReadsCapabilityAndParked(t *testing.T) {
	catalog := testCatalog(t)
	for _, factory := range evaluatorFactories {
		t.Run(factory.name, func(t *testing.T) {
			evaluator := factory.new(NewProgramCache(), nil)
			if evaluator == nil {
				t.Skipf("%s evaluator not built", factory.name)
			}
			resolver, err := NewResolver(catalog, NewRuleSet(
				ShowWhen("capability.known && parked", testLaneBsmDelay),
			), WithEvaluator(evaluator))
			if err != nil {
				t.Fatalf("new resolver: %v", err)
			}
			proj, err := resolver.Resolve(Input{Snapshot: NewSnapshot(nil), Capability: torqueCapability(), Parked: true})
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if !proj.Visible(testLaneBsmDelay) {
				t.Fatalf("expected visible with known capability while parked")
			}
			proj, err = resolver.Resolve(Input{Snapshot: NewSnapshot(nil), Capability: UnknownCapability(), Parked: true})
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if proj.Visible(testLaneBsmDelay) {
				t.Fatalf("expected hidden with unknown capability")
			}
		})
	}
}

func TestShowWhenTriggersComeFromExpression(t *testing.T) {
	catalog := testCatalog(t)
	rule, err := ShowWhen("SpeedLimitOffsetType != 0 && SpeedLimitControl && parked", testSLCValue).Bind(catalog, NewExprEvaluator())
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if got := rule.Triggers(); !slices.Equal(got, []string{testSLCType, testSLC}) {
		t.Fatalf("unexpected triggers %v", got)
	}
}

func TestRequireCapability(t *testing.T) {
	catalog := testCatalog(t)
	resolver, err := NewResolver(catalog, NewRuleSet(RequireCapability(CapabilityOpenpilotLong, testSLC)))
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	in := Input{Snapshot: NewSnapshot(map[string]string{testSLC: "1"}), Parked: true}

	in.Capability = NewCapability("HONDA_CIVIC", map[string]bool{CapabilityOpenpilotLong: true})
	proj, err := resolver.Resolve(in)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !proj.Enabled(testSLC) || !proj.Settled() {
		t.Fatalf("expected capable vehicle to keep the option")
	}

	in.Capability = NewCapability("HONDA_CIVIC", nil)
	proj, err = resolver.Resolve(in)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if proj.Enabled(testSLC) || proj.Locks[testSLC] != ReasonUnsupported {
		t.Fatalf("expected option locked without the capability")
	}
	if !reflect.DeepEqual(proj.Writes, []Write{{ID: testSLC, Remove: true}}) {
		t.Fatalf("expected removal, got %+v", proj.Writes)
	}
}

func TestClearWhenHiddenResetsNonBooleanChildren(t *testing.T) {
	catalog := testCatalog(t)
	resolver, err := NewResolver(catalog, NewRuleSet(
		Cascade(testSLC, testSLCValue).ClearWhenHidden(),
	))
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	proj, err := resolver.Resolve(Input{Snapshot: NewSnapshot(map[string]string{testSLCValue: "12"})})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !reflect.DeepEqual(proj.Writes, []Write{{ID: testSLCValue, Raw: "0"}}) {
		t.Fatalf("expected reset to default, got %+v", proj.Writes)
	}
}
