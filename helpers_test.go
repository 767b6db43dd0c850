package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

var evaluatorFactories = []struct {
	name string
	new  func(cache ProgramCache, registry *FunctionRegistry) Evaluator
}{
	{
		name: "expr",
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			opts := []ExprEvaluatorOption{}
			if cache != nil {
				opts = append(opts, ExprWithProgramCache(cache))
			}
			if registry != nil {
				opts = append(opts, ExprWithFunctionRegistry(registry))
			}
			return NewExprEvaluator(opts...)
		},
	},
	{
		name: "cel",
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			opts := []CELEvaluatorOption{}
			if cache != nil {
				opts = append(opts, CELWithProgramCache(cache))
			}
			if registry != nil {
				opts = append(opts, CELWithFunctionRegistry(registry))
			}
			return NewCELEvaluator(opts...)
		},
	},
	{
		name: "js",
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			opts := []JSEvaluatorOption{}
			if cache != nil {
				opts = append(opts, JSWithProgramCache(cache))
			}
			if registry != nil {
				opts = append(opts, JSWithFunctionRegistry(registry))
			}
			return NewJSEvaluator(opts...)
		},
	},
}

func loadFixture[T any](t *testing.T, name string) T {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("unable to resolve caller for fixture %s", name)
	}
	path := filepath.Join(filepath.Dir(file), "testdata", name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode fixture %s: %v", name, err)
	}
	return out
}

// Test catalog: a torque tuning group, a lane change pair and the speed limit
// control chain, plus one parked-only toggle.
const (
	testEnforceTorque = "EnforceTorqueLateral"
	testCustomTorque  = "CustomTorqueLateral"
	testLiveTorque    = "LiveTorque"
	testFriction      = "TorqueFriction"
	testMaxLatAccel   = "TorqueMaxLatAccel"
	testLaneTimer     = "AutoLaneChangeTimer"
	testLaneBsmDelay  = "AutoLaneChangeBsmDelay"
	testSLC           = "SpeedLimitControl"
	testSLCPerc       = "SpeedLimitPercOffset"
	testSLCType       = "SpeedLimitOffsetType"
	testSLCValue      = "SpeedLimitValueOffset"
	testMads          = "EnableMads"
)

func testDescriptors() []Descriptor {
	return []Descriptor{
		{ID: testEnforceTorque, Kind: KindBool, Group: "torque", Title: "Enforce Torque Lateral Control"},
		{ID: testCustomTorque, Kind: KindBool, Group: "torque", Title: "Torque Lateral Control Custom Tune"},
		{ID: testLiveTorque, Kind: KindBool, Group: "torque", Title: "Torque Lateral Control Self-Tune"},
		{ID: testFriction, Kind: KindInt, Group: "torque", Title: "Friction", Min: 0, Max: 50, Default: "10", Scale: 100},
		{ID: testMaxLatAccel, Kind: KindInt, Group: "torque", Title: "Max Lateral Acceleration", Min: 1, Max: 500, Default: "250", Scale: 100},
		{ID: testLaneTimer, Kind: KindInt, Group: "lane", Title: "Auto Lane Change Timer", Min: 0, Max: 5, Labels: map[int]string{0: "Off", 1: "Nudge"}},
		{ID: testLaneBsmDelay, Kind: KindBool, Group: "lane", Title: "Auto Lane Change Delay with Blind Spot"},
		{ID: testSLC, Kind: KindBool, Group: "speed", Title: "Speed Limit Control"},
		{ID: testSLCPerc, Kind: KindBool, Group: "speed", Title: "Speed Limit Offset"},
		{ID: testSLCType, Kind: KindEnum, Group: "speed", Title: "Offset Type", Members: []Member{{0, "Default"}, {1, "%"}, {2, "Value"}}},
		{ID: testSLCValue, Kind: KindInt, Group: "speed", Title: "Offset Value", Min: -30, Max: 30, Default: "0"},
		{ID: testMads, Kind: KindBool, Group: "general", Title: "Enable M.A.D.S.", ConfirmOn: true},
	}
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	catalog, err := NewCatalog(testDescriptors()...)
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	return catalog
}

func testRules() *RuleSet {
	return NewRuleSet(
		Exclusive(testCustomTorque, testLiveTorque),
		DisallowWhen(CapabilityAngleOnly, testEnforceTorque),
		Cascade(testEnforceTorque, testCustomTorque, testLiveTorque).ClearWhenHidden(),
		Cascade(testCustomTorque, testFriction, testMaxLatAccel),
		ShowWhen("AutoLaneChangeTimer != 0", testLaneBsmDelay),
		ShowWhen("SpeedLimitOffsetType != 0", testSLCValue),
		Cascade(testSLC, testSLCPerc),
		Cascade(testSLCPerc, testSLCType, testSLCValue),
		ParkedOnly(testMads, testEnforceTorque),
	)
}

func torqueCapability() Capability {
	return NewCapability("HYUNDAI_SONATA", map[string]bool{CapabilityAngleOnly: false})
}

func newTestResolver(t *testing.T, evaluator Evaluator) *Resolver {
	t.Helper()
	resolver, err := NewResolver(testCatalog(t), testRules(), WithEvaluator(evaluator))
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	return resolver
}
