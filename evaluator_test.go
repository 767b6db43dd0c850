package settings

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

type evaluatorCase struct {
	Name       string          `json:"name"`
	Expr       string          `json:"expr"`
	Values     map[string]any  `json:"values"`
	Capability map[string]bool `json:"capability"`
	Parked     bool            `json:"parked"`
	Changed    string          `json:"changed"`
	Want       bool            `json:"want"`
}

func (c evaluatorCase) context() RuleContext {
	values := make(map[string]any, len(c.Values))
	for k, v := range c.Values {
		// JSON numbers decode as float64; options bind as int.
		if f, ok := v.(float64); ok {
			v = int(f)
		}
		values[k] = v
	}
	capability := UnknownCapability()
	if c.Capability != nil {
		capability = NewCapability("TEST", c.Capability)
	}
	return RuleContext{
		Values:     values,
		Capability: capability.binding(),
		Parked:     c.Parked,
		Changed:    c.Changed,
		Rule:       c.Name,
	}
}

func TestEvaluatorsAgreeOnRuleExpressions(t *testing.T) {
	cases := loadFixture[[]evaluatorCase](t, "evaluator_cases.json")
	for _, factory := range evaluatorFactories {
		t.Run(factory.name, func(t *testing.T) {
			evaluator := factory.new(NewProgramCache(), nil)
			if evaluator == nil {
				t.Skipf("%s evaluator not built", factory.name)
			}
			for _, tc := range cases {
				program, err := evaluator.Compile(tc.Expr)
				if err != nil {
					t.Fatalf("%s: compile: %v", tc.Name, err)
				}
				result, err := program.Evaluate(tc.context())
				if err != nil {
					t.Fatalf("%s: evaluate: %v", tc.Name, err)
				}
				got, err := asBool(factory.name, tc.Expr, result)
				if err != nil {
					t.Fatalf("%s: %v", tc.Name, err)
				}
				if got != tc.Want {
					t.Fatalf("%s: expected %v, got %v", tc.Name, tc.Want, got)
				}
			}
		})
	}
}

func TestEvaluatorsCallRegisteredFunctions(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("within", func(args ...any) (any, error) {
		if len(args) != 3 {
			return nil, fmt.Errorf("within expects 3 arguments, got %d", len(args))
		}
		n, lo, hi := toInt(args[0]), toInt(args[1]), toInt(args[2])
		return n >= lo && n <= hi, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	ctx := RuleContext{Values: map[string]any{testLaneTimer: 3}}
	for _, factory := range evaluatorFactories {
		t.Run(factory.name, func(t *testing.T) {
			evaluator := factory.new(NewProgramCache(), registry)
			if evaluator == nil {
				t.Skipf("%s evaluator not built", factory.name)
			}
			result, err := evaluator.Evaluate(ctx, `call("within", AutoLaneChangeTimer, 1, 3)`)
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			if result != true {
				t.Fatalf("expected true, got %#v", result)
			}
		})
	}
}

func TestEvaluatorsWrapErrors(t *testing.T) {
	for _, factory := range evaluatorFactories {
		t.Run(factory.name, func(t *testing.T) {
			evaluator := factory.new(nil, nil)
			if evaluator == nil {
				t.Skipf("%s evaluator not built", factory.name)
			}
			_, err := evaluator.Evaluate(RuleContext{Rule: "broken"}, "AutoLaneChangeTimer !=")
			if err == nil {
				t.Fatalf("expected error for malformed expression")
			}
			var evalErr *EvaluationError
			if !errors.As(err, &evalErr) {
				t.Fatalf("expected EvaluationError, got %T", err)
			}
			if evalErr.Engine != factory.name {
				t.Fatalf("expected engine %s, got %s", factory.name, evalErr.Engine)
			}
		})
	}
}

func TestProgramCacheReusesCompiledPrograms(t *testing.T) {
	cache := NewProgramCache()
	evaluator := NewExprEvaluator(ExprWithProgramCache(cache))
	if _, err := evaluator.Compile("AutoLaneChangeTimer != 0"); err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, ok := cache.Get("expr:AutoLaneChangeTimer != 0"); !ok {
		t.Fatalf("expected compiled program in cache")
	}
}

func TestAsBoolRejectsNonBooleanResults(t *testing.T) {
	if _, err := asBool("expr", "AutoLaneChangeTimer", 3); err == nil {
		t.Fatalf("expected error for integer result")
	}
	got, err := asBool("expr", "nil", nil)
	if err != nil || got {
		t.Fatalf("expected nil to read false, got %v %v", got, err)
	}
}

func TestEvaluatorEngineName(t *testing.T) {
	if got := evaluatorEngineName(NewExprEvaluator()); got != "expr" {
		t.Fatalf("expected expr, got %s", got)
	}
	if got := evaluatorEngineName(NewCELEvaluator()); got != "cel" {
		t.Fatalf("expected cel, got %s", got)
	}
	if got := evaluatorEngineName(nil); got != "unknown" {
		t.Fatalf("expected unknown, got %s", got)
	}
}

func TestSlogEvaluatorLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	resolver, err := NewResolver(testCatalog(t), testRules(), WithEvaluatorLogger(SlogEvaluatorLogger(logger)))
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	if _, err := resolver.Resolve(Input{Snapshot: NewSnapshot(nil), Capability: torqueCapability(), Parked: true}); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "settings rule evaluated") || !strings.Contains(out, "engine=expr") {
		t.Fatalf("expected evaluation log lines, got %q", out)
	}
	if !strings.Contains(out, "AutoLaneChangeTimer != 0") {
		t.Fatalf("expected expression in log, got %q", out)
	}
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
