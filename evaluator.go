package settings

import "fmt"

// RuleContext carries the inputs an expression is evaluated against. Values
// holds one entry per catalog option (bool or int).
type RuleContext struct {
	Values     map[string]any
	Capability map[string]any
	Parked     bool
	Changed    string
	Args       map[string]any
	Metadata   map[string]any
	Rule       string
}

func (ctx RuleContext) withDefaultMaps() RuleContext {
	if ctx.Values == nil {
		ctx.Values = map[string]any{}
	}
	if ctx.Capability == nil {
		ctx.Capability = map[string]any{}
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) ruleLabel() string {
	if ctx.Rule != "" {
		return ctx.Rule
	}
	return "unknown"
}

// contextVariables are the identifiers binding adds next to option ids.
var contextVariables = []string{"capability", "parked", "changed", "args", "metadata"}

// binding flattens the context into the variable set shared by every engine.
// Option ids are top-level identifiers.
func (ctx RuleContext) binding() map[string]any {
	env := make(map[string]any, len(ctx.Values)+6)
	for key, value := range ctx.Values {
		env[key] = value
	}
	env["capability"] = ctx.Capability
	env["parked"] = ctx.Parked
	env["changed"] = ctx.Changed
	env["args"] = ctx.Args
	env["metadata"] = ctx.Metadata
	return env
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// VariableCompiler is implemented by evaluators that type-check expressions
// against a declared variable set at compile time.
type VariableCompiler interface {
	CompileVariables(expr string, variables []string) (CompiledRule, error)
}

// compileFor compiles expression for rules bound to catalog.
func compileFor(catalog *Catalog, evaluator Evaluator, expression string) (CompiledRule, error) {
	if vc, ok := evaluator.(VariableCompiler); ok {
		variables := append(catalog.IDs(), contextVariables...)
		return vc.CompileVariables(expression, variables)
	}
	return evaluator.Compile(expression)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// ProgramCache stores compiled expression programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*settings.exprEvaluator":
		return "expr"
	case "*settings.celEvaluator":
		return "cel"
	case "*settings.jsEvaluator":
		return "js"
	default:
		return "custom"
	}
}

func asBool(engine, expr string, value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case nil:
		return false, nil
	default:
		return false, wrapEvaluatorError(engine, fmt.Errorf("expression %q returned %T, want bool", expr, value))
	}
}
