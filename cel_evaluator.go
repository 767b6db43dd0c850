package settings

import (
	"fmt"
	"sort"
	"strings"

	celgo "github.com/google/cel-go/cel"
	functions "github.com/google/cel-go/common/functions"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// CELEvaluatorOption configures the CEL evaluator.
type CELEvaluatorOption func(*celEvaluator)

// CELWithProgramCache wires a ProgramCache into the CEL evaluator.
func CELWithProgramCache(cache ProgramCache) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.cache = cache
	}
}

// CELWithFunctionRegistry wires a FunctionRegistry into the CEL evaluator.
func CELWithFunctionRegistry(registry *FunctionRegistry) CELEvaluatorOption {
	return func(e *celEvaluator) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

type celProgram struct {
	env     *celgo.Env
	program celgo.Program
}

type celEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewCELEvaluator constructs an Evaluator backed by cel-go.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	if expression == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	ctx = ctx.withDefaultMaps()
	activation := e.activation(ctx)
	program, err := e.loadOrCompile(expression, variableNames(activation))
	if err != nil {
		return nil, wrapEvaluationError("cel", expression, ctx.ruleLabel(), err)
	}
	return program.eval(expression, ctx.ruleLabel(), activation)
}

// Compile parses expression and defers type checking to the first
// evaluation, when the variable set is known. Use CompileVariables when it is
// known up front.
func (e *celEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	env, err := e.buildEnv(nil)
	if err != nil {
		return nil, err
	}
	if _, issues := env.Parse(expression); issues != nil && issues.Err() != nil {
		return nil, wrapEvaluationError("cel", expression, "compile", issues.Err())
	}
	return &celCompiledRule{
		evaluator:  e,
		expression: expression,
	}, nil
}

// CompileVariables type-checks expression against variables and builds the
// program immediately.
func (e *celEvaluator) CompileVariables(expression string, variables []string) (CompiledRule, error) {
	if expression == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	program, err := e.loadOrCompile(expression, uniqueSorted(variables))
	if err != nil {
		return nil, wrapEvaluationError("cel", expression, "compile", err)
	}
	return &celCompiledRule{
		evaluator:  e,
		expression: expression,
		program:    program,
	}, nil
}

func (e *celEvaluator) loadOrCompile(expression string, names []string) (*celProgram, error) {
	key := "cel:" + strings.Join(names, ",") + ":" + expression
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(*celProgram); ok {
				return program, nil
			}
		}
	}

	env, err := e.buildEnv(names)
	if err != nil {
		return nil, err
	}
	ast, issues := env.Parse(expression)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	checked, issues := env.Check(ast)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	prg, err := env.Program(checked)
	if err != nil {
		return nil, err
	}

	bundle := &celProgram{
		env:     env,
		program: prg,
	}
	if e.cache != nil {
		e.cache.Set(key, bundle)
	}
	return bundle, nil
}

func (e *celEvaluator) buildEnv(names []string) (*celgo.Env, error) {
	opts := make([]celgo.EnvOption, 0, len(names)+1)
	if e.registry != nil {
		opts = append(opts, celgo.Function("call", callOverloads(e.callBinding())...))
	}
	for _, key := range names {
		if key == "call" {
			continue
		}
		opts = append(opts, celgo.Variable(key, celgo.DynType))
	}
	return celgo.NewEnv(opts...)
}

func (e *celEvaluator) activation(ctx RuleContext) map[string]any {
	return ctx.binding()
}

func (p *celProgram) eval(expression, rule string, activation map[string]any) (any, error) {
	out, _, err := p.program.Eval(activation)
	if err != nil {
		return nil, wrapEvaluationError("cel", expression, rule, err)
	}
	return out.Value(), nil
}

type celCompiledRule struct {
	evaluator  *celEvaluator
	expression string
	program    *celProgram
}

func (r *celCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	if r.evaluator == nil {
		return nil, fmt.Errorf("cel compiled rule missing evaluator")
	}
	if r.program == nil {
		return r.evaluator.Evaluate(ctx, r.expression)
	}
	ctx = ctx.withDefaultMaps()
	return r.program.eval(r.expression, ctx.ruleLabel(), r.evaluator.activation(ctx))
}

func variableNames(activation map[string]any) []string {
	keys := make([]string, 0, len(activation))
	for key := range activation {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func uniqueSorted(names []string) []string {
	out := append([]string(nil), names...)
	sort.Strings(out)
	n := 0
	for i, name := range out {
		if i > 0 && name == out[n-1] {
			continue
		}
		out[n] = name
		n++
	}
	return out[:n]
}

func (e *celEvaluator) callBinding() functions.FunctionOp {
	return func(values ...ref.Val) ref.Val {
		if e.registry == nil {
			return types.NewErr("settings: function registry not configured")
		}
		if len(values) == 0 {
			return types.NewErr("settings: call requires function name")
		}
		name, ok := values[0].Value().(string)
		if !ok {
			return types.NewErr("settings: call name must be string")
		}
		args := make([]any, 0, len(values)-1)
		for _, val := range values[1:] {
			args = append(args, val.Value())
		}
		result, err := e.registry.Call(name, args...)
		if err != nil {
			return types.NewErr("%s", err.Error())
		}
		if result == nil {
			return types.NullValue
		}
		return types.DefaultTypeAdapter.NativeToValue(result)
	}
}

// callOverloads declares call(name, args...) for up to three arguments.
func callOverloads(binding functions.FunctionOp) []celgo.FunctionOpt {
	out := make([]celgo.FunctionOpt, 0, 4)
	params := []*celgo.Type{celgo.StringType}
	for arity := 0; arity <= 3; arity++ {
		out = append(out, celgo.Overload(
			fmt.Sprintf("settings_call_%d", arity),
			append([]*celgo.Type(nil), params...),
			celgo.DynType,
			celgo.FunctionBinding(binding),
		))
		params = append(params, celgo.DynType)
	}
	return out
}
