package settings

import "fmt"

// DefaultMaxPasses bounds the settle loop.
const DefaultMaxPasses = 8

type resolverConfig struct {
	evaluator Evaluator
	functions *FunctionRegistry
	cache     ProgramCache
	logger    EvaluatorLogger
	maxPasses int
}

// ResolverOption configures NewResolver.
type ResolverOption func(*resolverConfig)

// WithEvaluator selects the expression engine. Defaults to expr.
func WithEvaluator(evaluator Evaluator) ResolverOption {
	return func(cfg *resolverConfig) {
		cfg.evaluator = evaluator
	}
}

// WithProgramCache shares compiled programs across resolvers.
func WithProgramCache(cache ProgramCache) ResolverOption {
	return func(cfg *resolverConfig) {
		cfg.cache = cache
	}
}

// WithMaxPasses overrides DefaultMaxPasses.
func WithMaxPasses(n int) ResolverOption {
	return func(cfg *resolverConfig) {
		if n > 0 {
			cfg.maxPasses = n
		}
	}
}

// Input is everything a resolution depends on.
type Input struct {
	Snapshot   Snapshot
	Capability Capability
	Parked     bool
	// Changed names the option the operator just mutated.
	Changed string
}

// Resolver derives projections from snapshots. It holds no mutable state and
// is safe for concurrent use.
type Resolver struct {
	catalog *Catalog
	rules   []Rule
	cfg     resolverConfig
}

// NewResolver binds rules to catalog.
func NewResolver(catalog *Catalog, rules *RuleSet, opts ...ResolverOption) (*Resolver, error) {
	if catalog == nil {
		return nil, fmt.Errorf("settings: catalog is required")
	}
	cfg := resolverConfig{
		logger:    noopEvaluatorLogger{},
		maxPasses: DefaultMaxPasses,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.cache == nil {
		cfg.cache = NewProgramCache()
	}
	if cfg.evaluator == nil {
		cfg.evaluator = NewExprEvaluator(
			ExprWithProgramCache(cfg.cache),
			ExprWithFunctionRegistry(cfg.functions),
		)
	}
	bound, err := rules.bind(catalog, cfg.evaluator)
	if err != nil {
		return nil, err
	}
	return &Resolver{catalog: catalog, rules: bound, cfg: cfg}, nil
}

// Catalog returns the catalog the resolver was bound to.
func (r *Resolver) Catalog() *Catalog {
	return r.catalog
}

// Engine names the expression engine in use.
func (r *Resolver) Engine() string {
	return evaluatorEngineName(r.cfg.evaluator)
}

// Resolve runs the rule set against in.Snapshot until no rule needs a further
// write, then returns the projection of the settled state. The writes required
// to reach it are listed in Projection.Writes; the caller applies them.
func (r *Resolver) Resolve(in Input) (*Projection, error) {
	settled := in.Snapshot.apply(nil)
	for n := 1; n <= r.cfg.maxPasses; n++ {
		pass := newPass(r, settled, in, n)
		for _, rule := range r.rules {
			if err := rule.Apply(pass); err != nil {
				return nil, fmt.Errorf("settings: rule %s: %w", rule.Name(), err)
			}
		}
		pending := pass.pending()
		if len(pending) == 0 {
			return pass.projection(in.Snapshot, settled), nil
		}
		settled = settled.apply(pending)
	}
	return nil, fmt.Errorf("%w after %d passes", ErrUnstableRules, r.cfg.maxPasses)
}
