package panel

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	settings "github.com/goliatone/go-settings"
	"github.com/goliatone/go-settings/pkg/activity"
	"github.com/goliatone/go-settings/pkg/params"
	"github.com/pelletier/go-toml/v2"
)

// Config is the host-facing configuration of a panel session.
type Config struct {
	// Engine selects the expression engine: expr (default), cel or js.
	Engine string `toml:"engine"`
	// StorePath is the JSON params file. Empty keeps values in memory.
	StorePath string `toml:"store_path"`
	// MaxPasses bounds the resolver settle loop.
	MaxPasses int            `toml:"max_passes"`
	Activity  ActivityConfig `toml:"activity"`
}

// ActivityConfig mirrors activity.Config. Sources limits reporting to
// operator, resolver or rollback changes.
type ActivityConfig struct {
	Enabled bool     `toml:"enabled"`
	Channel string   `toml:"channel"`
	Sources []string `toml:"sources"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Engine:    "expr",
		MaxPasses: settings.DefaultMaxPasses,
		Activity:  ActivityConfig{Channel: activity.DefaultChannel},
	}
}

// LoadConfig reads a TOML file over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("panel: read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes TOML over DefaultConfig. Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("panel: decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field values.
func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Engine)) {
	case "", "expr", "cel", "js":
	default:
		return fmt.Errorf("panel: unknown engine %q", c.Engine)
	}
	if c.MaxPasses < 0 {
		return fmt.Errorf("panel: max_passes must not be negative")
	}
	for _, source := range c.Activity.Sources {
		switch source {
		case activity.SourceOperator, activity.SourceResolver, activity.SourceRollback:
		default:
			return fmt.Errorf("panel: unknown activity source %q", source)
		}
	}
	return nil
}

// Evaluator builds the configured expression engine.
func (c Config) Evaluator(cache settings.ProgramCache) (settings.Evaluator, error) {
	switch strings.ToLower(strings.TrimSpace(c.Engine)) {
	case "", "expr":
		return settings.NewExprEvaluator(settings.ExprWithProgramCache(cache)), nil
	case "cel":
		return settings.NewCELEvaluator(settings.CELWithProgramCache(cache)), nil
	case "js":
		e := settings.NewJSEvaluator(settings.JSWithProgramCache(cache))
		if e == nil {
			return nil, fmt.Errorf("panel: js engine requires the js_eval build tag")
		}
		return e, nil
	default:
		return nil, fmt.Errorf("panel: unknown engine %q", c.Engine)
	}
}

// ResolverOptions translates the config into resolver options.
func (c Config) ResolverOptions() ([]settings.ResolverOption, error) {
	cache := settings.NewProgramCache()
	evaluator, err := c.Evaluator(cache)
	if err != nil {
		return nil, err
	}
	return []settings.ResolverOption{
		settings.WithEvaluator(evaluator),
		settings.WithProgramCache(cache),
		settings.WithMaxPasses(c.MaxPasses),
	}, nil
}

// Backend opens the configured params backend.
func (c Config) Backend() (params.Backend, error) {
	if strings.TrimSpace(c.StorePath) == "" {
		return params.NewMemoryBackend(nil), nil
	}
	return params.OpenFile(c.StorePath)
}

// Emitter builds an activity emitter over hooks.
func (c Config) Emitter(hooks activity.Hooks) *activity.Emitter {
	return activity.NewEmitter(hooks, activity.Config{
		Enabled: c.Activity.Enabled,
		Channel: c.Activity.Channel,
		Sources: c.Activity.Sources,
	})
}
