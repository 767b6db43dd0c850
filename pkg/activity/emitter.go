package activity

import (
	"context"
	"strings"
)

// DefaultChannel is stamped on events that name no channel.
const DefaultChannel = "settings"

// Config controls emission. Sources, when set, limits emission to events
// caused by those sources.
type Config struct {
	Enabled bool
	Channel string
	Sources []string
}

// Emitter fans settings events out to hooks.
type Emitter struct {
	hooks   Hooks
	enabled bool
	channel string
	sources map[string]struct{}
}

// NewEmitter constructs an emitter from hooks and configuration.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	channel := strings.TrimSpace(cfg.Channel)
	if channel == "" {
		channel = DefaultChannel
	}
	kept := make(Hooks, 0, len(hooks))
	for _, hook := range hooks {
		if hook != nil {
			kept = append(kept, hook)
		}
	}
	e := &Emitter{
		hooks:   kept,
		enabled: cfg.Enabled && len(kept) > 0,
		channel: channel,
	}
	if len(cfg.Sources) > 0 {
		e.sources = toSet(cfg.Sources)
	}
	return e
}

// Enabled reports whether emissions should be attempted.
func (e *Emitter) Enabled() bool {
	return e != nil && e.enabled
}

// Emit forwards event to every hook unless its source is filtered out.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if e.sources != nil {
		if _, ok := e.sources[strings.TrimSpace(event.Source)]; !ok {
			return nil
		}
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.channel
	}
	return e.hooks.Notify(ctx, event)
}
