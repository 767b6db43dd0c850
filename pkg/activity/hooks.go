package activity

import (
	"context"
	"errors"
)

// ActivityHook receives normalized settings events.
type ActivityHook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc allows plain functions to satisfy ActivityHook.
type HookFunc func(ctx context.Context, event Event) error

// Notify dispatches to the underlying function.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks fans out events to zero or more hooks.
type Hooks []ActivityHook

// Enabled reports whether there are any hooks to notify.
func (h Hooks) Enabled() bool {
	return len(h) > 0
}

// Notify normalizes event and forwards it to every hook, joining their
// errors. Events without a verb or object type are dropped.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 {
		return nil
	}
	normalized := NormalizeEvent(event)
	if normalized.Verb == "" || normalized.ObjectType == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, normalized); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type filterHook struct {
	next ActivityHook
	keep func(Event) bool
}

func (f filterHook) Notify(ctx context.Context, event Event) error {
	if f.next == nil || !f.keep(event) {
		return nil
	}
	return f.next.Notify(ctx, event)
}

// ForOptions forwards to hook only events about one of ids.
func ForOptions(hook ActivityHook, ids ...string) ActivityHook {
	set := toSet(ids)
	return filterHook{next: hook, keep: func(e Event) bool {
		_, ok := set[e.OptionID]
		return ok
	}}
}

// FromSources forwards to hook only events caused by one of sources, e.g.
// SourceOperator to skip resolver bookkeeping.
func FromSources(hook ActivityHook, sources ...string) ActivityHook {
	set := toSet(sources)
	return filterHook{next: hook, keep: func(e Event) bool {
		_, ok := set[e.Source]
		return ok
	}}
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
