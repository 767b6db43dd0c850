package panel

import (
	"context"
	"log/slog"

	settings "github.com/goliatone/go-settings"
)

// NoticeKind classifies external notifications.
type NoticeKind int

const (
	// NoticeRefresh is the periodic telemetry tick.
	NoticeRefresh NoticeKind = iota
	// NoticeCapability carries a renegotiated capability snapshot.
	NoticeCapability
	// NoticeParked carries a park/drive transition.
	NoticeParked
)

// Notice is an external change delivered to Watch.
type Notice struct {
	Kind       NoticeKind
	Capability settings.Capability
	Parked     bool
}

// CapabilityChanged builds a capability notice.
func CapabilityChanged(c settings.Capability) Notice {
	return Notice{Kind: NoticeCapability, Capability: c}
}

// ParkedChanged builds a park/drive notice.
func ParkedChanged(parked bool) Notice {
	return Notice{Kind: NoticeParked, Parked: parked}
}

// Tick builds a refresh notice.
func Tick() Notice {
	return Notice{Kind: NoticeRefresh}
}

// Watch applies notices until ctx is done or notices is closed. Each notice
// triggers a full resolution; failures are logged and do not stop the loop.
func (p *Panel) Watch(ctx context.Context, notices <-chan Notice) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n, ok := <-notices:
			if !ok {
				return nil
			}
			if err := p.apply(ctx, n); err != nil {
				p.logger.Warn("notice failed", slog.Int("kind", int(n.Kind)), slog.String("error", err.Error()))
			}
		}
	}
}

func (p *Panel) apply(ctx context.Context, n Notice) error {
	switch n.Kind {
	case NoticeCapability:
		return p.SetCapability(ctx, n.Capability)
	case NoticeParked:
		return p.SetParked(ctx, n.Parked)
	default:
		return p.Refresh(ctx)
	}
}
