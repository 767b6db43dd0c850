// Package panel is the sequential owner of a settings session. It turns
// operator events into store mutations, re-resolves after each one and
// reports the effects the host must carry out.
package panel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	settings "github.com/goliatone/go-settings"
	"github.com/goliatone/go-settings/pkg/activity"
	"github.com/google/uuid"
)

// Default keys written by SelectCar.
const (
	DefaultCarModelKey     = "CarModel"
	DefaultCarModelTextKey = "CarModelText"
)

type pendingConfirmation struct {
	id      string
	prevRaw string
	present bool
	written string
}

// Panel serializes every mutation and resolution of one settings session.
type Panel struct {
	mu         sync.Mutex
	store      *settings.Store
	resolver   *settings.Resolver
	capability settings.Capability
	source     func() (settings.Capability, error)
	parked     bool
	projection *settings.Projection
	pending    map[uuid.UUID]pendingConfirmation
	logger     *slog.Logger
	emitter    *activity.Emitter
	carKey     string
	carTextKey string
}

// Option configures New.
type Option func(*Panel)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Panel) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithCapability sets the initial capability snapshot.
func WithCapability(c settings.Capability) Option {
	return func(p *Panel) {
		p.capability = c
	}
}

// WithCapabilitySource reloads the capability on New and Refresh.
func WithCapabilitySource(fn func() (settings.Capability, error)) Option {
	return func(p *Panel) {
		p.source = fn
	}
}

// WithParked sets the initial drive state. Sessions start parked.
func WithParked(parked bool) Option {
	return func(p *Panel) {
		p.parked = parked
	}
}

// WithActivityEmitter reports confirmations through emitter.
func WithActivityEmitter(emitter *activity.Emitter) Option {
	return func(p *Panel) {
		p.emitter = emitter
	}
}

// WithCarKeys overrides the keys SelectCar writes.
func WithCarKeys(model, text string) Option {
	return func(p *Panel) {
		p.carKey = model
		p.carTextKey = text
	}
}

// New opens a session and performs the initial resolution.
func New(ctx context.Context, store *settings.Store, resolver *settings.Resolver, opts ...Option) (*Panel, error) {
	if store == nil || resolver == nil {
		return nil, errors.New("panel: store and resolver are required")
	}
	p := &Panel{
		store:      store,
		resolver:   resolver,
		parked:     true,
		pending:    map[uuid.UUID]pendingConfirmation{},
		logger:     slog.Default(),
		carKey:     DefaultCarModelKey,
		carTextKey: DefaultCarModelTextKey,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reloadCapability()
	if err := p.resolve(ctx, ""); err != nil {
		return nil, err
	}
	return p, nil
}

// Projection returns the last resolution. It fails with
// settings.ErrStaleProjection when the store changed since.
func (p *Panel) Projection() (*settings.Projection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.projection == nil || p.projection.Generation != p.store.Generation() {
		return nil, settings.ErrStaleProjection
	}
	return p.projection, nil
}

// Group lists the projected entries of group in declaration order.
func (p *Panel) Group(name string) ([]settings.Entry, error) {
	proj, err := p.Projection()
	if err != nil {
		return nil, err
	}
	var out []settings.Entry
	for _, d := range p.store.Catalog().Group(name) {
		if e, ok := proj.Entry(d.ID); ok {
			out = append(out, e)
		}
	}
	return out, nil
}

// Capability returns the capability snapshot in use.
func (p *Panel) Capability() settings.Capability {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.capability
}

// Toggle flips a boolean option.
func (p *Panel) Toggle(ctx context.Context, id string) ([]Effect, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	d, entry, err := p.editable(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Kind != settings.KindBool {
		return nil, &settings.OptionError{Op: "toggle", ID: id, Err: ErrWrongKind}
	}
	return p.commit(ctx, d, settings.BoolValue(!entry.Value.Bool()))
}

// Increment moves a ranged or enumerated option one step up.
func (p *Panel) Increment(ctx context.Context, id string) ([]Effect, error) {
	return p.adjust(ctx, id, 1)
}

// Decrement moves a ranged or enumerated option one step down.
func (p *Panel) Decrement(ctx context.Context, id string) ([]Effect, error) {
	return p.adjust(ctx, id, -1)
}

// Select stores an explicit value for a ranged or enumerated option.
func (p *Panel) Select(ctx context.Context, id string, value int) ([]Effect, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	d, _, err := p.editable(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Kind != settings.KindInt && d.Kind != settings.KindEnum {
		return nil, &settings.OptionError{Op: "select", ID: id, Err: ErrWrongKind}
	}
	v, err := d.Parse(fmt.Sprint(value))
	if err != nil {
		return nil, err
	}
	return p.commit(ctx, d, v)
}

// SelectDisplay stores a ranged option from its display text, e.g. "1.5".
func (p *Panel) SelectDisplay(ctx context.Context, id, text string) ([]Effect, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	d, _, err := p.editable(ctx, id)
	if err != nil {
		return nil, err
	}
	raw, err := d.ParseDisplay(text)
	if err != nil {
		return nil, err
	}
	v, err := d.Parse(raw)
	if err != nil {
		return nil, err
	}
	return p.commit(ctx, d, v)
}

// SelectCar records the selected vehicle. The capability becomes unknown
// until the host renegotiates it and calls SetCapability.
func (p *Panel) SelectCar(ctx context.Context, vehicleID, label string) ([]Effect, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if vehicleID == "" {
		return nil, errors.New("panel: vehicle id must not be empty")
	}
	if err := p.store.Set(ctx, p.carKey, vehicleID); err != nil {
		return nil, err
	}
	if err := p.store.Set(ctx, p.carTextKey, label); err != nil {
		return nil, err
	}
	p.capability = settings.UnknownCapability()
	p.logger.Info("vehicle selected", slog.String("vehicle", vehicleID))
	if err := p.resolve(ctx, p.carKey); err != nil {
		return nil, err
	}
	return []Effect{RenegotiateEffect{VehicleID: vehicleID}}, nil
}

// Confirm settles a pending confirmation. Declining restores the value the
// option had before the mutation, or removes the key when it was absent. A
// decline is a no-op once the option no longer holds the confirmed value.
func (p *Panel) Confirm(ctx context.Context, token uuid.UUID, accepted bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	pc, ok := p.pending[token]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownConfirmation, token)
	}
	delete(p.pending, token)

	event := activity.ConfirmationSettled(pc.id, accepted).
		WithSession(p.sessionContext()).
		WithMetadata("token", token.String())
	if accepted {
		p.emit(ctx, event)
		return nil
	}
	raw, _, err := p.store.Get(pc.id)
	if err != nil {
		return err
	}
	if raw != pc.written {
		p.logger.Info("rollback skipped, option changed since", slog.String("option", pc.id))
		return nil
	}
	if err := p.store.Restore(ctx, pc.id, pc.prevRaw, pc.present); err != nil {
		return err
	}
	p.emit(ctx, event)
	p.logger.Info("mutation rolled back", slog.String("option", pc.id))
	return p.resolve(ctx, pc.id)
}

// Pending lists unresolved confirmation tokens.
func (p *Panel) Pending() []uuid.UUID {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]uuid.UUID, 0, len(p.pending))
	for token := range p.pending {
		out = append(out, token)
	}
	return out
}

// SetParked records a park/drive transition and re-resolves.
func (p *Panel) SetParked(ctx context.Context, parked bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.parked = parked
	return p.resolve(ctx, "")
}

// SetCapability replaces the capability snapshot and re-resolves.
func (p *Panel) SetCapability(ctx context.Context, c settings.Capability) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.capability = c
	return p.resolve(ctx, "")
}

// Refresh reloads the capability source, if any, and re-resolves.
func (p *Panel) Refresh(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reloadCapability()
	return p.resolve(ctx, "")
}

func (p *Panel) adjust(ctx context.Context, id string, steps int) ([]Effect, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	d, entry, err := p.editable(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Kind != settings.KindInt && d.Kind != settings.KindEnum {
		return nil, &settings.OptionError{Op: "adjust", ID: id, Err: ErrWrongKind}
	}
	next := d.Adjust(entry.Value, steps)
	if raw, present, _ := p.store.Get(id); present && raw == next.Raw() {
		return nil, nil
	}
	return p.commit(ctx, d, next)
}

// editable returns the descriptor and entry of id if events may change it.
func (p *Panel) editable(ctx context.Context, id string) (settings.Descriptor, settings.Entry, error) {
	d, ok := p.store.Catalog().Lookup(id)
	if !ok {
		return settings.Descriptor{}, settings.Entry{}, &settings.OptionError{Op: "event", ID: id, Err: settings.ErrUnknownOption}
	}
	if p.projection == nil || p.projection.Generation != p.store.Generation() {
		if err := p.resolve(ctx, ""); err != nil {
			return d, settings.Entry{}, err
		}
	}
	entry, _ := p.projection.Entry(id)
	switch {
	case entry.Locked:
		return d, entry, &settings.OptionError{Op: "event", ID: id, Err: settings.ErrOptionLocked}
	case !entry.Visible:
		return d, entry, &settings.OptionError{Op: "event", ID: id, Err: ErrOptionHidden}
	case !entry.Enabled:
		return d, entry, &settings.OptionError{Op: "event", ID: id, Err: fmt.Errorf("%w: %s", ErrOptionDisabled, entry.Reason)}
	}
	return d, entry, nil
}

// commit writes v, re-resolves and derives the effects of the change.
func (p *Panel) commit(ctx context.Context, d settings.Descriptor, v settings.Value) ([]Effect, error) {
	prevRaw, present, err := p.store.Get(d.ID)
	if err != nil {
		return nil, err
	}
	if d.RemoveWhenOff && d.Kind == settings.KindBool && !v.Bool() {
		err = p.store.Remove(ctx, d.ID)
	} else {
		err = p.store.Set(ctx, d.ID, v.Raw())
	}
	if err != nil {
		return nil, err
	}
	p.logger.Debug("option changed",
		slog.String("option", d.ID),
		slog.String("old", prevRaw),
		slog.String("new", v.Raw()),
	)

	var effects []Effect
	if d.ConfirmOn && v.Bool() {
		pc := pendingConfirmation{id: d.ID, prevRaw: prevRaw, present: present, written: v.Raw()}
		for token, old := range p.pending {
			if old.id == d.ID {
				pc.prevRaw, pc.present = old.prevRaw, old.present
				delete(p.pending, token)
			}
		}
		token := uuid.New()
		p.pending[token] = pc
		message := d.ConfirmMessage
		if message == "" {
			message = d.Title
		}
		effects = append(effects, ConfirmEffect{Token: token, OptionID: d.ID, Message: message})
	}
	if d.RestartOnChange {
		effects = append(effects, RestartEffect{OptionID: d.ID, Message: "You must restart your car or your device to apply these changes."})
	}
	if d.RebootPrompt != "" {
		effects = append(effects, RebootEffect{OptionID: d.ID, Prompt: d.RebootPrompt})
	}
	if err := p.resolve(ctx, d.ID); err != nil {
		return effects, err
	}
	return effects, nil
}

// resolve runs the resolver, applies its writes and syncs locks. A second
// resolution confirms the applied state is settled.
func (p *Panel) resolve(ctx context.Context, changed string) error {
	for attempt := 0; attempt < 2; attempt++ {
		snap, err := p.store.Snapshot()
		if err != nil {
			return err
		}
		proj, err := p.resolver.Resolve(settings.Input{
			Snapshot:   snap,
			Capability: p.capability,
			Parked:     p.parked,
			Changed:    changed,
		})
		if err != nil {
			p.logger.Error("resolution failed", slog.String("error", err.Error()))
			return err
		}
		if proj.Settled() {
			p.projection = proj
			return p.syncLocks(ctx, proj.Locks)
		}
		p.logger.Debug("applying resolver writes",
			slog.Int("writes", len(proj.Writes)),
			slog.Int("passes", proj.Passes),
		)
		if err := p.store.Apply(ctx, proj.Writes); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w: writes did not settle", settings.ErrUnstableRules)
}

func (p *Panel) syncLocks(ctx context.Context, locks map[string]string) error {
	for id := range p.store.Locks() {
		if _, keep := locks[id]; !keep {
			p.store.Unlock(id)
		}
	}
	for id, reason := range locks {
		if err := p.store.Lock(ctx, id, reason); err != nil {
			return err
		}
	}
	return nil
}

func (p *Panel) reloadCapability() {
	if p.source == nil {
		return
	}
	c, err := p.source()
	if err != nil {
		p.logger.Warn("capability unavailable", slog.String("error", err.Error()))
	}
	p.capability = c
}

func (p *Panel) sessionContext() activity.SessionContext {
	parked := p.parked
	sc := activity.SessionContext{
		VehicleID: p.capability.VehicleID,
		Parked:    &parked,
	}
	if p.projection != nil {
		sc.Generation = p.projection.Generation
		sc.SnapshotID = p.projection.SnapshotID
	}
	return sc
}

func (p *Panel) emit(ctx context.Context, event activity.Event) {
	if p.emitter == nil {
		return
	}
	if err := p.emitter.Emit(ctx, event); err != nil {
		p.logger.Warn("activity hook failed", slog.String("error", err.Error()))
	}
}
