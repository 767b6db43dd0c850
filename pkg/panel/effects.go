package panel

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Effect is an out-of-band action the host performs after an event.
type Effect interface {
	effect()
}

// ConfirmEffect asks the operator to confirm a mutation that has already been
// written. Resolve it with Panel.Confirm.
type ConfirmEffect struct {
	Token    uuid.UUID
	OptionID string
	Message  string
}

// RestartEffect tells the operator a restart is needed to apply a change.
type RestartEffect struct {
	OptionID string
	Message  string
}

// RebootEffect offers to reboot the device now.
type RebootEffect struct {
	OptionID string
	Prompt   string
}

// RenegotiateEffect asks the host to restart and decode the capability of
// the newly selected vehicle.
type RenegotiateEffect struct {
	VehicleID string
}

func (ConfirmEffect) effect()     {}
func (RestartEffect) effect()     {}
func (RebootEffect) effect()      {}
func (RenegotiateEffect) effect() {}

// Host performs effects on behalf of the panel.
type Host interface {
	RequestConfirmation(message string) bool
	RequestRestart(message string)
	RequestReboot(prompt string)
	RequestCapabilityRenegotiation(vehicleID string)
}

// Dispatch drives host synchronously through effects, resolving
// confirmations against p.
func Dispatch(ctx context.Context, p *Panel, host Host, effects []Effect) error {
	if host == nil {
		return errors.New("panel: host is nil")
	}
	var errs []error
	for _, eff := range effects {
		switch e := eff.(type) {
		case ConfirmEffect:
			accepted := host.RequestConfirmation(e.Message)
			if err := p.Confirm(ctx, e.Token, accepted); err != nil {
				errs = append(errs, err)
			}
		case RestartEffect:
			host.RequestRestart(e.Message)
		case RebootEffect:
			host.RequestReboot(e.Prompt)
		case RenegotiateEffect:
			host.RequestCapabilityRenegotiation(e.VehicleID)
		}
	}
	return errors.Join(errs...)
}
