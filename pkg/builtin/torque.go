package builtin

import settings "github.com/goliatone/go-settings"

// TorqueMode is the lateral torque tuning state derived from the torque options.
type TorqueMode int

const (
	TorqueOff TorqueMode = iota
	TorqueEnforcedDefault
	TorqueEnforcedSelfTune
	TorqueEnforcedCustomTune
)

func (m TorqueMode) String() string {
	switch m {
	case TorqueEnforcedDefault:
		return "Enforced-Default"
	case TorqueEnforcedSelfTune:
		return "Enforced-SelfTune"
	case TorqueEnforcedCustomTune:
		return "Enforced-CustomTune"
	default:
		return "Off"
	}
}

// TorqueModeOf reads the torque state from a settled projection.
func TorqueModeOf(p *settings.Projection) TorqueMode {
	if !p.Bool(EnforceTorqueLateral) {
		return TorqueOff
	}
	switch {
	case p.Bool(LiveTorque):
		return TorqueEnforcedSelfTune
	case p.Bool(CustomTorqueLateral):
		return TorqueEnforcedCustomTune
	default:
		return TorqueEnforcedDefault
	}
}
