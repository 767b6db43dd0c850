package settings

import "sort"

// Well-known capability flags decoded from the vehicle descriptor.
const (
	// CapabilityAngleOnly reports a steering interface without torque control.
	CapabilityAngleOnly = "steer.angle_only"
	// CapabilityOpenpilotLong reports longitudinal control by the assistance stack.
	CapabilityOpenpilotLong = "long.openpilot"
)

// Capability is a read-only snapshot of what the selected vehicle supports.
// The zero value is unknown, which every rule treats as most restrictive.
type Capability struct {
	Known     bool
	VehicleID string
	Flags     map[string]bool
}

// UnknownCapability returns the most restrictive capability snapshot.
func UnknownCapability() Capability {
	return Capability{}
}

// NewCapability returns a known snapshot for vehicleID.
func NewCapability(vehicleID string, flags map[string]bool) Capability {
	cloned := make(map[string]bool, len(flags))
	for k, v := range flags {
		cloned[k] = v
	}
	return Capability{Known: true, VehicleID: vehicleID, Flags: cloned}
}

// Flag returns the value of name. ok is false when the snapshot is unknown.
func (c Capability) Flag(name string) (value bool, ok bool) {
	if !c.Known {
		return false, false
	}
	return c.Flags[name], true
}

// FlagNames lists set flags sorted by name.
func (c Capability) FlagNames() []string {
	names := make([]string, 0, len(c.Flags))
	for name := range c.Flags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c Capability) binding() map[string]any {
	out := map[string]any{
		"known":   c.Known,
		"vehicle": c.VehicleID,
	}
	for name, value := range c.Flags {
		out[name] = value
	}
	return out
}
