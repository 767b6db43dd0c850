// Package capability decodes the persisted vehicle descriptor into a
// settings.Capability snapshot.
package capability

import (
	"fmt"
	"strings"

	settings "github.com/goliatone/go-settings"
	"github.com/goliatone/go-settings/pkg/params"
	"github.com/tidwall/gjson"
)

// DefaultKey is the params key holding the descriptor of the selected vehicle.
const DefaultKey = "CarParamsPersistent"

// FlagRule maps a descriptor path onto a capability flag. When Equals is
// empty the path's truthiness is used; otherwise the flag is set when the
// value matches Equals case-insensitively.
type FlagRule struct {
	Flag   string
	Path   string
	Equals string
}

// DefaultRules are the flags every decoder understands.
var DefaultRules = []FlagRule{
	{Flag: settings.CapabilityAngleOnly, Path: "steerControlType", Equals: "angle"},
	{Flag: settings.CapabilityOpenpilotLong, Path: "openpilotLongitudinalControl"},
}

// Decoder turns descriptor JSON into a capability snapshot.
type Decoder struct {
	vehiclePath string
	rules       []FlagRule
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithFlagRule adds rule to the decoder.
func WithFlagRule(rule FlagRule) Option {
	return func(d *Decoder) {
		d.rules = append(d.rules, rule)
	}
}

// WithVehiclePath changes where the vehicle id is read from.
func WithVehiclePath(path string) Option {
	return func(d *Decoder) {
		if strings.TrimSpace(path) != "" {
			d.vehiclePath = path
		}
	}
}

// NewDecoder returns a decoder with DefaultRules.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{
		vehiclePath: "carFingerprint",
		rules:       append([]FlagRule(nil), DefaultRules...),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode parses data. Empty or malformed input yields an unknown capability
// and an error wrapping settings.ErrMissingCapability.
func (d *Decoder) Decode(data []byte) (settings.Capability, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return settings.UnknownCapability(), fmt.Errorf("capability: empty descriptor: %w", settings.ErrMissingCapability)
	}
	if !gjson.ValidBytes(data) {
		return settings.UnknownCapability(), fmt.Errorf("capability: malformed descriptor: %w", settings.ErrMissingCapability)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return settings.UnknownCapability(), fmt.Errorf("capability: descriptor is not an object: %w", settings.ErrMissingCapability)
	}
	vehicle := root.Get(d.vehiclePath)
	if !vehicle.Exists() || strings.TrimSpace(vehicle.String()) == "" {
		return settings.UnknownCapability(), fmt.Errorf("capability: descriptor has no %s: %w", d.vehiclePath, settings.ErrMissingCapability)
	}

	flags := make(map[string]bool, len(d.rules))
	for _, rule := range d.rules {
		value := root.Get(rule.Path)
		if !value.Exists() {
			flags[rule.Flag] = false
			continue
		}
		if rule.Equals == "" {
			flags[rule.Flag] = value.Bool()
			continue
		}
		flags[rule.Flag] = strings.EqualFold(value.String(), rule.Equals)
	}
	return settings.NewCapability(vehicle.String(), flags), nil
}

// Load reads the descriptor stored under key in backend.
func (d *Decoder) Load(backend params.Backend, key string) (settings.Capability, error) {
	if backend == nil {
		return settings.UnknownCapability(), fmt.Errorf("capability: backend is nil: %w", settings.ErrMissingCapability)
	}
	if key == "" {
		key = DefaultKey
	}
	raw, ok, err := backend.Get(key)
	if err != nil {
		return settings.UnknownCapability(), fmt.Errorf("capability: read %s: %w", key, err)
	}
	if !ok {
		return settings.UnknownCapability(), fmt.Errorf("capability: %s not set: %w", key, settings.ErrMissingCapability)
	}
	return d.Decode([]byte(raw))
}
