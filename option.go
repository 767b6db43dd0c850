package settings

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the value domain of an option.
type Kind int

const (
	// KindUnknown guards against zero-value descriptors.
	KindUnknown Kind = iota
	// KindBool options persist "0" or "1".
	KindBool
	// KindInt options persist a decimal integer within [Min, Max] on the Step grid.
	KindInt
	// KindEnum options persist the decimal value of one of their Members.
	KindEnum
	// KindText options persist free text such as the selected vehicle.
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindEnum:
		return "enum"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Member is one labeled value of an enumeration option.
type Member struct {
	Value int
	Label string
}

// Descriptor is the immutable metadata for a single option. It never holds the
// option's current value; values live in the Store.
type Descriptor struct {
	ID          string
	Kind        Kind
	Group       string
	Title       string
	Description string

	// Min, Max and Step bound KindInt options. Step defaults to 1.
	Min  int
	Max  int
	Step int

	// Members is the ordered domain of KindEnum options.
	Members []Member

	// Default is the raw value used when the key is absent. Empty means false
	// for booleans, Min for ranges and the first member for enumerations.
	Default string

	// Scale divides the raw integer for presentation only (e.g. 100 shows 150
	// as "1.5"). Must be a power of ten.
	Scale int
	// Unit follows numeric display text after a space.
	Unit string
	// Labels overrides the display text of specific KindInt values.
	Labels map[int]string

	// ConfirmOn asks the operator to confirm before enabling a boolean.
	ConfirmOn      bool
	ConfirmMessage string
	// RestartOnChange surfaces a restart notice after the value changes.
	RestartOnChange bool
	// RebootPrompt, when set, offers a reboot after the value changes.
	RebootPrompt string
	// RemoveWhenOff deletes the key instead of persisting "0".
	RemoveWhenOff bool
}

// Value is a decoded, in-domain option value.
type Value struct {
	Kind Kind
	Int  int
	Text string
}

// BoolValue returns a boolean value.
func BoolValue(b bool) Value {
	if b {
		return Value{Kind: KindBool, Int: 1}
	}
	return Value{Kind: KindBool}
}

// IntValue returns a numeric value of kind.
func IntValue(kind Kind, n int) Value {
	return Value{Kind: kind, Int: n}
}

// TextValue returns a text value.
func TextValue(text string) Value {
	return Value{Kind: KindText, Text: text}
}

// Bool reports whether the value is truthy.
func (v Value) Bool() bool {
	if v.Kind == KindText {
		return v.Text != ""
	}
	return v.Int != 0
}

// Raw returns the persisted string encoding.
func (v Value) Raw() string {
	if v.Kind == KindText {
		return v.Text
	}
	if v.Kind == KindBool {
		if v.Int != 0 {
			return "1"
		}
		return "0"
	}
	return strconv.Itoa(v.Int)
}

// Native returns the value as bool or int for expression environments.
func (v Value) Native() any {
	if v.Kind == KindText {
		return v.Text
	}
	if v.Kind == KindBool {
		return v.Int != 0
	}
	return v.Int
}

// Validate checks the descriptor is internally consistent.
func (d Descriptor) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("settings: option id must not be empty")
	}
	switch d.Kind {
	case KindBool:
	case KindInt:
		if d.Min > d.Max {
			return fmt.Errorf("settings: option %q: min %d greater than max %d", d.ID, d.Min, d.Max)
		}
		if d.Step < 0 {
			return fmt.Errorf("settings: option %q: negative step", d.ID)
		}
	case KindEnum:
		if len(d.Members) == 0 {
			return fmt.Errorf("settings: option %q: enumeration without members", d.ID)
		}
		seen := make(map[int]struct{}, len(d.Members))
		for _, m := range d.Members {
			if _, ok := seen[m.Value]; ok {
				return fmt.Errorf("settings: option %q: duplicate member %d", d.ID, m.Value)
			}
			seen[m.Value] = struct{}{}
		}
	case KindText:
	default:
		return fmt.Errorf("settings: option %q: unknown kind", d.ID)
	}
	if d.Scale > 1 && !isPowerOfTen(d.Scale) {
		return fmt.Errorf("settings: option %q: scale %d is not a power of ten", d.ID, d.Scale)
	}
	if d.Default != "" {
		if _, err := d.Parse(d.Default); err != nil {
			return fmt.Errorf("settings: option %q: default: %w", d.ID, err)
		}
	}
	return nil
}

func (d Descriptor) step() int {
	if d.Step <= 0 {
		return 1
	}
	return d.Step
}

// DefaultValue returns the value used for an absent key.
func (d Descriptor) DefaultValue() Value {
	if d.Default != "" {
		if v, err := d.Parse(d.Default); err == nil {
			return v
		}
	}
	switch d.Kind {
	case KindInt:
		return IntValue(KindInt, d.Min)
	case KindEnum:
		return IntValue(KindEnum, d.Members[0].Value)
	case KindText:
		return TextValue("")
	default:
		return BoolValue(false)
	}
}

// Parse decodes raw strictly. Anything outside the declared domain fails with
// ErrOutOfDomain; no coercion is applied.
func (d Descriptor) Parse(raw string) (Value, error) {
	switch d.Kind {
	case KindBool:
		switch raw {
		case "1":
			return BoolValue(true), nil
		case "0":
			return BoolValue(false), nil
		}
		return Value{}, d.outOfDomain(raw)
	case KindInt:
		n, err := strconv.Atoi(raw)
		if err != nil || n < d.Min || n > d.Max || (n-d.Min)%d.step() != 0 {
			return Value{}, d.outOfDomain(raw)
		}
		return IntValue(KindInt, n), nil
	case KindEnum:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Value{}, d.outOfDomain(raw)
		}
		for _, m := range d.Members {
			if m.Value == n {
				return IntValue(KindEnum, n), nil
			}
		}
		return Value{}, d.outOfDomain(raw)
	case KindText:
		return TextValue(raw), nil
	default:
		return Value{}, d.outOfDomain(raw)
	}
}

// Coerce decodes raw leniently, moving out-of-domain input to the nearest
// legal value. coerced reports whether the result differs from raw.
func (d Descriptor) Coerce(raw string) (value Value, coerced bool) {
	if v, err := d.Parse(raw); err == nil {
		return v, false
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return d.DefaultValue(), true
	}
	switch d.Kind {
	case KindBool:
		if b, err := strconv.ParseBool(raw); err == nil {
			return BoolValue(b), true
		}
		if n, err := strconv.Atoi(raw); err == nil {
			return BoolValue(n != 0), true
		}
	case KindInt:
		if n, err := strconv.Atoi(raw); err == nil {
			return IntValue(KindInt, d.snap(n)), true
		}
	case KindEnum:
		if n, err := strconv.Atoi(raw); err == nil {
			return IntValue(KindEnum, d.nearestMember(n)), true
		}
	}
	return d.DefaultValue(), true
}

func (d Descriptor) snap(n int) int {
	if n < d.Min {
		n = d.Min
	}
	if n > d.Max {
		n = d.Max
	}
	step := d.step()
	k := (n - d.Min + step/2) / step
	n = d.Min + k*step
	for n > d.Max {
		n -= step
	}
	return n
}

func (d Descriptor) nearestMember(n int) int {
	best := d.Members[0].Value
	bestDist := abs(n - best)
	for _, m := range d.Members[1:] {
		if dist := abs(n - m.Value); dist < bestDist {
			best, bestDist = m.Value, dist
		}
	}
	return best
}

// Adjust moves v by steps along the domain, stopping at the edges. Booleans
// flip on any non-zero step.
func (d Descriptor) Adjust(v Value, steps int) Value {
	switch d.Kind {
	case KindBool:
		if steps == 0 {
			return v
		}
		return BoolValue(!v.Bool())
	case KindInt:
		return IntValue(KindInt, d.snap(v.Int+steps*d.step()))
	case KindEnum:
		idx := 0
		for i, m := range d.Members {
			if m.Value == v.Int {
				idx = i
				break
			}
		}
		idx += steps
		if idx < 0 {
			idx = 0
		}
		if idx >= len(d.Members) {
			idx = len(d.Members) - 1
		}
		return IntValue(KindEnum, d.Members[idx].Value)
	default:
		return v
	}
}

// Display renders v for the operator. Storage is never affected.
func (d Descriptor) Display(v Value) string {
	switch d.Kind {
	case KindBool:
		if v.Bool() {
			return "on"
		}
		return "off"
	case KindEnum:
		for _, m := range d.Members {
			if m.Value == v.Int {
				return m.Label
			}
		}
		return strconv.Itoa(v.Int)
	case KindText:
		return v.Text
	default:
		if label, ok := d.Labels[v.Int]; ok {
			return label
		}
		if d.Unit == "" {
			return formatScaled(v.Int, d.Scale)
		}
		return formatScaled(v.Int, d.Scale) + " " + d.Unit
	}
}

// ParseDisplay converts operator-facing numeric text back to the raw stored
// encoding, e.g. "1.5" with Scale 100 yields "150". The conversion is exact.
func (d Descriptor) ParseDisplay(text string) (string, error) {
	if d.Kind != KindInt {
		return "", fmt.Errorf("settings: option %q: display parsing requires an integer range", d.ID)
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), d.Unit)
	n, err := parseScaled(strings.TrimSpace(text), d.Scale)
	if err != nil {
		return "", &OptionError{Op: "parse", ID: d.ID, Value: text, Err: errors.Join(ErrOutOfDomain, err)}
	}
	raw := strconv.Itoa(n)
	if _, err := d.Parse(raw); err != nil {
		return "", err
	}
	return raw, nil
}

// Domain describes the legal values for error messages and schemas.
func (d Descriptor) Domain() string {
	switch d.Kind {
	case KindBool:
		return "{0,1}"
	case KindInt:
		if d.step() > 1 {
			return fmt.Sprintf("[%d,%d] step %d", d.Min, d.Max, d.step())
		}
		return fmt.Sprintf("[%d,%d]", d.Min, d.Max)
	case KindEnum:
		values := make([]string, len(d.Members))
		for i, m := range d.Members {
			values[i] = strconv.Itoa(m.Value)
		}
		return "{" + strings.Join(values, ",") + "}"
	case KindText:
		return "text"
	default:
		return "{}"
	}
}

func (d Descriptor) outOfDomain(raw string) error {
	return &OptionError{
		Op:    "parse",
		ID:    d.ID,
		Value: raw,
		Err:   fmt.Errorf("%w: want %s", ErrOutOfDomain, d.Domain()),
	}
}

func formatScaled(v, scale int) string {
	if scale <= 1 {
		return strconv.Itoa(v)
	}
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	whole, frac := v/scale, v%scale
	if frac == 0 {
		return sign + strconv.Itoa(whole)
	}
	digits := fmt.Sprintf("%0*d", decimals(scale), frac)
	return sign + strconv.Itoa(whole) + "." + strings.TrimRight(digits, "0")
}

func parseScaled(text string, scale int) (int, error) {
	if scale <= 1 {
		return strconv.Atoi(text)
	}
	neg := false
	switch {
	case strings.HasPrefix(text, "-"):
		neg = true
		text = text[1:]
	case strings.HasPrefix(text, "+"):
		text = text[1:]
	}
	whole, frac, _ := strings.Cut(text, ".")
	frac = strings.TrimRight(frac, "0")
	places := decimals(scale)
	if len(frac) > places {
		return 0, fmt.Errorf("more than %d decimal places", places)
	}
	if whole == "" && frac == "" {
		return 0, fmt.Errorf("empty number")
	}
	w := 0
	if whole != "" {
		n, err := strconv.Atoi(whole)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid number %q", text)
		}
		w = n
	}
	f := 0
	if frac != "" {
		frac += strings.Repeat("0", places-len(frac))
		n, err := strconv.Atoi(frac)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid number %q", text)
		}
		f = n
	}
	n := w*scale + f
	if neg {
		n = -n
	}
	return n, nil
}

func decimals(scale int) int {
	n := 0
	for scale > 1 {
		scale /= 10
		n++
	}
	return n
}

func isPowerOfTen(n int) bool {
	for n > 1 && n%10 == 0 {
		n /= 10
	}
	return n == 1
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
