package settings

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfDomain indicates a value outside the option's declared domain.
	ErrOutOfDomain = errors.New("settings: value out of domain")
	// ErrUnknownOption indicates an id that is not part of the catalog.
	ErrUnknownOption = errors.New("settings: unknown option")
	// ErrDuplicateOption indicates a catalog declared the same id twice.
	ErrDuplicateOption = errors.New("settings: duplicate option")
	// ErrOptionLocked indicates a write to an option the current vehicle cannot use.
	ErrOptionLocked = errors.New("settings: option locked")
	// ErrMissingCapability indicates the capability snapshot is absent or undecodable.
	ErrMissingCapability = errors.New("settings: capability snapshot missing")
	// ErrStaleProjection indicates a projection was read after a mutation
	// without a resolution pass in between.
	ErrStaleProjection = errors.New("settings: projection is stale")
	// ErrUnstableRules indicates the settle loop did not reach a fixed point.
	ErrUnstableRules = errors.New("settings: rules did not converge")
)

// OptionError records the option and operation that failed.
type OptionError struct {
	Op    string
	ID    string
	Value string
	Err   error
}

func (e *OptionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Value == "" {
		return fmt.Sprintf("settings: %s %s: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("settings: %s %s=%q: %v", e.Op, e.ID, e.Value, e.Err)
}

func (e *OptionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func unknownOption(op, id string) error {
	return &OptionError{Op: op, ID: id, Err: ErrUnknownOption}
}
