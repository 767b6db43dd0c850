package panel

import "errors"

var (
	// ErrOptionHidden rejects events on options the projection hides.
	ErrOptionHidden = errors.New("panel: option hidden")
	// ErrOptionDisabled rejects events on options the projection disables.
	ErrOptionDisabled = errors.New("panel: option disabled")
	// ErrUnknownConfirmation indicates a token that is not pending.
	ErrUnknownConfirmation = errors.New("panel: unknown confirmation")
	// ErrWrongKind indicates an event that does not fit the option kind.
	ErrWrongKind = errors.New("panel: event does not apply to option kind")
)
