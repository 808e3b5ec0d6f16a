package automation

import "errors"

var (
	// ErrInvalidSpec reports an automation spec whose shape or time-key
	// grammar is malformed.
	ErrInvalidSpec = errors.New("invalid automation spec")

	// ErrParamNotFound reports a parameter name with no match on the
	// processor.
	ErrParamNotFound = errors.New("parameter not found")

	// ErrTextValue reports a text value the processor could not parse.
	ErrTextValue = errors.New("cannot parse text value")
)
