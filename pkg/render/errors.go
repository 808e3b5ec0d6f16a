package render

import "errors"

var (
	// ErrConfig reports a render configuration rejected before the first
	// block: bad block size, unsupported bit depth, mismatched sample
	// rates.
	ErrConfig = errors.New("invalid render configuration")

	// ErrBadSource reports a MIDI source the engine cannot schedule.
	ErrBadSource = errors.New("invalid MIDI source")
)
