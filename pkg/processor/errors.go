package processor

import "errors"

// ErrBadConfig reports a processor or chain configuration the engine
// cannot render through.
var ErrBadConfig = errors.New("invalid processor configuration")
