package checks

import "errors"

// ErrInvalidTarget indicates the supplied project path does not exist or is
// not a directory. Detected before any container is launched.
var ErrInvalidTarget = errors.New("invalid target: not an existing directory")
