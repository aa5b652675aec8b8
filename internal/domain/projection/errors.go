package projection

import "errors"

// ErrRunLocked is returned by WithRunLock when another run holds the lock.
var ErrRunLocked = errors.New("projection run lock is held by another run")
