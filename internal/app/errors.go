package app

import "errors"

// ErrPersistence wraps any failure reading from or writing to the store.
var ErrPersistence = errors.New("projection store failure")

// ErrRunInProgress is returned when another projection run holds the lock.
var ErrRunInProgress = errors.New("a projection run is already in progress")
