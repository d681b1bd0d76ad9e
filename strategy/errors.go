package strategy

import "errors"

// ErrEmptyPool indicates that an empty candidate pool was passed to a
// ranking strategy.
var ErrEmptyPool = errors.New("empty candidate pool")
