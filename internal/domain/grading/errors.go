package grading

import "errors"

// ErrInvalidStatus is returned for an answer status outside the known set.
var ErrInvalidStatus = errors.New("invalid answer status")
