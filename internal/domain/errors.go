package domain

import "errors"

// ErrInvalidInput marks orders and warehouse sequences that cannot be allocated
// because they are malformed. Callers match it with errors.Is.
var ErrInvalidInput = errors.New("invalid allocation input")
