package neighbors

import "errors"

// ErrInvalidK is returned when k is not positive.
var ErrInvalidK = errors.New("neighbor count must be positive")
