package kdtree

import "errors"

// ErrDimensionMismatch is returned when Build receives records whose
// vectors do not all share the same dimension.
var ErrDimensionMismatch = errors.New("kdtree: dimension mismatch")
