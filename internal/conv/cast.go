package conv

import (
	"errors"
	"fmt"
	"math"
)

// ErrOverflow is returned when an id does not fit the target type.
var ErrOverflow = errors.New("integer overflow")

// IntToUint32 narrows a datapoint or partition id to its on-disk width.
func IntToUint32(v int) (uint32, error) {
	if v < 0 || uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d is outside [0, %d]", ErrOverflow, v, uint32(math.MaxUint32))
	}
	return uint32(v), nil
}

// Uint32ToInt widens an on-disk id. It can only fail where int is 32 bits.
func Uint32ToInt(v uint32) (int, error) {
	if uint64(v) > uint64(math.MaxInt) {
		return 0, fmt.Errorf("%w: %d exceeds the int range", ErrOverflow, v)
	}
	return int(v), nil
}
