package vm

import (
	"fmt"
	"math"
)

// SafeInt64ToUint32 safely converts int64 to uint32
// Returns error if value is negative or exceeds uint32 range
func SafeInt64ToUint32(v int64) (uint32, error) {
	if v < 0 {
		return 0, fmt.Errorf("cannot convert negative int64 %d to uint32", v)
	}
	if v > math.MaxUint32 {
		return 0, fmt.Errorf("int64 value %d exceeds uint32 maximum", v)
	}
	return uint32(v), nil
}
