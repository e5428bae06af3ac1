package conv

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Float32sFromBytes decodes little-endian float32 values from b into dst,
// which must hold exactly len(b)/4 values.
func Float32sFromBytes(dst []float32, b []byte) error {
	if len(b)%4 != 0 || len(dst) != len(b)/4 {
		return fmt.Errorf("%d bytes do not decode into %d float32 values", len(b), len(dst))
	}
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return nil
}

// AppendFloat32s appends the little-endian encoding of v to b.
func AppendFloat32s(b []byte, v []float32) []byte {
	for _, f := range v {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(f))
	}
	return b
}
