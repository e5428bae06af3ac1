package indexconfig

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/hupe1980/scanngo/distance"
)

// ErrMalformed is returned when a record cannot be decoded.
var ErrMalformed = errors.New("indexconfig: malformed record")

// skipField tells walk to skip the current field.
const skipField = -1

// walk calls fn for every field of a message. fn returns the number of bytes
// it consumed from v, or skipField.
func walk(b []byte, fn func(num protowire.Number, typ protowire.Type, v []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %w", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		n, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		if n == skipField {
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return fmt.Errorf("%w: field %d: %w", ErrMalformed, num, protowire.ParseError(n))
		}
		b = b[n:]
	}
	return nil
}

func wireTypeError(num protowire.Number, typ protowire.Type) error {
	return fmt.Errorf("%w: field %d has unexpected wire type %d", ErrMalformed, num, typ)
}

func consumeMessage(num protowire.Number, typ protowire.Type, b []byte) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, wireTypeError(num, typ)
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, fmt.Errorf("%w: field %d: %w", ErrMalformed, num, protowire.ParseError(n))
	}
	return v, n, nil
}

func consumeVarint(num protowire.Number, typ protowire.Type, b []byte) (uint64, int, error) {
	if typ != protowire.VarintType {
		return 0, 0, wireTypeError(num, typ)
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, fmt.Errorf("%w: field %d: %w", ErrMalformed, num, protowire.ParseError(n))
	}
	return v, n, nil
}

func consumeMeasure(num protowire.Number, typ protowire.Type, b []byte, dst *distance.Measure) (int, error) {
	v, n, err := consumeVarint(num, typ, b)
	if err != nil {
		return 0, err
	}
	*dst = distance.Measure(int32(v))
	return n, nil
}

func consumeFloat(num protowire.Number, typ protowire.Type, b []byte) (float32, int, error) {
	if typ != protowire.Fixed32Type {
		return 0, 0, wireTypeError(num, typ)
	}
	v, n := protowire.ConsumeFixed32(b)
	if n < 0 {
		return 0, 0, fmt.Errorf("%w: field %d: %w", ErrMalformed, num, protowire.ParseError(n))
	}
	return math.Float32frombits(v), n, nil
}

// consumeFloats appends one unpacked or a run of packed floats to dst.
func consumeFloats(num protowire.Number, typ protowire.Type, b []byte, dst *[]float32) (int, error) {
	if typ == protowire.Fixed32Type {
		v, n, err := consumeFloat(num, typ, b)
		if err != nil {
			return 0, err
		}
		*dst = append(*dst, v)
		return n, nil
	}

	packed, n, err := consumeMessage(num, typ, b)
	if err != nil {
		return 0, err
	}
	if len(packed)%4 != 0 {
		return 0, fmt.Errorf("%w: field %d: packed floats of %d bytes", ErrMalformed, num, len(packed))
	}
	*dst = slices.Grow(*dst, len(packed)/4)
	for len(packed) > 0 {
		v, m := protowire.ConsumeFixed32(packed)
		*dst = append(*dst, math.Float32frombits(v))
		packed = packed[m:]
	}
	return n, nil
}

// consumeUint32s appends one unpacked or a run of packed varints to dst.
func consumeUint32s(num protowire.Number, typ protowire.Type, b []byte, dst *[]uint32) (int, error) {
	if typ == protowire.VarintType {
		v, n, err := consumeVarint(num, typ, b)
		if err != nil {
			return 0, err
		}
		*dst = append(*dst, uint32(v))
		return n, nil
	}

	packed, n, err := consumeMessage(num, typ, b)
	if err != nil {
		return 0, err
	}
	for len(packed) > 0 {
		v, m := protowire.ConsumeVarint(packed)
		if m < 0 {
			return 0, fmt.Errorf("%w: field %d: %w", ErrMalformed, num, protowire.ParseError(m))
		}
		*dst = append(*dst, uint32(v))
		packed = packed[m:]
	}
	return n, nil
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func appendEnum(b []byte, num protowire.Number, v int32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(int64(v)))
}

func appendPackedFloats(b []byte, num protowire.Number, vs []float32) []byte {
	if len(vs) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendVarint(b, uint64(4*len(vs)))
	for _, v := range vs {
		b = protowire.AppendFixed32(b, math.Float32bits(v))
	}
	return b
}

func appendPackedUint32s(b []byte, num protowire.Number, vs []uint32) []byte {
	if len(vs) == 0 {
		return b
	}
	size := 0
	for _, v := range vs {
		size += protowire.SizeVarint(uint64(v))
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendVarint(b, uint64(size))
	for _, v := range vs {
		b = protowire.AppendVarint(b, uint64(v))
	}
	return b
}
