package simd

import "github.com/viterin/vek/vek32"

// vekMinWidth is the narrowest float lane group handed to vek32.
const vekMinWidth = 4

// lanes is a w-wide accumulator over lookup-table entries of type T.
type lanes[T LUTValue] interface {
	setZero()
	add(src []T)
	// dequantizeAccumStore performs dst[l] += scale*acc[l] + offset for
	// integer lanes and dst[l] += acc[l] for float lanes.
	dequantizeAccumStore(dst []float32, scale, offset float32)
}

func newLanes[T LUTValue](w int) lanes[T] {
	var zero T
	switch any(zero).(type) {
	case float32:
		return any(make(float32Lanes, w)).(lanes[T])
	case uint16:
		return any(make(uint16Lanes[uint16], w)).(lanes[T])
	default:
		return any(make(uint16Lanes[uint8], w)).(lanes[T])
	}
}

type float32Lanes []float32

func (l float32Lanes) setZero() { clear(l) }

func (l float32Lanes) add(src []float32) {
	src = src[:len(l)]
	if len(l) >= vekMinWidth {
		vek32.Add_Inplace(l, src)
		return
	}
	for i, v := range src {
		l[i] += v
	}
}

func (l float32Lanes) dequantizeAccumStore(dst []float32, _, _ float32) {
	dst = dst[:len(l)]
	if len(l) >= vekMinWidth {
		vek32.Add_Inplace(dst, l)
		return
	}
	for i, v := range l {
		dst[i] += v
	}
}

// uint16Lanes accumulates integer entries without widening; block sizes keep
// the sums below 1<<16. vek has no integer kernels, so these stay scalar.
type uint16Lanes[T uint8 | uint16] []uint16

func (l uint16Lanes[T]) setZero() { clear(l) }

func (l uint16Lanes[T]) add(src []T) {
	src = src[:len(l)]
	for i, v := range src {
		l[i] += uint16(v)
	}
}

func (l uint16Lanes[T]) dequantizeAccumStore(dst []float32, scale, offset float32) {
	dst = dst[:len(l)]
	for i, v := range l {
		dst[i] += scale*float32(v) + offset
	}
}
