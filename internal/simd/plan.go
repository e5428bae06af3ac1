package simd

// LUTValue is a lookup-table element type.
type LUTValue interface {
	float32 | uint16 | uint8
}

// Plan lists the lane widths, widest first, used for float and for integer
// lookup tables. Width 1 is implied and never listed.
type Plan struct {
	Float []int
	Int   []int
}

// PlanFor returns the width plan for an instruction set.
func PlanFor(isa ISA) Plan {
	switch isa {
	case AVX2:
		return Plan{Float: []int{8, 4}, Int: []int{16, 8}}
	case AVX:
		return Plan{Float: []int{8, 4}, Int: []int{8}}
	case SSE41, NEON:
		return Plan{Float: []int{4}, Int: []int{8}}
	case SSE:
		return Plan{Float: []int{4}}
	default:
		return Plan{}
	}
}

// DefaultPlan returns the plan for the active ISA.
func DefaultPlan() Plan {
	return PlanFor(activeISA)
}

func widths[T LUTValue](p Plan) []int {
	var zero T
	if _, ok := any(zero).(float32); ok {
		return p.Float
	}
	return p.Int
}

// Widths returns the lane widths p runs for lookup tables of type T,
// including the trailing width 1.
func Widths[T LUTValue](p Plan) []int {
	w := widths[T](p)
	out := make([]int, 0, len(w)+1)
	out = append(out, w...)
	return append(out, 1)
}

// MaxQuantizationValue returns the largest quantized value stored in an
// integer lookup table of type T. Sixteen-bit tables leave headroom so that
// a block of 32 entries cannot overflow the accumulator. Float tables return 0.
func MaxQuantizationValue[T LUTValue]() int {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return 255
	case uint16:
		return 1<<16/defaultChunksPerBlock - 1
	default:
		return 0
	}
}
