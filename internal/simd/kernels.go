package simd

const (
	defaultChunksPerBlock = 32
	// 16 uint8 centers keep 256 chunks within uint16 range.
	uint8Centers16ChunksPerBlock = 256
)

// RearrangeLUT copies a query-major lookup table of batchSize queries with
// batchElems entries each from in to out, transposing every group of w
// consecutive queries so the w entries for one (subspace, center) pair are
// adjacent. Groups are formed for each width of the plan in turn; queries left
// over after the narrowest width are copied unchanged.
func RearrangeLUT[T LUTValue](in []T, batchElems, batchSize int, out []T, plan Plan) {
	offset := 0
	for _, w := range widths[T](plan) {
		numGroups := batchSize / w
		groupElems := w * batchElems
		for ; offset < numGroups*groupElems; offset += groupElems {
			src := in[offset : offset+groupElems]
			dst := out[offset : offset+groupElems]
			for lane := 0; lane < w; lane++ {
				row := src[lane*batchElems : (lane+1)*batchElems]
				for e, v := range row {
					dst[e*w+lane] = v
				}
			}
		}
	}
	copy(out[offset:batchElems*batchSize], in[offset:batchElems*batchSize])
}

// IndexTableSum computes, for each of numOutputs encoded datapoints and each
// of batchSize queries, the sum of the lookup-table entries selected by the
// datapoint's numChunks codes.
//
// indices holds numChunks codes per datapoint, datapoint after datapoint. lut
// is a table produced by RearrangeLUT with the same plan, holding
// numChunks*numCenters entries per query. For integer tables the sums are
// dequantized with the (lo, hi) range the table was quantized with. out is
// overwritten with batchSize values per datapoint: out[i*batchSize+q].
func IndexTableSum[T LUTValue](indices []byte, numChunks, numOutputs int, lut []T, batchSize, numCenters int, lo, hi float32, out []float32, plan Plan) {
	clear(out[:batchSize*numOutputs])

	var (
		dqScale   float32
		dqOffset1 float32
	)
	if maxq := MaxQuantizationValue[T](); maxq > 0 {
		dqScale = (hi - lo) / float32(maxq)
		dqOffset1 = lo + dqScale/2
	}

	chunksPerBlock := defaultChunksPerBlock
	var zero T
	if _, ok := any(zero).(uint8); ok && numCenters == 16 {
		chunksPerBlock = uint8Centers16ChunksPerBlock
	}

	k := kernel[T]{
		indices:        indices,
		numChunks:      numChunks,
		numOutputs:     numOutputs,
		lut:            lut,
		batchSize:      batchSize,
		numCenters:     numCenters,
		chunksPerBlock: chunksPerBlock,
		dqScale:        dqScale,
		dqOffset1:      dqOffset1,
		out:            out,
	}

	batchIndex := 0
	for _, w := range Widths[T](plan) {
		batchIndex = k.run(w, batchIndex)
	}
}

type kernel[T LUTValue] struct {
	indices        []byte
	numChunks      int
	numOutputs     int
	lut            []T
	batchSize      int
	numCenters     int
	chunksPerBlock int
	dqScale        float32
	dqOffset1      float32
	out            []float32
}

// run processes groups of w queries starting at batchIndex and returns the
// first query it did not process.
func (k *kernel[T]) run(w, batchIndex int) int {
	itemStride := k.numChunks * k.numCenters
	chunkStride := k.numCenters * w
	lanes := newLanes[T](w)

	for ; batchIndex+w <= k.batchSize; batchIndex += w {
		batchLUT := k.lut[batchIndex*itemStride : (batchIndex+w)*itemStride]
		for blockStart := 0; blockStart < k.numChunks; blockStart += k.chunksPerBlock {
			blockEnd := min(blockStart+k.chunksPerBlock, k.numChunks)
			dqOffsetN := float32(blockEnd-blockStart) * k.dqOffset1

			for o := 0; o < k.numOutputs; o++ {
				codes := k.indices[o*k.numChunks : (o+1)*k.numChunks]
				lanes.setZero()
				for c := blockStart; c < blockEnd; c++ {
					at := c*chunkStride + int(codes[c])*w
					lanes.add(batchLUT[at : at+w])
				}
				at := o*k.batchSize + batchIndex
				lanes.dequantizeAccumStore(k.out[at:at+w], k.dqScale, dqOffsetN)
			}
		}
	}
	return batchIndex
}
