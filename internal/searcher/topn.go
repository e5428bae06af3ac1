package searcher

import (
	"cmp"
	"math"
	"slices"

	"github.com/hupe1980/scanngo/internal/container"
)

// Neighbor is a (distance, id) candidate. Smaller distances are better.
type Neighbor struct {
	Distance float32
	ID       int
}

// Worst is the default approximate bottom: it admits every finite distance.
var Worst = Neighbor{Distance: math.MaxFloat32, ID: -1}

func lessNeighbor(a, b Neighbor) bool {
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.ID < b.ID
}

func compareNeighbor(a, b Neighbor) int {
	if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// Filter restricts which datapoint ids a TopN admits.
// *roaring.Bitmap satisfies it.
type Filter interface {
	Contains(id uint32) bool
}

// TopN collects the limit best neighbors out of a stream of candidates.
//
// Candidates are buffered until 2*limit have been admitted, then the buffer is
// cut down to the limit best with a linear-time selection and the worst
// survivor becomes the admission threshold. This makes Emplace amortized O(1).
//
// TopN is not safe for concurrent use.
type TopN struct {
	limit        int
	items        []Neighbor
	approxBottom Neighbor
	initBottom   Neighbor
	filter       Filter
}

// NewTopN creates a selector keeping at most limit neighbors. Only candidates
// strictly better than approxBottom are ever admitted. It panics if limit is
// not positive.
func NewTopN(limit int, approxBottom Neighbor) *TopN {
	if limit <= 0 {
		panic("searcher: TopN limit must be positive")
	}
	return &TopN{
		limit:        limit,
		approxBottom: approxBottom,
		initBottom:   approxBottom,
	}
}

// Limit returns the maximum number of neighbors kept.
func (t *TopN) Limit() int { return t.limit }

// Size returns the number of buffered candidates, which may exceed Limit.
func (t *TopN) Size() int { return len(t.items) }

// ApproxBottom returns the current admission threshold.
func (t *TopN) ApproxBottom() Neighbor { return t.approxBottom }

// Reserve pre-allocates room for n buffered candidates, capped at 2*limit.
func (t *TopN) Reserve(n int) {
	n = min(n, 2*t.limit)
	if cap(t.items) < n {
		t.items = slices.Grow(t.items, n-len(t.items))
	}
}

// SetFilter makes the selector reject ids not in f. A nil f admits every
// id. The filter survives Take.
func (t *TopN) SetFilter(f Filter) { t.filter = f }

// Emplace offers a candidate. It is admitted only if it orders before the
// current threshold by (distance, id).
func (t *TopN) Emplace(distance float32, id int) {
	n := Neighbor{Distance: distance, ID: id}
	if !lessNeighbor(n, t.approxBottom) {
		return
	}
	if t.filter != nil && (id < 0 || uint64(id) > math.MaxUint32 || !t.filter.Contains(uint32(id))) {
		return
	}
	t.items = append(t.items, n)
	if len(t.items) >= 2*t.limit {
		t.compact()
	}
}

func (t *TopN) compact() {
	container.NthElement(t.items, t.limit-1, lessNeighbor)
	t.items = t.items[:t.limit]
	t.approxBottom = t.items[t.limit-1]
}

// Take returns the best neighbors sorted best first and resets the selector,
// including its threshold, to the state it was constructed in. A second Take
// without new candidates returns an empty slice.
func (t *TopN) Take() []Neighbor {
	out := t.TakeUnsorted()
	slices.SortFunc(out, compareNeighbor)
	return out
}

// TakeUnsorted is Take without the final sort.
func (t *TopN) TakeUnsorted() []Neighbor {
	if len(t.items) > t.limit {
		t.compact()
	}
	out := t.items
	t.items = nil
	t.approxBottom = t.initBottom
	return out
}

// ExtractUnsorted returns a copy of the current best neighbors in no
// particular order without consuming them.
func (t *TopN) ExtractUnsorted() []Neighbor {
	if len(t.items) > t.limit {
		t.compact()
	}
	return slices.Clone(t.items)
}
