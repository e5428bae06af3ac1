package scanngo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/scanngo/blobstore"
	"github.com/hupe1980/scanngo/distance"
	"github.com/hupe1980/scanngo/index"
	"github.com/hupe1980/scanngo/indexconfig"
	"github.com/hupe1980/scanngo/internal/partition"
	"github.com/hupe1980/scanngo/internal/quantization"
	"github.com/hupe1980/scanngo/internal/searcher"
)

var (
	// ErrInvalidArgument is returned for unusable options or queries.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound is returned when an index file or record is missing.
	ErrNotFound = errors.New("not found")
	// ErrInvalidIndex is returned when the index bytes are not a readable
	// table or a record is corrupt.
	ErrInvalidIndex = errors.New("invalid index")
	// ErrInvalidConfig is returned when the index config is inconsistent.
	ErrInvalidConfig = errors.New("invalid index config")
	// ErrClosed is returned by a searcher after Close.
	ErrClosed = errors.New("searcher closed")
)

// ErrDimensionMismatch indicates that a query does not have the
// dimensionality of the index.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Unwrap makes errors.Is(err, ErrInvalidArgument) hold.
func (e *ErrDimensionMismatch) Unwrap() error { return ErrInvalidArgument }

// translateError maps errors of internal packages onto the sentinels above.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var dm *ErrDimensionMismatch
	switch {
	case errors.As(err, &dm),
		errors.Is(err, ErrInvalidArgument),
		errors.Is(err, ErrInvalidConfig),
		errors.Is(err, ErrInvalidIndex),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrClosed):
		return err

	case errors.Is(err, index.ErrClosed):
		return fmt.Errorf("%w: %w", ErrClosed, err)
	case errors.Is(err, index.ErrNotFound),
		errors.Is(err, blobstore.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, index.ErrInvalidIndex),
		errors.Is(err, indexconfig.ErrMalformed):
		return fmt.Errorf("%w: %w", ErrInvalidIndex, err)

	case errors.Is(err, indexconfig.ErrInvalidConfig),
		errors.Is(err, quantization.ErrInvalidCodebook),
		errors.Is(err, quantization.ErrUnsupportedDistance),
		errors.Is(err, partition.ErrInvalidPartitioner),
		errors.Is(err, distance.ErrUnsupported):
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)

	case errors.Is(err, partition.ErrDimensionMismatch),
		errors.Is(err, quantization.ErrDimensionMismatch),
		errors.Is(err, searcher.ErrDimensionMismatch),
		errors.Is(err, searcher.ErrInvalidSearcher):
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return err
}
