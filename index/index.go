package index

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	lerrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/table"

	"github.com/hupe1980/scanngo/indexconfig"
)

var (
	// ErrInvalidIndex is returned when the backing bytes are not a valid table.
	ErrInvalidIndex = errors.New("invalid index")
	// ErrNotFound is returned when a record is absent.
	ErrNotFound = errors.New("not found in index")
	// ErrClosed is returned by lookups after Close.
	ErrClosed = errors.New("index closed")
)

// Index is a read-only view of a serialized index.
//
// Every lookup returns a copy of the record, so results stay valid after
// later lookups and an Index may be used from several goroutines.
type Index struct {
	mu     sync.RWMutex
	reader *table.Reader
	closer io.Closer
	size   int64
}

// NewFromBuffer opens an index held entirely in memory. buf must not be
// modified while the index is open.
func NewFromBuffer(buf []byte) (*Index, error) {
	if buf == nil {
		return nil, fmt.Errorf("%w: buffer cannot be nil", ErrInvalidIndex)
	}
	return New(bytes.NewReader(buf), int64(len(buf)))
}

// New opens an index of size bytes read through r. If r implements
// io.Closer it is closed by Close.
func New(r io.ReaderAt, size int64) (*Index, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil reader", ErrInvalidIndex)
	}

	// Block caching is left off: records are read once per lookup and the
	// caller caches decoded partitions.
	reader, err := table.NewReader(r, size, storage.FileDesc{Type: storage.TypeTable}, nil, nil, &opt.Options{})
	if err != nil {
		return nil, fmt.Errorf("%w: unable to open table: %v", ErrInvalidIndex, err)
	}

	// A corrupt table only reports itself on first access.
	if _, err := reader.Get([]byte(IndexConfigKey), nil); err != nil && !errors.Is(err, lerrors.ErrNotFound) {
		reader.Release()
		return nil, fmt.Errorf("%w: unable to open table: %v", ErrInvalidIndex, err)
	}

	x := &Index{reader: reader, size: size}
	if c, ok := r.(io.Closer); ok {
		x.closer = c
	}
	return x, nil
}

// Size returns the size of the backing table in bytes.
func (x *Index) Size() int64 { return x.size }

func (x *Index) get(key string) ([]byte, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.reader == nil {
		return nil, ErrClosed
	}
	v, err := x.reader.Get([]byte(key), nil)
	if err != nil {
		if errors.Is(err, lerrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: unable to find key %q", ErrNotFound, key)
		}
		return nil, fmt.Errorf("%w: reading key %q: %v", ErrInvalidIndex, key, err)
	}
	return v, nil
}

// IndexConfig decodes the index config record.
func (x *Index) IndexConfig() (*indexconfig.IndexConfig, error) {
	b, err := x.get(IndexConfigKey)
	if err != nil {
		return nil, err
	}
	cfg, err := indexconfig.Unmarshal(b)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to parse index config: %v", ErrInvalidIndex, err)
	}
	return cfg, nil
}

// UserInfo returns the user info record, or an empty slice when the index
// has none.
func (x *Index) UserInfo() ([]byte, error) {
	b, err := x.get(UserInfoKey)
	if errors.Is(err, ErrNotFound) {
		return []byte{}, nil
	}
	return b, err
}

// PartitionAt returns the raw bytes of partition i.
func (x *Index) PartitionAt(i uint32) ([]byte, error) {
	return x.get(PartitionKey(i))
}

// MetadataAt returns the metadata of global datapoint i.
func (x *Index) MetadataAt(i uint32) ([]byte, error) {
	return x.get(MetadataKey(i))
}

// Close releases the table and closes the underlying reader when it is a
// Closer. Closing twice is a no-op.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.reader == nil {
		return nil
	}
	x.reader.Release()
	x.reader = nil
	if x.closer != nil {
		return x.closer.Close()
	}
	return nil
}
