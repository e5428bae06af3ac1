package scanngo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/scanngo/blobstore"
	"github.com/hupe1980/scanngo/index"
	"github.com/hupe1980/scanngo/internal/resource"
)

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

const magicLen = 4

// An SSTable begins with a data block entry whose shared-prefix varint is 0,
// so neither frame magic can be mistaken for a plain table.
func isCompressed(head []byte) bool {
	return bytes.HasPrefix(head, zstdMagic) || bytes.HasPrefix(head, lz4Magic)
}

// decompress unwraps a zstd or lz4 frame. Other input is returned unchanged.
func decompress(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %w", ErrInvalidIndex, err)
		}
		return out, nil
	case bytes.HasPrefix(data, lz4Magic):
		out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %w", ErrInvalidIndex, err)
		}
		return out, nil
	}
	return data, nil
}

// closingReaderAt closes the blob behind a reader when the index closes.
type closingReaderAt struct {
	io.ReaderAt
	io.Closer
}

type loader struct {
	controller *resource.Controller
	preload    bool
}

func (l *loader) open(ctx context.Context, src indexSource) (*index.Index, error) {
	switch src.kind {
	case sourceContent:
		if src.content == nil {
			return nil, fmt.Errorf("%w: index content is nil", ErrInvalidArgument)
		}
		data, err := decompress(src.content)
		if err != nil {
			return nil, err
		}
		return index.NewFromBuffer(data)
	case sourceFile:
		store := blobstore.NewLocalStore(filepath.Dir(src.path))
		return l.openBlob(ctx, store, filepath.Base(src.path))
	case sourceBlob:
		if src.store == nil {
			return nil, fmt.Errorf("%w: blob store is nil", ErrInvalidArgument)
		}
		return l.openBlob(ctx, src.store, src.name)
	}
	return nil, fmt.Errorf("%w: one of WithIndexFile, WithIndexContent or WithIndexBlob is required", ErrInvalidArgument)
}

func (l *loader) openBlob(ctx context.Context, store blobstore.BlobStore, name string) (_ *index.Index, err error) {
	b, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	keepOpen := false
	defer func() {
		if !keepOpen {
			err = errors.Join(err, b.Close())
		}
	}()

	head := make([]byte, min(magicLen, b.Size()))
	if _, err := b.ReadAt(ctx, head, 0); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	if l.preload || isCompressed(head) {
		var opts []blobstore.ReadAllOption
		if l.controller != nil {
			opts = append(opts, blobstore.WithIOLimiter(l.controller))
		}
		data, err := blobstore.ReadAll(ctx, b, opts...)
		if err != nil {
			return nil, err
		}
		if data, err = decompress(data); err != nil {
			return nil, err
		}
		return index.NewFromBuffer(data)
	}

	var r io.ReaderAt
	if m, ok := b.(blobstore.Mappable); ok {
		data, err := m.Bytes()
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(data)
	} else {
		// Lazy reads outlive the open call.
		readCtx := context.WithoutCancel(ctx)
		r = l.controller.ReaderAt(readCtx, blobstore.NewReaderAt(readCtx, b))
	}

	x, err := index.New(closingReaderAt{ReaderAt: r, Closer: b}, b.Size())
	if err != nil {
		return nil, err
	}
	keepOpen = true
	return x, nil
}
