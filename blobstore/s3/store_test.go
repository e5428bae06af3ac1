package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/scanngo/blobstore"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.HeadObjectOutput)
	return out, args.Error(1)
}

func (m *mockClient) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.GetObjectOutput)
	return out, args.Error(1)
}

func headFor(key string) any {
	return mock.MatchedBy(func(in *s3.HeadObjectInput) bool {
		return aws.ToString(in.Bucket) == "bucket" && aws.ToString(in.Key) == key
	})
}

func getFor(key, rng string) any {
	return mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Key) == key && aws.ToString(in.Range) == rng
	})
}

func body(s string) io.ReadCloser {
	return io.NopCloser(bytes.NewReader([]byte(s)))
}

func TestStoreOpen(t *testing.T) {
	client := new(mockClient)
	store := NewStore(client, "bucket", WithPrefix("indexes"))

	client.On("HeadObject", mock.Anything, headFor("indexes/missing")).
		Return(nil, &types.NotFound{}).Once()
	client.On("HeadObject", mock.Anything, headFor("indexes/nokey")).
		Return(nil, &types.NoSuchKey{}).Once()
	client.On("HeadObject", mock.Anything, headFor("indexes/products.scann")).
		Return(&s3.HeadObjectOutput{ContentLength: aws.Int64(11)}, nil).Once()

	_, err := store.Open(context.Background(), "missing")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	_, err = store.Open(context.Background(), "nokey")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	b, err := store.Open(context.Background(), "products.scann")
	require.NoError(t, err)
	assert.Equal(t, int64(11), b.Size())
	require.NoError(t, b.Close())

	client.AssertExpectations(t)
}

func TestStoreOpenError(t *testing.T) {
	client := new(mockClient)
	store := NewStore(client, "bucket")

	client.On("HeadObject", mock.Anything, headFor("idx")).
		Return(nil, fmt.Errorf("access denied")).Once()

	_, err := store.Open(context.Background(), "idx")
	require.Error(t, err)
	assert.NotErrorIs(t, err, blobstore.ErrNotFound)
}

func TestBlobReadAt(t *testing.T) {
	client := new(mockClient)
	store := NewStore(client, "bucket")
	b := &blob{store: store, key: "k", size: 11}
	ctx := context.Background()

	client.On("GetObject", mock.Anything, getFor("k", "bytes=0-4")).
		Return(&s3.GetObjectOutput{Body: body("hello")}, nil).Once()
	client.On("GetObject", mock.Anything, getFor("k", "bytes=6-10")).
		Return(&s3.GetObjectOutput{Body: body("index")}, nil).Once()

	buf := make([]byte, 5)
	n, err := b.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(buf))

	buf = make([]byte, 8)
	n, err = b.ReadAt(ctx, buf, 6)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "index", string(buf[:n]))

	n, err = b.ReadAt(ctx, buf, 11)
	assert.Equal(t, io.EOF, err)
	assert.Zero(t, n)

	client.AssertExpectations(t)
}

func TestBlobFetch(t *testing.T) {
	client := new(mockClient)
	store := NewStore(client, "bucket", WithConcurrency(1))
	b := &blob{store: store, key: "k", size: 11}

	client.On("GetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Key) == "k"
	})).Return(&s3.GetObjectOutput{
		Body:          body("hello index"),
		ContentLength: aws.Int64(11),
		ContentRange:  aws.String("bytes 0-10/11"),
	}, nil).Once()

	data, err := blobstore.ReadAll(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, "hello index", string(data))
}

func TestIntegrationStore(t *testing.T) {
	bucket := os.Getenv("SCANNGO_S3_BUCKET")
	name := os.Getenv("SCANNGO_S3_INDEX")
	if bucket == "" || name == "" {
		t.Skip("SCANNGO_S3_BUCKET and SCANNGO_S3_INDEX not set")
	}

	ctx := context.Background()
	store, err := New(ctx, bucket)
	require.NoError(t, err)

	b, err := store.Open(ctx, name)
	require.NoError(t, err)
	defer b.Close()

	data, err := blobstore.ReadAll(ctx, b)
	require.NoError(t, err)
	assert.Len(t, data, int(b.Size()))
}
