// Package scanngo searches ScaNN on-device indexes for the nearest
// neighbors of embedding vectors.
//
// An index is a single LevelDB table holding the search config, the
// datapoints grouped into partitions and one metadata record per datapoint.
// Searching a query ranks the partition centroids, scans the closest
// partitions and returns the metadata of the best datapoints found.
//
// # Quick Start
//
//	ctx := context.Background()
//	s, err := scanngo.New(ctx,
//		scanngo.WithIndexFile("index.sst"),
//		scanngo.WithMaxResults(10),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer s.Close()
//
//	res, err := s.Search(ctx, embedding)
//	for _, n := range res.Neighbors {
//		fmt.Println(n.Distance, string(n.Metadata))
//	}
//
// # Index Sources
//
// Indexes may be read from a local file, an in-memory buffer or any
// blobstore.BlobStore:
//
//	store, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("indexes/"))
//	s, _ := scanngo.New(ctx, scanngo.WithIndexBlob(store, "products.sst"))
//
// Local files are memory mapped. Remote blobs are read lazily, one table
// block at a time, unless WithPreload is given; wrap a store with
// blobstore.NewCachingStore to keep fetched blocks. Indexes compressed with
// zstd or lz4 are detected and decompressed into memory.
//
// # Quantized and Float Indexes
//
// An index stores either float32 datapoints, which are scored exactly, or
// product-quantized uint8 codes, which are scored through per-query lookup
// tables. Lookup tables can be float, int16 or int8; the fixed-point kinds
// trade a little accuracy for speed.
//
// # Filtering
//
// Results can be restricted to a set of global datapoint ids:
//
//	allowed := roaring.BitmapOf(3, 17, 42)
//	res, _ := s.Search(ctx, embedding, scanngo.WithFilter(allowed), scanngo.WithLimit(3))
//
// # Configuration
//
// Defaults can be read from SCANNGO_* environment variables with
// LoadEnvConfig and applied with WithEnvConfig. ResourceLimits bounds
// concurrent searches, remote read throughput and partition cache memory.
//
// # Observability
//
// WithLogger installs a slog-based Logger and WithMetricsCollector a
// MetricsCollector; package metric exports metrics to Prometheus.
package scanngo
