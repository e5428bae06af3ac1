// Package s3 reads index blobs from Amazon S3.
//
//	store, err := s3.New(ctx, "my-bucket", s3.WithPrefix("indexes/"), s3.WithRegion("eu-central-1"))
//	if err != nil {
//		return err
//	}
//	searcher, err := scanngo.New(ctx, scanngo.WithIndexBlob(store, "products.scann"))
//
// Blobs serve random reads with ranged GetObject requests, which is how the
// SSTable reader touches only the blocks a query needs. Whole-object loads
// go through the multipart downloader.
package s3
