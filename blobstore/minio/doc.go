// Package minio reads index blobs from MinIO and other S3-compatible object
// stores through the MinIO client.
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//		Secure: false,
//	})
//	if err != nil {
//		return err
//	}
//	store := minioblob.NewStore(client, "indexes", "prod/")
package minio
