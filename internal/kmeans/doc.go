// Package kmeans implements Lloyd's k-means. It trains partition centroids
// and product-quantization codebooks for test and benchmark indexes.
package kmeans
