// Package storage publishes job artifacts to S3-compatible object storage
// (MinIO, AWS S3, and similar) and hands back presigned download links.
package storage
