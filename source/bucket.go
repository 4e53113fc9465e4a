package source

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// BucketConfig locates an S3-compatible bucket.
type BucketConfig struct {
	Endpoint  string // host:port, without scheme
	AccessKey string
	SecretKey string
	Secure    bool   // use HTTPS
	Region    string // optional; skips the bucket location lookup when set
	Bucket    string
	Prefix    string // only keys under this prefix are listed
}

// Bucket is a Source over objects in a MinIO or S3 bucket.
type Bucket struct {
	client *minio.Client
	bucket string
	prefix string
	match  matcher
}

// NewBucket connects to the bucket described by cfg. Object keys whose base
// name matches pattern (DefaultPattern when empty) are listed.
func NewBucket(cfg BucketConfig, pattern string) (*Bucket, error) {
	m, err := newMatcher(pattern)
	if err != nil {
		return nil, err
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	c, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("creating bucket client: %w", err)
	}
	return &Bucket{client: c, bucket: cfg.Bucket, prefix: cfg.Prefix, match: m}, nil
}

// HealthCheck verifies the bucket exists and the credentials can reach it.
func (b *Bucket) HealthCheck(ctx context.Context) error {
	ok, err := b.client.BucketExists(ctx, b.bucket)
	if err != nil {
		return fmt.Errorf("bucket %s: %w", b.bucket, err)
	}
	if !ok {
		return fmt.Errorf("bucket %s does not exist", b.bucket)
	}
	return nil
}

// List returns the matching objects under the prefix, in key order.
func (b *Bucket) List(ctx context.Context) ([]Document, error) {
	var docs []Document
	for obj := range b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{Prefix: b.prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("listing bucket %s: %w", b.bucket, obj.Err)
		}
		if !b.match.match(obj.Key) {
			continue
		}
		docs = append(docs, Document{Name: obj.Key, Size: obj.Size, ModTime: obj.LastModified})
	}
	return docs, nil
}

// Read downloads an object.
func (b *Bucket) Read(ctx context.Context, name string) ([]byte, error) {
	obj, err := b.client.GetObject(ctx, b.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}
