package storage

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Store keeps images in an S3-compatible bucket, typically a MinIO server
// the user runs themselves.
type S3Store struct {
	client *minio.Client
	bucket string
	log    *slog.Logger
}

type S3Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Region    string
}

// NewS3Store connects to the endpoint and makes sure the bucket exists.
func NewS3Store(ctx context.Context, opts S3Options, log *slog.Logger) (*S3Store, error) {
	if opts.Endpoint == "" || opts.AccessKey == "" || opts.SecretKey == "" {
		return nil, fmt.Errorf("missing one or more required settings: endpoint, access key, secret key")
	}
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	s := &S3Store{client: client, bucket: opts.Bucket, log: log}
	if err := s.ensureBucket(ctx, opts.Region); err != nil {
		return nil, err
	}
	log.Info("image_store_connected", "endpoint", opts.Endpoint, "bucket", opts.Bucket)
	return s, nil
}

func (s *S3Store) ensureBucket(ctx context.Context, region string) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("error checking bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Put uploads srcPath. An object upload is all-or-nothing on the server side.
func (s *S3Store) Put(ctx context.Context, key, srcPath string) (string, error) {
	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.FPutObject(ctx, s.bucket, key, strings.TrimPrefix(srcPath, "file://"),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to store object in S3: %w", err)
	}
	uri := s.uriFor(key)
	s.log.Debug("image_stored", "key", key, "uri", uri)
	return uri, nil
}

func (s *S3Store) Delete(ctx context.Context, uri string) error {
	bucket, key, ok := ParseS3URI(uri)
	if !ok || bucket != s.bucket {
		return fmt.Errorf("%w: %s", ErrUnknownURI, uri)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object from S3: %w", err)
	}
	return nil
}

func (s *S3Store) uriFor(key string) string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, key)
}

// ParseS3URI splits an s3://bucket/key URI.
func ParseS3URI(uri string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(uri, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, ok = strings.Cut(rest, "/")
	return bucket, key, ok && bucket != "" && key != ""
}
