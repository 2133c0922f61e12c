package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"transcriber/internal/config"
	"transcriber/internal/logging"
)

// DefaultPresignExpiry is used when Config.PresignExpiry is zero.
const DefaultPresignExpiry = 24 * time.Hour

// MaxPresignExpiry is the longest expiry S3 signatures allow.
const MaxPresignExpiry = 7 * 24 * time.Hour

// Config holds the connection settings for the object store.
type Config struct {
	Endpoint      string
	Bucket        string
	Region        string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	PresignExpiry time.Duration
}

// ObjectStore is the subset of *minio.Client the publisher uses.
type ObjectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	FPutObject(ctx context.Context, bucket, object, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	PresignedGetObject(ctx context.Context, bucket, object string, expiry time.Duration, params url.Values) (*url.URL, error)
}

// Object describes one uploaded artifact.
type Object struct {
	Key  string
	Size int64
	URL  string
}

// Publisher uploads files under a per-job prefix.
type Publisher struct {
	store  ObjectStore
	cfg    Config
	logger *slog.Logger

	contentType func(name string) string
}

// New connects to the configured endpoint.
func New(cfg Config, logger *slog.Logger) (*Publisher, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("storage: endpoint required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: connect %s: %w", cfg.Endpoint, err)
	}
	return NewWithStore(client, cfg, logger), nil
}

// FromConfig connects using the [storage] config section.
func FromConfig(s config.Storage, logger *slog.Logger) (*Publisher, error) {
	return New(Config{
		Endpoint:      s.Endpoint,
		Bucket:        s.Bucket,
		Region:        s.Region,
		AccessKey:     s.AccessKey,
		SecretKey:     s.SecretKey,
		UseSSL:        s.UseSSL,
		PresignExpiry: time.Duration(s.PresignMinutes) * time.Minute,
	}, logger)
}

// NewWithStore wraps an existing store.
func NewWithStore(store ObjectStore, cfg Config, logger *slog.Logger) *Publisher {
	if cfg.PresignExpiry <= 0 {
		cfg.PresignExpiry = DefaultPresignExpiry
	}
	if cfg.PresignExpiry > MaxPresignExpiry {
		cfg.PresignExpiry = MaxPresignExpiry
	}
	return &Publisher{
		store:       store,
		cfg:         cfg,
		logger:      logging.NewComponentLogger(logger, "storage"),
		contentType: contentTypeFor,
	}
}

// WithContentTypes overrides how object content types are chosen.
func (p *Publisher) WithContentTypes(fn func(name string) string) {
	if fn != nil {
		p.contentType = fn
	}
}

// Bucket returns the configured bucket name.
func (p *Publisher) Bucket() string {
	return p.cfg.Bucket
}

// CheckBucket reports whether the bucket exists without creating it.
func (p *Publisher) CheckBucket(ctx context.Context) (bool, error) {
	exists, err := p.store.BucketExists(ctx, p.cfg.Bucket)
	if err != nil {
		return false, fmt.Errorf("storage: check bucket %s: %w", p.cfg.Bucket, err)
	}
	return exists, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (p *Publisher) EnsureBucket(ctx context.Context) error {
	exists, err := p.CheckBucket(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if err := p.store.MakeBucket(ctx, p.cfg.Bucket, minio.MakeBucketOptions{Region: p.cfg.Region}); err != nil {
		return fmt.Errorf("storage: create bucket %s: %w", p.cfg.Bucket, err)
	}
	p.logger.Info("bucket created", logging.String("bucket", p.cfg.Bucket))
	return nil
}

// Publish uploads files as <jobID>/<base name> and returns a presigned GET
// URL for each, in input order.
func (p *Publisher) Publish(ctx context.Context, jobID string, files []string) ([]Object, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, errors.New("storage: job id required")
	}
	if err := p.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	logger := logging.WithContext(ctx, p.logger)
	objects := make([]Object, 0, len(files))
	for _, file := range files {
		name := filepath.Base(file)
		key := path.Join(jobID, name)
		info, err := p.store.FPutObject(ctx, p.cfg.Bucket, key, file, minio.PutObjectOptions{ContentType: p.contentType(name)})
		if err != nil {
			return objects, fmt.Errorf("storage: upload %s: %w", key, err)
		}
		signed, err := p.store.PresignedGetObject(ctx, p.cfg.Bucket, key, p.cfg.PresignExpiry, downloadParams(name))
		if err != nil {
			return objects, fmt.Errorf("storage: presign %s: %w", key, err)
		}
		objects = append(objects, Object{Key: key, Size: info.Size, URL: signed.String()})
		logger.Info("artifact published",
			logging.String("bucket", p.cfg.Bucket),
			logging.String("key", key),
			logging.Int64("bytes", info.Size),
			logging.String(logging.FieldEventType, "artifact_published"),
		)
	}
	return objects, nil
}

func downloadParams(name string) url.Values {
	params := url.Values{}
	params.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", name))
	return params
}

func contentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".srt":
		return "application/x-subrip; charset=utf-8"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".zip":
		return "application/zip"
	case ".yaml", ".yml":
		return "application/yaml"
	default:
		return "application/octet-stream"
	}
}
