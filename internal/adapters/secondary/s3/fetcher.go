// Package s3 downloads model artifacts from an S3-compatible bucket into the
// local models directory before the service loads them.
package s3

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	log "github.com/sirupsen/logrus"

	"ml-prediction-service/internal/config"
	"ml-prediction-service/internal/core/domain"
	ports "ml-prediction-service/internal/core/ports/output"
)

const partMiBs int64 = 16

type downloaderAPI interface {
	Download(ctx context.Context, w io.WriterAt, input *s3.GetObjectInput, options ...func(*manager.Downloader)) (int64, error)
}

type Fetcher struct {
	downloader downloaderAPI
	bucket     string
	prefix     string
}

var _ ports.ArtifactFetcher = (*Fetcher)(nil)

// NewFetcher builds an S3 client from cfg. Static credentials are used when
// both keys are set, otherwise the default AWS credential chain applies.
func NewFetcher(ctx context.Context, cfg config.ArtifactsConfig) (*Fetcher, error) {
	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	svc := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	downloader := manager.NewDownloader(svc, func(d *manager.Downloader) {
		d.PartSize = partMiBs * 1024 * 1024
	})

	return newFetcher(downloader, cfg.Bucket, cfg.Prefix), nil
}

func newFetcher(downloader downloaderAPI, bucket, prefix string) *Fetcher {
	return &Fetcher{downloader: downloader, bucket: bucket, prefix: prefix}
}

// Key returns the object key for the artifact that lands at destPath.
func (f *Fetcher) Key(destPath string) string {
	return path.Join(f.prefix, filepath.Base(destPath))
}

// Fetch downloads into a temporary file next to destPath and renames it into
// place, so a failed download never leaves a truncated artifact behind.
func (f *Fetcher) Fetch(ctx context.Context, id domain.ModelID, destPath string) error {
	key := f.Key(destPath)

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("create models directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), "."+filepath.Base(destPath)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	log.WithFields(log.Fields{
		"model_id": id,
		"bucket":   f.bucket,
		"key":      key,
	}).Info("downloading model artifact")

	n, err := f.downloader.Download(ctx, tmp, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(key),
	})
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("download s3://%s/%s: %w", f.bucket, key, err)
	}

	if err := os.Rename(tmpName, destPath); err != nil {
		return fmt.Errorf("move artifact into place: %w", err)
	}

	log.WithFields(log.Fields{
		"model_id": id,
		"path":     destPath,
		"bytes":    n,
	}).Info("downloaded model artifact")

	return nil
}
