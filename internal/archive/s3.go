// Package archive keeps a copy of every exported workbook in S3-compatible storage.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/sistemasreportes/reportes-backend/internal/report"
)

// Uploader is the part of manager.Uploader the archiver needs.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// Config holds the bucket settings
type Config struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// S3Archiver uploads exported workbooks under <prefix>/<YYYY>/<MM>/.
type S3Archiver struct {
	uploader Uploader
	bucket   string
	prefix   string
	now      func() time.Time
	log      zerolog.Logger
}

// NewS3Archiver builds an archiver from the default AWS credential chain, or from static
// keys when both are provided. A custom endpoint switches to path-style addressing.
func NewS3Archiver(ctx context.Context, cfg Config, log zerolog.Logger) (*S3Archiver, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewWithUploader(manager.NewUploader(client), cfg.Bucket, cfg.Prefix, log), nil
}

// NewWithUploader creates an archiver around an existing uploader.
func NewWithUploader(uploader Uploader, bucket, prefix string, log zerolog.Logger) *S3Archiver {
	return &S3Archiver{
		uploader: uploader,
		bucket:   bucket,
		prefix:   strings.Trim(prefix, "/"),
		now:      time.Now,
		log:      log.With().Str("component", "archive").Str("bucket", bucket).Logger(),
	}
}

// Archive uploads data and returns the object key.
func (a *S3Archiver) Archive(ctx context.Context, filename, exportID string, data []byte) (string, error) {
	key := a.objectKey(filename, exportID)

	_, err := a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(report.ContentType),
		Metadata:    map[string]string{"export-id": exportID},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	a.log.Info().Str("key", key).Int("bytes", len(data)).Msg("Archived export")
	return key, nil
}

// objectKey turns reporte_completo.xlsx into <prefix>/2024/05/reporte_completo_<id>.xlsx.
func (a *S3Archiver) objectKey(filename, exportID string) string {
	ext := path.Ext(filename)
	name := strings.TrimSuffix(filename, ext) + "_" + exportID + ext
	return path.Join(a.prefix, a.now().UTC().Format("2006/01"), name)
}
