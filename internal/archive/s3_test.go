package archive

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sistemasreportes/reportes-backend/internal/report"
)

type fakeUploader struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeUploader) Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	f.input = input
	if input.Body != nil {
		f.body, _ = io.ReadAll(input.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &manager.UploadOutput{Key: input.Key}, nil
}

func newTestArchiver(uploader Uploader, prefix string) *S3Archiver {
	a := NewWithUploader(uploader, "reportes", prefix, zerolog.Nop())
	a.now = func() time.Time { return time.Date(2024, time.May, 1, 15, 0, 0, 0, time.UTC) }
	return a
}

func TestArchive_UploadsWorkbook(t *testing.T) {
	uploader := &fakeUploader{}
	archiver := newTestArchiver(uploader, "/exports/")

	key, err := archiver.Archive(context.Background(), "reporte_2024-05-01.xlsx", "abc-123", []byte("xlsx"))
	require.NoError(t, err)

	assert.Equal(t, "exports/2024/05/reporte_2024-05-01_abc-123.xlsx", key)
	require.NotNil(t, uploader.input)
	assert.Equal(t, "reportes", aws.ToString(uploader.input.Bucket))
	assert.Equal(t, key, aws.ToString(uploader.input.Key))
	assert.Equal(t, report.ContentType, aws.ToString(uploader.input.ContentType))
	assert.Equal(t, "abc-123", uploader.input.Metadata["export-id"])
	assert.Equal(t, []byte("xlsx"), uploader.body)
}

func TestArchive_EmptyPrefix(t *testing.T) {
	archiver := newTestArchiver(&fakeUploader{}, "")

	key, err := archiver.Archive(context.Background(), "reporte_completo.xlsx", "id", nil)
	require.NoError(t, err)
	assert.Equal(t, "2024/05/reporte_completo_id.xlsx", key)
}

func TestArchive_UploadError(t *testing.T) {
	archiver := newTestArchiver(&fakeUploader{err: errors.New("access denied")}, "exports")

	_, err := archiver.Archive(context.Background(), "reporte_completo.xlsx", "id", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestNewS3Archiver_StaticCredentialsAndEndpoint(t *testing.T) {
	archiver, err := NewS3Archiver(context.Background(), Config{
		Bucket:          "reportes",
		Prefix:          "exports",
		Region:          "us-east-1",
		Endpoint:        "http://127.0.0.1:9000",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
	}, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "reportes", archiver.bucket)
	assert.Equal(t, "exports", archiver.prefix)
	assert.IsType(t, &manager.Uploader{}, archiver.uploader)
}
