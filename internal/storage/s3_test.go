package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	return &s3.PutObjectOutput{}, f.err
}

func TestBackupKey(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"backup.json", "backups/backup.json"},
		{"/tmp/out/meals-2024.json", "backups/meals-2024.json"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, BackupKey(tt.path))
		})
	}
}

func TestUploadBackup(t *testing.T) {
	file := filepath.Join(t.TempDir(), "meals.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"version":"1.0"}`), 0o644))

	putter := &fakePutter{}
	uploader := &S3Uploader{client: putter, bucket: "diet-backups"}

	location, err := uploader.UploadBackup(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, "s3://diet-backups/backups/meals.json", location)

	assert.Equal(t, "diet-backups", aws.ToString(putter.input.Bucket))
	assert.Equal(t, "backups/meals.json", aws.ToString(putter.input.Key))
	assert.Equal(t, int64(17), aws.ToInt64(putter.input.ContentLength))
	assert.Equal(t, `{"version":"1.0"}`, string(putter.body))
}

func TestUploadBackupErrors(t *testing.T) {
	uploader := &S3Uploader{client: &fakePutter{}, bucket: "b"}
	_, err := uploader.UploadBackup(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "meals.json")
	require.NoError(t, os.WriteFile(file, []byte(`{}`), 0o644))

	uploader = &S3Uploader{client: &fakePutter{err: errors.New("access denied")}, bucket: "b"}
	_, err = uploader.UploadBackup(context.Background(), file)
	assert.ErrorContains(t, err, "access denied")
}
