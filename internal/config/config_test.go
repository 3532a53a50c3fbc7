package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetenv clears keys for the duration of the test.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadNotifierRequiresTopic(t *testing.T) {
	unsetenv(t, "SNS_TOPIC_ARN")

	_, err := LoadNotifier()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissing)
}

func TestLoadNotifierDefaults(t *testing.T) {
	t.Setenv("SNS_TOPIC_ARN", "arn:aws:sns:us-east-1:123456789012:artisan-jobs")
	unsetenv(t, "NOTIFY_BACKEND")

	env, err := LoadNotifier()
	require.NoError(t, err)
	assert.Equal(t, "arn:aws:sns:us-east-1:123456789012:artisan-jobs", env.TopicARN)
	assert.Equal(t, BackendSNS, env.Backend)
}

func TestLoadNotifierRejectsUnknownBackend(t *testing.T) {
	t.Setenv("SNS_TOPIC_ARN", "topic")
	t.Setenv("NOTIFY_BACKEND", "kafka")

	_, err := LoadNotifier()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissing)
}

func TestLoadPortal(t *testing.T) {
	t.Setenv("S3_BUCKET_NAME", "artisan-uploads")
	t.Setenv("DYNAMO_NAME", "service-requests")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,https://portal.example.com")
	unsetenv(t, "OBJECT_STORE_BACKEND", "METADATA_STORE_BACKEND", "MAX_UPLOAD_BYTES")

	env, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "artisan-uploads", env.Bucket)
	assert.Equal(t, "service-requests", env.Table)
	assert.Equal(t, BackendS3, env.ObjectBackend)
	assert.Equal(t, BackendDynamoDB, env.MetadataBackend)
	assert.Equal(t, []string{"http://localhost:3000", "https://portal.example.com"}, env.AllowedOrigins)
	assert.Equal(t, int64(10<<20), env.MaxUploadBytes)
}

func TestLoadPortalMissingValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "bucket",
			env:  map[string]string{"S3_BUCKET_NAME": "", "DYNAMO_NAME": "t", "METADATA_STORE_BACKEND": "dynamodb", "OBJECT_STORE_BACKEND": "s3"},
		},
		{
			name: "table for dynamodb backend",
			env:  map[string]string{"S3_BUCKET_NAME": "b", "DYNAMO_NAME": "", "METADATA_STORE_BACKEND": "dynamodb", "OBJECT_STORE_BACKEND": "s3"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.ErrorIs(t, err, ErrMissing)
		})
	}
}

func TestLoadPortalPostgresNeedsNoTable(t *testing.T) {
	t.Setenv("S3_BUCKET_NAME", "b")
	t.Setenv("DYNAMO_NAME", "")
	t.Setenv("METADATA_STORE_BACKEND", "postgres")
	t.Setenv("OBJECT_STORE_BACKEND", "minio")

	env, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendPostgres, env.MetadataBackend)
	assert.Equal(t, BackendMinio, env.ObjectBackend)
}

func TestLoadReadsDotenv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("S3_BUCKET_NAME=from-dotenv\nDYNAMO_NAME=dotenv-table\n"), 0o600))
	t.Chdir(dir)
	unsetenv(t, "S3_BUCKET_NAME", "OBJECT_STORE_BACKEND", "METADATA_STORE_BACKEND")
	t.Setenv("DYNAMO_NAME", "from-env")

	env, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", env.Bucket)
	assert.Equal(t, "from-env", env.Table)
}
