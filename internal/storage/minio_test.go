package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfvault/internal/config"
)

func TestNewMinIO_ConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.MinIOConfig
		want string
	}{
		{"missing endpoint", config.MinIOConfig{AccessKey: "a", SecretKey: "s", Bucket: "b"}, "endpoint"},
		{"missing credentials", config.MinIOConfig{Endpoint: "localhost:9000", Bucket: "b"}, "credentials"},
		{"missing bucket", config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s"}, "bucket"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMinIO(context.Background(), tt.cfg)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestMapMinIOError(t *testing.T) {
	assert.ErrorIs(t, mapMinIOError(minio.ErrorResponse{Code: "NoSuchKey"}), ErrNotFound)
	assert.ErrorIs(t, mapMinIOError(minio.ErrorResponse{Code: "NoSuchObject"}), ErrNotFound)

	denied := minio.ErrorResponse{Code: "AccessDenied"}
	assert.Equal(t, error(denied), mapMinIOError(denied))

	plain := errors.New("connection reset")
	assert.Equal(t, plain, mapMinIOError(plain))
}

func TestMinIO_RejectsInvalidKeysWithoutNetwork(t *testing.T) {
	// minio.New does not dial, so an unroutable endpoint proves no request is made.
	cli, err := minio.New("127.0.0.1:1", &minio.Options{Creds: credentials.NewStaticV4("a", "s", "")})
	require.NoError(t, err)
	s := &minioStorage{client: cli, bucket: "files"}
	ctx := context.Background()

	for _, key := range []string{"", ".hidden", "a/b", `a\b`} {
		_, err := s.Put(ctx, key, strings.NewReader("x"), PutObjectOptions{Size: 1})
		assert.ErrorIs(t, err, ErrInvalidKey, key)

		_, _, err = s.Get(ctx, key)
		assert.ErrorIs(t, err, ErrInvalidKey, key)

		assert.ErrorIs(t, s.Delete(ctx, key), ErrInvalidKey, key)
	}
}
