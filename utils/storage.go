package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const (
	StorageProviderLocal = "local"
	StorageProviderGCS   = "gcs"
)

func GetStorageProvider() string {
	provider := strings.TrimSpace(strings.ToLower(os.Getenv("STORAGE_PROVIDER")))
	if provider == "" {
		return StorageProviderLocal
	}
	return provider
}

func getGoogleClient(ctx context.Context) (*storage.Client, error) {
	// Prefer ADC (service account / GOOGLE_APPLICATION_CREDENTIALS).
	// Set GCS_CREDENTIALS_JSON to provide explicit JSON (e.g. locally).
	if credJSON := os.Getenv("GCS_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		return storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
	}
	return storage.NewClient(ctx)
}

func localUploadDir() string {
	dir := os.Getenv("UPLOAD_DIR")
	if dir == "" {
		dir = "uploads"
	}
	return dir
}

// SaveUploadObject stores an uploaded file under objectKey and returns the
// location the processor can read it back from. Settlement files must survive
// a process restart, so "local" writes to disk rather than holding bytes in memory.
func SaveUploadObject(ctx context.Context, objectKey string, r io.Reader) (string, error) {
	switch GetStorageProvider() {
	case StorageProviderGCS:
		bucketName := os.Getenv("GCS_BUCKET")
		if bucketName == "" {
			return "", errors.New("GCS_BUCKET is required")
		}
		client, err := getGoogleClient(ctx)
		if err != nil {
			return "", err
		}
		defer client.Close()

		w := client.Bucket(bucketName).Object(objectKey).NewWriter(ctx)
		if _, err := io.Copy(w, r); err != nil {
			_ = w.Close()
			return "", err
		}
		if err := w.Close(); err != nil {
			return "", err
		}
		return fmt.Sprintf("gs://%s/%s", bucketName, objectKey), nil

	default:
		dir := localUploadDir()
		fullPath := filepath.Join(dir, objectKey)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
			return "", err
		}
		f, err := os.Create(fullPath)
		if err != nil {
			return "", err
		}
		defer f.Close()
		if _, err := io.Copy(f, r); err != nil {
			return "", err
		}
		return fullPath, nil
	}
}

// OpenUploadObject reads back a stored upload by the location returned from SaveUploadObject.
func OpenUploadObject(ctx context.Context, location string) (io.ReadCloser, error) {
	if strings.HasPrefix(location, "gs://") {
		trimmed := strings.TrimPrefix(location, "gs://")
		parts := strings.SplitN(trimmed, "/", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid gcs location %q", location)
		}
		client, err := getGoogleClient(ctx)
		if err != nil {
			return nil, err
		}
		rc, err := client.Bucket(parts[0]).Object(parts[1]).NewReader(ctx)
		if err != nil {
			client.Close()
			return nil, err
		}
		return &gcsObjectReader{ReadCloser: rc, client: client}, nil
	}
	return os.Open(location)
}

type gcsObjectReader struct {
	io.ReadCloser
	client *storage.Client
}

func (r *gcsObjectReader) Close() error {
	err := r.ReadCloser.Close()
	_ = r.client.Close()
	return err
}
