package utils

import (
	"context"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

const gcsScheme = "gs://"

// getGoogleClient initializes a Google Cloud Storage client
func getGoogleClient(ctx context.Context) (*storage.Client, error) {
	// Prefer ADC (service account / GOOGLE_APPLICATION_CREDENTIALS).
	// Set GCS_CREDENTIALS_JSON to pass explicit JSON (e.g. locally).
	if credJSON := os.Getenv("GCS_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		return storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
	}
	return storage.NewClient(ctx)
}

func IsGCSPath(path string) bool {
	return strings.HasPrefix(path, gcsScheme)
}

// ParseGCSPath splits gs://bucket/object. A bare object name uses GCS_BUCKET.
func ParseGCSPath(path string) (string, string, error) {
	rest := strings.TrimPrefix(path, gcsScheme)
	bucket, object, found := strings.Cut(rest, "/")
	if !IsGCSPath(path) || !found {
		bucket = strings.TrimSpace(os.Getenv("GCS_BUCKET"))
		object = rest
	}
	if bucket == "" {
		return "", "", errors.New("GCS_BUCKET is required")
	}
	if object == "" {
		return "", "", errors.Errorf("missing object name in %q", path)
	}
	return bucket, object, nil
}

// UploadToGCS writes data to gs://bucket/object and returns the object URL.
func UploadToGCS(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	bucketName, objectName, err := ParseGCSPath(path)
	if err != nil {
		return "", err
	}

	client, err := getGoogleClient(ctx)
	if err != nil {
		return "", errors.Wrap(err, "gcs client")
	}
	defer client.Close()

	wc := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := wc.Write(data); err != nil {
		_ = wc.Close()
		return "", errors.Wrapf(err, "write gs://%s/%s", bucketName, objectName)
	}
	if err := wc.Close(); err != nil {
		return "", errors.Wrapf(err, "close gs://%s/%s", bucketName, objectName)
	}
	return gcsScheme + bucketName + "/" + objectName, nil
}
