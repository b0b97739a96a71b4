package gcs

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// Storage implements usecase.ReceiptStorage on a Google Cloud Storage
// bucket. Stored objects are publicly readable; the returned URL is the
// canonical public one.
type Storage struct {
	client *storage.Client
	bucket string
}

// New creates a new Storage. credentialsJSON may be empty, in which case
// application default credentials are used.
func New(ctx context.Context, bucket, credentialsJSON string) (*Storage, error) {
	var (
		client *storage.Client
		err    error
	)

	if credentialsJSON != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credentialsJSON)))
	} else {
		client, err = storage.NewClient(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("bucket %q not accessible: %w", bucket, err)
	}

	return &Storage{
		client: client,
		bucket: bucket,
	}, nil
}

// Store uploads data under key and returns its public URL.
func (s *Storage) Store(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{
		"x-goog-acl": "public-read",
	}

	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to write object %q: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize object %q: %w", key, err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, key), nil
}

// Close releases the underlying client.
func (s *Storage) Close() error {
	return s.client.Close()
}
