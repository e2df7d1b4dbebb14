// Package gcs provides a PageStore backed by Google Cloud Storage.
package gcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"

	"github.com/JakeFAU/seo-snapshot-generator/internal/snapshot"
)

// Config captures the parameters required to connect to GCS.
type Config struct {
	Bucket string
	// Prefix is prepended to every object name, e.g. "static-pages".
	Prefix string
}

// PageStore writes rendered pages to a configured GCS bucket.
type PageStore struct {
	client *storage.Client
	bucket string
	prefix string
}

var _ snapshot.PageStore = (*PageStore)(nil)

// New creates a GCS-backed page store.
func New(client *storage.Client, cfg Config) (*PageStore, error) {
	if client == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	return &PageStore{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

func (s *PageStore) objectName(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// PutObject uploads data to the configured bucket and returns a gs:// URI.
// Without Upsert the write is conditioned on the object not existing.
func (s *PageStore) PutObject(ctx context.Context, name string, data []byte, opts snapshot.PutOptions) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("object name is required")
	}
	objectName := s.objectName(name)
	obj := s.client.Bucket(s.bucket).Object(objectName)
	if !opts.Upsert {
		obj = obj.If(storage.Conditions{DoesNotExist: true})
	}
	writer := obj.NewWriter(ctx)
	writer.ContentType = opts.ContentType
	writer.CacheControl = opts.CacheControl
	if len(opts.Metadata) > 0 {
		writer.Metadata = opts.Metadata
	}
	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		closeErr := writer.Close()
		if closeErr != nil {
			return "", fmt.Errorf("copy object %s: %w (close writer: %v)", objectName, err, closeErr)
		}
		return "", fmt.Errorf("copy object %s: %w", objectName, err)
	}
	if err := writer.Close(); err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusPreconditionFailed {
			return "", fmt.Errorf("write object %s: %w", objectName, snapshot.ErrPageExists)
		}
		return "", fmt.Errorf("close writer for %s: %w", objectName, err)
	}
	return fmt.Sprintf("gs://%s/%s", s.bucket, objectName), nil
}
