// Package storage uploads customer attachments to object storage and hands
// back the public URL that later travels with a submission.
package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"

	"github.com/cncdesign/cncbackend/config"
	"github.com/google/uuid"
)

type ObjectStore interface {
	// Upload stores size bytes from r under key and returns the public URL.
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// New builds the store named by cfg.Driver. It returns nil, nil for "none".
func New(ctx context.Context, cfg config.StorageConfig) (ObjectStore, error) {
	var (
		store ObjectStore
		err   error
	)
	switch cfg.Driver {
	case "gcs":
		store, err = NewGCSStore(ctx, cfg.GCSBucket, cfg.CredentialsFile)
	case "r2":
		store, err = NewR2Store(ctx, R2Config{
			Bucket:       cfg.R2Bucket,
			AccessKeyID:  cfg.R2AccessKeyID,
			SecretKey:    cfg.R2SecretKey,
			Endpoint:     cfg.R2Endpoint,
			PublicDomain: cfg.R2PublicDomain,
		})
	case "minio":
		store, err = NewMinIOStore(ctx, MinIOConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			UseSSL:    cfg.MinIOUseSSL,
			Bucket:    cfg.MinIOBucket,
			PublicURL: cfg.MinIOPublicURL,
		})
	case "", "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

var extByType = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"image/gif":       ".gif",
	"application/pdf": ".pdf",
}

// ObjectKey builds a collision-free key such as
// "submissions/2026/10/5f0c...e1.pdf". The extension follows the sniffed
// content type, never the client's filename.
func ObjectKey(prefix, contentType string, now time.Time) string {
	now = now.UTC()
	return fmt.Sprintf("%s/%04d/%02d/%s%s", strings.Trim(prefix, "/"), now.Year(), int(now.Month()), uuid.NewString(), extensionFor(contentType))
}

func extensionFor(contentType string) string {
	if ext, ok := extByType[contentType]; ok {
		return ext
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}

func joinURL(base string, parts ...string) string {
	out := strings.TrimRight(base, "/")
	for _, p := range parts {
		if p = strings.Trim(p, "/"); p != "" {
			out += "/" + p
		}
	}
	return out
}
