// Package storage puts extracted audio where the transcription API can
// fetch it and hands back time limited URLs.
package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Uploader stores audio objects and produces fetchable URLs.
type Uploader interface {
	// Upload stores the file and returns the object key. Uploading a
	// file that is already stored with identical size is a no-op.
	Upload(ctx context.Context, localPath string) (string, error)
	// FetchURL returns a URL for an object that an external service
	// can download for the given lifetime.
	FetchURL(ctx context.Context, key string, lifetime time.Duration) (string, error)
}

var keyUnsafe = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ObjectKey derives a stable object name from a local path. The base
// name is sanitized and suffixed with a short content-independent hash
// of the full path, so two videos with the same file name cannot
// collide in the bucket.
func ObjectKey(localPath string) string {
	base := filepath.Base(localPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	stem = keyUnsafe.ReplaceAllString(stem, "_")
	stem = strings.Trim(stem, "_")
	if stem == "" {
		stem = "audio"
	}

	sum := md5.Sum([]byte(localPath))
	return stem + "-" + hex.EncodeToString(sum[:])[:10] + ext
}
