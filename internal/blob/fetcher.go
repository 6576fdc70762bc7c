package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/google/uuid"
)

// ErrNotFound is reported when the object key resolves to nothing in the
// configured bucket.
var ErrNotFound = errors.New("object not found")

// Fetcher retrieves a recording into a transient local file. cleanup removes
// the file and must be called by the consumer on every exit path.
type Fetcher interface {
	Fetch(ctx context.Context, objectKey string) (path string, cleanup func(), err error)
}

// Upload keys sometimes arrive as full s3://bucket/key URIs; the bucket is
// already fixed by configuration, so only the key part is meaningful.
var uriPrefix = regexp.MustCompile(`^s3://[^/]+/`)

func StripKeyPrefix(objectKey string) string {
	return uriPrefix.ReplaceAllString(objectKey, "")
}

// spool streams object bytes to a per-request temp file named after the key's
// base name. Distinct requests never share a path.
func spool(objectKey string, r io.Reader) (string, func(), error) {
	name := fmt.Sprintf("%s-%s", uuid.NewString()[:8], filepath.Base(objectKey))
	path := filepath.Join(os.TempDir(), name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return "", nil, fmt.Errorf("create temp media file: %w", err)
	}
	_, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil {
		_ = os.Remove(path)
		return "", nil, fmt.Errorf("write temp media file: %w", copyErr)
	}
	if closeErr != nil {
		_ = os.Remove(path)
		return "", nil, fmt.Errorf("write temp media file: %w", closeErr)
	}

	cleanup := func() { _ = os.Remove(path) }
	return path, cleanup, nil
}
