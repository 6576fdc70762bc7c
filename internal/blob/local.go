package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalFetcher resolves object keys against a directory on disk. It still
// spools into a temp file so consumers see the same cleanup contract as the
// remote fetcher.
type LocalFetcher struct {
	root string
}

func NewLocalFetcher(root string) *LocalFetcher {
	return &LocalFetcher{root: root}
}

func (f *LocalFetcher) Fetch(_ context.Context, objectKey string) (string, func(), error) {
	key := StripKeyPrefix(objectKey)

	src, err := os.Open(filepath.Join(f.root, filepath.FromSlash(key)))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return "", nil, fmt.Errorf("read %q from %q: %w", key, f.root, err)
	}
	defer src.Close()

	return spool(key, src)
}
