package blob

import (
	"bytes"
	"context"
	"fmt"
)

// MockFetcher serves canned payloads keyed by object key. Used when no blob
// store is configured and throughout tests.
type MockFetcher struct {
	Objects map[string][]byte
}

func NewMockFetcher() *MockFetcher {
	return &MockFetcher{Objects: make(map[string][]byte)}
}

func (f *MockFetcher) Fetch(_ context.Context, objectKey string) (string, func(), error) {
	key := StripKeyPrefix(objectKey)
	data, ok := f.Objects[key]
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return spool(key, bytes.NewReader(data))
}
