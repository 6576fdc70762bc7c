package blob

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	storage_go "github.com/supabase-community/storage-go"
)

// SupabaseFetcher downloads recordings from a Supabase storage bucket.
type SupabaseFetcher struct {
	client *storage_go.Client
	bucket string
}

func NewSupabaseFetcher(apiURL, apiKey, bucket string) *SupabaseFetcher {
	return &SupabaseFetcher{
		client: storage_go.NewClient(apiURL, apiKey, nil),
		bucket: bucket,
	}
}

func (f *SupabaseFetcher) Fetch(_ context.Context, objectKey string) (string, func(), error) {
	key := StripKeyPrefix(objectKey)

	data, err := f.client.DownloadFile(f.bucket, key)
	if err := classifyDownload(f.bucket, key, data, err); err != nil {
		return "", nil, err
	}

	return spool(key, bytes.NewReader(data))
}

// classifyDownload maps a storage download outcome onto the fetcher's error
// contract. storage-go surfaces failures as unstructured errors built from
// the storage API's response body, so not-found detection is by message.
func classifyDownload(bucket, key string, data []byte, err error) error {
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "not found") || strings.Contains(msg, "not_found") || strings.Contains(msg, "404") {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return fmt.Errorf("download %q from bucket %q: %w", key, bucket, err)
	}
	if len(data) == 0 {
		// An empty payload is a failed transfer, not a missing object.
		return fmt.Errorf("empty download for %q from bucket %q", key, bucket)
	}
	return nil
}
