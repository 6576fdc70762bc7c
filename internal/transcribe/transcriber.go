package transcribe

import "context"

// Transcriber turns a local media file into plain transcript text.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaPath string) (string, error)
}
