package transcribe

import (
	"context"
	"io"
)

// Request is one audio memo to transcribe. The API key is resolved per
// device by the access gate before the request reaches the provider.
type Request struct {
	APIKey   string
	FileName string
	Audio    io.Reader
}

// Transcriber converts a voice memo into text.
type Transcriber interface {
	Transcribe(ctx context.Context, req Request) (string, error)
}
