package adapter

import "context"

// QRDecoder is the port for extracting QR payloads from photographs.
// Implementations run detection off the caller's goroutine; an image with no
// recoverable code yields an empty slice, not an error.
type QRDecoder interface {
	Decode(ctx context.Context, imageBytes []byte) ([]string, error)
}
