package service

import (
	"context"
	"io"
)

// FileUploadService is the media endpoint boundary: one opaque upload call
// that returns a publicly fetchable URL or fails. No retry, no resumability.
type FileUploadService interface {
	UploadImage(ctx context.Context, file io.Reader, fileType, folder string) (string, error)
	Close() error
}
