package media

import "context"

// Result identifies an uploaded object: a stable public URL plus the handle
// the media service accepts for later deletion.
type Result struct {
	URL    string `json:"url"`
	FileID string `json:"fileId"`
}

// Uploader is the external blob-upload collaborator. The messaging engine
// treats any upload error as "send the message without the image".
type Uploader interface {
	Upload(ctx context.Context, file, fileName string) (*Result, error)
}

// Noop is used when no media service is configured; it reports every upload
// as failed so callers exercise their best-effort path.
type Noop struct{}

func (Noop) Upload(ctx context.Context, file, fileName string) (*Result, error) {
	return nil, ErrNotConfigured
}
