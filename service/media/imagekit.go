package media

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/TOPBARD/Connect-Hub/tools/errs"
)

var ErrNotConfigured = errs.New("media uploader not configured")

// ImageKitClient talks to an ImageKit-style upload API: multipart POST with
// the private key as basic-auth user, response carrying url + fileId.
// No Go SDK exists for the service, so this is a thin HTTP client.
type ImageKitClient struct {
	Endpoint   string // e.g. https://upload.imagekit.io/api/v1/files/upload
	PrivateKey string
	Folder     string
	HTTPClient *http.Client
}

func NewImageKitClient(endpoint, privateKey, folder string) *ImageKitClient {
	return &ImageKitClient{
		Endpoint:   endpoint,
		PrivateKey: privateKey,
		Folder:     folder,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type imageKitResponse struct {
	URL     string `json:"url"`
	FileID  string `json:"fileId"`
	Message string `json:"message"`
}

// Upload sends the file (base64 data URI or remote URL, both accepted by the
// API) and returns the hosted URL plus the deletable file handle.
func (c *ImageKitClient) Upload(ctx context.Context, file, fileName string) (*Result, error) {
	if c.Endpoint == "" || c.PrivateKey == "" {
		return nil, ErrNotConfigured
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	_ = w.WriteField("file", file)
	_ = w.WriteField("fileName", fileName)
	if c.Folder != "" {
		_ = w.WriteField("folder", c.Folder)
	}
	if err := w.Close(); err != nil {
		return nil, errs.WrapMsg(err, "build upload form")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, &body)
	if err != nil {
		return nil, errs.WrapMsg(err, "build upload request")
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.SetBasicAuth(c.PrivateKey, "")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, errs.ErrUpload.WrapMsg("upload request failed", "err", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errs.ErrUpload.WrapMsg("read upload response", "err", err)
	}

	var parsed imageKitResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, errs.ErrUpload.WrapMsg("decode upload response", "err", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errs.ErrUpload.WrapMsg("upload rejected", "status", resp.StatusCode, "msg", parsed.Message)
	}
	if parsed.URL == "" {
		return nil, errs.ErrUpload.WrapMsg("upload response missing url")
	}
	return &Result{URL: parsed.URL, FileID: parsed.FileID}, nil
}
