package bay

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/afero"

	"github.com/bayfiles/bay_sdk_go/internal/httpx"
)

// Attachment is a local file sent as a multipart form field. Name is the
// file name sent to the server; empty means the base name of Path.
type Attachment struct {
	Field string
	Path  string
	Name  string
}

// Transport performs one round trip for a fully built URL and returns the raw
// response body. Attachments are only passed for POST requests. Timeouts and
// cancellation are the transport's concern.
type Transport interface {
	Send(ctx context.Context, rawURL, method string, attachments []Attachment) ([]byte, error)
}

type httpTransport struct {
	client *httpx.Client
	fs     afero.Fs
}

func (t *httpTransport) Send(ctx context.Context, rawURL, method string, attachments []Attachment) ([]byte, error) {
	req := &httpx.Request{Method: method, Path: rawURL}
	if len(attachments) > 0 {
		files := make([]httpx.FormFile, 0, len(attachments))
		for _, a := range attachments {
			files = append(files, httpx.FormFile{Field: a.Field, Path: a.Path, Name: a.Name})
		}
		body, contentType, err := httpx.MultipartBody(t.fs, files)
		if err != nil {
			return nil, err
		}
		defer body.Close()
		req.Body = body
		req.Header = http.Header{"Content-Type": []string{contentType}}
		req.DisableRetry = true
	}

	resp, err := t.client.Do(ctx, req)
	if err != nil {
		// The API reports failures in the body; a JSON object sent with an
		// error status is still a response.
		var httpErr *httpx.HTTPError
		if errors.As(err, &httpErr) && httpErr.JSONObject() {
			return httpErr.Body, nil
		}
		return nil, err
	}
	return httpx.ReadAllAndClose(resp.Body)
}
