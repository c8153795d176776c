package bay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bayfiles/bay_sdk_go/internal/bayapi"
	"github.com/bayfiles/bay_sdk_go/internal/metrics"
)

// Request is a single API call. It is built with its session token already
// resolved, sent once, and then queried for response fields.
type Request struct {
	client      *Client
	op          string
	url         string
	method      string
	attachments []Attachment
	response    *bayapi.Object
	sent        bool
}

// NewRequest builds a request for path, which is relative to the base URL or
// an absolute URL (upload targets). The session query parameter is resolved
// now: an *Account may log in, a Session literal is used as-is and a nil
// source sends an empty session.
func (c *Client) NewRequest(ctx context.Context, path string, source SessionProvider) (*Request, error) {
	token := ""
	if source != nil {
		t, err := source.Session(ctx)
		if err != nil {
			return nil, err
		}
		token = t
	}

	target := path
	if !isAbsoluteURL(path) {
		target = c.baseURL + path
	}
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return &Request{
		client: c,
		op:     operation(path),
		url:    target + sep + "session=" + token,
		method: http.MethodGet,
	}, nil
}

// SetMethod selects GET (the default) or POST.
func (r *Request) SetMethod(method string) {
	r.method = strings.ToUpper(method)
}

// AttachFile records a local file sent as multipart field when the method is
// POST. Attaching the same field twice keeps the last path.
func (r *Request) AttachFile(field, localPath string) {
	r.AttachFileAs(field, localPath, "")
}

// AttachFileAs is AttachFile with the file name sent to the server.
func (r *Request) AttachFileAs(field, localPath, name string) {
	for i := range r.attachments {
		if r.attachments[i].Field == field {
			r.attachments[i] = Attachment{Field: field, Path: localPath, Name: name}
			return
		}
	}
	r.attachments = append(r.attachments, Attachment{Field: field, Path: localPath, Name: name})
}

// URL returns the full request URL. It contains the session token and, for
// logins, the credentials.
func (r *Request) URL() string {
	return r.url
}

// Send performs the round trip and parses the response. With NoErrorKind an
// API error is returned as the message string; otherwise it is returned as an
// *AccountError or *FileError. Transport and decoding failures are returned
// wrapped. A Request can only be sent once.
func (r *Request) Send(ctx context.Context, kind ErrorKind) (string, error) {
	if r.sent {
		return "", ErrRequestUsed
	}
	if r.method != http.MethodGet && r.method != http.MethodPost {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMethod, r.method)
	}
	r.sent = true

	var attachments []Attachment
	if r.method == http.MethodPost {
		attachments = r.attachments
	}

	start := time.Now()
	body, err := r.client.transport.Send(ctx, r.url, r.method, attachments)
	if err != nil {
		err = redactURL(err, r.op)
		r.observe(metrics.OutcomeTransportError, start, zap.Error(err))
		return "", fmt.Errorf("bay: send %s request: %w", r.op, err)
	}
	obj, err := bayapi.Decode(body)
	if err != nil {
		r.observe(metrics.OutcomeDecodeError, start, zap.Error(err))
		return "", fmt.Errorf("bay: decode %s response: %w", r.op, err)
	}
	r.response = obj

	if msg := obj.ErrorMessage(); msg != "" {
		r.observe(metrics.OutcomeAPIError, start, zap.String("api_error", msg))
		if kind == NoErrorKind {
			return msg, nil
		}
		return "", kind.newError(msg)
	}
	r.observe(metrics.OutcomeOK, start)
	return "", nil
}

// Field returns the raw JSON of a top-level response member, or nil when it
// is absent. Only meaningful after Send.
func (r *Request) Field(key string) json.RawMessage {
	return r.response.Raw(key)
}

// Response returns the whole decoded response. Only meaningful after Send.
func (r *Request) Response() *bayapi.Object {
	return r.response
}

func (r *Request) observe(outcome string, start time.Time, fields ...zap.Field) {
	took := time.Since(start)
	r.client.metrics.ObserveRequest(r.op, outcome, took)
	r.client.logger.Debug("bay request",
		append([]zap.Field{
			zap.String("op", r.op),
			zap.String("method", r.method),
			zap.String("outcome", outcome),
			zap.Duration("took", took),
		}, fields...)...)
}

// redactURL hides the request URL inside net/http errors; it carries the
// session token and, for logins, the password.
func redactURL(err error, op string) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = op
	}
	return err
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.IsAbs()
}

// operation names a request for logs and metrics without exposing path
// parameters, which carry credentials and tokens.
func operation(path string) string {
	if isAbsoluteURL(path) {
		return "upload"
	}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	parts := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.Join(parts, "/")
}
