package bay_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/bayfiles/bay_sdk_go/pkg/bay"
)

const testBaseURL = "http://api.test/v1"

type sentRequest struct {
	URL         string
	Method      string
	Attachments []bay.Attachment
}

// fakeTransport answers requests with canned bodies keyed by path prefix,
// relative to testBaseURL, or by absolute URL for upload targets.
type fakeTransport struct {
	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	sent      []sentRequest
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		responses: make(map[string]string),
		errs:      make(map[string]error),
	}
}

func (f *fakeTransport) respond(prefix, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[prefix] = body
}

func (f *fakeTransport) fail(prefix string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[prefix] = err
}

func (f *fakeTransport) Send(_ context.Context, rawURL, method string, attachments []bay.Attachment) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentRequest{
		URL:         rawURL,
		Method:      method,
		Attachments: append([]bay.Attachment(nil), attachments...),
	})

	key := strings.TrimPrefix(rawURL, testBaseURL)
	if i := strings.IndexByte(key, '?'); i >= 0 {
		key = key[:i]
	}
	if err := longestPrefix(f.errs, key); err != nil {
		return nil, err
	}
	if body := longestPrefix(f.responses, key); body != "" {
		return []byte(body), nil
	}
	return nil, fmt.Errorf("fake transport: no response for %s", key)
}

func (f *fakeTransport) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeTransport) request(i int) sentRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[i]
}

func longestPrefix[V comparable](m map[string]V, key string) V {
	var (
		best    V
		bestLen = -1
	)
	for prefix, v := range m {
		if strings.HasPrefix(key, prefix) && len(prefix) > bestLen {
			best, bestLen = v, len(prefix)
		}
	}
	return best
}

func newFakeClient(t *testing.T, opts ...bay.Option) (*bay.Client, *fakeTransport) {
	t.Helper()
	ft := newFakeTransport()
	client, err := bay.NewWithTransport(testBaseURL, ft, opts...)
	if err != nil {
		t.Fatalf("NewWithTransport: %v", err)
	}
	return client, ft
}

var errFakeNetwork = errors.New("fake network down")
