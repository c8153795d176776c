package bay

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/bayfiles/bay_sdk_go/internal/devseed"
	"github.com/bayfiles/bay_sdk_go/pkg/bay/mock"
)

const (
	envMode     = "BAY_RUNTIME_MODE"
	envAPIURL   = "BAY_API_URL"
	envMockSeed = "BAY_MOCK_SEED"

	modeAuto = "auto"
	modeHTTP = "http"
	modeMock = "mock"

	// mockBaseURL is never dialled; mock mode serves requests in-process.
	mockBaseURL = "http://bay.mock/v1"
)

// NewFromEnv initialises a Client from BAY_RUNTIME_MODE, BAY_API_URL and
// BAY_MOCK_SEED and returns the resolved mode ("http" or "mock"). In auto
// mode (the default) BAY_API_URL selects HTTP; when it is unset the
// production endpoint is used.
func NewFromEnv(opts ...Option) (client *Client, mode string, err error) {
	mode = strings.ToLower(strings.TrimSpace(os.Getenv(envMode)))
	baseURL := strings.TrimSpace(os.Getenv(envAPIURL))

	switch mode {
	case "", modeAuto:
		if baseURL == "" {
			baseURL = DefaultBaseURL
		}
		return newHTTPClient(baseURL, opts)
	case modeHTTP:
		if baseURL == "" {
			return nil, "", fmt.Errorf("bay: HTTP mode requires %s", envAPIURL)
		}
		return newHTTPClient(baseURL, opts)
	case modeMock:
		return newMockClient(opts)
	default:
		return nil, "", fmt.Errorf("bay: unsupported %s value %q", envMode, mode)
	}
}

func newHTTPClient(baseURL string, opts []Option) (*Client, string, error) {
	client, err := New(baseURL, opts...)
	if err != nil {
		return nil, "", fmt.Errorf("bay: init HTTP client: %w", err)
	}
	return client, modeHTTP, nil
}

func newMockClient(opts []Option) (*Client, string, error) {
	api := mock.New()
	if path := strings.TrimSpace(os.Getenv(envMockSeed)); path != "" {
		seed, err := devseed.Load(path)
		if err != nil {
			return nil, "", fmt.Errorf("bay: load mock seed: %w", err)
		}
		if err := api.Seed(seed); err != nil {
			return nil, "", fmt.Errorf("bay: apply mock seed: %w", err)
		}
	}
	opts = append(opts, WithHTTPClient(&http.Client{Transport: api.RoundTripper()}))
	client, err := New(mockBaseURL, opts...)
	if err != nil {
		return nil, "", fmt.Errorf("bay: init mock client: %w", err)
	}
	return client, modeMock, nil
}
