package image

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"moodboard/internal/domain"
	"moodboard/internal/infra"
)

// ErrMissingAPIKey indicates that a client was configured without credentials.
var ErrMissingAPIKey = errors.New("image: api key is required")

// codeMissingCredentials is reported as the failure code when no key is set.
const codeMissingCredentials = "MISSING_CREDENTIALS"

// Options configures a provider transport.
type Options struct {
	APIKey  string
	BaseURL string
	// CallbackURL is forwarded to providers that accept one. Polling stays
	// authoritative either way.
	CallbackURL    string
	Size           string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// client carries the plumbing shared by every provider.
type client struct {
	name       string
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

func newClient(name, defaultBaseURL string, opts Options) client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 45 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return client{
		name:       name,
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// HasCredentials reports whether the client can perform remote calls.
func (c client) HasCredentials() bool {
	return c.apiKey != ""
}

func (c client) missingCredentials() domain.Submission {
	return domain.Submission{
		Kind:    domain.SubmissionRejected,
		Failure: &domain.ProviderFailure{Code: codeMissingCredentials, Message: ErrMissingAPIKey.Error()},
	}
}

// do sends one JSON request and returns the status and raw body. Only
// transport failures come back as errors.
func (c client) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("%s: encode request: %w", c.name, err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: build request: %w", c.name, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: http request: %w", c.name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("%s: read response: %w", c.name, err)
	}
	return resp.StatusCode, raw, nil
}

// enhancementPrompt folds the enhancement parameters into the prompt text.
func enhancementPrompt(job domain.ProviderJob) string {
	strength := strconv.FormatFloat(job.Strength, 'f', -1, 64)
	return fmt.Sprintf("%s (Enhancement type: %s, Strength: %s)", strings.TrimSpace(job.Prompt), job.Type, strength)
}

func rejected(status int, code int, message string) domain.Submission {
	return domain.Submission{Kind: domain.SubmissionRejected, Failure: failure(status, code, message)}
}

func failure(status int, code int, message string) *domain.ProviderFailure {
	f := &domain.ProviderFailure{StatusCode: status, Message: strings.TrimSpace(message)}
	if code != 0 && code != http.StatusOK {
		f.Code = strconv.Itoa(code)
	}
	return f
}

func snippet(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 256 {
		return s[:256]
	}
	return s
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
