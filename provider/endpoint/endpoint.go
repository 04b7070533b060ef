// Package endpoint provides an ImageGenerator that POSTs prompts to a remote
// image-generation endpoint, such as the one served by cmd/imagegend.
//
// Request:  {"prompt": "...", "style": "...", "size": "..."}
// Response: {"imageBase64": "...", "promptId": "...", "imageId": "...", ...}
package endpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/mhpenta/imagestudio"
)

const (
	// ModelName is reported for requests routed through an endpoint.
	ModelName = "remote-endpoint"

	// maxResponseBytes bounds the response body; images are base64 inline.
	maxResponseBytes = 64 << 20
)

// Request is the JSON body sent to the endpoint.
type Request struct {
	Prompt string `json:"prompt"`
	Style  string `json:"style,omitempty"`
	Size   string `json:"size,omitempty"`
}

// Response is the JSON body returned by the endpoint.
type Response struct {
	ImageBase64 string `json:"imageBase64"`
	PromptID    string `json:"promptId,omitempty"`
	ImageID     string `json:"imageId,omitempty"`
	S3Key       string `json:"s3Key,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`

	// Error fields are set on non-2xx responses.
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Code       string // "error" field of the body, e.g. "blocked"
	Message    string
}

func (e *StatusError) Error() string {
	msg := "endpoint returned status " + strconv.Itoa(e.StatusCode)
	if e.Code != "" {
		msg += " (" + e.Code + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// IsBlocked reports whether the endpoint refused the prompt on safety grounds.
func IsBlocked(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == "blocked"
}

// Generator implements imagestudio.ImageGenerator over HTTP.
type Generator struct {
	url        string
	httpClient *http.Client
	rpm        int
}

var _ imagestudio.ImageGenerator = (*Generator)(nil)

// Option configures a Generator.
type Option func(*Generator)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Generator) {
		g.httpClient = c
	}
}

// WithRequestsPerMinute advertises a client-side request limit through Models().
func WithRequestsPerMinute(rpm int) Option {
	return func(g *Generator) {
		g.rpm = rpm
	}
}

// New creates a Generator posting to url.
func New(url string, opts ...Option) *Generator {
	g := &Generator{
		url: url,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate sends one request. Missing imageBase64 yields imagestudio.ErrNoImage.
func (g *Generator) Generate(ctx context.Context, prompt string, config *imagestudio.GenerateConfig) (*imagestudio.GenerateResult, error) {
	if err := imagestudio.ValidatePrompt(prompt); err != nil {
		return nil, err
	}
	if config == nil {
		config = imagestudio.DefaultConfig()
	}

	body, err := json.Marshal(Request{
		Prompt: prompt,
		Style:  string(config.Style),
		Size:   string(config.Size),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var out Response
	decodeErr := json.Unmarshal(respBody, &out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		se := &StatusError{StatusCode: resp.StatusCode}
		if decodeErr == nil {
			se.Code = out.Error
			se.Message = out.Message
		}
		return nil, se
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	if out.ImageBase64 == "" {
		return nil, imagestudio.ErrNoImage
	}

	return &imagestudio.GenerateResult{
		ImageBase64: out.ImageBase64,
		MIMEType:    imagestudio.DefaultMIMEType,
		Width:       out.Width,
		Height:      out.Height,
		PromptID:    out.PromptID,
		ImageID:     out.ImageID,
		ObjectKey:   out.S3Key,
	}, nil
}

func (g *Generator) Models() []imagestudio.ModelInfo {
	return []imagestudio.ModelInfo{{
		Name:         ModelName,
		Provider:     imagestudio.ProviderEndpoint,
		APIModelName: g.url,
		RateLimits:   imagestudio.RateLimits{RequestsPerMinute: g.rpm},
	}}
}

func (g *Generator) Close() error {
	g.httpClient.CloseIdleConnections()
	return nil
}
