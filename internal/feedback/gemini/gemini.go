// Package gemini implements feedback.Generator with the Google Gen AI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/discochess/coach/internal/feedback"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

// DefaultTimeout bounds a single generation request.
const DefaultTimeout = 30 * time.Second

// ErrNoAPIKey is returned by New when the key is empty.
var ErrNoAPIKey = errors.New("gemini: no API key")

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("gemini: empty response")

// Compile-time check that Client implements feedback.Generator.
var _ feedback.Generator = (*Client)(nil)

// Client generates coaching text with a Gemini model.
type Client struct {
	model  string
	client *genai.Client
}

type options struct {
	model      string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*options)

// WithModel sets the model name.
func WithModel(model string) Option {
	return func(o *options) {
		o.model = model
	}
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) Option {
	return func(o *options) {
		o.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithTimeout sets the timeout for a generation request.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// New creates a client for the Gemini API authenticated with apiKey.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNoAPIKey
	}
	o := options{
		model:   DefaultModel,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: o.httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: o.baseURL,
			Timeout: &o.timeout,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Client{model: o.model, client: client}, nil
}

// Generate sends prompt to the model and returns the text of the first
// candidate.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("gemini: %s: %s", apiErr.Status, apiErr.Message)
		}
		return "", fmt.Errorf("calling gemini: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
