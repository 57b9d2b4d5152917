package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// HTTPDoer abstracts the HTTP client used by Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Backend selects how the model is hosted.
type Backend string

const (
	// BackendAPI is a hosted OpenAI-compatible endpoint.
	BackendAPI Backend = "api"
	// BackendLocal is a single-model server on this machine; it serves one
	// request at a time.
	BackendLocal Backend = "local"
)

const defaultLocalBaseURL = "http://127.0.0.1:8000/v1"

// Config configures a Client.
type Config struct {
	Backend     Backend
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	// CallTimeout bounds one oracle call. Zero disables it.
	CallTimeout time.Duration
	Images      ImageEncoder
	Schemas     *SchemaSet
	HTTP        HTTPDoer
	Logger      *slog.Logger
}

// Client is an Oracle backed by an OpenAI-compatible chat completions API.
type Client struct {
	backend     Backend
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	callTimeout time.Duration
	images      ImageEncoder
	schemas     *SchemaSet
	http        HTTPDoer
	logger      *slog.Logger
}

// NewClient validates cfg and returns a Client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("model is required")
	}
	backend := cfg.Backend
	if backend == "" {
		backend = BackendAPI
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	switch backend {
	case BackendAPI:
		if baseURL == "" {
			return nil, fmt.Errorf("base url is required for api backend")
		}
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, fmt.Errorf("api key is required for api backend")
		}
	case BackendLocal:
		if baseURL == "" {
			baseURL = defaultLocalBaseURL
		}
	default:
		return nil, fmt.Errorf("unsupported oracle backend %q", backend)
	}
	doer := cfg.HTTP
	if doer == nil {
		doer = http.DefaultClient
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		backend:     backend,
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		callTimeout: cfg.CallTimeout,
		images:      cfg.Images,
		schemas:     cfg.Schemas,
		http:        doer,
		logger:      logger,
	}, nil
}

// Backend returns the hosting mode of the client.
func (c *Client) Backend() Backend {
	return c.backend
}

// Model returns the model name sent with each request.
func (c *Client) Model() string {
	return c.model
}

// GenerateFromText sends a text-only prompt.
func (c *Client) GenerateFromText(ctx context.Context, prompt string, opts ...Option) (Value, error) {
	call := ResolveOptions(opts)
	messages := []chatMessage{{Role: "user", Content: prompt}}
	return c.complete(ctx, messages, call)
}

// GenerateFromImageAndText sends a prompt together with an image.
func (c *Client) GenerateFromImageAndText(ctx context.Context, imagePath, prompt string, opts ...Option) (Value, error) {
	call := ResolveOptions(opts)
	url, err := c.images.DataURL(imagePath)
	if err != nil {
		oe := newError(ErrInput, call.Step, "", err)
		return Failure(oe), oe
	}
	messages := []chatMessage{{
		Role: "user",
		Content: []contentPart{
			{Type: "text", Text: prompt},
			{Type: "image_url", ImageURL: &imageURL{URL: url}},
		},
	}}
	return c.complete(ctx, messages, call)
}

func (c *Client) complete(ctx context.Context, messages []chatMessage, call CallOptions) (Value, error) {
	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}
	temperature := c.temperature
	if call.Temperature != nil {
		temperature = *call.Temperature
	}
	body := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   c.maxTokens,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		oe := newError(ErrInput, call.Step, "", fmt.Errorf("marshal request: %w", err))
		return Failure(oe), oe
	}

	text, err := c.post(ctx, payload, call.Step)
	if err != nil {
		return Failure(err), err
	}
	value, err := ParseResponse(text, call)
	if err != nil {
		c.logger.Debug("oracle response rejected", "step", call.Step, "error", err)
		return value, err
	}
	if err := c.schemas.Validate(call.Step, value); err != nil {
		return Failure(err), err
	}
	return value, nil
}

func (c *Client) post(ctx context.Context, payload []byte, step string) (string, error) {
	endpoint := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", newError(ErrInput, step, "", fmt.Errorf("create request: %w", err))
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", newError(ErrTimeout, step, "", err)
		}
		return "", newError(ErrTransport, step, "", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", newError(ErrTimeout, step, "", err)
		}
		return "", newError(ErrTransport, step, "", fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", newError(ErrStatus, step, "", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(data))))
	}

	var decoded chatResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return "", newError(ErrMalformed, step, string(data), fmt.Errorf("decode completion: %w", err))
	}
	if decoded.Error != nil && decoded.Error.Message != "" {
		return "", newError(ErrStatus, step, "", errors.New(decoded.Error.Message))
	}
	if len(decoded.Choices) == 0 {
		return "", newError(ErrEmpty, step, "", errors.New("no choices in completion"))
	}
	return decoded.Choices[0].Message.Content, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}
