package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/yanxue-backend/internal/coursegen"
	"github.com/yungbote/yanxue-backend/internal/observability"
	"github.com/yungbote/yanxue-backend/internal/platform/logger"
)

const (
	DefaultBaseURL = "https://api.openai.com"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 60 * time.Second

	completionsPath = "/v1/chat/completions"
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client talks to an OpenAI-compatible chat completions endpoint. It makes
// exactly one request per Generate call.
type Client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	metrics    *observability.Metrics
}

var _ coursegen.Generator = (*Client)(nil)

// NewClient builds a client for cfg. metrics may be nil.
func NewClient(cfg Config, log *logger.Logger, metrics *observability.Metrics) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/v1")
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		log:        log.With("client", "OpenAIClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		metrics:    metrics,
	}, nil
}

func (c *Client) Model() string { return c.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		FinishReason string `json:"finish_reason"`
		Message      struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

type openAIHTTPError struct {
	StatusCode int
	Body       string
}

func (e *openAIHTTPError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, truncate(e.Body, 512))
}

func (e *openAIHTTPError) HTTPStatusCode() int { return e.StatusCode }

// Generate sends the system and user prompts and returns the reply text.
// Failures come back as *coursegen.Error with a transport, quota or service
// code.
func (c *Client) Generate(ctx context.Context, system, user string) (string, error) {
	start := time.Now()
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		ResponseFormat: responseFormat{Type: "json_object"},
	}

	raw, err := c.doOnce(ctx, req)
	if err != nil {
		classified := classify(err)
		c.metrics.ObserveLLMRequest(c.model, string(coursegen.CodeOf(classified)), time.Since(start), 0, 0)
		c.log.Warn("chat completion failed", "model", c.model, "error", classified, "duration_ms", time.Since(start).Milliseconds())
		return "", classified
	}

	var resp chatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", coursegen.NewError(coursegen.CodeService, "", fmt.Errorf("openai decode error: %w", err))
	}
	c.metrics.ObserveLLMRequest(c.model, "ok", time.Since(start), resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	if len(resp.Choices) == 0 {
		return "", coursegen.Errorf(coursegen.CodeService, "", "openai returned no choices")
	}
	choice := resp.Choices[0]
	if choice.Message.Refusal != "" {
		return "", coursegen.Errorf(coursegen.CodeService, "", "openai refused: %s", choice.Message.Refusal)
	}
	if choice.FinishReason == "content_filter" {
		return "", coursegen.Errorf(coursegen.CodeService, "", "openai reply blocked by content filter")
	}
	if strings.TrimSpace(choice.Message.Content) == "" {
		return "", coursegen.Errorf(coursegen.CodeService, "", "openai returned empty content")
	}
	c.log.Debug("chat completion ok",
		"model", c.model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return choice.Message.Content, nil
}

func (c *Client) doOnce(ctx context.Context, body any) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionsPath, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return raw, &openAIHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}

func classify(err error) error {
	var httpErr *openAIHTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode == http.StatusTooManyRequests || isQuotaBody(httpErr.Body) {
			return coursegen.NewError(coursegen.CodeQuota, "", err)
		}
		return coursegen.NewError(coursegen.CodeService, "", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return coursegen.NewError(coursegen.CodeTransport, "", err)
	}
	return coursegen.NewError(coursegen.CodeService, "", err)
}

func isQuotaBody(body string) bool {
	var parsed apiErrorBody
	if err := json.Unmarshal([]byte(body), &parsed); err == nil {
		if parsed.Error.Type == "insufficient_quota" {
			return true
		}
		if code, ok := parsed.Error.Code.(string); ok && code == "insufficient_quota" {
			return true
		}
	}
	return strings.Contains(body, "insufficient_quota")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
