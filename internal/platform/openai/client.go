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
	"unicode"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/odnalezione/odnalezione-backend/internal/platform/ctxutil"
	"github.com/odnalezione/odnalezione-backend/internal/platform/envutil"
	"github.com/odnalezione/odnalezione-backend/internal/platform/logger"
)

var ErrMissingAPIKey = errors.New("missing OPENAI_API_KEY")

// Client is the chat-completions client used by the import pipeline.
type Client interface {
	// CompleteJSON sends one system+user exchange in JSON mode and returns the
	// raw assistant content. Callers own parsing.
	CompleteJSON(ctx context.Context, system string, user string) (string, error)
	Model() string
}

// Observer receives one call per completed request.
type Observer interface {
	ObserveLLMRequest(model, stage, status string, dur time.Duration, inputTokens, outputTokens int)
}

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature *float64
	Timeout     time.Duration
	Observer    Observer
}

type stageKey struct{}

// WithStage labels model calls made with ctx, e.g. "normalize" or "validate".
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, stageKey{}, stage)
}

func stageOf(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	s, _ := ctx.Value(stageKey{}).(string)
	return s
}

// ConfigFromEnv reads OPENAI_* variables. Temperature defaults to 0 and can be
// disabled with OPENAI_TEMPERATURE=off for models that reject the parameter.
func ConfigFromEnv() Config {
	cfg := Config{
		APIKey:  envutil.String("OPENAI_API_KEY", ""),
		BaseURL: envutil.String("OPENAI_BASE_URL", "https://api.openai.com"),
		Model:   envutil.String("OPENAI_MODEL", "gpt-4o"),
		Timeout: envutil.Seconds("OPENAI_TIMEOUT_SECONDS", 180*time.Second),
	}
	switch strings.ToLower(envutil.String("OPENAI_TEMPERATURE", "")) {
	case "off", "none", "nil", "false":
	default:
		t := envutil.Float("OPENAI_TEMPERATURE", 0)
		cfg.Temperature = &t
	}
	return cfg
}

type client struct {
	log         *logger.Logger
	baseURL     string
	apiKey      string
	model       string
	temperature *float64
	httpClient  *http.Client
	observer    Observer
	tracer      trace.Tracer
}

func NewClient(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gpt-4o"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 180 * time.Second
	}

	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &client{
		log:         log.With("service", "OpenAIClient"),
		baseURL:     baseURL,
		apiKey:      apiKey,
		model:       model,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Transport: tr, Timeout: timeout},
		observer:    cfg.Observer,
		tracer:      otel.Tracer("odnalezione/openai"),
	}, nil
}

// NewWithHTTPClient is intended for tests; it avoids network access by using a custom RoundTripper.
func NewWithHTTPClient(log *logger.Logger, cfg Config, httpClient *http.Client) (Client, error) {
	c, err := NewClient(log, cfg)
	if err != nil {
		return nil, err
	}
	if httpClient != nil {
		c.(*client).httpClient = httpClient
	}
	return c, nil
}

func (c *client) Model() string { return c.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    *float64       `json:"temperature,omitempty"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content,omitempty"`
		} `json:"message,omitempty"`
		Text string `json:"text,omitempty"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (c *client) CompleteJSON(ctx context.Context, system string, user string) (string, error) {
	msgs := make([]chatMessage, 0, 2)
	if s := strings.TrimSpace(system); s != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: s})
	}
	if u := strings.TrimSpace(user); u != "" {
		msgs = append(msgs, chatMessage{Role: "user", Content: u})
	}
	if len(msgs) == 0 {
		return "", errors.New("no messages")
	}

	reqBody := chatCompletionRequest{
		Model:          c.model,
		Messages:       msgs,
		Temperature:    c.temperature,
		ResponseFormat: map[string]any{"type": "json_object"},
	}

	stage := stageOf(ctx)
	ctx, span := c.tracer.Start(ctx, "openai.chat_completions",
		trace.WithAttributes(
			attribute.String("llm.model", c.model),
			attribute.String("llm.stage", stage),
		),
	)
	defer span.End()

	start := time.Now()
	var resp chatCompletionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/chat/completions", reqBody, &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		c.observe(stage, "error", time.Since(start), 0, 0)
		var he *HTTPError
		c.log.Ctx(ctx).Warn("OpenAI request failed",
			"model", c.model,
			"stage", stage,
			"duration_ms", time.Since(start).Milliseconds(),
			"retryable", errors.As(err, &he) && he.Retryable(),
			"error", err,
		)
		return "", err
	}

	c.observe(stage, "ok", time.Since(start), resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	span.SetAttributes(
		attribute.Int("llm.input_tokens", resp.Usage.PromptTokens),
		attribute.Int("llm.output_tokens", resp.Usage.CompletionTokens),
	)
	c.log.Ctx(ctx).Debug("OpenAI request finished",
		"model", c.model,
		"stage", stage,
		"duration_ms", time.Since(start).Milliseconds(),
		"input_tokens", resp.Usage.PromptTokens,
		"output_tokens", resp.Usage.CompletionTokens,
	)

	text := extractChatText(resp)
	if strings.TrimSpace(text) == "" {
		return "", errors.New("empty upstream completion")
	}
	return text, nil
}

func (c *client) observe(stage, status string, dur time.Duration, in, out int) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveLLMRequest(c.model, stage, status, dur, in, out)
}

func extractChatText(resp chatCompletionResponse) string {
	for _, ch := range resp.Choices {
		if strings.TrimSpace(ch.Message.Content) != "" {
			return ch.Message.Content
		}
		if strings.TrimSpace(ch.Text) != "" {
			return ch.Text
		}
	}
	return ""
}

// StripCodeFence removes a Markdown code fence around s. The opening fence
// may carry a language tag on its own line or, for one-line replies, a json
// tag before the payload.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	body := s[3:]
	if nl := strings.IndexByte(body, '\n'); nl != -1 && isFenceTag(body[:nl]) {
		body = body[nl+1:]
	} else if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = body[4:]
	}
	if idx := strings.LastIndex(body, "```"); idx != -1 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}

func isFenceTag(line string) bool {
	for _, r := range strings.TrimSpace(line) {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' {
			return false
		}
	}
	return true
}

func (c *client) doJSON(ctx context.Context, method string, path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if rid := ctxutil.RequestID(ctx); rid != "" {
		req.Header.Set("X-Request-Id", rid)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("openai decode error: %w", err)
	}
	return nil
}
