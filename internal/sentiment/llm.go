package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/IshaanNene/ShopScope/internal/types"
)

// LLMProvider specifies which LLM backend to use.
type LLMProvider string

const (
	ProviderOllama LLMProvider = "ollama"
	ProviderOpenAI LLMProvider = "openai"
	ProviderCustom LLMProvider = "custom"
)

// maxPromptText bounds the review text sent in one prompt.
const maxPromptText = 2000

// LLMConfig configures the LLM integration.
type LLMConfig struct {
	Provider    LLMProvider
	Endpoint    string // e.g. "http://localhost:11434" for Ollama
	Model       string // e.g. "llama3", "gpt-4o-mini"
	APIKey      string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// LLMClient communicates with an LLM backend.
type LLMClient struct {
	cfg    LLMConfig
	client *http.Client
	logger *slog.Logger
}

// LLMOption customizes an LLMClient.
type LLMOption func(*LLMClient)

// WithHTTPClient replaces the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) LLMOption {
	return func(c *LLMClient) { c.client = hc }
}

// NewLLMClient creates a new LLM client.
func NewLLMClient(cfg LLMConfig, logger *slog.Logger, opts ...LLMOption) *LLMClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	c := &LLMClient{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger.With("component", "llm_client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate sends a prompt to the LLM and returns the response.
func (c *LLMClient) Generate(ctx context.Context, prompt string) (string, error) {
	switch c.cfg.Provider {
	case ProviderOllama:
		return c.generateOllama(ctx, prompt)
	case ProviderOpenAI:
		return c.generateOpenAI(ctx, prompt)
	case ProviderCustom:
		return c.generateCustom(ctx, prompt)
	default:
		return "", fmt.Errorf("unsupported LLM provider: %s", c.cfg.Provider)
	}
}

func (c *LLMClient) generateOllama(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"model":  c.cfg.Model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]any{
			"temperature": c.cfg.Temperature,
			"num_predict": c.cfg.MaxTokens,
		},
	}

	resp, err := c.post(ctx, strings.TrimRight(c.cfg.Endpoint, "/")+"/api/generate", payload, false)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}
	return result.Response, nil
}

func (c *LLMClient) generateOpenAI(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"model": c.cfg.Model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"max_tokens":  c.cfg.MaxTokens,
		"temperature": c.cfg.Temperature,
	}

	endpoint := c.cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://api.openai.com/v1"
	}
	resp, err := c.post(ctx, strings.TrimRight(endpoint, "/")+"/chat/completions", payload, true)
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in openai response")
	}
	return result.Choices[0].Message.Content, nil
}

func (c *LLMClient) generateCustom(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"prompt": prompt,
		"model":  c.cfg.Model,
	}
	resp, err := c.post(ctx, c.cfg.Endpoint, payload, c.cfg.APIKey != "")
	if err != nil {
		return "", fmt.Errorf("custom request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(respBody), nil
}

func (c *LLMClient) post(ctx context.Context, url string, payload any, auth bool) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return resp, nil
}

// LLMClassifier labels reviews by prompting an LLM for a JSON verdict.
type LLMClassifier struct {
	client *LLMClient
	model  string
	logger *slog.Logger
}

// NewLLMClassifier creates a classifier backed by an LLMClient.
func NewLLMClassifier(cfg LLMConfig, logger *slog.Logger, opts ...LLMOption) *LLMClassifier {
	return &LLMClassifier{
		client: NewLLMClient(cfg, logger, opts...),
		model:  cfg.Model,
		logger: logger.With("component", "llm_classifier"),
	}
}

func (l *LLMClassifier) Model() string { return l.model }

// Classify implements Classifier. Any failed text fails the whole batch.
func (l *LLMClassifier) Classify(ctx context.Context, texts []string) ([]Result, error) {
	out := make([]Result, len(texts))
	for i, text := range texts {
		r, err := l.classifyOne(ctx, text)
		if err != nil {
			return nil, &types.ClassifyError{Model: l.model, Err: err}
		}
		out[i] = r
	}
	l.logger.Debug("classified batch", "count", len(texts))
	return out, nil
}

func (l *LLMClassifier) classifyOne(ctx context.Context, text string) (Result, error) {
	if len(text) > maxPromptText {
		text = text[:maxPromptText]
	}
	prompt := fmt.Sprintf(`Classify the sentiment of the following product review. Return JSON with:
- "label": "POSITIVE" or "NEGATIVE"
- "score": float from 0.0 to 1.0, your confidence in the label

Review: %s`, text)

	response, err := l.client.Generate(ctx, prompt)
	if err != nil {
		return Result{}, err
	}
	return parseVerdict(response)
}

func parseVerdict(response string) (Result, error) {
	var verdict struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(extractJSON(response)), &verdict); err != nil {
		return Result{}, fmt.Errorf("decode verdict: %w", err)
	}

	switch strings.ToUpper(strings.TrimSpace(verdict.Label)) {
	case string(Positive):
		return Result{Label: Positive, Confidence: clamp01(verdict.Score)}, nil
	case string(Negative):
		return Result{Label: Negative, Confidence: clamp01(verdict.Score)}, nil
	default:
		return Result{}, fmt.Errorf("unexpected label %q", verdict.Label)
	}
}

// extractJSON tries to find a JSON object in the LLM response.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return "{}"
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return "{}"
}
