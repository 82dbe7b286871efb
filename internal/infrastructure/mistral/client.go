package mistral

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yourusername/stock-backoffice/internal/domain/entity"
	"golang.org/x/time/rate"
)

const (
	serviceName    = "mistral"
	defaultBaseURL = "https://api.mistral.ai"
)

// Config Mistral API settings; AgentID switches to the agents endpoint
type Config struct {
	APIKey        string
	Model         string
	AgentID       string
	BaseURL       string
	RatePerMinute int
	Timeout       time.Duration
}

// Client Mistral chat/agents completion client
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Mistral text generator
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("mistral api key is empty")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "mistral-small-latest"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMinute)), 1)
	}

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model,omitempty"`
	AgentID     string    `json:"agent_id,omitempty"`
	Messages    []message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Name provider name
func (c *Client) Name() string {
	return serviceName
}

// Generate single-turn completion
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", c.fail(err)
	}

	req := completionRequest{
		Messages:  []message{{Role: "user", Content: prompt}},
		MaxTokens: 2048,
	}
	endpoint := c.cfg.BaseURL + "/v1/chat/completions"
	if c.cfg.AgentID != "" {
		req.AgentID = c.cfg.AgentID
		endpoint = c.cfg.BaseURL + "/v1/agents/completions"
	} else {
		temperature := 0.3
		req.Model = c.cfg.Model
		req.Temperature = &temperature
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", c.fail(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", c.fail(err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", c.fail(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", c.fail(err)
	}
	if resp.StatusCode >= 300 {
		return "", c.fail(fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(raw), 300)))
	}

	var parsed completionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", c.fail(fmt.Errorf("invalid response: %w", err))
	}
	if len(parsed.Choices) == 0 {
		return "", c.fail(fmt.Errorf("no choices in response"))
	}

	text := strings.TrimSpace(contentText(parsed.Choices[0].Message.Content))
	if text == "" {
		return "", c.fail(fmt.Errorf("empty completion"))
	}
	return text, nil
}

// contentText content is a string, or a list of chunks for agent replies
func contentText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var chunks []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &chunks); err != nil {
		return ""
	}
	var b strings.Builder
	for _, ch := range chunks {
		if ch.Type == "" || ch.Type == "text" {
			b.WriteString(ch.Text)
		}
	}
	return b.String()
}

func (c *Client) fail(err error) error {
	return &entity.ExternalServiceError{Service: serviceName, Op: "generate", Err: err}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
