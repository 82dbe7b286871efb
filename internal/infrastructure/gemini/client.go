package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/yourusername/stock-backoffice/internal/domain/entity"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

const serviceName = "gemini"

// Client Gemini backed text generator and vision analyzer
type Client struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	vision  *genai.GenerativeModel
	limiter *rate.Limiter
}

// NewGeminiClient creates a Gemini client; ratePerMinute <= 0 disables throttling
func NewGeminiClient(ctx context.Context, apiKey, modelName string, ratePerMinute int) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	// low temperature keeps product facts close to the prompt
	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.3)
	model.SetTopK(20)
	model.SetTopP(0.9)
	model.SetMaxOutputTokens(2048)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemInstruction)},
	}

	vision := client.GenerativeModel(modelName)
	vision.SetTemperature(0)
	vision.SetMaxOutputTokens(512)
	vision.ResponseMIMEType = "application/json"

	return &Client{
		client:  client,
		model:   model,
		vision:  vision,
		limiter: newLimiter(ratePerMinute),
	}, nil
}

const systemInstruction = `Tu es rédacteur e-commerce pour une boutique de matériel informatique et de sécurité.
Tu écris en français, de façon factuelle.
N'invente jamais de caractéristiques: si une information manque, ne la mentionne pas.
Respecte exactement le format de réponse demandé.`

// Name provider name
func (c *Client) Name() string {
	return serviceName
}

// Generate single-turn text generation
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", &entity.ExternalServiceError{Service: serviceName, Op: "generate", Err: err}
	}

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", &entity.ExternalServiceError{Service: serviceName, Op: "generate", Err: err}
	}

	text := strings.TrimSpace(extractText(resp))
	if text == "" {
		return "", &entity.ExternalServiceError{Service: serviceName, Op: "generate", Err: fmt.Errorf("no response candidates")}
	}
	return text, nil
}

// extractText concatenates the text parts of every candidate
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var result strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				result.WriteString(string(text))
			}
		}
	}
	return result.String()
}

func newLimiter(ratePerMinute int) *rate.Limiter {
	if ratePerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(ratePerMinute)), 1)
}

// Close releases the underlying client
func (c *Client) Close() error {
	return c.client.Close()
}
