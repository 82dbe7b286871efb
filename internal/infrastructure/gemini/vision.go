package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/yourusername/stock-backoffice/internal/domain/entity"
	"github.com/yourusername/stock-backoffice/internal/normalize"
)

// AnalyzeImage asks the model to read the image and judge whether it shows the product
func (c *Client) AnalyzeImage(ctx context.Context, image *entity.ImageData, prompt string) (*entity.ImageAnalysis, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &entity.ExternalServiceError{Service: serviceName, Op: "analyze image", Err: err}
	}

	mimeType := image.ContentType
	if mimeType == "" {
		mimeType = http.DetectContentType(image.Bytes)
	}
	blob := genai.Blob{MIMEType: strings.Split(mimeType, ";")[0], Data: image.Bytes}

	resp, err := c.vision.GenerateContent(ctx, blob, genai.Text(prompt))
	if err != nil {
		return nil, &entity.ExternalServiceError{Service: serviceName, Op: "analyze image", Err: err}
	}

	analysis, err := parseAnalysis(extractText(resp))
	if err != nil {
		return nil, &entity.ExternalServiceError{Service: serviceName, Op: "analyze image", Err: err}
	}
	return analysis, nil
}

// parseAnalysis reads {"text","matches","confidence","reason"} from model output
func parseAnalysis(raw string) (*entity.ImageAnalysis, error) {
	block := normalize.JSONObject(raw)
	if block == "" {
		return nil, fmt.Errorf("no JSON object in vision response")
	}
	var analysis entity.ImageAnalysis
	if err := json.Unmarshal([]byte(block), &analysis); err != nil {
		return nil, fmt.Errorf("invalid vision response: %w", err)
	}
	if analysis.Confidence > 1 {
		// some answers come back as a percentage
		analysis.Confidence /= 100
	}
	return &analysis, nil
}
