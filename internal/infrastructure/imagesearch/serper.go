package imagesearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/yourusername/stock-backoffice/internal/domain/entity"
)

// SerperConfig serper.dev image search settings
type SerperConfig struct {
	Enabled    bool
	APIKey     string
	Endpoint   string
	DailyLimit int
	Timeout    time.Duration
}

// SerperProvider serper.dev image provider
type SerperProvider struct {
	cfg  SerperConfig
	http *http.Client
}

// NewSerperProvider builds the provider; a missing key leaves it disabled
func NewSerperProvider(cfg SerperConfig) *SerperProvider {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://google.serper.dev/images"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &SerperProvider{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

// Name provider name used for quotas
func (p *SerperProvider) Name() string {
	return "serper"
}

// Enabled switched on and key present
func (p *SerperProvider) Enabled() bool {
	return p.cfg.Enabled && p.cfg.APIKey != ""
}

// DailyLimit calls per day
func (p *SerperProvider) DailyLimit() int {
	return p.cfg.DailyLimit
}

type serperResponse struct {
	Images []struct {
		ImageURL     string `json:"imageUrl"`
		Link         string `json:"link"`
		ThumbnailURL string `json:"thumbnailUrl"`
	} `json:"images"`
}

// Search returns the first image hit
func (p *SerperProvider) Search(ctx context.Context, query string) (*entity.ImageCandidate, error) {
	if !p.Enabled() {
		return nil, entity.ErrProviderDisabled
	}

	body, err := json.Marshal(map[string]any{"q": query, "num": 1})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, p.fail(err)
	}
	req.Header.Set("X-API-KEY", p.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, p.fail(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return nil, p.fail(fmt.Errorf("status %d: %s", resp.StatusCode, snippet))
	}

	var parsed serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, p.fail(fmt.Errorf("invalid response: %w", err))
	}
	for _, img := range parsed.Images {
		for _, link := range []string{img.ImageURL, img.Link, img.ThumbnailURL} {
			if link != "" {
				return &entity.ImageCandidate{URL: link, Provider: p.Name(), Query: query}, nil
			}
		}
	}
	return nil, nil
}

func (p *SerperProvider) fail(err error) error {
	return &entity.ExternalServiceError{Service: p.Name(), Op: "image search", Err: err}
}
