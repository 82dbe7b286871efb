package imagesearch

import (
	"context"
	"fmt"
	"net/http"

	"github.com/yourusername/stock-backoffice/internal/domain/entity"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// GoogleConfig Custom Search JSON API settings
type GoogleConfig struct {
	Enabled    bool
	APIKey     string
	EngineID   string
	Safe       string
	DailyLimit int
	// Endpoint overrides the API base URL
	Endpoint   string
	HTTPClient *http.Client
}

// GoogleProvider Google Custom Search image provider
type GoogleProvider struct {
	cfg GoogleConfig
	svc *customsearch.Service
}

// NewGoogleProvider builds the provider; missing credentials leave it disabled
func NewGoogleProvider(ctx context.Context, cfg GoogleConfig) (*GoogleProvider, error) {
	p := &GoogleProvider{cfg: cfg}
	if !p.Enabled() {
		return p, nil
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create custom search service: %w", err)
	}
	p.svc = svc
	return p, nil
}

// Name provider name used for quotas
func (p *GoogleProvider) Name() string {
	return "google"
}

// Enabled switched on and credentials present
func (p *GoogleProvider) Enabled() bool {
	return p.cfg.Enabled && p.cfg.APIKey != "" && p.cfg.EngineID != ""
}

// DailyLimit calls per day
func (p *GoogleProvider) DailyLimit() int {
	return p.cfg.DailyLimit
}

// Search returns the first image hit
func (p *GoogleProvider) Search(ctx context.Context, query string) (*entity.ImageCandidate, error) {
	if !p.Enabled() || p.svc == nil {
		return nil, entity.ErrProviderDisabled
	}

	call := p.svc.Cse.List().Cx(p.cfg.EngineID).Q(query).SearchType("image").Num(1)
	if p.cfg.Safe != "" {
		call = call.Safe(p.cfg.Safe)
	}

	res, err := call.Context(ctx).Do()
	if err != nil {
		return nil, &entity.ExternalServiceError{Service: p.Name(), Op: "image search", Err: err}
	}
	for _, item := range res.Items {
		if item != nil && item.Link != "" {
			return &entity.ImageCandidate{URL: item.Link, Provider: p.Name(), Query: query}, nil
		}
	}
	return nil, nil
}
