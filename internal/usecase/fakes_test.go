package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/yourusername/stock-backoffice/internal/domain/entity"
)

type fakeSheets struct {
	sheet *entity.Sheet
	err   error
}

func (f *fakeSheets) ReadSheet(ctx context.Context, path, sheet string) (*entity.Sheet, error) {
	return f.sheet, f.err
}

// fakeText answers by the first prompt keyword it finds
type fakeText struct {
	mu      sync.Mutex
	answers map[string]string
	fail    map[string]error
	prompts []string
}

func (f *fakeText) Name() string { return "fake" }

func (f *fakeText) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	for key, err := range f.fail {
		if strings.Contains(prompt, key) {
			return "", err
		}
	}
	for key, answer := range f.answers {
		if strings.Contains(prompt, key) {
			return answer, nil
		}
	}
	return "", errors.New("no canned answer")
}

// prompt keywords
const (
	descKey     = "descriptions e-commerce"
	techKey     = "fiche technique de ce produit"
	blogKey     = "article de blog"
	categoryKey = "Classe ce produit"
)

type fakeProvider struct {
	name    string
	enabled bool
	limit   int
	results map[string]string
	err     error
	queries []string
}

func (f *fakeProvider) Name() string    { return f.name }
func (f *fakeProvider) Enabled() bool   { return f.enabled }
func (f *fakeProvider) DailyLimit() int { return f.limit }

func (f *fakeProvider) Search(ctx context.Context, query string) (*entity.ImageCandidate, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.results[query]; ok {
		return &entity.ImageCandidate{URL: u, Provider: f.name, Query: query}, nil
	}
	if u, ok := f.results["*"]; ok {
		return &entity.ImageCandidate{URL: u, Provider: f.name, Query: query}, nil
	}
	return nil, nil
}

type fakeFetcher struct {
	fetched []string
	err     error
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*entity.ImageData, error) {
	f.fetched = append(f.fetched, url)
	if f.err != nil {
		return nil, f.err
	}
	return &entity.ImageData{URL: url, ContentType: "image/jpeg", Bytes: []byte("jpeg:" + url)}, nil
}

// fakeValidator rejects URLs containing any of reject
type fakeValidator struct {
	reject []string
	err    error
	calls  int
}

func (f *fakeValidator) Name() string { return "fake" }

func (f *fakeValidator) Validate(ctx context.Context, p entity.Product, img *entity.ImageData) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	for _, r := range f.reject {
		if strings.Contains(img.URL, r) {
			return &entity.ImageRejectedError{Check: "fake", Reason: "blurry"}
		}
	}
	return nil
}

type fakeStore struct {
	saved []string
	err   error
}

func (f *fakeStore) Save(ctx context.Context, p entity.Product, img *entity.ImageData) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.saved = append(f.saved, img.URL)
	return "products/" + img.URL[strings.LastIndex(img.URL, "/")+1:], nil
}

type fakeQuota struct {
	used map[string]int
}

func (f *fakeQuota) Consume(ctx context.Context, provider string, limit int) (bool, error) {
	if f.used == nil {
		f.used = make(map[string]int)
	}
	if f.used[provider] >= limit {
		return false, nil
	}
	f.used[provider]++
	return true, nil
}

type fakeQueue struct {
	jobs []entity.AssetJob
	err  error
}

func (f *fakeQueue) EnqueueAssetJob(ctx context.Context, job entity.AssetJob) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

// fakeEnricher fills every requested asset
type fakeEnricher struct {
	requests []entity.EnrichmentRequest
	fail     map[entity.AssetType]bool
	err      error
}

func (f *fakeEnricher) Enrich(ctx context.Context, p entity.Product, req entity.EnrichmentRequest) (*entity.EnrichmentResult, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	res := &entity.EnrichmentResult{ProductID: p.ID, State: entity.StateComplete}
	for _, a := range req.Assets {
		if f.fail[a] {
			res.Assets = append(res.Assets, entity.AssetResult{Asset: a, Status: entity.AssetFailed, Message: "boom"})
			res.State = entity.StatePartialFailure
			continue
		}
		switch a {
		case entity.AssetDescription:
			p.ShortDescription = strings.Repeat("s", 80)
			p.LongDescription = strings.Repeat("l", 500)
		case entity.AssetTechSheet:
			p.TechSpecs = make([]entity.Spec, 8)
		case entity.AssetImages:
			p.ImageRef = "products/1/img.jpg"
			p.ImageIsPlaceholder = false
		case entity.AssetVideos:
			p.Videos = []entity.VideoLink{{Platform: "youtube"}}
		case entity.AssetBlog:
			p.BlogDraft = "draft"
		}
		res.Assets = append(res.Assets, entity.AssetResult{Asset: a, Status: entity.AssetGenerated})
		res.Changed = true
	}
	res.Product = p
	return res, nil
}
