package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/yourusername/stock-backoffice/internal/domain/entity"
	"github.com/yourusername/stock-backoffice/internal/domain/repository"
	"github.com/yourusername/stock-backoffice/internal/normalize"
	"go.uber.org/zap"
)

// ProductEnricher runs the asset pipeline for one product
type ProductEnricher interface {
	Enrich(ctx context.Context, product entity.Product, req entity.EnrichmentRequest) (*entity.EnrichmentResult, error)
}

// PipelineDeps capabilities used by the pipeline; nil text generator, quota or validator disable that step
type PipelineDeps struct {
	Text        repository.TextGenerator
	Providers   []repository.ImageSearchProvider
	Template    repository.ImageURLTemplate
	Quota       repository.QuotaTracker
	Fetcher     repository.ImageFetcher
	Validator   repository.ImageValidator
	Store       repository.ImageStore
	ProductRepo repository.ProductRepository
}

// PipelineConfig image search settings
type PipelineConfig struct {
	MaxTries           int
	AllowPlaceholders  bool
	PlaceholderDomains []string
}

// Pipeline generates missing product content and images
type Pipeline struct {
	deps PipelineDeps
	cfg  PipelineConfig
	log  *zap.Logger
}

// NewPipeline creates the asset pipeline
func NewPipeline(deps PipelineDeps, cfg PipelineConfig, log *zap.Logger) *Pipeline {
	if cfg.MaxTries < 1 {
		cfg.MaxTries = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{deps: deps, cfg: cfg, log: log}
}

// run mutable state of one Enrich call
type run struct {
	result  *entity.EnrichmentResult
	product entity.Product
	log     *zap.Logger
}

func (r *run) enter(state entity.PipelineState) {
	if n := len(r.result.States); n == 0 || r.result.States[n-1] != state {
		r.result.States = append(r.result.States, state)
	}
	r.result.State = state
}

func (r *run) record(asset entity.AssetType, status entity.AssetStatus, message string) {
	r.result.Assets = append(r.result.Assets, entity.AssetResult{Asset: asset, Status: status, Message: message})
	if status == entity.AssetGenerated {
		r.result.Changed = true
	}
	fields := []zap.Field{zap.String("asset", string(asset)), zap.String("status", string(status))}
	if message != "" {
		fields = append(fields, zap.String("message", message))
	}
	if status == entity.AssetFailed {
		r.log.Warn("asset failed", fields...)
		return
	}
	r.log.Info("asset done", fields...)
}

// Enrich produces the requested assets in order, catching every external failure per asset.
// The product is saved once at the end when anything was generated.
func (p *Pipeline) Enrich(ctx context.Context, product entity.Product, req entity.EnrichmentRequest) (*entity.EnrichmentResult, error) {
	r := &run{
		result:  &entity.EnrichmentResult{ProductID: product.ID},
		product: product,
		log:     p.log.With(zap.Int64("product_id", product.ID), zap.String("product", product.Label())),
	}
	r.enter(entity.StatePending)

	for _, asset := range entity.AllAssets {
		if !req.Wants(asset) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return p.interrupted(ctx, r, err)
		}
		force := req.Forced(asset)

		switch asset {
		case entity.AssetDescription:
			r.enter(entity.StateTextGenerating)
			p.description(ctx, r, force)
		case entity.AssetTechSheet:
			r.enter(entity.StateTextGenerating)
			p.techSheet(ctx, r, force)
		case entity.AssetBlog:
			r.enter(entity.StateTextGenerating)
			p.blog(ctx, r, force)
		case entity.AssetVideos:
			p.videos(r, force)
		case entity.AssetImages:
			r.enter(entity.StateImageSearching)
			p.images(ctx, r, force)
		}
	}

	if r.result.Count(entity.AssetFailed) > 0 {
		r.enter(entity.StatePartialFailure)
	} else {
		r.enter(entity.StateComplete)
	}

	r.result.Product = r.product
	if r.result.Changed && p.deps.ProductRepo != nil {
		if err := p.deps.ProductRepo.SaveProduct(ctx, &r.result.Product); err != nil {
			return r.result, fmt.Errorf("failed to save product %d: %w", product.ID, err)
		}
	}
	return r.result, nil
}

// interrupted keeps what was generated before the context ended
func (p *Pipeline) interrupted(ctx context.Context, r *run, cause error) (*entity.EnrichmentResult, error) {
	r.result.Product = r.product
	if !r.result.Changed || p.deps.ProductRepo == nil {
		return r.result, cause
	}
	r.log.Info("saving partial result", zap.Error(cause))
	if err := p.deps.ProductRepo.SaveProduct(context.WithoutCancel(ctx), &r.result.Product); err != nil {
		return r.result, fmt.Errorf("failed to save product %d: %w", r.product.ID, errors.Join(err, cause))
	}
	return r.result, cause
}

func (p *Pipeline) generate(ctx context.Context, r *run, asset entity.AssetType, prompt string) (string, bool) {
	if p.deps.Text == nil {
		r.record(asset, entity.AssetSkipped, "text generator not configured")
		return "", false
	}
	text, err := p.deps.Text.Generate(ctx, prompt)
	if err != nil {
		r.record(asset, entity.AssetFailed, err.Error())
		return "", false
	}
	return strings.TrimSpace(text), true
}

func (p *Pipeline) description(ctx context.Context, r *run, force bool) {
	if !force && r.product.ShortDescription != "" && r.product.LongDescription != "" {
		r.record(entity.AssetDescription, entity.AssetSkipped, "already present")
		return
	}

	raw, ok := p.generate(ctx, r, entity.AssetDescription, descriptionPrompt(r.product))
	if !ok {
		return
	}
	short, long := parseDescription(raw)
	if short == "" && long == "" {
		r.record(entity.AssetDescription, entity.AssetFailed, "empty description")
		return
	}

	if force || r.product.ShortDescription == "" {
		r.product.ShortDescription = short
	}
	if force || r.product.LongDescription == "" {
		r.product.LongDescription = long
	}
	r.record(entity.AssetDescription, entity.AssetGenerated, p.deps.Text.Name())
}

func (p *Pipeline) techSheet(ctx context.Context, r *run, force bool) {
	if !force && len(r.product.TechSpecs) > 0 {
		r.record(entity.AssetTechSheet, entity.AssetSkipped, "already present")
		return
	}

	raw, ok := p.generate(ctx, r, entity.AssetTechSheet, techSheetPrompt(r.product))
	if !ok {
		return
	}
	specs := parseSpecs(raw)
	if len(specs) == 0 {
		r.record(entity.AssetTechSheet, entity.AssetFailed, "no specs in response")
		return
	}
	r.product.TechSpecs = specs
	r.record(entity.AssetTechSheet, entity.AssetGenerated, fmt.Sprintf("%d specs", len(specs)))
}

func (p *Pipeline) blog(ctx context.Context, r *run, force bool) {
	if !force && r.product.BlogDraft != "" {
		r.record(entity.AssetBlog, entity.AssetSkipped, "already present")
		return
	}

	raw, ok := p.generate(ctx, r, entity.AssetBlog, blogPrompt(r.product))
	if !ok {
		return
	}
	if raw == "" {
		r.record(entity.AssetBlog, entity.AssetFailed, "empty draft")
		return
	}
	r.product.BlogDraft = raw
	r.record(entity.AssetBlog, entity.AssetGenerated, p.deps.Text.Name())
}

func (p *Pipeline) videos(r *run, force bool) {
	if !force && len(r.product.Videos) > 0 {
		r.record(entity.AssetVideos, entity.AssetSkipped, "already present")
		return
	}
	links := VideoSearchLinks(r.product)
	if len(links) == 0 {
		r.record(entity.AssetVideos, entity.AssetNotFound, "no search terms")
		return
	}
	r.product.Videos = links
	r.record(entity.AssetVideos, entity.AssetGenerated, fmt.Sprintf("%d links", len(links)))
}

// images tries every query on every enabled provider until one candidate is stored,
// then falls back to the URL template once every search came back empty
func (p *Pipeline) images(ctx context.Context, r *run, force bool) {
	if !force && r.product.HasRealImage() {
		r.record(entity.AssetImages, entity.AssetSkipped, "already present")
		return
	}

	var providers []repository.ImageSearchProvider
	for _, provider := range p.deps.Providers {
		if provider != nil && provider.Enabled() {
			providers = append(providers, provider)
		}
	}
	template := p.deps.Template
	if template != nil && !template.Enabled() {
		template = nil
	}
	if (len(providers) == 0 && template == nil) || p.deps.Fetcher == nil || p.deps.Store == nil {
		r.record(entity.AssetImages, entity.AssetSkipped, "no image provider configured")
		return
	}

	queries := ImageQueries(r.product, p.cfg.MaxTries)
	if len(queries) == 0 && template == nil {
		r.record(entity.AssetImages, entity.AssetNotFound, "no search terms")
		return
	}

	attempts := &imageAttempts{}
	exhausted := make(map[string]bool)
	for _, query := range queries {
		for _, provider := range providers {
			if err := ctx.Err(); err != nil {
				r.record(entity.AssetImages, entity.AssetFailed, err.Error())
				return
			}
			if exhausted[provider.Name()] {
				continue
			}

			allowed, err := p.consume(ctx, provider)
			if err != nil {
				attempts.externalErr = err
				exhausted[provider.Name()] = true
				continue
			}
			if !allowed {
				r.log.Debug("provider over daily quota", zap.String("provider", provider.Name()))
				exhausted[provider.Name()] = true
				continue
			}

			candidate, err := provider.Search(ctx, query)
			if err != nil {
				attempts.externalErr = err
				r.log.Warn("image search failed", zap.String("provider", provider.Name()), zap.Error(err))
				continue
			}
			if candidate == nil || candidate.URL == "" {
				continue
			}
			if p.place(ctx, r, candidate, attempts) {
				return
			}
		}
	}

	if template != nil {
		if err := ctx.Err(); err != nil {
			r.record(entity.AssetImages, entity.AssetFailed, err.Error())
			return
		}
		query := ""
		if len(queries) > 0 {
			query = queries[0]
		}
		if link := template.URLFor(r.product, query); link != "" {
			candidate := &entity.ImageCandidate{URL: link, Provider: templateSource, Query: query}
			if p.place(ctx, r, candidate, attempts) {
				return
			}
		}
	}

	if attempts.externalErr != nil && attempts.rejected == 0 {
		r.record(entity.AssetImages, entity.AssetFailed, attempts.externalErr.Error())
		return
	}
	message := "no candidate"
	if attempts.rejected > 0 {
		message = fmt.Sprintf("%d candidates rejected", attempts.rejected)
	}
	r.record(entity.AssetImages, entity.AssetNotFound, message)
}

// templateSource provider name recorded for template URLs
const templateSource = "template"

type imageAttempts struct {
	rejected    int
	externalErr error
}

// place reports whether the images asset is settled, stored or failed for good
func (p *Pipeline) place(ctx context.Context, r *run, candidate *entity.ImageCandidate, attempts *imageAttempts) bool {
	ref, placeholder, err := p.tryCandidate(ctx, r, candidate)
	switch {
	case err == nil:
		r.product.ImageRef = ref
		r.product.ImageIsPlaceholder = placeholder
		r.record(entity.AssetImages, entity.AssetGenerated, fmt.Sprintf("%s: %s", candidate.Provider, candidate.URL))
		return true
	case entity.IsRejected(err):
		attempts.rejected++
		r.log.Info("image candidate rejected", zap.String("url", candidate.URL), zap.String("query", candidate.Query), zap.Error(err))
	case errors.Is(err, errStoreFailed):
		r.record(entity.AssetImages, entity.AssetFailed, err.Error())
		return true
	default:
		attempts.externalErr = err
		r.log.Warn("image candidate failed", zap.String("url", candidate.URL), zap.Error(err))
	}
	return false
}

var errStoreFailed = errors.New("image store failed")

func (p *Pipeline) consume(ctx context.Context, provider repository.ImageSearchProvider) (bool, error) {
	limit := provider.DailyLimit()
	if p.deps.Quota == nil || limit <= 0 {
		return true, nil
	}
	return p.deps.Quota.Consume(ctx, provider.Name(), limit)
}

// tryCandidate downloads, validates and stores one candidate
func (p *Pipeline) tryCandidate(ctx context.Context, r *run, candidate *entity.ImageCandidate) (string, bool, error) {
	placeholder := IsPlaceholderURL(candidate.URL, p.cfg.PlaceholderDomains)
	if placeholder && !p.cfg.AllowPlaceholders {
		return "", false, &entity.ImageRejectedError{Check: "placeholder", Reason: "placeholder domain"}
	}

	img, err := p.deps.Fetcher.Fetch(ctx, candidate.URL)
	if err != nil {
		return "", false, err
	}
	img.Placeholder = placeholder

	r.enter(entity.StateImageValidating)
	if !placeholder && p.deps.Validator != nil {
		if err := p.deps.Validator.Validate(ctx, r.product, img); err != nil {
			return "", false, err
		}
	}

	ref, err := p.deps.Store.Save(ctx, r.product, img)
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", errStoreFailed, err)
	}
	return ref, placeholder, nil
}

// IsPlaceholderURL reports whether the URL host is one of the placeholder domains or a subdomain of one
func IsPlaceholderURL(raw string, domains []string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" && (host == d || strings.HasSuffix(host, "."+d)) {
			return true
		}
	}
	return false
}

// ImageQueries distinct search queries, most specific first
func ImageQueries(p entity.Product, max int) []string {
	join := func(parts ...string) string {
		var kept []string
		for _, part := range parts {
			if part = strings.TrimSpace(part); part != "" {
				kept = append(kept, part)
			}
		}
		return strings.Join(kept, " ")
	}

	candidates := []string{
		join(p.Brand, p.ManufacturerReference),
		p.ManufacturerReference,
		join(p.Brand, p.Name),
		p.Name,
		p.SKU,
		p.Barcode,
		join(p.Name, p.Category),
	}

	seen := make(map[string]bool)
	var out []string
	for _, q := range candidates {
		q = strings.TrimSpace(q)
		key := normalize.Fold(q)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, q)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}

// VideoSearchLinks YouTube and Vimeo search pages for the product
func VideoSearchLinks(p entity.Product) []entity.VideoLink {
	queries := ImageQueries(p, 1)
	if len(queries) == 0 {
		return nil
	}
	q := url.QueryEscape(queries[0])
	return []entity.VideoLink{
		{Platform: "youtube", Type: "search", URL: "https://www.youtube.com/results?search_query=" + q},
		{Platform: "vimeo", Type: "search", URL: "https://vimeo.com/search?q=" + q},
	}
}

const shortDescriptionMax = 160

// parseDescription reads {"short_description","long_description"}; plain prose becomes the long text
func parseDescription(raw string) (string, string) {
	var payload struct {
		Short string `json:"short_description"`
		Long  string `json:"long_description"`
	}
	if block := normalize.JSONObject(raw); block != "" {
		if err := json.Unmarshal([]byte(block), &payload); err == nil && (payload.Short != "" || payload.Long != "") {
			short := strings.TrimSpace(payload.Short)
			long := strings.TrimSpace(payload.Long)
			if short == "" {
				short = summarize(long, shortDescriptionMax)
			}
			return short, long
		}
	}

	long := strings.TrimSpace(raw)
	return summarize(long, shortDescriptionMax), long
}

// summarize first sentence, cut on a word boundary to at most limit runes
func summarize(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	if i := sentenceEnd(text); i > 0 {
		text = text[:i+1]
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	cut := string(runes[:limit-1])
	if i := strings.LastIndex(cut, " "); i > limit/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:") + "…"
}

// sentenceEnd index of the first ".", "!" or "?" followed by a space, -1 when none
func sentenceEnd(text string) int {
	for i := 0; i+1 < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			if text[i+1] == ' ' {
				return i
			}
		}
	}
	return -1
}

// parseSpecs reads {"specs":[{"label","value"}]} even when wrapped in prose or a code fence
func parseSpecs(raw string) []entity.Spec {
	block := normalize.JSONObject(raw)
	if block == "" {
		return nil
	}
	var payload struct {
		Specs []entity.Spec `json:"specs"`
	}
	if err := json.Unmarshal([]byte(block), &payload); err != nil {
		return nil
	}
	var out []entity.Spec
	for _, s := range payload.Specs {
		s.Label = strings.TrimSpace(s.Label)
		s.Value = strings.TrimSpace(s.Value)
		if s.Label != "" && s.Value != "" {
			out = append(out, s)
		}
	}
	return out
}
