package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/stock-backoffice/internal/domain/entity"
	"github.com/yourusername/stock-backoffice/internal/domain/repository"
	"github.com/yourusername/stock-backoffice/internal/infrastructure/imagesearch"
	"github.com/yourusername/stock-backoffice/internal/infrastructure/storage"
)

type pipelineFixture struct {
	repo      repository.ProductRepository
	text      *fakeText
	google    *fakeProvider
	serper    *fakeProvider
	quota     *fakeQuota
	fetcher   *fakeFetcher
	validator *fakeValidator
	store     *fakeStore
	template  repository.ImageURLTemplate
	cfg       PipelineConfig
}

func newPipelineFixture() *pipelineFixture {
	return &pipelineFixture{
		text: &fakeText{answers: map[string]string{
			descKey: "```json\n{\"short_description\": \"Caméra dôme 2MP pour la surveillance intérieure.\", \"long_description\": \"La caméra dôme Hikvision filme en 2MP.\"}\n```",
			techKey: `Voici la fiche: {"specs": [{"label": "Résolution", "value": "2MP"}, {"label": "", "value": "x"}, {"label": "Objectif", "value": "2.8mm"}]}`,
			blogKey: "## Bien choisir sa caméra dôme\nTexte.",
		}},
		google:    &fakeProvider{name: "google", enabled: true, limit: 100, results: map[string]string{"*": "https://cdn.example.com/cam.jpg"}},
		serper:    &fakeProvider{name: "serper", enabled: false},
		quota:     &fakeQuota{},
		fetcher:   &fakeFetcher{},
		validator: &fakeValidator{},
		store:     &fakeStore{},
		cfg:       PipelineConfig{MaxTries: 3, PlaceholderDomains: []string{"via.placeholder.com", "dummyimage.com"}},
	}
}

func (f *pipelineFixture) pipeline(products ...entity.Product) *Pipeline {
	f.repo = storage.NewMemoryProductRepository(products...)
	return NewPipeline(PipelineDeps{
		Text:        f.text,
		Providers:   []repository.ImageSearchProvider{f.google, f.serper},
		Template:    f.template,
		Quota:       f.quota,
		Fetcher:     f.fetcher,
		Validator:   f.validator,
		Store:       f.store,
		ProductRepo: f.repo,
	}, f.cfg, nil)
}

func camera() entity.Product {
	return entity.Product{
		SKU:                   "CAM-01",
		ManufacturerReference: "DS-2CD1123",
		Brand:                 "Hikvision",
		Name:                  "Caméra dôme 2MP",
		Category:              "Caméras",
	}
}

func statuses(res *entity.EnrichmentResult) map[entity.AssetType]entity.AssetStatus {
	out := make(map[entity.AssetType]entity.AssetStatus)
	for _, a := range res.Assets {
		out[a.Asset] = a.Status
	}
	return out
}

func TestPipelineGeneratesEverything(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture()
	p := f.pipeline(camera())

	res, err := p.Enrich(ctx, camera0(t, f.repo), entity.EnrichmentRequest{Assets: entity.AllAssets})
	require.NoError(t, err)

	assert.Equal(t, entity.StateComplete, res.State)
	assert.Equal(t, []entity.PipelineState{
		entity.StatePending,
		entity.StateTextGenerating,
		entity.StateImageSearching,
		entity.StateImageValidating,
		entity.StateComplete,
	}, res.States)

	var order []entity.AssetType
	for _, a := range res.Assets {
		order = append(order, a.Asset)
		assert.Equal(t, entity.AssetGenerated, a.Status, a.String())
	}
	assert.Equal(t, entity.AllAssets, order)
	assert.True(t, res.Changed)

	saved, err := f.repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Caméra dôme 2MP pour la surveillance intérieure.", saved.ShortDescription)
	assert.Equal(t, "La caméra dôme Hikvision filme en 2MP.", saved.LongDescription)
	assert.Equal(t, []entity.Spec{{Label: "Résolution", Value: "2MP"}, {Label: "Objectif", Value: "2.8mm"}}, saved.TechSpecs)
	assert.Equal(t, "## Bien choisir sa caméra dôme\nTexte.", saved.BlogDraft)
	require.Len(t, saved.Videos, 2)
	assert.Equal(t, "https://www.youtube.com/results?search_query=Hikvision+DS-2CD1123", saved.Videos[0].URL)
	assert.Equal(t, "products/cam.jpg", saved.ImageRef)
	assert.False(t, saved.ImageIsPlaceholder)
	assert.Equal(t, []string{"Hikvision DS-2CD1123"}, f.google.queries)
	assert.Equal(t, 1, f.quota.used["google"])
}

// camera0 stored copy of the first product
func camera0(t *testing.T, repo repository.ProductRepository) entity.Product {
	t.Helper()
	p, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	return *p
}

func TestPipelineSkipsPopulatedAssetsUnlessForced(t *testing.T) {
	ctx := context.Background()
	full := camera()
	full.ShortDescription = "Courte."
	full.LongDescription = "Longue."
	full.TechSpecs = []entity.Spec{{Label: "Résolution", Value: "2MP"}}
	full.BlogDraft = "Brouillon"
	full.Videos = []entity.VideoLink{{Platform: "youtube", Type: "video", URL: "https://youtu.be/x"}}
	full.ImageRef = "products/1/a.jpg"

	f := newPipelineFixture()
	p := f.pipeline(full)

	res, err := p.Enrich(ctx, camera0(t, f.repo), entity.EnrichmentRequest{Assets: entity.AllAssets})
	require.NoError(t, err)
	assert.Equal(t, entity.StateComplete, res.State)
	assert.Equal(t, len(entity.AllAssets), res.Count(entity.AssetSkipped))
	assert.False(t, res.Changed)
	assert.Empty(t, f.text.prompts)
	assert.Empty(t, f.google.queries)

	res, err = p.Enrich(ctx, camera0(t, f.repo), entity.EnrichmentRequest{
		Assets: entity.AllAssets,
		Force:  map[entity.AssetType]bool{entity.AssetDescription: true},
	})
	require.NoError(t, err)
	st := statuses(res)
	assert.Equal(t, entity.AssetGenerated, st[entity.AssetDescription])
	assert.Equal(t, entity.AssetSkipped, st[entity.AssetImages])
	assert.Equal(t, "Caméra dôme 2MP pour la surveillance intérieure.", res.Product.ShortDescription)
	assert.Equal(t, "Brouillon", res.Product.BlogDraft)
}

func TestPipelineTextFailureIsPerAsset(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture()
	f.text.fail = map[string]error{techKey: &entity.ExternalServiceError{Service: "gemini", Op: "generate", Err: errors.New("quota exceeded")}}
	p := f.pipeline(camera())

	res, err := p.Enrich(ctx, camera0(t, f.repo), entity.EnrichmentRequest{
		Assets: []entity.AssetType{entity.AssetImages, entity.AssetTechSheet, entity.AssetDescription},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.StatePartialFailure, res.State)
	st := statuses(res)
	assert.Equal(t, entity.AssetFailed, st[entity.AssetTechSheet])
	assert.Equal(t, entity.AssetGenerated, st[entity.AssetDescription])
	assert.Equal(t, entity.AssetGenerated, st[entity.AssetImages])

	tech, _ := res.Result(entity.AssetTechSheet)
	assert.Contains(t, tech.Message, "quota exceeded")

	saved := camera0(t, f.repo)
	assert.NotEmpty(t, saved.ShortDescription, "generated assets are kept on partial failure")
	assert.Empty(t, saved.TechSpecs)
}

func TestPipelineUnparseableSpecsFail(t *testing.T) {
	f := newPipelineFixture()
	f.text.answers[techKey] = "Je ne connais pas ce produit."
	p := f.pipeline(camera())

	res, err := p.Enrich(context.Background(), camera0(t, f.repo), entity.EnrichmentRequest{Assets: []entity.AssetType{entity.AssetTechSheet}})
	require.NoError(t, err)
	assert.Equal(t, entity.AssetFailed, statuses(res)[entity.AssetTechSheet])
	assert.False(t, res.Changed)
}

func TestPipelineWithoutTextGenerator(t *testing.T) {
	f := newPipelineFixture()
	p := f.pipeline(camera())
	p.deps.Text = nil

	res, err := p.Enrich(context.Background(), camera0(t, f.repo), entity.EnrichmentRequest{Assets: []entity.AssetType{entity.AssetDescription, entity.AssetBlog}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count(entity.AssetSkipped))
	assert.Equal(t, entity.StateComplete, res.State)
}

func TestPipelineSkipsProviderOverQuota(t *testing.T) {
	f := newPipelineFixture()
	f.quota.used = map[string]int{"google": 100}
	f.serper = &fakeProvider{name: "serper", enabled: true, limit: 50, results: map[string]string{"*": "https://img.example.com/serper.jpg"}}
	p := f.pipeline(camera())

	res, err := p.Enrich(context.Background(), camera0(t, f.repo), entity.EnrichmentRequest{Assets: []entity.AssetType{entity.AssetImages}})
	require.NoError(t, err)

	img, ok := res.Result(entity.AssetImages)
	require.True(t, ok)
	assert.Equal(t, entity.AssetGenerated, img.Status)
	assert.Contains(t, img.Message, "serper")
	assert.Empty(t, f.google.queries)
	assert.Equal(t, "products/serper.jpg", res.Product.ImageRef)
}

func TestPipelineRejectedImagesAreNotFound(t *testing.T) {
	f := newPipelineFixture()
	f.cfg.MaxTries = 2
	f.google.results = map[string]string{"*": "https://cdn.example.com/bad.jpg"}
	f.validator.reject = []string{"bad"}
	p := f.pipeline(camera())

	res, err := p.Enrich(context.Background(), camera0(t, f.repo), entity.EnrichmentRequest{Assets: []entity.AssetType{entity.AssetImages}})
	require.NoError(t, err)

	img, _ := res.Result(entity.AssetImages)
	assert.Equal(t, entity.AssetNotFound, img.Status)
	assert.Equal(t, "2 candidates rejected", img.Message)
	assert.Equal(t, entity.StateComplete, res.State)
	assert.Contains(t, res.States, entity.StateImageValidating)
	assert.Equal(t, []string{"Hikvision DS-2CD1123", "DS-2CD1123"}, f.google.queries)
	assert.Empty(t, f.store.saved)
	assert.Empty(t, camera0(t, f.repo).ImageRef)
}

func TestPipelinePlaceholders(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture()
	f.cfg.MaxTries = 1
	f.google.results = map[string]string{"*": "https://via.placeholder.com/600"}
	p := f.pipeline(camera())

	res, err := p.Enrich(ctx, camera0(t, f.repo), entity.EnrichmentRequest{Assets: []entity.AssetType{entity.AssetImages}})
	require.NoError(t, err)
	assert.Equal(t, entity.AssetNotFound, statuses(res)[entity.AssetImages])
	assert.Empty(t, f.fetcher.fetched)

	f.cfg.AllowPlaceholders = true
	p = f.pipeline(camera())
	res, err = p.Enrich(ctx, camera0(t, f.repo), entity.EnrichmentRequest{Assets: []entity.AssetType{entity.AssetImages}})
	require.NoError(t, err)
	assert.Equal(t, entity.AssetGenerated, statuses(res)[entity.AssetImages])
	assert.True(t, res.Product.ImageIsPlaceholder)
	assert.False(t, res.Product.HasRealImage())
	assert.Zero(t, f.validator.calls, "placeholders skip validation")

	// a placeholder does not count as an image, so the next run searches again
	res, err = p.Enrich(ctx, camera0(t, f.repo), entity.EnrichmentRequest{Assets: []entity.AssetType{entity.AssetImages}})
	require.NoError(t, err)
	assert.Equal(t, entity.AssetGenerated, statuses(res)[entity.AssetImages])
}

func TestPipelineSearchErrorsFailTheAsset(t *testing.T) {
	f := newPipelineFixture()
	f.google.err = &entity.ExternalServiceError{Service: "google", Op: "search", Err: errors.New("403")}
	p := f.pipeline(camera())

	res, err := p.Enrich(context.Background(), camera0(t, f.repo), entity.EnrichmentRequest{Assets: []entity.AssetType{entity.AssetImages, entity.AssetVideos}})
	require.NoError(t, err)
	st := statuses(res)
	assert.Equal(t, entity.AssetFailed, st[entity.AssetImages])
	assert.Equal(t, entity.AssetGenerated, st[entity.AssetVideos])
	assert.Equal(t, entity.StatePartialFailure, res.State)
}

func TestPipelineStoreFailure(t *testing.T) {
	f := newPipelineFixture()
	f.store.err = errors.New("disk full")
	p := f.pipeline(camera())

	res, err := p.Enrich(context.Background(), camera0(t, f.repo), entity.EnrichmentRequest{Assets: []entity.AssetType{entity.AssetImages}})
	require.NoError(t, err)
	img, _ := res.Result(entity.AssetImages)
	assert.Equal(t, entity.AssetFailed, img.Status)
	assert.Contains(t, img.Message, "disk full")
	assert.Len(t, f.google.queries, 1, "a storage failure stops the search")
}

func TestPipelineNoProvider(t *testing.T) {
	f := newPipelineFixture()
	f.google.enabled = false
	p := f.pipeline(camera())

	res, err := p.Enrich(context.Background(), camera0(t, f.repo), entity.EnrichmentRequest{Assets: []entity.AssetType{entity.AssetImages}})
	require.NoError(t, err)
	assert.Equal(t, entity.AssetSkipped, statuses(res)[entity.AssetImages])
}

func TestPipelineTemplateRunsAfterEverySearch(t *testing.T) {
	f := newPipelineFixture()
	f.google.results = map[string]string{"DS-2CD1123": "https://cdn.example.com/google.jpg"}
	f.template = imagesearch.NewURLTemplate("https://img.example.com/{reference}.jpg")
	p := f.pipeline(camera())

	res, err := p.Enrich(context.Background(), camera0(t, f.repo), entity.EnrichmentRequest{Assets: []entity.AssetType{entity.AssetImages}})
	require.NoError(t, err)

	img, _ := res.Result(entity.AssetImages)
	assert.Equal(t, entity.AssetGenerated, img.Status)
	assert.Equal(t, "google: https://cdn.example.com/google.jpg", img.Message)
	assert.Equal(t, []string{"Hikvision DS-2CD1123", "DS-2CD1123"}, f.google.queries)
	assert.Equal(t, []string{"https://cdn.example.com/google.jpg"}, f.fetcher.fetched)
}

func TestPipelineTemplateFallback(t *testing.T) {
	f := newPipelineFixture()
	f.google.results = nil
	f.template = imagesearch.NewURLTemplate("https://img.example.com/{brand}/{reference}.jpg")
	p := f.pipeline(camera())

	res, err := p.Enrich(context.Background(), camera0(t, f.repo), entity.EnrichmentRequest{Assets: []entity.AssetType{entity.AssetImages}})
	require.NoError(t, err)

	img, _ := res.Result(entity.AssetImages)
	assert.Equal(t, entity.AssetGenerated, img.Status)
	assert.Equal(t, "template: https://img.example.com/Hikvision/DS-2CD1123.jpg", img.Message)
	assert.Len(t, f.google.queries, 3, "every query is searched first")
	assert.Equal(t, []string{"https://img.example.com/Hikvision/DS-2CD1123.jpg"}, f.fetcher.fetched)
	assert.Equal(t, "products/DS-2CD1123.jpg", camera0(t, f.repo).ImageRef)

	// the template alone is enough to run the image step
	f = newPipelineFixture()
	f.google.enabled = false
	f.template = imagesearch.NewURLTemplate("https://img.example.com/{sku}.jpg")
	p = f.pipeline(camera())
	res, err = p.Enrich(context.Background(), camera0(t, f.repo), entity.EnrichmentRequest{Assets: []entity.AssetType{entity.AssetImages}})
	require.NoError(t, err)
	assert.Equal(t, entity.AssetGenerated, statuses(res)[entity.AssetImages])
	assert.Empty(t, f.google.queries)

	// a rejected template image leaves the asset not found
	f = newPipelineFixture()
	f.google.results = nil
	f.validator.reject = []string{"img.example.com"}
	f.template = imagesearch.NewURLTemplate("https://img.example.com/{sku}.jpg")
	p = f.pipeline(camera())
	res, err = p.Enrich(context.Background(), camera0(t, f.repo), entity.EnrichmentRequest{Assets: []entity.AssetType{entity.AssetImages}})
	require.NoError(t, err)
	img, _ = res.Result(entity.AssetImages)
	assert.Equal(t, entity.AssetNotFound, img.Status)
	assert.Equal(t, "1 candidates rejected", img.Message)
}

func allExternalCallsFail(f *pipelineFixture) {
	down := &entity.ExternalServiceError{Service: "gemini", Op: "generate", Err: errors.New("503")}
	f.text.fail = map[string]error{descKey: down, techKey: down, blogKey: down}
	f.google.err = &entity.ExternalServiceError{Service: "google", Op: "search", Err: errors.New("403")}
	f.serper = &fakeProvider{name: "serper", enabled: true, err: &entity.ExternalServiceError{Service: "serper", Op: "search", Err: errors.New("timeout")}}
}

var textAndImages = []entity.AssetType{entity.AssetDescription, entity.AssetTechSheet, entity.AssetBlog, entity.AssetImages}

func TestPipelineAllExternalCallsFail(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture()
	allExternalCallsFail(f)
	p := f.pipeline(camera())
	before := camera0(t, f.repo)

	res, err := p.Enrich(ctx, before, entity.EnrichmentRequest{Assets: textAndImages})
	require.NoError(t, err)

	assert.Equal(t, entity.StatePartialFailure, res.State)
	assert.False(t, res.Changed)
	assert.Equal(t, 4, res.Count(entity.AssetFailed))
	assert.Zero(t, res.Count(entity.AssetGenerated))
	assert.Equal(t, before, camera0(t, f.repo))
	assert.Empty(t, f.fetcher.fetched)
}

func TestRunBatchKeepsGoingWhenEverythingFails(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture()
	allExternalCallsFail(f)
	other := camera()
	other.SKU, other.ManufacturerReference, other.Name = "SW-08", "TL-SG108", "Switch 8 ports"
	p := f.pipeline(camera(), other)
	jobs := storage.NewMemoryJobRepository()

	summary, err := NewAssetUseCase(f.repo, jobs, p, nil, nil).RunBatch(ctx, BatchRequest{Inline: true, Assets: textAndImages})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Selected)
	assert.Equal(t, 2, summary.Partial)
	assert.Zero(t, summary.Failed)
	require.Len(t, summary.Items, 2)
	for _, item := range summary.Items {
		assert.NoError(t, item.Err)
		require.NotNil(t, item.Result)
		assert.Equal(t, entity.StatePartialFailure, item.Result.State)

		job, err := jobs.GetJob(ctx, item.JobID)
		require.NoError(t, err)
		assert.Equal(t, entity.JobFailed, job.Status)
		assert.Equal(t, "partial failure: description, techsheet, blog, images", job.Message)
	}
}

// cancelAfterText cancels the run once the first answer is produced
type cancelAfterText struct {
	*fakeText
	cancel context.CancelFunc
}

func (c *cancelAfterText) Generate(ctx context.Context, prompt string) (string, error) {
	defer c.cancel()
	return c.fakeText.Generate(ctx, prompt)
}

func TestPipelineCancelledKeepsGeneratedText(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := newPipelineFixture()
	p := f.pipeline(camera())
	p.deps.Text = &cancelAfterText{fakeText: f.text, cancel: cancel}

	res, err := p.Enrich(ctx, camera0(t, f.repo), entity.EnrichmentRequest{
		Assets: []entity.AssetType{entity.AssetDescription, entity.AssetTechSheet},
	})
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.True(t, res.Changed)
	assert.Equal(t, entity.AssetGenerated, statuses(res)[entity.AssetDescription])
	assert.NotContains(t, statuses(res), entity.AssetTechSheet)

	saved := camera0(t, f.repo)
	assert.Equal(t, "Caméra dôme 2MP pour la surveillance intérieure.", saved.ShortDescription)
	assert.Empty(t, saved.TechSpecs)
	assert.Len(t, f.text.prompts, 1)
}

func TestParseDescription(t *testing.T) {
	short, long := parseDescription(`{"short_description": "", "long_description": "Caméra 2.8mm robuste. Installation facile."}`)
	assert.Equal(t, "Caméra 2.8mm robuste.", short)
	assert.Equal(t, "Caméra 2.8mm robuste. Installation facile.", long)

	short, long = parseDescription("Une caméra fiable. Elle filme en 2MP.")
	assert.Equal(t, "Une caméra fiable.", short)
	assert.Equal(t, "Une caméra fiable. Elle filme en 2MP.", long)
}

func TestSummarize(t *testing.T) {
	text := strings.Repeat("surveillance ", 30)
	got := summarize(text, shortDescriptionMax)
	assert.LessOrEqual(t, utf8.RuneCountInString(got), shortDescriptionMax)
	assert.True(t, strings.HasSuffix(got, "surveillance…"), got)
}

func TestParseSpecs(t *testing.T) {
	assert.Nil(t, parseSpecs("pas de JSON"))
	assert.Nil(t, parseSpecs(`{"specs": "n/a"}`))
	assert.Equal(t, []entity.Spec{{Label: "Poids", Value: "1 kg"}}, parseSpecs("```json\n{\"specs\":[{\"label\":\" Poids \",\"value\":\"1 kg\"}]}\n```"))
}

func TestImageQueries(t *testing.T) {
	assert.Equal(t, []string{
		"Hikvision DS-2CD1123",
		"DS-2CD1123",
		"Hikvision Caméra dôme 2MP",
		"Caméra dôme 2MP",
		"CAM-01",
		"Caméra dôme 2MP Caméras",
	}, ImageQueries(camera(), 0))
	assert.Len(t, ImageQueries(camera(), 2), 2)

	assert.Equal(t, []string{"Onduleur"}, ImageQueries(entity.Product{Name: "Onduleur", SKU: "onduleur"}, 0))
	assert.Empty(t, ImageQueries(entity.Product{}, 3))
}

func TestIsPlaceholderURL(t *testing.T) {
	domains := []string{"placehold.co", "via.placeholder.com"}
	assert.True(t, IsPlaceholderURL("https://placehold.co/600x400", domains))
	assert.True(t, IsPlaceholderURL("https://img.placehold.co/a.png", domains))
	assert.False(t, IsPlaceholderURL("https://notplacehold.co/a.png", domains))
	assert.False(t, IsPlaceholderURL("https://cdn.example.com/a.png", domains))
}
