package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/yourusername/stock-backoffice/config"
	"github.com/yourusername/stock-backoffice/internal/delivery/telegram"
	"github.com/yourusername/stock-backoffice/internal/domain/repository"
	"github.com/yourusername/stock-backoffice/internal/infrastructure/gemini"
	"github.com/yourusername/stock-backoffice/internal/infrastructure/imagecheck"
	"github.com/yourusername/stock-backoffice/internal/infrastructure/imagesearch"
	"github.com/yourusername/stock-backoffice/internal/infrastructure/mediastore"
	"github.com/yourusername/stock-backoffice/internal/infrastructure/mistral"
	"github.com/yourusername/stock-backoffice/internal/infrastructure/parser"
	"github.com/yourusername/stock-backoffice/internal/infrastructure/queue"
	"github.com/yourusername/stock-backoffice/internal/infrastructure/quota"
	"github.com/yourusername/stock-backoffice/internal/infrastructure/storage"
	"github.com/yourusername/stock-backoffice/internal/usecase"
	"go.uber.org/zap"
)

// app lazily wires the components a command needs
type app struct {
	cfg *config.Config
	log *zap.Logger
	out io.Writer

	db      *sql.DB
	gemini  *gemini.Client
	closers []func() error
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close failed", zap.Error(err))
		}
	}
	a.closers = nil
	_ = a.log.Sync()
}

func (a *app) database() (*sql.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := storage.OpenSQLite(a.cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	a.db = db
	a.closers = append(a.closers, db.Close)
	return db, nil
}

func (a *app) productRepo() (repository.ProductRepository, error) {
	db, err := a.database()
	if err != nil {
		return nil, err
	}
	return storage.NewSQLiteProductRepository(db), nil
}

func (a *app) sheets() repository.SheetReader {
	return parser.NewExcelParser(a.log.Named("parser"))
}

func (a *app) geminiClient(ctx context.Context) (*gemini.Client, error) {
	if a.gemini != nil {
		return a.gemini, nil
	}
	t := a.cfg.Text
	client, err := gemini.NewGeminiClient(ctx, t.GeminiAPIKey, t.GeminiModel, t.RatePerMinute)
	if err != nil {
		return nil, err
	}
	a.gemini = client
	a.closers = append(a.closers, client.Close)
	return client, nil
}

// textGenerator returns nil when no provider key is configured
func (a *app) textGenerator(ctx context.Context) (repository.TextGenerator, error) {
	t := a.cfg.Text
	provider := t.Provider
	if provider == "" {
		switch {
		case t.GeminiAPIKey != "":
			provider = "gemini"
		case t.MistralAPIKey != "":
			provider = "mistral"
		default:
			a.log.Warn("no text provider configured, text assets will be skipped")
			return nil, nil
		}
	}

	switch provider {
	case "gemini":
		if t.GeminiAPIKey == "" {
			return nil, fmt.Errorf("TEXT_PROVIDER is gemini but GEMINI_API_KEY is empty")
		}
		client, err := a.geminiClient(ctx)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		client, err := mistral.NewClient(mistral.Config{
			APIKey:        t.MistralAPIKey,
			Model:         t.MistralModel,
			AgentID:       t.MistralAgent,
			RatePerMinute: t.RatePerMinute,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

func (a *app) imageProviders(ctx context.Context) ([]repository.ImageSearchProvider, error) {
	s := a.cfg.ImageSearch
	google, err := imagesearch.NewGoogleProvider(ctx, imagesearch.GoogleConfig{
		Enabled:    s.GoogleEnabled,
		APIKey:     s.GoogleAPIKey,
		EngineID:   s.GoogleEngineID,
		Safe:       s.GoogleSafe,
		DailyLimit: s.GoogleDailyLimit,
	})
	if err != nil {
		return nil, err
	}
	serper := imagesearch.NewSerperProvider(imagesearch.SerperConfig{
		Enabled:    s.SerperEnabled,
		APIKey:     s.SerperAPIKey,
		Endpoint:   s.SerperEndpoint,
		DailyLimit: s.SerperDailyLimit,
		Timeout:    s.Timeout,
	})
	return []repository.ImageSearchProvider{google, serper}, nil
}

func (a *app) quotaTracker() (repository.QuotaTracker, error) {
	if url := a.cfg.Execution.RedisURL; url != "" {
		tracker, err := quota.NewRedisTracker(url)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, tracker.Close)
		return tracker, nil
	}
	db, err := a.database()
	if err != nil {
		return nil, err
	}
	return storage.NewSQLiteQuotaTracker(db), nil
}

func (a *app) imageValidator(ctx context.Context) (repository.ImageValidator, error) {
	v := a.cfg.ImageValidation
	validators := []repository.ImageValidator{
		imagecheck.SizeValidator{MinWidth: v.MinWidth, MinHeight: v.MinHeight, MinBytes: v.MinBytes},
		imagecheck.VarianceValidator{MinStdDev: v.MinStdDev},
	}
	if v.OCREnabled {
		if a.cfg.Text.GeminiAPIKey == "" {
			a.log.Warn("image recognition needs GEMINI_API_KEY, skipping it")
		} else {
			client, err := a.geminiClient(ctx)
			if err != nil {
				return nil, err
			}
			validators = append(validators, imagecheck.RecognitionValidator{Analyzer: client, MinConfidence: v.OCRMinConfidence})
		}
	}
	return imagecheck.NewChain(validators...), nil
}

func (a *app) imageStore(ctx context.Context) (repository.ImageStore, error) {
	s := a.cfg.Storage
	if !s.MinIOEnabled() {
		return mediastore.NewLocalStore(s.MediaRoot), nil
	}
	store, err := mediastore.NewMinIOStore(mediastore.MinIOConfig{
		Endpoint:  s.MinIOEndpoint,
		AccessKey: s.MinIOAccessKey,
		SecretKey: s.MinIOSecretKey,
		UseSSL:    s.MinIOUseSSL,
		Bucket:    s.MinIOBucket,
	})
	if err != nil {
		return nil, err
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (a *app) pipeline(ctx context.Context) (*usecase.Pipeline, error) {
	productRepo, err := a.productRepo()
	if err != nil {
		return nil, err
	}
	text, err := a.textGenerator(ctx)
	if err != nil {
		return nil, err
	}
	providers, err := a.imageProviders(ctx)
	if err != nil {
		return nil, err
	}
	tracker, err := a.quotaTracker()
	if err != nil {
		return nil, err
	}
	validator, err := a.imageValidator(ctx)
	if err != nil {
		return nil, err
	}
	store, err := a.imageStore(ctx)
	if err != nil {
		return nil, err
	}

	deps := usecase.PipelineDeps{
		Text:        text,
		Providers:   providers,
		Template:    imagesearch.NewURLTemplate(a.cfg.ImageSearch.URLTemplate),
		Quota:       tracker,
		Fetcher:     imagesearch.NewHTTPFetcher(a.cfg.ImageSearch.Timeout),
		Validator:   validator,
		Store:       store,
		ProductRepo: productRepo,
	}
	cfg := usecase.PipelineConfig{
		MaxTries:           a.cfg.ImageSearch.MaxTries,
		AllowPlaceholders:  a.cfg.ImageValidation.AllowPlaceholders,
		PlaceholderDomains: a.cfg.ImageValidation.PlaceholderDomains,
	}
	return usecase.NewPipeline(deps, cfg, a.log.Named("pipeline")), nil
}

// assetUseCase withQueue connects the asynq client; REDIS_URL is then required
func (a *app) assetUseCase(ctx context.Context, withQueue bool) (usecase.AssetUseCase, error) {
	pipeline, err := a.pipeline(ctx)
	if err != nil {
		return nil, err
	}
	db, err := a.database()
	if err != nil {
		return nil, err
	}

	var tasks repository.AssetTaskQueue
	if withQueue {
		client, err := queue.NewClient(a.cfg.Execution.RedisURL, a.cfg.Execution.QueueName)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		tasks = client
	}

	return usecase.NewAssetUseCase(
		storage.NewSQLiteProductRepository(db),
		storage.NewSQLiteJobRepository(db),
		pipeline,
		tasks,
		a.log.Named("assets"),
	), nil
}

// report prints the summary and forwards it to Telegram when configured
func (a *app) report(ctx context.Context, text string) {
	fmt.Fprintln(a.out, text)

	tg := a.cfg.Telegram
	if !tg.Enabled() {
		return
	}
	notifier, err := telegram.NewNotifier(tg.BotToken, tg.ReportChatID)
	if err != nil {
		a.log.Warn("telegram notifier unavailable", zap.Error(err))
		return
	}
	if err := notifier.Notify(ctx, text); err != nil {
		a.log.Warn("failed to send report", zap.Error(err))
	}
}
