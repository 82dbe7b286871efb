package usecase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/yourusername/stock-backoffice/internal/domain/entity"
	"github.com/yourusername/stock-backoffice/internal/domain/repository"
	"go.uber.org/zap"
)

// DefaultQualityThreshold score below which the agent enriches a product
const DefaultQualityThreshold = 70

// QualityRequest run-product-quality-agent options
type QualityRequest struct {
	// Threshold minimum acceptable score 0-100; 0 accepts every product
	Threshold int
	// Limit first N products by ID, 0 for all
	Limit int
	// ProductID checks a single product when set
	ProductID int64
}

// QualityItem outcome for one product
type QualityItem struct {
	Product entity.Product
	Before  entity.QualityReport
	After   entity.QualityReport
	Status  entity.QualityStatus
	Request entity.EnrichmentRequest
	Result  *entity.EnrichmentResult
	Err     error
}

// QualitySummary outcome of one agent run
type QualitySummary struct {
	Threshold int
	Checked   int
	OK        int
	Improved  int
	NoChange  int
	Errors    int
	Items     []QualityItem
}

// QualityAgent scores products and enriches the weak ones
type QualityAgent interface {
	Run(ctx context.Context, req QualityRequest) (*QualitySummary, error)
}

type qualityAgent struct {
	productRepo repository.ProductRepository
	enricher    ProductEnricher
	log         *zap.Logger
}

// NewQualityAgent creates the quality agent
func NewQualityAgent(productRepo repository.ProductRepository, enricher ProductEnricher, log *zap.Logger) QualityAgent {
	if log == nil {
		log = zap.NewNop()
	}
	return &qualityAgent{productRepo: productRepo, enricher: enricher, log: log}
}

// Run re-scores each enriched product once
func (a *qualityAgent) Run(ctx context.Context, req QualityRequest) (*QualitySummary, error) {
	if req.Threshold < 0 || req.Threshold > 100 {
		return nil, &entity.InvalidArgumentError{Field: "threshold", Value: strconv.Itoa(req.Threshold)}
	}

	products, err := a.selectProducts(ctx, req)
	if err != nil {
		return nil, err
	}

	summary := &QualitySummary{Threshold: req.Threshold}
	for _, product := range products {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		item := a.check(ctx, product, req.Threshold)
		summary.Checked++
		switch item.Status {
		case entity.QualityOK:
			summary.OK++
		case entity.QualityImproved:
			summary.Improved++
		case entity.QualityLowScoreNoChange:
			summary.NoChange++
		default:
			summary.Errors++
		}
		summary.Items = append(summary.Items, item)
	}

	a.log.Info("quality agent finished",
		zap.Int("checked", summary.Checked),
		zap.Int("ok", summary.OK),
		zap.Int("improved", summary.Improved),
		zap.Int("no_change", summary.NoChange),
		zap.Int("errors", summary.Errors),
	)
	return summary, nil
}

func (a *qualityAgent) selectProducts(ctx context.Context, req QualityRequest) ([]entity.Product, error) {
	if req.ProductID != 0 {
		product, err := a.productRepo.GetByID(ctx, req.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to load product %d: %w", req.ProductID, err)
		}
		return []entity.Product{*product}, nil
	}
	products, err := a.productRepo.GetAll(ctx, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	return products, nil
}

func (a *qualityAgent) check(ctx context.Context, product entity.Product, threshold int) QualityItem {
	item := QualityItem{Product: product, Before: ScoreProduct(product)}
	item.After = item.Before
	log := a.log.With(zap.Int64("product_id", product.ID), zap.Int("score", item.Before.Score))

	if item.Before.Score >= threshold {
		item.Status = entity.QualityOK
		return item
	}

	item.Request = PlanEnrichment(product, item.Before)
	if len(item.Request.Assets) == 0 {
		item.Status = entity.QualityLowScoreNoChange
		log.Info("low score, nothing to generate", zap.Strings("issues", item.Before.Issues()))
		return item
	}

	result, err := a.enricher.Enrich(ctx, product, item.Request)
	item.Result = result
	if err != nil {
		item.Status = entity.QualityError
		item.Err = err
		log.Error("enrichment failed", zap.Error(err))
		return item
	}

	item.After = ScoreProduct(result.Product)
	if item.After.Score > item.Before.Score {
		item.Status = entity.QualityImproved
	} else {
		item.Status = entity.QualityLowScoreNoChange
	}
	log.Info("product rescored", zap.Int("new_score", item.After.Score), zap.String("status", string(item.Status)))
	return item
}

// PlanEnrichment maps deficient criteria to assets; only weak assets that already exist are forced
func PlanEnrichment(p entity.Product, report entity.QualityReport) entity.EnrichmentRequest {
	req := entity.EnrichmentRequest{Force: make(map[entity.AssetType]bool)}
	want := func(asset entity.AssetType, force bool) {
		if !req.Wants(asset) {
			req.Assets = append(req.Assets, asset)
		}
		if force {
			req.Force[asset] = true
		}
	}

	for _, c := range report.Criteria {
		if c.Full() {
			continue
		}
		switch c.Criterion {
		case entity.CriterionShortDescription:
			want(entity.AssetDescription, p.ShortDescription != "")
		case entity.CriterionLongDescription:
			want(entity.AssetDescription, p.LongDescription != "")
		case entity.CriterionTechSheet:
			want(entity.AssetTechSheet, len(p.TechSpecs) > 0)
		case entity.CriterionImage:
			want(entity.AssetImages, p.ImageRef != "")
		case entity.CriterionAncillary:
			if len(p.Videos) == 0 {
				want(entity.AssetVideos, false)
			}
			if p.BlogDraft == "" {
				want(entity.AssetBlog, false)
			}
		}
	}
	return req
}
