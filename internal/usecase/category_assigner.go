package usecase

import (
	"context"
	"fmt"

	"github.com/yourusername/stock-backoffice/internal/domain/entity"
	"github.com/yourusername/stock-backoffice/internal/domain/repository"
	"github.com/yourusername/stock-backoffice/internal/normalize"
	"go.uber.org/zap"
)

// CategorySource how a category was chosen
type CategorySource string

const (
	SourceRule    CategorySource = "rule"
	SourceAI      CategorySource = "ai"
	SourceDefault CategorySource = "default"
)

// CategoryRequest auto-assign-categories options
type CategoryRequest struct {
	// All reclassifies every product, not only unclassified ones
	All    bool
	Limit  int
	DryRun bool
	// UseAI asks the text generator when no rule matches
	UseAI bool
}

// CategoryItem outcome for one product
type CategoryItem struct {
	Product entity.Product
	From    string
	To      string
	Source  CategorySource
	Changed bool
	Err     error
}

// CategorySummary outcome of one assignment run
type CategorySummary struct {
	Checked   int
	Assigned  int
	Defaulted int
	Unchanged int
	Failed    int
	DryRun    bool
	Items     []CategoryItem
}

// CategoryAssigner rule based category assignment
type CategoryAssigner interface {
	// Assign uses DefaultRuleSet over existing categories when set is nil
	Assign(ctx context.Context, set *entity.RuleSet, req CategoryRequest) (*CategorySummary, error)
}

type categoryAssigner struct {
	productRepo repository.ProductRepository
	text        repository.TextGenerator
	log         *zap.Logger
}

// NewCategoryAssigner text may be nil, which disables AI fallback
func NewCategoryAssigner(productRepo repository.ProductRepository, text repository.TextGenerator, log *zap.Logger) CategoryAssigner {
	if log == nil {
		log = zap.NewNop()
	}
	return &categoryAssigner{productRepo: productRepo, text: text, log: log}
}

// Assign rules are compiled before any product is touched; products are saved one by one
func (a *categoryAssigner) Assign(ctx context.Context, set *entity.RuleSet, req CategoryRequest) (*CategorySummary, error) {
	known, err := a.productRepo.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	var ruleSet entity.RuleSet
	if set != nil {
		ruleSet = *set
	} else {
		ruleSet = DefaultRuleSet(known)
		a.log.Info("no rule file, using catalogue categories", zap.Int("rules", len(ruleSet.Rules)))
	}
	engine, err := CompileRules(ruleSet)
	if err != nil {
		return nil, err
	}
	candidates := aiCandidates(engine, known)

	products, err := a.productRepo.GetAll(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	summary := &CategorySummary{DryRun: req.DryRun}
	for _, product := range products {
		if req.Limit > 0 && summary.Checked >= req.Limit {
			break
		}
		if !req.All && !IsUnclassified(product.Category, engine.DefaultCategory()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Checked++

		item := CategoryItem{Product: product, From: product.Category, Source: SourceRule}
		category, matched := engine.Classify(product)
		if !matched {
			item.Source = SourceDefault
			if req.UseAI {
				if picked := a.askAI(ctx, product, candidates); picked != "" {
					category, item.Source = picked, SourceAI
				}
			}
		}
		item.To = category

		switch {
		case category == product.Category:
			summary.Unchanged++
		case req.DryRun:
			item.Changed = true
			a.count(summary, item.Source)
		default:
			product.Category = category
			if err := a.productRepo.SaveProduct(ctx, &product); err != nil {
				item.Err = err
				summary.Failed++
				a.log.Error("save failed", zap.Int64("product_id", product.ID), zap.Error(err))
				break
			}
			item.Changed = true
			a.count(summary, item.Source)
		}
		summary.Items = append(summary.Items, item)
	}

	a.log.Info("category assignment finished",
		zap.Bool("dry_run", req.DryRun),
		zap.Int("checked", summary.Checked),
		zap.Int("assigned", summary.Assigned),
		zap.Int("defaulted", summary.Defaulted),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

func (a *categoryAssigner) count(summary *CategorySummary, source CategorySource) {
	if source == SourceDefault {
		summary.Defaulted++
		return
	}
	summary.Assigned++
}

// askAI returns "" when the answer is not one of the candidates
func (a *categoryAssigner) askAI(ctx context.Context, product entity.Product, candidates []string) string {
	if a.text == nil || len(candidates) == 0 {
		return ""
	}
	answer, err := a.text.Generate(ctx, categoryPrompt(product, candidates))
	if err != nil {
		a.log.Warn("category suggestion failed", zap.Int64("product_id", product.ID), zap.Error(err))
		return ""
	}
	want := normalize.Fold(answer)
	for _, c := range candidates {
		if normalize.Fold(c) == want {
			return c
		}
	}
	a.log.Debug("category suggestion ignored", zap.Int64("product_id", product.ID), zap.String("answer", answer))
	return ""
}

// aiCandidates rule categories then catalogue categories, without unclassified values
func aiCandidates(engine *RuleEngine, known []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range append(engine.Categories(), known...) {
		folded := normalize.Fold(c)
		if seen[folded] || IsUnclassified(c, engine.DefaultCategory()) {
			continue
		}
		seen[folded] = true
		out = append(out, c)
	}
	return out
}
