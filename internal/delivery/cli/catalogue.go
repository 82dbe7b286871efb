package cli

import (
	"github.com/spf13/cobra"
	"github.com/yourusername/stock-backoffice/internal/domain/entity"
	"github.com/yourusername/stock-backoffice/internal/infrastructure/rules"
	"github.com/yourusername/stock-backoffice/internal/usecase"
	"go.uber.org/zap"
)

func newQualityCmd(a *app) *cobra.Command {
	var req usecase.QualityRequest

	cmd := &cobra.Command{
		Use:   "run-product-quality-agent",
		Short: "Score product pages and enrich the weak ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer a.close()

			productRepo, err := a.productRepo()
			if err != nil {
				return err
			}
			pipeline, err := a.pipeline(cmd.Context())
			if err != nil {
				return err
			}

			summary, err := usecase.NewQualityAgent(productRepo, pipeline, a.log).Run(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.report(cmd.Context(), formatQualitySummary(summary))
			return nil
		},
	}

	cmd.Flags().IntVar(&req.Threshold, "threshold", usecase.DefaultQualityThreshold, "Minimum acceptable score (0-100)")
	cmd.Flags().IntVar(&req.Limit, "limit", 50, "Maximum number of products to check (0 for all)")
	cmd.Flags().Int64Var(&req.ProductID, "product-id", 0, "Check a single product")
	return cmd
}

func newCategoriesCmd(a *app) *cobra.Command {
	var (
		req       usecase.CategoryRequest
		rulesPath string
	)

	cmd := &cobra.Command{
		Use:   "auto-assign-categories",
		Short: "Assign product categories from keyword and regex rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer a.close()

			var set *entity.RuleSet
			if rulesPath != "" {
				loaded, err := rules.LoadRuleSet(rulesPath)
				if err != nil {
					return err
				}
				a.log.Info("rule file loaded", zap.String("path", rulesPath), zap.String("rules", rules.Describe(loaded)))
				set = loaded
			}

			productRepo, err := a.productRepo()
			if err != nil {
				return err
			}
			var assigner usecase.CategoryAssigner
			if req.UseAI {
				text, err := a.textGenerator(cmd.Context())
				if err != nil {
					return err
				}
				assigner = usecase.NewCategoryAssigner(productRepo, text, a.log)
			} else {
				assigner = usecase.NewCategoryAssigner(productRepo, nil, a.log)
			}

			summary, err := assigner.Assign(cmd.Context(), set, req)
			if err != nil {
				return err
			}
			a.report(cmd.Context(), formatCategorySummary(summary))
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&req.All, "all", false, "Reclassify every product, not only unclassified ones")
	f.IntVar(&req.Limit, "limit", 0, "Maximum number of products to check (0 for all)")
	f.BoolVar(&req.DryRun, "dry-run", false, "Report changes without saving them")
	f.StringVar(&rulesPath, "rules", "", "JSON or YAML rule file (defaults to rules built from existing categories)")
	f.BoolVar(&req.UseAI, "ai", false, "Ask the text generator when no rule matches")
	return cmd
}
