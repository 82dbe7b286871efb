package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/yourusername/stock-backoffice/internal/domain/entity"
	"github.com/yourusername/stock-backoffice/internal/infrastructure/queue"
	"github.com/yourusername/stock-backoffice/internal/usecase"
	"go.uber.org/zap"
)

type assetOptions struct {
	limit       int
	assets      string
	forceDesc   bool
	forceImage  bool
	forceTech   bool
	forceVideos bool
	forceBlog   bool
	inline      bool
	dryRun      bool
}

// request forced assets are added to the asset list
func (o assetOptions) request() (usecase.BatchRequest, error) {
	assets, err := entity.ParseAssetTypes(o.assets)
	if err != nil {
		return usecase.BatchRequest{}, err
	}

	force := make(map[entity.AssetType]bool)
	for asset, on := range map[entity.AssetType]bool{
		entity.AssetDescription: o.forceDesc,
		entity.AssetImages:      o.forceImage,
		entity.AssetTechSheet:   o.forceTech,
		entity.AssetVideos:      o.forceVideos,
		entity.AssetBlog:        o.forceBlog,
	} {
		if on {
			force[asset] = true
		}
	}
	for _, asset := range entity.AllAssets {
		if force[asset] && !(entity.EnrichmentRequest{Assets: assets}).Wants(asset) {
			assets = append(assets, asset)
		}
	}

	return usecase.BatchRequest{
		Limit:  o.limit,
		Assets: assets,
		Force:  force,
		Inline: o.inline,
		DryRun: o.dryRun,
	}, nil
}

func newAssetsCmd(a *app) *cobra.Command {
	var opts assetOptions

	cmd := &cobra.Command{
		Use:   "product-asset-bot",
		Short: "Generate missing descriptions, images and other product assets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer a.close()

			if !cmd.Flags().Changed("inline") {
				opts.inline = a.cfg.Execution.InlineRun
			}
			req, err := opts.request()
			if err != nil {
				return err
			}

			uc, err := a.assetUseCase(cmd.Context(), !req.Inline && !req.DryRun)
			if err != nil {
				return err
			}
			summary, err := uc.RunBatch(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.report(cmd.Context(), formatBatchSummary(summary))
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.limit, "limit", 20, "Maximum number of products to process (0 for all)")
	f.StringVar(&opts.assets, "assets", "", "Comma separated assets: description,techsheet,images,videos,blog")
	f.BoolVar(&opts.forceDesc, "force-description", false, "Regenerate descriptions even when present")
	f.BoolVar(&opts.forceImage, "force-image", false, "Search a new image even when one is set")
	f.BoolVar(&opts.forceTech, "force-techsheet", false, "Regenerate the technical sheet")
	f.BoolVar(&opts.forceVideos, "force-videos", false, "Rebuild video links")
	f.BoolVar(&opts.forceBlog, "force-blog", false, "Regenerate the blog article")
	f.BoolVar(&opts.inline, "inline", false, "Run in this process instead of queueing (default from PRODUCT_BOT_INLINE_RUN)")
	f.BoolVar(&opts.dryRun, "dry-run", false, "Only list the products that would be processed")
	return cmd
}

func newWorkerCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume queued product asset jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer a.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			uc, err := a.assetUseCase(ctx, false)
			if err != nil {
				return err
			}
			exec := a.cfg.Execution
			worker, err := queue.NewWorker(exec.RedisURL, exec.QueueName, exec.QueueConcurrency, uc, a.log.Named("worker"))
			if err != nil {
				return err
			}

			a.log.Info("worker started", zap.String("queue", exec.QueueName), zap.Int("concurrency", exec.QueueConcurrency))
			return worker.Run(ctx)
		},
	}
}
