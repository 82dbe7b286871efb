// Package cli exposes the back office batch commands
package cli

import (
	"github.com/spf13/cobra"
	"github.com/yourusername/stock-backoffice/config"
	"github.com/yourusername/stock-backoffice/internal/infrastructure/logging"
)

// NewRootCmd builds the backoffice command tree
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "backoffice",
		Short:        "Stock and catalogue maintenance commands",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.AppEnv, cfg.LogLevel)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = log.Named(cmd.Name())
			a.out = cmd.OutOrStdout()
			return nil
		},
	}

	root.AddCommand(
		newCostsCmd(a),
		newCustomersCmd(a),
		newAssetsCmd(a),
		newQualityCmd(a),
		newCategoriesCmd(a),
		newWorkerCmd(a),
	)
	return root
}
