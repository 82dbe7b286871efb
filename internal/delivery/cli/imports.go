package cli

import (
	"github.com/spf13/cobra"
	"github.com/yourusername/stock-backoffice/internal/domain/entity"
	"github.com/yourusername/stock-backoffice/internal/infrastructure/storage"
	"github.com/yourusername/stock-backoffice/internal/usecase"
)

func newCostsCmd(a *app) *cobra.Command {
	var (
		sheet      string
		refColumn  string
		costColumn string
		matchField string
	)

	cmd := &cobra.Command{
		Use:   "update-product-costs <file>",
		Short: "Update product purchase costs from a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()

			field, err := entity.ParseMatchField(matchField)
			if err != nil {
				return err
			}
			productRepo, err := a.productRepo()
			if err != nil {
				return err
			}

			summary, err := usecase.NewCostUseCase(a.sheets(), productRepo, a.log).UpdateCosts(cmd.Context(), usecase.CostUpdateRequest{
				FilePath:        args[0],
				Sheet:           sheet,
				ReferenceColumn: refColumn,
				CostColumn:      costColumn,
				MatchField:      field,
			})
			if err != nil {
				return err
			}
			a.report(cmd.Context(), formatCostSummary(args[0], summary))
			return nil
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet name (first sheet when empty)")
	cmd.Flags().StringVar(&refColumn, "reference-column", "", "Reference column: header, letter or 1-based index")
	cmd.Flags().StringVar(&costColumn, "cost-column", "", "Cost column: header, letter or 1-based index")
	cmd.Flags().StringVar(&matchField, "match-field", string(entity.MatchManufacturerReference), "Product field matched against the reference: sku|manufacturer_reference|name")
	return cmd
}

func newCustomersCmd(a *app) *cobra.Command {
	var sheet string

	cmd := &cobra.Command{
		Use:   "import-customers <file>",
		Short: "Create or update customers from a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()

			db, err := a.database()
			if err != nil {
				return err
			}
			uc := usecase.NewCustomerUseCase(a.sheets(), storage.NewSQLiteCustomerRepository(db), a.cfg.PhoneRegion, a.log)

			summary, err := uc.ImportCustomers(cmd.Context(), usecase.CustomerImportRequest{FilePath: args[0], Sheet: sheet})
			if err != nil {
				return err
			}
			a.report(cmd.Context(), formatCustomerSummary(args[0], summary))
			return nil
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet name (first sheet when empty)")
	return cmd
}
