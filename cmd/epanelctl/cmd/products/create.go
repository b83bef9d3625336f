package products

import (
	"context"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/epanel-tools/epanel/cmd/epanelctl/internal/config"
	"github.com/epanel-tools/epanel/pkg/authz"
	"github.com/epanel-tools/epanel/pkg/mutation"
	"github.com/epanel-tools/epanel/pkg/sdk"
)

var (
	createTitle       string
	createBrand       string
	createDescription string
	createPrice       float64
	createStock       int
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a product to the catalog",
	RunE: func(cobraCmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cobraCmd.Context())

		sess, cli, err := cfg.ClientProvider.Require(authz.CapManageProducts)
		if err != nil {
			return err
		}

		payload := sdk.Product{
			Title:       createTitle,
			Brand:       createBrand,
			Description: createDescription,
			Price:       createPrice,
			Stock:       createStock,
		}

		ctx, cancel := context.WithTimeout(cobraCmd.Context(), 10*time.Second)
		defer cancel()

		coordinator := mutation.NewCoordinator(cli, sess)
		var created sdk.Product
		if err := coordinator.Create(ctx, "products", payload, &created); err != nil {
			return err
		}

		pterm.Success.Printf("Product #%d created: %s\n", created.ID, created.Title)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createTitle, "title", "", "Product title")
	createCmd.Flags().StringVar(&createBrand, "brand", "", "Product brand")
	createCmd.Flags().StringVar(&createDescription, "description", "", "Product description")
	createCmd.Flags().Float64Var(&createPrice, "price", 0, "Product price")
	createCmd.Flags().IntVar(&createStock, "stock", 0, "Units in stock")
	_ = createCmd.MarkFlagRequired("title")
	_ = createCmd.MarkFlagRequired("price")
}
