package products

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/epanel-tools/epanel/cmd/epanelctl/internal/config"
	"github.com/epanel-tools/epanel/pkg/authz"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a single product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cobraCmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[0])
		}

		cfg := config.MustFromContext(cobraCmd.Context())
		_, cli, err := cfg.ClientProvider.Require(authz.CapViewProductsNav)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cobraCmd.Context(), 10*time.Second)
		defer cancel()

		product, err := cli.GetProduct(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get product %d: %w", id, err)
		}

		pterm.DefaultSection.Printf("Product #%d\n", product.ID)
		pterm.Info.Printf("Title: %s\n", product.Title)
		if product.Brand != "" {
			pterm.Info.Printf("Brand: %s\n", product.Brand)
		}
		pterm.Info.Printf("Price: %.2f\n", product.Price)
		pterm.Info.Printf("Stock: %d\n", product.Stock)
		if product.Description != "" {
			pterm.Info.Printf("Description: %s\n", product.Description)
		}
		return nil
	},
}
