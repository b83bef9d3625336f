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
	"github.com/epanel-tools/epanel/pkg/mutation"
	"github.com/epanel-tools/epanel/pkg/sdk"
)

var (
	updateTitle       string
	updateBrand       string
	updateDescription string
	updatePrice       float64
	updateStock       int
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a product",
	Long: `Updates a product. The current values are fetched first and shown so the
change can be reviewed; only fields given as flags are sent to the server.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cobraCmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[0])
		}

		cfg := config.MustFromContext(cobraCmd.Context())
		sess, cli, err := cfg.ClientProvider.Require(authz.CapManageProducts)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cobraCmd.Context(), 10*time.Second)
		defer cancel()

		// Pre-populate from the current state, as the edit form does.
		current, err := cli.GetProduct(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get product %d: %w", id, err)
		}
		pterm.Info.Printf("Editing #%d: %s (price %.2f, stock %d)\n",
			current.ID, current.Title, current.Price, current.Stock)

		payload := map[string]any{}
		flags := cobraCmd.Flags()
		if flags.Changed("title") {
			payload["title"] = updateTitle
		}
		if flags.Changed("brand") {
			payload["brand"] = updateBrand
		}
		if flags.Changed("description") {
			payload["description"] = updateDescription
		}
		if flags.Changed("price") {
			payload["price"] = updatePrice
		}
		if flags.Changed("stock") {
			payload["stock"] = updateStock
		}
		if len(payload) == 0 {
			return fmt.Errorf("nothing to update: pass at least one of --title, --brand, --description, --price, --stock")
		}

		coordinator := mutation.NewCoordinator(cli, sess)
		var updated sdk.Product
		if err := coordinator.Update(ctx, "products", id, payload, &updated); err != nil {
			return err
		}

		pterm.Success.Printf("Product #%d updated: %s\n", updated.ID, updated.Title)
		return nil
	},
}

func init() {
	updateCmd.Flags().StringVar(&updateTitle, "title", "", "Product title")
	updateCmd.Flags().StringVar(&updateBrand, "brand", "", "Product brand")
	updateCmd.Flags().StringVar(&updateDescription, "description", "", "Product description")
	updateCmd.Flags().Float64Var(&updatePrice, "price", 0, "Product price")
	updateCmd.Flags().IntVar(&updateStock, "stock", 0, "Units in stock")
}
