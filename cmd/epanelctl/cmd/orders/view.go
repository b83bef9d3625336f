package orders

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/epanel-tools/epanel/cmd/epanelctl/internal/config"
	"github.com/epanel-tools/epanel/pkg/authz"
)

var viewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show one order with its line items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cobraCmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid order id %q", args[0])
		}

		cfg := config.MustFromContext(cobraCmd.Context())
		_, cli, err := cfg.ClientProvider.Require(authz.CapViewOrdersNav)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cobraCmd.Context(), 10*time.Second)
		defer cancel()

		cart, err := cli.GetCart(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get order %d: %w", id, err)
		}

		pterm.DefaultSection.Printf("Order #%d (customer %d)\n", cart.ID, cart.UserID)
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PRODUCT\tQTY\tTOTAL")
		for _, item := range cart.Products {
			fmt.Fprintf(w, "%s\t%d\t%.2f\n", item.Title, item.Quantity, item.Total)
		}
		w.Flush()
		fmt.Printf("\nTotal: %.2f\n", cart.Total)
		return nil
	},
}
