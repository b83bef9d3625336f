package orders

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/epanel-tools/epanel/cmd/epanelctl/internal/config"
	"github.com/epanel-tools/epanel/pkg/authz"
	"github.com/epanel-tools/epanel/pkg/listquery"
	"github.com/epanel-tools/epanel/pkg/querycache"
	"github.com/epanel-tools/epanel/pkg/sdk"
)

var listPage int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List orders",
	RunE: func(cobraCmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cobraCmd.Context())

		sess, cli, err := cfg.ClientProvider.Require(authz.CapViewOrdersNav)
		if err != nil {
			return err
		}

		cache, err := querycache.New[sdk.CartPage]()
		if err != nil {
			return err
		}
		ctrl := listquery.New[sdk.CartPage]("carts", cache, cartFetcher{cli: cli}, sess,
			listquery.WithPage(listPage),
		)

		ctx, cancel := context.WithTimeout(cobraCmd.Context(), 10*time.Second)
		defer cancel()

		res, err := ctrl.GetWait(ctx)
		if err != nil {
			return fmt.Errorf("failed to list orders: %w", err)
		}
		if res.Status == querycache.Error {
			return fmt.Errorf("failed to list orders: %w", res.Err)
		}

		page := res.Value
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ORDER\tCUSTOMER\tITEMS\tTOTAL")
		for _, cart := range page.Carts {
			fmt.Fprintf(w, "#%d\t%d\t%d\t%.2f\n", cart.ID, cart.UserID, cart.TotalProducts, cart.Total)
		}
		w.Flush()

		state := ctrl.CurrentState()
		fmt.Printf("\nPage %d of %d (%d orders)\n", state.Page, state.TotalPages, page.Total)
		return nil
	},
}

func init() {
	listCmd.Flags().IntVar(&listPage, "page", 1, "Page number")
}
