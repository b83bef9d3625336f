package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/epanel-tools/epanel/cmd/epanelctl/internal/config"
	"github.com/epanel-tools/epanel/pkg/authz"
	"github.com/epanel-tools/epanel/pkg/listquery"
	"github.com/epanel-tools/epanel/pkg/querycache"
	"github.com/epanel-tools/epanel/pkg/sdk"
	"github.com/epanel-tools/epanel/pkg/session"
)

// refreshInterval matches the panel's background refetch cadence for sales
// data.
const refreshInterval = 30 * time.Second

var watch bool

// DashboardCmd shows the sales KPIs.
var DashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show sales KPIs",
	Long: `Shows total revenue and order count. With --watch the figures refresh
every 30 seconds until interrupted.`,
	RunE: func(cobraCmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cobraCmd.Context())

		sess, cli, err := cfg.ClientProvider.Require(authz.CapViewSales)
		if err != nil {
			return err
		}

		cache, err := querycache.New[sdk.CartPage]()
		if err != nil {
			return err
		}
		ctrl := listquery.New[sdk.CartPage]("carts", cache, salesFetcher{cli: cli}, sess,
			listquery.WithPageSize(100),
		)

		ctx := cobraCmd.Context()
		if !watch {
			fetchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return renderOnce(fetchCtx, ctrl, sess)
		}

		// Keep the cache warm in the background; renders go through the
		// same de-duplication path and mostly hit fresh entries.
		go ctrl.Run(ctx, refreshInterval)

		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()
		for {
			if err := renderOnce(ctx, ctrl, sess); err != nil {
				return err
			}
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	},
}

// salesFetcher adapts sdk.Client to the controller's fetch interface. Sales
// data has no search endpoint.
type salesFetcher struct {
	cli *sdk.Client
}

func (f salesFetcher) List(ctx context.Context, p listquery.Params) (sdk.CartPage, error) {
	return f.cli.ListCarts(ctx, sdk.ListParams{Limit: p.Limit, Skip: p.Skip})
}

func (f salesFetcher) Search(ctx context.Context, query string, limit, skip int) (sdk.CartPage, error) {
	return sdk.CartPage{}, fmt.Errorf("sales data does not support search")
}

func renderOnce(ctx context.Context, ctrl *listquery.Controller[sdk.CartPage], sess *session.Store) error {
	res, err := ctrl.GetWait(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch sales data: %w", err)
	}
	if res.Status == querycache.Error {
		return fmt.Errorf("failed to fetch sales data: %w", res.Err)
	}

	page := res.Value
	revenue := 0.0
	for _, cart := range page.Carts {
		revenue += cart.Total
	}

	snap := sess.Current()
	pterm.DefaultSection.Printf("Dashboard - welcome, %s\n", snap.Identity.FirstName)
	pterm.Info.Printf("Total revenue: %.2f\n", revenue)
	pterm.Info.Printf("Total orders: %d\n", page.Total)
	return nil
}

func init() {
	DashboardCmd.Flags().BoolVar(&watch, "watch", false, "Refresh every 30 seconds")
}
