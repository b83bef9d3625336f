package orders

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/epanel-tools/epanel/pkg/listquery"
	"github.com/epanel-tools/epanel/pkg/sdk"
)

// OrdersCmd groups the order list subcommands.
var OrdersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Browse the order list",
}

func init() {
	OrdersCmd.AddCommand(listCmd)
	OrdersCmd.AddCommand(viewCmd)
}

// cartFetcher adapts sdk.Client to the controller's fetch interface. Orders
// have no search endpoint on the server.
type cartFetcher struct {
	cli *sdk.Client
}

func (f cartFetcher) List(ctx context.Context, p listquery.Params) (sdk.CartPage, error) {
	return f.cli.ListCarts(ctx, sdk.ListParams{Limit: p.Limit, Skip: p.Skip})
}

func (f cartFetcher) Search(ctx context.Context, query string, limit, skip int) (sdk.CartPage, error) {
	return sdk.CartPage{}, fmt.Errorf("orders do not support search")
}
