package products

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/epanel-tools/epanel/pkg/listquery"
	"github.com/epanel-tools/epanel/pkg/sdk"
)

// ProductsCmd groups the product catalog subcommands.
var ProductsCmd = &cobra.Command{
	Use:   "products",
	Short: "Browse and manage the product catalog",
}

func init() {
	ProductsCmd.AddCommand(listCmd)
	ProductsCmd.AddCommand(getCmd)
	ProductsCmd.AddCommand(createCmd)
	ProductsCmd.AddCommand(updateCmd)
	ProductsCmd.AddCommand(deleteCmd)
}

// productFetcher adapts sdk.Client to the controller's fetch interface.
type productFetcher struct {
	cli *sdk.Client
}

func (f productFetcher) List(ctx context.Context, p listquery.Params) (sdk.ProductPage, error) {
	return f.cli.ListProducts(ctx, sdk.ListParams{
		Limit:  p.Limit,
		Skip:   p.Skip,
		SortBy: p.SortBy,
		Order:  p.Order,
	})
}

func (f productFetcher) Search(ctx context.Context, query string, limit, skip int) (sdk.ProductPage, error) {
	return f.cli.SearchProducts(ctx, query, limit, skip)
}
