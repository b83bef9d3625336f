package products

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

var (
	listPage   int
	listSort   string
	listOrder  string
	listSearch string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List products",
	Long: `Lists one page of the product catalog. With --search the server's search
endpoint is used; it does not support sorting, so --sort and --order are
ignored on that path.`,
	RunE: func(cobraCmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cobraCmd.Context())

		sess, cli, err := cfg.ClientProvider.Require(authz.CapViewProductsNav)
		if err != nil {
			return err
		}

		cache, err := querycache.New[sdk.ProductPage]()
		if err != nil {
			return err
		}
		ctrl := listquery.New[sdk.ProductPage]("products", cache, productFetcher{cli: cli}, sess,
			listquery.WithPage(listPage),
			listquery.WithSort(listSort, listOrder),
			listquery.WithSearch(listSearch),
		)

		ctx, cancel := context.WithTimeout(cobraCmd.Context(), 10*time.Second)
		defer cancel()

		res, err := ctrl.GetWait(ctx)
		if err != nil {
			return fmt.Errorf("failed to list products: %w", err)
		}
		if res.Status == querycache.Error {
			return fmt.Errorf("failed to list products: %w", res.Err)
		}

		page := res.Value
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tBRAND\tPRICE\tSTOCK")
		for _, product := range page.Products {
			brand := product.Brand
			if brand == "" {
				brand = "-"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%d\n",
				product.ID, product.Title, brand, product.Price, product.Stock)
		}
		w.Flush()

		state := ctrl.CurrentState()
		fmt.Printf("\nPage %d of %d (%d products)\n", state.Page, state.TotalPages, page.Total)
		return nil
	},
}

func init() {
	listCmd.Flags().IntVar(&listPage, "page", 1, "Page number")
	listCmd.Flags().StringVar(&listSort, "sort", "title", "Sort column (title, brand, price, stock)")
	listCmd.Flags().StringVar(&listOrder, "order", listquery.OrderAsc, "Sort order (asc, desc)")
	listCmd.Flags().StringVar(&listSearch, "search", "", "Search term (disables sorting)")
}
