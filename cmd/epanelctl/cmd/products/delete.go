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

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a product",
	Args:  cobra.ExactArgs(1),
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

		if !deleteYes && !cfg.NonInteractive {
			confirmed, err := pterm.DefaultInteractiveConfirm.
				WithDefaultText(fmt.Sprintf("Delete product #%d?", id)).
				Show()
			if err != nil {
				return err
			}
			if !confirmed {
				pterm.Info.Println("Aborted")
				return nil
			}
		}

		ctx, cancel := context.WithTimeout(cobraCmd.Context(), 10*time.Second)
		defer cancel()

		coordinator := mutation.NewCoordinator(cli, sess)
		var deleted sdk.Product
		if err := coordinator.Delete(ctx, "products", id, &deleted); err != nil {
			return err
		}

		pterm.Success.Printf("Product #%d deleted: %s\n", deleted.ID, deleted.Title)
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip the confirmation prompt")
}
