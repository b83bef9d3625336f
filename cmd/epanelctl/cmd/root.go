package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/epanel-tools/epanel/cmd/epanelctl/cmd/auth"
	"github.com/epanel-tools/epanel/cmd/epanelctl/cmd/dashboard"
	"github.com/epanel-tools/epanel/cmd/epanelctl/cmd/orders"
	"github.com/epanel-tools/epanel/cmd/epanelctl/cmd/products"
	"github.com/epanel-tools/epanel/cmd/epanelctl/internal/client"
	"github.com/epanel-tools/epanel/cmd/epanelctl/internal/config"
)

var (
	serverURL      string
	nonInteractive bool
)

var rootCmd = &cobra.Command{
	Use:   "epanelctl",
	Short: "E-Panel CLI - sales and catalog administration client",
	Long: `epanelctl is the command-line interface for the E-Panel administration
API. Staff sign in with their panel account and, depending on their role, view
sales KPIs and browse or manage the product catalog and the order list.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Check for EPANEL_NON_INTERACTIVE environment variable
		if os.Getenv("EPANEL_NON_INTERACTIVE") == "1" {
			nonInteractive = true
		}

		cfg := &config.GlobalConfig{
			ServerURL:      serverURL,
			NonInteractive: nonInteractive,
			ClientProvider: client.NewProvider(serverURL),
		}
		cmd.SetContext(config.InjectConfig(cmd.Context(), cfg))
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultServerURL() string {
	if v := os.Getenv("EPANEL_SERVER"); v != "" {
		return v
	}
	return "https://dummyjson.com"
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServerURL(), "E-Panel API server URL (also set via EPANEL_SERVER)")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "Disable interactive prompts (also set via EPANEL_NON_INTERACTIVE=1)")
	rootCmd.AddCommand(auth.AuthCmd)
	rootCmd.AddCommand(products.ProductsCmd)
	rootCmd.AddCommand(orders.OrdersCmd)
	rootCmd.AddCommand(dashboard.DashboardCmd)
}
