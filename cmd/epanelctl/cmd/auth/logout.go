package auth

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/epanel-tools/epanel/cmd/epanelctl/internal/config"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		sess, err := cfg.ClientProvider.Session()
		if err != nil {
			return err
		}

		sess.Logout()
		pterm.Success.Println("Logged out successfully")
		return nil
	},
}
