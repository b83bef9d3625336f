package auth

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/epanel-tools/epanel/cmd/epanelctl/internal/config"
)

var (
	username string
	password string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the panel",
	Long: `Signs in with a staff account. Credentials are checked against the local
staff directory first; only on a match is the remote identity service
contacted. The locally assigned role is stored with the returned profile for
the session's duration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		sess, err := cfg.ClientProvider.Session()
		if err != nil {
			return err
		}

		if err := sess.Login(cmd.Context(), username, password); err != nil {
			return err
		}

		snap := sess.Current()
		pterm.Success.Printf("Logged in as %s %s (%s)\n",
			snap.Identity.FirstName, snap.Identity.LastName, snap.Identity.Role)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&username, "username", "u", "", "Panel account username")
	loginCmd.Flags().StringVarP(&password, "password", "p", "", "Panel account password")
	_ = loginCmd.MarkFlagRequired("username")
	_ = loginCmd.MarkFlagRequired("password")
}
