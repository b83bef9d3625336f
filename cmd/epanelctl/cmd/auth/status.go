package auth

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/epanel-tools/epanel/cmd/epanelctl/internal/config"
	"github.com/epanel-tools/epanel/pkg/authz"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display authentication status and granted capabilities",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		sess, err := cfg.ClientProvider.Session()
		if err != nil {
			return err
		}
		snap := sess.Current()
		if !snap.Authenticated() {
			return fmt.Errorf("not logged in")
		}

		policy, err := cfg.ClientProvider.Policy()
		if err != nil {
			return err
		}

		pterm.DefaultSection.Println("Session")
		pterm.Info.Printf("User: %s %s (@%s)\n",
			snap.Identity.FirstName, snap.Identity.LastName, snap.Identity.Username)
		pterm.Info.Printf("Role: %s\n", snap.Identity.Role)
		if exp := tokenExpiry(snap.Token); exp != nil {
			pterm.Info.Printf("Token expires: %s\n", exp.Local().Format(time.RFC1123))
		}

		pterm.DefaultSection.Println("Capabilities")
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CAPABILITY\tGRANTED")
		for _, capability := range authz.Capabilities {
			fmt.Fprintf(w, "%s\t%t\n", capability, policy.Can(snap.Identity, capability))
		}
		w.Flush()

		return nil
	},
}

// tokenExpiry reads the exp claim without verifying the signature, for
// display only. Opaque tokens have no expiry to show.
func tokenExpiry(token string) *time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	return &exp.Time
}
