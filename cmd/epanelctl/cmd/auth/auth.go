package auth

import "github.com/spf13/cobra"

// AuthCmd groups the authentication subcommands.
var AuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
}

func init() {
	AuthCmd.AddCommand(loginCmd)
	AuthCmd.AddCommand(logoutCmd)
	AuthCmd.AddCommand(statusCmd)
}
