package cmd

import (
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the stored password for a Tripal site (login, logout)",
	Long: `Manage the password tripalctl uses for HTTP basic auth.

Passwords are kept in the OS keyring, keyed by site URL and user, so they
never need to live in tripal.yaml. A password set through TRIPAL_PASSWORD
or the config file takes precedence over the keyring.

Examples:
  tripalctl auth login --base-url https://tripal.example.org --user admin
  tripalctl auth logout`,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored password for the configured site and user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := GetService(cmd)
		if err != nil {
			return err
		}
		if err := svc.Sdk.ClearCredentials(); err != nil {
			return err
		}
		svc.Logger.Info("password removed", "site", svc.Sdk.BaseURL, "user", svc.Sdk.User)
		return nil
	},
}

func init() {
	authCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(authCmd)
}
