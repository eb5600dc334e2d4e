package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke the stored session and forget it",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Exchange the stored refresh token for a fresh session",
	Args:  cobra.NoArgs,
	RunE:  runRefresh,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in account",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func runLogout(cmd *cobra.Command, args []string) error {
	if creds != nil && creds.RefreshToken != "" {
		if err := api.Logout(context.Background(), creds.RefreshToken); err != nil {
			// Revocation failing should not keep a stale session around
			fmt.Fprintf(os.Stderr, "Warning: server-side logout failed: %v\n", err)
		}
	}

	if err := removeCredentials(); err != nil {
		return fmt.Errorf("remove credentials: %w", err)
	}
	fmt.Println("Logged out.")
	return nil
}

func runRefresh(cmd *cobra.Command, args []string) error {
	if err := requireLogin(); err != nil {
		return err
	}

	session, err := api.Refresh(context.Background(), creds.RefreshToken)
	if err != nil {
		return err
	}

	creds.AccessToken = session.AccessToken
	creds.RefreshToken = session.RefreshToken
	creds.Username = session.User.Username
	if err := saveCredentials(creds); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}

	fmt.Println("Session refreshed.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	if err := requireLogin(); err != nil {
		return err
	}

	user, err := api.Me(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("%s <%s>\n", user.Username, user.Email)
	fmt.Printf("  Role: %s\n", user.Role)
	fmt.Printf("  Plan: %s\n", user.Plan)
	fmt.Printf("  Email verified: %v\n", user.EmailVerified)
	if verbose {
		fmt.Printf("  Member since: %s\n", user.CreatedAt.Format("2006-01-02"))
		fmt.Printf("  Server: %s\n", api.BaseURL())
	}
	return nil
}
