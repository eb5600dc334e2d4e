package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginPassword string

var loginCmd = &cobra.Command{
	Use:   "login <username-or-email>",
	Short: "Log in and store the session locally",
	Long: `Log in to a FlowMind server and store the session tokens under
~/.flowmind so later commands run authenticated.

Examples:
  flowmind login alice
  flowmind login alice@example.com --server http://localhost:8686`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (prompted when not given)")
}

// promptPassword reads a password from the terminal without echoing it.
func promptPassword(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	password := loginPassword
	if password == "" {
		var err error
		password, err = promptPassword("Password")
		if err != nil {
			return err
		}
	}

	session, err := api.Login(context.Background(), args[0], password)
	if err != nil {
		return err
	}

	if err := saveCredentials(&credentials{
		ServerURL:    api.BaseURL(),
		Username:     session.User.Username,
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
	}); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}

	fmt.Printf("Logged in as %s (%s plan)\n", session.User.Username, session.User.Plan)
	if !session.User.EmailVerified {
		fmt.Println("Note: email not verified yet, check your inbox.")
	}
	return nil
}
