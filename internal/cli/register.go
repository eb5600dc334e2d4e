package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register <username> <email>",
	Short: "Create a new account",
	Long: `Create a new account on a FlowMind server.

The password is prompted twice. A verification mail is sent to the
given address.

Example:
  flowmind register alice alice@example.com`,
	Args: cobra.ExactArgs(2),
	RunE: runRegister,
}

func runRegister(cmd *cobra.Command, args []string) error {
	password, err := promptPassword("Password")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm password")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	user, err := api.Register(context.Background(), args[0], args[1], password)
	if err != nil {
		return err
	}

	fmt.Printf("Created account %s (%s)\n", user.Username, user.Email)
	fmt.Println("Check your inbox for the verification mail, then run 'flowmind login'.")
	return nil
}
