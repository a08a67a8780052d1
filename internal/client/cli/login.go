package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var loginPassword string

func init() {
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password (prompted if omitted)")
}

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Sign in and save the session for later commands",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password := loginPassword
		if password == "" {
			var err error
			password, err = promptPassword("Password: ")
			if err != nil {
				return err
			}
		}

		token, user, err := newClient().Login(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}

		if err := saveSession(&Session{
			Server:      effectiveServer(),
			UserName:    user.UserName,
			AccessToken: token,
		}); err != nil {
			return fmt.Errorf("could not save session: %w", err)
		}

		fmt.Println(color.GreenString("✓") + " Logged in as " + color.YellowString(user.UserName))
		return nil
	},
}
