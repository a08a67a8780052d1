package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var registerPassword string

func init() {
	registerCmd.Flags().StringVarP(&registerPassword, "password", "p", "", "account password (prompted if omitted)")
}

var registerCmd = &cobra.Command{
	Use:   "register <username> <email>",
	Short: "Create an account on the server",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		password := registerPassword
		if password == "" {
			var err error
			password, err = promptPassword("Password: ")
			if err != nil {
				return err
			}
		}

		user, err := newClient().Register(cmd.Context(), args[0], args[1], password)
		if err != nil {
			return err
		}

		fmt.Println(color.GreenString("✓") + " Account created for " + color.YellowString(user.UserName))
		fmt.Println(color.CyanString("→") + " Run " + color.YellowString("secureshare login "+user.UserName) + " to sign in")
		return nil
	},
}
