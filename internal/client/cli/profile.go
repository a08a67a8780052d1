package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	passwdCurrent string
	passwdNew     string
)

func init() {
	profilePasswdCmd.Flags().StringVar(&passwdCurrent, "current", "", "current password (prompted if omitted)")
	profilePasswdCmd.Flags().StringVar(&passwdNew, "new", "", "new password (prompted if omitted)")

	profileCmd.AddCommand(profileRenameCmd)
	profileCmd.AddCommand(profilePasswdCmd)
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show and maintain your account",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAuthedClient()
		if err != nil {
			return err
		}

		user, err := client.Profile(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println("Username:   " + color.YellowString(user.UserName))
		fmt.Println("Email:      " + user.Email)
		fmt.Println("Registered: " + user.CreatedAt.Local().Format("2006-01-02 15:04"))
		return nil
	},
}

var profileRenameCmd = &cobra.Command{
	Use:   "rename <new-username>",
	Short: "Change your username",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAuthedClient()
		if err != nil {
			return err
		}

		user, err := client.UpdateUserName(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		// Keep the saved session in step with the server.
		if s, serr := loadSession(); serr == nil {
			s.UserName = user.UserName
			if serr := saveSession(s); serr != nil {
				return fmt.Errorf("could not update session: %w", serr)
			}
		}

		fmt.Println(color.GreenString("✓") + " Username changed to " + color.YellowString(user.UserName))
		return nil
	},
}

var profilePasswdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change your password",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAuthedClient()
		if err != nil {
			return err
		}

		current := passwdCurrent
		if current == "" {
			if current, err = promptPassword("Current password: "); err != nil {
				return err
			}
		}
		next := passwdNew
		if next == "" {
			if next, err = promptPassword("New password: "); err != nil {
				return err
			}
		}

		if err := client.UpdatePassword(cmd.Context(), current, next); err != nil {
			return err
		}

		fmt.Println(color.GreenString("✓") + " Password updated")
		return nil
	},
}
