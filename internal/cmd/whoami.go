package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user and where they would land",
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, err := cliGateway()
		if err != nil {
			return err
		}
		user := gw.GetCurrentUser(cmd.Context())
		if user == nil {
			return errors.New("not logged in")
		}
		return render(cmd, newUserView(user))
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the local session",
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, err := cliGateway()
		if err != nil {
			return err
		}
		if err := gw.Logout(cmd.Context()); err != nil {
			return err
		}
		cmd.Println("Logged out")
		return nil
	},
}

func init() {
	addFormatFlag(whoamiCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(logoutCmd)
}
