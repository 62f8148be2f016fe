package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/talentloop/portal/internal/core/domain"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session locally",
	Long: `Authenticate against the backend and keep the session in the session file.
The password is read from stdin when --password is not given.

Examples:
  portal login --email ana@example.com
  echo "$PASSWORD" | portal login --email ana@example.com --format json
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			var err error
			if password, err = promptLine(cmd.InOrStdin(), cmd.ErrOrStderr(), "Password: "); err != nil {
				return err
			}
		}

		gw, err := cliGateway()
		if err != nil {
			return err
		}
		res := gw.Login(cmd.Context(), domain.Credentials{Email: email, Password: password})
		if !res.Success {
			return errors.New(res.Message)
		}
		if res.User == nil {
			return render(cmd, map[string]any{"success": true})
		}
		return render(cmd, newUserView(res.User))
	},
}

func init() {
	loginCmd.Flags().String("email", "", "Account email (required)")
	loginCmd.Flags().String("password", "", "Account password")
	_ = loginCmd.MarkFlagRequired("email")
	addFormatFlag(loginCmd)
	rootCmd.AddCommand(loginCmd)
}
