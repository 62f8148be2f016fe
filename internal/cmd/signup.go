package cmd

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/talentloop/portal/internal/core/domain"
	"github.com/talentloop/portal/internal/core/service"
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and store the session locally",
	Long: `Run the signup form checks, then register the account with the backend.
The privacy policy must be accepted with --accept-policy.

Example:
  portal signup --name "Ana Lima" --email ana@example.com \
    --password 'Secret123!' --confirm 'Secret123!' --accept-policy
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		name, _ := flags.GetString("name")
		email, _ := flags.GetString("email")
		password, _ := flags.GetString("password")
		confirm, _ := flags.GetString("confirm")
		accepted, _ := flags.GetBool("accept-policy")

		form := service.NewSignupForm()
		form.Change(domain.FieldName, name)
		form.Change(domain.FieldEmail, email)
		form.Change(domain.FieldPassword, password)
		form.Change(domain.FieldConfirmPassword, confirm)

		if check := form.Submit(accepted); !check.OK {
			fields := make([]string, 0, len(check.Errors))
			for f := range check.Errors {
				fields = append(fields, f)
			}
			sort.Strings(fields)
			for _, f := range fields {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", f, check.Errors[f])
			}
			if check.Message != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", check.Message)
			}
			return errors.New("signup form is invalid")
		}

		gw, err := cliGateway()
		if err != nil {
			return err
		}
		res := gw.Signup(cmd.Context(), form.Credentials())
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
	signupCmd.Flags().String("name", "", "Full name")
	signupCmd.Flags().String("email", "", "Account email")
	signupCmd.Flags().String("password", "", "Password")
	signupCmd.Flags().String("confirm", "", "Password confirmation")
	signupCmd.Flags().Bool("accept-policy", false, "Accept the privacy policy")
	addFormatFlag(signupCmd)
	rootCmd.AddCommand(signupCmd)
}
