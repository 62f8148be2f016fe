package cmd

import (
	"github.com/spf13/cobra"

	"github.com/talentloop/portal/internal/core/service"
)

var strengthCmd = &cobra.Command{
	Use:   "strength [password]",
	Short: "Score a password the way the signup form does",
	Long: `Print the strength meter's score, category and unmet criteria.
Reads the password from stdin when no argument is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var password string
		if len(args) == 1 {
			password = args[0]
		} else {
			var err error
			if password, err = promptLine(cmd.InOrStdin(), cmd.ErrOrStderr(), "Password: "); err != nil {
				return err
			}
		}
		return render(cmd, service.EvaluatePassword(password))
	},
}

func init() {
	addFormatFlag(strengthCmd)
	rootCmd.AddCommand(strengthCmd)
}
