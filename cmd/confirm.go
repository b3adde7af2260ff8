// Package cmd implements the command-line interface for vidplay.
package cmd

import (
	"github.com/AlecAivazis/survey/v2"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// ask is the prompt runner, swapped out in tests.
var ask = survey.AskOne

func addYesFlag(cmd *cobra.Command) {
	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

// confirmed asks before a destructive action unless --yes was given.
func confirmed(cmd *cobra.Command, message string) bool {
	if lo.Must(cmd.Flags().GetBool("yes")) {
		return true
	}

	prompt := survey.Confirm{
		Message: message,
		Default: false,
	}
	var response bool
	handleErr(ask(&prompt, &response))
	return response
}
