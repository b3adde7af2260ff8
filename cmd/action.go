// Package cmd implements the command-line interface for vidplay.
package cmd

import (
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/vidplay-cli/vidplay/color"
	"github.com/vidplay-cli/vidplay/icon"
	"github.com/vidplay-cli/vidplay/remote"
	"github.com/vidplay-cli/vidplay/style"
	"github.com/vidplay-cli/vidplay/where"
)

func init() {
	rootCmd.AddCommand(actionCmd)
}

// actionCmd presses a PiP control button of the running player from the outside.
var actionCmd = &cobra.Command{
	Use:   "action [play|pause|forward|rewind|replay]",
	Short: "Send a picture-in-picture control action to the running player",
	Long: `Send one of the picture-in-picture control actions to the running player.
The action is delivered exactly like a press of the matching button on the floating window.`,
	Args: cobra.ExactArgs(1),
	ValidArgs: lo.Map(remote.Codes(), func(c remote.Code, _ int) string {
		return c.String()
	}),
	Example: "  vidplay action pause",
	Run: func(cmd *cobra.Command, args []string) {
		code, err := remote.ParseCode(args[0])
		handleErr(err)

		socket, err := where.RemoteSocket()
		handleErr(err)
		handleErr(remote.Send(socket, remote.NewIntent(code)))
		cmd.Printf("%s sent %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), style.Fg(color.Purple)(code.String()))
	},
}
