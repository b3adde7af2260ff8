// Package cmd implements the command-line interface for vidplay.
package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/vidplay-cli/vidplay/color"
	"github.com/vidplay-cli/vidplay/icon"
	"github.com/vidplay-cli/vidplay/log"
	"github.com/vidplay-cli/vidplay/media"
	"github.com/vidplay-cli/vidplay/style"
	"github.com/vidplay-cli/vidplay/util"
)

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringP("filter", "f", "", "Only list videos whose name fuzzily matches")
	listCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	listCmd.Flags().BoolP("refresh", "r", false, "Ignore the cached scan and walk the directory again")
}

// listCmd prints the videos of the library directory.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the videos in the library directory",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			dir     = media.Dir()
			query   = lo.Must(cmd.Flags().GetString("filter"))
			asJson  = lo.Must(cmd.Flags().GetBool("json"))
			refresh = lo.Must(cmd.Flags().GetBool("refresh"))
		)

		if refresh {
			if err := media.Forget(dir); err != nil {
				log.Warnf("forget scan of %s: %v", dir, err)
			}
		}

		records, err := media.Scan(dir)
		handleErr(err)
		records = media.Filter(records, query)

		if asJson {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(records))
			return
		}

		if len(records) == 0 {
			cmd.Printf("%s no videos in %s\n", icon.Get(icon.Fail), dir)
			return
		}

		width := 80
		if w, _, err := util.TerminalSize(); err == nil && w > 0 {
			width = w
		}

		for _, r := range records {
			size := util.FormatBytes(r.SizeBytes)
			name := style.Truncate(util.Max(width-len(size)-4, 10))(icon.Get(icon.Video) + " " + r.DisplayName)
			cmd.Printf("%s %s\n", name, style.Fg(color.Yellow)(size))
		}

		cmd.Println()
		cmd.Println(style.Faint(fmt.Sprintf("%s in %s", util.Quantify(len(records), "video", "videos"), dir)))
	},
}
