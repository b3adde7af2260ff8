// Package cmd implements the command-line interface for vidplay.
package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/vidplay-cli/vidplay/filesystem"
	"github.com/vidplay-cli/vidplay/media"
)

const pickerPageSize = 15

func init() {
	rootCmd.AddCommand(playCmd)
}

// playCmd opens a single video straight on the player screen.
var playCmd = &cobra.Command{
	Use:   "play [file|id]",
	Short: "Open a video file on the player screen",
	Long: "Open a video file on the player screen.\n" +
		"A library id as printed by `vidplay list --json` is accepted too. Without an argument a library video is picked interactively.",
	Args:    cobra.MaximumNArgs(1),
	Example: "  vidplay play ~/Videos/holiday.mp4\n  vidplay play file:///home/me/Videos/holiday.mp4\n  vidplay play",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			uri string
			err error
		)
		if len(args) == 0 {
			uri, err = pickVideo(media.Dir())
		} else {
			uri, err = playableURI(args[0])
		}
		handleErr(err)

		CheckDependencies()
		handleErr(runPlayer(mo.Some(uri)))
	},
}

// pickVideo asks the user to choose one of the videos under dir.
func pickVideo(dir string) (string, error) {
	records, err := media.Scan(dir)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", fmt.Errorf("no videos in %s", dir)
	}

	prompt := survey.Select{
		Message: "Play",
		Options: lo.Map(records, func(r media.Record, _ int) string {
			return r.DisplayName
		}),
		PageSize: pickerPageSize,
	}

	var index int
	if err := ask(&prompt, &index); err != nil {
		return "", err
	}
	return records[index].URI(), nil
}

// playableURI turns a path, file URI or library id into the file URI of an existing video.
func playableURI(target string) (string, error) {
	if record, ok := libraryRecord(target); ok {
		return record.URI(), nil
	}

	path, err := media.Resolve(target)
	if err != nil {
		return "", err
	}

	path, err = filepath.Abs(path)
	if err != nil {
		return "", err
	}

	stat, err := filesystem.API().Stat(path)
	if err != nil {
		return "", err
	}
	if stat.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}

	return media.Record{Path: path}.URI(), nil
}

// libraryRecord looks target up by id in the library, unless it names an existing file.
func libraryRecord(target string) (media.Record, bool) {
	if exists, _ := filesystem.API().Exists(target); exists {
		return media.Record{}, false
	}

	records, err := media.Scan(media.Dir())
	if err != nil {
		return media.Record{}, false
	}
	return media.Find(records, target)
}
