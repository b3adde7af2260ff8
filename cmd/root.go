// Package cmd implements the command-line interface for vidplay.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vidplay-cli/vidplay/app"
	"github.com/vidplay-cli/vidplay/color"
	"github.com/vidplay-cli/vidplay/constant"
	"github.com/vidplay-cli/vidplay/host"
	"github.com/vidplay-cli/vidplay/icon"
	"github.com/vidplay-cli/vidplay/key"
	"github.com/vidplay-cli/vidplay/log"
	"github.com/vidplay-cli/vidplay/media"
	"github.com/vidplay-cli/vidplay/playback"
	"github.com/vidplay-cli/vidplay/player"
	"github.com/vidplay-cli/vidplay/remote"
	"github.com/vidplay-cli/vidplay/style"
	"github.com/vidplay-cli/vidplay/tui"
	"github.com/vidplay-cli/vidplay/util"
	"github.com/vidplay-cli/vidplay/where"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, plain)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().StringP("dir", "d", "", "Directory to list videos from")
	lo.Must0(rootCmd.MarkPersistentFlagDirname("dir"))
	lo.Must0(viper.BindPFlag(key.LibraryPath, rootCmd.PersistentFlags().Lookup("dir")))

	rootCmd.PersistentFlags().Bool("pip", true, "Float the player in picture-in-picture when the terminal loses focus")
	lo.Must0(viper.BindPFlag(key.PipEnabled, rootCmd.PersistentFlags().Lookup("pip")))
}

// rootCmd defines the entry point for the vidplay application.
var rootCmd = &cobra.Command{
	Use:   constant.App,
	Short: "A terminal video player with picture-in-picture controls",
	Long: constant.Banner + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - A terminal video player with picture-in-picture controls"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		CheckDependencies()
		handleErr(runPlayer(mo.None[string]()))
	},
}

// runPlayer wires the engine, the window, the remote channel and the hosting
// screen together, then blocks in the terminal interface until it quits.
func runPlayer(uri mo.Option[string]) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	channel := remote.NewChannel()
	server, err := listenRemote(ctx, channel)
	if err != nil {
		log.Warnf("remote actions are unavailable: %v", err)
	} else {
		defer util.Ignore(server.Close)
	}

	var hosting *app.App

	window := host.New(host.DefaultOptions(), channel, func() {
		if err := hosting.OnPipModeChanged(false); err != nil {
			log.Warnf("leave pip: %v", err)
		}
	})

	factory := player.NewFactory(viper.GetString(key.PlayerMPVPath), func(m *player.MPV) {
		window.Attach(ctx, m)

		go func() {
			select {
			case <-m.Wait():
				hosting.OnEngineExited(m)
			case <-ctx.Done():
			}
		}()
	})

	hosting = app.New(factory, window, channel, playback.DefaultOptions())
	stopped := make(chan struct{})
	go func() {
		hosting.Run(ctx)
		close(stopped)
	}()
	defer func() {
		hosting.Close()
		<-stopped
	}()

	return tui.Run(hosting, &tui.Options{
		Dir: media.Dir(),
		URI: uri,
	})
}

func listenRemote(ctx context.Context, channel *remote.Channel) (*remote.Server, error) {
	socket, err := where.RemoteSocket()
	if err != nil {
		return nil, err
	}
	return remote.Listen(ctx, socket, channel)
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
