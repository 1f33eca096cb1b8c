package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tejashwikalptaru/govis/internal/app"
	"github.com/tejashwikalptaru/govis/internal/visualizer"
)

// options holds the command line flags layered over the config file.
type options struct {
	configPath  string
	visualizers []string
	lyrics      string
	mock        bool
	wsAddr      string
	fps         int
}

// runFunc starts the visualizer with the final configuration.
type runFunc func(config app.Config) error

func newRootCmd(run runFunc) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "govis [track]",
		Short:         "Music visualizer with synchronized lyrics",
		Version:       app.GetVersionInfo().FullString(),
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := opts.resolve(cmd, args)
			if err != nil {
				return err
			}
			return run(config)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "",
		"Config file (default: ./govis.yaml, then the user config dir)")
	flags.StringSliceVarP(&opts.visualizers, "visualizer", "v", nil,
		"Visualizers to enable, comma separated. Use 'visualizers' to list them.")
	flags.StringVarP(&opts.lyrics, "lyrics", "l", "", "LRC lyric file to show")
	flags.BoolVar(&opts.mock, "mock", false, "Synthesize tracks and skip the audio device")
	flags.StringVar(&opts.wsAddr, "ws", "", "Broadcast snapshots over WebSocket on this address")
	flags.IntVar(&opts.fps, "fps", 0, "Render loop frame rate")

	rootCmd.AddCommand(newVersionCmd(), newVisualizersCmd())
	return rootCmd
}

// resolve loads the config file and applies the flags that were set.
func (o *options) resolve(cmd *cobra.Command, args []string) (app.Config, error) {
	config, err := app.LoadConfig(o.configPath)
	if err != nil {
		return app.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("visualizer") {
		config.Visualizers = o.visualizers
	}
	if flags.Changed("lyrics") {
		config.Lyrics = o.lyrics
	}
	if flags.Changed("mock") {
		config.Audio.Mock = o.mock
	}
	if flags.Changed("ws") {
		config.WebSocket.Addr = o.wsAddr
	}
	if flags.Changed("fps") {
		config.FPS = o.fps
	}
	if len(args) == 1 {
		config.Track = args[0]
	}

	if err := config.Validate(); err != nil {
		return app.Config{}, err
	}
	return config, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			info := app.GetVersionInfo()
			fmt.Fprintln(cmd.OutOrStdout(), info.FullString())
		},
	}
}

func newVisualizersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "visualizers",
		Short: "List available visualizers",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printVisualizers(cmd.OutOrStdout())
		},
	}
}

func printVisualizers(w io.Writer) {
	for _, info := range visualizer.Types() {
		line := fmt.Sprintf("%-16s %s", info.Type, info.Name)
		if info.Default {
			line += " (default)"
		}
		fmt.Fprintln(w, line)
	}
}
