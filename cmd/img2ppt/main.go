// Command img2ppt pastes clipboard images into a presentation and arranges
// them on a slide.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/VantageDataChat/img2ppt"
	"github.com/VantageDataChat/img2ppt/clipboard"
	"github.com/VantageDataChat/img2ppt/pptx"
	"github.com/VantageDataChat/img2ppt/ui"
)

type options struct {
	configPath string
	logLevel   string
	logFormat  string
	slideSize  string

	cfg    img2ppt.Config
	logger *slog.Logger
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	o := &options{}
	rootCmd := &cobra.Command{
		Use:   "img2ppt [file.pptx]",
		Short: "Paste clipboard images into slides and arrange them",
		Long: `img2ppt opens a presentation (creating it with one blank slide when it
does not exist) and shows a window to add slides, paste the .jpg file whose
path is on the clipboard, and stretch or tile the pictures of a slide.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       pptx.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.setup(cmd, stderr)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				o.cfg.File = args[0]
			}
			return o.runUI()
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&o.configPath, "config", "", "YAML config file")
	flags.StringVar(&o.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&o.logFormat, "log-format", "", "Log format: text, json")
	flags.StringVar(&o.slideSize, "slide-size", "", "Slide size of new presentations: screen4x3, screen16x9, screen16x10, A4, letter")

	rootCmd.AddCommand(
		newArrangeCmd(o),
		newAddSlideCmd(o),
		newPasteCmd(o),
		newPreviewCmd(o),
		newCheckCmd(),
	)
	return rootCmd
}

// setup loads the config, applies flag overrides and installs the logger.
func (o *options) setup(cmd *cobra.Command, stderr io.Writer) error {
	cfg, err := img2ppt.LoadConfig(o.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = o.logFormat
	}
	if flags.Changed("slide-size") {
		cfg.SlideSize = o.slideSize
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.cfg = cfg
	o.logger = newLogger(cfg, stderr)
	slog.SetDefault(o.logger)
	return nil
}

func newLogger(cfg img2ppt.Config, w io.Writer) *slog.Logger {
	level, _ := cfg.Level()
	hopts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

// acquire connects to the configured presentation.
func (o *options) acquire(clip img2ppt.Clipboard) (*img2ppt.Controller, error) {
	host, err := o.cfg.NewHost(o.logger)
	if err != nil {
		return nil, err
	}
	ctl, err := img2ppt.Acquire(host, clip, img2ppt.WithLogger(o.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", o.cfg.File, err)
	}
	return ctl, nil
}

func (o *options) runUI() error {
	if !clipboard.Available() {
		o.logger.Warn("system clipboard unavailable, Paste Image will do nothing")
	}
	ctl, err := o.acquire(clipboard.New())
	if err != nil {
		return err
	}
	shell, err := ui.NewShell(ctl, o.logger)
	if err != nil {
		return err
	}
	o.logger.Info("starting UI", slog.String("file", o.cfg.File))
	ui.Run(shell, ui.Options{
		Title:        "Img2PPT",
		FontSize:     o.cfg.FontSize,
		PreviewWidth: o.cfg.PreviewWidth,
		Logger:       o.logger,
	})
	return nil
}
