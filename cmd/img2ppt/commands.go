package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/VantageDataChat/img2ppt"
	"github.com/VantageDataChat/img2ppt/clipboard"
	"github.com/VantageDataChat/img2ppt/pptx"
)

// existing checks that the presentation a headless command works on exists.
func (o *options) existing(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", path)
	}
	o.cfg.File = path
	return nil
}

func newArrangeCmd(o *options) *cobra.Command {
	var slide int
	var mode string
	cmd := &cobra.Command{
		Use:   "arrange <file.pptx>",
		Short: "Apply a layout to the pictures of a slide",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.existing(args[0]); err != nil {
				return err
			}
			ctl, err := o.acquire(clipboard.New())
			if err != nil {
				return err
			}
			defer ctl.Close()
			if slide == 0 {
				if slide, err = ctl.SlideCount(); err != nil {
					return err
				}
			}
			if err := ctl.Arrange(img2ppt.Arrangement(mode), slide); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %s to slide %d\n", mode, slide)
			return nil
		},
	}
	cmd.Flags().IntVarP(&slide, "slide", "s", 0, "Slide number (default: last slide)")
	cmd.Flags().StringVarP(&mode, "mode", "m", string(img2ppt.ArrangeStretch),
		"Layout: "+strings.Join(img2ppt.Arrangements(), ", "))
	return cmd
}

func newAddSlideCmd(o *options) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "add-slide <file.pptx>",
		Short: "Append blank slides, creating the presentation if needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o.cfg.File = args[0]
			ctl, err := o.acquire(clipboard.New())
			if err != nil {
				return err
			}
			defer ctl.Close()
			for i := 0; i < count; i++ {
				if err := ctl.AddBlankSlide(); err != nil {
					return err
				}
			}
			n, err := ctl.SlideCount()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s has %d slides\n", args[0], n)
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of slides to add")
	return cmd
}

func newPasteCmd(o *options) *cobra.Command {
	var slide int
	cmd := &cobra.Command{
		Use:   "paste <file.pptx>",
		Short: "Paste the .jpg file whose path is on the clipboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.existing(args[0]); err != nil {
				return err
			}
			ctl, err := o.acquire(clipboard.New())
			if err != nil {
				return err
			}
			defer ctl.Close()
			if slide == 0 {
				if slide, err = ctl.SlideCount(); err != nil {
					return err
				}
			}
			rejected, err := ctl.Paste(slide)
			if err != nil {
				return err
			}
			if rejected != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Nothing pasted: %s\n", rejected.Reason)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pasted image on slide %d\n", slide)
			return nil
		},
	}
	cmd.Flags().IntVarP(&slide, "slide", "s", 0, "Slide number (default: last slide)")
	return cmd
}

func newPreviewCmd(o *options) *cobra.Command {
	var slide, width int
	var output string
	cmd := &cobra.Command{
		Use:   "preview <file.pptx>",
		Short: "Render slide previews as PNG",
		Long: `Render one slide, or every slide when --slide is 0. With several slides
the output path may contain a %d verb for the slide number.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pres, err := pptx.Open(args[0])
			if err != nil {
				return err
			}
			if width <= 0 {
				width = o.cfg.PreviewWidth
			}
			opts := pptx.DefaultRenderOptions()
			opts.Width = width

			slides := []int{slide}
			if slide == 0 {
				slides = slides[:0]
				for i := 1; i <= pres.GetSlideCount(); i++ {
					slides = append(slides, i)
				}
			}
			if len(slides) > 1 && !strings.Contains(output, "%") {
				ext := filepath.Ext(output)
				output = strings.TrimSuffix(output, ext) + "%02d" + ext
			}
			if dir := filepath.Dir(output); dir != "." {
				if err := os.MkdirAll(dir, 0750); err != nil {
					return err
				}
			}
			for _, n := range slides {
				path := output
				if strings.Contains(output, "%") {
					path = fmt.Sprintf(output, n)
				}
				if err := pres.SaveSlidePreview(n-1, path, opts); err != nil {
					return fmt.Errorf("slide %d: %w", n, err)
				}
				o.logger.Debug("rendered slide", "slide", n, "path", path)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rendered %d slides\n", len(slides))
			return nil
		},
	}
	cmd.Flags().IntVarP(&slide, "slide", "s", 0, "Slide number (default: all slides)")
	cmd.Flags().IntVarP(&width, "width", "w", 0, "Image width in pixels (default: preview_width)")
	cmd.Flags().StringVarP(&output, "output", "o", "slide.png", "Output PNG path")
	return cmd
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file.pptx>",
		Short: "Report structural problems in a presentation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pres, err := pptx.Open(args[0])
			if err != nil {
				return err
			}
			if err := pres.Validate(); err != nil {
				return err
			}
			size := pres.GetSlideSize()
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d slides, %gx%g pt, ok\n",
				args[0], pres.GetSlideCount(), size.WidthPoints(), size.HeightPoints())
			return nil
		},
	}
}
