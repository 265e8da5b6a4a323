package img2ppt

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
)

// Controller is the single point of contact with the presentation. Every
// slide and geometry change goes through it.
type Controller struct {
	doc    Document
	clip   Clipboard
	logger *slog.Logger

	// Slide dimensions in points, read once by Acquire.
	slideWidth  float64
	slideHeight float64
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// Acquire connects to the host's active presentation. When none is open it
// creates a new one holding a single blank slide.
func Acquire(host Host, clip Clipboard, opts ...Option) (*Controller, error) {
	c := &Controller{clip: clip, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}

	doc, err := host.Active()
	switch {
	case errors.Is(err, ErrNoActiveDocument):
		c.logger.Info("no active presentation, creating one")
		if doc, err = host.NewDocument(); err != nil {
			return nil, fmt.Errorf("failed to create presentation: %w", err)
		}
		if err := doc.AppendBlankSlide(); err != nil {
			return nil, fmt.Errorf("failed to add first slide: %w", err)
		}
		if err := doc.Commit(); err != nil {
			return nil, fmt.Errorf("failed to save presentation: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to connect to presentation: %w", err)
	}
	c.doc = doc

	if c.slideWidth, c.slideHeight, err = doc.SlideSize(); err != nil {
		return nil, fmt.Errorf("failed to read slide size: %w", err)
	}
	c.logger.Debug("acquired presentation",
		slog.Float64("width", c.slideWidth), slog.Float64("height", c.slideHeight))
	return c, nil
}

// SlideCount returns the current number of slides.
func (c *Controller) SlideCount() (int, error) {
	return c.doc.SlideCount()
}

// SlideSize returns the slide dimensions in points cached at Acquire.
func (c *Controller) SlideSize() (width, height float64) {
	return c.slideWidth, c.slideHeight
}

// AddBlankSlide appends one empty slide at the end.
func (c *Controller) AddBlankSlide() error {
	if err := c.doc.AppendBlankSlide(); err != nil {
		return fmt.Errorf("failed to add slide: %w", err)
	}
	if err := c.doc.Commit(); err != nil {
		return fmt.Errorf("failed to save presentation: %w", err)
	}
	c.logger.Info("added slide")
	return nil
}

// SlideOrdinals returns 1..SlideCount. It is empty, not nil, when there are
// no slides.
func (c *Controller) SlideOrdinals() ([]int, error) {
	count, err := c.doc.SlideCount()
	if err != nil {
		return nil, err
	}
	ordinals := make([]int, count)
	for i := range ordinals {
		ordinals[i] = i + 1
	}
	return ordinals, nil
}

// Preview renders a slide when the document supports it.
func (c *Controller) Preview(ordinal, width int) (image.Image, error) {
	p, ok := c.doc.(Previewer)
	if !ok {
		return nil, ErrPreviewUnsupported
	}
	if err := c.checkOrdinal(ordinal); err != nil {
		return nil, err
	}
	return p.RenderSlide(ordinal, width)
}

// Close releases the clipboard. The presentation stays open.
func (c *Controller) Close() error {
	if closer, ok := c.clip.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

func (c *Controller) checkOrdinal(ordinal int) error {
	count, err := c.doc.SlideCount()
	if err != nil {
		return err
	}
	if ordinal < 1 || ordinal > count {
		return slideError(ordinal, count)
	}
	return nil
}

// shapes resolves the shapes of a slide from the live document.
func (c *Controller) shapes(ordinal int) ([]Shape, error) {
	if err := c.checkOrdinal(ordinal); err != nil {
		return nil, err
	}
	return c.doc.Shapes(ordinal)
}
