package img2ppt

import (
	"fmt"
	"log/slog"
	"sort"
)

// Arrangement names a layout operation.
type Arrangement string

const (
	ArrangeStretch       Arrangement = "stretch"
	ArrangeFitVertical   Arrangement = "fit-vertical"
	ArrangeFitHorizontal Arrangement = "fit-horizontal"
	ArrangeFitFour       Arrangement = "fit-four"
)

// Arrangements returns the known arrangement names, sorted.
func Arrangements() []string {
	names := make([]string, 0, len(arrangements))
	for a := range arrangements {
		names = append(names, string(a))
	}
	sort.Strings(names)
	return names
}

var arrangements = map[Arrangement]func(*Controller, int) error{
	ArrangeStretch:       (*Controller).StretchAll,
	ArrangeFitVertical:   (*Controller).FitVertical,
	ArrangeFitHorizontal: (*Controller).FitHorizontal,
	ArrangeFitFour:       (*Controller).FitFour,
}

// Arrange applies the named arrangement to a slide.
func (c *Controller) Arrange(mode Arrangement, ordinal int) error {
	fn, ok := arrangements[mode]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownArrangement, mode)
	}
	return fn(c, ordinal)
}

// StretchAll makes every shape cover the whole slide.
func (c *Controller) StretchAll(ordinal int) error {
	shapes, err := c.shapes(ordinal)
	if err != nil {
		return err
	}
	for _, s := range shapes {
		s.SetLockAspectRatio(false)
		s.SetWidth(c.slideWidth)
		s.SetHeight(c.slideHeight)
		s.SetLeft(0)
		s.SetTop(0)
	}
	return c.commit("stretch", ordinal, len(shapes))
}

// FitVertical places the shapes side by side in full-height columns of
// equal width.
func (c *Controller) FitVertical(ordinal int) error {
	shapes, err := c.shapesToDivide(ordinal)
	if err != nil {
		return err
	}
	count := float64(len(shapes))
	left := 0.0
	for _, s := range shapes {
		s.SetLockAspectRatio(false)
		s.SetWidth(c.slideWidth / count)
		s.SetHeight(c.slideHeight)
		s.SetLeft(left)
		s.SetTop(0)
		left += s.Width()
	}
	return c.commit("fit vertical", ordinal, len(shapes))
}

// FitHorizontal stacks the shapes in full-width rows of equal height.
func (c *Controller) FitHorizontal(ordinal int) error {
	shapes, err := c.shapesToDivide(ordinal)
	if err != nil {
		return err
	}
	count := float64(len(shapes))
	top := 0.0
	for _, s := range shapes {
		s.SetLockAspectRatio(false)
		s.SetWidth(c.slideWidth)
		s.SetHeight(c.slideHeight / count)
		s.SetLeft(0)
		s.SetTop(top)
		top += s.Height()
	}
	return c.commit("fit horizontal", ordinal, len(shapes))
}

// FitFour tiles the shapes left to right, wrapping to a new row once a row
// reaches the slide width. Both dimensions are divided by half the shape
// count, so only four shapes give a 2x2 grid.
func (c *Controller) FitFour(ordinal int) error {
	shapes, err := c.shapesToDivide(ordinal)
	if err != nil {
		return err
	}
	divisor := float64(len(shapes)) / 2
	left, top := 0.0, 0.0
	for _, s := range shapes {
		s.SetLockAspectRatio(false)
		s.SetWidth(c.slideWidth / divisor)
		s.SetHeight(c.slideHeight / divisor)
		s.SetLeft(left)
		s.SetTop(top)
		left += s.Width()
		if left >= c.slideWidth {
			left = 0
			top += s.Height()
		}
	}
	if len(shapes) != 4 {
		c.logger.Warn("fit four expects four shapes", slog.Int("slide", ordinal), slog.Int("shapes", len(shapes)))
	}
	return c.commit("fit four", ordinal, len(shapes))
}

func (c *Controller) shapesToDivide(ordinal int) ([]Shape, error) {
	shapes, err := c.shapes(ordinal)
	if err != nil {
		return nil, err
	}
	if len(shapes) == 0 {
		return nil, fmt.Errorf("%w on slide %d", ErrNoShapes, ordinal)
	}
	return shapes, nil
}

func (c *Controller) commit(op string, ordinal, shapes int) error {
	if err := c.doc.Commit(); err != nil {
		return fmt.Errorf("failed to save presentation: %w", err)
	}
	c.logger.Info("arranged slide", slog.String("layout", op), slog.Int("slide", ordinal), slog.Int("shapes", shapes))
	return nil
}
