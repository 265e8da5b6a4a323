// Package ui is the img2ppt window: a slide selector and the paste and
// layout buttons.
package ui

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/VantageDataChat/img2ppt"
)

// Presentation is the controller surface the shell drives.
type Presentation interface {
	SlideOrdinals() ([]int, error)
	AddBlankSlide() error
	Paste(ordinal int) (*img2ppt.PasteRejected, error)
	Arrange(mode img2ppt.Arrangement, ordinal int) error
	Preview(ordinal, width int) (image.Image, error)
	Close() error
}

// State is the shell lifecycle state.
type State int

const (
	Running State = iota
	Terminated
)

func (s State) String() string {
	if s == Terminated {
		return "terminated"
	}
	return "running"
}

// Event is a user action.
type Event int

const (
	EventAddSlide Event = iota
	EventPasteImage
	EventStretchAll
	EventFitVertical
	EventFitHorizontal
	EventFitFour
	EventSelect
	EventExit
	EventWindowClosed
)

var eventNames = map[Event]string{
	EventAddSlide:      "Add Slide",
	EventPasteImage:    "Paste Image",
	EventStretchAll:    "Stretch All",
	EventFitVertical:   "Fit Vertical",
	EventFitHorizontal: "Fit Horizontal",
	EventFitFour:       "Fit Four",
	EventSelect:        "Select",
	EventExit:          "Exit",
	EventWindowClosed:  "Window Closed",
}

// String returns the button label of the event.
func (e Event) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return fmt.Sprintf("Event(%d)", int(e))
}

var layoutEvents = map[Event]img2ppt.Arrangement{
	EventStretchAll:    img2ppt.ArrangeStretch,
	EventFitVertical:   img2ppt.ArrangeFitVertical,
	EventFitHorizontal: img2ppt.ArrangeFitHorizontal,
	EventFitFour:       img2ppt.ArrangeFitFour,
}

// Shell runs one controller call per event and keeps the slide selector
// within the live slide count. It holds no toolkit state.
type Shell struct {
	ctl    Presentation
	logger *slog.Logger

	state    State
	ordinals []int
	selected int // 0 when there are no slides
	pending  int // ordinal of the next EventSelect
	status   string
	err      error
}

// NewShell syncs with the presentation and selects the last slide.
func NewShell(ctl Presentation, logger *slog.Logger) (*Shell, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Shell{ctl: ctl, logger: logger.With(slog.String("component", "ui")), status: "Ready"}
	if err := s.sync(); err != nil {
		return nil, err
	}
	s.selected = len(s.ordinals)
	return s, nil
}

func (s *Shell) State() State    { return s.state }
func (s *Shell) Ordinals() []int { return s.ordinals }
func (s *Shell) Selected() int   { return s.selected }
func (s *Shell) Status() string  { return s.status }
func (s *Shell) Err() error      { return s.err }

// Select handles a selector change to ordinal.
func (s *Shell) Select(ordinal int) State {
	s.pending = ordinal
	return s.Handle(EventSelect)
}

// Handle performs one loop iteration for ev and returns the new state.
func (s *Shell) Handle(ev Event) State {
	if s.state == Terminated {
		return s.state
	}
	s.err = nil
	if err := s.sync(); err != nil {
		s.fail(ev, err)
	}

	switch ev {
	case EventExit, EventWindowClosed:
		if err := s.ctl.Close(); err != nil {
			s.logger.Warn("close failed", slog.Any("err", err))
		}
		s.state = Terminated
		s.logger.Info("shell terminated", slog.String("event", ev.String()))

	case EventAddSlide:
		if err := s.ctl.AddBlankSlide(); err != nil {
			s.fail(ev, err)
			break
		}
		if err := s.sync(); err != nil {
			s.fail(ev, err)
			break
		}
		s.selected = len(s.ordinals)
		s.status = fmt.Sprintf("Added slide %d", s.selected)

	case EventPasteImage:
		if !s.needSlide(ev) {
			break
		}
		rejected, err := s.ctl.Paste(s.selected)
		switch {
		case err != nil:
			s.fail(ev, err)
		case rejected != nil:
			s.status = "Nothing pasted: " + rejected.Reason
		default:
			s.status = fmt.Sprintf("Pasted image on slide %d", s.selected)
		}

	case EventSelect:
		if n := len(s.ordinals); s.pending >= 1 && s.pending <= n {
			s.selected = s.pending
		}

	default:
		mode, ok := layoutEvents[ev]
		if !ok {
			s.logger.Warn("unknown event", slog.String("event", ev.String()))
			break
		}
		if !s.needSlide(ev) {
			break
		}
		if err := s.ctl.Arrange(mode, s.selected); err != nil {
			s.fail(ev, err)
			break
		}
		s.status = fmt.Sprintf("%s applied to slide %d", ev, s.selected)
	}
	return s.state
}

// Preview renders the selected slide, or returns nil when there is none.
func (s *Shell) Preview(width int) (image.Image, error) {
	if s.selected < 1 {
		return nil, nil
	}
	img, err := s.ctl.Preview(s.selected, width)
	if errors.Is(err, img2ppt.ErrPreviewUnsupported) {
		return nil, nil
	}
	return img, err
}

// sync refreshes the selector range and clamps the selection to it.
func (s *Shell) sync() error {
	ordinals, err := s.ctl.SlideOrdinals()
	if err != nil {
		return err
	}
	s.ordinals = ordinals
	if s.selected > len(ordinals) {
		s.selected = len(ordinals)
	}
	if s.selected < 1 && len(ordinals) > 0 {
		s.selected = 1
	}
	return nil
}

func (s *Shell) needSlide(ev Event) bool {
	if s.selected >= 1 {
		return true
	}
	s.fail(ev, img2ppt.ErrSlideOutOfRange)
	return false
}

func (s *Shell) fail(ev Event, err error) {
	s.err = err
	s.status = "Error: " + err.Error()
	s.logger.Error("action failed", slog.String("event", ev.String()), slog.Any("err", err))
}
