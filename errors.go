package img2ppt

import (
	"errors"
	"fmt"
)

var (
	// ErrNoActiveDocument is returned by a Host when no presentation is open.
	ErrNoActiveDocument = errors.New("no active presentation")
	// ErrSlideOutOfRange is returned for a slide ordinal outside 1..SlideCount.
	ErrSlideOutOfRange = errors.New("slide ordinal out of range")
	// ErrNoShapes is returned by layouts that divide the slide by the shape count.
	ErrNoShapes = errors.New("no shapes to arrange")
	// ErrUnknownArrangement is returned by Arrange for an unrecognised mode.
	ErrUnknownArrangement = errors.New("unknown arrangement")
	// ErrPreviewUnsupported is returned when the document cannot render slides.
	ErrPreviewUnsupported = errors.New("document does not support previews")
)

// Reasons clipboard content is not pasted.
const (
	ReasonUnreadable = "clipboard unreadable"
	ReasonNotJPEG    = "not a .jpg path"
	ReasonMissing    = "file does not exist"
)

// PasteRejected explains why PasteImage ignored the clipboard.
type PasteRejected struct {
	Reason  string
	Content string
	Err     error
}

func (e *PasteRejected) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("paste rejected: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("paste rejected: %s: %q", e.Reason, e.Content)
}

func (e *PasteRejected) Unwrap() error { return e.Err }

func slideError(ordinal, count int) error {
	return fmt.Errorf("%w: slide %d of %d", ErrSlideOutOfRange, ordinal, count)
}
