// Package clipboard reads and clears the system clipboard.
package clipboard

import (
	"errors"

	"github.com/atotto/clipboard"
)

// ErrUnsupported is returned when no clipboard utility is available
// (e.g. a Linux session without xclip, xsel or wl-clipboard).
var ErrUnsupported = errors.New("system clipboard is not available")

// System implements img2ppt.Clipboard using github.com/atotto/clipboard.
type System struct{}

// New returns the system clipboard.
func New() *System {
	return &System{}
}

// Available reports whether the platform has a usable clipboard.
func Available() bool {
	return !clipboard.Unsupported
}

// ReadText returns the clipboard content as text.
func (s *System) ReadText() (string, error) {
	if clipboard.Unsupported {
		return "", ErrUnsupported
	}
	return clipboard.ReadAll()
}

// Clear empties the clipboard.
func (s *System) Clear() error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	return clipboard.WriteAll("")
}

// WriteText puts text on the clipboard.
func (s *System) WriteText(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	return clipboard.WriteAll(text)
}
