package img2ppt

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Clipboard is the part of the OS clipboard PasteImage uses.
type Clipboard interface {
	ReadText() (string, error)
	Clear() error
}

// pasteSuffix is the only file name suffix PasteImage accepts.
const pasteSuffix = ".jpg"

// PasteImage inserts the image whose path is on the clipboard at the top-left
// corner of a slide, then clears the clipboard. Only existing files named
// *.jpg are pasted. Any other content leaves the slide and clipboard as they
// are and returns false with a nil error.
func (c *Controller) PasteImage(ordinal int) (bool, error) {
	rejected, err := c.Paste(ordinal)
	return rejected == nil && err == nil, err
}

// Paste is PasteImage reporting why nothing was pasted. The rejection comes
// from the same clipboard read the paste decision was made on. Both results
// are nil when the image was inserted.
func (c *Controller) Paste(ordinal int) (*PasteRejected, error) {
	path, rejected := c.clipboardImage()
	if rejected != nil {
		c.logger.Debug("clipboard not pasted", slog.String("reason", rejected.Reason), slog.String("content", rejected.Content))
		return rejected, nil
	}
	if err := c.checkOrdinal(ordinal); err != nil {
		return nil, err
	}
	if err := c.doc.AddPicture(ordinal, path, 0, 0); err != nil {
		return nil, fmt.Errorf("failed to insert %s: %w", path, err)
	}
	if err := c.doc.Commit(); err != nil {
		return nil, fmt.Errorf("failed to save presentation: %w", err)
	}
	if err := c.clip.Clear(); err != nil {
		c.logger.Warn("failed to clear clipboard", slog.Any("err", err))
	}
	c.logger.Info("pasted image", slog.Int("slide", ordinal), slog.String("path", path))
	return nil, nil
}

// CheckClipboard reports why the clipboard content would not be pasted, or
// nil when PasteImage would accept it.
func (c *Controller) CheckClipboard() *PasteRejected {
	_, rejected := c.clipboardImage()
	return rejected
}

func (c *Controller) clipboardImage() (string, *PasteRejected) {
	content, err := c.clip.ReadText()
	if err != nil {
		return "", &PasteRejected{Reason: ReasonUnreadable, Err: err}
	}
	if !strings.HasSuffix(content, pasteSuffix) {
		return "", &PasteRejected{Reason: ReasonNotJPEG, Content: content}
	}
	path := filepath.Clean(content)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = nil
		}
		return "", &PasteRejected{Reason: ReasonMissing, Content: content, Err: err}
	}
	if !info.Mode().IsRegular() {
		return "", &PasteRejected{Reason: ReasonMissing, Content: content}
	}
	return path, nil
}
