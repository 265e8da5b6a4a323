package ui

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/VantageDataChat/img2ppt"
	"github.com/VantageDataChat/img2ppt/pptx"
)

type memClipboard struct {
	text   string
	next   string // replaces text after a read when set
	reads  int
	closed bool
}

func (c *memClipboard) ReadText() (string, error) {
	text := c.text
	c.reads++
	if c.next != "" {
		c.text, c.next = c.next, ""
	}
	return text, nil
}

func (c *memClipboard) Clear() error { c.text = ""; return nil }
func (c *memClipboard) Close() error { c.closed = true; return nil }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	path  string
	dir   string
	clip  *memClipboard
	ctl   *img2ppt.Controller
	shell *Shell
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{dir: dir, path: filepath.Join(dir, "deck.pptx"), clip: &memClipboard{}}
	host := &img2ppt.FileHost{Path: f.path, Logger: quietLogger()}
	ctl, err := img2ppt.Acquire(host, f.clip, img2ppt.WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	f.ctl = ctl
	if f.shell, err = NewShell(ctl, quietLogger()); err != nil {
		t.Fatalf("NewShell failed: %v", err)
	}
	return f
}

func (f *fixture) jpeg(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 12, 9)), nil); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(f.dir, "copied.jpg")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func (f *fixture) pictures(t *testing.T, ordinal int) []*pptx.Picture {
	t.Helper()
	pres, err := pptx.Open(f.path)
	if err != nil {
		t.Fatal(err)
	}
	slide, err := pres.GetSlide(ordinal - 1)
	if err != nil {
		t.Fatal(err)
	}
	return slide.GetPictures()
}

func TestShellStartsOnLastSlide(t *testing.T) {
	f := newFixture(t)
	if f.shell.State() != Running {
		t.Fatalf("expected running, got %v", f.shell.State())
	}
	if got := f.shell.Ordinals(); len(got) != 1 || got[0] != 1 {
		t.Errorf("expected [1], got %v", got)
	}
	if f.shell.Selected() != 1 {
		t.Errorf("expected slide 1 selected, got %d", f.shell.Selected())
	}
}

func TestShellAddSlideSelectsNewSlide(t *testing.T) {
	f := newFixture(t)
	for want := 2; want <= 4; want++ {
		f.shell.Handle(EventAddSlide)
		if f.shell.Selected() != want || len(f.shell.Ordinals()) != want {
			t.Fatalf("expected slide %d of %d, got %d of %d", want, want, f.shell.Selected(), len(f.shell.Ordinals()))
		}
	}
	if f.shell.Status() != "Added slide 4" {
		t.Errorf("unexpected status %q", f.shell.Status())
	}
}

func TestShellSelect(t *testing.T) {
	f := newFixture(t)
	f.shell.Handle(EventAddSlide)
	f.shell.Handle(EventAddSlide)
	f.shell.Select(2)
	if f.shell.Selected() != 2 {
		t.Errorf("expected slide 2, got %d", f.shell.Selected())
	}
	f.shell.Select(9)
	if f.shell.Selected() != 2 {
		t.Errorf("out of range selection should be ignored, got %d", f.shell.Selected())
	}
}

func TestShellPasteAndArrange(t *testing.T) {
	f := newFixture(t)
	f.shell.Handle(EventAddSlide)
	f.shell.Select(1)
	img := f.jpeg(t)
	for i := 0; i < 4; i++ {
		f.clip.text = img
		f.shell.Handle(EventPasteImage)
		if f.shell.Err() != nil {
			t.Fatalf("paste failed: %v", f.shell.Err())
		}
	}
	if f.clip.text != "" {
		t.Error("expected clipboard cleared")
	}
	if n := len(f.pictures(t, 1)); n != 4 {
		t.Fatalf("expected 4 pictures on slide 1, got %d", n)
	}

	f.shell.Handle(EventFitFour)
	if f.shell.Err() != nil {
		t.Fatalf("fit four failed: %v", f.shell.Err())
	}
	if !strings.Contains(f.shell.Status(), "Fit Four") {
		t.Errorf("unexpected status %q", f.shell.Status())
	}
	pics := f.pictures(t, 1)
	if pics[3].GetOffsetX() != pptx.Point(480) || pics[3].GetOffsetY() != pptx.Point(270) {
		t.Errorf("fourth picture at %d,%d", pics[3].GetOffsetX(), pics[3].GetOffsetY())
	}

	f.shell.Handle(EventStretchAll)
	for i, pic := range f.pictures(t, 1) {
		if pic.GetWidth() != pptx.Point(960) || pic.GetOffsetX() != 0 {
			t.Errorf("picture %d not stretched", i)
		}
	}
}

func TestShellPasteRejected(t *testing.T) {
	f := newFixture(t)
	f.clip.text = "just some text"
	f.shell.Handle(EventPasteImage)
	if f.shell.Err() != nil {
		t.Fatalf("rejected paste should not be an error: %v", f.shell.Err())
	}
	if f.shell.Status() != "Nothing pasted: "+img2ppt.ReasonNotJPEG {
		t.Errorf("unexpected status %q", f.shell.Status())
	}
	if f.clip.text != "just some text" {
		t.Error("clipboard should be unchanged")
	}
}

func TestShellPasteStatusMatchesRejectedContent(t *testing.T) {
	f := newFixture(t)
	f.clip.text = "just some text"
	f.clip.next = f.jpeg(t)
	f.shell.Handle(EventPasteImage)
	if f.shell.Status() != "Nothing pasted: "+img2ppt.ReasonNotJPEG {
		t.Errorf("unexpected status %q", f.shell.Status())
	}
	if f.clip.reads != 1 {
		t.Errorf("expected one clipboard read, got %d", f.clip.reads)
	}
	if n := len(f.pictures(t, 1)); n != 0 {
		t.Errorf("expected no pictures, got %d", n)
	}
}

func TestShellLayoutErrorKeepsRunning(t *testing.T) {
	f := newFixture(t)
	if f.shell.Handle(EventFitVertical) != Running {
		t.Fatal("shell stopped on a layout error")
	}
	if !errors.Is(f.shell.Err(), img2ppt.ErrNoShapes) {
		t.Errorf("expected ErrNoShapes, got %v", f.shell.Err())
	}
	if !strings.HasPrefix(f.shell.Status(), "Error: ") {
		t.Errorf("unexpected status %q", f.shell.Status())
	}
}

func TestShellClampsAfterExternalDelete(t *testing.T) {
	f := newFixture(t)
	f.shell.Handle(EventAddSlide)
	f.shell.Handle(EventAddSlide)
	if f.shell.Selected() != 3 {
		t.Fatalf("expected slide 3, got %d", f.shell.Selected())
	}

	// Another program replaces the deck with a single-slide one.
	pres, err := pptx.New(pptx.DefaultSlideSize)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := pres.AppendSlide(); err != nil {
		t.Fatal(err)
	}
	if err := pres.Save(f.path); err != nil {
		t.Fatal(err)
	}

	f.shell.Handle(EventStretchAll)
	if f.shell.Selected() != 1 || len(f.shell.Ordinals()) != 1 {
		t.Errorf("expected selection clamped to 1 of 1, got %d of %d", f.shell.Selected(), len(f.shell.Ordinals()))
	}
	if f.shell.Err() != nil {
		t.Errorf("stretch on an empty slide should succeed: %v", f.shell.Err())
	}
}

func TestShellExit(t *testing.T) {
	for _, ev := range []Event{EventExit, EventWindowClosed} {
		f := newFixture(t)
		if f.shell.Handle(ev) != Terminated {
			t.Fatalf("%v: expected terminated", ev)
		}
		if !f.clip.closed {
			t.Errorf("%v: expected clipboard released", ev)
		}
		if f.shell.Handle(EventAddSlide) != Terminated {
			t.Errorf("%v: events after termination should be ignored", ev)
		}
		if n, _ := f.ctl.SlideCount(); n != 1 {
			t.Errorf("%v: expected no slide added after exit, got %d slides", ev, n)
		}
	}
}

func TestShellPreview(t *testing.T) {
	f := newFixture(t)
	img, err := f.shell.Preview(160)
	if err != nil {
		t.Fatal(err)
	}
	if img == nil || img.Bounds().Dx() != 160 {
		t.Errorf("unexpected preview %v", img)
	}
}

func TestEventString(t *testing.T) {
	if EventFitHorizontal.String() != "Fit Horizontal" {
		t.Errorf("unexpected label %q", EventFitHorizontal.String())
	}
	if Event(99).String() != "Event(99)" {
		t.Errorf("unexpected label %q", Event(99).String())
	}
}
