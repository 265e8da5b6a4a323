package img2ppt

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/VantageDataChat/img2ppt/pptx"
)

// FileHost hosts a presentation stored as a .pptx file. The file is the
// state of record: every commit saves it, and changes made to it by other
// programs are picked up on the next slide query.
type FileHost struct {
	Path string
	// Size is the slide size of new presentations.
	Size   pptx.SlideSize
	Logger *slog.Logger
}

func (h *FileHost) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Active opens the file, or returns ErrNoActiveDocument when it does not exist.
func (h *FileHost) Active() (Document, error) {
	if _, err := os.Stat(h.Path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoActiveDocument, h.Path)
	}
	d := &fileDocument{path: h.Path, logger: h.logger()}
	if err := d.reload(); err != nil {
		return nil, err
	}
	return d, nil
}

// NewDocument creates an empty presentation that is written to Path on commit.
func (h *FileHost) NewDocument() (Document, error) {
	size := h.Size
	if size.CX == 0 && size.CY == 0 {
		size = pptx.DefaultSlideSize
	}
	pres, err := pptx.New(size)
	if err != nil {
		return nil, err
	}
	return &fileDocument{path: h.Path, logger: h.logger(), pres: pres, shapes: map[*pptx.Picture]*fileShape{}}, nil
}

// fileDocument adapts a pptx.Presentation to Document.
type fileDocument struct {
	path   string
	logger *slog.Logger
	pres   *pptx.Presentation

	// stat of the file as last read or written
	modTime time.Time
	size    int64

	shapes map[*pptx.Picture]*fileShape
}

func (d *fileDocument) reload() error {
	pres, err := pptx.Open(d.path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", d.path, err)
	}
	if err := pres.Validate(); err != nil {
		d.logger.Warn("presentation has problems", slog.String("path", d.path), slog.Any("err", err))
	}
	d.pres = pres
	d.shapes = map[*pptx.Picture]*fileShape{}
	return d.record()
}

func (d *fileDocument) record() error {
	info, err := os.Stat(d.path)
	if err != nil {
		return err
	}
	d.modTime, d.size = info.ModTime(), info.Size()
	return nil
}

// refresh reloads the file when another program has changed it.
func (d *fileDocument) refresh() error {
	info, err := os.Stat(d.path)
	if errors.Is(err, os.ErrNotExist) {
		// Removed or never saved; the next commit writes it again.
		return nil
	}
	if err != nil {
		return err
	}
	if info.ModTime().Equal(d.modTime) && info.Size() == d.size {
		return nil
	}
	d.logger.Info("presentation changed on disk, reloading", slog.String("path", d.path))
	return d.reload()
}

func (d *fileDocument) SlideCount() (int, error) {
	if err := d.refresh(); err != nil {
		return 0, err
	}
	return d.pres.GetSlideCount(), nil
}

func (d *fileDocument) AppendBlankSlide() error {
	if err := d.refresh(); err != nil {
		return err
	}
	_, err := d.pres.AppendSlide()
	return err
}

func (d *fileDocument) SlideSize() (float64, float64, error) {
	size := d.pres.GetSlideSize()
	return size.WidthPoints(), size.HeightPoints(), nil
}

func (d *fileDocument) slide(ordinal int) (*pptx.Slide, error) {
	if err := d.refresh(); err != nil {
		return nil, err
	}
	if ordinal < 1 || ordinal > d.pres.GetSlideCount() {
		return nil, slideError(ordinal, d.pres.GetSlideCount())
	}
	return d.pres.GetSlide(ordinal - 1)
}

func (d *fileDocument) Shapes(ordinal int) ([]Shape, error) {
	slide, err := d.slide(ordinal)
	if err != nil {
		return nil, err
	}
	pics := slide.GetPictures()
	shapes := make([]Shape, len(pics))
	for i, pic := range pics {
		s, ok := d.shapes[pic]
		if !ok {
			s = newFileShape(pic)
			d.shapes[pic] = s
		}
		shapes[i] = s
	}
	return shapes, nil
}

func (d *fileDocument) AddPicture(ordinal int, path string, left, top float64) error {
	slide, err := d.slide(ordinal)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	pic, err := slide.AddPicture(data, "", pptx.Point(left), pptx.Point(top))
	if err != nil {
		return err
	}
	d.logger.Debug("inserted picture", slog.String("file", filepath.Base(path)),
		slog.Int("id", pic.GetID()), slog.Int64("cx", pic.GetWidth()), slog.Int64("cy", pic.GetHeight()))
	return nil
}

func (d *fileDocument) Commit() error {
	if err := d.pres.Save(d.path); err != nil {
		return err
	}
	return d.record()
}

func (d *fileDocument) RenderSlide(ordinal, width int) (image.Image, error) {
	if _, err := d.slide(ordinal); err != nil {
		return nil, err
	}
	opts := pptx.DefaultRenderOptions()
	if width > 0 {
		opts.Width = width
	}
	return d.pres.RenderSlide(ordinal-1, opts)
}

// fileShape keeps the point values last assigned so that reading a shape
// back returns exactly what was set, not the EMU-rounded value.
type fileShape struct {
	pic                      *pptx.Picture
	left, top, width, height float64
}

func newFileShape(pic *pptx.Picture) *fileShape {
	return &fileShape{
		pic:    pic,
		left:   pptx.EMUToPoint(pic.GetOffsetX()),
		top:    pptx.EMUToPoint(pic.GetOffsetY()),
		width:  pptx.EMUToPoint(pic.GetWidth()),
		height: pptx.EMUToPoint(pic.GetHeight()),
	}
}

func (s *fileShape) Left() float64         { return s.left }
func (s *fileShape) Top() float64          { return s.top }
func (s *fileShape) Width() float64        { return s.width }
func (s *fileShape) Height() float64       { return s.height }
func (s *fileShape) LockAspectRatio() bool { return s.pic.IsLockAspectRatio() }

func (s *fileShape) SetLeft(v float64)   { s.left = v; s.pic.SetOffsetX(pptx.Point(v)) }
func (s *fileShape) SetTop(v float64)    { s.top = v; s.pic.SetOffsetY(pptx.Point(v)) }
func (s *fileShape) SetWidth(v float64)  { s.width = v; s.pic.SetWidth(pptx.Point(v)) }
func (s *fileShape) SetHeight(v float64) { s.height = v; s.pic.SetHeight(pptx.Point(v)) }

func (s *fileShape) SetLockAspectRatio(lock bool) { s.pic.SetLockAspectRatio(lock) }
