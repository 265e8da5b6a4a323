package pptx

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"strconv"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// RenderOptions configures slide preview rendering.
type RenderOptions struct {
	// Width is the output image width in pixels. Height follows the slide aspect ratio.
	// Default: 480
	Width int
	// Labels draws each picture's 1-based position in the shape tree.
	Labels bool
}

// DefaultRenderOptions returns default rendering options.
func DefaultRenderOptions() *RenderOptions {
	return &RenderOptions{Width: 480, Labels: true}
}

var (
	colorBackground  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colorPlaceholder = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	colorOutline     = color.RGBA{R: 68, G: 114, B: 196, A: 255}
	colorLabel       = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// RenderSlide draws a preview of the pictures on a slide. Text and other
// shapes are not drawn.
func (p *Presentation) RenderSlide(index int, opts *RenderOptions) (image.Image, error) {
	slide, err := p.GetSlide(index)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		opts = DefaultRenderOptions()
	}
	imgW := opts.Width
	if imgW <= 0 {
		imgW = 480
	}
	slideW := float64(p.size.CX)
	slideH := float64(p.size.CY)
	imgH := int(float64(imgW) * slideH / slideW)
	if imgH <= 0 {
		imgH = 1
	}

	r := &renderer{
		img:    image.NewRGBA(image.Rect(0, 0, imgW, imgH)),
		scaleX: float64(imgW) / slideW,
		scaleY: float64(imgH) / slideH,
	}
	draw.Draw(r.img, r.img.Bounds(), &image.Uniform{colorBackground}, image.Point{}, draw.Src)

	for i, pic := range slide.pictures {
		r.renderPicture(slide, pic)
		if opts.Labels {
			r.drawLabel(pic, strconv.Itoa(i+1))
		}
	}
	return r.img, nil
}

// SaveSlidePreview renders a slide and writes it to path as PNG.
func (p *Presentation) SaveSlidePreview(index int, path string, opts *RenderOptions) error {
	img, err := p.RenderSlide(index, opts)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return f.Close()
}

type renderer struct {
	img    *image.RGBA
	scaleX float64
	scaleY float64
}

func (r *renderer) rect(pic *Picture) image.Rectangle {
	x := int(float64(pic.offsetX) * r.scaleX)
	y := int(float64(pic.offsetY) * r.scaleY)
	w := int(float64(pic.width) * r.scaleX)
	h := int(float64(pic.height) * r.scaleY)
	return image.Rect(x, y, x+w, y+h)
}

func (r *renderer) renderPicture(slide *Slide, pic *Picture) {
	dst := r.rect(pic)
	if dst.Empty() {
		return
	}
	data, err := slide.ImageData(pic)
	if err == nil {
		var src image.Image
		if src, _, err = image.Decode(bytes.NewReader(data)); err == nil {
			xdraw.ApproxBiLinear.Scale(r.img, dst, src, src.Bounds(), draw.Over, nil)
		}
	}
	if err != nil {
		// If we can't decode, just draw a placeholder rectangle
		draw.Draw(r.img, dst.Intersect(r.img.Bounds()), &image.Uniform{colorPlaceholder}, image.Point{}, draw.Src)
	}
	r.drawRect(dst, colorOutline)
}

func (r *renderer) drawRect(rect image.Rectangle, c color.RGBA) {
	for x := rect.Min.X; x < rect.Max.X; x++ {
		r.setPixel(x, rect.Min.Y, c)
		r.setPixel(x, rect.Max.Y-1, c)
	}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		r.setPixel(rect.Min.X, y, c)
		r.setPixel(rect.Max.X-1, y, c)
	}
}

func (r *renderer) setPixel(x, y int, c color.RGBA) {
	if image.Pt(x, y).In(r.img.Bounds()) {
		r.img.SetRGBA(x, y, c)
	}
}

func (r *renderer) drawLabel(pic *Picture, text string) {
	rect := r.rect(pic)
	face := basicfont.Face7x13
	textW := font.MeasureString(face, text).Ceil()
	lineH := face.Metrics().Height.Ceil()
	box := image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+textW+6, rect.Min.Y+lineH+4)
	draw.Draw(r.img, box.Intersect(r.img.Bounds()), &image.Uniform{colorOutline}, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  r.img,
		Src:  &image.Uniform{colorLabel},
		Face: face,
		Dot:  fixed.P(box.Min.X+3, box.Min.Y+2+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}
