package pptx

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestRenderSlideDimensions(t *testing.T) {
	p := newTestPresentation(t, 1)
	img, err := p.RenderSlide(0, &RenderOptions{Width: 320})
	if err != nil {
		t.Fatalf("RenderSlide failed: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 320 || b.Dy() != 180 {
		t.Errorf("expected 320x180, got %dx%d", b.Dx(), b.Dy())
	}
	r, g, bl, _ := img.At(10, 10).RGBA()
	if r>>8 != 255 || g>>8 != 255 || bl>>8 != 255 {
		t.Errorf("expected white background, got %v", img.At(10, 10))
	}
}

func TestRenderSlideDrawsPictures(t *testing.T) {
	p := newTestPresentation(t, 1)
	slide, _ := p.GetSlide(0)
	pic, err := slide.AddPicture(testJPEG(t, 16, 16, color.RGBA{R: 255, A: 255}), "", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	// Left half of the slide.
	pic.SetSize(Point(480), Point(540))

	img, err := p.RenderSlide(0, &RenderOptions{Width: 96})
	if err != nil {
		t.Fatalf("RenderSlide failed: %v", err)
	}
	r, g, b, _ := img.At(24, 40).RGBA()
	if r>>8 < 200 || g>>8 > 60 || b>>8 > 60 {
		t.Errorf("expected red inside picture, got %v", img.At(24, 40))
	}
	r, g, b, _ = img.At(72, 40).RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Errorf("expected white outside picture, got %v", img.At(72, 40))
	}
}

func TestRenderSlidePlaceholderForMissingMedia(t *testing.T) {
	p := foreignPresentation(t)
	slide, _ := p.GetSlide(0)
	pic := slide.GetPictures()[1]
	pic.SetPosition(0, 0).SetSize(Point(960), Point(540))
	p.pkg.put("ppt/media/photo.jpeg", []byte("corrupt"))

	img, err := p.RenderSlide(0, &RenderOptions{Width: 96})
	if err != nil {
		t.Fatalf("RenderSlide failed: %v", err)
	}
	if got := color.RGBAModel.Convert(img.At(48, 40)).(color.RGBA); got != colorPlaceholder {
		t.Errorf("expected placeholder colour, got %v", got)
	}
}

func TestRenderSlideOutOfRange(t *testing.T) {
	p := newTestPresentation(t, 0)
	if _, err := p.RenderSlide(0, nil); err == nil {
		t.Error("expected error rendering a missing slide")
	}
}

func TestSaveSlidePreview(t *testing.T) {
	p := newTestPresentation(t, 1)
	path := filepath.Join(t.TempDir(), "preview.png")
	if err := p.SaveSlidePreview(0, path, nil); err != nil {
		t.Fatalf("SaveSlidePreview failed: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode failed: %v", err)
	}
	if img.Bounds().Dx() != 480 {
		t.Errorf("expected default width 480, got %d", img.Bounds().Dx())
	}
}
