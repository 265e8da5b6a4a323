package pptx

import (
	"image/color"
	"strings"
	"testing"
)

func TestValidateNewPresentation(t *testing.T) {
	p := newTestPresentation(t, 2)
	slide, _ := p.GetSlide(1)
	if _, err := slide.AddPicture(testJPEG(t, 4, 4, color.White), "", 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("expected valid presentation, got %v", err)
	}
	if err := roundTrip(t, p).Validate(); err != nil {
		t.Errorf("expected valid presentation after round trip, got %v", err)
	}
}

func TestValidateReportsProblems(t *testing.T) {
	p := foreignPresentation(t)
	slide, _ := p.GetSlide(0)
	slide.GetPictures()[0].SetWidth(-1)
	delete(p.pkg.parts, "ppt/media/photo.jpeg")

	err := p.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"picture 1: width is negative", "image part ppt/media/photo.jpeg is missing"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}

func TestIsValidImageExt(t *testing.T) {
	for name, want := range map[string]bool{
		"ppt/media/image1.jpeg": true,
		"ppt/media/image2.EMF":  true,
		"ppt/media/clip.mp4":    false,
		"ppt/media/noext":       false,
	} {
		if got := isValidImageExt(name); got != want {
			t.Errorf("isValidImageExt(%s) = %v, want %v", name, got, want)
		}
	}
}
