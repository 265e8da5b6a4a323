package pptx

import "fmt"

// SlideSize represents the slide dimensions of a presentation.
type SlideSize struct {
	CX   int64 // width in EMU
	CY   int64 // height in EMU
	Name string
}

// Standard slide size names.
const (
	SizeScreen4x3   = "screen4x3"
	SizeScreen16x9  = "screen16x9"
	SizeScreen16x10 = "screen16x10"
	SizeA4          = "A4"
	SizeLetter      = "letter"
	SizeCustom      = "custom"
)

// DefaultSlideSize is the widescreen size PowerPoint uses for new documents.
var DefaultSlideSize = SlideSize{CX: 12192000, CY: 6858000, Name: SizeScreen16x9}

// NamedSlideSize returns a predefined slide size.
func NamedSlideSize(name string) (SlideSize, error) {
	switch name {
	case SizeScreen4x3:
		return SlideSize{CX: 9144000, CY: 6858000, Name: name}, nil
	case SizeScreen16x9, "":
		return DefaultSlideSize, nil
	case SizeScreen16x10:
		return SlideSize{CX: 10972800, CY: 6858000, Name: name}, nil
	case SizeA4:
		return SlideSize{CX: 9906000, CY: 6858000, Name: name}, nil
	case SizeLetter:
		return SlideSize{CX: 9144000, CY: 6858000, Name: name}, nil
	}
	return SlideSize{}, fmt.Errorf("unknown slide size %q", name)
}

// WidthPoints returns the slide width in points.
func (s SlideSize) WidthPoints() float64 { return EMUToPoint(s.CX) }

// HeightPoints returns the slide height in points.
func (s SlideSize) HeightPoints() float64 { return EMUToPoint(s.CY) }

// presentation.xml carries a type attribute for the built-in sizes.
func (s SlideSize) typeAttr() string {
	switch s.Name {
	case SizeScreen4x3:
		return "screen4x3"
	case SizeScreen16x10:
		return "screen16x10"
	case SizeA4:
		return "A4"
	case SizeLetter:
		return "letter"
	}
	return ""
}

func sizeFromType(cx, cy int64, typ string) SlideSize {
	s := SlideSize{CX: cx, CY: cy, Name: SizeCustom}
	if typ != "" {
		if named, err := NamedSlideSize(typ); err == nil && named.CX == cx && named.CY == cy {
			return named
		}
	}
	if cx == DefaultSlideSize.CX && cy == DefaultSlideSize.CY {
		return DefaultSlideSize
	}
	return s
}
