// Package img2ppt pastes clipboard images into the slides of a presentation
// and arranges the pictures on a slide.
//
// The presentation is reached through the Host, Document and Shape
// interfaces. FileHost implements them over a .pptx file with package pptx.
package img2ppt

import "image"

// Host locates the presentation to work on.
type Host interface {
	// Active returns the open presentation, or ErrNoActiveDocument.
	Active() (Document, error)
	// NewDocument creates an empty presentation with no slides.
	NewDocument() (Document, error)
}

// Document is the slide collection of one presentation. Slides are
// addressed by 1-based ordinal and re-resolved on every call.
type Document interface {
	SlideCount() (int, error)
	AppendBlankSlide() error
	// SlideSize returns the slide width and height in points.
	SlideSize() (width, height float64, err error)
	// Shapes returns the pictures on a slide in z-order.
	Shapes(ordinal int) ([]Shape, error)
	// AddPicture inserts the image file at (left, top) points at its native size.
	AddPicture(ordinal int, path string, left, top float64) error
	// Commit makes pending changes visible to other users of the document.
	Commit() error
}

// Shape is a picture on a slide. Geometry is in points.
type Shape interface {
	Left() float64
	Top() float64
	Width() float64
	Height() float64
	LockAspectRatio() bool

	SetLeft(v float64)
	SetTop(v float64)
	SetWidth(v float64)
	SetHeight(v float64)
	SetLockAspectRatio(lock bool)
}

// Previewer is implemented by documents that can draw a slide.
type Previewer interface {
	RenderSlide(ordinal, width int) (image.Image, error)
}
