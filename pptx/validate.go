package pptx

import (
	"fmt"
	"strings"
)

// Validate checks the presentation for structural issues and returns an error
// describing all problems found, or nil if the presentation is valid.
func (p *Presentation) Validate() error {
	var errs []string

	if p.size.CX <= 0 {
		errs = append(errs, "slide width (cx) must be positive")
	}
	if p.size.CY <= 0 {
		errs = append(errs, "slide height (cy) must be positive")
	}
	if p.layoutPart == "" {
		errs = append(errs, "no slide layout for new slides")
	}

	ids := map[int]bool{}
	for _, ref := range p.slideIDs {
		if ref.id < 256 {
			errs = append(errs, fmt.Sprintf("slide id %d is below 256", ref.id))
		}
		if ids[ref.id] {
			errs = append(errs, fmt.Sprintf("slide id %d is used twice", ref.id))
		}
		ids[ref.id] = true
	}

	for i, slide := range p.slides {
		prefix := fmt.Sprintf("slide %d", i+1)
		for _, e := range validateSlide(slide) {
			errs = append(errs, prefix+": "+e)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("validation failed:\n  %s", strings.Join(errs, "\n  "))
}

func validateSlide(s *Slide) []string {
	var errs []string
	shapeIDs := map[int]bool{}
	for j, pic := range s.pictures {
		prefix := fmt.Sprintf("picture %d", j+1)
		if pic.width < 0 {
			errs = append(errs, prefix+": width is negative")
		}
		if pic.height < 0 {
			errs = append(errs, prefix+": height is negative")
		}
		if shapeIDs[pic.id] {
			errs = append(errs, fmt.Sprintf("%s: shape id %d is used twice", prefix, pic.id))
		}
		shapeIDs[pic.id] = true

		rel, ok := findRel(s.rels, pic.embed)
		switch {
		case pic.embed == "":
			errs = append(errs, prefix+": picture has no image reference")
		case !ok:
			errs = append(errs, prefix+": image relationship "+pic.embed+" not found")
		case rel.TargetMode == "External":
			// linked images are not checked
		default:
			media := resolveTarget(s.part, rel.Target)
			if !s.pres.pkg.has(media) {
				errs = append(errs, prefix+": image part "+media+" is missing")
			} else if !isValidImageExt(media) {
				errs = append(errs, prefix+": unsupported image type: "+media)
			}
		}
	}
	return errs
}

// isValidImageExt checks if a media part has a supported image extension.
// EMF and WMF are valid in presentations even though they are not decoded here.
func isValidImageExt(name string) bool {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return false
	}
	switch strings.ToLower(name[i+1:]) {
	case "png", "jpeg", "jpg", "gif", "bmp", "tif", "tiff", "webp", "emf", "wmf", "svg":
		return true
	}
	return false
}
