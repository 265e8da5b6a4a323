// Package pptx reads, edits and writes PowerPoint presentation files (.pptx)
// following the Office Open XML (OOXML) standard.
//
// It is aimed at picture placement: slides can be appended, pictures embedded
// and their geometry and aspect lock edited. Everything else in a document
// (text, masters, layouts, themes, unknown parts) is carried through unchanged,
// so files created by PowerPoint or LibreOffice survive a read/write cycle.
package pptx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Presentation represents an in-memory PowerPoint presentation.
type Presentation struct {
	pkg          *opcPackage
	contentTypes *xmlContentTypes
	presPart     string
	presData     []byte
	presRels     []xmlRelationship
	pfx          prefixes

	// Byte positions inside presData used when the slide list is rewritten.
	sldIdLst span // whole p:sldIdLst element, invalid when absent
	sldSzAt  int64
	rootEnd  int64

	slideIDs   []slideRef
	slides     []*Slide
	size       SlideSize
	layoutPart string
}

type slideRef struct {
	id    int
	relID string
}

// New creates a new Presentation with no slides.
func New(size SlideSize) (*Presentation, error) {
	if size.CX <= 0 || size.CY <= 0 {
		return nil, fmt.Errorf("invalid slide size %dx%d", size.CX, size.CY)
	}
	pkg, err := newSkeleton(size, time.Now())
	if err != nil {
		return nil, err
	}
	return load(pkg)
}

// Open reads a PPTX file from disk.
func Open(path string) (*Presentation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	return ReadFrom(f, info.Size())
}

// ReadFrom reads a PPTX from an io.ReaderAt with the given size.
func ReadFrom(r io.ReaderAt, size int64) (*Presentation, error) {
	pkg, err := readPackage(r, size)
	if err != nil {
		return nil, err
	}
	return load(pkg)
}

func load(pkg *opcPackage) (*Presentation, error) {
	p := &Presentation{pkg: pkg, presPart: partPresentation, sldIdLst: span{-1, -1}, sldSzAt: -1, rootEnd: -1}

	ctData, ok := pkg.get(partContentTypes)
	if !ok {
		return nil, errors.New("not a presentation: [Content_Types].xml missing")
	}
	ct, err := parseContentTypes(ctData)
	if err != nil {
		return nil, err
	}
	p.contentTypes = ct

	if relData, ok := pkg.get(partRootRels); ok {
		rels, err := parseRelationships(relData)
		if err != nil {
			return nil, err
		}
		for _, rel := range rels {
			if rel.Type == relTypeOfficeDoc {
				p.presPart = resolveTarget("", rel.Target)
			}
		}
	}

	presData, ok := pkg.get(p.presPart)
	if !ok {
		return nil, fmt.Errorf("not a presentation: %s missing", p.presPart)
	}
	p.presData = presData

	if relData, ok := pkg.get(relsPath(p.presPart)); ok {
		rels, err := parseRelationships(relData)
		if err != nil {
			return nil, err
		}
		p.presRels = rels
	}

	if err := p.parsePresentationXML(); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", p.presPart, err)
	}

	for _, ref := range p.slideIDs {
		rel, ok := findRel(p.presRels, ref.relID)
		if !ok {
			return nil, fmt.Errorf("slide id %d: relationship %s not found", ref.id, ref.relID)
		}
		slide, err := parseSlide(p, resolveTarget(p.presPart, rel.Target))
		if err != nil {
			return nil, err
		}
		p.slides = append(p.slides, slide)
	}

	p.layoutPart = p.findBlankLayout()
	return p, nil
}

func (p *Presentation) parsePresentationXML() error {
	dec := xml.NewDecoder(bytes.NewReader(p.presData))
	depth := 0
	inList := false
	found := false
	for {
		before := dec.InputOffset()
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		after := dec.InputOffset()

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 1 {
				p.pfx = rootPrefixes(t)
				continue
			}
			switch {
			case depth == 2 && t.Name.Local == "sldIdLst":
				p.sldIdLst.start = before
				inList = true
			case depth == 3 && inList && t.Name.Local == "sldId":
				id, _ := strconv.Atoi(rawAttr(t.Attr, "", "id"))
				relID := ""
				for _, a := range t.Attr {
					if a.Name.Local == "id" && a.Name.Space != "" {
						relID = a.Value
					}
				}
				p.slideIDs = append(p.slideIDs, slideRef{id: id, relID: relID})
			case depth == 2 && t.Name.Local == "sldSz":
				cx, _ := strconv.ParseInt(rawAttr(t.Attr, "", "cx"), 10, 64)
				cy, _ := strconv.ParseInt(rawAttr(t.Attr, "", "cy"), 10, 64)
				p.size = sizeFromType(cx, cy, rawAttr(t.Attr, "", "type"))
				p.sldSzAt = before
				found = true
			}
		case xml.EndElement:
			if depth == 2 && inList && t.Name.Local == "sldIdLst" {
				p.sldIdLst.end = after
				inList = false
			}
			if depth == 1 {
				p.rootEnd = before
			}
			depth--
		}
	}
	if !found {
		// PowerPoint's default when sldSz is absent.
		p.size = SlideSize{CX: 9144000, CY: 6858000, Name: SizeScreen4x3}
	}
	return nil
}

// findBlankLayout picks the layout new slides are based on: a layout of
// type "blank" when the document has one, otherwise the first layout.
func (p *Presentation) findBlankLayout() string {
	var layouts []string
	for _, name := range p.pkg.names {
		if strings.HasPrefix(name, "ppt/slideLayouts/") && path.Ext(name) == ".xml" {
			layouts = append(layouts, name)
		}
	}
	sort.Slice(layouts, func(i, j int) bool { return naturalLess(layouts[i], layouts[j]) })
	for _, name := range layouts {
		data, _ := p.pkg.get(name)
		if layoutType(data) == "blank" {
			return name
		}
	}
	if len(layouts) > 0 {
		return layouts[0]
	}
	return ""
}

func layoutType(data []byte) string {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.RawToken()
		if err != nil {
			return ""
		}
		if se, ok := tok.(xml.StartElement); ok {
			return rawAttr(se.Attr, "", "type")
		}
	}
}

// naturalLess orders slideLayout2.xml before slideLayout10.xml.
func naturalLess(a, b string) bool {
	na, nb := trailingNumber(a), trailingNumber(b)
	if na != nb && strings.TrimRight(strings.TrimSuffix(a, path.Ext(a)), "0123456789") ==
		strings.TrimRight(strings.TrimSuffix(b, path.Ext(b)), "0123456789") {
		return na < nb
	}
	return a < b
}

func trailingNumber(name string) int {
	base := strings.TrimSuffix(name, path.Ext(name))
	i := len(base)
	for i > 0 && base[i-1] >= '0' && base[i-1] <= '9' {
		i--
	}
	n, _ := strconv.Atoi(base[i:])
	return n
}

// GetSlideSize returns the slide dimensions.
func (p *Presentation) GetSlideSize() SlideSize { return p.size }

// GetSlideCount returns the number of slides.
func (p *Presentation) GetSlideCount() int { return len(p.slides) }

// GetSlide returns a slide by 0-based index.
func (p *Presentation) GetSlide(index int) (*Slide, error) {
	if index < 0 || index >= len(p.slides) {
		return nil, fmt.Errorf("slide index %d out of range (0-%d)", index, len(p.slides)-1)
	}
	return p.slides[index], nil
}

// Slides returns all slides.
func (p *Presentation) Slides() []*Slide {
	return p.slides
}

// AppendSlide adds an empty slide based on the blank layout at the end.
func (p *Presentation) AppendSlide() (*Slide, error) {
	if p.layoutPart == "" {
		return nil, errors.New("presentation has no slide layout")
	}
	part := p.pkg.uniqueName("ppt/slides/slide%d.xml")
	p.pkg.put(part, blankSlideXML())
	p.contentTypes.ensureOverride(part, ctSlide)

	slide, err := parseSlide(p, part)
	if err != nil {
		return nil, err
	}
	slide.rels = []xmlRelationship{{ID: "rId1", Type: relTypeSlideLayout, Target: relativeTarget(part, p.layoutPart)}}
	slide.relsChanged = true

	relID := nextRelID(p.presRels)
	p.presRels = append(p.presRels, xmlRelationship{ID: relID, Type: relTypeSlide, Target: relativeTarget(p.presPart, part)})

	id := 255
	for _, ref := range p.slideIDs {
		if ref.id > id {
			id = ref.id
		}
	}
	p.slideIDs = append(p.slideIDs, slideRef{id: id + 1, relID: relID})
	p.slides = append(p.slides, slide)
	return slide, nil
}

// renderPresentationXML rewrites p:sldIdLst to match the slide list.
func (p *Presentation) renderPresentationXML() []byte {
	var sb strings.Builder
	if len(p.slideIDs) > 0 {
		fmt.Fprintf(&sb, "<%s%s>", qname(p.pfx.p, "sldIdLst"), p.pfx.rDecl())
		for _, ref := range p.slideIDs {
			fmt.Fprintf(&sb, `<%s id="%d" %s="%s"/>`, qname(p.pfx.p, "sldId"), ref.id, qname(p.pfx.r, "id"), ref.relID)
		}
		fmt.Fprintf(&sb, "</%s>", qname(p.pfx.p, "sldIdLst"))
	}

	at := span{p.sldIdLst.start, p.sldIdLst.end}
	switch {
	case at.valid():
	case p.sldSzAt >= 0:
		at = span{p.sldSzAt, p.sldSzAt}
	case p.rootEnd >= 0:
		at = span{p.rootEnd, p.rootEnd}
	default:
		return p.presData
	}
	return splice(p.presData, []edit{{at: at, repl: sb.String()}})
}

// flush writes every modified part back into the package.
func (p *Presentation) flush() error {
	for _, slide := range p.slides {
		p.pkg.put(slide.part, slide.render())
		if slide.relsChanged {
			data, err := marshalRelationships(slide.rels)
			if err != nil {
				return err
			}
			p.pkg.put(relsPath(slide.part), data)
		}
	}

	p.pkg.put(p.presPart, p.renderPresentationXML())
	presRels, err := marshalRelationships(p.presRels)
	if err != nil {
		return err
	}
	p.pkg.put(relsPath(p.presPart), presRels)

	ct, err := marshalXML(p.contentTypes)
	if err != nil {
		return err
	}
	p.pkg.put(partContentTypes, ct)
	return nil
}

// WriteTo writes the presentation to a writer in PPTX format.
func (p *Presentation) WriteTo(w io.Writer) error {
	if err := p.flush(); err != nil {
		return err
	}
	return p.pkg.writeTo(w)
}

// Save writes the presentation to a PPTX file. The file is written to a
// temporary sibling first and renamed into place.
func (p *Presentation) Save(path string) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	tmp := f.Name()

	writeErr := p.WriteTo(f)
	closeErr := f.Close()
	if writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		os.Remove(tmp)
		return writeErr
	}
	if err := os.Chmod(tmp, 0644); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
