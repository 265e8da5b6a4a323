package pptx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// prefixes are the raw namespace prefixes a part binds for PresentationML,
// DrawingML and relationships.
type prefixes struct {
	p, a, r      string
	declA, declR bool
}

// aDecl returns a namespace declaration when the part root does not bind DrawingML.
func (pf prefixes) aDecl() string {
	if pf.declA {
		return ""
	}
	return fmt.Sprintf(` xmlns:%s="%s"`, pf.a, nsDrawingML)
}

func (pf prefixes) rDecl() string {
	if pf.declR {
		return ""
	}
	return fmt.Sprintf(` xmlns:%s="%s"`, pf.r, nsOfficeDocRels)
}

func rootPrefixes(root xml.StartElement) prefixes {
	pf := prefixes{p: root.Name.Space, a: "a", r: "r"}
	for _, attr := range root.Attr {
		if attr.Name.Space != "xmlns" {
			continue
		}
		switch attr.Value {
		case nsDrawingML:
			pf.a, pf.declA = attr.Name.Local, true
		case nsOfficeDocRels:
			pf.r, pf.declR = attr.Name.Local, true
		}
	}
	return pf
}

// Slide is one slide part of a presentation.
type Slide struct {
	pres     *Presentation
	part     string
	data     []byte // slide XML as read; edits are applied on render
	rels     []xmlRelationship
	pictures []*Picture
	treeEnd  int64 // offset of the spTree end tag
	pfx      prefixes
	maxID    int

	relsChanged bool
}

// GetPartName returns the package part name of the slide.
func (s *Slide) GetPartName() string { return s.part }

// GetPictures returns the top-level pictures of the shape tree in document order.
func (s *Slide) GetPictures() []*Picture { return s.pictures }

// GetPictureCount returns the number of top-level pictures.
func (s *Slide) GetPictureCount() int { return len(s.pictures) }

func parseSlide(pres *Presentation, part string) (*Slide, error) {
	data, ok := pres.pkg.get(part)
	if !ok {
		return nil, fmt.Errorf("slide part not found: %s", part)
	}
	s := &Slide{pres: pres, part: part, data: data, treeEnd: -1}

	if relData, ok := pres.pkg.get(relsPath(part)); ok {
		rels, err := parseRelationships(relData)
		if err != nil {
			return nil, err
		}
		s.rels = rels
	}

	if err := s.parseXML(); err != nil {
		return nil, fmt.Errorf("failed to parse slide %s: %w", part, err)
	}
	if s.treeEnd < 0 {
		return nil, fmt.Errorf("slide %s has no shape tree", part)
	}
	return s, nil
}

func (s *Slide) parseXML() error {
	type parseState struct {
		stack     []string
		treeDepth int // depth of p:spTree, 0 when outside
		pic       *Picture
		inSpPr    bool // p:spPr of the current picture
		inXfrm    bool
	}
	var st parseState

	parent := func() string {
		if len(st.stack) < 2 {
			return ""
		}
		return st.stack[len(st.stack)-2]
	}

	dec := xml.NewDecoder(bytes.NewReader(s.data))
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
			st.stack = append(st.stack, t.Name.Local)
			depth := len(st.stack)
			if depth == 1 {
				s.pfx = rootPrefixes(t)
				continue
			}

			if t.Name.Local == "cNvPr" {
				if id, err := strconv.Atoi(rawAttr(t.Attr, "", "id")); err == nil && id > s.maxID {
					s.maxID = id
				}
			}

			switch {
			case t.Name.Local == "spTree" && parent() == "cSld" && st.treeDepth == 0:
				st.treeDepth = depth
			case st.treeDepth > 0 && depth == st.treeDepth+1 && t.Name.Local == "pic":
				st.pic = &Picture{src: &pictureSource{whole: span{start: before}}}
			case st.pic != nil:
				s.parsePictureElement(st.pic, t, parent(), span{before, after}, &st.inSpPr, &st.inXfrm)
			}

		case xml.EndElement:
			depth := len(st.stack)
			if depth == 0 {
				continue
			}
			switch {
			case st.treeDepth > 0 && depth == st.treeDepth && t.Name.Local == "spTree":
				s.treeEnd = before
				st.treeDepth = 0
			case st.pic != nil && depth == st.treeDepth+1 && t.Name.Local == "pic":
				st.pic.src.whole.end = after
				s.pictures = append(s.pictures, st.pic)
				st.pic = nil
			case st.pic != nil && t.Name.Local == "xfrm" && st.inXfrm:
				st.pic.src.xfrm.end = after
				st.inXfrm = false
			case st.pic != nil && t.Name.Local == "spPr" && st.inSpPr:
				st.inSpPr = false
			}
			st.stack = st.stack[:depth-1]
		}
	}
	return nil
}

func (s *Slide) parsePictureElement(pic *Picture, t xml.StartElement, parent string, tag span, inSpPr, inXfrm *bool) {
	src := pic.src
	switch t.Name.Local {
	case "cNvPr":
		if parent == "nvPicPr" {
			pic.id, _ = strconv.Atoi(rawAttr(t.Attr, "", "id"))
			pic.name = rawAttr(t.Attr, "", "name")
			pic.description = rawAttr(t.Attr, "", "descr")
		}
	case "cNvPicPr":
		src.cNvPicPr, src.cNvPicPrName, src.cNvPicPrAttrs = tag, t.Name, t.Attr
	case "picLocks":
		if parent == "cNvPicPr" {
			src.picLocks, src.picLocksName, src.picLocksAttrs = tag, t.Name, t.Attr
			pic.lockAspect = boolAttr(rawAttr(t.Attr, "", "noChangeAspect"))
		}
	case "blip":
		for _, a := range t.Attr {
			if a.Name.Local == "embed" && a.Name.Space != "" {
				pic.embed = a.Value
			}
		}
	case "spPr":
		if parent == "pic" {
			src.spPr, src.spPrName = tag, t.Name
			*inSpPr = true
		}
	case "xfrm":
		if *inSpPr && parent == "spPr" {
			src.xfrm = tag
			src.xfrmName, src.xfrmAttrs = t.Name, t.Attr
			pic.hasXfrm = true
			*inXfrm = true
		}
	case "off":
		if *inXfrm && parent == "xfrm" {
			src.off = tag
			pic.offsetX, _ = strconv.ParseInt(rawAttr(t.Attr, "", "x"), 10, 64)
			pic.offsetY, _ = strconv.ParseInt(rawAttr(t.Attr, "", "y"), 10, 64)
		}
	case "ext":
		if *inXfrm && parent == "xfrm" {
			src.ext = tag
			pic.width, _ = strconv.ParseInt(rawAttr(t.Attr, "", "cx"), 10, 64)
			pic.height, _ = strconv.ParseInt(rawAttr(t.Attr, "", "cy"), 10, 64)
		}
	}
}

// AddPicture embeds image data and appends a picture at (x, y) in EMU at the
// image's native size (one pixel per 1/96 inch).
func (s *Slide) AddPicture(data []byte, name string, x, y int64) (*Picture, error) {
	if len(data) == 0 {
		return nil, errors.New("image data is empty")
	}
	if len(data) > maxImageFileSize {
		return nil, fmt.Errorf("image too large: %d bytes (max %d)", len(data), maxImageFileSize)
	}
	info, err := DecodeImageInfo(data)
	if err != nil {
		return nil, err
	}
	format := mediaFormats[info.Format]

	// Identical images share one media part, and one relationship per slide.
	media, ok := s.pres.pkg.findData("ppt/media/", data)
	if !ok {
		media = s.pres.pkg.uniqueName("ppt/media/image%d." + format.ext)
		s.pres.pkg.put(media, data)
		s.pres.contentTypes.ensureDefault(format.ext, format.contentType)
	}
	relID, ok := s.imageRel(media)
	if !ok {
		relID = nextRelID(s.rels)
		s.rels = append(s.rels, xmlRelationship{ID: relID, Type: relTypeImage, Target: relativeTarget(s.part, media)})
		s.relsChanged = true
	}

	s.maxID++
	if name == "" {
		name = fmt.Sprintf("Picture %d", s.maxID-1)
	}
	pic := &Picture{
		id:         s.maxID,
		name:       name,
		embed:      relID,
		offsetX:    x,
		offsetY:    y,
		width:      Pixel(info.Width),
		height:     Pixel(info.Height),
		lockAspect: true,
		hasXfrm:    true,
	}
	s.pictures = append(s.pictures, pic)
	return pic, nil
}

// imageRel returns the id of an embedded image relationship targeting media.
func (s *Slide) imageRel(media string) (string, bool) {
	for _, rel := range s.rels {
		if rel.Type == relTypeImage && rel.TargetMode != "External" && resolveTarget(s.part, rel.Target) == media {
			return rel.ID, true
		}
	}
	return "", false
}

// maxImageFileSize is the maximum allowed size for an embedded image.
const maxImageFileSize = 50 << 20 // 50 MB

// ImageData returns the media bytes a picture's blip refers to.
func (s *Slide) ImageData(p *Picture) ([]byte, error) {
	rel, ok := findRel(s.rels, p.embed)
	if !ok {
		return nil, fmt.Errorf("picture %q: relationship %s not found", p.name, p.embed)
	}
	if rel.TargetMode == "External" {
		return nil, fmt.Errorf("picture %q: linked image %s is not embedded", p.name, rel.Target)
	}
	data, ok := s.pres.pkg.get(resolveTarget(s.part, rel.Target))
	if !ok {
		return nil, fmt.Errorf("picture %q: media %s missing", p.name, rel.Target)
	}
	return data, nil
}

// render returns the slide XML with all picture changes applied.
func (s *Slide) render() []byte {
	var edits []edit
	var added bytes.Buffer
	for _, pic := range s.pictures {
		if pic.src == nil {
			added.WriteString(pic.xml(s.pfx))
			continue
		}
		edits = append(edits, pic.edits(s.data, s.pfx)...)
	}
	if added.Len() > 0 {
		edits = append(edits, edit{at: span{s.treeEnd, s.treeEnd}, repl: added.String()})
	}
	if len(edits) == 0 {
		return s.data
	}
	return splice(s.data, edits)
}
