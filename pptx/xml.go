package pptx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
)

// XML namespace constants
const (
	nsRelationships  = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsContentTypes   = "http://schemas.openxmlformats.org/package/2006/content-types"
	nsPresentationML = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsDrawingML      = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsOfficeDocRels  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsDCTerms        = "http://purl.org/dc/terms/"
	nsDC             = "http://purl.org/dc/elements/1.1/"
	nsCoreProperties = "http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
	nsExtProperties  = "http://schemas.openxmlformats.org/officeDocument/2006/extended-properties"
	nsXSI            = "http://www.w3.org/2001/XMLSchema-instance"

	relTypeSlide       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	relTypeSlideMaster = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"
	relTypeSlideLayout = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	relTypeTheme       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme"
	relTypePresProps   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/presProps"
	relTypeViewProps   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/viewProps"
	relTypeTableStyles = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/tableStyles"
	relTypeOfficeDoc   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relTypeCoreProps   = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	relTypeExtProps    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties"
	relTypeImage       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"

	ctPresentation = "application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"
	ctSlide        = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	ctSlideMaster  = "application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"
	ctSlideLayout  = "application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"
	ctTheme        = "application/vnd.openxmlformats-officedocument.theme+xml"
	ctPresProps    = "application/vnd.openxmlformats-officedocument.presentationml.presProps+xml"
	ctViewProps    = "application/vnd.openxmlformats-officedocument.presentationml.viewProps+xml"
	ctTableStyles  = "application/vnd.openxmlformats-officedocument.presentationml.tableStyles+xml"
	ctCoreProps    = "application/vnd.openxmlformats-package.core-properties+xml"
	ctExtProps     = "application/vnd.openxmlformats-officedocument.extended-properties+xml"
	ctRels         = "application/vnd.openxmlformats-package.relationships+xml"
)

func marshalXML(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// xmlEscape escapes special XML characters using the standard library.
func xmlEscape(s string) string {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return s
	}
	return b.String()
}

// qname joins a raw namespace prefix and a local name.
func qname(prefix, local string) string {
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}

// --- Content Types ---

type xmlContentTypes struct {
	XMLName   xml.Name      `xml:"Types"`
	Xmlns     string        `xml:"xmlns,attr"`
	Defaults  []xmlDefault  `xml:"Default"`
	Overrides []xmlOverride `xml:"Override"`
}

type xmlDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type xmlOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

func parseContentTypes(data []byte) (*xmlContentTypes, error) {
	var ct xmlContentTypes
	if err := xml.Unmarshal(data, &ct); err != nil {
		return nil, fmt.Errorf("failed to parse content types: %w", err)
	}
	// The namespace is written through Xmlns; a namespaced XMLName would repeat it.
	ct.XMLName = xml.Name{}
	ct.Xmlns = nsContentTypes
	return &ct, nil
}

// ensureDefault registers a content type for a file extension if none exists.
func (ct *xmlContentTypes) ensureDefault(ext, contentType string) {
	for _, d := range ct.Defaults {
		if strings.EqualFold(d.Extension, ext) {
			return
		}
	}
	ct.Defaults = append(ct.Defaults, xmlDefault{Extension: ext, ContentType: contentType})
}

// ensureOverride registers a content type for a part name.
func (ct *xmlContentTypes) ensureOverride(partName, contentType string) {
	name := "/" + strings.TrimPrefix(partName, "/")
	for i, o := range ct.Overrides {
		if o.PartName == name {
			ct.Overrides[i].ContentType = contentType
			return
		}
	}
	ct.Overrides = append(ct.Overrides, xmlOverride{PartName: name, ContentType: contentType})
}

// --- Relationships ---

type xmlRelationships struct {
	XMLName       xml.Name          `xml:"Relationships"`
	Xmlns         string            `xml:"xmlns,attr"`
	Relationships []xmlRelationship `xml:"Relationship"`
}

type xmlRelationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

func parseRelationships(data []byte) ([]xmlRelationship, error) {
	var rels xmlRelationships
	if err := xml.Unmarshal(data, &rels); err != nil {
		return nil, fmt.Errorf("failed to parse relationships: %w", err)
	}
	return rels.Relationships, nil
}

func marshalRelationships(rels []xmlRelationship) ([]byte, error) {
	return marshalXML(xmlRelationships{Xmlns: nsRelationships, Relationships: rels})
}

// relsPath returns the relationships part name for a part,
// e.g. ppt/slides/slide1.xml -> ppt/slides/_rels/slide1.xml.rels.
func relsPath(partName string) string {
	dir, file := path.Split(partName)
	return dir + "_rels/" + file + ".rels"
}

// resolveTarget resolves a relationship target relative to the source part.
func resolveTarget(sourcePart, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Clean(path.Join(path.Dir(sourcePart), target))
}

// relativeTarget is the inverse of resolveTarget for parts below a common root.
func relativeTarget(sourcePart, targetPart string) string {
	from := strings.Split(path.Dir(sourcePart), "/")
	to := strings.Split(targetPart, "/")
	i := 0
	for i < len(from) && i < len(to)-1 && from[i] == to[i] {
		i++
	}
	var parts []string
	for j := i; j < len(from); j++ {
		if from[j] != "" && from[j] != "." {
			parts = append(parts, "..")
		}
	}
	parts = append(parts, to[i:]...)
	return strings.Join(parts, "/")
}

// nextRelID returns an rId not used by rels.
func nextRelID(rels []xmlRelationship) string {
	max := 0
	for _, r := range rels {
		if n, err := strconv.Atoi(strings.TrimPrefix(r.ID, "rId")); err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("rId%d", max+1)
}

func findRel(rels []xmlRelationship, id string) (xmlRelationship, bool) {
	for _, r := range rels {
		if r.ID == id {
			return r, true
		}
	}
	return xmlRelationship{}, false
}

// --- Byte splicing ---

// span is a half-open byte range [start, end) in a part.
type span struct {
	start, end int64
}

func (s span) valid() bool { return s.end > s.start }

// edit replaces the bytes of a span. An empty span inserts at start.
type edit struct {
	at   span
	repl string
}

// splice applies non-overlapping edits to data.
func splice(data []byte, edits []edit) []byte {
	sort.SliceStable(edits, func(i, j int) bool { return edits[i].at.start < edits[j].at.start })
	var buf bytes.Buffer
	buf.Grow(len(data))
	var pos int64
	for _, e := range edits {
		if e.at.start < pos {
			continue
		}
		buf.Write(data[pos:e.at.start])
		buf.WriteString(e.repl)
		pos = e.at.end
	}
	buf.Write(data[pos:])
	return buf.Bytes()
}

// selfClosing reports whether the start tag occupying s ends with "/>".
func selfClosing(data []byte, s span) bool {
	return s.end-s.start >= 2 && bytes.HasSuffix(data[s.start:s.end], []byte("/>"))
}

// startTag renders a start tag from raw tokens, replacing or adding one attribute.
func startTag(name xml.Name, attrs []xml.Attr, key, value string, closed bool) string {
	var sb strings.Builder
	sb.WriteString("<")
	sb.WriteString(qname(name.Space, name.Local))
	replaced := false
	for _, a := range attrs {
		v := a.Value
		if a.Name.Space == "" && a.Name.Local == key {
			v = value
			replaced = true
		}
		fmt.Fprintf(&sb, ` %s="%s"`, qname(a.Name.Space, a.Name.Local), xmlEscape(v))
	}
	if !replaced && key != "" {
		fmt.Fprintf(&sb, ` %s="%s"`, key, xmlEscape(value))
	}
	if closed {
		sb.WriteString("/>")
	} else {
		sb.WriteString(">")
	}
	return sb.String()
}

func rawAttr(attrs []xml.Attr, prefix, local string) string {
	for _, a := range attrs {
		if a.Name.Space == prefix && a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func boolAttr(v string) bool {
	return v == "1" || v == "true"
}

func boolDigit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
