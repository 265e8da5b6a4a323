package pptx

import (
	"encoding/xml"
	"fmt"
)

// Picture is a p:pic element in a slide's shape tree.
type Picture struct {
	id          int
	name        string
	description string
	embed       string // r:embed of the blip
	offsetX     int64  // in EMU
	offsetY     int64  // in EMU
	width       int64  // in EMU
	height      int64  // in EMU
	lockAspect  bool
	hasXfrm     bool

	// src is nil for pictures added since the slide was read.
	src             *pictureSource
	geometryChanged bool
	lockChanged     bool
}

// pictureSource records where a picture's editable pieces sit in the slide part.
type pictureSource struct {
	whole span

	cNvPicPr      span // start tag
	cNvPicPrName  xml.Name
	cNvPicPrAttrs []xml.Attr

	picLocks      span // start tag
	picLocksName  xml.Name
	picLocksAttrs []xml.Attr

	spPr     span // start tag
	spPrName xml.Name

	xfrm      span // whole element
	xfrmName  xml.Name
	xfrmAttrs []xml.Attr
	off       span
	ext       span
}

func (p *Picture) GetID() int              { return p.id }
func (p *Picture) GetName() string         { return p.name }
func (p *Picture) GetDescription() string  { return p.description }
func (p *Picture) GetOffsetX() int64       { return p.offsetX }
func (p *Picture) GetOffsetY() int64       { return p.offsetY }
func (p *Picture) GetWidth() int64         { return p.width }
func (p *Picture) GetHeight() int64        { return p.height }
func (p *Picture) IsLockAspectRatio() bool { return p.lockAspect }

// HasExplicitGeometry reports whether the picture carries its own a:xfrm
// rather than inheriting placeholder geometry from the layout.
func (p *Picture) HasExplicitGeometry() bool { return p.hasXfrm }

func (p *Picture) SetOffsetX(x int64) *Picture { p.offsetX = x; p.touchGeometry(); return p }
func (p *Picture) SetOffsetY(y int64) *Picture { p.offsetY = y; p.touchGeometry(); return p }
func (p *Picture) SetWidth(w int64) *Picture   { p.width = w; p.touchGeometry(); return p }
func (p *Picture) SetHeight(h int64) *Picture  { p.height = h; p.touchGeometry(); return p }

// SetPosition sets both offset X and Y in EMU.
func (p *Picture) SetPosition(x, y int64) *Picture {
	p.offsetX = x
	p.offsetY = y
	p.touchGeometry()
	return p
}

// SetSize sets both width and height in EMU.
func (p *Picture) SetSize(w, h int64) *Picture {
	p.width = w
	p.height = h
	p.touchGeometry()
	return p
}

// SetLockAspectRatio controls a:picLocks/@noChangeAspect.
func (p *Picture) SetLockAspectRatio(lock bool) *Picture {
	p.lockAspect = lock
	p.lockChanged = true
	return p
}

func (p *Picture) touchGeometry() {
	p.geometryChanged = true
	p.hasXfrm = true
}

// edits returns the splices that bring the source XML up to date.
func (p *Picture) edits(data []byte, pfx prefixes) []edit {
	if p.src == nil {
		return nil
	}
	var out []edit
	src := p.src
	if p.geometryChanged {
		a := pfx.a
		if src.xfrm.valid() {
			a = src.xfrmName.Space
		}
		off := fmt.Sprintf(`<%s x="%d" y="%d"/>`, qname(a, "off"), p.offsetX, p.offsetY)
		ext := fmt.Sprintf(`<%s cx="%d" cy="%d"/>`, qname(a, "ext"), p.width, p.height)
		switch {
		case src.off.valid() && src.ext.valid():
			out = append(out, edit{at: src.off, repl: off}, edit{at: src.ext, repl: ext})
		case src.xfrm.valid():
			out = append(out, edit{at: src.xfrm, repl: startTag(src.xfrmName, src.xfrmAttrs, "", "", false) +
				off + ext + "</" + qname(src.xfrmName.Space, "xfrm") + ">"})
		case src.spPr.valid():
			xfrm := fmt.Sprintf("<%s%s>%s%s</%s>", qname(a, "xfrm"), pfx.aDecl(), off, ext, qname(a, "xfrm"))
			if selfClosing(data, src.spPr) {
				out = append(out, edit{at: src.spPr, repl: startTag(src.spPrName, nil, "", "", false) +
					xfrm + "</" + qname(src.spPrName.Space, "spPr") + ">"})
			} else {
				out = append(out, edit{at: span{src.spPr.end, src.spPr.end}, repl: xfrm})
			}
		}
	}
	if p.lockChanged {
		switch {
		case src.picLocks.valid():
			out = append(out, edit{at: src.picLocks,
				repl: startTag(src.picLocksName, src.picLocksAttrs, "noChangeAspect", boolDigit(p.lockAspect), selfClosing(data, src.picLocks))})
		case src.cNvPicPr.valid():
			locks := fmt.Sprintf(`<%s%s noChangeAspect="%s"/>`, qname(pfx.a, "picLocks"), pfx.aDecl(), boolDigit(p.lockAspect))
			if selfClosing(data, src.cNvPicPr) {
				out = append(out, edit{at: src.cNvPicPr, repl: startTag(src.cNvPicPrName, src.cNvPicPrAttrs, "", "", false) +
					locks + "</" + qname(src.cNvPicPrName.Space, "cNvPicPr") + ">"})
			} else {
				out = append(out, edit{at: span{src.cNvPicPr.end, src.cNvPicPr.end}, repl: locks})
			}
		}
	}
	return out
}

// xml renders a picture added since the slide was read.
func (p *Picture) xml(pfx prefixes) string {
	pn := func(local string) string { return qname(pfx.p, local) }
	an := func(local string) string { return qname(pfx.a, local) }
	return fmt.Sprintf(`<%s%s><%s><%s id="%d" name="%s" descr="%s"/><%s><%s noChangeAspect="%s"/></%s><%s/></%s>`+
		`<%s><%s %s="%s"/><%s><%s/></%s></%s>`+
		`<%s><%s><%s x="%d" y="%d"/><%s cx="%d" cy="%d"/></%s><%s prst="rect"><%s/></%s></%s></%s>`,
		pn("pic"), pfx.aDecl()+pfx.rDecl(),
		pn("nvPicPr"), pn("cNvPr"), p.id, xmlEscape(p.name), xmlEscape(p.description),
		pn("cNvPicPr"), an("picLocks"), boolDigit(p.lockAspect), pn("cNvPicPr"), pn("nvPr"), pn("nvPicPr"),
		pn("blipFill"), an("blip"), qname(pfx.r, "embed"), p.embed, an("stretch"), an("fillRect"), an("stretch"), pn("blipFill"),
		pn("spPr"), an("xfrm"), an("off"), p.offsetX, p.offsetY, an("ext"), p.width, p.height, an("xfrm"),
		an("prstGeom"), an("avLst"), an("prstGeom"), pn("spPr"), pn("pic"))
}
