package pptx

import (
	"bytes"
	"image/color"
	"strings"
	"testing"
)

func TestAddPictureNativeSize(t *testing.T) {
	p := newTestPresentation(t, 1)
	slide, _ := p.GetSlide(0)
	pic, err := slide.AddPicture(testJPEG(t, 8, 4, color.White), "", 0, 0)
	if err != nil {
		t.Fatalf("AddPicture failed: %v", err)
	}
	if pic.GetWidth() != Pixel(8) || pic.GetHeight() != Pixel(4) {
		t.Errorf("expected %dx%d EMU, got %dx%d", Pixel(8), Pixel(4), pic.GetWidth(), pic.GetHeight())
	}
	if !pic.IsLockAspectRatio() {
		t.Error("new pictures should lock their aspect ratio")
	}

	back := roundTrip(t, p)
	bs, _ := back.GetSlide(0)
	if bs.GetPictureCount() != 1 {
		t.Fatalf("expected 1 picture, got %d", bs.GetPictureCount())
	}
	got := bs.GetPictures()[0]
	if got.GetOffsetX() != 0 || got.GetOffsetY() != 0 || got.GetWidth() != Pixel(8) || got.GetHeight() != Pixel(4) {
		t.Errorf("unexpected geometry after round trip: %+v", got)
	}
	if !got.IsLockAspectRatio() {
		t.Error("aspect lock lost in round trip")
	}
	if got.GetID() != pic.GetID() || got.GetName() != pic.GetName() {
		t.Errorf("expected id %d name %q, got id %d name %q", pic.GetID(), pic.GetName(), got.GetID(), got.GetName())
	}
	data, err := bs.ImageData(got)
	if err != nil {
		t.Fatalf("ImageData failed: %v", err)
	}
	if info, err := DecodeImageInfo(data); err != nil || info.Format != "jpeg" {
		t.Errorf("expected embedded jpeg, got %+v (%v)", info, err)
	}
}

func TestAddPictureAssignsUniqueIDs(t *testing.T) {
	p := newTestPresentation(t, 1)
	slide, _ := p.GetSlide(0)
	ids := map[int]bool{}
	for i := 0; i < 3; i++ {
		pic, err := slide.AddPicture(testPNG(t, 2+i, 2), "", 0, 0)
		if err != nil {
			t.Fatal(err)
		}
		if ids[pic.GetID()] || pic.GetID() <= 1 {
			t.Errorf("bad picture id %d", pic.GetID())
		}
		ids[pic.GetID()] = true
	}
	back := roundTrip(t, p)
	bs, _ := back.GetSlide(0)
	if bs.GetPictureCount() != 3 {
		t.Fatalf("expected 3 pictures, got %d", bs.GetPictureCount())
	}
	media := 0
	for _, name := range back.pkg.names {
		if strings.HasPrefix(name, "ppt/media/") {
			media++
		}
	}
	if media != 3 {
		t.Errorf("expected 3 media parts, got %d", media)
	}
}

func TestAddPictureSharesIdenticalMedia(t *testing.T) {
	p := newTestPresentation(t, 2)
	data := testJPEG(t, 4, 4, color.White)
	first, _ := p.GetSlide(0)
	second, _ := p.GetSlide(1)
	for _, slide := range []*Slide{first, first, first, second} {
		if _, err := slide.AddPicture(data, "", 0, 0); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := first.AddPicture(testJPEG(t, 4, 4, color.Black), "", 0, 0); err != nil {
		t.Fatal(err)
	}

	back := roundTrip(t, p)
	var media []string
	for _, name := range back.pkg.names {
		if strings.HasPrefix(name, "ppt/media/") {
			media = append(media, name)
		}
	}
	if len(media) != 2 {
		t.Fatalf("expected 2 media parts, got %v", media)
	}

	bs, _ := back.GetSlide(0)
	pics := bs.GetPictures()
	if len(pics) != 4 {
		t.Fatalf("expected 4 pictures, got %d", len(pics))
	}
	if pics[0].embed != pics[2].embed || pics[0].embed == pics[3].embed {
		t.Errorf("unexpected embeds %s %s %s %s", pics[0].embed, pics[1].embed, pics[2].embed, pics[3].embed)
	}
	for i, pic := range pics[:3] {
		got, err := bs.ImageData(pic)
		if err != nil || !bytes.Equal(got, data) {
			t.Errorf("picture %d: wrong image data (%v)", i, err)
		}
	}
	if err := back.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestAddPictureRejectsGarbage(t *testing.T) {
	p := newTestPresentation(t, 1)
	slide, _ := p.GetSlide(0)
	if _, err := slide.AddPicture([]byte("not an image"), "", 0, 0); err == nil {
		t.Error("expected error for undecodable data")
	}
	if _, err := slide.AddPicture(nil, "", 0, 0); err == nil {
		t.Error("expected error for empty data")
	}
	if slide.GetPictureCount() != 0 {
		t.Errorf("expected no pictures, got %d", slide.GetPictureCount())
	}
}

func TestEditPictureGeometry(t *testing.T) {
	p := newTestPresentation(t, 1)
	slide, _ := p.GetSlide(0)
	if _, err := slide.AddPicture(testJPEG(t, 8, 8, color.White), "", 0, 0); err != nil {
		t.Fatal(err)
	}

	read := roundTrip(t, p)
	rs, _ := read.GetSlide(0)
	pic := rs.GetPictures()[0]
	pic.SetLockAspectRatio(false)
	pic.SetSize(Point(480), Point(270)).SetPosition(Point(480), Point(270))

	back := roundTrip(t, read)
	bs, _ := back.GetSlide(0)
	got := bs.GetPictures()[0]
	if got.GetOffsetX() != Point(480) || got.GetOffsetY() != Point(270) {
		t.Errorf("unexpected offset %d,%d", got.GetOffsetX(), got.GetOffsetY())
	}
	if got.GetWidth() != Point(480) || got.GetHeight() != Point(270) {
		t.Errorf("unexpected size %dx%d", got.GetWidth(), got.GetHeight())
	}
	if got.IsLockAspectRatio() {
		t.Error("expected aspect lock cleared")
	}
}

const foreignSlide = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
  <p:cSld>
    <p:spTree>
      <p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>
      <p:grpSpPr/>
      <p:sp>
        <p:nvSpPr><p:cNvPr id="2" name="Title 1"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr>
        <p:spPr><a:xfrm><a:off x="10" y="10"/><a:ext cx="100" cy="100"/></a:xfrm></p:spPr>
        <p:txBody><a:bodyPr/><a:p><a:r><a:t>Keep me &amp; my text</a:t></a:r></a:p></p:txBody>
      </p:sp>
      <p:pic>
        <p:nvPicPr><p:cNvPr id="7" name="Placeholder Picture"/><p:cNvPicPr/><p:nvPr><p:ph type="pic" idx="1"/></p:nvPr></p:nvPicPr>
        <p:blipFill><a:blip r:embed="rId9"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>
        <p:spPr/>
      </p:pic>
      <p:pic>
        <p:nvPicPr><p:cNvPr id="8" name="Rotated" descr="a &quot;quoted&quot; photo"/><p:cNvPicPr><a:picLocks noGrp="1" noChangeAspect="1"/></p:cNvPicPr><p:nvPr/></p:nvPicPr>
        <p:blipFill><a:blip r:embed="rId9"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>
        <p:spPr><a:xfrm rot="5400000"><a:off x="1" y="2"/><a:ext cx="3" cy="4"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>
      </p:pic>
      <p:grpSp>
        <p:nvGrpSpPr><p:cNvPr id="9" name="Group"/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>
        <p:grpSpPr/>
        <p:pic>
          <p:nvPicPr><p:cNvPr id="10" name="Grouped"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr>
          <p:blipFill><a:blip r:embed="rId9"/></p:blipFill>
          <p:spPr/>
        </p:pic>
      </p:grpSp>
    </p:spTree>
  </p:cSld>
  <p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>
</p:sld>`

// foreignPresentation loads a package whose first slide is foreignSlide.
func foreignPresentation(t *testing.T) *Presentation {
	t.Helper()
	p := newTestPresentation(t, 1)
	var buf bytes.Buffer
	if err := p.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	slide, _ := p.GetSlide(0)
	p.pkg.put(slide.GetPartName(), []byte(foreignSlide))
	rels := append(slide.rels, xmlRelationship{ID: "rId9", Type: relTypeImage, Target: "../media/photo.jpeg"})
	relData, err := marshalRelationships(rels)
	if err != nil {
		t.Fatal(err)
	}
	p.pkg.put(relsPath(slide.GetPartName()), relData)
	p.pkg.put("ppt/media/photo.jpeg", testJPEG(t, 4, 4, color.White))

	pres, err := load(p.pkg)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return pres
}

func TestParseForeignSlide(t *testing.T) {
	p := foreignPresentation(t)
	slide, _ := p.GetSlide(0)
	pics := slide.GetPictures()
	if len(pics) != 2 {
		t.Fatalf("expected 2 top-level pictures, got %d", len(pics))
	}
	if pics[0].GetName() != "Placeholder Picture" || pics[0].HasExplicitGeometry() || pics[0].IsLockAspectRatio() {
		t.Errorf("unexpected placeholder picture: %+v", pics[0])
	}
	if pics[1].GetDescription() != `a "quoted" photo` {
		t.Errorf("unexpected description %q", pics[1].GetDescription())
	}
	if pics[1].GetOffsetX() != 1 || pics[1].GetOffsetY() != 2 || pics[1].GetWidth() != 3 || pics[1].GetHeight() != 4 {
		t.Errorf("unexpected geometry: %+v", pics[1])
	}
	if !pics[1].IsLockAspectRatio() {
		t.Error("expected aspect lock on second picture")
	}
	if slide.maxID != 10 {
		t.Errorf("expected max shape id 10, got %d", slide.maxID)
	}
}

func TestEditForeignSlidePreservesContent(t *testing.T) {
	p := foreignPresentation(t)
	slide, _ := p.GetSlide(0)
	for _, pic := range slide.GetPictures() {
		pic.SetLockAspectRatio(false)
		pic.SetSize(Point(100), Point(50)).SetPosition(Point(5), Point(6))
	}
	if _, err := slide.AddPicture(testPNG(t, 2, 2), "Pasted", 0, 0); err != nil {
		t.Fatal(err)
	}

	back := roundTrip(t, p)
	bs, _ := back.GetSlide(0)
	xmlData, _ := back.pkg.get(bs.GetPartName())
	text := string(xmlData)
	for _, want := range []string{
		"Keep me &amp; my text",
		`<a:xfrm rot="5400000">`,
		`noGrp="1"`,
		`<p:ph type="pic" idx="1"/>`,
		`name="Grouped"`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("slide lost %s", want)
		}
	}

	pics := bs.GetPictures()
	if len(pics) != 3 {
		t.Fatalf("expected 3 pictures, got %d", len(pics))
	}
	for i, pic := range pics[:2] {
		if pic.GetWidth() != Point(100) || pic.GetHeight() != Point(50) || pic.GetOffsetX() != Point(5) || pic.GetOffsetY() != Point(6) {
			t.Errorf("picture %d: unexpected geometry %+v", i, pic)
		}
		if pic.IsLockAspectRatio() {
			t.Errorf("picture %d: aspect lock not cleared", i)
		}
	}
	if pics[2].GetName() != "Pasted" || pics[2].GetID() != 11 {
		t.Errorf("unexpected pasted picture: id %d name %q", pics[2].GetID(), pics[2].GetName())
	}
}

func TestRenderUnchangedSlideIsIdentical(t *testing.T) {
	p := foreignPresentation(t)
	slide, _ := p.GetSlide(0)
	if !bytes.Equal(slide.render(), []byte(foreignSlide)) {
		t.Error("render of an unmodified slide changed its bytes")
	}
}

func TestSplice(t *testing.T) {
	data := []byte("0123456789")
	got := splice(data, []edit{
		{at: span{7, 9}, repl: "B"},
		{at: span{2, 2}, repl: "ins"},
		{at: span{0, 1}, repl: "A"},
	})
	if string(got) != "A1ins23456B9" {
		t.Errorf("unexpected splice result %q", got)
	}
}
