package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"colorslide/model"
	"colorslide/palette"
	"colorslide/themexml"
)

const (
	slideWidthEMU  = 12192000
	slideHeightEMU = 6858000

	// Layouts are authored on a 1920x1080 grid.
	gridWidth = 1920
	emuPerPx  = slideWidthEMU / gridWidth
)

// shape is one drawing primitive. Every colour is a theme role.
type shape struct {
	geom       string // prstGeom: rect, roundRect, ellipse
	x, y, w, h int    // grid units
	fill       model.Role
	alpha      int // fill opacity in percent; 0 means opaque
	line       model.Role

	text      string
	textColor model.Role
	size      int // points
	bold      bool
	italic    bool
	align     string // l, ctr, r
}

type slide struct {
	background model.Role
	shapes     []shape
}

// Synthesize builds a complete presentation for a deck that has no
// pre-built template. Slide content only references theme roles; the theme
// part carries the default palette until InjectTheme replaces it.
func Synthesize(deck model.Deck, themeName, creator string) ([]byte, error) {
	count := deck.SlideCount
	if count < 1 {
		count = 1
	}
	slides := make([]slide, count)
	for i := range slides {
		slides[i] = layoutAt(i)(deck, i)
	}

	themeXML, err := themexml.Serialize(themeName, palette.Default())
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	write := func(name string, data []byte) error {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return fmt.Errorf("create %s: %w", name, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		return nil
	}

	parts := []struct {
		name string
		data string
	}{
		{partContentTypes, contentTypesXML(count)},
		{partRootRels, rootRelsXML()},
		{partCore, coreXML(deck.Title, deck.Description, strings.Join(deck.Tags, ", "), creator)},
		{partApp, appXML(creator, count)},
		{partPresentation, presentationXML(count)},
		{partPresRels, presentationRelsXML(count)},
		{partPresProps, presPropsXML()},
		{partViewProps, viewPropsXML()},
		{partTableStyles, tableStylesXML()},
		{partMaster, slideMasterXML()},
		{partMasterRels, slideMasterRelsXML()},
		{partLayout, slideLayoutXML()},
		{partLayoutRels, slideLayoutRelsXML()},
	}
	for _, p := range parts {
		if err := write(p.name, []byte(p.data)); err != nil {
			return nil, err
		}
	}
	if err := write(ThemePart, themeXML); err != nil {
		return nil, err
	}
	for i, s := range slides {
		if err := write(slidePart(i+1), []byte(s.xml())); err != nil {
			return nil, err
		}
		if err := write(slideRelsPart(i+1), []byte(slideRelsXML())); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finish container: %w", err)
	}
	return buf.Bytes(), nil
}

func (s slide) xml() string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<p:sld xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `"><p:cSld>`)
	b.WriteString(`<p:bg><p:bgPr>`)
	writeFill(&b, s.background, 0)
	b.WriteString(`<a:effectLst/></p:bgPr></p:bg>`)
	b.WriteString(`<p:spTree>` + emptyTree)
	for i, sh := range s.shapes {
		sh.write(&b, i+2)
	}
	b.WriteString(`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`)
	return b.String()
}

func (sh shape) write(b *strings.Builder, id int) {
	geom := sh.geom
	if geom == "" {
		geom = "rect"
	}
	name := "Shape"
	if sh.text != "" {
		name = "TextBox"
	}
	fmt.Fprintf(b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s %d"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr>`, id, name, id-1)
	fmt.Fprintf(b, `<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`,
		sh.x*emuPerPx, sh.y*emuPerPx, sh.w*emuPerPx, sh.h*emuPerPx)
	fmt.Fprintf(b, `<a:prstGeom prst="%s"><a:avLst/></a:prstGeom>`, geom)
	if sh.fill != "" {
		writeFill(b, sh.fill, sh.alpha)
	} else {
		b.WriteString(`<a:noFill/>`)
	}
	if sh.line != "" {
		b.WriteString(`<a:ln w="25400">`)
		writeFill(b, sh.line, 0)
		b.WriteString(`</a:ln>`)
	} else {
		b.WriteString(`<a:ln><a:noFill/></a:ln>`)
	}
	b.WriteString(`</p:spPr>`)

	if sh.text != "" {
		align := sh.align
		if align == "" {
			align = "l"
		}
		size := sh.size
		if size == 0 {
			size = 18
		}
		b.WriteString(`<p:txBody><a:bodyPr wrap="square" lIns="0" tIns="0" rIns="0" bIns="0" anchor="ctr"><a:normAutofit/></a:bodyPr><a:lstStyle/>`)
		fmt.Fprintf(b, `<a:p><a:pPr algn="%s"/><a:r><a:rPr lang="en-US" sz="%d" b="%d" i="%d" dirty="0">`,
			align, size*100, boolAttr(sh.bold), boolAttr(sh.italic))
		writeFill(b, sh.textColor, 0)
		b.WriteString(`</a:rPr><a:t>` + escape(sh.text) + `</a:t></a:r></a:p></p:txBody>`)
	}
	b.WriteString(`</p:sp>`)
}

func writeFill(b *strings.Builder, role model.Role, alpha int) {
	if role == "" {
		role = model.Dk1
	}
	if alpha > 0 && alpha < 100 {
		fmt.Fprintf(b, `<a:solidFill><a:schemeClr val="%s"><a:alpha val="%d"/></a:schemeClr></a:solidFill>`, role, alpha*1000)
		return
	}
	fmt.Fprintf(b, `<a:solidFill><a:schemeClr val="%s"/></a:solidFill>`, role)
}

func boolAttr(v bool) int {
	if v {
		return 1
	}
	return 0
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
