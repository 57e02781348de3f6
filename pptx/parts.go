package pptx

import (
	"fmt"
	"strings"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

const (
	nsA   = `http://schemas.openxmlformats.org/drawingml/2006/main`
	nsR   = `http://schemas.openxmlformats.org/officeDocument/2006/relationships`
	nsP   = `http://schemas.openxmlformats.org/presentationml/2006/main`
	nsRel = `http://schemas.openxmlformats.org/package/2006/relationships`

	relOfficeDocument = nsR + `/officeDocument`
	relExtended       = nsR + `/extended-properties`
	relCore           = `http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties`
	relSlideMaster    = nsR + `/slideMaster`
	relSlideLayout    = nsR + `/slideLayout`
	relSlide          = nsR + `/slide`
	relTheme          = nsR + `/theme`
	relPresProps      = nsR + `/presProps`
	relViewProps      = nsR + `/viewProps`
	relTableStyles    = nsR + `/tableStyles`

	ctPresentation = `application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml`
	ctSlideMaster  = `application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml`
	ctSlideLayout  = `application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml`
	ctSlide        = `application/vnd.openxmlformats-officedocument.presentationml.slide+xml`
	ctPresProps    = `application/vnd.openxmlformats-officedocument.presentationml.presProps+xml`
	ctViewProps    = `application/vnd.openxmlformats-officedocument.presentationml.viewProps+xml`
	ctTableStyles  = `application/vnd.openxmlformats-officedocument.presentationml.tableStyles+xml`
	ctTheme        = `application/vnd.openxmlformats-officedocument.theme+xml`
	ctCore         = `application/vnd.openxmlformats-package.core-properties+xml`
	ctExtended     = `application/vnd.openxmlformats-officedocument.extended-properties+xml`
)

// Package part names.
const (
	partContentTypes = "[Content_Types].xml"
	partRootRels     = "_rels/.rels"
	partCore         = "docProps/core.xml"
	partApp          = "docProps/app.xml"
	partPresentation = "ppt/presentation.xml"
	partPresRels     = "ppt/_rels/presentation.xml.rels"
	partPresProps    = "ppt/presProps.xml"
	partViewProps    = "ppt/viewProps.xml"
	partTableStyles  = "ppt/tableStyles.xml"
	partMaster       = "ppt/slideMasters/slideMaster1.xml"
	partMasterRels   = "ppt/slideMasters/_rels/slideMaster1.xml.rels"
	partLayout       = "ppt/slideLayouts/slideLayout1.xml"
	partLayoutRels   = "ppt/slideLayouts/_rels/slideLayout1.xml.rels"
)

func slidePart(n int) string     { return fmt.Sprintf("ppt/slides/slide%d.xml", n) }
func slideRelsPart(n int) string { return fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n) }

type relationship struct {
	id, typ, target string
}

func relationshipsXML(rels []relationship) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="` + nsRel + `">`)
	for _, r := range rels {
		fmt.Fprintf(&b, `<Relationship Id="%s" Type="%s" Target="%s"/>`, r.id, r.typ, r.target)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

func contentTypesXML(slides int) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	override := func(part, ct string) {
		fmt.Fprintf(&b, `<Override PartName="/%s" ContentType="%s"/>`, part, ct)
	}
	override(partPresentation, ctPresentation)
	override(partMaster, ctSlideMaster)
	override(partLayout, ctSlideLayout)
	for i := 1; i <= slides; i++ {
		override(slidePart(i), ctSlide)
	}
	override(partPresProps, ctPresProps)
	override(partViewProps, ctViewProps)
	override(partTableStyles, ctTableStyles)
	override(ThemePart, ctTheme)
	override(partCore, ctCore)
	override(partApp, ctExtended)
	b.WriteString(`</Types>`)
	return b.String()
}

func rootRelsXML() string {
	return relationshipsXML([]relationship{
		{"rId1", relOfficeDocument, partPresentation},
		{"rId2", relCore, partCore},
		{"rId3", relExtended, partApp},
	})
}

func coreXML(title, description, keywords, creator string) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"` +
		` xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/"` +
		` xmlns:dcmitype="http://purl.org/dc/dcmitype/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">`)
	b.WriteString(`<dc:title>` + escape(title) + `</dc:title>`)
	b.WriteString(`<dc:subject>` + escape(description) + `</dc:subject>`)
	b.WriteString(`<dc:creator>` + escape(creator) + `</dc:creator>`)
	b.WriteString(`<cp:keywords>` + escape(keywords) + `</cp:keywords>`)
	b.WriteString(`</cp:coreProperties>`)
	return b.String()
}

func appXML(application string, slides int) string {
	return xmlHeader + fmt.Sprintf(`<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties"`+
		` xmlns:vt="http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes">`+
		`<Application>%s</Application><PresentationFormat>Widescreen</PresentationFormat><Slides>%d</Slides></Properties>`,
		escape(application), slides)
}

func presentationXML(slides int) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<p:presentation xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `" saveSubsetFonts="1">`)
	b.WriteString(`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`)
	b.WriteString(`<p:sldIdLst>`)
	for i := 0; i < slides; i++ {
		fmt.Fprintf(&b, `<p:sldId id="%d" r:id="%s"/>`, 256+i, slideRelID(i))
	}
	b.WriteString(`</p:sldIdLst>`)
	fmt.Fprintf(&b, `<p:sldSz cx="%d" cy="%d"/><p:notesSz cx="6858000" cy="9144000"/>`, slideWidthEMU, slideHeightEMU)
	b.WriteString(`</p:presentation>`)
	return b.String()
}

// Presentation relationships: rId1..rId5 are fixed, slides follow.
func slideRelID(i int) string { return fmt.Sprintf("rId%d", 6+i) }

func presentationRelsXML(slides int) string {
	rels := []relationship{
		{"rId1", relSlideMaster, "slideMasters/slideMaster1.xml"},
		{"rId2", relTheme, "theme/theme1.xml"},
		{"rId3", relPresProps, "presProps.xml"},
		{"rId4", relViewProps, "viewProps.xml"},
		{"rId5", relTableStyles, "tableStyles.xml"},
	}
	for i := 0; i < slides; i++ {
		rels = append(rels, relationship{slideRelID(i), relSlide, fmt.Sprintf("slides/slide%d.xml", i+1)})
	}
	return relationshipsXML(rels)
}

func presPropsXML() string {
	return xmlHeader + `<p:presentationPr xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `"/>`
}

func viewPropsXML() string {
	return xmlHeader + `<p:viewPr xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `">` +
		`<p:normalViewPr><p:restoredLeft sz="15620"/><p:restoredTop sz="94660"/></p:normalViewPr>` +
		`<p:gridSpacing cx="76200" cy="76200"/></p:viewPr>`
}

func tableStylesXML() string {
	return xmlHeader + `<a:tblStyleLst xmlns:a="` + nsA + `" def="{5C22544A-7EE6-4342-B048-85BDC9FD1C3A}"/>`
}

const emptyTree = `<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
	`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`

// The master maps the background/text aliases straight onto the theme
// roles, so slide content recolours with the theme part alone.
func slideMasterXML() string {
	defRPr := func(size int, font string) string {
		return fmt.Sprintf(`<a:defRPr sz="%d"><a:solidFill><a:schemeClr val="tx1"/></a:solidFill><a:latin typeface="%s"/></a:defRPr>`, size, font)
	}
	return xmlHeader + `<p:sldMaster xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `">` +
		`<p:cSld><p:bg><p:bgRef idx="1001"><a:schemeClr val="bg1"/></p:bgRef></p:bg><p:spTree>` + emptyTree + `</p:spTree></p:cSld>` +
		`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3"` +
		` accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>` +
		`<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/></p:sldLayoutIdLst>` +
		`<p:txStyles>` +
		`<p:titleStyle><a:lvl1pPr>` + defRPr(4400, "+mj-lt") + `</a:lvl1pPr></p:titleStyle>` +
		`<p:bodyStyle><a:lvl1pPr>` + defRPr(2800, "+mn-lt") + `</a:lvl1pPr></p:bodyStyle>` +
		`<p:otherStyle><a:lvl1pPr>` + defRPr(1800, "+mn-lt") + `</a:lvl1pPr></p:otherStyle>` +
		`</p:txStyles></p:sldMaster>`
}

func slideMasterRelsXML() string {
	return relationshipsXML([]relationship{
		{"rId1", relSlideLayout, "../slideLayouts/slideLayout1.xml"},
		{"rId2", relTheme, "../theme/theme1.xml"},
	})
}

func slideLayoutXML() string {
	return xmlHeader + `<p:sldLayout xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `" type="blank" preserve="1">` +
		`<p:cSld name="Blank"><p:spTree>` + emptyTree + `</p:spTree></p:cSld>` +
		`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sldLayout>`
}

func slideLayoutRelsXML() string {
	return relationshipsXML([]relationship{
		{"rId1", relSlideMaster, "../slideMasters/slideMaster1.xml"},
	})
}

func slideRelsXML() string {
	return relationshipsXML([]relationship{
		{"rId1", relSlideLayout, "../slideLayouts/slideLayout1.xml"},
	})
}
