// Package preview draws the generic slide previews shown when a deck has no
// cached preview artwork. Layouts reference theme roles only, so the same
// drawing serves every palette.
package preview

import (
	"fmt"
	"math"
	"strings"

	"colorslide/model"
)

const (
	// Width and Height are the preview coordinate space.
	Width  = 1920
	Height = 1080
)

type kind int

const (
	kindRect kind = iota
	kindCircle
	kindWedge
	kindText
)

// prim is one drawing primitive. Rects use x,y,w,h and r as the corner
// radius; circles and wedges use x,y as the centre and r as the radius;
// wedge angles are degrees clockwise from twelve o'clock.
type prim struct {
	kind       kind
	x, y, w, h float64
	r          float64
	from, to   float64
	fill       model.Role
	stroke     model.Role
	opacity    float64 // 0 means opaque

	text   string
	size   float64
	bold   bool
	center bool
}

func (p prim) alpha() float64 {
	if p.opacity <= 0 || p.opacity > 1 {
		return 1
	}
	return p.opacity
}

// Layouts is the number of distinct layouts; slide numbers wrap around it.
func Layouts() int { return len(layouts) }

func layoutFor(slideNumber int) layout {
	i := (slideNumber - 1) % len(layouts)
	if i < 0 {
		i += len(layouts)
	}
	return layouts[i]
}

// LayoutName reports which layout a 1-based slide number renders with.
func LayoutName(slideNumber int) string {
	return layoutFor(slideNumber).name
}

// SVG renders the layout for a 1-based slide number with the given palette.
func SVG(slideNumber int, colors model.ThemeColors) string {
	l := layoutFor(slideNumber)

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" data-layout="%s">`, Width, Height, l.name)
	for _, p := range l.prims {
		writeSVG(&b, p, colors)
	}
	b.WriteString(`</svg>`)
	return b.String()
}

func writeSVG(b *strings.Builder, p prim, colors model.ThemeColors) {
	paint := fmt.Sprintf(`fill="%s"`, svgColor(p.fill, colors))
	if p.stroke != "" {
		paint += fmt.Sprintf(` stroke="%s" stroke-width="2"`, svgColor(p.stroke, colors))
	}
	if p.opacity > 0 && p.opacity < 1 {
		paint += fmt.Sprintf(` opacity="%g"`, p.opacity)
	}

	switch p.kind {
	case kindRect:
		fmt.Fprintf(b, `<rect x="%g" y="%g" width="%g" height="%g"`, p.x, p.y, p.w, p.h)
		if p.r > 0 {
			fmt.Fprintf(b, ` rx="%g"`, p.r)
		}
		fmt.Fprintf(b, ` %s/>`, paint)
	case kindCircle:
		fmt.Fprintf(b, `<circle cx="%g" cy="%g" r="%g" %s/>`, p.x, p.y, p.r, paint)
	case kindWedge:
		sx, sy := polar(p.x, p.y, p.r, p.from)
		ex, ey := polar(p.x, p.y, p.r, p.to)
		large := 0
		if p.to-p.from > 180 {
			large = 1
		}
		fmt.Fprintf(b, `<path d="M %.1f %.1f A %g %g 0 %d 1 %.1f %.1f L %g %g Z" %s/>`,
			sx, sy, p.r, p.r, large, ex, ey, p.x, p.y, paint)
	case kindText:
		attrs := fmt.Sprintf(`x="%g" y="%g" font-size="%g"`, p.x, p.y, p.size)
		if p.bold {
			attrs += ` font-weight="bold"`
		}
		if p.center {
			attrs += ` text-anchor="middle"`
		}
		fmt.Fprintf(b, `<text %s %s>%s</text>`, attrs, paint, escape(p.text))
	}
}

func svgColor(role model.Role, colors model.ThemeColors) string {
	if role == "" {
		return "none"
	}
	if c := colors.Color(role); c != "" {
		return c
	}
	return "none"
}

// polar returns the point at angle degrees clockwise from twelve o'clock.
func polar(cx, cy, r, deg float64) (float64, float64) {
	rad := deg * math.Pi / 180
	return cx + r*math.Sin(rad), cy - r*math.Cos(rad)
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string { return textEscaper.Replace(s) }
