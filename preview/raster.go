package preview

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"slices"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"colorslide/model"
)

const (
	strokeWidth    = 2
	cornerSteps    = 6
	circleSegments = 72
)

// ErrWidth is returned for thumbnail widths outside 16..3840.
var ErrWidth = errors.New("thumbnail width out of range")

type point struct{ x, y float64 }

// PNG writes a raster thumbnail of the layout, width pixels wide.
func PNG(w io.Writer, slideNumber int, colors model.ThemeColors, width int) error {
	img, err := Raster(slideNumber, colors, width)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode thumbnail: %w", err)
	}
	return nil
}

// Raster draws the layout into a new image width pixels wide.
func Raster(slideNumber int, colors model.ThemeColors, width int) (*image.RGBA, error) {
	if width < 16 || width > Width*2 {
		return nil, fmt.Errorf("%w: %d", ErrWidth, width)
	}
	height := int(math.Round(float64(width) * Height / Width))
	c := canvas{
		img:   image.NewRGBA(image.Rect(0, 0, width, height)),
		scale: float64(width) / Width,
	}
	for _, p := range layoutFor(slideNumber).prims {
		c.draw(p, colors)
	}
	return c.img, nil
}

type canvas struct {
	img   *image.RGBA
	scale float64
}

func (c canvas) draw(p prim, colors model.ThemeColors) {
	switch p.kind {
	case kindRect:
		if p.fill != "" {
			c.fill(paint(colors, p.fill, p.alpha()), roundRect(p.x, p.y, p.w, p.h, p.r))
		}
		if p.stroke != "" {
			inner := roundRect(p.x+strokeWidth, p.y+strokeWidth, p.w-2*strokeWidth, p.h-2*strokeWidth, p.r-strokeWidth)
			slices.Reverse(inner)
			c.fill(paint(colors, p.stroke, p.alpha()), roundRect(p.x, p.y, p.w, p.h, p.r), inner)
		}
	case kindCircle:
		c.fill(paint(colors, p.fill, p.alpha()), arc(p.x, p.y, p.r, 0, 360))
	case kindWedge:
		c.fill(paint(colors, p.fill, p.alpha()), append([]point{{p.x, p.y}}, arc(p.x, p.y, p.r, p.from, p.to)...))
	case kindText:
		c.text(p, paint(colors, p.fill, p.alpha()))
	}
}

// fill rasterizes the polygons into a mask covering their bounding box and
// composites the colour through it. Opposite windings cancel.
func (c canvas) fill(col color.Color, polys ...[]point) {
	box := image.Rectangle{}
	for _, poly := range polys {
		for _, pt := range poly {
			px := image.Rect(
				int(math.Floor(pt.x*c.scale)), int(math.Floor(pt.y*c.scale)),
				int(math.Ceil(pt.x*c.scale))+1, int(math.Ceil(pt.y*c.scale))+1)
			box = box.Union(px)
		}
	}
	if box.Empty() || !box.Overlaps(c.img.Bounds()) {
		return
	}

	z := vector.NewRasterizer(box.Dx(), box.Dy())
	ox, oy := float64(box.Min.X), float64(box.Min.Y)
	for _, poly := range polys {
		if len(poly) < 3 {
			continue
		}
		z.MoveTo(float32(poly[0].x*c.scale-ox), float32(poly[0].y*c.scale-oy))
		for _, pt := range poly[1:] {
			z.LineTo(float32(pt.x*c.scale-ox), float32(pt.y*c.scale-oy))
		}
		z.ClosePath()
	}
	mask := image.NewAlpha(image.Rect(0, 0, box.Dx(), box.Dy()))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	draw.DrawMask(c.img, box, image.NewUniform(col), image.Point{}, mask, image.Point{}, draw.Over)
}

func (c canvas) text(p prim, col color.Color) {
	face := basicfont.Face7x13
	x := int(p.x * c.scale)
	if p.center {
		x -= font.MeasureString(face, p.text).Ceil() / 2
	}
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, int(p.y*c.scale)),
	}
	d.DrawString(p.text)
	if p.bold {
		d.Dot = fixed.P(x+1, int(p.y*c.scale))
		d.DrawString(p.text)
	}
}

func paint(colors model.ThemeColors, role model.Role, alpha float64) color.Color {
	hex := colors.Color(role)
	if hex == "" {
		return color.Transparent
	}
	cc, err := colorful.Hex(hex)
	if err != nil {
		return color.Transparent
	}
	r, g, b := cc.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(alpha * 255))}
}

// roundRect returns the outline of a rectangle with circular corners,
// clockwise in screen space.
func roundRect(x, y, w, h, r float64) []point {
	if w <= 0 || h <= 0 {
		return nil
	}
	r = math.Max(0, math.Min(r, math.Min(w, h)/2))
	if r == 0 {
		return []point{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
	}
	corners := []struct {
		cx, cy, start float64
	}{
		{x + w - r, y + r, 0},
		{x + w - r, y + h - r, 90},
		{x + r, y + h - r, 180},
		{x + r, y + r, 270},
	}
	out := make([]point, 0, 4*(cornerSteps+1))
	for _, k := range corners {
		for i := 0; i <= cornerSteps; i++ {
			px, py := polar(k.cx, k.cy, r, k.start+90*float64(i)/cornerSteps)
			out = append(out, point{px, py})
		}
	}
	return out
}

// arc samples a circle between two angles, clockwise from twelve o'clock.
func arc(cx, cy, r, from, to float64) []point {
	n := int(math.Ceil(circleSegments * (to - from) / 360))
	if n < 1 {
		n = 1
	}
	out := make([]point, 0, n+1)
	for i := 0; i <= n; i++ {
		px, py := polar(cx, cy, r, from+(to-from)*float64(i)/float64(n))
		out = append(out, point{px, py})
	}
	return out
}
