package preview

import (
	"bytes"
	"encoding/xml"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colorslide/model"
	"colorslide/palette"
)

func testPalette() model.ThemeColors {
	c := palette.Default()
	c.Lt1 = "#102030"
	c.Accent6 = "#ABCDEF"
	return c
}

func TestLayoutCycle(t *testing.T) {
	assert.Equal(t, 10, Layouts())
	assert.Equal(t, "title", LayoutName(1))
	assert.Equal(t, "closing", LayoutName(10))
	assert.Equal(t, "title", LayoutName(11))
	assert.Equal(t, "chart", LayoutName(13))
	assert.Equal(t, "closing", LayoutName(0))
	assert.Equal(t, "data", LayoutName(-1))
}

func TestSVGWellFormed(t *testing.T) {
	colors := testPalette()
	for n := 1; n <= Layouts(); n++ {
		svg := SVG(n, colors)
		dec := xml.NewDecoder(strings.NewReader(svg))
		for {
			_, err := dec.Token()
			if err == io.EOF {
				break
			}
			require.NoError(t, err, "slide %d", n)
		}
		assert.Contains(t, svg, `viewBox="0 0 1920 1080"`)
		assert.Contains(t, svg, `data-layout="`+LayoutName(n)+`"`)
	}
}

func TestSVGUsesPaletteValues(t *testing.T) {
	colors := testPalette()

	title := SVG(1, colors)
	assert.Contains(t, title, `fill="#102030"`)
	assert.Contains(t, title, `stroke="`+colors.Accent1+`"`)

	chart := SVG(3, colors)
	for _, r := range model.AccentRoles {
		assert.Contains(t, chart, `fill="`+colors.Color(r)+`"`, string(r))
	}

	closing := SVG(10, colors)
	assert.Contains(t, closing, `fill="`+colors.Hlink+`"`)
	assert.True(t, strings.HasPrefix(closing, `<svg`))
}

func TestSVGWedges(t *testing.T) {
	svg := SVG(9, palette.Default())
	assert.Equal(t, 3, strings.Count(svg, "<path "))
	assert.Contains(t, svg, "M 450.0 290.0 A 250 250 0 0 1")
}

func TestTimelineAlternates(t *testing.T) {
	var cards []prim
	for _, p := range layoutFor(6).prims {
		if p.kind == kindRect && p.w == 200 && p.h == 140 {
			cards = append(cards, p)
		}
	}
	require.Len(t, cards, 5)
	for i, c := range cards {
		assert.Equal(t, model.Accent(i), c.fill)
		if i%2 == 0 {
			assert.Less(t, c.y, 540.0)
		} else {
			assert.Greater(t, c.y, 540.0)
		}
	}
}

func TestPNG(t *testing.T) {
	colors := testPalette()

	var buf bytes.Buffer
	require.NoError(t, PNG(&buf, 3, colors, 480))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 480, img.Bounds().Dx())
	assert.Equal(t, 270, img.Bounds().Dy())

	// Sixth bar of the chart sits at x 800-880, y 300-750.
	r, g, b, _ := img.At(210, 150).RGBA()
	assert.Equal(t, color.RGBA{0xAB, 0xCD, 0xEF, 0xFF}, color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), 0xFF})

	r, g, b, _ = img.At(5, 265).RGBA()
	assert.Equal(t, [3]uint8{0x10, 0x20, 0x30}, [3]uint8{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)})
}

func TestPNGRejectsBadWidth(t *testing.T) {
	assert.Error(t, PNG(io.Discard, 1, palette.Default(), 0))
	assert.Error(t, PNG(io.Discard, 1, palette.Default(), 100000))
}

func TestRoundRectClosesClockwise(t *testing.T) {
	pts := roundRect(0, 0, 100, 50, 10)
	require.NotEmpty(t, pts)
	assert.InDelta(t, 90, pts[0].x, 1e-9)
	assert.InDelta(t, 0, pts[0].y, 1e-9)
	assert.Nil(t, roundRect(0, 0, 0, 10, 2))
	assert.Len(t, roundRect(0, 0, 10, 10, 0), 4)
}
