package preview

import "colorslide/model"

type layout struct {
	name  string
	prims []prim
}

// layouts is indexed by (slideNumber-1) mod len(layouts).
var layouts = []layout{
	{"title", titleLayout()},
	{"content", contentLayout()},
	{"chart", chartLayout()},
	{"three-column", threeColumnLayout()},
	{"quote", quoteLayout()},
	{"timeline", timelineLayout()},
	{"comparison", comparisonLayout()},
	{"team", teamLayout()},
	{"data", dataLayout()},
	{"closing", closingLayout()},
}

func rect(x, y, w, h, rx float64, fill model.Role, opacity float64) prim {
	return prim{kind: kindRect, x: x, y: y, w: w, h: h, r: rx, fill: fill, opacity: opacity}
}

func outline(x, y, w, h, rx float64, stroke model.Role) prim {
	return prim{kind: kindRect, x: x, y: y, w: w, h: h, r: rx, stroke: stroke}
}

func circle(cx, cy, r float64, fill model.Role, opacity float64) prim {
	return prim{kind: kindCircle, x: cx, y: cy, r: r, fill: fill, opacity: opacity}
}

func wedge(cx, cy, r, from, to float64, fill model.Role) prim {
	return prim{kind: kindWedge, x: cx, y: cy, r: r, from: from, to: to, fill: fill}
}

func text(x, y, size float64, s string, fill model.Role, opacity float64, bold, center bool) prim {
	return prim{kind: kindText, x: x, y: y, size: size, text: s, fill: fill, opacity: opacity, bold: bold, center: center}
}

func background(role model.Role) prim { return rect(0, 0, Width, Height, 0, role, 0) }

// lines draws placeholder text bars of the given widths, spaced step apart.
func lines(x, y, step, h float64, role model.Role, opacity float64, widths ...float64) []prim {
	out := make([]prim, 0, len(widths))
	for i, w := range widths {
		out = append(out, rect(x, y+float64(i)*step, w, h, 4, role, opacity))
	}
	return out
}

func titleLayout() []prim {
	return []prim{
		background(model.Lt1),
		rect(0, 0, 1920, 200, 0, model.Accent1, 0.1),
		circle(1700, 200, 300, model.Accent2, 0.1),
		circle(1800, 100, 150, model.Accent3, 0.15),
		rect(120, 400, 800, 60, 8, model.Accent1, 0),
		rect(120, 500, 600, 30, 6, model.Dk1, 0.5),
		rect(120, 550, 400, 20, 4, model.Dk2, 0.3),
		rect(120, 700, 200, 50, 25, model.Accent2, 0),
		outline(350, 700, 200, 50, 25, model.Accent1),
		rect(1200, 300, 500, 400, 20, model.Lt2, 0),
		rect(1250, 350, 200, 20, 4, model.Dk2, 0.4),
		rect(1250, 400, 350, 200, 10, model.Accent1, 0.3),
	}
}

func contentLayout() []prim {
	p := []prim{
		background(model.Lt1),
		rect(0, 0, 8, 1080, 0, model.Accent1, 0),
		rect(120, 80, 400, 40, 6, model.Accent1, 0),
		rect(120, 140, 600, 3, 0, model.Accent2, 0),
		rect(120, 220, 800, 20, 4, model.Dk1, 0.7),
	}
	p = append(p, lines(120, 260, 40, 20, model.Dk2, 0.5, 700, 750)...)
	cards := []struct{ tint, button model.Role }{
		{model.Accent3, model.Accent1},
		{model.Accent2, model.Accent2},
	}
	for i, c := range cards {
		x := 120 + float64(i)*560
		p = append(p,
			rect(x, 380, 500, 300, 16, c.tint, 0.15),
			rect(x+40, 420, 200, 16, 4, model.Dk1, 0.6),
		)
		p = append(p, lines(x+40, 460, 30, 12, model.Dk2, 0.4, 400, 380)...)
		p = append(p, rect(x+40, 550, 180, 40, 20, c.button, 0))
	}
	return append(p,
		rect(1240, 200, 560, 500, 20, model.Accent1, 0.08),
		circle(1520, 450, 150, model.Accent4, 0.3),
	)
}

var chartBars = []float64{100, 200, 270, 350, 400, 450, 370}

func chartLayout() []prim {
	p := []prim{
		background(model.Lt1),
		rect(120, 80, 350, 35, 6, model.Accent1, 0),
		rect(120, 130, 500, 18, 4, model.Dk2, 0.4),
		rect(120, 200, 1000, 600, 20, model.Lt2, 0),
	}
	const baseline = 750
	for i, h := range chartBars {
		opacity := 0.0
		if i >= len(model.AccentRoles) {
			opacity = 0.7
		}
		p = append(p, rect(200+float64(i)*120, baseline-h, 80, h, 8, model.Accent(i), opacity))
	}
	for i, s := range []struct {
		role  model.Role
		value float64
	}{{model.Accent1, 200}, {model.Accent2, 180}, {model.Accent5, 160}} {
		y := 200 + float64(i)*220
		p = append(p,
			rect(1200, y, 600, 180, 16, s.role, 0.1),
			rect(1240, y+40, 120, 20, 4, s.role, 0),
			rect(1240, y+80, s.value, 50, 6, model.Dk1, 0.7),
		)
	}
	return p
}

func threeColumnLayout() []prim {
	p := []prim{
		background(model.Lt1),
		rect(120, 80, 300, 35, 6, model.Accent1, 0),
	}
	for i := 0; i < 3; i++ {
		x := 120 + float64(i)*570
		role := model.Accent(i)
		p = append(p,
			rect(x, 180, 530, 700, 20, role, 0.08),
			circle(x+265, 320, 80, role, 0.3),
			rect(x+100, 440, 330, 24, 4, model.Dk1, 0.7),
		)
		p = append(p, lines(x+100, 490, 30, 16, model.Dk2, 0.4, 280, 300, 260)...)
	}
	return p
}

func quoteLayout() []prim {
	p := []prim{
		background(model.Lt1),
		rect(0, 0, 1920, 1080, 0, model.Accent1, 0.03),
		text(200, 350, 300, "“", model.Accent1, 0.15, false, false),
		text(1550, 850, 300, "”", model.Accent1, 0.15, false, false),
	}
	for i, w := range []float64{1200, 1100, 900} {
		p = append(p, rect(350, 380+float64(i)*60, w, 40, 6, model.Dk1, 0.7))
	}
	return append(p,
		rect(350, 620, 4, 60, 0, model.Accent1, 0),
		rect(380, 630, 200, 20, 4, model.Accent1, 0),
		rect(380, 660, 150, 14, 4, model.Dk2, 0.5),
	)
}

// timelineLayout alternates milestone cards above and below the axis.
func timelineLayout() []prim {
	p := []prim{
		background(model.Lt1),
		rect(120, 80, 250, 35, 6, model.Accent1, 0),
		rect(120, 540, 1680, 4, 0, model.Accent1, 0.3),
	}
	for i := 0; i < 5; i++ {
		cx := 300 + float64(i)*360
		role := model.Accent(i)
		y := 350.0
		if i%2 == 1 {
			y = 590
		}
		p = append(p,
			circle(cx, 542, 20, role, 0),
			rect(cx-100, y, 200, 140, 12, role, 0.1),
			rect(cx-80, y+30, 100, 16, 4, role, 0),
			rect(cx-80, y+60, 160, 12, 4, model.Dk2, 0.5),
		)
	}
	return p
}

func comparisonLayout() []prim {
	p := []prim{
		background(model.Lt1),
		rect(120, 80, 300, 35, 6, model.Accent1, 0),
	}
	sides := []struct {
		x          float64
		role, dots model.Role
	}{
		{120, model.Accent1, model.Accent5},
		{980, model.Accent2, model.Accent3},
	}
	for _, s := range sides {
		p = append(p,
			rect(s.x, 180, 820, 700, 20, s.role, 0.08),
			rect(s.x+60, 220, 200, 28, 6, s.role, 0),
		)
		for i, w := range []float64{300, 280, 320} {
			y := 300 + float64(i)*80
			p = append(p,
				rect(s.x+60, y, 700, 60, 10, model.Lt1, 0),
				circle(s.x+100, y+30, 15, s.dots, 0),
				rect(s.x+140, y+15, w, 14, 4, model.Dk1, 0.6),
			)
		}
	}
	return append(p,
		rect(955, 200, 4, 660, 2, model.Accent1, 0.2),
		text(957, 540, 40, "VS", model.Accent1, 0, true, true),
	)
}

func teamLayout() []prim {
	p := []prim{
		background(model.Lt1),
		rect(120, 80, 250, 35, 6, model.Accent1, 0),
		rect(120, 130, 400, 18, 4, model.Dk2, 0.4),
	}
	for i := 0; i < 4; i++ {
		x := 120 + float64(i)*420
		role := model.Accent(i)
		p = append(p,
			rect(x, 220, 380, 450, 20, role, 0.08),
			circle(x+190, 360, 80, role, 0.2),
			rect(x+80, 480, 220, 24, 4, model.Dk1, 0.7),
			rect(x+110, 520, 160, 16, 4, role, 0),
		)
		p = append(p, lines(x+60, 570, 25, 12, model.Dk2, 0.4, 260, 240)...)
	}
	return p
}

func dataLayout() []prim {
	p := []prim{
		background(model.Lt1),
		rect(120, 80, 300, 35, 6, model.Accent1, 0),
		circle(450, 540, 250, model.Accent1, 0.8),
		wedge(450, 540, 250, 0, 129, model.Accent2),
		wedge(450, 540, 250, 129, 234, model.Accent3),
		wedge(450, 540, 250, 234, 360, model.Accent4),
		circle(450, 540, 100, model.Lt1, 0),
	}
	for i, w := range []float64{150, 120, 140, 100} {
		y := 350 + float64(i)*50
		p = append(p,
			rect(800, y, 24, 24, 4, model.Accent(i), 0),
			rect(840, y+5, w, 14, 4, model.Dk1, 0.6),
		)
	}
	for i, s := range []struct {
		role       model.Role
		value, sub float64
	}{{model.Accent1, 150, 200}, {model.Accent2, 130, 180}} {
		x := 1100 + float64(i)*380
		p = append(p,
			rect(x, 200, 350, 180, 16, s.role, 0.1),
			rect(x+40, 240, 80, 16, 4, s.role, 0),
			rect(x+40, 280, s.value, 50, 6, model.Dk1, 0.7),
			rect(x+40, 340, s.sub, 12, 4, model.Accent5, 0.6),
		)
	}
	p = append(p,
		rect(1100, 420, 730, 250, 16, model.Lt2, 0),
		rect(1140, 460, 200, 20, 4, model.Dk1, 0.6),
	)
	return append(p, lines(1140, 500, 30, 12, model.Dk2, 0.4, 600, 580, 550)...)
}

func closingLayout() []prim {
	return []prim{
		background(model.Accent1),
		circle(200, 200, 300, model.Lt1, 0.05),
		circle(1700, 900, 400, model.Lt1, 0.05),
		circle(1600, 200, 150, model.Accent2, 0.2),
		circle(300, 800, 200, model.Accent3, 0.15),
		rect(560, 400, 800, 60, 8, model.Lt1, 0),
		rect(660, 500, 600, 30, 6, model.Lt1, 0.7),
		rect(660, 600, 250, 60, 30, model.Lt1, 0),
		outline(950, 600, 250, 60, 30, model.Lt1),
		rect(710, 750, 500, 20, 4, model.Lt1, 0.5),
		rect(760, 790, 400, 16, 4, model.Lt1, 0.3),
		rect(860, 830, 200, 14, 4, model.Hlink, 0.8),
	}
}
