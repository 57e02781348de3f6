package pptx

import (
	"fmt"
	"strings"

	"colorslide/model"
)

type layoutFunc func(deck model.Deck, index int) slide

// coreLayouts is the fixed opening sequence of a synthesized deck; any
// remaining slides use genericSlide.
var coreLayouts = []layoutFunc{
	titleSlide,
	agendaSlide,
	metricsSlide,
	featuresSlide,
	quoteSlide,
	timelineSlide,
	teamSlide,
	closingSlide,
}

func layoutAt(i int) layoutFunc {
	if i >= 0 && i < len(coreLayouts) {
		return coreLayouts[i]
	}
	return genericSlide
}

var (
	agendaItems  = []string{"Where we are today", "The opportunity", "Key metrics", "What we offer", "Roadmap", "The team"}
	metricSeries = []float64{42, 58, 73, 65, 88, 97}
	features     = []struct{ title, body string }{
		{"Fast", "Ship in days, not months, with ready-made building blocks."},
		{"Reliable", "Proven in production by teams of every size."},
		{"Secure", "Enterprise-grade controls from day one."},
	}
	milestones = []struct{ when, what string }{
		{"Q1", "Research"},
		{"Q2", "Prototype"},
		{"Q3", "Beta"},
		{"Q4", "Launch"},
		{"Next", "Scale"},
	}
	teamMembers = []struct{ name, role string }{
		{"Alex Morgan", "Chief Executive"},
		{"Jamie Chen", "Engineering"},
		{"Priya Patel", "Design"},
		{"Sam Rivera", "Sales"},
	}
)

func heading(text string) []shape {
	return []shape{
		{x: 120, y: 70, w: 1200, h: 70, text: text, textColor: model.Dk1, size: 36, bold: true},
		{geom: "rect", x: 120, y: 150, w: 160, h: 6, fill: model.Accent1},
	}
}

func titleSlide(deck model.Deck, _ int) slide {
	shapes := []shape{
		{x: 0, y: 0, w: 1920, h: 200, fill: model.Accent1, alpha: 10},
		{geom: "ellipse", x: 1400, y: -100, w: 600, h: 600, fill: model.Accent2, alpha: 10},
		{geom: "ellipse", x: 1650, y: -50, w: 300, h: 300, fill: model.Accent3, alpha: 15},
		{x: 120, y: 380, w: 1200, h: 120, text: deck.Title, textColor: model.Dk1, size: 54, bold: true},
		{x: 120, y: 520, w: 1200, h: 80, text: deck.Description, textColor: model.Dk2, size: 24},
		{geom: "roundRect", x: 120, y: 660, w: 240, h: 12, fill: model.Accent1},
	}
	if len(deck.Tags) > 0 {
		shapes = append(shapes, shape{x: 120, y: 710, w: 1200, h: 50, text: strings.Join(deck.Tags, "  ·  "), textColor: model.Accent2, size: 18})
	}
	shapes = append(shapes, shape{geom: "roundRect", x: 1300, y: 300, w: 500, h: 400, fill: model.Lt2})
	return slide{background: model.Lt1, shapes: shapes}
}

func agendaSlide(_ model.Deck, _ int) slide {
	shapes := heading("Agenda")
	for i, item := range agendaItems {
		y := 220 + i*120
		role := model.Accent(i)
		shapes = append(shapes,
			shape{geom: "ellipse", x: 120, y: y, w: 80, h: 80, fill: role, text: fmt.Sprintf("%d", i+1), textColor: model.Lt1, size: 24, bold: true, align: "ctr"},
			shape{x: 240, y: y, w: 1200, h: 80, text: item, textColor: model.Dk1, size: 28},
		)
	}
	return slide{background: model.Lt1, shapes: shapes}
}

// metricsSlide draws one bar per series value, height proportional to the
// series maximum, with accent roles assigned in order.
func metricsSlide(_ model.Deck, _ int) slide {
	shapes := heading("Key Metrics")
	shapes = append(shapes, shape{geom: "roundRect", x: 120, y: 200, w: 1000, h: 640, fill: model.Lt2})

	const (
		baseline  = 780
		maxHeight = 500
		barWidth  = 90
	)
	peak := 0.0
	for _, v := range metricSeries {
		if v > peak {
			peak = v
		}
	}
	for i, v := range metricSeries {
		h := int(v / peak * maxHeight)
		x := 200 + i*140
		role := model.Accent(i)
		shapes = append(shapes,
			shape{geom: "rect", x: x, y: baseline - h, w: barWidth, h: h, fill: role},
			shape{x: x, y: baseline - h - 50, w: barWidth, h: 40, text: fmt.Sprintf("%g", v), textColor: model.Dk2, size: 16, align: "ctr"},
		)
	}

	stats := []struct {
		role  model.Role
		label string
		value string
	}{
		{model.Accent1, "Revenue", "$4.2M"},
		{model.Accent2, "Customers", "1,280"},
		{model.Accent5, "Retention", "97%"},
	}
	for i, s := range stats {
		y := 200 + i*220
		shapes = append(shapes,
			shape{geom: "roundRect", x: 1200, y: y, w: 600, h: 180, fill: s.role, alpha: 10},
			shape{x: 1240, y: y + 30, w: 500, h: 40, text: s.label, textColor: s.role, size: 18, bold: true},
			shape{x: 1240, y: y + 80, w: 500, h: 70, text: s.value, textColor: model.Dk1, size: 36, bold: true},
		)
	}
	return slide{background: model.Lt1, shapes: shapes}
}

func featuresSlide(_ model.Deck, _ int) slide {
	shapes := heading("What We Offer")
	for i, f := range features {
		x := 120 + i*570
		role := model.Accent(i)
		shapes = append(shapes,
			shape{geom: "roundRect", x: x, y: 200, w: 530, h: 680, fill: role, alpha: 8},
			shape{geom: "ellipse", x: x + 185, y: 260, w: 160, h: 160, fill: role, alpha: 30},
			shape{x: x + 60, y: 460, w: 410, h: 60, text: f.title, textColor: model.Dk1, size: 28, bold: true, align: "ctr"},
			shape{x: x + 60, y: 540, w: 410, h: 160, text: f.body, textColor: model.Dk2, size: 18, align: "ctr"},
		)
	}
	return slide{background: model.Lt1, shapes: shapes}
}

func quoteSlide(_ model.Deck, _ int) slide {
	return slide{background: model.Lt1, shapes: []shape{
		{x: 0, y: 0, w: 1920, h: 1080, fill: model.Accent1, alpha: 3},
		{x: 200, y: 120, w: 300, h: 300, text: "“", textColor: model.Accent1, size: 200},
		{x: 350, y: 380, w: 1200, h: 200, text: "They turned a complicated problem into something our whole team could use on day one.", textColor: model.Dk1, size: 36, italic: true},
		{x: 350, y: 620, w: 4, h: 60, fill: model.Accent1},
		{x: 380, y: 620, w: 600, h: 30, text: "Jordan Lee", textColor: model.Accent1, size: 20, bold: true},
		{x: 380, y: 655, w: 600, h: 25, text: "Head of Operations, Northwind", textColor: model.Dk2, size: 14},
	}}
}

// timelineSlide alternates milestone cards above and below the axis.
func timelineSlide(_ model.Deck, _ int) slide {
	shapes := heading("Roadmap")
	shapes = append(shapes, shape{x: 120, y: 540, w: 1680, h: 4, fill: model.Accent1, alpha: 30})
	for i, m := range milestones {
		cx := 300 + i*350
		role := model.Accent(i)
		cardY := 350
		if i%2 == 1 {
			cardY = 590
		}
		shapes = append(shapes,
			shape{geom: "ellipse", x: cx - 20, y: 522, w: 40, h: 40, fill: role},
			shape{geom: "roundRect", x: cx - 100, y: cardY, w: 200, h: 140, fill: role, alpha: 10},
			shape{x: cx - 80, y: cardY + 25, w: 160, h: 35, text: m.when, textColor: role, size: 18, bold: true},
			shape{x: cx - 80, y: cardY + 70, w: 160, h: 40, text: m.what, textColor: model.Dk2, size: 16},
		)
	}
	return slide{background: model.Lt1, shapes: shapes}
}

func teamSlide(_ model.Deck, _ int) slide {
	shapes := heading("Meet the Team")
	for i, m := range teamMembers {
		x := 120 + i*420
		role := model.Accent(i)
		shapes = append(shapes,
			shape{geom: "roundRect", x: x, y: 220, w: 380, h: 450, fill: role, alpha: 8},
			shape{geom: "ellipse", x: x + 110, y: 280, w: 160, h: 160, fill: role, alpha: 20, text: initials(m.name), textColor: role, size: 32, bold: true, align: "ctr"},
			shape{x: x + 30, y: 470, w: 320, h: 50, text: m.name, textColor: model.Dk1, size: 22, bold: true, align: "ctr"},
			shape{x: x + 30, y: 530, w: 320, h: 40, text: m.role, textColor: role, size: 16, align: "ctr"},
		)
	}
	return slide{background: model.Lt1, shapes: shapes}
}

func closingSlide(deck model.Deck, _ int) slide {
	return slide{background: model.Accent1, shapes: []shape{
		{geom: "ellipse", x: -100, y: -100, w: 600, h: 600, fill: model.Lt1, alpha: 5},
		{geom: "ellipse", x: 1300, y: 500, w: 800, h: 800, fill: model.Lt1, alpha: 5},
		{geom: "ellipse", x: 1450, y: 50, w: 300, h: 300, fill: model.Accent2, alpha: 20},
		{geom: "ellipse", x: 100, y: 600, w: 400, h: 400, fill: model.Accent3, alpha: 15},
		{x: 360, y: 380, w: 1200, h: 120, text: "Thank You", textColor: model.Lt1, size: 60, bold: true, align: "ctr"},
		{x: 360, y: 510, w: 1200, h: 60, text: deck.Title, textColor: model.Lt1, size: 24, align: "ctr"},
		{geom: "roundRect", x: 835, y: 620, w: 250, h: 60, fill: model.Lt1, text: "Questions?", textColor: model.Accent1, size: 18, bold: true, align: "ctr"},
		{x: 560, y: 820, w: 800, h: 40, text: "www.example.com", textColor: model.Hlink, size: 16, align: "ctr"},
	}}
}

// genericSlide pads a deck to its slide count; its accent is index mod 6.
func genericSlide(_ model.Deck, index int) slide {
	role := model.Accent(index)
	return slide{background: model.Lt1, shapes: []shape{
		{x: 0, y: 0, w: 8, h: 1080, fill: role},
		{x: 120, y: 70, w: 1200, h: 70, text: fmt.Sprintf("Slide %d", index+1), textColor: model.Dk1, size: 36, bold: true},
		{x: 120, y: 150, w: 160, h: 6, fill: role},
		{x: 120, y: 220, w: 1000, h: 40, text: "Add your key message here.", textColor: model.Dk1, size: 24},
		{x: 120, y: 280, w: 1000, h: 120, text: "Supporting detail goes here.", textColor: model.Dk2, size: 18},
		{geom: "roundRect", x: 1240, y: 200, w: 560, h: 500, fill: role, alpha: 15},
	}}
}

func initials(name string) string {
	var b strings.Builder
	for _, part := range strings.Fields(name) {
		b.WriteString(strings.ToUpper(part[:1]))
	}
	return b.String()
}
