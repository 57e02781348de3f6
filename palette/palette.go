// Package palette owns the 12-role theme palette: the fallback default,
// per-deck loading and the session-local editor.
package palette

import (
	"context"
	"errors"
	"log"
	"math/rand/v2"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"colorslide/assets"
	"colorslide/model"
)

const (
	randomBackground = "#FFFFFF"
	randomText       = "#1A1A2E"
)

// Default is the palette used whenever a deck has none of its own.
func Default() model.ThemeColors {
	return model.ThemeColors{
		Dk1:      "#1E293B",
		Lt1:      "#FFFFFF",
		Dk2:      "#475569",
		Lt2:      "#E2E8F0",
		Accent1:  "#0055FF",
		Accent2:  "#00D4AA",
		Accent3:  "#FF6B6B",
		Accent4:  "#845EF7",
		Accent5:  "#F59E0B",
		Accent6:  "#10B981",
		Hlink:    "#0055FF",
		FolHlink: "#00D4AA",
	}
}

// Loader fetches a deck's default palette.
type Loader struct {
	src assets.Source
}

func NewLoader(src assets.Source) *Loader {
	return &Loader{src: src}
}

// Load never fails: any problem with the deck's palette resource yields Default().
func (l *Loader) Load(ctx context.Context, slug string) model.ThemeColors {
	if l == nil || l.src == nil {
		return Default()
	}
	data, err := l.src.Fetch(ctx, assets.PalettePath(slug))
	if err != nil {
		if !errors.Is(err, assets.ErrNotFound) {
			log.Printf("[palette] %s: %v, using default", slug, err)
		}
		return Default()
	}
	colors, err := model.ParseThemeColors(data)
	if err != nil {
		log.Printf("[palette] %s: %v, using default", slug, err)
		return Default()
	}
	return colors
}

// Editor holds the palette being edited in one session. It is owned by a
// single goroutine and is not safe for concurrent use.
type Editor struct {
	base     model.ThemeColors
	current  model.ThemeColors
	snapshot *model.ThemeColors
}

func NewEditor(base model.ThemeColors) *Editor {
	return &Editor{base: base, current: base}
}

func (e *Editor) Colors() model.ThemeColors {
	return e.current
}

// Set edits one slot. The palette is unchanged on error.
func (e *Editor) Set(role, value string) error {
	next := e.current
	if err := next.Set(role, value); err != nil {
		return err
	}
	e.current = next
	return nil
}

// Replace swaps the whole palette, e.g. when a client pushes its own copy.
func (e *Editor) Replace(c model.ThemeColors) error {
	if err := c.Validate(); err != nil {
		return err
	}
	e.current = c
	return nil
}

// Randomize pins lt1/dk1 to white and a fixed dark, draws fresh accents and
// link colours, and keeps dk2/lt2. The previous palette is kept for Reset.
func (e *Editor) Randomize(rng *rand.Rand) {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	prev := e.current
	e.snapshot = &prev

	next := e.current
	next.Lt1 = randomBackground
	next.Dk1 = randomText
	for _, r := range model.AccentRoles {
		_ = next.Set(string(r), randomHex(rng))
	}
	_ = next.Set(string(model.Hlink), randomHex(rng))
	_ = next.Set(string(model.FolHlink), randomHex(rng))
	e.current = next
}

// Reset restores the palette from before the last Randomize, or the loaded
// default if there was none.
func (e *Editor) Reset() {
	if e.snapshot != nil {
		e.current = *e.snapshot
		e.snapshot = nil
		return
	}
	e.current = e.base
}

func randomHex(rng *rand.Rand) string {
	v := rng.Uint32()
	c := colorful.Color{
		R: float64(v>>16&0xff) / 255,
		G: float64(v>>8&0xff) / 255,
		B: float64(v&0xff) / 255,
	}
	return strings.ToUpper(c.Hex())
}
