// Package recolor swaps placeholder colours in cached preview artwork for the
// live palette.
package recolor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"colorslide/assets"
	"colorslide/model"
	"colorslide/preview"
)

// Apply replaces every case-insensitive occurrence of each mapped placeholder
// with its role's current value, entry by entry in mapping order. The match
// is plain text, so a placeholder embedded in a longer token is replaced too.
// Entries naming a role the palette cannot resolve are skipped.
func Apply(markup string, colors model.ThemeColors, mapping model.ColorMapping) string {
	for _, e := range mapping.Entries {
		if e.Placeholder == "" {
			continue
		}
		value, ok := colors.Get(e.Role)
		if !ok {
			continue
		}
		re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(e.Placeholder))
		markup = re.ReplaceAllLiteralString(markup, value)
	}
	return markup
}

// Slide is the cached artwork for one preview slide plus the deck's mapping.
type Slide struct {
	Markup  string
	Mapping model.ColorMapping
}

// Render recolours the slide with colors.
func (s *Slide) Render(colors model.ThemeColors) string {
	return Apply(s.Markup, colors, s.Mapping)
}

// LoadSlide fetches the preview markup and colour mapping concurrently.
// A slide without artwork or mapping fails with assets.ErrNotFound; any other
// error (timeouts, server errors, a broken mapping) may clear up on retry.
func LoadSlide(ctx context.Context, src assets.Source, slug string, slideNumber int) (*Slide, error) {
	if src == nil {
		return nil, fmt.Errorf("%s slide %d: %w", slug, slideNumber, assets.ErrNotFound)
	}

	var (
		markup  []byte
		mapping model.ColorMapping
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := src.Fetch(gctx, assets.PreviewPath(slug, slideNumber))
		markup = data
		return err
	})
	g.Go(func() error {
		data, err := src.Fetch(gctx, assets.ColorMapPath(slug))
		if err != nil {
			return err
		}
		mapping, err = model.ParseColorMapping(data)
		return err
	})
	if err := g.Wait(); err != nil {
		if !errors.Is(err, assets.ErrNotFound) && !errors.Is(err, context.Canceled) {
			log.Printf("[recolor] %s slide %d unavailable: %v", slug, slideNumber, err)
		}
		return nil, fmt.Errorf("%s slide %d: %w", slug, slideNumber, err)
	}
	return &Slide{Markup: string(markup), Mapping: mapping}, nil
}

// Source tells where rendered preview markup came from.
type Source string

const (
	SourceRecolored Source = "recolored"
	SourceGeneric   Source = "generic"
)

// Render returns the recoloured cached artwork for the slide, or the generic
// layout when the deck has none.
func Render(ctx context.Context, src assets.Source, slug string, slideNumber int, colors model.ThemeColors) (string, Source) {
	if s, err := LoadSlide(ctx, src, slug, slideNumber); err == nil {
		return s.Render(colors), SourceRecolored
	}
	return preview.SVG(slideNumber, colors), SourceGeneric
}

// Guard discards stale async results: only the most recent Begin token is
// current.
type Guard struct {
	seq atomic.Uint64
}

// Begin starts a new request and supersedes all earlier ones.
func (g *Guard) Begin() uint64 {
	return g.seq.Add(1)
}

// Current reports whether tok is still the latest request.
func (g *Guard) Current(tok uint64) bool {
	return g.seq.Load() == tok
}
