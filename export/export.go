// Package export turns a deck and a palette into a downloadable artifact.
package export

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"colorslide/assets"
	"colorslide/model"
	"colorslide/pptx"
	"colorslide/themexml"
)

// Artifact is one finished download. It is only ever returned complete.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
	Path        model.ExportPath
}

// Exporter builds presentations from templates in src, or synthesizes them
// when a deck has no usable template.
type Exporter struct {
	src     assets.Source
	product string
}

func New(src assets.Source, product string) *Exporter {
	if product == "" {
		product = "ColorSlide"
	}
	return &Exporter{src: src, product: product}
}

// ThemeName is the name written into the theme part.
func (e *Exporter) ThemeName(deck model.Deck) string {
	return deck.Title + " - " + e.product
}

// Export produces the .pptx for deck recoloured with colors. A template that
// cannot be fetched falls back to synthesis; a template that is fetched but
// cannot be read fails with pptx.ErrMalformedContainer.
func (e *Exporter) Export(ctx context.Context, deck model.Deck, colors model.ThemeColors) (*Artifact, error) {
	if err := colors.Validate(); err != nil {
		return nil, fmt.Errorf("export %s: %w", deck.Slug, err)
	}

	base, path, err := e.container(ctx, deck)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", deck.Slug, err)
	}

	data, err := pptx.InjectTheme(base, e.ThemeName(deck), colors)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", deck.Slug, err)
	}

	log.Printf("[export] %s via %s path (%d bytes)", deck.Slug, path, len(data))
	return &Artifact{
		Filename:    filename(deck.Title + " - " + e.product + ".pptx"),
		ContentType: pptx.ContentType,
		Data:        data,
		Path:        path,
	}, nil
}

func (e *Exporter) container(ctx context.Context, deck model.Deck) ([]byte, model.ExportPath, error) {
	if deck.HasTemplate() && e.src != nil {
		data, err := e.src.Fetch(ctx, assets.TemplatePath(deck.Template))
		switch {
		case err == nil:
			return data, model.ExportTemplate, nil
		case ctx.Err() != nil:
			return nil, "", ctx.Err()
		case !errors.Is(err, assets.ErrNotFound):
			log.Printf("[export] %s: template unavailable: %v", deck.Slug, err)
		}
	}

	data, err := pptx.Synthesize(deck, e.ThemeName(deck), e.product)
	if err != nil {
		return nil, "", fmt.Errorf("synthesize: %w", err)
	}
	return data, model.ExportSynthesized, nil
}

// ExportTheme produces the theme part alone, for import into other tools.
func (e *Exporter) ExportTheme(deck model.Deck, colors model.ThemeColors) (*Artifact, error) {
	data, err := themexml.Serialize(e.ThemeName(deck), colors)
	if err != nil {
		return nil, fmt.Errorf("export theme %s: %w", deck.Slug, err)
	}
	return &Artifact{
		Filename:    filename(deck.Title + " - " + e.product + " Theme.xml"),
		ContentType: themexml.ContentType,
		Data:        data,
		Path:        model.ExportThemeOnly,
	}, nil
}

var unsafeFilename = strings.NewReplacer("/", "-", "\\", "-", "\x00", "", "\n", " ", "\r", " ", `"`, "'")

func filename(s string) string {
	return unsafeFilename.Replace(s)
}
