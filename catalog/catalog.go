// Package catalog holds the static deck catalog.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"colorslide/model"
)

// ErrUnknownDeck is returned by Get for a slug not in the catalog.
var ErrUnknownDeck = errors.New("unknown deck")

// AllCategories matches every deck in Filter.
const AllCategories = "All"

//go:embed decks.yaml
var builtin []byte

type document struct {
	Featured   []string     `yaml:"featured"`
	Categories []string     `yaml:"categories"`
	Decks      []model.Deck `yaml:"decks"`
}

// Catalog is immutable after Load.
type Catalog struct {
	decks      map[string]model.Deck
	list       []model.Deck
	categories []string
}

// Load parses the built-in catalog.
func Load() (*Catalog, error) {
	return Parse(builtin)
}

// Parse builds a catalog from a YAML document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{
		decks:      make(map[string]model.Deck, len(doc.Decks)),
		categories: doc.Categories,
	}
	for _, d := range doc.Decks {
		if d.Slug == "" {
			return nil, fmt.Errorf("catalog: deck %q has no slug", d.Title)
		}
		if _, dup := c.decks[d.Slug]; dup {
			return nil, fmt.Errorf("catalog: duplicate slug %q", d.Slug)
		}
		if d.SlideCount < 1 {
			return nil, fmt.Errorf("catalog: deck %q has slide count %d", d.Slug, d.SlideCount)
		}
		c.decks[d.Slug] = d
	}
	c.list = sortDecks(doc.Decks, doc.Featured)

	log.Printf("[catalog] loaded %d decks", len(c.list))
	return c, nil
}

// sortDecks puts featured decks first in their listed order, then the rest
// alphabetically by title.
func sortDecks(decks []model.Deck, featured []string) []model.Deck {
	var sorted, others []model.Deck
	placed := make(map[string]bool, len(featured))
	for _, slug := range featured {
		if placed[slug] {
			continue
		}
		for _, d := range decks {
			if d.Slug == slug {
				sorted = append(sorted, d)
				placed[slug] = true
				break
			}
		}
	}
	for _, d := range decks {
		if !placed[d.Slug] {
			others = append(others, d)
		}
	}
	sort.SliceStable(others, func(i, j int) bool {
		return strings.ToLower(others[i].Title) < strings.ToLower(others[j].Title)
	})
	return append(sorted, others...)
}

// Get returns the deck with the given slug.
func (c *Catalog) Get(slug string) (model.Deck, error) {
	d, ok := c.decks[slug]
	if !ok {
		return model.Deck{}, fmt.Errorf("%w: %s", ErrUnknownDeck, slug)
	}
	return d, nil
}

// List returns every deck in display order.
func (c *Catalog) List() []model.Deck {
	return append([]model.Deck(nil), c.list...)
}

// Categories returns the browse categories, without the implicit "All".
func (c *Catalog) Categories() []string {
	return append([]string(nil), c.categories...)
}

// Filter returns decks whose title, description or any tag contains query
// (case-insensitive) and that carry the category as a tag. An empty category
// or "All" matches every deck.
func (c *Catalog) Filter(query, category string) []model.Deck {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []model.Deck{}
	for _, d := range c.list {
		if q != "" && !matchesQuery(d, q) {
			continue
		}
		if category != "" && !strings.EqualFold(category, AllCategories) && !hasTag(d, category) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func matchesQuery(d model.Deck, q string) bool {
	if strings.Contains(strings.ToLower(d.Title), q) || strings.Contains(strings.ToLower(d.Description), q) {
		return true
	}
	for _, t := range d.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

func hasTag(d model.Deck, tag string) bool {
	for _, t := range d.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
