package model

import (
	"errors"
	"time"
)

var (
	// ErrUnknownRole is returned when a name is not one of the 12 theme roles.
	ErrUnknownRole = errors.New("unknown theme role")
	// ErrInvalidColor is returned for anything other than a 6-digit hex colour.
	ErrInvalidColor = errors.New("invalid color")
)

// Deck is a static catalog entry.
type Deck struct {
	Slug        string   `json:"slug" yaml:"slug"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Tags        []string `json:"tags" yaml:"tags"`
	SlideCount  int      `json:"slide_count" yaml:"slide_count"`
	Template    string   `json:"template,omitempty" yaml:"template,omitempty"`
}

// HasTemplate reports whether a pre-built container exists for the deck.
func (d Deck) HasTemplate() bool {
	return d.Template != ""
}

type ExportPath string

const (
	ExportTemplate    ExportPath = "template"
	ExportSynthesized ExportPath = "synthesized"
	ExportThemeOnly   ExportPath = "theme"
)

// ExportRecord is written for every successful export served over HTTP.
type ExportRecord struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	DeckSlug  string      `json:"deck_slug"`
	Filename  string      `json:"filename"`
	Path      ExportPath  `json:"path"`
	SizeBytes int         `json:"size_bytes"`
	Colors    ThemeColors `json:"colors"`
}

type DisplayMode string

const (
	ModeLight DisplayMode = "light"
	ModeDark  DisplayMode = "dark"
)

// Toggle returns the opposite mode. Anything unrecognised toggles to dark.
func (m DisplayMode) Toggle() DisplayMode {
	if m == ModeDark {
		return ModeLight
	}
	return ModeDark
}

type ScheduleType string

const (
	ScheduleInterval ScheduleType = "interval"
	ScheduleDaily    ScheduleType = "daily"
)

// Schedule says when a background task runs. The ID names the task.
type Schedule struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Enabled   bool         `json:"enabled"`
	Type      ScheduleType `json:"type"`
	Every     string       `json:"every,omitempty"`       // Go duration, e.g. "1h"
	TimeOfDay string       `json:"time_of_day,omitempty"` // "HH:MM" local time
}
