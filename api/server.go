package api

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"colorslide/assets"
	"colorslide/catalog"
	"colorslide/export"
	"colorslide/model"
	"colorslide/palette"
	"colorslide/pptx"
	"colorslide/preview"
	"colorslide/recolor"
	"colorslide/storage"
)

// maxPaletteBody caps palette request bodies.
const maxPaletteBody = 64 << 10

const defaultThumbnailWidth = 480

type Server struct {
	catalog  *catalog.Catalog
	palettes *palette.Loader
	src      assets.Source
	exporter *export.Exporter
	store    *storage.Store
	sessions *WSConnectionManager
	upgrader websocket.Upgrader
}

// NewServer wires the HTTP API. store may be nil, in which case exports are
// served but not recorded.
func NewServer(cat *catalog.Catalog, src assets.Source, exporter *export.Exporter, store *storage.Store) *Server {
	return &Server{
		catalog:  cat,
		palettes: palette.NewLoader(src),
		src:      src,
		exporter: exporter,
		store:    store,
		sessions: NewWSConnectionManager(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 64 << 10,
		},
	}
}

func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/decks", s.handleDecks)
	mux.HandleFunc("GET /api/decks/{slug}", s.handleDeck)
	mux.HandleFunc("POST /api/decks/{slug}/preview/{n}", s.handlePreview)
	mux.HandleFunc("GET /api/decks/{slug}/thumbnail.png", s.handleThumbnail)
	mux.HandleFunc("POST /api/decks/{slug}/export", s.handleExport)
	mux.HandleFunc("POST /api/decks/{slug}/theme", s.handleTheme)
	mux.HandleFunc("GET /api/exports", s.handleExportsJSON)
	mux.HandleFunc("GET /api/exports.csv", s.handleExportsCSV)
	mux.HandleFunc("GET /api/session", s.handleSession)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
		"editing":  s.sessions.Editing(),
	}
	writeJSON(w, http.StatusOK, resp)
}

// ---------- catalog ----------

type decksResponse struct {
	Decks      []model.Deck `json:"decks"`
	Categories []string     `json:"categories"`
}

func (s *Server) handleDecks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp := decksResponse{
		Decks:      s.catalog.Filter(q.Get("q"), q.Get("tag")),
		Categories: append([]string{catalog.AllCategories}, s.catalog.Categories()...),
	}
	writeJSON(w, http.StatusOK, resp)
}

type roleInfo struct {
	Role  model.Role `json:"role"`
	Label string     `json:"label"`
}

type deckResponse struct {
	Deck   model.Deck        `json:"deck"`
	Colors model.ThemeColors `json:"colors"`
	Roles  []roleInfo        `json:"roles"`
	Slides []string          `json:"slides"`
}

func (s *Server) handleDeck(w http.ResponseWriter, r *http.Request) {
	deck, ok := s.deck(w, r)
	if !ok {
		return
	}

	roles := make([]roleInfo, 0, len(model.Roles))
	for _, role := range model.Roles {
		roles = append(roles, roleInfo{Role: role, Label: role.Label()})
	}
	slides := make([]string, deck.SlideCount)
	for i := range slides {
		slides[i] = preview.LayoutName(i + 1)
	}

	writeJSON(w, http.StatusOK, deckResponse{
		Deck:   deck,
		Colors: s.palettes.Load(r.Context(), deck.Slug),
		Roles:  roles,
		Slides: slides,
	})
}

// ---------- previews ----------

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	deck, ok := s.deck(w, r)
	if !ok {
		return
	}
	n, err := strconv.Atoi(r.PathValue("n"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid slide number")
		return
	}
	if n < 1 || n > deck.SlideCount {
		writeError(w, http.StatusNotFound, fmt.Sprintf("%s has no slide %d", deck.Slug, n))
		return
	}
	colors, ok := s.readPalette(w, r, deck)
	if !ok {
		return
	}

	svg, from := recolor.Render(r.Context(), s.src, deck.Slug, n, colors)
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("X-Preview-Source", string(from))
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, svg)
}

func (s *Server) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	deck, ok := s.deck(w, r)
	if !ok {
		return
	}
	width := defaultThumbnailWidth
	if v := r.URL.Query().Get("w"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid width")
			return
		}
		width = n
	}

	var buf bytes.Buffer
	if err := preview.PNG(&buf, 1, s.palettes.Load(r.Context(), deck.Slug), width); err != nil {
		if errors.Is(err, preview.ErrWidth) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "render thumbnail")
		log.Printf("[api] thumbnail %s: %v", deck.Slug, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.Write(buf.Bytes())
}

// ---------- exports ----------

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	deck, ok := s.deck(w, r)
	if !ok {
		return
	}
	colors, ok := s.readPalette(w, r, deck)
	if !ok {
		return
	}

	art, err := s.exporter.Export(r.Context(), deck, colors)
	if err != nil {
		s.exportFailed(w, r, deck, err)
		return
	}
	s.deliver(w, deck, colors, art)
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	deck, ok := s.deck(w, r)
	if !ok {
		return
	}
	colors, ok := s.readPalette(w, r, deck)
	if !ok {
		return
	}

	art, err := s.exporter.ExportTheme(deck, colors)
	if err != nil {
		s.exportFailed(w, r, deck, err)
		return
	}
	s.deliver(w, deck, colors, art)
}

func (s *Server) exportFailed(w http.ResponseWriter, r *http.Request, deck model.Deck, err error) {
	switch {
	case errors.Is(err, context.Canceled) || r.Context().Err() != nil:
		return
	case errors.Is(err, pptx.ErrMalformedContainer):
		log.Printf("[api] export %s: %v", deck.Slug, err)
		writeError(w, http.StatusBadGateway, "the presentation template could not be read")
	case errors.Is(err, model.ErrInvalidColor), errors.Is(err, model.ErrUnknownRole):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("[api] export %s: %v", deck.Slug, err)
		writeError(w, http.StatusInternalServerError, "export failed")
	}
}

// deliver records the export and streams the artifact. A failed history
// write does not fail the download.
func (s *Server) deliver(w http.ResponseWriter, deck model.Deck, colors model.ThemeColors, art *export.Artifact) {
	rec := &model.ExportRecord{
		DeckSlug:  deck.Slug,
		Filename:  art.Filename,
		Path:      art.Path,
		SizeBytes: len(art.Data),
		Colors:    colors,
	}
	if s.store != nil {
		if err := s.store.SaveExport(rec); err != nil {
			log.Printf("[api] record export %s: %v", deck.Slug, err)
		} else {
			s.sessions.BroadcastDeck(deck.Slug, serverMessage{Type: msgExported, Deck: deck.Slug, Record: rec})
		}
	}

	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(art.Data)
}

// ---------- history ----------

func (s *Server) historyRange(w http.ResponseWriter, r *http.Request) (from, to time.Time, ok bool) {
	q := r.URL.Query()
	now := time.Now()
	from = now.AddDate(0, 0, -30)
	to = now

	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from")
			return from, to, false
		}
		from = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to")
			return from, to, false
		}
		to = t
	}
	return from, to, true
}

func (s *Server) exports(w http.ResponseWriter, r *http.Request) ([]model.ExportRecord, bool) {
	from, to, ok := s.historyRange(w, r)
	if !ok {
		return nil, false
	}
	if s.store == nil {
		return []model.ExportRecord{}, true
	}
	records, err := s.store.ListExports(from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load export history")
		log.Printf("[api] list exports: %v", err)
		return nil, false
	}
	if records == nil {
		records = []model.ExportRecord{}
	}
	return records, true
}

func (s *Server) handleExportsJSON(w http.ResponseWriter, r *http.Request) {
	records, ok := s.exports(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleExportsCSV(w http.ResponseWriter, r *http.Request) {
	records, ok := s.exports(w, r)
	if !ok {
		return
	}

	filename := fmt.Sprintf("colorslide-exports-%s.csv", time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{"ID", "Timestamp", "Deck", "Filename", "Path", "Size (bytes)"}
	for _, role := range model.Roles {
		header = append(header, string(role))
	}
	if err := writer.Write(header); err != nil {
		log.Printf("[api] write CSV header: %v", err)
		return
	}

	for _, rec := range records {
		row := []string{
			rec.ID,
			rec.Timestamp.Format(time.RFC3339),
			rec.DeckSlug,
			rec.Filename,
			string(rec.Path),
			strconv.Itoa(rec.SizeBytes),
		}
		for _, role := range model.Roles {
			row = append(row, rec.Colors.Color(role))
		}
		if err := writer.Write(row); err != nil {
			log.Printf("[api] write CSV row: %v", err)
			return
		}
	}
}

// ---------- helpers ----------

// deck resolves the {slug} path value, answering 404 for unknown decks.
func (s *Server) deck(w http.ResponseWriter, r *http.Request) (model.Deck, bool) {
	deck, err := s.catalog.Get(r.PathValue("slug"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return model.Deck{}, false
	}
	return deck, true
}

// readPalette decodes a full palette from the request body. An empty body
// means the deck's default palette.
func (s *Server) readPalette(w http.ResponseWriter, r *http.Request, deck model.Deck) (model.ThemeColors, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPaletteBody))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "palette body too large")
		return model.ThemeColors{}, false
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return s.palettes.Load(r.Context(), deck.Slug), true
	}
	colors, err := model.ParseThemeColors(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return model.ThemeColors{}, false
	}
	return colors, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writeJSON error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
