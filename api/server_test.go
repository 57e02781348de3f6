package api

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colorslide/assets"
	"colorslide/catalog"
	"colorslide/export"
	"colorslide/model"
	"colorslide/palette"
	"colorslide/pptx"
	"colorslide/recolor"
	"colorslide/storage"
	"colorslide/themexml"
)

func dashboardPalette() model.ThemeColors {
	c := palette.Default()
	c.Accent1 = "#112233"
	c.Lt1 = "#FAFAFA"
	return c
}

func paletteBody(t *testing.T, c model.ThemeColors) io.Reader {
	t.Helper()
	data, err := json.Marshal(c)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func testAssets(t *testing.T) fstest.MapFS {
	t.Helper()
	pal, err := json.Marshal(dashboardPalette())
	require.NoError(t, err)
	return fstest.MapFS{
		"decks/dashboard-analytics/theme.json":     {Data: pal},
		"decks/dashboard-analytics/colors.json":    {Data: []byte(`{"colorMappings":{"#ff0000":"accent1","#00ff00":"lt1"}}`)},
		"decks/dashboard-analytics/preview-01.svg": {Data: []byte(`<svg><rect fill="#FF0000"/><rect fill="#00ff00"/></svg>`)},
		"templates/pitch-deck-template.pptx":       {Data: []byte("not a zip")},
	}
}

type testEnv struct {
	ts    *httptest.Server
	api   *Server
	store *storage.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithSource(t, assets.NewFS(testAssets(t)))
}

func newTestEnvWithSource(t *testing.T, src assets.Source) *testEnv {
	t.Helper()
	cat, err := catalog.Load()
	require.NoError(t, err)

	store := storage.New(t.TempDir())
	require.NoError(t, store.EnsureDirs())

	srv := NewServer(cat, src, export.New(src, "ColorSlide"), store)
	mux := http.NewServeMux()
	srv.Register(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return &testEnv{ts: ts, api: srv, store: store}
}

func (e *testEnv) post(t *testing.T, path string, body io.Reader) *http.Response {
	t.Helper()
	resp, err := http.Post(e.ts.URL+path, "application/json", body)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(e.ts.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	resp := env.get(t, "/api/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	decodeBody(t, resp, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestDecksFilter(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/api/decks")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var all decksResponse
	decodeBody(t, resp, &all)
	assert.Len(t, all.Decks, 15)
	assert.Equal(t, "pitch-deck-pro", all.Decks[0].Slug)
	assert.Equal(t, catalog.AllCategories, all.Categories[0])

	resp = env.get(t, "/api/decks?q=startup&tag=Pitch")
	var filtered decksResponse
	decodeBody(t, resp, &filtered)
	require.Len(t, filtered.Decks, 1)
	assert.Equal(t, "pitch-deck-pro", filtered.Decks[0].Slug)

	resp = env.get(t, "/api/decks?q=no-such-deck")
	var none decksResponse
	decodeBody(t, resp, &none)
	assert.NotNil(t, none.Decks)
	assert.Empty(t, none.Decks)
}

func TestDeckDetail(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/api/decks/dashboard-analytics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body deckResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "Dashboard Analytics", body.Deck.Title)
	assert.Equal(t, dashboardPalette(), body.Colors)
	require.Len(t, body.Roles, 12)
	assert.Equal(t, model.Dk1, body.Roles[0].Role)
	assert.Equal(t, "Dark 1 (Text)", body.Roles[0].Label)
	assert.Len(t, body.Slides, 10)
	assert.Equal(t, "title", body.Slides[0])

	resp = env.get(t, "/api/decks/team-intro")
	decodeBody(t, resp, &body)
	assert.Equal(t, palette.Default(), body.Colors, "deck without a palette gets the default")

	resp = env.get(t, "/api/decks/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPreviewRecolored(t *testing.T) {
	env := newTestEnv(t)
	colors := palette.Default()
	colors.Accent1 = "#ABCDEF"

	resp := env.post(t, "/api/decks/dashboard-analytics/preview/1", paletteBody(t, colors))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.Equal(t, string(recolor.SourceRecolored), resp.Header.Get("X-Preview-Source"))
	svg, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, `<svg><rect fill="#ABCDEF"/><rect fill="#FFFFFF"/></svg>`, string(svg))
}

func TestPreviewFallsBackToGeneric(t *testing.T) {
	env := newTestEnv(t)

	resp := env.post(t, "/api/decks/dashboard-analytics/preview/3", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(recolor.SourceGeneric), resp.Header.Get("X-Preview-Source"))
	svg, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(svg), `data-layout="chart"`)
	assert.Contains(t, string(svg), "#112233", "empty body renders with the deck palette")
}

func TestPreviewErrors(t *testing.T) {
	env := newTestEnv(t)

	resp := env.post(t, "/api/decks/dashboard-analytics/preview/11", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.post(t, "/api/decks/dashboard-analytics/preview/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.post(t, "/api/decks/dashboard-analytics/preview/1", strings.NewReader(`{"dk1":"#000000"}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	bad := palette.Default()
	bad.Accent2 = "blue"
	resp = env.post(t, "/api/decks/dashboard-analytics/preview/1", paletteBody(t, bad))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Contains(t, body["error"], "accent2")

	resp = env.post(t, "/api/decks/missing/preview/1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestThumbnail(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/api/decks/dashboard-analytics/thumbnail.png?w=320")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 180, img.Bounds().Dy())

	resp = env.get(t, "/api/decks/dashboard-analytics/thumbnail.png?w=4")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = env.get(t, "/api/decks/dashboard-analytics/thumbnail.png?w=wide")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExportSynthesizedAndRecorded(t *testing.T) {
	env := newTestEnv(t)
	colors := palette.Default()
	colors.Accent3 = "#123456"

	resp := env.post(t, "/api/decks/consulting-strategy/export", paletteBody(t, colors))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, pptx.ContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `"Consulting Strategy - ColorSlide.pptx"`)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	slides := 0
	var theme string
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") {
			slides++
		}
		if f.Name == "ppt/theme/theme1.xml" {
			rc, err := f.Open()
			require.NoError(t, err)
			b, err := io.ReadAll(rc)
			rc.Close()
			require.NoError(t, err)
			theme = string(b)
		}
	}
	assert.Equal(t, 15, slides)
	assert.Contains(t, theme, `val="123456"`)

	resp = env.get(t, "/api/exports")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var records []model.ExportRecord
	decodeBody(t, resp, &records)
	require.Len(t, records, 1)
	assert.Equal(t, "consulting-strategy", records[0].DeckSlug)
	assert.Equal(t, model.ExportSynthesized, records[0].Path)
	assert.Equal(t, len(data), records[0].SizeBytes)
	assert.Equal(t, "#123456", records[0].Colors.Accent3)

	resp = env.get(t, "/api/exports.csv")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rows, err := csv.NewReader(resp.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Deck", rows[0][2])
	assert.Equal(t, "accent3", rows[0][12])
	assert.Equal(t, "consulting-strategy", rows[1][2])
	assert.Equal(t, "#123456", rows[1][12])
}

func TestExportMalformedTemplate(t *testing.T) {
	env := newTestEnv(t)

	resp := env.post(t, "/api/decks/pitch-deck-pro/export", nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	var body map[string]string
	decodeBody(t, resp, &body)
	assert.NotEmpty(t, body["error"])

	recs, err := env.store.ListExports(time.Time{}, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, recs, "failed exports are not recorded")
}

func TestExportErrors(t *testing.T) {
	env := newTestEnv(t)

	resp := env.post(t, "/api/decks/unknown/export", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.post(t, "/api/decks/team-intro/export", strings.NewReader("{"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.get(t, "/api/decks/team-intro/export")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestThemeExport(t *testing.T) {
	env := newTestEnv(t)
	colors := palette.Default()
	colors.FolHlink = "#654321"

	resp := env.post(t, "/api/decks/team-intro/theme", paletteBody(t, colors))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, themexml.ContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "Team Introduction - ColorSlide Theme.xml")
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), `val="654321"`)

	resp = env.get(t, "/api/exports")
	var records []model.ExportRecord
	decodeBody(t, resp, &records)
	require.Len(t, records, 1)
	assert.Equal(t, model.ExportThemeOnly, records[0].Path)
}

func TestExportsBadRange(t *testing.T) {
	env := newTestEnv(t)
	resp := env.get(t, "/api/exports?from=yesterday")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = env.get(t, "/api/exports.csv?to=soon")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
