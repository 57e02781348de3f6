package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colorslide/model"
	"colorslide/palette"
)

func TestSaveAndListExports(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.EnsureDirs())

	day := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	first := &model.ExportRecord{Timestamp: day.Add(time.Hour), DeckSlug: "team-intro", Filename: "b.pptx", Path: model.ExportSynthesized, SizeBytes: 10, Colors: palette.Default()}
	second := &model.ExportRecord{Timestamp: day, DeckSlug: "pitch-deck-pro", Filename: "a.pptx", Path: model.ExportTemplate, SizeBytes: 20, Colors: palette.Default()}
	require.NoError(t, s.SaveExport(first))
	require.NoError(t, s.SaveExport(second))

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)

	got, err := s.ListExports(day.Add(-time.Minute), day.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "pitch-deck-pro", got[0].DeckSlug)
	assert.Equal(t, "team-intro", got[1].DeckSlug)
	assert.Equal(t, palette.Default(), got[1].Colors)
	assert.Equal(t, model.ExportTemplate, got[0].Path)

	got, err = s.ListExports(day.Add(30*time.Minute), day.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, first.ID, got[0].ID)

	_, err = os.Stat(filepath.Join(s.baseDir, "exports", "2026", "03", "14"))
	assert.NoError(t, err)
}

func TestSaveFillsTimestamp(t *testing.T) {
	s := New(t.TempDir())
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	rec := &model.ExportRecord{DeckSlug: "x"}
	require.NoError(t, s.SaveExport(rec))
	assert.Equal(t, fixed, rec.Timestamp)

	assert.Error(t, s.SaveExport(nil))
}

func TestListMissingDir(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nothing-here"))
	got, err := s.ListExports(time.Time{}, time.Now())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPruneExports(t *testing.T) {
	s := New(t.TempDir())
	old := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	for _, ts := range []time.Time{old, old.Add(time.Hour), recent} {
		require.NoError(t, s.SaveExport(&model.ExportRecord{Timestamp: ts, DeckSlug: "d"}))
	}

	n, err := s.PruneExports(recent.Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := s.ListExports(time.Time{}, recent.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Timestamp.Equal(recent))

	_, err = os.Stat(filepath.Join(s.baseDir, "exports", "2025"))
	assert.True(t, os.IsNotExist(err), "empty year directory removed")
	_, err = os.Stat(filepath.Join(s.baseDir, "exports", "2026", "02", "01"))
	assert.NoError(t, err)

	n, err = s.PruneExports(recent.Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUndecodableRecordIsSkipped(t *testing.T) {
	s := New(t.TempDir())
	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	require.NoError(t, s.SaveExport(&model.ExportRecord{Timestamp: ts, DeckSlug: "d"}))

	day := filepath.Join(s.baseDir, "exports", "2026", "03", "04")
	require.NoError(t, os.WriteFile(filepath.Join(day, "torn.json"), []byte(`{"id":"x","timest`), 0o644))

	got, err := s.ListExports(time.Time{}, ts.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "d", got[0].DeckSlug)

	n, err := s.PruneExports(ts.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	s := New(t.TempDir())
	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	require.NoError(t, s.SaveExport(&model.ExportRecord{Timestamp: ts, DeckSlug: "d"}))

	entries, err := os.ReadDir(filepath.Join(s.baseDir, "exports", "2026", "03", "04"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".json", filepath.Ext(entries[0].Name()))
}
