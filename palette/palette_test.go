package palette

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colorslide/assets"
	"colorslide/model"
)

type failingSource struct{}

func (failingSource) Fetch(context.Context, string) ([]byte, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func TestDefaultIsComplete(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadFallsBackToDefault(t *testing.T) {
	fsys := fstest.MapFS{
		"decks/broken/theme.json":  {Data: []byte(`{"dk1":`)},
		"decks/partial/theme.json": {Data: []byte(`{"dk1":"#000000","lt1":"#FFFFFF"}`)},
		"decks/badhex/theme.json": {Data: []byte(`{"dk1":"#000","lt1":"#FFFFFF","dk2":"#475569","lt2":"#E2E8F0",
			"accent1":"#0055FF","accent2":"#00D4AA","accent3":"#FF6B6B","accent4":"#845EF7",
			"accent5":"#F59E0B","accent6":"#10B981","hlink":"#0055FF","folHlink":"#00D4AA"}`)},
	}

	cases := map[string]assets.Source{
		"unreachable": failingSource{},
		"missing":     assets.NewFS(fsys),
		"broken":      assets.NewFS(fsys),
		"partial":     assets.NewFS(fsys),
		"badhex":      assets.NewFS(fsys),
	}
	for slug, src := range cases {
		got := NewLoader(src).Load(context.Background(), slug)
		assert.Equal(t, Default(), got, slug)
		assert.NoError(t, got.Validate(), slug)
	}

	var nilLoader *Loader
	assert.Equal(t, Default(), nilLoader.Load(context.Background(), "x"))
}

func TestLoadDeckPalette(t *testing.T) {
	fsys := fstest.MapFS{
		"decks/ocean/theme.json": {Data: []byte(`{"dk1":"#0b1d2a","lt1":"#FFFFFF","dk2":"#475569","lt2":"#E2E8F0",
			"accent1":"#0077b6","accent2":"#00b4d8","accent3":"#90e0ef","accent4":"#845EF7",
			"accent5":"#F59E0B","accent6":"#10B981","hlink":"#0077B6","folHlink":"#00B4D8"}`)},
	}
	got := NewLoader(assets.NewFS(fsys)).Load(context.Background(), "ocean")
	assert.Equal(t, "#0B1D2A", got.Dk1)
	assert.Equal(t, "#0077B6", got.Accent1)
}

func TestEditorSet(t *testing.T) {
	e := NewEditor(Default())
	require.NoError(t, e.Set("accent3", "#abcdef"))
	assert.Equal(t, "#ABCDEF", e.Colors().Accent3)

	before := e.Colors()
	assert.Error(t, e.Set("accent3", "nope"))
	assert.Error(t, e.Set("accent9", "#000000"))
	assert.Equal(t, before, e.Colors())
}

func TestEditorRandomizeAndReset(t *testing.T) {
	e := NewEditor(Default())
	require.NoError(t, e.Set("dk2", "#111111"))
	before := e.Colors()

	e.Randomize(rand.New(rand.NewPCG(1, 2)))
	got := e.Colors()

	require.NoError(t, got.Validate())
	assert.Equal(t, "#FFFFFF", got.Lt1)
	assert.Equal(t, "#1A1A2E", got.Dk1)
	assert.Equal(t, before.Dk2, got.Dk2)
	assert.Equal(t, before.Lt2, got.Lt2)

	changed := 0
	for _, r := range append(append([]model.Role{}, model.AccentRoles...), model.Hlink, model.FolHlink) {
		if got.Color(r) != before.Color(r) {
			changed++
		}
	}
	assert.Equal(t, 8, changed)

	e.Reset()
	assert.Equal(t, before, e.Colors())

	// A second reset with no pending randomize goes back to the loaded default.
	e.Reset()
	assert.Equal(t, Default(), e.Colors())
}

func TestEditorReplace(t *testing.T) {
	e := NewEditor(Default())
	assert.Error(t, e.Replace(model.ThemeColors{}))

	p := Default()
	p.Accent1 = "#000001"
	require.NoError(t, e.Replace(p))
	assert.Equal(t, p, e.Colors())
}
