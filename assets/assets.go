// Package assets fetches per-deck resources (palette, colour mapping,
// preview markup, template containers) from a directory or an HTTP origin.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"
)

// ErrNotFound means the resource does not exist at the source.
var ErrNotFound = errors.New("asset not found")

// maxAssetSize caps a single fetch; template containers are the largest assets.
const maxAssetSize = 64 << 20

// Source resolves slash-separated asset names such as "decks/team-intro/theme.json".
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

func PalettePath(slug string) string {
	return path.Join("decks", slug, "theme.json")
}

func ColorMapPath(slug string) string {
	return path.Join("decks", slug, "colors.json")
}

// PreviewPath addresses the cached preview for a 1-based slide number.
func PreviewPath(slug string, slide int) string {
	return path.Join("decks", slug, fmt.Sprintf("preview-%02d.svg", slide))
}

func TemplatePath(file string) string {
	return path.Join("templates", file)
}

// Dir serves assets from a local directory.
type Dir struct {
	fsys fs.FS
}

func NewDir(root string) *Dir {
	return &Dir{fsys: os.DirFS(root)}
}

// NewFS wraps any fs.FS (embedded assets, fstest.MapFS).
func NewFS(fsys fs.FS) *Dir {
	return &Dir{fsys: fsys}
}

func (d *Dir) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name = strings.TrimPrefix(name, "/")
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	data, err := fs.ReadFile(d.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// HTTP fetches assets relative to a base URL.
type HTTP struct {
	base   *url.URL
	client *http.Client
}

func NewHTTP(baseURL string, timeout time.Duration) (*HTTP, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse assets url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("assets url must be http(s): %s", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTP{base: u, client: &http.Client{Timeout: timeout}}, nil
}

func (h *HTTP) Fetch(ctx context.Context, name string) ([]byte, error) {
	ref, err := url.Parse(strings.TrimPrefix(name, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	target := h.base.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", name, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch %s: status %d", name, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) > maxAssetSize {
		return nil, fmt.Errorf("fetch %s: asset larger than %d bytes", name, maxAssetSize)
	}
	return data, nil
}
