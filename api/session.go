package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/singleflight"

	"colorslide/assets"
	"colorslide/model"
	"colorslide/palette"
	"colorslide/preview"
	"colorslide/recolor"
)

const maxSessionMessage = 16 << 10

// Client to server.
const (
	msgSelect    = "select"
	msgSet       = "set"
	msgRandomize = "randomize"
	msgReset     = "reset"
	msgMode      = "mode"
)

// Server to client. msgMode is shared.
const (
	msgPalette  = "palette"
	msgPreview  = "preview"
	msgError    = "error"
	msgExported = "exported"
)

type clientMessage struct {
	Type  string `json:"type"`
	Deck  string `json:"deck,omitempty"`
	Slide int    `json:"slide,omitempty"`
	Role  string `json:"role,omitempty"`
	Value string `json:"value,omitempty"`
	Mode  string `json:"mode,omitempty"`
}

type serverMessage struct {
	Type   string              `json:"type"`
	Deck   string              `json:"deck,omitempty"`
	Slide  int                 `json:"slide,omitempty"`
	Colors *model.ThemeColors  `json:"colors,omitempty"`
	Source recolor.Source      `json:"source,omitempty"`
	SVG    string              `json:"svg,omitempty"`
	Mode   model.DisplayMode   `json:"mode,omitempty"`
	Error  string              `json:"error,omitempty"`
	Record *model.ExportRecord `json:"record,omitempty"`
}

// session is one editing connection. The read loop owns deck, slide, mode
// and editor; preview jobs only touch the slide cache and the guard.
type session struct {
	srv  *Server
	conn *websocket.Conn
	id   string

	deck   model.Deck
	slide  int
	mode   model.DisplayMode
	editor *palette.Editor

	guard     recolor.Guard
	previewMu sync.Mutex // orders the guard check with the write
	jobs      sync.WaitGroup

	loads   singleflight.Group
	cacheMu sync.Mutex
	cache   map[string]*recolor.Slide
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[session] upgrade: %v", err)
		return
	}
	id := s.sessions.Add(conn)
	defer func() {
		s.sessions.Remove(conn)
		conn.Close()
	}()

	ctx, cancel := context.WithCancel(context.Background())
	sess := &session{
		srv:   s,
		conn:  conn,
		id:    id,
		mode:  model.ModeLight,
		cache: make(map[string]*recolor.Slide),
	}
	defer func() {
		cancel()
		sess.jobs.Wait()
	}()

	conn.SetReadLimit(maxSessionMessage)
	sess.send(serverMessage{Type: msgMode, Mode: sess.mode})
	sess.run(ctx)
}

func (sess *session) run(ctx context.Context) {
	for {
		var msg clientMessage
		if err := sess.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[session] %s read: %v", sess.id, err)
			}
			return
		}
		if err := sess.handle(ctx, msg); err != nil {
			sess.send(serverMessage{Type: msgError, Error: err.Error()})
		}
	}
}

var errNoDeck = errors.New("no deck selected")

func (sess *session) handle(ctx context.Context, msg clientMessage) error {
	switch msg.Type {
	case msgSelect:
		return sess.selectSlide(ctx, msg.Deck, msg.Slide)

	case msgSet:
		if sess.editor == nil {
			return errNoDeck
		}
		if err := sess.editor.Set(msg.Role, msg.Value); err != nil {
			return err
		}
		sess.paletteChanged(ctx)

	case msgRandomize:
		if sess.editor == nil {
			return errNoDeck
		}
		sess.editor.Randomize(nil)
		sess.paletteChanged(ctx)

	case msgReset:
		if sess.editor == nil {
			return errNoDeck
		}
		sess.editor.Reset()
		sess.paletteChanged(ctx)

	case msgMode:
		switch model.DisplayMode(msg.Mode) {
		case "":
			sess.mode = sess.mode.Toggle()
		case model.ModeLight, model.ModeDark:
			sess.mode = model.DisplayMode(msg.Mode)
		default:
			return fmt.Errorf("unknown mode %q", msg.Mode)
		}
		sess.send(serverMessage{Type: msgMode, Mode: sess.mode})

	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
	return nil
}

// selectSlide switches deck and slide. Selecting another deck loads its
// default palette and discards edits; staying on the same deck keeps them.
func (sess *session) selectSlide(ctx context.Context, slug string, n int) error {
	deck, err := sess.srv.catalog.Get(slug)
	if err != nil {
		return err
	}
	if n == 0 {
		n = 1
	}
	if n < 1 || n > deck.SlideCount {
		return fmt.Errorf("%s has no slide %d", deck.Slug, n)
	}

	if sess.editor != nil && deck.Slug == sess.deck.Slug {
		sess.slide = n
		sess.refreshPreview(ctx)
		return nil
	}

	// Artwork is left to the preview job.
	colors := sess.srv.palettes.Load(ctx, deck.Slug)

	sess.deck = deck
	sess.slide = n
	sess.editor = palette.NewEditor(colors)
	sess.srv.sessions.SetDeck(sess.conn, deck.Slug)
	sess.paletteChanged(ctx)
	return nil
}

func (sess *session) paletteChanged(ctx context.Context) {
	colors := sess.editor.Colors()
	sess.send(serverMessage{Type: msgPalette, Deck: sess.deck.Slug, Colors: &colors})
	sess.refreshPreview(ctx)
}

// refreshPreview renders the current slide in the background. Only the
// newest job's result reaches the client.
func (sess *session) refreshPreview(ctx context.Context) {
	tok := sess.guard.Begin()
	slug, n, colors := sess.deck.Slug, sess.slide, sess.editor.Colors()

	sess.jobs.Add(1)
	go func() {
		defer sess.jobs.Done()

		msg := serverMessage{Type: msgPreview, Deck: slug, Slide: n}
		if slide := sess.slideFor(ctx, slug, n); slide != nil {
			msg.SVG, msg.Source = slide.Render(colors), recolor.SourceRecolored
		} else {
			msg.SVG, msg.Source = preview.SVG(n, colors), recolor.SourceGeneric
		}
		sess.previewMu.Lock()
		defer sess.previewMu.Unlock()
		if ctx.Err() != nil || !sess.guard.Current(tok) {
			return
		}
		sess.send(msg)
	}()
}

// slideFor returns the cached artwork for a slide, loading it on first use.
// Concurrent requests for one slide share a fetch; different slides never
// wait on each other. Only definite misses are cached, so a failed fetch is
// retried by the next preview.
func (sess *session) slideFor(ctx context.Context, slug string, n int) *recolor.Slide {
	key := fmt.Sprintf("%s/%d", slug, n)

	sess.cacheMu.Lock()
	slide, ok := sess.cache[key]
	sess.cacheMu.Unlock()
	if ok {
		return slide
	}

	v, err, _ := sess.loads.Do(key, func() (any, error) {
		slide, err := recolor.LoadSlide(ctx, sess.srv.src, slug, n)
		if err == nil || errors.Is(err, assets.ErrNotFound) {
			sess.cacheMu.Lock()
			sess.cache[key] = slide
			sess.cacheMu.Unlock()
		}
		return slide, err
	})
	if err != nil {
		return nil
	}
	return v.(*recolor.Slide)
}

func (sess *session) send(msg serverMessage) {
	if err := sess.srv.sessions.WriteJSON(sess.conn, msg); err != nil {
		log.Printf("[session] %s write %s: %v", sess.id, msg.Type, err)
	}
}
