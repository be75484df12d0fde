package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/tapdev/tapdev-site/internal/document"
	"github.com/tapdev/tapdev-site/internal/injection"
	"github.com/tapdev/tapdev-site/internal/settings"
	"github.com/tapdev/tapdev-site/pkg/interfaces"
)

const previewWriteTimeout = 5 * time.Second

// PreviewRenderer renders the public page at path with its SEO applied and
// no injected code.
type PreviewRenderer func(ctx context.Context, path string) (*document.HTMLDocument, error)

type previewSource struct {
	render PreviewRenderer
	events interfaces.ConfigStore
}

// PreviewFrame is one message on the preview socket.
type PreviewFrame struct {
	Path     string    `json:"path"`
	Head     string    `json:"head"`
	Injected []string  `json:"injected"`
	At       time.Time `json:"at"`
	Error    string    `json:"error,omitempty"`
}

// WithPreview enables the live preview socket. store, when set, is watched
// for SEO override changes.
func WithPreview(render PreviewRenderer, store interfaces.ConfigStore) AdminOption {
	return func(api *AdminAPI) {
		if render == nil {
			return
		}
		api.preview = &previewSource{render: render, events: store}
	}
}

func (api *AdminAPI) registerPreviewRoutes(protect func(string, http.HandlerFunc), base string) {
	protect("GET "+joinPath(base, "preview"), api.handlePreview)
}

// handlePreview sends a frame on connect and another whenever the injection
// draft or an SEO override changes.
func (api *AdminAPI) handlePreview(w http.ResponseWriter, r *http.Request) {
	if api.preview == nil || api.injection == nil {
		unavailable(w)
		return
	}
	path, ok := pathQuery(r)
	if !ok {
		badRequest(w, "path query parameter must start with /")
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		api.logger.WithContext(r.Context()).Warn("admin.preview.accept_failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := conn.CloseRead(r.Context())
	drafts := api.injection.Changes(ctx)
	var overrides <-chan interfaces.ConfigChange
	if api.preview.events != nil {
		if overrides, err = api.preview.events.Subscribe(ctx); err != nil {
			api.logger.WithContext(ctx).Warn("admin.preview.subscribe_failed", "error", err)
		}
	}

	logger := api.logger.WithContext(ctx)
	logger.Info("admin.preview.connected", "path", path)
	send := func(draft injection.Configuration) bool {
		frame := api.previewFrame(ctx, path, draft)
		writeCtx, cancel := context.WithTimeout(ctx, previewWriteTimeout)
		defer cancel()
		if err := wsjson.Write(writeCtx, conn, frame); err != nil {
			logger.Debug("admin.preview.write_failed", "error", err)
			return false
		}
		return true
	}

	if !send(api.injection.Current()) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case draft, ok := <-drafts:
			if !ok {
				return
			}
			if !send(draft) {
				return
			}
		case evt, ok := <-overrides:
			if !ok {
				overrides = nil
				continue
			}
			if !strings.HasPrefix(evt.Key, settings.SEOKeyPrefix) {
				continue
			}
			if !send(api.injection.Current()) {
				return
			}
		}
	}
}

func (api *AdminAPI) previewFrame(ctx context.Context, path string, draft injection.Configuration) PreviewFrame {
	frame := PreviewFrame{Path: path, At: time.Now().UTC(), Injected: []string{}}
	doc, err := api.preview.render(ctx, path)
	if err != nil {
		frame.Error = err.Error()
		return frame
	}
	if err := injection.NewEngine(doc).Reapply(ctx, draft); err != nil {
		frame.Error = err.Error()
		return frame
	}
	if frame.Head, err = doc.HeadHTML(); err != nil {
		frame.Error = err.Error()
		return frame
	}
	if tagged, err := doc.Tagged(injection.MarkerAttribute); err == nil && tagged != nil {
		frame.Injected = tagged
	}
	return frame
}
