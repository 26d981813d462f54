// MIT License
//
// Copyright (c) 2023 Lack
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/json-iterator/go"
	"github.com/vine-io/flowview"
	"github.com/vine-io/flowview/api"
	"github.com/vine-io/flowview/bpmn"
	"github.com/vine-io/flowview/config"
	"github.com/vine-io/flowview/render"
	"github.com/vine-io/flowview/view"
	log "github.com/vine-io/vine/lib/logger"
)

// Server exposes extraction, rendering and viewer sessions over HTTP.
type Server struct {
	cfg       *config.Config
	extractor *bpmn.Extractor
	store     *Store
	metrics   *metrics
	router    chi.Router
}

func New(cfg *config.Config) *Server {
	if cfg == nil {
		cfg = config.Default()
	}

	store := NewStore(cfg.MaxSessions, cfg.SessionTTL)
	s := &Server{
		cfg:       cfg,
		extractor: bpmn.NewExtractor(cfg.ExtractorOptions()...),
		store:     store,
		metrics:   newMetrics(store),
	}
	s.router = s.routes()
	return s
}

func (s *Server) Store() *Store { return s.store }

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.middleware)
	r.Use(logRequest)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/extract", s.Extract)
		r.Post("/render", s.Render)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.CreateSession)
			r.Get("/{id}", s.GetSession)
			r.Delete("/{id}", s.DeleteSession)
			r.Get("/{id}/page", s.SessionPage)
			r.Get("/{id}/download", s.Download)
			r.Post("/{id}/{action}", s.ApplyAction)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, api.NotFound("no route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, api.MethodNotAllowed("%s not allowed on %s", r.Method, r.URL.Path))
	})

	return r
}

// Extract handles POST /api/extract. The body is the BPMN text.
func (s *Server) Extract(w http.ResponseWriter, r *http.Request) {
	doc, err := s.readDocument(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc.View())
}

// Render handles POST /api/render?mode=&zoom=&class= and answers with the
// HTML page for the body.
func (s *Server) Render(w http.ResponseWriter, r *http.Request) {
	st, err := s.stateFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	doc, err := s.readDocument(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	p := doc.Page(st)
	p.Class = r.URL.Query().Get("class")
	writeHTML(w, p)
}

type sessionResponse struct {
	Id       string         `json:"id"`
	State    view.State     `json:"state"`
	Scale    string         `json:"scale"`
	Document *flowview.View `json:"document"`
}

func newSessionResponse(ss *Snapshot) *sessionResponse {
	return &sessionResponse{
		Id:       ss.Id,
		State:    ss.State,
		Scale:    ss.State.Scale().String(),
		Document: ss.Document.View(),
	}
}

// CreateSession handles POST /api/sessions. The body is the BPMN text; the
// initial state comes from the query or the config.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	st, err := s.stateFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	doc, err := s.readDocument(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	ss, err := s.store.Create(doc, st)
	if err != nil {
		writeError(w, err)
		return
	}
	log.Debugf("session %s created (%d element(s))", ss.Id, doc.Elements.Len())

	w.Header().Set("Location", "/api/sessions/"+ss.Id)
	writeJSON(w, http.StatusCreated, newSessionResponse(ss))
}

func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	ss, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(ss))
}

func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApplyAction handles POST /api/sessions/{id}/{action} with action one of
// zoom-in, zoom-out, zoom-reset, visual, source, toggle.
func (s *Server) ApplyAction(w http.ResponseWriter, r *http.Request) {
	ss, err := s.store.Apply(chi.URLParam(r, "id"), chi.URLParam(r, "action"))
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			err = api.BadRequest("%v", err)
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(ss))
}

func (s *Server) SessionPage(w http.ResponseWriter, r *http.Request) {
	ss, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	st := ss.State
	p := ss.Document.Page(&st)
	p.Class = r.URL.Query().Get("class")
	p.DownloadURL = "/api/sessions/" + ss.Id + "/download"
	writeHTML(w, p)
}

// Download answers with the session source, byte for byte.
func (s *Server) Download(w http.ResponseWriter, r *http.Request) {
	ss, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	name := ss.Document.Name
	if name == "" {
		name = "diagram.bpmn"
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, ss.Document.Source)
}

func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) (*flowview.Document, error) {
	if err := r.Context().Err(); err != nil {
		return nil, api.Cancel("request abandoned: %v", err)
	}
	if err := checkContentType(r.Header.Get("Content-Type")); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, api.RequestTooLarge("document larger than %d bytes", tooLarge.Limit)
		}
		return nil, api.BadRequest("read body: %v", err)
	}

	doc := flowview.NewDocument(string(data),
		flowview.WithName(r.URL.Query().Get("name")),
		flowview.WithExtractor(s.extractor),
		flowview.WithAutoNamespace(s.cfg.AutoNamespace),
	)
	s.metrics.observeDocument(doc.Elements)
	return doc, nil
}

// checkContentType accepts an absent type, XML types, plain text and raw
// octets. Anything else is not a BPMN document.
func checkContentType(value string) error {
	if value == "" {
		return nil
	}
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return api.UnsupportedMedia("invalid content type %q", value)
	}
	switch {
	case mediaType == "application/xml", mediaType == "text/xml",
		mediaType == "text/plain", mediaType == "application/octet-stream",
		strings.HasSuffix(mediaType, "+xml"):
		return nil
	}
	return api.UnsupportedMedia("content type %s is not xml", mediaType)
}

func (s *Server) stateFromQuery(r *http.Request) (*view.State, error) {
	st := s.cfg.ViewState()
	q := r.URL.Query()

	if v := q.Get("mode"); v != "" {
		mode, err := view.ParseMode(v)
		if err != nil {
			return nil, api.BadRequest("%v", err)
		}
		st.SetMode(mode)
	}
	if v := q.Get("zoom"); v != "" {
		zoom, err := strconv.Atoi(v)
		if err != nil {
			return nil, api.BadRequest("invalid zoom %q", v)
		}
		st.SetZoom(zoom)
	}

	return st, nil
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Infof("flowview listening on %s", s.cfg.Listen)
		serverErrors <- httpServer.ListenAndServe()
	}()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ticker.C:
			if n := s.store.Expire(); n > 0 {
				log.Debugf("expired %d idle session(s)", n)
			}
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			log.Infof("shutting down flowview server")
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("could not stop server gracefully: %w", err)
			}
			return nil
		}
	}
}

func logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Debugf("[%s] %s %s", middleware.GetReqID(r.Context()), r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		writeError(w, api.InternalServerError("encode response: %v", err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(data)
}

func writeHTML(w http.ResponseWriter, p *render.Page) {
	out, err := render.HTMLString(p)
	if err != nil {
		writeError(w, api.InternalServerError("%v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, out)
}

func writeError(w http.ResponseWriter, err error) {
	var e *api.Error
	switch {
	case errors.Is(err, ErrSessionNotFound):
		e = api.NotFound("%v", err)
	case errors.Is(err, ErrStoreFull):
		e = api.TooManyRequests("%v", err)
	default:
		e = api.FromErr(err)
		if e.Code == int32(api.StatusInternalServerError) {
			log.Errorf("request failed: %v", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.HTTPStatus())
	_, _ = w.Write([]byte(e.Error()))
}
