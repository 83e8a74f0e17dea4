package viewer

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"clusterview/internal/chart"
	"clusterview/internal/domain"
	"clusterview/internal/export"
	"clusterview/internal/logging"
)

// Source lists the analyses the viewer can show.
type Source interface {
	List() []domain.Analysis
	Get(id string) (domain.Analysis, bool)
}

// Server serves stored analyses as interactive chart pages.
type Server struct {
	source Source
	logger *logging.Logger
	router *chi.Mux
}

func NewServer(source Source, logger *logging.Logger) *Server {
	s := &Server{source: source, logger: logger, router: chi.NewRouter()}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	s.router.Get("/", s.handleIndex)
	s.router.Get("/analyses/{id}", s.handleAnalysis)
	s.router.Get("/analyses/{id}/figure.json", s.handleFigure)
	s.router.Get("/analyses/{id}/cards.json", s.handleCards)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("", "viewer listening on http://%s", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"join": func(xs []string) string { return strings.Join(xs, ",") },
}).Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>clusterview</title></head>
<body style="background:#1a1a2e;color:#a0a0a0;font-family:Inter,sans-serif">
<h1 style="color:#fff">Analyses</h1>
{{if .}}<ul>{{range .}}
<li><a style="color:#4ECDC4" href="/analyses/{{.ID}}">{{.FileName}}</a> k={{.K}} features={{join .Features}} at {{.CreatedAt.Format "2006-01-02 15:04:05"}}</li>{{end}}
</ul>{{else}}<p>No analyses yet.</p>{{end}}
</body></html>
`))

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, s.source.List()); err != nil {
		s.logger.Error(middleware.GetReqID(r.Context()), "render index: %v", err)
	}
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (domain.Analysis, chart.View, bool) {
	id := chi.URLParam(r, "id")
	a, ok := s.source.Get(id)
	if !ok {
		http.Error(w, "analysis not found", http.StatusNotFound)
		return domain.Analysis{}, chart.View{}, false
	}
	v, err := chart.BuildView(a.Result, a.K)
	if err != nil {
		s.logger.Error(middleware.GetReqID(r.Context()), "build view %s: %v", id, err)
		http.Error(w, "could not render analysis", http.StatusInternalServerError)
		return domain.Analysis{}, chart.View{}, false
	}
	return a, v, true
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	a, v, ok := s.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := export.WriteHTML(w, v.Figure, a.FileName); err != nil {
		s.logger.Error(middleware.GetReqID(r.Context()), "render analysis %s: %v", a.ID, err)
	}
}

func (s *Server) handleFigure(w http.ResponseWriter, r *http.Request) {
	_, v, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, r, v.Figure)
}

type cardJSON struct {
	Title    string             `json:"title"`
	Color    string             `json:"color"`
	Features map[string]float64 `json:"features"`
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	_, v, ok := s.lookup(w, r)
	if !ok {
		return
	}
	out := make([]cardJSON, 0, len(v.Cards))
	for _, c := range v.Cards {
		cj := cardJSON{Title: c.Title, Color: c.Color, Features: make(map[string]float64, len(c.Features))}
		for _, f := range c.Features {
			cj.Features[f.Name] = f.Value
		}
		out = append(out, cj)
	}
	s.writeJSON(w, r, out)
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error(middleware.GetReqID(r.Context()), "encode response: %v", err)
	}
}
