package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/greenscreen/internal/logging"
	"github.com/aretw0/greenscreen/internal/presentation/graph"
	"github.com/aretw0/greenscreen/pkg/domain"
	"github.com/aretw0/greenscreen/pkg/ports"
	"github.com/aretw0/greenscreen/pkg/session"
)

// Config wires the admin API to the running simulator.
type Config struct {
	Version    string
	Catalog    *domain.Catalog
	Navigation *domain.NavigationConfig
	Sessions   *session.Registry
	// Gatherer serves /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// Results serves /results. Nil disables the endpoints.
	Results ports.ResultStore
	Logger  *slog.Logger
}

// Server serves the read-only admin API.
type Server struct {
	cfg Config
}

// NewHandler builds the admin router.
func NewHandler(cfg Config) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	s := &Server{cfg: cfg}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/screens", s.ListScreens)
	r.Get("/screens/{id}", s.GetScreen)
	r.Get("/sessions", s.ListSessions)
	r.Get("/sessions/{id}", s.GetSession)
	r.Get("/graph", s.GetGraph)
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	if cfg.Results != nil {
		r.Get("/results", s.ListResults)
		r.Get("/results/{id}", s.GetResult)
	}
	return r
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	info := map[string]any{
		"app":     "greenscreen-host",
		"version": s.cfg.Version,
	}
	if s.cfg.Catalog != nil {
		info["screens"] = s.cfg.Catalog.Len()
	}
	if s.cfg.Navigation != nil {
		info["initial_screen"] = s.cfg.Navigation.InitialScreen
		info["rules"] = len(s.cfg.Navigation.Rules)
	}
	if s.cfg.Sessions != nil {
		info["sessions"] = s.cfg.Sessions.Len()
	}
	s.writeJSON(w, http.StatusOK, info)
}

type screenSummary struct {
	ID         string            `json:"screen_id"`
	Identifier domain.Identifier `json:"identifier"`
	Inputs     []string          `json:"inputs"`
	Displays   []string          `json:"displays"`
}

// ListScreens handles GET /screens.
func (s *Server) ListScreens(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Catalog == nil {
		s.writeJSON(w, http.StatusOK, []screenSummary{})
		return
	}
	out := make([]screenSummary, 0, s.cfg.Catalog.Len())
	for _, def := range s.cfg.Catalog.Screens() {
		sum := screenSummary{ID: def.ID, Identifier: def.Identifier, Inputs: []string{}, Displays: []string{}}
		for _, f := range def.Fields {
			if f.IsInput() {
				sum.Inputs = append(sum.Inputs, f.Name)
			} else {
				sum.Displays = append(sum.Displays, f.Name)
			}
		}
		out = append(out, sum)
	}
	s.writeJSON(w, http.StatusOK, out)
}

// GetScreen handles GET /screens/{id}. Field defaults of sensitive fields are withheld.
func (s *Server) GetScreen(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if s.cfg.Catalog == nil {
		s.writeError(w, http.StatusNotFound, "screen not found")
		return
	}
	def, ok := s.cfg.Catalog.Screen(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "screen not found")
		return
	}
	out := *def
	out.Fields = make([]domain.FieldDefinition, len(def.Fields))
	for i, f := range def.Fields {
		if f.IsSensitive() {
			f.Default = ""
		}
		out.Fields[i] = f
	}
	s.writeJSON(w, http.StatusOK, out)
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Sessions == nil {
		s.writeJSON(w, http.StatusOK, []session.Snapshot{})
		return
	}
	s.writeJSON(w, http.StatusOK, s.cfg.Sessions.List())
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Sessions == nil {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	snap, ok := s.cfg.Sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// GetGraph handles GET /graph. With ?session=<id> the session's current
// screen is highlighted.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Catalog == nil || s.cfg.Navigation == nil {
		s.writeError(w, http.StatusNotFound, "no navigation loaded")
		return
	}
	var overlay *graph.Overlay
	if id := r.URL.Query().Get("session"); id != "" && s.cfg.Sessions != nil {
		snap, ok := s.cfg.Sessions.Get(id)
		if !ok {
			s.writeError(w, http.StatusNotFound, "session not found")
			return
		}
		overlay = &graph.Overlay{Current: snap.Screen}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(graph.GenerateMermaid(s.cfg.Catalog, s.cfg.Navigation, overlay)))
}

// ListResults handles GET /results.
func (s *Server) ListResults(w http.ResponseWriter, r *http.Request) {
	ids, err := s.cfg.Results.List(r.Context())
	if err != nil {
		s.cfg.Logger.Error("list results", "err", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list results")
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// GetResult handles GET /results/{id}.
func (s *Server) GetResult(w http.ResponseWriter, r *http.Request) {
	res, err := s.cfg.Results.Load(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, domain.ErrResultNotFound):
		s.writeError(w, http.StatusNotFound, "result not found")
	case err != nil:
		s.cfg.Logger.Error("load result", "err", err)
		s.writeError(w, http.StatusInternalServerError, "failed to load result")
	default:
		s.writeJSON(w, http.StatusOK, res)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.cfg.Logger.Warn("encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
