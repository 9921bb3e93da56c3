package pagesrv

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/GoSim-25-26J-441/webgraph/internal/metrics"
	"github.com/GoSim-25-26J-441/webgraph/internal/webgraph"
	"github.com/GoSim-25-26J-441/webgraph/pkg/logger"
	"github.com/GoSim-25-26J-441/webgraph/pkg/models"
	"github.com/GoSim-25-26J-441/webgraph/pkg/utils"
)

// RequestIDHeader carries the id assigned to every HTTP request.
const RequestIDHeader = "X-Request-ID"

type HTTPServer struct {
	mux *http.ServeMux
	resolver
}

func NewHTTPServer(sim *webgraph.Simulator, collector *metrics.Collector) *HTTPServer {
	s := &HTTPServer{
		mux:      http.NewServeMux(),
		resolver: resolver{sim: sim, collector: collector},
	}

	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.HandleFunc("GET /api", s.handleAPIRoot)
	s.mux.HandleFunc("GET /api/{$}", s.handleAPIRoot)
	s.mux.HandleFunc("GET /api/{id}", s.handlePage)
	s.mux.HandleFunc("GET /api/test/{type}", s.handleRandomOfType)
	s.mux.HandleFunc("GET /graph/random", s.handleRandom)
	s.mux.HandleFunc("GET /graph/stats", s.handleStats)
	s.mux.Handle("GET /metrics", collector.Handler())

	return s
}

func (s *HTTPServer) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(RequestIDHeader, utils.GenerateRequestID())
		s.mux.ServeHTTP(w, r)
	})
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleIndex handles GET /
func (s *HTTPServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	site := s.sim.Site()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"service":     "webgraph",
		"build_id":    site.BuildID(),
		"total_pages": site.Len(),
		"root":        PagePath(site.Root().ID),
		"puzzle":      site.Puzzle(),
		"endpoints": []string{
			"/api",
			"/api/{page_id}",
			"/api/test/{type}",
			"/graph/random",
			"/graph/stats",
			"/metrics",
		},
	})
}

// handleAPIRoot handles GET /api: the root page plus the type distribution
func (s *HTTPServer) handleAPIRoot(w http.ResponseWriter, r *http.Request) {
	site := s.sim.Site()
	body, ok := s.lookupPage(w, r, site.Root().ID)
	if !ok {
		return
	}
	body["distribution"] = site.Distribution()
	body["total_pages"] = site.Len()
	s.writeJSON(w, http.StatusOK, body)
}

// handlePage handles GET /api/{id}
func (s *HTTPServer) handlePage(w http.ResponseWriter, r *http.Request) {
	body, ok := s.lookupPage(w, r, models.PageID(r.PathValue("id")))
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, body)
}

// lookupPage resolves id and writes every non-success response itself.
func (s *HTTPServer) lookupPage(w http.ResponseWriter, r *http.Request, id models.PageID) (map[string]any, bool) {
	requestedAt := time.Now()
	res, ok := s.resolve(r.Context(), id)
	if !ok {
		// Client went away; nothing to write.
		return nil, false
	}
	switch res.Outcome {
	case webgraph.NotFound:
		s.writeError(w, http.StatusNotFound, "page not found")
		return nil, false
	case webgraph.SimulatedFailure:
		s.writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":    "simulated failure",
			"page_id":  id,
			"delay_ms": res.Delay.Milliseconds(),
		})
		return nil, false
	}
	return pageBody(s.sim.Site(), res, requestedAt), true
}

// handleRandom handles GET /graph/random
func (s *HTTPServer) handleRandom(w http.ResponseWriter, r *http.Request) {
	p := s.sim.RandomPage()
	http.Redirect(w, r, PagePath(p.ID), http.StatusTemporaryRedirect)
}

// handleRandomOfType handles GET /api/test/{type}
func (s *HTTPServer) handleRandomOfType(w http.ResponseWriter, r *http.Request) {
	t, err := models.ParseBehaviorType(r.PathValue("type"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, ok := s.sim.RandomPageOfType(t)
	if !ok {
		s.writeError(w, http.StatusNotFound, "no pages of type "+string(t))
		return
	}
	http.Redirect(w, r, PagePath(p.ID), http.StatusTemporaryRedirect)
}

// handleStats handles GET /graph/stats
func (s *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, statsBody(s.sim.Site(), s.collector))
}

// Helper functions

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{
		"error": message,
	})
}
