package server

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	errs "github.com/matzehuels/costgraph/pkg/errors"
	"github.com/matzehuels/costgraph/pkg/pipeline"
	"github.com/matzehuels/costgraph/pkg/store"
)

// HealthResponse is the body of /healthz.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
}

// PipelineInfo is one entry of /api/v1/pipelines.
type PipelineInfo struct {
	Name      string   `json:"name"`
	Providers []string `json:"providers"`
}

// HistoryResponse is the body of /api/v1/pipelines/{name}/history.
type HistoryResponse struct {
	Pipeline string        `json:"pipeline"`
	Provider string        `json:"provider"`
	Entries  []store.Entry `json:"entries"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the error code and user-facing message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: s.now().UTC(),
		Service:   "costgraph",
		Version:   s.version,
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	out := make([]PipelineInfo, 0, len(s.pipelines))
	for _, p := range s.pipelines {
		out = append(out, PipelineInfo{Name: p.Name, Providers: p.Providers})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	opts := s.options(r, pipeline.FormatJSON)
	data, hit, err := s.render(r, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", cacheStatus(hit))
	w.Write(data)
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	opts := s.options(r, pipeline.FormatSVG)
	data, hit, err := s.render(r, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("X-Cache", cacheStatus(hit))
	w.Write(data)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	opts := s.options(r, "")
	if err := opts.ValidateForLoad(); err != nil {
		writeError(w, err)
		return
	}
	limit, err := intParam(r, "limit")
	if err != nil {
		writeError(w, err)
		return
	}
	entries, err := s.runner.History(r.Context(), opts.Pipeline, opts.Provider, limit)
	if err != nil {
		writeError(w, errs.Wrap(errs.ErrCodeInternal, err, "could not read history"))
		return
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Pipeline: opts.Pipeline, Provider: opts.Provider, Entries: entries})
}

func (s *Server) render(r *http.Request, opts pipeline.Options) ([]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		return nil, false, err
	}
	return s.runner.RenderWithCacheInfo(r.Context(), res, opts)
}

func (s *Server) options(r *http.Request, format string) pipeline.Options {
	q := r.URL.Query()
	refresh := boolParam(q, "refresh")
	return pipeline.Options{
		Pipeline:       pipelineName(r),
		Provider:       q.Get("cloudProvider"),
		Refresh:        refresh,
		Record:         refresh,
		UnionServices:  boolParam(q, "union"),
		Format:         format,
		Engine:         q.Get("engine"),
		ClusterRegions: boolParam(q, "cluster"),
		Detailed:       boolParam(q, "detailed"),
		WithPositions:  boolParam(q, "positions"),
		Logger:         s.logger,
	}
}

// pipelineName returns the decoded {name} path segment. Names contain
// spaces, and chi matches on the raw path when it carries escapes.
func pipelineName(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	if name, err := url.PathUnescape(raw); err == nil {
		return name
	}
	return raw
}

func boolParam(q url.Values, key string) bool {
	v, _ := strconv.ParseBool(q.Get(key))
	return v
}

func intParam(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errs.New(errs.ErrCodeInvalidInput, "%s must be a non-negative integer", key)
	}
	return n, nil
}

func cacheStatus(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

func errNotFound(path string) error {
	return errs.New(errs.ErrCodeNotFound, "no route for %s", path)
}

func writeError(w http.ResponseWriter, err error) {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	writeJSON(w, errs.HTTPStatus(err), ErrorResponse{Error: ErrorBody{
		Code:    string(code),
		Message: errs.UserMessage(err),
	}})
}
