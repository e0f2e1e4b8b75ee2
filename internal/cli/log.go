package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/costgraph/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Loaded Smart Grid Analytics Platform (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// =============================================================================
// Debug Hooks
// =============================================================================

// logHooks logs every observability event at debug level. It is registered
// when --verbose is set.
type logHooks struct {
	logger *log.Logger
}

func registerLogHooks(l *log.Logger) {
	h := &logHooks{logger: l}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
	observability.SetFlowHooks(h)
}

func (h *logHooks) OnFetchStart(_ context.Context, pipeline, provider string) {
	h.logger.Debug("fetch started", "pipeline", pipeline, "provider", provider)
}

func (h *logHooks) OnFetchComplete(_ context.Context, pipeline, provider string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("fetch failed", "pipeline", pipeline, "provider", provider, "duration", d, "error", err)
		return
	}
	h.logger.Debug("fetch complete", "pipeline", pipeline, "provider", provider, "duration", d)
}

func (h *logHooks) OnNormalizeComplete(_ context.Context, nodes, edges int, d time.Duration) {
	h.logger.Debug("normalize complete", "nodes", nodes, "edges", edges, "duration", d)
}

func (h *logHooks) OnAggregateComplete(_ context.Context, records int, d time.Duration, err error) {
	h.logger.Debug("aggregate complete", "records", records, "duration", d, "error", err)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "path", path, "status", status, "duration", d)
}

func (h *logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "error", err)
}

func (h *logHooks) OnAttach(edges, particles int) {
	h.logger.Debug("flow attached", "edges", edges, "particles", particles)
}

func (h *logHooks) OnDetach(particles int, frames uint64) {
	h.logger.Debug("flow detached", "particles", particles, "frames", frames)
}
