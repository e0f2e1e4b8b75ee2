package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestLoggerLevels(t *testing.T) {
	tests := []struct {
		level     log.Level
		wantInfo  bool
		wantDebug bool
	}{
		{log.WarnLevel, false, false},
		{log.InfoLevel, true, false},
		{log.DebugLevel, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer
			l := newLogger(&buf, tt.level)
			l.Info("loaded pipeline")
			l.Debug("raw response")

			out := buf.String()
			if got := strings.Contains(out, "loaded pipeline"); got != tt.wantInfo {
				t.Errorf("info logged = %v, want %v", got, tt.wantInfo)
			}
			if got := strings.Contains(out, "raw response"); got != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v", got, tt.wantDebug)
			}
		})
	}
}

func TestProgressDoneReportsElapsed(t *testing.T) {
	var buf bytes.Buffer
	p := newProgress(newLogger(&buf, log.InfoLevel))
	p.start = p.start.Add(-1500 * time.Millisecond)

	p.done("Loaded demo")

	if out := buf.String(); !strings.Contains(out, "Loaded demo (1.5") {
		t.Errorf("progress output = %q", out)
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	h := &logHooks{logger: newLogger(&buf, log.DebugLevel)}
	ctx := context.Background()

	h.OnFetchStart(ctx, "demo", "AWS")
	h.OnFetchComplete(ctx, "demo", "AWS", time.Second, errors.New("timeout"))
	h.OnCacheMiss(ctx, "paths")
	h.OnResponse(ctx, "GET", "api.example.com", "/pipelines/demo/graph", 200, time.Millisecond)
	h.OnAttach(3, 9)

	out := buf.String()
	for _, want := range []string{"fetch started", "fetch failed", "timeout", "cache miss", "http response", "/pipelines/demo/graph", "flow attached"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLogHooksSilentAtInfo(t *testing.T) {
	var buf bytes.Buffer
	h := &logHooks{logger: newLogger(&buf, log.InfoLevel)}

	h.OnCacheHit(context.Background(), "costs")
	h.OnDetach(9, 120)

	if buf.Len() != 0 {
		t.Errorf("info level should hide hook events, got %q", buf.String())
	}
}
