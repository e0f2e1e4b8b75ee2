package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const spinnerInterval = 80 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a status line on w until stopped or until its context
// ends.
type Spinner struct {
	w       io.Writer
	message string
	ctx     context.Context

	mu      sync.Mutex // guards writes to w
	stop    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
	stopped bool
}

func newSpinner(ctx context.Context, w io.Writer, message string) *Spinner {
	return &Spinner{w: w, message: message, ctx: ctx, stop: make(chan struct{})}
}

// Start draws frames in the background.
func (s *Spinner) Start() {
	s.wg.Add(1)
	go s.run()
}

func (s *Spinner) run() {
	defer s.wg.Done()
	tick := time.NewTicker(spinnerInterval)
	defer tick.Stop()

	for i := 0; ; i++ {
		select {
		case <-s.stop:
			return
		case <-s.ctx.Done():
			s.clearLine()
			return
		case <-tick.C:
			s.mu.Lock()
			fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(spinnerFrames[i%len(spinnerFrames)]), StyleDim.Render(s.message))
			s.mu.Unlock()
		}
	}
}

// Stop ends the animation and clears the line. Calls after the first do
// nothing.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()
		close(s.stop)
		s.wg.Wait()
		s.clearLine()
	})
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
}

// Cancelled reports whether the context ended while the spinner was running.
func (s *Spinner) Cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.stopped && s.ctx.Err() != nil
}

// spin runs fn behind a spinner on w. At debug level the log lines replace
// the spinner. An interrupted fn reports the context error instead of its
// own, so Ctrl-C exits quietly.
func (c *CLI) spin(ctx context.Context, w io.Writer, message string, fn func() error) error {
	if c.Logger.GetLevel() <= LogDebug {
		return fn()
	}
	s := newSpinner(ctx, w, message)
	s.Start()
	err := fn()
	cancelled := s.Cancelled()
	s.Stop()
	if err != nil && cancelled {
		return ctx.Err()
	}
	return err
}
