package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/panetree/pkg/store"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner animates a status line on w until it is stopped or its context
// is cancelled.
type spinner struct {
	w       io.Writer
	message string
	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}

	mu     sync.Mutex
	frames int
}

func startSpinner(ctx context.Context, w io.Writer, message string) *spinner {
	sctx, cancel := context.WithCancel(ctx)
	s := &spinner{
		w:       w,
		message: message,
		parent:  ctx,
		ctx:     sctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *spinner) run() {
	defer close(s.stopped)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.clearLine()
			return
		case <-ticker.C:
			s.mu.Lock()
			frame := spinnerFrames[s.frames%len(spinnerFrames)]
			fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
			s.frames++
			s.mu.Unlock()
		}
	}
}

// stop halts the animation and clears the line. Calling it again is a no-op.
func (s *spinner) stop() {
	s.cancel()
	<-s.stopped
}

// interrupted reports whether the command context ended before stop.
func (s *spinner) interrupted() bool {
	return s.parent.Err() != nil
}

func (s *spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
}

// spin runs fn behind a spinner. If the command context is cancelled while
// fn runs, the context error is returned in place of fn's.
func spin[T any](ctx context.Context, w io.Writer, message string, fn func() (T, error)) (T, error) {
	s := startSpinner(ctx, w, message)
	v, err := fn()
	s.stop()
	if s.interrupted() {
		var zero T
		return zero, ctx.Err()
	}
	return v, err
}

// connectMessage describes a remote store connection without leaking
// credentials from the mongo URI.
func connectMessage(opts store.Options) string {
	switch opts.Backend {
	case store.BackendRedis:
		return fmt.Sprintf("Connecting to redis at %s...", opts.RedisAddr)
	case store.BackendMongo:
		host := "mongo"
		if u, err := url.Parse(opts.MongoURI); err == nil && u.Host != "" {
			host = u.Host
		}
		return fmt.Sprintf("Connecting to mongo at %s/%s...", host, opts.MongoDatabase)
	}
	return fmt.Sprintf("Opening %s store...", opts.Backend)
}
