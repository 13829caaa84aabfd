// Package progress carries human-readable status lines from the pipeline and
// its sources to whoever is watching. Sinks are for display only; nothing may
// branch on what was emitted.
package progress

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// Sink receives one status line at a time.
type Sink interface {
	Emit(message string)
}

// WriterSink prints each line to an io.Writer, the CLI default.
type WriterSink struct {
	W io.Writer
}

func (s WriterSink) Emit(message string) {
	fmt.Fprintln(s.W, message)
}

// BufferSink retains every line for later replay. Safe for concurrent use;
// sources emit from the worker pool.
type BufferSink struct {
	mu    sync.Mutex
	lines []string
}

func (s *BufferSink) Emit(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, message)
}

// Lines returns a copy of everything emitted so far.
func (s *BufferSink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}

// ZapSink mirrors progress lines into the structured log.
type ZapSink struct {
	Logger *zap.SugaredLogger
}

func (s ZapSink) Emit(message string) {
	s.Logger.Info(message)
}

// Multi fans one line out to several sinks.
type Multi []Sink

func (m Multi) Emit(message string) {
	for _, s := range m {
		s.Emit(message)
	}
}

// Discard drops everything, for tests and silent runs.
type Discard struct{}

func (Discard) Emit(string) {}
