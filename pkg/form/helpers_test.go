package form

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func bufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// errorSink collects errors passed to the form's error handler.
type errorSink struct {
	errs []error
}

func (s *errorSink) handle(err error) { s.errs = append(s.errs, err) }

func newTestForm(opts ...Option) (*Form, *errorSink) {
	sink := &errorSink{}
	opts = append([]Option{WithLogger(quietLogger()), WithErrorHandler(sink.handle)}, opts...)
	return New(opts...), sink
}

// next runs one job of the form's loop, failing the test if none arrives.
func next(t *testing.T, f *Form) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := f.Loop().Next(ctx); err != nil {
		t.Fatalf("loop: %v", err)
	}
}

func nonEmpty(v any, _ *Deps) Result {
	s, _ := v.(string)
	return Bool(s != "")
}

// recorder keeps every Errors map an observer reported.
type recorder struct {
	seen []Errors
}

func (r *recorder) observe(e Errors) { r.seen = append(r.seen, e) }

func (r *recorder) last() Errors {
	if len(r.seen) == 0 {
		return nil
	}
	return r.seen[len(r.seen)-1]
}
