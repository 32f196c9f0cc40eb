package tracer

import (
	"context"
	"slices"
	"sync"
)

// RecordedSpan is a finished span captured by Recorder.
type RecordedSpan struct {
	Name   string
	Attrs  map[string]any
	Events []string
	Err    error
}

// Recorder keeps finished spans in memory for assertions.
type Recorder struct {
	mu    sync.Mutex
	spans []RecordedSpan
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span) {
	s := &recordedSpan{recorder: r, span: RecordedSpan{Name: name, Attrs: map[string]any{}}}
	s.SetAttributes(attrs...)
	return ctx, s
}

// Spans returns finished spans in the order they ended.
func (r *Recorder) Spans() []RecordedSpan {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.spans)
}

// Find returns the last finished span called name.
func (r *Recorder) Find(name string) (RecordedSpan, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.spans) - 1; i >= 0; i-- {
		if r.spans[i].Name == name {
			return r.spans[i], true
		}
	}
	return RecordedSpan{}, false
}

type recordedSpan struct {
	recorder *Recorder
	mu       sync.Mutex
	span     RecordedSpan
}

func (s *recordedSpan) End(err error) {
	s.mu.Lock()
	s.span.Err = err
	done := s.span
	s.mu.Unlock()

	s.recorder.mu.Lock()
	s.recorder.spans = append(s.recorder.spans, done)
	s.recorder.mu.Unlock()
}

func (s *recordedSpan) SetAttributes(attrs ...Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range attrs {
		s.span.Attrs[a.Key] = a.Value
	}
}

func (s *recordedSpan) AddEvent(name string, _ ...Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.span.Events = append(s.span.Events, name)
}

var _ Tracer = (*Recorder)(nil)
