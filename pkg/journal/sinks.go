package journal

import (
	"context"
	"encoding/json"
	"io"
	"sync"
)

// WriterSink writes events as JSON lines to an io.Writer. Writes are
// serialized, so a single sink may back multiple recorders.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink returns a sink writing JSON lines to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Record(_ context.Context, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	s.w.Write(data)
}

// ChannelSink forwards events to a Go channel, for tests and custom
// pipelines. Events are dropped when the channel is full.
type ChannelSink struct {
	ch chan Event
}

// NewChannelSink returns a sink buffering up to size events.
func NewChannelSink(size int) *ChannelSink {
	if size < 1 {
		size = 1
	}
	return &ChannelSink{ch: make(chan Event, size)}
}

// Events exposes the receive side of the sink.
func (s *ChannelSink) Events() <-chan Event {
	return s.ch
}

func (s *ChannelSink) Record(_ context.Context, event Event) {
	select {
	case s.ch <- event:
	default:
	}
}
