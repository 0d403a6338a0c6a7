package main

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// syntheticDevice fabricates a deterministic recording stream. It stands
// in for a real camera in test mode and demos; the capture pipeline does
// not know the difference.
type syntheticDevice struct {
	label  string
	denied bool
}

// Acquire hands out a fresh stream, or a permission error when the
// device is configured as denied.
func (d *syntheticDevice) Acquire(ctx context.Context) (DeviceStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.denied {
		return nil, fmt.Errorf("permission denied for %s", d.label)
	}

	chunks := make([][]byte, 4)
	for i := range chunks {
		chunks[i] = []byte(fmt.Sprintf("LOOMCHUNK:%s:%d:", d.label, i))
	}
	return &syntheticStream{chunks: chunks}, nil
}

// syntheticStream yields its prebuilt chunks then io.EOF.
type syntheticStream struct {
	mu      sync.Mutex
	chunks  [][]byte
	pos     int
	stops   int
	stopped bool
}

func (s *syntheticStream) ReadChunk() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos >= len(s.chunks) {
		return nil, io.EOF
	}
	chunk := s.chunks[s.pos]
	s.pos++
	return chunk, nil
}

func (s *syntheticStream) ContentType() string { return "video/webm" }

func (s *syntheticStream) StopTracks() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops++
	s.stopped = true
}
