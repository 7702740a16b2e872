// Package engine executes run specifications as isolated local processes.
package engine

import (
	"context"

	"codearena/internal/judge/sandbox/result"
	"codearena/internal/judge/sandbox/spec"
)

// Engine executes a RunSpec in isolation. Implementations must guarantee
// that the process and everything it spawned are gone by the time Run
// returns, on every path including timeout and cancellation.
type Engine interface {
	Run(ctx context.Context, runSpec spec.RunSpec) (result.RunResult, error)
}

// Config holds engine-wide settings.
type Config struct {
	// DefaultWallTimeMs applies when a RunSpec carries no wall-clock limit.
	DefaultWallTimeMs int64
	// DefaultOutputKB caps captured stdout/stderr when a RunSpec carries no
	// output limit.
	DefaultOutputKB int64
}

func (c *Config) setDefaults() {
	if c.DefaultWallTimeMs <= 0 {
		c.DefaultWallTimeMs = 10000
	}
	if c.DefaultOutputKB <= 0 {
		c.DefaultOutputKB = 1024
	}
}

// cappedBuffer keeps at most limit bytes and discards the rest. Truncated
// output still yields a deterministic comparison failure rather than an
// unbounded allocation.
type cappedBuffer struct {
	limit int64
	buf   []byte
}

func newCappedBuffer(limitKB int64) *cappedBuffer {
	return &cappedBuffer{limit: limitKB * 1024}
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	remain := b.limit - int64(len(b.buf))
	if remain > 0 {
		if int64(len(p)) > remain {
			b.buf = append(b.buf, p[:remain]...)
		} else {
			b.buf = append(b.buf, p...)
		}
	}
	// Report full write so the child never sees EPIPE.
	return len(p), nil
}

func (b *cappedBuffer) String() string {
	return string(b.buf)
}
