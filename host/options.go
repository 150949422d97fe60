package host

import (
	"io"
	"log/slog"
	"time"
)

const DefaultQueueSize = 256

type config struct {
	queueSize int
	frame     time.Duration
	logger    *slog.Logger
}

func defaultConfig() config {
	return config{
		queueSize: DefaultQueueSize,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Option configures a Loop.
type Option func(*config)

// WithQueueSize sets the capacity of the event queue.
func WithQueueSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.queueSize = n
		}
	}
}

// WithFramePolicy switches the loop from flushing after every event to
// flushing at most once per frame of duration d.
func WithFramePolicy(d time.Duration) Option {
	return func(c *config) {
		c.frame = d
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}
