package interpreter

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
)

var ErrGaveUp = errors.New("replay source unreachable")

// Listener consumes a room-day replay from the dashboard API and reconnects
// with exponential backoff when the stream breaks.
type Listener struct {
	Host   string
	Scheme string
	Log    zerolog.Logger

	MaxRetries     int
	BaseRetryDelay time.Duration
	MaxRetryDelay  time.Duration
	// A connection with no message for this long is treated as dead.
	ReadTimeout  time.Duration
	PingInterval time.Duration
}
