package interpreter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/NotCoffee418/building_energy_monitor/pkg/types"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

func NewListener(host string, log zerolog.Logger) *Listener {
	return &Listener{
		Host:           host,
		Scheme:         "ws",
		Log:            log,
		MaxRetries:     10,
		BaseRetryDelay: 2 * time.Second,
		MaxRetryDelay:  60 * time.Second,
		ReadTimeout:    10 * time.Second,
		PingInterval:   30 * time.Second,
	}
}

func (l *Listener) retryDelay(attempt int) time.Duration {
	d := l.BaseRetryDelay << attempt
	if d <= 0 || d > l.MaxRetryDelay {
		d = l.MaxRetryDelay
	}
	return d
}

func (l *Listener) replayURL(room, date string, after time.Time) string {
	q := url.Values{}
	q.Set("date", date)
	if !after.IsZero() {
		q.Set("after", after.UTC().Format(time.RFC3339))
	}
	u := url.URL{Scheme: l.Scheme, Host: l.Host, Path: "/ws/rooms/" + room, RawQuery: q.Encode()}
	return u.String()
}

// Replay calls fn for every sample of room on date (YYYY-MM-DD) in order.
// After a broken connection it resumes from the last sample received.
// It returns nil once the server signals the end of the day.
func (l *Listener) Replay(ctx context.Context, room, date string, fn func(types.TelemetrySample)) error {
	var last time.Time
	retryCount := 0

	for {
		if retryCount > 0 {
			delay := l.retryDelay(retryCount - 1)
			l.Log.Info().
				Dur("delay", delay).
				Int("attempt", retryCount+1).
				Int("max_retries", l.MaxRetries).
				Msg("retrying connection")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		target := l.replayURL(room, date, last)
		l.Log.Info().Str("url", target).Msg("connecting")

		dialer := *websocket.DefaultDialer
		dialer.HandshakeTimeout = 10 * time.Second
		c, resp, err := dialer.DialContext(ctx, target, nil)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// The server answered with an HTTP error, retrying will not help.
			if resp != nil && resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return fmt.Errorf("replay %s %s: server returned %s", room, date, resp.Status)
			}
			l.Log.Warn().Err(err).Msg("connection failed")
			retryCount++
			if retryCount >= l.MaxRetries {
				return fmt.Errorf("%w after %d attempts: %v", ErrGaveUp, retryCount, err)
			}
			continue
		}

		received, done, err := l.handleConnection(ctx, c, func(s types.TelemetrySample) {
			last = s.Timestamp
			fn(s)
		})
		c.Close()
		if done {
			l.Log.Info().Str("room", room).Str("date", date).Msg("replay complete")
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// Only count consecutive failures that made no progress.
		if received > 0 {
			retryCount = 0
		}
		retryCount++
		if retryCount >= l.MaxRetries {
			return fmt.Errorf("%w after %d attempts: %v", ErrGaveUp, retryCount, err)
		}
		l.Log.Warn().Err(err).Int("received", received).Msg("connection lost, will retry")
	}
}

// handleConnection reads until the stream ends. done reports a normal
// closure from the server.
func (l *Listener) handleConnection(
	ctx context.Context,
	c *websocket.Conn,
	fn func(types.TelemetrySample),
) (received int, done bool, err error) {
	type result struct {
		received int
		err      error
	}
	finished := make(chan result, 1)

	c.SetReadDeadline(time.Now().Add(l.ReadTimeout))
	go func() {
		n := 0
		for {
			messageType, message, err := c.ReadMessage()
			if err != nil {
				finished <- result{received: n, err: err}
				return
			}
			c.SetReadDeadline(time.Now().Add(l.ReadTimeout))

			if messageType != websocket.TextMessage {
				l.Log.Debug().Int("type", messageType).Msg("ignoring non-text message")
				continue
			}
			var s types.TelemetrySample
			if err := json.Unmarshal(message, &s); err != nil {
				l.Log.Warn().Err(err).Str("message", string(message)).Msg("failed to parse sample")
				continue
			}
			n++
			fn(s)
		}
	}()

	interval := l.PingInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case res := <-finished:
			if websocket.IsCloseError(res.err, websocket.CloseNormalClosure) {
				return res.received, true, nil
			}
			return res.received, false, res.err
		case <-ticker.C:
			if err := c.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second)); err != nil {
				l.Log.Debug().Err(err).Msg("failed to send ping")
			}
		case <-ctx.Done():
			c.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second),
			)
			select {
			case res := <-finished:
				return res.received, false, ctx.Err()
			case <-time.After(time.Second):
			}
			return 0, false, ctx.Err()
		}
	}
}
