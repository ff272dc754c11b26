package api

import (
	"net/http"
	"time"

	"github.com/NotCoffee418/building_energy_monitor/pkg/aggregator"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // dashboard is served from another origin
	},
}

const writeTimeout = 10 * time.Second

// handleReplay streams one room-day of samples as JSON text messages and
// closes with a normal closure once the day is exhausted. ?after= (RFC3339)
// skips samples at or before that instant so clients can resume.
func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	ds, err := s.dataset(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	date, err := s.dateParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var after time.Time
	if v := r.URL.Query().Get("after"); v != "" {
		if after, err = time.Parse(time.RFC3339, v); err != nil {
			s.writeError(w, r, badRequest("after %q", v))
			return
		}
	}
	room := mux.Vars(r)["room"]
	samples, err := ds.Aggregator().FilterRoom(ds.Samples, room, aggregator.DateRange{From: date, To: date})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	// Reading is needed to process control frames; it ends when the client goes away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	sent := 0
	for _, sample := range samples {
		if !after.IsZero() && !sample.Timestamp.After(after) {
			continue
		}
		if sent > 0 && s.ReplayInterval > 0 {
			select {
			case <-time.After(s.ReplayInterval):
			case <-gone:
				s.log.Debug().Str("room", room).Int("sent", sent).Msg("replay client left")
				return
			}
		}
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(displaySample(sample)); err != nil {
			s.log.Debug().Err(err).Str("room", room).Int("sent", sent).Msg("replay write failed")
			return
		}
		sent++
	}

	s.log.Info().Str("room", room).Str("date", date.Format(time.DateOnly)).Int("sent", sent).Msg("replay complete")
	conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "replay complete"),
		time.Now().Add(time.Second),
	)
	select {
	case <-gone:
	case <-time.After(time.Second):
	}
}
