package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/NotCoffee418/building_energy_monitor/pkg/types"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func replay(t *testing.T, f fixture, path string) []types.TelemetrySample {
	t.Helper()
	ts := httptest.NewServer(f.srv)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var got []types.TelemetrySample
	for {
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var s types.TelemetrySample
		if err := conn.ReadJSON(&s); err != nil {
			assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), err)
			return got
		}
		got = append(got, s)
	}
}

func TestReplayStreamsRoomDay(t *testing.T) {
	f := newFixture(t)
	got := replay(t, f, "/ws/rooms/FUB-0202?date=2025-11-03")
	require.Len(t, got, 1440)

	start := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)
	for i, s := range got {
		assert.Equal(t, "FUB-0202", s.Room)
		assert.True(t, start.Add(time.Duration(i)*time.Minute).Equal(s.Timestamp))
	}
	assert.Equal(t, types.StatusOff, got[0].Status)
	assert.Equal(t, types.StatusOn, got[10*60].Status)
}

func TestReplayResumesAfter(t *testing.T) {
	f := newFixture(t)
	got := replay(t, f, "/ws/rooms/FUB-0202?date=2025-11-03&after=2025-11-03T23:00:00Z")
	require.Len(t, got, 59)
	assert.True(t, time.Date(2025, 11, 3, 23, 1, 0, 0, time.UTC).Equal(got[0].Timestamp))
}

func TestReplayOutsideHorizonClosesEmpty(t *testing.T) {
	f := newFixture(t)
	got := replay(t, f, "/ws/rooms/FUB-0202?date=2025-12-01")
	assert.Empty(t, got)
}
