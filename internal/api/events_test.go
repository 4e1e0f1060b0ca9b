package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"menuperf/internal/menuengine"
	"menuperf/internal/monitoring"

	"github.com/dgrijalva/jwt-go"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialEvents(t *testing.T, srv *httptest.Server, restaurantID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/sync/events"
	header := http.Header{}
	header.Set("Authorization", "Bearer "+signToken(t, testSecret, jwt.MapClaims{"restaurant_id": restaurantID}))
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubDeliversOnlyOwnRestaurantEvents(t *testing.T) {
	s := newTestServer(&fakeReports{}, &fakeSyncer{})
	srv := httptest.NewServer(s.Router)
	defer srv.Close()

	mine := dialEvents(t, srv, "r1")
	other := dialEvents(t, srv, "r2")
	require.Eventually(t, func() bool { return s.events.Subscribers() == 2 }, time.Second, 10*time.Millisecond)

	s.events.Publish(menuengine.SyncEvent{RestaurantID: "r1", Provider: "square", Status: monitoring.SyncSuccess, MatchedItems: 3})

	mine.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := mine.ReadMessage()
	require.NoError(t, err)
	var event menuengine.SyncEvent
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, "square", event.Provider)
	assert.Equal(t, 3, event.MatchedItems)

	other.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = other.ReadMessage()
	assert.Error(t, err)
}

func TestHubForgetsClosedSubscribers(t *testing.T) {
	s := newTestServer(&fakeReports{}, &fakeSyncer{})
	srv := httptest.NewServer(s.Router)
	defer srv.Close()

	conn := dialEvents(t, srv, "r1")
	require.Eventually(t, func() bool { return s.events.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return s.events.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
	s.events.Publish(menuengine.SyncEvent{RestaurantID: "r1"})
}

func TestEventsAcceptQueryToken(t *testing.T) {
	s := newTestServer(&fakeReports{}, &fakeSyncer{})
	srv := httptest.NewServer(s.Router)
	defer srv.Close()

	token := signToken(t, testSecret, jwt.MapClaims{"restaurant_id": "r1"})
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/sync/events?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Eventually(t, func() bool { return s.events.Subscribers() == 1 }, time.Second, 10*time.Millisecond)
}

func TestEventsRequireToken(t *testing.T) {
	s := newTestServer(&fakeReports{}, &fakeSyncer{})
	srv := httptest.NewServer(s.Router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/sync/events"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
