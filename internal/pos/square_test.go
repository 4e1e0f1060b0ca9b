package pos

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSquareFetchSalesPaginates(t *testing.T) {
	var searches []squareSearchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sq-token", r.Header.Get("Authorization"))
		assert.Equal(t, squareVersion, r.Header.Get("Square-Version"))

		switch r.URL.Path {
		case "/v2/locations":
			w.Write([]byte(`{"locations":[{"id":"L1"},{"id":"L2"}]}`))
		case "/v2/orders/search":
			var body squareSearchRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			searches = append(searches, body)
			if body.Cursor == "" {
				w.Write([]byte(`{"orders":[{"line_items":[{"name":"Burger","quantity":"2","catalog_object_id":"SQ-1"}]}],"cursor":"next"}`))
				return
			}
			w.Write([]byte(`{"orders":[{"line_items":[{"name":"Fries","quantity":"1.0"}]}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(DefaultWindow)
	lines, err := NewSquare(WithBaseURL(srv.URL)).FetchSales(context.Background(), Credentials{OAuthToken: "sq-token"}, "r1", from, to)
	require.NoError(t, err)

	assert.Equal(t, []SaleLine{
		{ExternalItemID: "SQ-1", ExternalItemName: "Burger", Quantity: 2},
		{ExternalItemName: "Fries", Quantity: 1},
	}, lines)

	require.Len(t, searches, 2)
	assert.Equal(t, []string{"L1", "L2"}, searches[0].LocationIDs)
	assert.Equal(t, []string{"COMPLETED"}, searches[0].Query.Filter.StateFilter.States)
	assert.Equal(t, "2024-05-01T00:00:00Z", searches[0].Query.Filter.DateTimeFilter.CreatedAt.StartAt)
	assert.Equal(t, "next", searches[1].Cursor)
}

func TestSquareNoLocations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	lines, err := NewSquare(WithBaseURL(srv.URL)).FetchSales(context.Background(), Credentials{APIKey: "tok"}, "r1", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestSquareUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errors":[{"code":"UNAUTHORIZED"}]}`))
	}))
	defer srv.Close()

	_, err := NewSquare(WithBaseURL(srv.URL)).FetchSales(context.Background(), Credentials{APIKey: "bad"}, "r1", time.Time{}, time.Time{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSquareRejectsEmptyToken(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls++ }))
	defer srv.Close()

	_, err := NewSquare(WithBaseURL(srv.URL)).FetchSales(context.Background(), Credentials{}, "r1", time.Time{}, time.Time{})
	assert.ErrorIs(t, err, ErrMalformedCredentials)
	assert.Zero(t, calls)
}
