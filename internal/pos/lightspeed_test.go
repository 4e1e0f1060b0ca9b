package pos

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLightspeedFetchSales(t *testing.T) {
	var offsets []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/API/V3/Account/42/Sale.json", r.URL.Path)
		assert.Equal(t, "Bearer ls-token", r.Header.Get("Authorization"))
		assert.Equal(t, "true", r.URL.Query().Get("completed"))
		assert.True(t, strings.HasPrefix(r.URL.Query().Get("timeStamp"), "><,"))

		offsets = append(offsets, r.URL.Query().Get("offset"))
		if r.URL.Query().Get("offset") == "0" {
			// one sale with a single SaleLine object, one with an array
			w.Write([]byte(`{"@attributes":{"count":"101","offset":"0","limit":"100"},"Sale":[
				{"SaleLines":{"SaleLine":{"itemID":"7","unitQuantity":"3","Item":{"description":"Croque Monsieur"}}}},
				{"SaleLines":{"SaleLine":[
					{"itemID":"8","unitQuantity":"1","Item":{"description":"Café"}},
					{"itemID":"0","unitQuantity":"2","Item":{"description":"Misc"}}
				]}}
			]}`))
			return
		}
		w.Write([]byte(`{"@attributes":{"count":"101","offset":"100","limit":"100"},"Sale":[]}`))
	}))
	defer srv.Close()

	lines, err := NewLightspeed(WithBaseURL(srv.URL)).FetchSales(context.Background(), Credentials{APIKey: "42:ls-token"}, "r1", time.Time{}, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, []string{"0", "100"}, offsets)
	assert.Equal(t, []SaleLine{
		{ExternalItemID: "7", ExternalItemName: "Croque Monsieur", Quantity: 3},
		{ExternalItemID: "8", ExternalItemName: "Café", Quantity: 1},
		{ExternalItemName: "Misc", Quantity: 2},
	}, lines)
}

func TestLightspeedMalformedCredentials(t *testing.T) {
	_, err := NewLightspeed(WithBaseURL("http://127.0.0.1:1")).FetchSales(context.Background(), Credentials{APIKey: "just-a-token"}, "r1", time.Time{}, time.Time{})
	assert.ErrorIs(t, err, ErrMalformedCredentials)
	assert.Contains(t, err.Error(), "ACCOUNT_ID:TOKEN")
}
