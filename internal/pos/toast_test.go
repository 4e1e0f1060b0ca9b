package pos

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToastFetchSalesSkipsVoided(t *testing.T) {
	var pages []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/v2/ordersBulk", r.URL.Path)
		assert.Equal(t, "Bearer tt-token", r.Header.Get("Authorization"))
		assert.Equal(t, "guid-1", r.Header.Get("Toast-Restaurant-External-ID"))

		page := r.URL.Query().Get("page")
		pages = append(pages, page)
		if page != "1" {
			w.Write([]byte(`[]`))
			return
		}
		// a full page forces a second request
		orders := make([]string, 0, toastPageSize)
		orders = append(orders, `{"checks":[{"selections":[
			{"displayName":"Poke Bowl","quantity":2,"item":{"guid":"item-1"}},
			{"displayName":"Water","quantity":1,"voided":true}
		]},{"voided":true,"selections":[{"displayName":"Ghost","quantity":9}]}]}`)
		orders = append(orders, `{"voided":true,"checks":[{"selections":[{"displayName":"Ghost","quantity":9}]}]}`)
		for len(orders) < toastPageSize {
			orders = append(orders, `{"checks":[]}`)
		}
		fmt.Fprintf(w, "[%s]", strings.Join(orders, ","))
	}))
	defer srv.Close()

	lines, err := NewToast(WithBaseURL(srv.URL)).FetchSales(context.Background(), Credentials{APIKey: "guid-1|tt-token"}, "r1", time.Time{}, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2"}, pages)
	assert.Equal(t, []SaleLine{{ExternalItemID: "item-1", ExternalItemName: "Poke Bowl", Quantity: 2}}, lines)
}

func TestToastMalformedCredentials(t *testing.T) {
	_, err := NewToast().FetchSales(context.Background(), Credentials{APIKey: "guid-only"}, "r1", time.Time{}, time.Time{})
	assert.ErrorIs(t, err, ErrMalformedCredentials)
}

func TestToastForbidden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewToast(WithBaseURL(srv.URL)).FetchSales(context.Background(), Credentials{APIKey: "g|t"}, "r1", time.Time{}, time.Time{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
