package pos

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumUpFetchSalesFollowsNextLink(t *testing.T) {
	var refs []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0.1/me/transactions/history", r.URL.Path)
		assert.Equal(t, "Bearer su-key", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.URL.Query().Get("oldest_time"))

		ref := r.URL.Query().Get("newest_ref")
		refs = append(refs, ref)
		if ref == "" {
			w.Write([]byte(`{"items":[
				{"status":"SUCCESSFUL","products":[{"name":"Crêpe","quantity":2},{"name":"","quantity":1}]},
				{"status":"FAILED","products":[{"name":"Crêpe","quantity":5}]}
			],"links":[{"rel":"next","href":"limit=100&newest_ref=tx-9"}]}`))
			return
		}
		w.Write([]byte(`{"items":[{"status":"PAID","products":[{"name":"Galette"}]}],"links":[]}`))
	}))
	defer srv.Close()

	lines, err := NewSumUp(WithBaseURL(srv.URL)).FetchSales(context.Background(), Credentials{APIKey: "su-key"}, "r1", time.Time{}, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, []string{"", "tx-9"}, refs)
	assert.Equal(t, []SaleLine{
		{ExternalItemName: "Crêpe", Quantity: 2},
		{ExternalItemName: "Galette", Quantity: 1},
	}, lines)
}

func TestSumUpNextRef(t *testing.T) {
	p := sumupHistoryPage{}
	assert.Empty(t, p.nextRef())

	p.Links = append(p.Links, struct {
		Rel  string `json:"rel"`
		Href string `json:"href"`
	}{Rel: "next", Href: "/v0.1/me/transactions/history?newest_ref=abc&limit=10"})
	assert.Equal(t, "abc", p.nextRef())
}
