package pos

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const ProviderSumUp = "sumup"

// SumUp reads the merchant transaction history
type SumUp struct {
	client
}

func NewSumUp(opts ...Option) *SumUp {
	return &SumUp{client: newClient(ProviderSumUp, "https://api.sumup.com", opts)}
}

func (s *SumUp) Name() string { return ProviderSumUp }

type sumupHistoryPage struct {
	Items []sumupTransaction `json:"items"`
	Links []struct {
		Rel  string `json:"rel"`
		Href string `json:"href"`
	} `json:"links"`
}

type sumupTransaction struct {
	Status   string `json:"status"`
	Products []struct {
		Name     string  `json:"name"`
		Quantity float64 `json:"quantity"`
	} `json:"products"`
}

func (s *SumUp) FetchSales(ctx context.Context, creds Credentials, restaurantID string, from, to time.Time) ([]SaleLine, error) {
	token, err := requireToken(ProviderSumUp, creds)
	if err != nil {
		return nil, err
	}
	from, to = Window(from, to, time.Now())

	q := url.Values{}
	q.Set("oldest_time", from.Format(time.RFC3339))
	q.Set("newest_time", to.Format(time.RFC3339))
	q.Set("limit", "100")
	q.Set("order", "descending")

	var transactions []sumupTransaction
	for {
		req, err := s.newRequest(ctx, http.MethodGet, "/v0.1/me/transactions/history?"+q.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)

		var page sumupHistoryPage
		if err := s.do(req, &page); err != nil {
			return nil, err
		}
		transactions = append(transactions, page.Items...)

		next := page.nextRef()
		if next == "" || len(page.Items) == 0 {
			break
		}
		q.Set("newest_ref", next)
	}
	return normalizeSumUp(transactions), nil
}

// nextRef extracts newest_ref from the "next" link, if any
func (p sumupHistoryPage) nextRef() string {
	for _, l := range p.Links {
		if l.Rel != "next" {
			continue
		}
		rawQuery := l.Href
		if _, after, ok := strings.Cut(l.Href, "?"); ok {
			rawQuery = after
		}
		v, err := url.ParseQuery(rawQuery)
		if err != nil {
			return ""
		}
		return v.Get("newest_ref")
	}
	return ""
}

func normalizeSumUp(transactions []sumupTransaction) []SaleLine {
	var lines []SaleLine
	for _, trx := range transactions {
		if trx.Status != "SUCCESSFUL" && trx.Status != "PAID" {
			continue
		}
		for _, p := range trx.Products {
			if p.Name == "" {
				continue
			}
			lines = append(lines, SaleLine{ExternalItemName: p.Name, Quantity: quantityOrOne(p.Quantity)})
		}
	}
	return lines
}
