package pos

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const ProviderStripe = "stripe"

// Stripe reads paid Checkout Sessions and their line items
type Stripe struct {
	client
}

func NewStripe(opts ...Option) *Stripe {
	return &Stripe{client: newClient(ProviderStripe, "https://api.stripe.com", opts)}
}

func (s *Stripe) Name() string { return ProviderStripe }

type stripeList[T any] struct {
	Data    []T  `json:"data"`
	HasMore bool `json:"has_more"`
}

type stripeSession struct {
	ID            string `json:"id"`
	PaymentStatus string `json:"payment_status"`
}

type stripeLineItem struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Price       *struct {
		Product stripeProductRef `json:"product"`
	} `json:"price"`
}

// stripeProductRef is a product id that Stripe renders either as a string or,
// when expanded, as an object with an id.
type stripeProductRef string

func (r *stripeProductRef) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*r = stripeProductRef(id)
		return nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*r = stripeProductRef(obj.ID)
	return nil
}

func (s *Stripe) FetchSales(ctx context.Context, creds Credentials, restaurantID string, from, to time.Time) ([]SaleLine, error) {
	key, err := requireToken(ProviderStripe, creds)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(key, "sk_") && !strings.HasPrefix(key, "rk_") {
		return nil, malformed(ProviderStripe, "expected a secret (sk_) or restricted (rk_) key")
	}
	from, to = Window(from, to, time.Now())

	q := url.Values{}
	q.Set("limit", "100")
	q.Set("created[gte]", strconv.FormatInt(from.Unix(), 10))
	q.Set("created[lte]", strconv.FormatInt(to.Unix(), 10))
	sessions, err := list[stripeSession](ctx, s, key, "/v1/checkout/sessions", q, func(v stripeSession) string { return v.ID })
	if err != nil {
		return nil, err
	}

	var items []stripeLineItem
	for _, sess := range sessions {
		if sess.PaymentStatus != "paid" {
			continue
		}
		lq := url.Values{}
		lq.Set("limit", "100")
		path := "/v1/checkout/sessions/" + url.PathEscape(sess.ID) + "/line_items"
		li, err := list[stripeLineItem](ctx, s, key, path, lq, func(v stripeLineItem) string { return v.ID })
		if err != nil {
			return nil, err
		}
		items = append(items, li...)
	}
	return normalizeStripe(items), nil
}

// list follows starting_after pagination until has_more is false
func list[T any](ctx context.Context, s *Stripe, key, path string, q url.Values, id func(T) string) ([]T, error) {
	var all []T
	for {
		req, err := s.newRequest(ctx, http.MethodGet, path+"?"+q.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+key)

		var page stripeList[T]
		if err := s.do(req, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Data...)
		if !page.HasMore || len(page.Data) == 0 {
			return all, nil
		}
		q.Set("starting_after", id(page.Data[len(page.Data)-1]))
	}
}

func normalizeStripe(items []stripeLineItem) []SaleLine {
	lines := make([]SaleLine, 0, len(items))
	for _, it := range items {
		line := SaleLine{ExternalItemName: it.Description, Quantity: quantityOrOne(float64(it.Quantity))}
		if it.Price != nil {
			line.ExternalItemID = string(it.Price.Product)
		}
		lines = append(lines, line)
	}
	return lines
}
