package pos

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

const ProviderZettle = "zettle"

// Zettle reads purchases from the Zettle Purchase API
type Zettle struct {
	client
}

func NewZettle(opts ...Option) *Zettle {
	return &Zettle{client: newClient(ProviderZettle, "https://purchase.izettle.com", opts)}
}

func (z *Zettle) Name() string { return ProviderZettle }

type zettlePurchasesPage struct {
	Purchases        []zettlePurchase `json:"purchases"`
	LastPurchaseHash string           `json:"lastPurchaseHash"`
}

type zettlePurchase struct {
	Refund   bool `json:"refund"`
	Products []struct {
		Name        string `json:"name"`
		Quantity    string `json:"quantity"`
		ProductUUID string `json:"productUuid"`
	} `json:"products"`
}

func (z *Zettle) FetchSales(ctx context.Context, creds Credentials, restaurantID string, from, to time.Time) ([]SaleLine, error) {
	token, err := requireToken(ProviderZettle, creds)
	if err != nil {
		return nil, err
	}
	from, to = Window(from, to, time.Now())

	q := url.Values{}
	q.Set("startDate", from.Format(time.RFC3339))
	q.Set("endDate", to.Format(time.RFC3339))
	q.Set("limit", "500")

	var purchases []zettlePurchase
	for {
		req, err := z.newRequest(ctx, http.MethodGet, "/purchases/v2?"+q.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)

		var page zettlePurchasesPage
		if err := z.do(req, &page); err != nil {
			return nil, err
		}
		purchases = append(purchases, page.Purchases...)

		if len(page.Purchases) == 0 || page.LastPurchaseHash == "" || page.LastPurchaseHash == q.Get("lastPurchaseHash") {
			break
		}
		q.Set("lastPurchaseHash", page.LastPurchaseHash)
	}
	return normalizeZettle(purchases), nil
}

func normalizeZettle(purchases []zettlePurchase) []SaleLine {
	var lines []SaleLine
	for _, p := range purchases {
		if p.Refund {
			continue
		}
		for _, prod := range p.Products {
			if prod.Name == "" {
				continue
			}
			lines = append(lines, SaleLine{
				ExternalItemID:   prod.ProductUUID,
				ExternalItemName: prod.Name,
				Quantity:         parseQuantity(prod.Quantity),
			})
		}
	}
	return lines
}
