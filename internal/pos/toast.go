package pos

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	ProviderToast  = "toast"
	toastPageSize  = 100
	toastTimestamp = "2006-01-02T15:04:05.000-0700"
)

// Toast reads orders through the Toast Orders API. Credentials must be
// "restaurantGuid|accessToken".
type Toast struct {
	client
}

func NewToast(opts ...Option) *Toast {
	return &Toast{client: newClient(ProviderToast, "https://ws-api.toasttab.com", opts)}
}

func (t *Toast) Name() string { return ProviderToast }

type toastOrder struct {
	Voided bool         `json:"voided"`
	Checks []toastCheck `json:"checks"`
}

type toastCheck struct {
	Voided     bool             `json:"voided"`
	Selections []toastSelection `json:"selections"`
}

type toastSelection struct {
	DisplayName string  `json:"displayName"`
	Quantity    float64 `json:"quantity"`
	Voided      bool    `json:"voided"`
	Item        *struct {
		GUID string `json:"guid"`
	} `json:"item"`
}

func (t *Toast) FetchSales(ctx context.Context, creds Credentials, restaurantID string, from, to time.Time) ([]SaleLine, error) {
	restaurantGUID, token, err := splitComposite(ProviderToast, creds.secret(), "|", "RESTAURANT_GUID|ACCESS_TOKEN")
	if err != nil {
		return nil, err
	}
	from, to = Window(from, to, time.Now())

	var orders []toastOrder
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("startDate", from.Format(toastTimestamp))
		q.Set("endDate", to.Format(toastTimestamp))
		q.Set("pageSize", strconv.Itoa(toastPageSize))
		q.Set("page", strconv.Itoa(page))

		req, err := t.newRequest(ctx, http.MethodGet, "/orders/v2/ordersBulk?"+q.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Toast-Restaurant-External-ID", restaurantGUID)

		var batch []toastOrder
		if err := t.do(req, &batch); err != nil {
			return nil, err
		}
		orders = append(orders, batch...)
		if len(batch) < toastPageSize {
			break
		}
	}
	return normalizeToast(orders), nil
}

func normalizeToast(orders []toastOrder) []SaleLine {
	var lines []SaleLine
	for _, o := range orders {
		if o.Voided {
			continue
		}
		for _, c := range o.Checks {
			if c.Voided {
				continue
			}
			for _, s := range c.Selections {
				if s.Voided {
					continue
				}
				line := SaleLine{ExternalItemName: s.DisplayName, Quantity: quantityOrOne(s.Quantity)}
				if s.Item != nil {
					line.ExternalItemID = s.Item.GUID
				}
				lines = append(lines, line)
			}
		}
	}
	return lines
}
