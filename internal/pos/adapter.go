// Package pos fetches sales from point-of-sale vendors and normalizes every
// vendor's payload into a flat list of SaleLine values.
package pos

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultWindow is the trailing sales window used when the caller gives none.
const DefaultWindow = 7 * 24 * time.Hour

// SaleLine is one normalized line of vendor sales. ExternalItemID is empty
// when the vendor does not expose a stable item identifier.
type SaleLine struct {
	ExternalItemID   string `json:"externalItemId,omitempty"`
	ExternalItemName string `json:"externalItemName"`
	Quantity         int    `json:"quantity"`
}

// Credentials carries whatever a vendor needs. Composite forms such as
// "accountId:token" or "guid|token" travel in APIKey.
type Credentials struct {
	APIKey       string
	OAuthToken   string
	RefreshToken string
}

func (c Credentials) secret() string {
	if c.OAuthToken != "" {
		return strings.TrimSpace(c.OAuthToken)
	}
	return strings.TrimSpace(c.APIKey)
}

// Adapter is implemented by every POS vendor integration
type Adapter interface {
	Name() string
	FetchSales(ctx context.Context, creds Credentials, restaurantID string, from, to time.Time) ([]SaleLine, error)
}

var (
	// ErrInvalidCredentials matches vendor 401/403 responses.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMalformedCredentials is returned before any network call when the
	// stored credential does not have the shape the vendor requires.
	ErrMalformedCredentials = errors.New("malformed credentials")
	ErrUnknownProvider      = errors.New("unknown pos provider")
)

// ProviderError reports a failed vendor call. StatusCode is zero for
// transport failures.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: request failed: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Provider, e.StatusCode, e.Body)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrInvalidCredentials) match 401 and 403 responses.
func (e *ProviderError) Is(target error) bool {
	return target == ErrInvalidCredentials && e.IsAuth()
}

// IsAuth reports whether the vendor rejected the credentials
func (e *ProviderError) IsAuth() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

func malformed(provider, format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w: %s", provider, ErrMalformedCredentials, fmt.Sprintf(format, args...))
}

// Window resolves the fetch window. A zero to means now; a zero from means
// DefaultWindow before to.
func Window(from, to, now time.Time) (time.Time, time.Time) {
	if to.IsZero() {
		to = now
	}
	if from.IsZero() {
		from = to.Add(-DefaultWindow)
	}
	return from.UTC(), to.UTC()
}

// splitComposite splits "left<sep>right" and requires both halves.
func splitComposite(provider, raw, sep, shape string) (string, string, error) {
	raw = strings.TrimSpace(raw)
	left, right, ok := strings.Cut(raw, sep)
	left, right = strings.TrimSpace(left), strings.TrimSpace(right)
	if !ok || left == "" || right == "" {
		return "", "", malformed(provider, "expected %s", shape)
	}
	return left, right, nil
}

func requireToken(provider string, creds Credentials) (string, error) {
	token := creds.secret()
	if token == "" {
		return "", malformed(provider, "an API key or access token is required")
	}
	if strings.ContainsAny(token, " \t\r\n") {
		return "", malformed(provider, "token must not contain whitespace")
	}
	return token, nil
}

// parseQuantity reads a vendor quantity string. Missing, unparsable or zero
// values count as one unit; negative values (returns) are kept.
func parseQuantity(s string) int {
	q, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 1
	}
	return quantityOrOne(q)
}

func quantityOrOne(q float64) int {
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return 1
	}
	n := int(math.Round(q))
	if n == 0 {
		return 1
	}
	return n
}

// Registry maps provider names to adapters
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry builds a registry from the given adapters
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Name()] = a
	}
	return r
}

// DefaultRegistry wires every vendor adapter. baseURLs overrides vendor
// endpoints by provider name.
func DefaultRegistry(client *http.Client, baseURLs map[string]string) *Registry {
	opts := func(provider string) []Option {
		o := []Option{WithHTTPClient(client)}
		if u := baseURLs[provider]; u != "" {
			o = append(o, WithBaseURL(u))
		}
		return o
	}
	return NewRegistry(
		NewSquare(opts(ProviderSquare)...),
		NewLightspeed(opts(ProviderLightspeed)...),
		NewToast(opts(ProviderToast)...),
		NewSumUp(opts(ProviderSumUp)...),
		NewZettle(opts(ProviderZettle)...),
		NewStripe(opts(ProviderStripe)...),
	)
}

// Get returns the adapter registered under name
func (r *Registry) Get(name string) (Adapter, error) {
	a, ok := r.adapters[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return a, nil
}

// Names returns the registered provider names, sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for n := range r.adapters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
