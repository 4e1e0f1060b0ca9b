package menuengine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"menuperf/internal/models"
	"menuperf/internal/monitoring"
	"menuperf/internal/pos"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedEvents struct {
	mu     sync.Mutex
	events []SyncEvent
}

func (r *recordedEvents) Publish(e SyncEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func squareServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		switch r.URL.Path {
		case "/v2/locations":
			w.Write([]byte(`{"locations":[{"id":"L1"}]}`))
		default:
			w.Write([]byte(`{"orders":[{"line_items":[
				{"name":"Saumon Frais Atlantique","quantity":"3"},
				{"name":"Burger","quantity":"2","catalog_object_id":"SQ-B"}
			]}]}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (f *fixture) seedSyncCatalog(t *testing.T) {
	t.Helper()
	rows := []interface{}{
		&models.MenuItem{ID: "m1", RestaurantID: "r1", Name: "Saumon frais", Price: 24},
		&models.MenuItem{ID: "m2", RestaurantID: "r1", Name: "Le Burger", Price: 18, ExternalID: "SQ-B"},
		&models.Integration{RestaurantID: "r1", Provider: "square", AccessToken: "sq-token", IsActive: true},
	}
	for _, row := range rows {
		require.NoError(t, f.db.Create(row).Error)
	}
}

func newSyncService(f *fixture, events EventPublisher, baseURLs map[string]string) *SyncService {
	return NewSyncService(f.deps, pos.DefaultRegistry(nil, baseURLs), events, 0)
}

func TestSyncReconcilesProviderSales(t *testing.T) {
	f := newFixture(t)
	f.seedSyncCatalog(t)
	srv := squareServer(t, http.StatusOK)
	events := &recordedEvents{}
	s := newSyncService(f, events, map[string]string{"square": srv.URL})

	res, err := s.Sync(context.Background(), "r1", "square")
	require.NoError(t, err)
	assert.Equal(t, "square", res.Provider)
	assert.Equal(t, 2, res.Lines)
	assert.Equal(t, 2, res.MatchedItems)

	sales, err := f.deps.Sales.WeeklySales(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"m1": 3, "m2": 2}, sales)

	require.Len(t, events.events, 1)
	assert.Equal(t, monitoring.SyncSuccess, events.events[0].Status)
	assert.Equal(t, 2, events.events[0].MatchedItems)
}

func TestSyncInvalidCredentialsWritesNothing(t *testing.T) {
	f := newFixture(t)
	f.seedSyncCatalog(t)
	srv := squareServer(t, http.StatusUnauthorized)
	events := &recordedEvents{}
	s := newSyncService(f, events, map[string]string{"square": srv.URL})

	_, err := s.Sync(context.Background(), "r1", "square")
	assert.ErrorIs(t, err, pos.ErrInvalidCredentials)
	assert.Equal(t, monitoring.SyncAuthError, Status(err))

	sales, err := f.deps.Sales.WeeklySales(context.Background(), "r1")
	require.NoError(t, err)
	assert.Empty(t, sales)
	require.Len(t, events.events, 1)
	assert.Equal(t, monitoring.SyncAuthError, events.events[0].Status)
}

func TestSyncMissingIntegrationAndUnknownProvider(t *testing.T) {
	f := newFixture(t)
	f.seedSyncCatalog(t)
	s := newSyncService(f, nil, nil)

	_, err := s.Sync(context.Background(), "r1", "toast")
	assert.ErrorIs(t, err, ErrIntegrationNotFound)
	assert.Equal(t, monitoring.SyncBadRequest, Status(err))

	_, err = s.Sync(context.Background(), "r1", "clover")
	assert.ErrorIs(t, err, pos.ErrUnknownProvider)
}

func TestSyncAllReportsEachProvider(t *testing.T) {
	f := newFixture(t)
	f.seedSyncCatalog(t)
	require.NoError(t, f.db.Create(&models.Integration{RestaurantID: "r1", Provider: "lightspeed", AccessToken: "no-colon", IsActive: true}).Error)
	srv := squareServer(t, http.StatusOK)
	s := newSyncService(f, nil, map[string]string{"square": srv.URL})

	outcomes, err := s.SyncAll(context.Background(), "r1")
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.Equal(t, "lightspeed", outcomes[0].Provider)
	assert.Equal(t, monitoring.SyncBadRequest, outcomes[0].Status)
	assert.Contains(t, outcomes[0].Error, "ACCOUNT_ID:TOKEN")
	assert.Nil(t, outcomes[0].Result)

	assert.Equal(t, "square", outcomes[1].Provider)
	assert.Equal(t, monitoring.SyncSuccess, outcomes[1].Status)
	require.NotNil(t, outcomes[1].Result)
	assert.Equal(t, 2, outcomes[1].Result.MatchedItems)
}

func TestSyncExport(t *testing.T) {
	f := newFixture(t)
	f.seedSyncCatalog(t)
	s := newSyncService(f, nil, nil)

	csv := "item,qty\nSaumon frais,4\nBurger,1\nBurger,1\n"
	res, err := s.SyncExport(context.Background(), "r1", strings.NewReader(csv), "week.csv")
	require.NoError(t, err)
	assert.Equal(t, pos.ProviderExport, res.Provider)

	sales, err := f.deps.Sales.WeeklySales(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"m1": 4, "m2": 2}, sales)

	_, err = s.SyncExport(context.Background(), "r1", strings.NewReader("x"), "week.pdf")
	assert.ErrorIs(t, err, pos.ErrUnsupportedExport)
	assert.Equal(t, monitoring.SyncBadRequest, Status(err))
}

func TestStatus(t *testing.T) {
	assert.Equal(t, monitoring.SyncSuccess, Status(nil))
	assert.Equal(t, monitoring.SyncVendorError, Status(&pos.ProviderError{Provider: "toast", StatusCode: 503}))
	assert.Equal(t, monitoring.SyncAuthError, Status(&pos.ProviderError{Provider: "toast", StatusCode: 403}))
}
