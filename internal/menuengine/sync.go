package menuengine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"menuperf/internal/catalog"
	"menuperf/internal/logger"
	"menuperf/internal/models"
	"menuperf/internal/monitoring"
	"menuperf/internal/pos"

	"golang.org/x/sync/errgroup"
)

// maxParallelSyncs bounds concurrent vendor calls for one restaurant
const maxParallelSyncs = 4

// SyncResult describes one successful sync
type SyncResult struct {
	Provider     string               `json:"provider"`
	Lines        int                  `json:"lines"`
	MatchedItems int                  `json:"matchedItems"`
	Records      []models.SalesRecord `json:"records"`
}

// Outcome is one provider's result within a multi-provider sync
type Outcome struct {
	Provider string      `json:"provider"`
	Status   string      `json:"status"`
	Result   *SyncResult `json:"result,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// SyncEvent is broadcast after every sync attempt
type SyncEvent struct {
	RestaurantID string    `json:"restaurantId"`
	Provider     string    `json:"provider"`
	Status       string    `json:"status"`
	MatchedItems int       `json:"matchedItems"`
	Error        string    `json:"error,omitempty"`
	At           time.Time `json:"at"`
}

// EventPublisher receives sync events
type EventPublisher interface {
	Publish(event SyncEvent)
}

// SyncService pulls vendor sales and reconciles them into canonical records
type SyncService struct {
	deps     Deps
	adapters *pos.Registry
	events   EventPublisher
	window   time.Duration
	now      func() time.Time
}

// NewSyncService creates the sync path. events may be nil.
func NewSyncService(deps Deps, adapters *pos.Registry, events EventPublisher, window time.Duration) *SyncService {
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	if window <= 0 {
		window = pos.DefaultWindow
	}
	return &SyncService{deps: deps, adapters: adapters, events: events, window: window, now: time.Now}
}

// Sync fetches the trailing window of sales from one provider and reconciles
// it. Nothing is written when the vendor call fails.
func (s *SyncService) Sync(ctx context.Context, restaurantID, provider string) (*SyncResult, error) {
	res, err := s.sync(ctx, restaurantID, provider)
	s.record(restaurantID, provider, res, err)
	return res, err
}

func (s *SyncService) sync(ctx context.Context, restaurantID, provider string) (*SyncResult, error) {
	adapter, err := s.adapters.Get(provider)
	if err != nil {
		return nil, err
	}
	integration, err := s.deps.Catalog.Integration(ctx, restaurantID, adapter.Name())
	if err != nil {
		return nil, err
	}

	to := s.now()
	creds := pos.Credentials{APIKey: integration.AccessToken}
	lines, err := adapter.FetchSales(ctx, creds, restaurantID, to.Add(-s.window), to)
	if err != nil {
		return nil, err
	}
	return s.reconcile(ctx, restaurantID, adapter.Name(), lines)
}

// SyncAll syncs every active integration in parallel. A failing provider does
// not stop the others; its error is reported in its outcome.
func (s *SyncService) SyncAll(ctx context.Context, restaurantID string) ([]Outcome, error) {
	integrations, err := s.deps.Catalog.ActiveIntegrations(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, len(integrations))
	var g errgroup.Group
	g.SetLimit(maxParallelSyncs)
	for i, in := range integrations {
		i, provider := i, in.Provider
		g.Go(func() error {
			res, err := s.Sync(ctx, restaurantID, provider)
			outcomes[i] = Outcome{Provider: provider, Status: Status(err), Result: res}
			if err != nil {
				outcomes[i].Error = err.Error()
			}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes, nil
}

// SyncExport reconciles an uploaded CSV or XLSX sales export
func (s *SyncService) SyncExport(ctx context.Context, restaurantID string, r io.Reader, filename string) (*SyncResult, error) {
	lines, err := pos.ParseExport(r, filename)
	var res *SyncResult
	if err == nil {
		res, err = s.reconcile(ctx, restaurantID, pos.ProviderExport, lines)
	}
	s.record(restaurantID, pos.ProviderExport, res, err)
	return res, err
}

func (s *SyncService) reconcile(ctx context.Context, restaurantID, provider string, lines []pos.SaleLine) (*SyncResult, error) {
	items, err := s.deps.Catalog.MenuItems(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	records, err := s.deps.Sales.Reconcile(ctx, restaurantID, provider, items, lines)
	if err != nil {
		return nil, fmt.Errorf("reconcile %s sales: %w", provider, err)
	}
	return &SyncResult{Provider: provider, Lines: len(lines), MatchedItems: len(records), Records: records}, nil
}

func (s *SyncService) record(restaurantID, provider string, res *SyncResult, err error) {
	status := Status(err)
	matched := 0
	if res != nil {
		matched = res.MatchedItems
	}
	s.deps.Monitor.RecordSync(provider, status, matched)

	event := SyncEvent{RestaurantID: restaurantID, Provider: provider, Status: status, MatchedItems: matched, At: s.now().UTC()}
	if err != nil {
		event.Error = err.Error()
		s.deps.Logger.Warn("pos sync failed", "restaurant_id", restaurantID, "provider", provider, "status", status, "error", err)
	} else {
		s.deps.Logger.Info("pos sync completed", "restaurant_id", restaurantID, "provider", provider, "lines", res.Lines, "matched_items", matched)
	}
	if s.events != nil {
		s.events.Publish(event)
	}
}

// Status classifies a sync error for metrics, events and HTTP mapping
func Status(err error) string {
	switch {
	case err == nil:
		return monitoring.SyncSuccess
	case errors.Is(err, pos.ErrInvalidCredentials):
		return monitoring.SyncAuthError
	case errors.Is(err, pos.ErrMalformedCredentials),
		errors.Is(err, pos.ErrUnknownProvider),
		errors.Is(err, pos.ErrUnsupportedExport),
		errors.Is(err, pos.ErrExportHeader),
		errors.Is(err, catalog.ErrIntegrationNotFound):
		return monitoring.SyncBadRequest
	default:
		return monitoring.SyncVendorError
	}
}
