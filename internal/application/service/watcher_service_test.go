package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	derr "github.com/jimdsouza/swa-dashboard/internal/domain/errors"
	"github.com/jimdsouza/swa-dashboard/internal/domain/models"
	"go.uber.org/zap"
)

type testFareFetcher struct {
	quotes models.FareQuotes
	err    error
	block  bool
	calls  int
}

func (f *testFareFetcher) Name() string { return "southwest" }

func (f *testFareFetcher) FetchFares(ctx context.Context, query models.FareQuery) (models.FareQuotes, error) {
	f.calls++
	if f.block {
		<-ctx.Done()
		return models.FareQuotes{}, ctx.Err()
	}
	if f.err != nil {
		return models.FareQuotes{}, f.err
	}
	return f.quotes, nil
}

type testStateStore struct {
	states  map[string]models.FareState
	loadErr error
	saves   int
}

func newTestStateStore() *testStateStore {
	return &testStateStore{states: map[string]models.FareState{}}
}

func (s *testStateStore) Load(_ context.Context, key string) (models.FareState, error) {
	if s.loadErr != nil {
		return models.FareState{}, s.loadErr
	}
	state, ok := s.states[key]
	if !ok {
		return models.FareState{}, derr.ErrStateNotFound
	}
	return state, nil
}

func (s *testStateStore) Save(_ context.Context, key string, state models.FareState) error {
	s.saves++
	s.states[key] = state
	return nil
}

type testPrinter struct {
	statuses []models.CycleResult
	deals    []string
}

func (p *testPrinter) PrintStatus(result models.CycleResult) { p.statuses = append(p.statuses, result) }
func (p *testPrinter) PrintDeal(message string)             { p.deals = append(p.deals, message) }

type testNotifier struct {
	messages []string
	err      error
}

func (n *testNotifier) Notify(_ context.Context, message string) error {
	n.messages = append(n.messages, message)
	return n.err
}

type testRecorder struct {
	results []models.CycleResult
}

func (r *testRecorder) Record(_ context.Context, result models.CycleResult) error {
	r.results = append(r.results, result)
	return nil
}

func price(v int64) *int64 {
	return &v
}

var testQuery = models.FareQuery{
	Origin:      "DAL",
	Destination: "HOU",
	Passengers:  1,
}

func TestRunCycle_FirstCycleSetsBaseline(t *testing.T) {
	fetcher := &testFareFetcher{quotes: models.FareQuotes{Outbound: []int64{149, 120}, Return: []int64{99}}}
	store := newTestStateStore()
	printer := &testPrinter{}
	at := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	svc := NewWatcherService(zap.NewNop(), fetcher, store, printer, testQuery, models.DealConfig{}, time.Second,
		WithClock(func() time.Time { return at }))

	got, err := svc.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Valid || got.OutboundDelta.Kind != models.DeltaNone {
		t.Fatalf("unexpected result: %+v", got)
	}
	if got.Provider != "southwest" || got.Route != "DAL-HOU" || !got.At.Equal(at) {
		t.Fatalf("unexpected result metadata: %+v", got)
	}

	state := store.states["southwest:DAL-HOU"]
	if state.PrevLowestOutbound == nil || *state.PrevLowestOutbound != 120 {
		t.Fatalf("unexpected outbound baseline: %+v", state)
	}
	if state.PrevLowestReturn == nil || *state.PrevLowestReturn != 99 {
		t.Fatalf("unexpected return baseline: %+v", state)
	}
	if len(printer.statuses) != 1 {
		t.Fatalf("expected one status, got %d", len(printer.statuses))
	}
}

func TestRunCycle_ReportsDeltasAgainstBaseline(t *testing.T) {
	fetcher := &testFareFetcher{quotes: models.FareQuotes{Outbound: []int64{130}, Return: []int64{110}}}
	store := newTestStateStore()
	store.states["southwest:DAL-HOU"] = models.FareState{PrevLowestOutbound: price(150), PrevLowestReturn: price(100)}
	svc := NewWatcherService(zap.NewNop(), fetcher, store, &testPrinter{}, testQuery, models.DealConfig{}, time.Second)

	got, err := svc.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.OutboundDelta != (models.Delta{Kind: models.DeltaDown, Amount: 20}) {
		t.Fatalf("unexpected outbound delta: %+v", got.OutboundDelta)
	}
	if got.ReturnDelta != (models.Delta{Kind: models.DeltaUp, Amount: 10}) {
		t.Fatalf("unexpected return delta: %+v", got.ReturnDelta)
	}
}

func TestRunCycle_FetchFailureKeepsBaseline(t *testing.T) {
	fetcher := &testFareFetcher{err: derr.ErrSourceTemporary}
	store := newTestStateStore()
	store.states["southwest:DAL-HOU"] = models.FareState{PrevLowestOutbound: price(150), PrevLowestReturn: price(100)}
	recorder := &testRecorder{}
	printer := &testPrinter{}
	svc := NewWatcherService(zap.NewNop(), fetcher, store, printer, testQuery, models.DealConfig{}, time.Second,
		WithRecorder(recorder))

	got, err := svc.RunCycle(context.Background())
	if !errors.Is(err, derr.ErrNoFares) || !errors.Is(err, derr.ErrSourceTemporary) {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Valid {
		t.Fatalf("cycle must be invalid: %+v", got)
	}
	if store.saves != 0 {
		t.Fatalf("state must not be saved on invalid cycle, saves=%d", store.saves)
	}
	if *store.states["southwest:DAL-HOU"].PrevLowestOutbound != 150 {
		t.Fatalf("baseline changed: %+v", store.states["southwest:DAL-HOU"])
	}
	if len(recorder.results) != 1 || len(printer.statuses) != 1 {
		t.Fatalf("invalid cycle must still be recorded and printed: recorded=%d printed=%d", len(recorder.results), len(printer.statuses))
	}
}

func TestRunCycle_FetchTimeout(t *testing.T) {
	fetcher := &testFareFetcher{block: true}
	store := newTestStateStore()
	svc := NewWatcherService(zap.NewNop(), fetcher, store, &testPrinter{}, testQuery, models.DealConfig{}, 20*time.Millisecond)

	_, err := svc.RunCycle(context.Background())
	if !errors.Is(err, derr.ErrFetchTimeout) {
		t.Fatalf("unexpected error: got %v want %v", err, derr.ErrFetchTimeout)
	}
	if len(store.states) != 0 {
		t.Fatalf("no baseline expected after timeout: %+v", store.states)
	}
}

func TestRunCycle_ReturnLegMissingIsInvalid(t *testing.T) {
	fetcher := &testFareFetcher{quotes: models.FareQuotes{Outbound: []int64{99}}}
	store := newTestStateStore()
	svc := NewWatcherService(zap.NewNop(), fetcher, store, &testPrinter{}, testQuery, models.DealConfig{}, time.Second)

	got, err := svc.RunCycle(context.Background())
	if !errors.Is(err, derr.ErrNoFares) {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Valid || store.saves != 0 {
		t.Fatalf("unexpected result: %+v saves=%d", got, store.saves)
	}
}

func TestRunCycle_DealNotifiesEveryNotifier(t *testing.T) {
	fetcher := &testFareFetcher{quotes: models.FareQuotes{Outbound: []int64{90}, Return: []int64{80}}}
	printer := &testPrinter{}
	failing := &testNotifier{err: errors.New("sms down")}
	sms := &testNotifier{}
	deal := models.DealConfig{CombinedThreshold: price(200)}
	svc := NewWatcherService(zap.NewNop(), fetcher, newTestStateStore(), printer, testQuery, deal, time.Second,
		WithNotifiers(failing, nil, sms))

	got, err := svc.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Deal {
		t.Fatalf("expected deal: %+v", got)
	}
	if len(printer.deals) != 1 || !strings.Contains(printer.deals[0], "$170") {
		t.Fatalf("unexpected deal lines: %v", printer.deals)
	}
	if len(failing.messages) != 1 || len(sms.messages) != 1 {
		t.Fatalf("every notifier must be called: failing=%d sms=%d", len(failing.messages), len(sms.messages))
	}
}

func TestRunCycle_NoDealNoNotification(t *testing.T) {
	fetcher := &testFareFetcher{quotes: models.FareQuotes{Outbound: []int64{190}, Return: []int64{180}}}
	printer := &testPrinter{}
	sms := &testNotifier{}
	deal := models.DealConfig{CombinedThreshold: price(200), IndividualThreshold: price(100)}
	svc := NewWatcherService(zap.NewNop(), fetcher, newTestStateStore(), printer, testQuery, deal, time.Second,
		WithNotifiers(sms))

	if _, err := svc.RunCycle(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(printer.deals) != 0 || len(sms.messages) != 0 {
		t.Fatalf("unexpected alerts: deals=%v sms=%v", printer.deals, sms.messages)
	}
}

func TestRunCycle_StoreLoadErrorUsesEmptyState(t *testing.T) {
	fetcher := &testFareFetcher{quotes: models.FareQuotes{Outbound: []int64{100}, Return: []int64{100}}}
	store := newTestStateStore()
	store.loadErr = errors.New("redis down")
	svc := NewWatcherService(zap.NewNop(), fetcher, store, nil, testQuery, models.DealConfig{}, time.Second)

	got, err := svc.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.OutboundDelta.Kind != models.DeltaNone {
		t.Fatalf("expected no delta without baseline: %+v", got.OutboundDelta)
	}
	if store.saves != 1 {
		t.Fatalf("expected state save, saves=%d", store.saves)
	}
}
