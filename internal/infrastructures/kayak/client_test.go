package kayak

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	derr "github.com/jimdsouza/swa-dashboard/internal/domain/errors"
	"github.com/jimdsouza/swa-dashboard/internal/domain/models"
	"github.com/jimdsouza/swa-dashboard/internal/infrastructures/scrape"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	httpClient, err := scrape.NewHTTPClient(srv.URL, time.Second)
	if err != nil {
		t.Fatalf("new http client: %v", err)
	}
	return NewClient(zap.NewNop(), httpClient)
}

func roundTrip() models.FareQuery {
	return models.FareQuery{
		Origin:            "LAX",
		Destination:       "EWR",
		OutboundDate:      time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC),
		ReturnDate:        time.Date(2026, 6, 6, 0, 0, 0, 0, time.UTC),
		OutboundTimeOfDay: models.Afternoon,
		ReturnTimeOfDay:   models.Anytime,
		Passengers:        1,
	}
}

func TestFetchFares_SearchesEachLeg(t *testing.T) {
	var filters []string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("sort") != "price_a" {
			t.Fatalf("expected price sort, got %q", r.URL.RawQuery)
		}
		filters = append(filters, r.URL.Query().Get("fs"))

		switch r.URL.Path {
		case "/flights/LAX-EWR/2026-05-05/1adults":
			_, _ = w.Write([]byte(`<div class="price-text">$312</div><div class="price-text">$278</div>`))
		case "/flights/EWR-LAX/2026-06-06/1adults":
			_, _ = w.Write([]byte(`<div class="price-text">$1,045</div><div class="price-text">n/a</div>`))
		default:
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
	}))

	got, err := c.FetchFares(context.Background(), roundTrip())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Outbound) != 2 || got.Outbound[1] != 278 {
		t.Fatalf("unexpected outbound prices: %v", got.Outbound)
	}
	if len(got.Return) != 1 || got.Return[0] != 1045 {
		t.Fatalf("unexpected return prices: %v", got.Return)
	}
	if len(filters) != 2 || filters[0] != "takeoff=1200,1800" || filters[1] != "" {
		t.Fatalf("unexpected takeoff filters: %v", filters)
	}
}

func TestFetchFares_OneWayMakesSingleRequest(t *testing.T) {
	calls := 0
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_, _ = w.Write([]byte(`<span class="price-text">$99</span>`))
	}))

	q := roundTrip()
	q.OneWay = true
	got, err := c.FetchFares(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one request, got %d", calls)
	}
	if len(got.Return) != 0 {
		t.Fatalf("unexpected return prices: %v", got.Return)
	}
}

func TestFetchFares_ReturnFailureKeepsOutbound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/flights/EWR-LAX/2026-06-06/1adults" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`<span class="price-text">$150</span>`))
	}))

	got, err := c.FetchFares(context.Background(), roundTrip())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Outbound) != 1 || len(got.Return) != 0 {
		t.Fatalf("unexpected quotes: %+v", got)
	}
}

func TestFetchFares_OutboundFailure(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := c.FetchFares(context.Background(), roundTrip())
	if !errors.Is(err, derr.ErrSourceTemporary) {
		t.Fatalf("unexpected error: got %v want %v", err, derr.ErrSourceTemporary)
	}
}
