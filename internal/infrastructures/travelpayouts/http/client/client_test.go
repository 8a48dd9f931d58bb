package travelpayouts

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	derr "github.com/jimdsouza/swa-dashboard/internal/domain/errors"
	"github.com/jimdsouza/swa-dashboard/internal/domain/models"
)

func TestFetchFares_QueriesBothLegs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("token") != "token" || q.Get("one_way") != "true" {
			t.Fatalf("unexpected query: %s", r.URL.RawQuery)
		}
		switch q.Get("origin") + "-" + q.Get("destination") {
		case "LAX-EWR":
			if q.Get("departure_at") != "2026-05-05" {
				t.Fatalf("unexpected outbound date: %s", q.Get("departure_at"))
			}
			_, _ = w.Write([]byte(`{"success":true,"data":[
				{"price":310,"departure_at":"2026-05-05T08:00:00-07:00"},
				{"price":240,"departure_at":"2026-05-05T19:30:00-07:00"}
			]}`))
		case "EWR-LAX":
			_, _ = w.Write([]byte(`{"success":true,"data":[{"price":199,"departure_at":"2026-06-06T09:00:00-04:00"}]}`))
		default:
			t.Fatalf("unexpected route: %s", r.URL.RawQuery)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "token", "usd", 30, time.Second)
	got, err := c.FetchFares(context.Background(), models.FareQuery{
		Origin:            "LAX",
		Destination:       "EWR",
		OutboundDate:      time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC),
		ReturnDate:        time.Date(2026, 6, 6, 0, 0, 0, 0, time.UTC),
		OutboundTimeOfDay: models.Morning,
		Passengers:        1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Outbound) != 1 || got.Outbound[0] != 310 {
		t.Fatalf("unexpected outbound prices after morning filter: %v", got.Outbound)
	}
	if len(got.Return) != 1 || got.Return[0] != 199 {
		t.Fatalf("unexpected return prices: %v", got.Return)
	}
}

func TestGetPrices_ServerErrorIsTemporary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "token", "usd", 30, time.Second)
	_, err := c.GetPrices(context.Background(), "LAX", "EWR", time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC), models.Anytime)
	if !errors.Is(err, derr.ErrSourceTemporary) {
		t.Fatalf("unexpected error: got %v want %v", err, derr.ErrSourceTemporary)
	}
}

func TestGetPrices_EmptyToken(t *testing.T) {
	c := NewClient("https://api.travelpayouts.com", "", "usd", 30, time.Second)
	_, err := c.GetPrices(context.Background(), "LAX", "EWR", time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC), models.Anytime)
	if err == nil {
		t.Fatal("expected error for empty token")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Fatalf("unexpected error: %v", err)
	}
}
