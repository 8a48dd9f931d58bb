package kayak

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/jimdsouza/swa-dashboard/internal/domain/models"
	"github.com/jimdsouza/swa-dashboard/internal/infrastructures/scrape"
	"go.uber.org/zap"
)

const (
	Name = "kayak"

	priceSelector = ".price-text"
	dateLayout    = "2006-01-02"
)

// Client searches each leg as its own one-way result page so outbound and return fares
// stay separate.
type Client struct {
	log  *zap.Logger
	http *resty.Client
}

func NewClient(log *zap.Logger, httpClient *resty.Client) *Client {
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		log:  log,
		http: httpClient,
	}
}

func (c *Client) Name() string {
	return Name
}

func (c *Client) FetchFares(ctx context.Context, query models.FareQuery) (models.FareQuotes, error) {
	const op = "kayak.FetchFares"

	quotes := models.FareQuotes{Outbound: []int64{}, Return: []int64{}}
	for _, leg := range query.Legs() {
		prices, err := c.searchLeg(ctx, leg, query.Passengers)
		if err != nil {
			if leg.Leg == models.LegOutbound {
				return models.FareQuotes{}, fmt.Errorf("%s: %s: %w", op, leg.Leg, err)
			}
			// Keep the outbound leg; the tracker rejects the cycle for the missing return.
			c.log.Warn("kayak leg failed", zap.Stringer("leg", leg.Leg), zap.Error(err))
			continue
		}

		if leg.Leg == models.LegReturn {
			quotes.Return = prices
		} else {
			quotes.Outbound = prices
		}
	}

	return quotes, nil
}

func (c *Client) searchLeg(ctx context.Context, leg models.LegSearch, passengers int) ([]int64, error) {
	req := c.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"route":  fmt.Sprintf("%s-%s", leg.Origin, leg.Destination),
			"date":   leg.Date.Format(dateLayout),
			"adults": fmt.Sprintf("%dadults", passengers),
		}).
		SetQueryParam("sort", "price_a")

	if filter := takeoffFilter(leg.TimeOfDay); filter != "" {
		req.SetQueryParam("fs", filter)
	}

	doc, err := scrape.Document(req.Get("/flights/{route}/{date}/{adults}"))
	if err != nil {
		return nil, err
	}

	return scrape.CollectPrices(c.log, doc, priceSelector), nil
}

func takeoffFilter(tod models.TimeOfDay) string {
	if tod == models.Anytime {
		return ""
	}
	from, to := tod.Hours()
	return fmt.Sprintf("takeoff=%02d00,%02d00", from, to)
}
