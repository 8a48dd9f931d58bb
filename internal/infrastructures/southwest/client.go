package southwest

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/jimdsouza/swa-dashboard/internal/domain/models"
	"github.com/jimdsouza/swa-dashboard/internal/infrastructures/scrape"
	"go.uber.org/zap"
)

const (
	Name = "southwest"

	bookingFormSelector = ".booking-form--form"
	defaultFormAction   = "/flight/select-flight.html"
	outboundSelector    = "#faresOutbound .product_price, #b0Table span.var.h5"
	returnSelector      = "#faresReturn .product_price, #b1Table span.var.h5"
	formDateLayout      = "1/2/2006"
)

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

// FetchFares loads the landing page for session cookies and the form action, submits the
// booking form, and reads both fare tables from the results page.
func (c *Client) FetchFares(ctx context.Context, query models.FareQuery) (models.FareQuotes, error) {
	const op = "southwest.FetchFares"

	landing, err := scrape.Document(c.http.R().SetContext(ctx).Get("/"))
	if err != nil {
		return models.FareQuotes{}, fmt.Errorf("%s: load booking page: %w", op, err)
	}

	action := landing.Find(bookingFormSelector).First().AttrOr("action", "")
	if action == "" {
		c.log.Debug("booking form action not found, using default", zap.String("action", defaultFormAction))
		action = defaultFormAction
	}

	results, err := scrape.Document(c.http.R().
		SetContext(ctx).
		SetFormData(formData(query)).
		Post(action))
	if err != nil {
		return models.FareQuotes{}, fmt.Errorf("%s: submit booking form: %w", op, err)
	}

	quotes := models.FareQuotes{
		Outbound: scrape.CollectPrices(c.log, results, outboundSelector),
		Return:   []int64{},
	}
	if !query.OneWay {
		quotes.Return = scrape.CollectPrices(c.log, results, returnSelector)
	}

	c.log.Debug("southwest fares scraped",
		zap.Int("outbound_count", len(quotes.Outbound)),
		zap.Int("return_count", len(quotes.Return)),
	)
	return quotes, nil
}

func formData(query models.FareQuery) map[string]string {
	data := map[string]string{
		"twoWayTrip":           strconv.FormatBool(!query.OneWay),
		"airTranRedirect":      "",
		"returnAirport":        "RoundTrip",
		"outboundTimeOfDay":    query.OutboundTimeOfDay.SouthwestCode(),
		"returnTimeOfDay":      query.ReturnTimeOfDay.SouthwestCode(),
		"seniorPassengerCount": "0",
		"fareType":             "DOLLARS",
		"originAirport":        query.Origin,
		"destinationAirport":   query.Destination,
		"outboundDateString":   query.OutboundDate.Format(formDateLayout),
		"returnDateString":     query.ReturnDate.Format(formDateLayout),
		"adultPassengerCount":  strconv.Itoa(query.Passengers),
	}

	if query.OneWay {
		data["returnAirport"] = ""
		data["returnTimeOfDay"] = ""
		data["returnDateString"] = ""
	}

	return data
}
