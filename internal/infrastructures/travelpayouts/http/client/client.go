package travelpayouts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	derr "github.com/jimdsouza/swa-dashboard/internal/domain/errors"
	"github.com/jimdsouza/swa-dashboard/internal/domain/models"
	"github.com/jimdsouza/swa-dashboard/internal/infrastructures/travelpayouts/dto"
	"github.com/jimdsouza/swa-dashboard/internal/infrastructures/travelpayouts/mappers"
)

const Name = "travelpayouts"

type Client struct {
	baseURL    string
	token      string
	currency   string
	limit      int
	httpClient *http.Client
}

func NewClient(baseURL, token, currency string, limit int, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://api.travelpayouts.com"
	}
	if strings.TrimSpace(currency) == "" {
		currency = "usd"
	}
	if limit <= 0 {
		limit = 30
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      strings.TrimSpace(token),
		currency:   strings.ToLower(strings.TrimSpace(currency)),
		limit:      limit,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Name() string {
	return Name
}

func (c *Client) FetchFares(ctx context.Context, query models.FareQuery) (models.FareQuotes, error) {
	quotes := models.FareQuotes{Outbound: []int64{}, Return: []int64{}}
	for _, leg := range query.Legs() {
		prices, err := c.GetPrices(ctx, leg.Origin, leg.Destination, leg.Date, leg.TimeOfDay)
		if err != nil {
			return models.FareQuotes{}, fmt.Errorf("%s leg: %w", leg.Leg, err)
		}
		if leg.Leg == models.LegReturn {
			quotes.Return = prices
		} else {
			quotes.Outbound = prices
		}
	}

	return quotes, nil
}

func (c *Client) GetPrices(ctx context.Context, origin, destination string, date time.Time, tod models.TimeOfDay) ([]int64, error) {
	if c.token == "" {
		return nil, fmt.Errorf("travelpayouts token is empty")
	}

	reqURL, err := c.buildURL(origin, destination, date)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: travelpayouts request: %v", derr.ErrSourceTemporary, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: travelpayouts status: %s", derr.ErrSourceTemporary, resp.Status)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("travelpayouts status: %s", resp.Status)
	}

	var payload dto.PriceForDatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode travelpayouts response: %w", err)
	}
	if payload.Error != "" {
		return nil, fmt.Errorf("travelpayouts error: %s", payload.Error)
	}

	return mappers.ExtractPrices(payload.Data, tod), nil
}

func (c *Client) buildURL(origin, destination string, date time.Time) (string, error) {
	u, err := url.Parse(c.baseURL + "/aviasales/v3/prices_for_dates")
	if err != nil {
		return "", fmt.Errorf("parse travelpayouts base url: %w", err)
	}

	q := u.Query()
	q.Set("origin", strings.ToUpper(strings.TrimSpace(origin)))
	q.Set("destination", strings.ToUpper(strings.TrimSpace(destination)))
	q.Set("departure_at", date.Format("2006-01-02"))
	q.Set("currency", c.currency)
	q.Set("sorting", "price")
	q.Set("token", c.token)
	q.Set("limit", strconv.Itoa(c.limit))
	q.Set("one_way", "true")
	u.RawQuery = q.Encode()
	return u.String(), nil
}
