package twilio

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	derr "github.com/jimdsouza/swa-dashboard/internal/domain/errors"
	"go.uber.org/zap"
)

type Credentials struct {
	AccountSID string
	AuthToken  string
	PhoneFrom  string
	PhoneTo    string
}

func (c Credentials) complete() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.PhoneFrom != "" && c.PhoneTo != ""
}

// DeliveryReporter prints the outcome of each text message.
type DeliveryReporter interface {
	PrintSuccess(line string)
	PrintFailure(line string)
}

type Client struct {
	log      *zap.Logger
	http     *resty.Client
	creds    Credentials
	reporter DeliveryReporter
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewClient(log *zap.Logger, baseURL string, timeout time.Duration, creds Credentials, reporter DeliveryReporter) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://api.twilio.com"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(strings.TrimRight(baseURL, "/"))
	httpClient.SetBasicAuth(creds.AccountSID, creds.AuthToken)
	httpClient.SetTimeout(timeout)

	return &Client{
		log:      log,
		http:     httpClient,
		creds:    creds,
		reporter: reporter,
	}
}

// Send posts one text message and returns the delivery error, if any.
func (c *Client) Send(ctx context.Context, body string) error {
	if !c.creds.complete() {
		return derr.ErrNotifierNotConfigured
	}

	var failure apiError
	res, err := c.http.R().
		SetContext(ctx).
		SetPathParam("sid", c.creds.AccountSID).
		SetFormData(map[string]string{
			"From": c.creds.PhoneFrom,
			"To":   c.creds.PhoneTo,
			"Body": body,
		}).
		SetError(&failure).
		Post("/2010-04-01/Accounts/{sid}/Messages.json")
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	if res.IsError() {
		if failure.Message != "" {
			return fmt.Errorf("send sms: %s: %d %s", res.Status(), failure.Code, failure.Message)
		}
		return fmt.Errorf("send sms: %s", res.Status())
	}

	return nil
}

// Notify sends the message and reports the outcome instead of returning it, so a failed
// text never interrupts polling.
func (c *Client) Notify(ctx context.Context, message string) error {
	err := c.Send(ctx, message)
	if err != nil {
		c.log.Warn("sms delivery failed", zap.String("to", c.creds.PhoneTo), zap.Error(err))
		if c.reporter != nil {
			c.reporter.PrintFailure(fmt.Sprintf("Error: failed to send SMS to %s from %s", c.creds.PhoneTo, c.creds.PhoneFrom))
		}
		return nil
	}

	c.log.Info("sms delivered", zap.String("to", c.creds.PhoneTo))
	if c.reporter != nil {
		c.reporter.PrintSuccess(fmt.Sprintf("Successfully sent SMS to %s from %s", c.creds.PhoneTo, c.creds.PhoneFrom))
	}
	return nil
}
