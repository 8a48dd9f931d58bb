package config

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	derr "github.com/jimdsouza/swa-dashboard/internal/domain/errors"
	"github.com/jimdsouza/swa-dashboard/internal/domain/models"
)

const dateLayout = "2006-01-02"

type Config struct {
	Env           string              `yaml:"env" env:"ENV" env-default:"local"`
	Jaeger        string              `yaml:"jaeger" env:"JAEGER"`
	Log           LogConfig           `yaml:"log"`
	GRPC          GRPCConfig          `yaml:"grpc"`
	Watch         WatchConfig         `yaml:"watch"`
	Southwest     SouthwestConfig     `yaml:"southwest"`
	Kayak         KayakConfig         `yaml:"kayak"`
	Travelpayouts TravelpayoutsConfig `yaml:"travelpayouts"`
	DB            DBConfig            `yaml:"db"`
	Redis         RedisConfig         `yaml:"redis"`
	Twilio        TwilioConfig        `yaml:"twilio"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type GRPCConfig struct {
	Host           string `yaml:"host" env:"GRPC_HOST" env-default:"0.0.0.0"`
	Port           int    `yaml:"port" env:"GRPC_PORT"`
	UnhealthyAfter int    `yaml:"unhealthy_after" env:"GRPC_UNHEALTHY_AFTER" env-default:"3"`
}

type WatchConfig struct {
	Provider            string        `yaml:"provider" env:"WATCH_PROVIDER" env-default:"southwest"`
	Origin              string        `yaml:"origin" env:"WATCH_ORIGIN"`
	Destination         string        `yaml:"destination" env:"WATCH_DESTINATION"`
	OutboundDate        string        `yaml:"outbound_date" env:"WATCH_OUTBOUND_DATE"`
	ReturnDate          string        `yaml:"return_date" env:"WATCH_RETURN_DATE"`
	TimeOfDay           string        `yaml:"time_of_day" env:"WATCH_TIME_OF_DAY" env-default:"anytime"`
	ReturnTimeOfDay     string        `yaml:"return_time_of_day" env:"WATCH_RETURN_TIME_OF_DAY"`
	Passengers          int           `yaml:"passengers" env:"WATCH_PASSENGERS" env-default:"1"`
	OneWay              bool          `yaml:"one_way" env:"WATCH_ONE_WAY"`
	Interval            time.Duration `yaml:"interval" env:"WATCH_INTERVAL" env-default:"5m"`
	FetchTimeout        time.Duration `yaml:"fetch_timeout" env:"WATCH_FETCH_TIMEOUT" env-default:"1m"`
	RetryInitial        time.Duration `yaml:"retry_initial" env:"WATCH_RETRY_INITIAL" env-default:"30s"`
	IndividualDealPrice int64         `yaml:"individual_deal_price" env:"WATCH_INDIVIDUAL_DEAL_PRICE"`
	TotalDealPrice      int64         `yaml:"total_deal_price" env:"WATCH_TOTAL_DEAL_PRICE"`
}

type SouthwestConfig struct {
	BaseURL string        `yaml:"base_url" env:"SOUTHWEST_BASE_URL" env-default:"https://www.southwest.com"`
	Timeout time.Duration `yaml:"timeout" env:"SOUTHWEST_TIMEOUT" env-default:"30s"`
}

type KayakConfig struct {
	BaseURL string        `yaml:"base_url" env:"KAYAK_BASE_URL" env-default:"https://www.kayak.com"`
	Timeout time.Duration `yaml:"timeout" env:"KAYAK_TIMEOUT" env-default:"30s"`
}

type TravelpayoutsConfig struct {
	BaseURL  string        `yaml:"base_url" env:"TRAVELPAYOUTS_BASE_URL" env-default:"https://api.travelpayouts.com"`
	Token    string        `yaml:"token" env:"TRAVELPAYOUTS_TOKEN"`
	Currency string        `yaml:"currency" env:"TRAVELPAYOUTS_CURRENCY" env-default:"usd"`
	Limit    int           `yaml:"limit" env:"TRAVELPAYOUTS_LIMIT" env-default:"30"`
	Timeout  time.Duration `yaml:"timeout" env:"TRAVELPAYOUTS_TIMEOUT" env-default:"5s"`
}

type DBConfig struct {
	DSN      string `yaml:"dsn" env:"DB_DSN"`
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	Name     string `yaml:"name" env:"DB_NAME"`
	SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
}

func (c DBConfig) Enabled() bool {
	return c.DSN != "" || c.Host != ""
}

func (c DBConfig) DatabaseURL() string {
	if c.DSN != "" {
		return c.DSN
	}

	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}

	q := u.Query()
	q.Set("sslmode", sslMode)
	u.RawQuery = q.Encode()

	return u.String()
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type TwilioConfig struct {
	AccountSID string        `yaml:"account_sid" env:"TWILIO_ACCOUNT_SID"`
	AuthToken  string        `yaml:"auth_token" env:"TWILIO_AUTH_TOKEN"`
	PhoneFrom  string        `yaml:"phone_from" env:"TWILIO_PHONE_FROM"`
	PhoneTo    string        `yaml:"phone_to" env:"TWILIO_PHONE_TO"`
	BaseURL    string        `yaml:"base_url" env:"TWILIO_BASE_URL" env-default:"https://api.twilio.com"`
	Timeout    time.Duration `yaml:"timeout" env:"TWILIO_TIMEOUT" env-default:"10s"`
}

// Configured reports whether every credential needed to send a text is present.
func (c TwilioConfig) Configured() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.PhoneFrom != "" && c.PhoneTo != ""
}

// Validate normalises the watch section. One-way trips drop every return-related value.
func (c *Config) Validate() error {
	w := &c.Watch
	w.Provider = strings.ToLower(strings.TrimSpace(w.Provider))
	w.Origin = strings.ToUpper(strings.TrimSpace(w.Origin))
	w.Destination = strings.ToUpper(strings.TrimSpace(w.Destination))

	if w.Origin == "" || w.Destination == "" {
		return fmt.Errorf("%w: origin and destination are required", derr.ErrInvalidConfig)
	}
	if w.Origin == w.Destination {
		return fmt.Errorf("%w: origin equals destination", derr.ErrInvalidConfig)
	}
	if w.Passengers <= 0 {
		return fmt.Errorf("%w: passengers must be positive", derr.ErrInvalidConfig)
	}
	if w.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", derr.ErrInvalidConfig)
	}
	if w.FetchTimeout <= 0 {
		w.FetchTimeout = w.Interval
	}
	if w.IndividualDealPrice < 0 || w.TotalDealPrice < 0 {
		return fmt.Errorf("%w: deal prices must not be negative", derr.ErrInvalidConfig)
	}

	if w.OneWay {
		w.ReturnDate = ""
		w.ReturnTimeOfDay = ""
		w.TotalDealPrice = 0
	} else if w.ReturnTimeOfDay == "" {
		w.ReturnTimeOfDay = w.TimeOfDay
	}

	if _, err := c.Query(); err != nil {
		return err
	}

	return nil
}

func (c *Config) Query() (models.FareQuery, error) {
	w := c.Watch

	outboundDate, err := time.Parse(dateLayout, strings.TrimSpace(w.OutboundDate))
	if err != nil {
		return models.FareQuery{}, fmt.Errorf("%w: outbound_date: %v", derr.ErrInvalidConfig, err)
	}

	outboundTime, err := models.ParseTimeOfDay(w.TimeOfDay)
	if err != nil {
		return models.FareQuery{}, fmt.Errorf("%w: time_of_day: %v", derr.ErrInvalidConfig, err)
	}

	query := models.FareQuery{
		Origin:            w.Origin,
		Destination:       w.Destination,
		OutboundDate:      outboundDate,
		OutboundTimeOfDay: outboundTime,
		Passengers:        w.Passengers,
		OneWay:            w.OneWay,
	}
	if w.OneWay {
		return query, nil
	}

	returnDate, err := time.Parse(dateLayout, strings.TrimSpace(w.ReturnDate))
	if err != nil {
		return models.FareQuery{}, fmt.Errorf("%w: return_date: %v", derr.ErrInvalidConfig, err)
	}
	if returnDate.Before(outboundDate) {
		return models.FareQuery{}, fmt.Errorf("%w: return_date is before outbound_date", derr.ErrInvalidConfig)
	}

	returnTime, err := models.ParseTimeOfDay(w.ReturnTimeOfDay)
	if err != nil {
		return models.FareQuery{}, fmt.Errorf("%w: return_time_of_day: %v", derr.ErrInvalidConfig, err)
	}

	query.ReturnDate = returnDate
	query.ReturnTimeOfDay = returnTime
	return query, nil
}

func (c *Config) DealConfig() models.DealConfig {
	cfg := models.DealConfig{OneWay: c.Watch.OneWay}
	if c.Watch.IndividualDealPrice > 0 {
		v := c.Watch.IndividualDealPrice
		cfg.IndividualThreshold = &v
	}
	if c.Watch.TotalDealPrice > 0 && !c.Watch.OneWay {
		v := c.Watch.TotalDealPrice
		cfg.CombinedThreshold = &v
	}
	return cfg
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}
	return MustLoadByPath(path)
}

func MustLoadByPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exists: " + configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read the config: " + err.Error())
	}

	if err := cfg.Validate(); err != nil {
		panic("invalid config: " + err.Error())
	}

	return &cfg
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	if res == "" {
		res = "config/local.yaml"
	}

	return res
}
