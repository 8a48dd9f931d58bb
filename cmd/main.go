package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jimdsouza/swa-dashboard/grpcapp"
	"github.com/jimdsouza/swa-dashboard/internal/application/scheduler"
	"github.com/jimdsouza/swa-dashboard/internal/application/service"
	"github.com/jimdsouza/swa-dashboard/internal/config"
	derr "github.com/jimdsouza/swa-dashboard/internal/domain/errors"
	"github.com/jimdsouza/swa-dashboard/internal/domain/ports"
	"github.com/jimdsouza/swa-dashboard/internal/infrastructures/db/memory"
	cyclerepo "github.com/jimdsouza/swa-dashboard/internal/infrastructures/db/postgres/repo"
	stateredis "github.com/jimdsouza/swa-dashboard/internal/infrastructures/db/redis"
	watchtracing "github.com/jimdsouza/swa-dashboard/internal/infrastructures/db/tracing"
	"github.com/jimdsouza/swa-dashboard/internal/infrastructures/kayak"
	"github.com/jimdsouza/swa-dashboard/internal/infrastructures/notify/console"
	"github.com/jimdsouza/swa-dashboard/internal/infrastructures/notify/twilio"
	"github.com/jimdsouza/swa-dashboard/internal/infrastructures/scrape"
	"github.com/jimdsouza/swa-dashboard/internal/infrastructures/southwest"
	tpclient "github.com/jimdsouza/swa-dashboard/internal/infrastructures/travelpayouts/http/client"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	_ = godotenv.Load(".env")

	cfg := config.MustLoad()
	log := setupLogger(cfg.Log.Level)
	defer func() {
		_ = log.Sync()
	}()

	tp, err := watchtracing.InitTracer("swa-dashboard", cfg.Jaeger)
	if err != nil {
		log.Fatal("failed to init tracer", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn("failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	query, err := cfg.Query()
	if err != nil {
		log.Fatal("invalid watch query", zap.Error(err))
	}

	fetcher, err := buildFetcher(log, cfg)
	if err != nil {
		log.Fatal("failed to build fare provider", zap.Error(err), zap.String("provider", cfg.Watch.Provider))
	}

	log.Info("swa-dashboard starting",
		zap.String("provider", fetcher.Name()),
		zap.String("route", query.Route()),
		zap.Bool("one_way", query.OneWay),
		zap.Duration("interval", cfg.Watch.Interval),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store ports.FareStateStore = memory.NewFareStateStore()
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Warn("failed to close redis client", zap.Error(err))
			}
		}()
		store = stateredis.NewFareStateStore(redisClient)
	}

	printer := console.NewPrinter(os.Stdout, true)
	opts := []service.Option{}

	if cfg.DB.Enabled() {
		repo, err := cyclerepo.New(ctx, cfg.DB.DatabaseURL())
		if err != nil {
			log.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer repo.Close()
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatal("failed to prepare postgres schema", zap.Error(err))
		}
		opts = append(opts, service.WithRecorder(repo))

		if recent, err := repo.Recent(ctx, query.Route(), 1); err != nil {
			log.Warn("failed to read fare history", zap.Error(err))
		} else if len(recent) > 0 {
			log.Info("last recorded cycle",
				zap.String("provider", recent[0].Provider),
				zap.Time("observed_at", recent[0].ObservedAt),
				zap.Bool("valid", recent[0].Valid),
				zap.Int64p("lowest_outbound", recent[0].LowestOutbound),
				zap.Int64p("lowest_return", recent[0].LowestReturn),
			)
		}
	}

	if cfg.Twilio.Configured() {
		sms := twilio.NewClient(log, cfg.Twilio.BaseURL, cfg.Twilio.Timeout, twilio.Credentials{
			AccountSID: cfg.Twilio.AccountSID,
			AuthToken:  cfg.Twilio.AuthToken,
			PhoneFrom:  cfg.Twilio.PhoneFrom,
			PhoneTo:    cfg.Twilio.PhoneTo,
		}, printer)
		opts = append(opts, service.WithNotifiers(sms))
	} else {
		log.Info("twilio not configured, deal alerts go to the console only")
	}

	watcher := service.NewWatcherService(log, fetcher, store, printer, query, cfg.DealConfig(), cfg.Watch.FetchTimeout, opts...)

	var schedOpts []scheduler.Option
	errCh := make(chan error, 2)

	var app *grpcapp.GrpcApp
	if cfg.GRPC.Port > 0 {
		app = grpcapp.New(log, cfg.GRPC.Host, cfg.GRPC.Port)
		health := grpcapp.NewHealthTracker(log, app, cfg.GRPC.UnhealthyAfter)
		schedOpts = append(schedOpts, scheduler.WithCycleHook(health.Observe))
		go func() {
			errCh <- app.Run()
		}()
	}

	sched := scheduler.New(log, watcher, cfg.Watch.Interval, cfg.Watch.RetryInitial, schedOpts...)
	go func() {
		errCh <- sched.Run(ctx)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error("watcher stopped", zap.Error(err))
		}
		stop()
	}

	if app != nil {
		app.Stop()
	}
}

func buildFetcher(log *zap.Logger, cfg *config.Config) (ports.FareFetcher, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Watch.Provider)) {
	case southwest.Name:
		httpClient, err := scrape.NewHTTPClient(cfg.Southwest.BaseURL, cfg.Southwest.Timeout)
		if err != nil {
			return nil, err
		}
		return southwest.NewClient(log, httpClient), nil
	case kayak.Name:
		httpClient, err := scrape.NewHTTPClient(cfg.Kayak.BaseURL, cfg.Kayak.Timeout)
		if err != nil {
			return nil, err
		}
		return kayak.NewClient(log, httpClient), nil
	case tpclient.Name:
		if cfg.Travelpayouts.Token == "" {
			return nil, errors.New("travelpayouts token is required")
		}
		return tpclient.NewClient(
			cfg.Travelpayouts.BaseURL,
			cfg.Travelpayouts.Token,
			cfg.Travelpayouts.Currency,
			cfg.Travelpayouts.Limit,
			cfg.Travelpayouts.Timeout,
		), nil
	default:
		return nil, fmt.Errorf("%w: %q", derr.ErrUnknownProvider, cfg.Watch.Provider)
	}
}

func setupLogger(level string) *zap.Logger {
	zapLevel := parseLogLevel(level)
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	log, err := cfg.Build()
	if err != nil {
		panic(err)
	}

	return log
}

func parseLogLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
