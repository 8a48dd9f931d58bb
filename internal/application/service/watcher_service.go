package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jimdsouza/swa-dashboard/internal/application/tracker"
	derr "github.com/jimdsouza/swa-dashboard/internal/domain/errors"
	"github.com/jimdsouza/swa-dashboard/internal/domain/models"
	"github.com/jimdsouza/swa-dashboard/internal/domain/ports"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type WatcherService struct {
	log          *zap.Logger
	fetcher      ports.FareFetcher
	store        ports.FareStateStore
	recorder     ports.CycleRecorder
	printer      ports.StatusPrinter
	notifiers    []ports.Notifier
	query        models.FareQuery
	deal         models.DealConfig
	fetchTimeout time.Duration
	now          func() time.Time
}

type Option func(*WatcherService)

// WithRecorder keeps a history row for every cycle.
func WithRecorder(recorder ports.CycleRecorder) Option {
	return func(s *WatcherService) {
		s.recorder = recorder
	}
}

func WithNotifiers(notifiers ...ports.Notifier) Option {
	return func(s *WatcherService) {
		for _, n := range notifiers {
			if n != nil {
				s.notifiers = append(s.notifiers, n)
			}
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *WatcherService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewWatcherService(
	log *zap.Logger,
	fetcher ports.FareFetcher,
	store ports.FareStateStore,
	printer ports.StatusPrinter,
	query models.FareQuery,
	deal models.DealConfig,
	fetchTimeout time.Duration,
	opts ...Option,
) *WatcherService {
	if log == nil {
		log = zap.NewNop()
	}

	s := &WatcherService{
		log:          log,
		fetcher:      fetcher,
		store:        store,
		printer:      printer,
		query:        query,
		deal:         deal,
		fetchTimeout: fetchTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// StateKey identifies the baseline of one provider and route.
func (s *WatcherService) StateKey() string {
	return fmt.Sprintf("%s:%s", s.fetcher.Name(), s.query.Route())
}

// RunCycle performs one fetch and evaluation. The returned error is the reason the cycle
// was invalid and is meant for retry scheduling only.
func (s *WatcherService) RunCycle(ctx context.Context) (models.CycleResult, error) {
	const op = "service.RunCycle"
	tracer := otel.Tracer("swa-dashboard/service")
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	key := s.StateKey()
	span.SetAttributes(
		attribute.String("fares.provider", s.fetcher.Name()),
		attribute.String("fares.route", s.query.Route()),
		attribute.Bool("fares.one_way", s.query.OneWay),
	)

	logger := s.log.With(
		zap.String("op", op),
		zap.String("provider", s.fetcher.Name()),
		zap.String("route", s.query.Route()),
	)

	state := s.loadState(ctx, logger, key)

	quotes, fetchErr := s.fetch(ctx)
	if fetchErr != nil {
		logger.Warn("fare fetch failed", zap.Error(fetchErr))
		span.AddEvent(
			"fares.fetch_error",
			trace.WithAttributes(attribute.Bool("fares.timeout", errors.Is(fetchErr, derr.ErrFetchTimeout))),
		)
		span.RecordError(fetchErr)
		quotes = models.FareQuotes{}
	}
	if fetchErr == nil && quotes.Empty() {
		logger.Warn("provider returned no fares")
	}
	span.SetAttributes(
		attribute.Bool("fares.has_baseline", state.HasBaseline()),
		attribute.Int("fares.outbound_count", len(quotes.Outbound)),
		attribute.Int("fares.return_count", len(quotes.Return)),
	)

	result, next := tracker.Evaluate(state, quotes, s.deal)
	result.Provider = s.fetcher.Name()
	result.Route = s.query.Route()
	result.At = s.now()
	if !result.Valid && fetchErr != nil {
		result.InvalidReason = fmt.Errorf("%w: %w", result.InvalidReason, fetchErr)
	}

	if result.Valid {
		if err := s.store.Save(ctx, key, next); err != nil {
			logger.Warn("failed to save fare state", zap.Error(err))
			span.RecordError(err)
		}
	}

	if s.recorder != nil {
		if err := s.recorder.Record(ctx, result); err != nil {
			logger.Warn("failed to record cycle", zap.Error(err))
			span.RecordError(err)
		}
	}

	if !result.Valid {
		s.printStatus(result)
		logger.Info("cycle invalid, baseline kept", zap.Error(result.InvalidReason))
		span.SetStatus(otelcodes.Error, "no fares")
		return result, result.InvalidReason
	}

	if result.Deal {
		span.AddEvent("fares.deal", trace.WithAttributes(attribute.Int64("fares.lowest_outbound", *result.LowestOutbound)))
		s.alert(ctx, logger, tracker.DealMessage(result))
	}
	s.printStatus(result)

	logger.Info("cycle completed",
		zap.Int64p("lowest_outbound", result.LowestOutbound),
		zap.Int64p("lowest_return", result.LowestReturn),
		zap.String("outbound_delta", result.OutboundDelta.Kind.String()),
		zap.String("return_delta", result.ReturnDelta.Kind.String()),
		zap.Bool("deal", result.Deal),
	)
	span.SetAttributes(attribute.Bool("fares.deal", result.Deal))
	span.SetStatus(otelcodes.Ok, "ok")
	return result, nil
}

func (s *WatcherService) loadState(ctx context.Context, logger *zap.Logger, key string) models.FareState {
	state, err := s.store.Load(ctx, key)
	switch {
	case err == nil:
		return state
	case errors.Is(err, derr.ErrStateNotFound):
		logger.Debug("no fare baseline yet")
	default:
		logger.Warn("failed to load fare state", zap.Error(err))
	}
	return models.FareState{}
}

func (s *WatcherService) fetch(ctx context.Context) (models.FareQuotes, error) {
	fetchCtx := ctx
	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}

	quotes, err := s.fetcher.FetchFares(fetchCtx, s.query)
	if err == nil {
		return quotes, nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(fetchCtx.Err(), context.DeadlineExceeded) {
		return models.FareQuotes{}, fmt.Errorf("%w: %w", derr.ErrFetchTimeout, err)
	}
	return models.FareQuotes{}, fmt.Errorf("fetch %s: %w", s.fetcher.Name(), err)
}

func (s *WatcherService) printStatus(result models.CycleResult) {
	if s.printer != nil {
		s.printer.PrintStatus(result)
	}
}

// alert prints the deal line ahead of the status lines and fans out to every notifier.
func (s *WatcherService) alert(ctx context.Context, logger *zap.Logger, message string) {
	if message == "" {
		return
	}
	if s.printer != nil {
		s.printer.PrintDeal(message)
	}
	for _, n := range s.notifiers {
		if err := n.Notify(ctx, message); err != nil {
			logger.Warn("deal notification failed", zap.Error(err))
		}
	}
}
