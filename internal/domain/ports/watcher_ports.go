package ports

import (
	"context"

	"github.com/jimdsouza/swa-dashboard/internal/domain/models"
)

type FareFetcher interface {
	Name() string
	FetchFares(ctx context.Context, query models.FareQuery) (models.FareQuotes, error)
}

type FareStateStore interface {
	Load(ctx context.Context, key string) (models.FareState, error)
	Save(ctx context.Context, key string, state models.FareState) error
}

type CycleRecorder interface {
	Record(ctx context.Context, result models.CycleResult) error
}

type StatusPrinter interface {
	PrintStatus(result models.CycleResult)
	PrintDeal(message string)
}

type Notifier interface {
	Notify(ctx context.Context, message string) error
}
