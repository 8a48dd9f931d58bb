package memory

import (
	"context"
	"errors"
	"testing"

	derr "github.com/jimdsouza/swa-dashboard/internal/domain/errors"
	"github.com/jimdsouza/swa-dashboard/internal/domain/models"
)

func TestFareStateStore_LoadSave(t *testing.T) {
	store := NewFareStateStore()
	ctx := context.Background()

	if _, err := store.Load(ctx, "k"); !errors.Is(err, derr.ErrStateNotFound) {
		t.Fatalf("unexpected error: got %v want %v", err, derr.ErrStateNotFound)
	}

	outbound, ret := int64(150), int64(90)
	if err := store.Save(ctx, "k", models.FareState{PrevLowestOutbound: &outbound, PrevLowestReturn: &ret}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.Load(ctx, "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *got.PrevLowestOutbound != 150 || *got.PrevLowestReturn != 90 {
		t.Fatalf("unexpected state: %+v", got)
	}
}
