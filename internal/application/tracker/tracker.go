// Package tracker reduces a cycle's fare observations against the previous baseline.
// Everything here is pure: state goes in, the next state comes out.
package tracker

import (
	"fmt"

	derr "github.com/jimdsouza/swa-dashboard/internal/domain/errors"
	"github.com/jimdsouza/swa-dashboard/internal/domain/models"
)

// LowestFares returns the minimum observation per leg. A leg with no observations is nil,
// and the return leg is always nil for one-way trips.
func LowestFares(quotes models.FareQuotes, oneWay bool) (outbound, ret *int64) {
	outbound = minPrice(quotes.Outbound)
	if !oneWay {
		ret = minPrice(quotes.Return)
	}
	return outbound, ret
}

func minPrice(prices []int64) *int64 {
	if len(prices) == 0 {
		return nil
	}
	lowest := prices[0]
	for _, p := range prices[1:] {
		if p < lowest {
			lowest = p
		}
	}
	return &lowest
}

// ClassifyDelta compares the current lowest fare with the previous one.
func ClassifyDelta(prev, cur *int64) models.Delta {
	if prev == nil || cur == nil {
		return models.Delta{Kind: models.DeltaNone}
	}

	diff := *prev - *cur
	switch {
	case diff > 0:
		return models.Delta{Kind: models.DeltaDown, Amount: diff}
	case diff < 0:
		return models.Delta{Kind: models.DeltaUp, Amount: -diff}
	default:
		return models.Delta{Kind: models.DeltaUnchanged}
	}
}

// EvaluateDeal reports whether the fares hit a configured threshold. One-way trips only
// look at the outbound fare against the individual threshold.
func EvaluateDeal(cfg models.DealConfig, outbound, ret *int64) bool {
	if outbound == nil {
		return false
	}

	if cfg.OneWay {
		return cfg.IndividualThreshold != nil && *outbound <= *cfg.IndividualThreshold
	}

	if ret == nil {
		return false
	}

	if cfg.CombinedThreshold != nil && *outbound+*ret <= *cfg.CombinedThreshold {
		return true
	}

	if cfg.IndividualThreshold != nil {
		return *outbound <= *cfg.IndividualThreshold || *ret <= *cfg.IndividualThreshold
	}

	return false
}

// Evaluate runs one cycle of the tracker. An invalid cycle hands back the input state
// untouched; a valid one replaces both baseline fields together.
func Evaluate(state models.FareState, quotes models.FareQuotes, cfg models.DealConfig) (models.CycleResult, models.FareState) {
	outbound, ret := LowestFares(quotes, cfg.OneWay)

	result := models.CycleResult{
		OneWay:         cfg.OneWay,
		LowestOutbound: outbound,
		LowestReturn:   ret,
	}

	switch {
	case outbound == nil:
		result.InvalidReason = fmt.Errorf("%w: outbound leg", derr.ErrNoFares)
		return result, state
	case !cfg.OneWay && ret == nil:
		result.InvalidReason = fmt.Errorf("%w: return leg", derr.ErrNoFares)
		return result, state
	}

	result.Valid = true
	result.OutboundDelta = ClassifyDelta(state.PrevLowestOutbound, outbound)
	if !cfg.OneWay {
		result.ReturnDelta = ClassifyDelta(state.PrevLowestReturn, ret)
	}
	result.Deal = EvaluateDeal(cfg, outbound, ret)

	return result, models.FareState{
		PrevLowestOutbound: outbound,
		PrevLowestReturn:   ret,
	}
}
