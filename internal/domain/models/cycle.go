package models

import "time"

type CycleResult struct {
	Provider       string
	Route          string
	At             time.Time
	OneWay         bool
	LowestOutbound *int64
	LowestReturn   *int64
	OutboundDelta  Delta
	ReturnDelta    Delta
	Valid          bool
	Deal           bool
	InvalidReason  error
}

// Total is the combined round-trip fare, nil for one-way or incomplete cycles.
func (r CycleResult) Total() *int64 {
	if r.OneWay || r.LowestOutbound == nil || r.LowestReturn == nil {
		return nil
	}
	total := *r.LowestOutbound + *r.LowestReturn
	return &total
}
