package models

// FareQuotes is one cycle's raw observations in dollars.
type FareQuotes struct {
	Outbound []int64
	Return   []int64
}

func (q FareQuotes) Empty() bool {
	return len(q.Outbound) == 0 && len(q.Return) == 0
}

// FareState is the baseline carried between cycles. Both fields are replaced together.
type FareState struct {
	PrevLowestOutbound *int64 `json:"prev_lowest_outbound,omitempty"`
	PrevLowestReturn   *int64 `json:"prev_lowest_return,omitempty"`
}

func (s FareState) HasBaseline() bool {
	return s.PrevLowestOutbound != nil
}

type DealConfig struct {
	IndividualThreshold *int64
	CombinedThreshold   *int64
	OneWay              bool
}

type DeltaKind uint8

const (
	DeltaNone DeltaKind = iota
	DeltaDown
	DeltaUp
	DeltaUnchanged
)

func (k DeltaKind) String() string {
	switch k {
	case DeltaDown:
		return "down"
	case DeltaUp:
		return "up"
	case DeltaUnchanged:
		return "no_change"
	default:
		return "none"
	}
}

// Delta is the change against the baseline. Amount is always non-negative.
type Delta struct {
	Kind   DeltaKind
	Amount int64
}
