package models

import (
	"fmt"
	"strings"
	"time"
)

type Leg uint8

const (
	LegUnspecified Leg = iota
	LegOutbound
	LegReturn
)

func (l Leg) String() string {
	switch l {
	case LegOutbound:
		return "outbound"
	case LegReturn:
		return "return"
	default:
		return "unspecified"
	}
}

type TimeOfDay uint8

const (
	Anytime TimeOfDay = iota
	Morning
	Afternoon
	Evening
)

func ParseTimeOfDay(value string) (TimeOfDay, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "anytime":
		return Anytime, nil
	case "morning":
		return Morning, nil
	case "afternoon":
		return Afternoon, nil
	case "evening":
		return Evening, nil
	default:
		return Anytime, fmt.Errorf("unsupported time of day %q", value)
	}
}

func (t TimeOfDay) String() string {
	switch t {
	case Morning:
		return "morning"
	case Afternoon:
		return "afternoon"
	case Evening:
		return "evening"
	default:
		return "anytime"
	}
}

// SouthwestCode is the value the Southwest booking form expects.
func (t TimeOfDay) SouthwestCode() string {
	switch t {
	case Morning:
		return "BEFORE_NOON"
	case Afternoon:
		return "NOON_TO_6PM"
	case Evening:
		return "AFTER_6PM"
	default:
		return "ANYTIME"
	}
}

// Hours returns the departure hour window [from, to).
func (t TimeOfDay) Hours() (from, to int) {
	switch t {
	case Morning:
		return 0, 12
	case Afternoon:
		return 12, 18
	case Evening:
		return 18, 24
	default:
		return 0, 24
	}
}

func (t TimeOfDay) Contains(hour int) bool {
	from, to := t.Hours()
	return hour >= from && hour < to
}

type FareQuery struct {
	Origin            string
	Destination       string
	OutboundDate      time.Time
	ReturnDate        time.Time
	OutboundTimeOfDay TimeOfDay
	ReturnTimeOfDay   TimeOfDay
	Passengers        int
	OneWay            bool
}

func (q FareQuery) Route() string {
	return fmt.Sprintf("%s-%s", q.Origin, q.Destination)
}

// LegSearch is a single one-way search for one leg of the trip.
type LegSearch struct {
	Leg         Leg
	Origin      string
	Destination string
	Date        time.Time
	TimeOfDay   TimeOfDay
}

// Legs lists the one-way searches for the trip, the return leg reversing the route.
func (q FareQuery) Legs() []LegSearch {
	legs := []LegSearch{{
		Leg:         LegOutbound,
		Origin:      q.Origin,
		Destination: q.Destination,
		Date:        q.OutboundDate,
		TimeOfDay:   q.OutboundTimeOfDay,
	}}
	if q.OneWay {
		return legs
	}
	return append(legs, LegSearch{
		Leg:         LegReturn,
		Origin:      q.Destination,
		Destination: q.Origin,
		Date:        q.ReturnDate,
		TimeOfDay:   q.ReturnTimeOfDay,
	})
}
