package mappers

import (
	"sort"
	"strings"
	"time"

	"github.com/jimdsouza/swa-dashboard/internal/domain/models"
	"github.com/jimdsouza/swa-dashboard/internal/infrastructures/travelpayouts/dto"
)

// ExtractPrices keeps positive prices departing inside the time-of-day window, sorted
// ascending without duplicates.
func ExtractPrices(data []dto.PriceForDateItem, tod models.TimeOfDay) []int64 {
	prices := make([]int64, 0, len(data))
	for _, item := range data {
		if item.Price <= 0 {
			continue
		}
		if !departsWithin(item, tod) {
			continue
		}
		prices = append(prices, item.Price)
	}

	if len(prices) == 0 {
		return []int64{}
	}

	sort.Slice(prices, func(i, j int) bool { return prices[i] < prices[j] })
	return uniqueSorted(prices)
}

func uniqueSorted(values []int64) []int64 {
	if len(values) == 0 {
		return values
	}
	result := make([]int64, 0, len(values))
	prev := values[0] - 1
	for _, v := range values {
		if v != prev {
			result = append(result, v)
			prev = v
		}
	}
	return result
}

func departsWithin(item dto.PriceForDateItem, tod models.TimeOfDay) bool {
	if tod == models.Anytime {
		return true
	}

	departure, ok := parseTime(item.DepartureAt)
	if !ok {
		return false
	}

	return tod.Contains(departure.Hour())
}

// parseTime keeps the local wall clock of the departure airport; the offset is not applied.
func parseTime(value string) (time.Time, bool) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, false
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
