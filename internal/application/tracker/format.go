package tracker

import (
	"fmt"

	"github.com/jimdsouza/swa-dashboard/internal/domain/models"
)

func FormatPrice(price int64) string {
	return fmt.Sprintf("$%d", price)
}

// DealMessage is the alert text for a deal cycle. It is empty when the cycle is not a deal.
func DealMessage(result models.CycleResult) string {
	if !result.Valid || !result.Deal || result.LowestOutbound == nil {
		return ""
	}

	total := result.Total()
	if total == nil {
		return fmt.Sprintf("Deal alert! Outbound fare has hit %s.", FormatPrice(*result.LowestOutbound))
	}

	return fmt.Sprintf(
		"Deal alert! Combined total has hit %s. Individual fares are %s (outbound) and %s (return).",
		FormatPrice(*total),
		FormatPrice(*result.LowestOutbound),
		FormatPrice(*result.LowestReturn),
	)
}
