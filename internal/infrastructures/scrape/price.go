package scrape

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	derr "github.com/jimdsouza/swa-dashboard/internal/domain/errors"
	"go.uber.org/zap"
)

var priceRegex = regexp.MustCompile(`\$\D*?(\d[\d,]*)`)

// ParsePrice extracts the first dollar amount from price markup text.
func ParsePrice(text string) (int64, error) {
	groups := priceRegex.FindStringSubmatch(text)
	if len(groups) < 2 {
		return 0, fmt.Errorf("%w: %q", derr.ErrPriceNotFound, strings.TrimSpace(text))
	}

	value, err := strconv.ParseInt(strings.ReplaceAll(groups[1], ",", ""), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", derr.ErrPriceNotFound, err)
	}

	return value, nil
}

// CollectPrices parses every element matched by selector. Elements without an amount are skipped.
func CollectPrices(log *zap.Logger, doc *goquery.Document, selector string) []int64 {
	prices := []int64{}
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		price, err := ParsePrice(s.Text())
		if err != nil {
			log.Debug("skipping price markup", zap.String("selector", selector), zap.Error(err))
			return
		}
		if price <= 0 {
			return
		}
		prices = append(prices, price)
	})
	return prices
}
