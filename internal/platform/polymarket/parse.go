package polymarket

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/alanyoungcy/polyhedge/internal/domain"
)

// maxQuoteSpread rejects markets whose YES bid/ask spread is wider than
// this; such books are too thin to hedge against.
const maxQuoteSpread = 0.20

var (
	// "$150k", "$100K", "$95.5k"
	strikeThousands = regexp.MustCompile(`\$([0-9]+(?:\.[0-9]+)?)\s*[kK]`)
	// "$100,000", "$70,000"
	strikeFull = regexp.MustCompile(`\$([0-9]{1,3}(?:,?[0-9]{3})+)`)
	// "$1m", "$1.5M"
	strikeMillions = regexp.MustCompile(`\$([0-9]+(?:\.[0-9]+)?)\s*[mM]`)
)

// extractStrike pulls the strike price out of a market question such as
// "Will the price of Bitcoin be above $70,000 on February 15?". Zero means
// no strike was found.
func extractStrike(title string) float64 {
	if m := strikeThousands.FindStringSubmatch(title); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		return v * 1_000
	}
	if m := strikeFull.FindStringSubmatch(title); m != nil {
		v, _ := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		return v
	}
	if m := strikeMillions.FindStringSubmatch(title); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		return v * 1_000_000
	}
	return 0
}

// classifyMarket reads the direction and contract type off the question
// wording. "Above"/"over" and "below"/"under" are fixed-date binaries;
// "hit"/"reach"/"touch" are barrier markets, always upward. False means the
// wording matched neither family.
func classifyMarket(title string) (domain.Direction, domain.BinaryType, bool) {
	lower := strings.ToLower(title)

	if strings.Contains(lower, "above") || strings.Contains(lower, "over") {
		return domain.DirectionAbove, domain.BinaryTypeEuropean, true
	}
	if strings.Contains(lower, "below") || strings.Contains(lower, "under") {
		return domain.DirectionBelow, domain.BinaryTypeEuropean, true
	}
	if strings.Contains(lower, "hit") || strings.Contains(lower, "reach") || strings.Contains(lower, "touch") {
		return domain.DirectionAbove, domain.BinaryTypeBarrier, true
	}
	return "", "", false
}

// isBTCPriceMarket reports whether the question is a Bitcoin price level
// market the analysis can use. All-time-high markets have no fixed strike
// semantics and are excluded.
func isBTCPriceMarket(title string) bool {
	lower := strings.ToLower(title)
	if !strings.Contains(lower, "bitcoin") && !strings.Contains(lower, "btc") {
		return false
	}
	if strings.Contains(lower, "all-time") {
		return false
	}
	if extractStrike(title) == 0 {
		return false
	}
	_, _, ok := classifyMarket(title)
	return ok
}

// parseMarket converts a Gamma event market into a BinaryContract. It
// returns false for markets that are closed, expired, unparsable, or too
// illiquid to hedge. Mid price comes from the quoted bid/ask when both
// sides exist, otherwise from the outcome price array.
func parseMarket(m APIMarket, eventSlug string, now time.Time) (domain.BinaryContract, bool) {
	if m.Closed || !isBTCPriceMarket(m.Question) {
		return domain.BinaryContract{}, false
	}

	endDate := m.EndDateISO
	if endDate == "" {
		endDate = m.EndDate
	}
	expiration, err := time.Parse(time.RFC3339, endDate)
	if err != nil || expiration.Before(now) {
		return domain.BinaryContract{}, false
	}

	strike := extractStrike(m.Question)
	direction, binType, ok := classifyMarket(m.Question)
	if strike == 0 || !ok {
		return domain.BinaryContract{}, false
	}

	prices, err := m.outcomePrices()
	if err != nil || len(prices) < 2 {
		return domain.BinaryContract{}, false
	}
	yesPrice, _ := strconv.ParseFloat(prices[0], 64)
	noPrice, _ := strconv.ParseFloat(prices[1], 64)

	yesBid, yesAsk := m.BestBid, m.BestAsk
	if yesBid == 0 {
		yesBid = yesPrice
	}
	if yesAsk == 0 {
		yesAsk = yesPrice
	}
	if yesBid > 0 && yesAsk > 0 {
		yesPrice = (yesBid + yesAsk) / 2
		noPrice = 1 - yesPrice
	}
	if yesAsk-yesBid > maxQuoteSpread {
		return domain.BinaryContract{}, false
	}

	var yesTokenID, noTokenID string
	if ids, err := m.clobTokenIDs(); err == nil {
		if len(ids) > 0 {
			yesTokenID = ids[0]
		}
		if len(ids) > 1 {
			noTokenID = ids[1]
		}
	}

	return domain.BinaryContract{
		MarketID:    m.ID,
		ConditionID: m.ConditionID,
		Title:       m.Question,
		Strike:      strike,
		Direction:   direction,
		Type:        binType,
		Expiration:  expiration,
		YesPrice:    yesPrice,
		NoPrice:     noPrice,
		YesBid:      yesBid,
		YesAsk:      yesAsk,
		YesTokenID:  yesTokenID,
		NoTokenID:   noTokenID,
		EventSlug:   eventSlug,
	}, true
}

// dateSlugs generates the "bitcoin-above-on-{month}-{day}" event slug for
// each of the next `days` days. Gamma hosts the daily BTC level events
// under exactly this pattern.
func dateSlugs(now time.Time, days int) []string {
	slugs := make([]string, 0, days)
	seen := make(map[string]struct{}, days)
	for d := 0; d < days; d++ {
		date := now.AddDate(0, 0, d)
		slug := "bitcoin-above-on-" + strings.ToLower(date.Month().String()) + "-" + strconv.Itoa(date.Day())
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		slugs = append(slugs, slug)
	}
	return slugs
}
