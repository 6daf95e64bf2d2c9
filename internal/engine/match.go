package engine

import (
	"math"
	"sort"
	"time"

	"github.com/alanyoungcy/polyhedge/internal/domain"
)

// MatchMarkets pairs each binary contract with the expiration group of the
// option chain closest to its own expiration. A pairing is rejected when the
// nearest group is more than ExpiryTolerance away (same-day policy; there is
// no best-effort fallback). Within the matched group the candidate set is
// narrowed to strikes within StrikeBand of the binary strike; the single
// nearest call and put are recorded separately, unfiltered, because the
// call's delta serves as a probability proxy downstream.
//
// A binary with no match simply contributes no pair; that is not an error.
func (a *Analyzer) MatchMarkets(binaries []domain.BinaryContract, options []domain.ListedOption) []domain.Pair {
	byExpiry := make(map[string][]domain.ListedOption)
	for _, opt := range options {
		key := opt.Expiration.UTC().Format("2006-01-02")
		byExpiry[key] = append(byExpiry[key], opt)
	}

	// Sorted keys keep nearest-group selection deterministic on ties.
	keys := make([]string, 0, len(byExpiry))
	for k := range byExpiry {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var pairs []domain.Pair
	for _, bin := range binaries {
		bestKey := ""
		bestDiff := time.Duration(math.MaxInt64)
		for _, key := range keys {
			group := byExpiry[key]
			diff := group[0].Expiration.Sub(bin.Expiration)
			if diff < 0 {
				diff = -diff
			}
			if diff < bestDiff {
				bestDiff = diff
				bestKey = key
			}
		}
		if bestKey == "" || bestDiff > a.params.ExpiryTolerance {
			continue
		}

		group := byExpiry[bestKey]
		nearestCall := nearestByStrike(group, domain.OptionCall, bin.Strike)
		nearestPut := nearestByStrike(group, domain.OptionPut, bin.Strike)

		var nearby []domain.ListedOption
		for _, opt := range group {
			if math.Abs(opt.Strike-bin.Strike)/bin.Strike < a.params.StrikeBand {
				nearby = append(nearby, opt)
			}
		}

		pairs = append(pairs, domain.Pair{
			Binary:      bin,
			Options:     nearby,
			NearestCall: nearestCall,
			NearestPut:  nearestPut,
			Expiration:  bin.Expiration,
		})
	}

	return pairs
}

// nearestByStrike returns the option of the given kind with the smallest
// absolute strike distance, or nil when the group has none of that kind.
func nearestByStrike(options []domain.ListedOption, kind domain.OptionKind, strike float64) *domain.ListedOption {
	var best *domain.ListedOption
	bestDiff := math.Inf(1)
	for i := range options {
		if options[i].Kind != kind {
			continue
		}
		diff := math.Abs(options[i].Strike - strike)
		if diff < bestDiff {
			bestDiff = diff
			best = &options[i]
		}
	}
	return best
}
