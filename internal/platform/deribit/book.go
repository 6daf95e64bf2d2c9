package deribit

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/alanyoungcy/polyhedge/internal/domain"
)

// bookDepth is how many levels per side to request; deep enough for any
// quantity the sizing produces.
const bookDepth = 50

// BookVWAP walks the instrument's book to fill quantity contracts and
// returns the volume-weighted average price in USD, converted at the
// book's own index price. The underlying book is BTC-denominated. It
// satisfies the analysis engine's BookSource for the option venue.
func (c *Client) BookVWAP(ctx context.Context, instrumentName string, quantity float64, side domain.BookSide) (domain.VWAPResult, error) {
	if instrumentName == "" || quantity <= 0 {
		return domain.VWAPResult{}, nil
	}

	levels, indexPrice, err := c.fetchBookLevels(ctx, instrumentName, side)
	if err != nil {
		return domain.VWAPResult{}, fmt.Errorf("deribit: book %s: %w", instrumentName, err)
	}

	res := domain.WalkDepth(levels, quantity)
	return toUSD(res, indexPrice), nil
}

// MaxFillAtSlippage returns the largest quantity fillable while the
// marginal BTC price stays within maxSlippagePct of midPriceBTC, with the
// cost converted to USD.
func (c *Client) MaxFillAtSlippage(ctx context.Context, instrumentName string, midPriceBTC, maxSlippagePct float64, side domain.BookSide) (domain.VWAPResult, error) {
	if instrumentName == "" || midPriceBTC <= 0 {
		return domain.VWAPResult{}, nil
	}

	priceLimit := midPriceBTC * (1 + maxSlippagePct)
	if side == domain.BookSell {
		priceLimit = midPriceBTC * (1 - maxSlippagePct)
	}

	levels, indexPrice, err := c.fetchBookLevels(ctx, instrumentName, side)
	if err != nil {
		return domain.VWAPResult{}, fmt.Errorf("deribit: book %s: %w", instrumentName, err)
	}

	res := domain.WalkDepthAtLimit(levels, priceLimit, side)
	return toUSD(res, indexPrice), nil
}

func (c *Client) fetchBookLevels(ctx context.Context, instrumentName string, side domain.BookSide) ([]domain.PriceLevel, float64, error) {
	params := url.Values{}
	params.Set("instrument_name", instrumentName)
	params.Set("depth", strconv.Itoa(bookDepth))

	var book APIOrderBook
	if err := c.get(ctx, "/public/get_order_book", params, &book); err != nil {
		return nil, 0, err
	}

	indexPrice := book.IndexPrice
	if indexPrice == 0 {
		indexPrice = book.UnderlyingPrice
	}

	raw := book.Asks
	if side == domain.BookSell {
		raw = book.Bids
	}

	levels := make([]domain.PriceLevel, 0, len(raw))
	for _, lvl := range raw {
		levels = append(levels, domain.PriceLevel{Price: lvl[0], Size: lvl[1]})
	}
	return levels, indexPrice, nil
}

// toUSD converts a BTC-denominated walk result at the given index price.
// The fill quantity is already in contracts and stays as-is.
func toUSD(res domain.VWAPResult, indexPrice float64) domain.VWAPResult {
	return domain.VWAPResult{
		VWAP:      res.VWAP * indexPrice,
		Filled:    res.Filled,
		TotalCost: res.TotalCost * indexPrice,
	}
}
