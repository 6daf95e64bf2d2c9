package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrNoMatch      = errors.New("no matching expiration")
	ErrNoTrade      = errors.New("no viable sizing")
	ErrEmptyBook    = errors.New("empty order book")
	ErrRateLimited  = errors.New("rate limited")
	ErrWSDisconnect = errors.New("websocket disconnected")
)
