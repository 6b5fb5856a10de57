package contracts

import "errors"

// Validation errors, returned before any work starts
var (
	ErrInvalidDate   = errors.New("invalid target date")
	ErrUnknownTicker = errors.New("unknown ticker")
	ErrInvalidWindow = errors.New("window days must be positive")
)

// ErrNoPriceData fails a single instrument; the batch continues
var ErrNoPriceData = errors.New("no price data")
