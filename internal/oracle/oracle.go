// Package oracle consumes price feeds and normalizes their quotes into an
// integer fiat-cents-per-token rate.
//
// A quote is trusted only after the checks here pass: the reported timestamp
// must be within the freshness window and the mantissa must be positive.
// Nothing else about the feed is verified - this is the oracle trust boundary.
package oracle

import (
	"context"
	"errors"
	"math"
	"math/big"
	"time"
)

var (
	// ErrStalePrice indicates the quote's reported timestamp is older than
	// the freshness window. Callers should fetch a fresh quote, never
	// retry with the same one.
	ErrStalePrice = errors.New("oracle: stale price")

	// ErrInvalidPrice indicates a non-positive or unrepresentable quote.
	ErrInvalidPrice = errors.New("oracle: invalid price")
)

// Quote is a raw oracle observation: price = Mantissa * 10^Exponent in fiat
// units per whole token. Exponent is usually negative.
type Quote struct {
	Mantissa   int64
	Exponent   int32
	ObservedAt time.Time
}

// PriceOracle resolves the current quote for a feed identifier.
type PriceOracle interface {
	GetQuote(ctx context.Context, feed string) (Quote, error)
}

var (
	bigTen     = big.NewInt(10)
	bigHundred = big.NewInt(100)
	maxInt64   = big.NewInt(math.MaxInt64)
)

// Normalize converts a quote into integer fiat cents per whole token,
// rejecting stale or non-positive quotes. The freshness check trusts the
// quote's own timestamp. Intermediates are big.Int so mantissa*100 cannot
// overflow before the exponent division.
func Normalize(q Quote, now time.Time, maxAge time.Duration) (int64, error) {
	if q.Mantissa <= 0 {
		return 0, ErrInvalidPrice
	}
	if now.Sub(q.ObservedAt) > maxAge {
		return 0, ErrStalePrice
	}

	cents := new(big.Int).Mul(big.NewInt(q.Mantissa), bigHundred)
	if q.Exponent >= 0 {
		scale := new(big.Int).Exp(bigTen, big.NewInt(int64(q.Exponent)), nil)
		cents.Mul(cents, scale)
	} else {
		scale := new(big.Int).Exp(bigTen, big.NewInt(int64(-q.Exponent)), nil)
		cents.Quo(cents, scale)
	}

	if cents.Sign() <= 0 {
		// The exponent drove the price below one cent.
		return 0, ErrInvalidPrice
	}
	if cents.Cmp(maxInt64) > 0 {
		return 0, ErrInvalidPrice
	}
	return cents.Int64(), nil
}
