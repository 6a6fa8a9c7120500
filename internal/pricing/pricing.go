// Package pricing converts fiat obligations into native-token payment
// amounts and computes the slippage acceptance band around them.
package pricing

import (
	"errors"
	"math"
	"math/big"
)

// UnitsPerToken is the native token's smallest-unit scale: one whole token is
// 1e9 base units.
const UnitsPerToken = 1_000_000_000

// ErrAmountOverflow indicates a conversion result does not fit in int64. With
// sane prices this is unreachable; treat it as a rejected payment, not a bug.
var ErrAmountOverflow = errors.New("pricing: amount overflows")

var (
	bpsScale = big.NewInt(10_000)
	maxInt64 = big.NewInt(math.MaxInt64)
)

// ExpectedUnits converts a fiat-cent share into the expected payment amount
// in base units at the given price (fiat cents per whole token). The
// multiplication is done in big.Int before dividing, so shareCents *
// UnitsPerToken cannot overflow.
func ExpectedUnits(shareCents, priceCentsPerToken int64) (int64, error) {
	if shareCents <= 0 || priceCentsPerToken <= 0 {
		return 0, ErrAmountOverflow
	}
	units := new(big.Int).Mul(big.NewInt(shareCents), big.NewInt(UnitsPerToken))
	units.Quo(units, big.NewInt(priceCentsPerToken))
	if units.Cmp(maxInt64) > 0 {
		return 0, ErrAmountOverflow
	}
	return units.Int64(), nil
}

// Band computes the closed acceptance interval [lo, hi] around expected:
// lo = expected*(10000-bps)/10000, hi = expected*(10000+bps)/10000. The band
// absorbs price movement between quote fetch and submission.
func Band(expected, bps int64) (lo, hi int64, err error) {
	if expected < 0 || bps < 0 || bps > 10_000 {
		return 0, 0, ErrAmountOverflow
	}
	e := big.NewInt(expected)

	low := new(big.Int).Mul(e, big.NewInt(10_000-bps))
	low.Quo(low, bpsScale)

	high := new(big.Int).Mul(e, big.NewInt(10_000+bps))
	high.Quo(high, bpsScale)

	if high.Cmp(maxInt64) > 0 {
		return 0, 0, ErrAmountOverflow
	}
	return low.Int64(), high.Int64(), nil
}

// WithinBand reports whether amount lies inside the closed interval computed
// by Band. Both boundaries are accepted.
func WithinBand(amount, expected, bps int64) (bool, error) {
	lo, hi, err := Band(expected, bps)
	if err != nil {
		return false, err
	}
	return amount >= lo && amount <= hi, nil
}
