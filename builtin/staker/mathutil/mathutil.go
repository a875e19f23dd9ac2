// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package mathutil implements the fixed point arithmetic of the ledger.
// Cuts and shares are parts per million (thor.PPM), cumulative factors and precise
// percentages use thor.PreciseUnit. Every division rounds toward zero.
package mathutil

import (
	"math/big"

	"github.com/vechain/stakeledger/thor"
)

var bigPPM = new(big.Int).SetUint64(thor.PPM)

// ValidPerc reports whether a PPM value is at most 100%.
func ValidPerc(amount uint64) bool {
	return amount <= thor.PPM
}

// PercOf returns amount * fracNum / fracDenom. A zero denominator yields zero; callers
// branch on zero stake before reaching it.
func PercOf(amount, fracNum, fracDenom *big.Int) *big.Int {
	if fracDenom.Sign() == 0 {
		return new(big.Int)
	}
	v := new(big.Int).Mul(amount, fracNum)
	return v.Quo(v, fracDenom)
}

// PercOfPPM returns amount * ppm / PPM.
func PercOfPPM(amount *big.Int, ppm uint64) *big.Int {
	return PercOf(amount, new(big.Int).SetUint64(ppm), bigPPM)
}

// PercPoints returns fracNum / fracDenom expressed in PPM.
func PercPoints(fracNum, fracDenom *big.Int) *big.Int {
	return PercOf(bigPPM, fracNum, fracDenom)
}

// PrecisePercPoints returns fracNum / fracDenom expressed in PreciseUnit.
func PrecisePercPoints(fracNum, fracDenom *big.Int) *big.Int {
	return PercOf(thor.PreciseUnit, fracNum, fracDenom)
}

// PrecisePercOf returns amount * perc / PreciseUnit.
func PrecisePercOf(amount, perc *big.Int) *big.Int {
	return PercOf(amount, perc, thor.PreciseUnit)
}

// ValidPrecisePerc reports whether a precise percentage is at most 100%.
func ValidPrecisePerc(perc *big.Int) bool {
	return perc.Sign() >= 0 && perc.Cmp(thor.PreciseUnit) <= 0
}

// Min returns the smaller of a and b.
func Min(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
