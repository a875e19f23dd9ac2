// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"math"
	"math/big"
)

// Numeric bases of the ledger.
const (
	// PPM is the base of reward cuts and fee shares. 1_000_000 == 100%.
	PPM uint64 = 1_000_000

	// MaxFutureRound marks a candidate that has no scheduled deactivation.
	MaxFutureRound uint64 = math.MaxUint64
)

// PreciseUnit is the fixed point 1.0 of cumulative factors and precise percentages (1e27).
var PreciseUnit = new(big.Int).Exp(big.NewInt(10), big.NewInt(27), nil)

// Keys of governance params.
var (
	KeyUnbondingPeriod        = BytesToBytes32([]byte("unbonding-period"))
	KeyNumActiveTranscoders   = BytesToBytes32([]byte("num-active-transcoders"))
	KeyTreasuryRewardCutRate  = BytesToBytes32([]byte("treasury-reward-cut-rate"))
	KeyTreasuryBalanceCeiling = BytesToBytes32([]byte("treasury-balance-ceiling"))
	KeyCumulativeUpgradeRound = BytesToBytes32([]byte("cumulative-upgrade-round"))
	KeyInflation              = BytesToBytes32([]byte("inflation"))
	KeyRoundLength            = BytesToBytes32([]byte("round-length"))
	KeyRoundLockAmount        = BytesToBytes32([]byte("round-lock-amount"))
)

// Initial values of governance params.
const (
	InitialUnbondingPeriod      uint64 = 7
	InitialNumActiveTranscoders uint64 = 100
	InitialRoundLength          uint64 = 5760
	InitialRoundLockAmount      uint64 = 100_000 // PPM of the round length during which params are locked
	InitialInflation            uint64 = 137     // PPM of the total supply minted per round
)
