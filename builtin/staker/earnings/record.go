// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package earnings

import (
	"math/big"

	"github.com/vechain/stakeledger/thor"
)

// Record is the earnings state of one candidate in one round.
type Record struct {
	TotalStake *big.Int // stake basis of the round
	RewardCut  uint64   // commission snapshot, PPM
	FeeShare   uint64   // PPM

	CumulativeRewardFactor *big.Int
	CumulativeFeeFactor    *big.Int
	HasFactors             bool // factors initialized for this round
	Rewarded               bool // reward applied for this round
	FeesApplied            bool // fees applied for this round

	// pools of the per-round formula used before the cumulative upgrade round
	RewardPool           *big.Int
	FeePool              *big.Int
	TranscoderRewardPool *big.Int
	TranscoderFeePool    *big.Int
	ClaimableStake       *big.Int
}

func newRecord() *Record {
	return &Record{
		TotalStake:             new(big.Int),
		CumulativeRewardFactor: new(big.Int),
		CumulativeFeeFactor:    new(big.Int),
		RewardPool:             new(big.Int),
		FeePool:                new(big.Int),
		TranscoderRewardPool:   new(big.Int),
		TranscoderFeePool:      new(big.Int),
		ClaimableStake:         new(big.Int),
	}
}

// IsEmpty reports whether nothing was recorded.
func (r *Record) IsEmpty() bool {
	return r.TotalStake.Sign() == 0 &&
		!r.HasFactors &&
		!r.Rewarded &&
		!r.FeesApplied &&
		r.RewardPool.Sign() == 0 &&
		r.FeePool.Sign() == 0 &&
		r.TranscoderRewardPool.Sign() == 0 &&
		r.TranscoderFeePool.Sign() == 0 &&
		r.ClaimableStake.Sign() == 0
}

// Factors is a pair of cumulative factors.
type Factors struct {
	RewardFactor *big.Int
	FeeFactor    *big.Int
}

// InitialFactors are the factors of a candidate that never earned: 1.0 and 0.
func InitialFactors() *Factors {
	return &Factors{
		RewardFactor: new(big.Int).Set(thor.PreciseUnit),
		FeeFactor:    new(big.Int),
	}
}

func recordKey(candidate thor.Address, round uint64) thor.Bytes32 {
	return thor.Blake2b(candidate.Bytes(), thor.Uint64ToBytes32(round).Bytes())
}
