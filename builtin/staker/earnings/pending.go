// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package earnings

import (
	"math/big"

	"github.com/vechain/stakeledger/builtin/staker/mathutil"
	"github.com/vechain/stakeledger/thor"
)

// ClaimInput is what a claim needs to know about a delegator and its delegate.
type ClaimInput struct {
	Delegate       thor.Address
	BondedAmount   *big.Int
	Fees           *big.Int
	LastClaimRound uint64
	EndRound       uint64
	UpgradeRound   uint64

	// set when the delegator is its own delegate
	IsTranscoder      bool
	CumulativeRewards *big.Int
	CumulativeFees    *big.Int
}

// PendingStakeAndFees returns the bonded amount and fees of a delegator as if it claimed
// through EndRound. It only reads.
func (s *Service) PendingStakeAndFees(in *ClaimInput) (stake *big.Int, fees *big.Int, err error) {
	stake = new(big.Int).Set(in.BondedAmount)
	fees = new(big.Int).Set(in.Fees)
	if in.EndRound <= in.LastClaimRound {
		return stake, fees, nil
	}

	startRound := in.LastClaimRound + 1

	// per-round pools before the upgrade round
	if startRound < in.UpgradeRound {
		legacyEnd := mathutil.Min(in.EndRound, in.UpgradeRound-1)
		for r := startRound; r <= legacyEnd; r++ {
			rec, err := s.Get(in.Delegate, r)
			if err != nil {
				return nil, nil, err
			}
			var rewards *big.Int
			if rec.ClaimableStake.Sign() > 0 {
				fees.Add(fees, mathutil.PercOf(rec.FeePool, stake, rec.ClaimableStake))
				rewards = mathutil.PercOf(rec.RewardPool, stake, rec.ClaimableStake)
			} else {
				rewards = new(big.Int)
			}
			if in.IsTranscoder {
				fees.Add(fees, rec.TranscoderFeePool)
				rewards.Add(rewards, rec.TranscoderRewardPool)
			}
			stake.Add(stake, rewards)
		}
		startRound = legacyEnd + 1
	}

	if startRound <= in.EndRound {
		start, err := s.LatestFactors(in.Delegate, startRound-1)
		if err != nil {
			return nil, nil, err
		}
		end, err := s.LatestFactors(in.Delegate, in.EndRound)
		if err != nil {
			return nil, nil, err
		}
		feeGrowth := new(big.Int).Sub(end.FeeFactor, start.FeeFactor)
		fees.Add(fees, mathutil.PercOf(stake, feeGrowth, start.RewardFactor))
		stake = mathutil.PercOf(stake, end.RewardFactor, start.RewardFactor)
	}

	if in.IsTranscoder {
		if in.CumulativeRewards != nil {
			stake.Add(stake, in.CumulativeRewards)
		}
		if in.CumulativeFees != nil {
			fees.Add(fees, in.CumulativeFees)
		}
	}
	return stake, fees, nil
}
