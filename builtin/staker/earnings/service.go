// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package earnings

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/builtin/solidity"
	"github.com/vechain/stakeledger/builtin/staker/mathutil"
	"github.com/vechain/stakeledger/thor"
)

var (
	slotRecords      = thor.BytesToBytes32([]byte("earnings-records"))
	slotFactorRounds = thor.BytesToBytes32([]byte("earnings-factor-rounds"))
)

// Service keeps per candidate, per round earnings records. Rounds holding factors are indexed
// so the latest factors at or before any round are found without carrying records forward.
type Service struct {
	records      *solidity.Mapping[thor.Bytes32, *Record]
	factorRounds *solidity.SortedRounds
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		records:      solidity.NewMapping[thor.Bytes32, *Record](sctx, slotRecords),
		factorRounds: solidity.NewSortedRounds(sctx, slotFactorRounds),
	}
}

// Get returns the record of candidate in round, an empty one if nothing was recorded.
func (s *Service) Get(candidate thor.Address, round uint64) (*Record, error) {
	rec, err := s.records.Get(recordKey(candidate, round))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get earnings record")
	}
	if rec == nil {
		return newRecord(), nil
	}
	return rec, nil
}

func (s *Service) set(candidate thor.Address, round uint64, rec *Record) error {
	if err := s.records.Set(recordKey(candidate, round), rec); err != nil {
		return errors.Wrap(err, "failed to set earnings record")
	}
	return nil
}

// SetStake sets the stake basis of candidate for round.
func (s *Service) SetStake(candidate thor.Address, round uint64, stake *big.Int) error {
	rec, err := s.Get(candidate, round)
	if err != nil {
		return err
	}
	rec.TotalStake = new(big.Int).Set(stake)
	return s.set(candidate, round, rec)
}

// SetCommission snapshots the cuts of candidate for round.
func (s *Service) SetCommission(candidate thor.Address, round uint64, rewardCut, feeShare uint64) error {
	rec, err := s.Get(candidate, round)
	if err != nil {
		return err
	}
	rec.RewardCut = rewardCut
	rec.FeeShare = feeShare
	return s.set(candidate, round, rec)
}

// LatestFactors returns the factors of the latest round at or before round that holds factors.
func (s *Service) LatestFactors(candidate thor.Address, round uint64) (*Factors, error) {
	found, ok, err := s.factorRounds.Floor(candidate, round)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search factor rounds")
	}
	if !ok {
		return InitialFactors(), nil
	}
	rec, err := s.Get(candidate, found)
	if err != nil {
		return nil, err
	}
	return &Factors{
		RewardFactor: new(big.Int).Set(rec.CumulativeRewardFactor),
		FeeFactor:    new(big.Int).Set(rec.CumulativeFeeFactor),
	}, nil
}

// prevFactors returns the latest factors strictly before round.
func (s *Service) prevFactors(candidate thor.Address, round uint64) (*Factors, error) {
	if round == 0 {
		return InitialFactors(), nil
	}
	return s.LatestFactors(candidate, round-1)
}

// initFactors carries the previous factors into rec the first time the round earns.
func (s *Service) initFactors(candidate thor.Address, round uint64, rec *Record) (*Factors, error) {
	prev, err := s.prevFactors(candidate, round)
	if err != nil {
		return nil, err
	}
	if rec.HasFactors {
		return prev, nil
	}
	if err := s.factorRounds.Push(candidate, round); err != nil {
		return nil, errors.Wrap(err, "failed to index factor round")
	}
	rec.CumulativeRewardFactor = new(big.Int).Set(prev.RewardFactor)
	rec.CumulativeFeeFactor = new(big.Int).Set(prev.FeeFactor)
	rec.HasFactors = true
	return prev, nil
}

// RewardSplit describes how a reward was attributed.
type RewardSplit struct {
	Commission        *big.Int // the candidate's cut
	DelegatorsRewards *big.Int // distributed pro rata to stake
	TranscoderShare   *big.Int // to add to the candidate's cumulative rewards
	Skipped           bool     // the round was already rewarded
}

// ApplyReward attributes rewards earned by candidate in round. activeCumulativeRewards is the
// unclaimed cut of the candidate that is part of the round stake but owned by no delegator.
// A second call for the same round is a no-op.
func (s *Service) ApplyReward(
	candidate thor.Address,
	round uint64,
	rewards *big.Int,
	activeCumulativeRewards *big.Int,
	formula Formula,
) (*RewardSplit, error) {
	rec, err := s.Get(candidate, round)
	if err != nil {
		return nil, err
	}
	if rec.Rewarded {
		return &RewardSplit{
			Commission:        new(big.Int),
			DelegatorsRewards: new(big.Int),
			TranscoderShare:   new(big.Int),
			Skipped:           true,
		}, nil
	}

	commission := mathutil.PercOfPPM(rewards, rec.RewardCut)
	split := &RewardSplit{
		Commission:        commission,
		DelegatorsRewards: new(big.Int).Sub(rewards, commission),
		TranscoderShare:   new(big.Int),
	}
	totalStake := rec.TotalStake

	switch formula {
	case Legacy:
		if rec.ClaimableStake.Sign() == 0 {
			rec.ClaimableStake = new(big.Int).Set(totalStake)
		}
		if totalStake.Sign() == 0 {
			rec.TranscoderRewardPool.Add(rec.TranscoderRewardPool, rewards)
		} else {
			rec.TranscoderRewardPool.Add(rec.TranscoderRewardPool, commission)
			rec.RewardPool.Add(rec.RewardPool, split.DelegatorsRewards)
		}
	case Cumulative:
		prev, err := s.initFactors(candidate, round, rec)
		if err != nil {
			return nil, err
		}
		if totalStake.Sign() == 0 {
			// nobody to distribute to, the candidate keeps it all and the factor carries over
			split.TranscoderShare.Set(rewards)
		} else {
			stakeRewards := mathutil.PercOf(split.DelegatorsRewards, activeCumulativeRewards, totalStake)
			split.TranscoderShare.Add(commission, stakeRewards)

			growth := mathutil.PercOf(prev.RewardFactor, split.DelegatorsRewards, totalStake)
			rec.CumulativeRewardFactor = new(big.Int).Add(prev.RewardFactor, growth)
		}
	}

	rec.Rewarded = true
	if err := s.set(candidate, round, rec); err != nil {
		return nil, err
	}
	return split, nil
}

// FeeSplit describes how fees were attributed.
type FeeSplit struct {
	Commission      *big.Int
	DelegatorsFees  *big.Int
	TranscoderShare *big.Int // to add to the candidate's cumulative fees
	Skipped         bool     // fees were already applied for the round
}

// ApplyFees attributes fees earned by candidate in round. Fees are applied once per round,
// a second call for the same round is a no-op.
func (s *Service) ApplyFees(
	candidate thor.Address,
	round uint64,
	fees *big.Int,
	activeCumulativeRewards *big.Int,
	formula Formula,
) (*FeeSplit, error) {
	rec, err := s.Get(candidate, round)
	if err != nil {
		return nil, err
	}
	if rec.FeesApplied {
		return &FeeSplit{
			Commission:      new(big.Int),
			DelegatorsFees:  new(big.Int),
			TranscoderShare: new(big.Int),
			Skipped:         true,
		}, nil
	}

	commission := mathutil.PercOfPPM(fees, thor.PPM-rec.FeeShare)
	split := &FeeSplit{
		Commission:      commission,
		DelegatorsFees:  new(big.Int).Sub(fees, commission),
		TranscoderShare: new(big.Int),
	}
	totalStake := rec.TotalStake

	switch formula {
	case Legacy:
		if rec.ClaimableStake.Sign() == 0 {
			rec.ClaimableStake = new(big.Int).Set(totalStake)
		}
		if totalStake.Sign() == 0 {
			rec.TranscoderFeePool.Add(rec.TranscoderFeePool, fees)
		} else {
			rec.TranscoderFeePool.Add(rec.TranscoderFeePool, commission)
			rec.FeePool.Add(rec.FeePool, split.DelegatorsFees)
		}
	case Cumulative:
		prev, err := s.initFactors(candidate, round, rec)
		if err != nil {
			return nil, err
		}
		if totalStake.Sign() == 0 {
			split.TranscoderShare.Set(fees)
		} else {
			stakeFees := mathutil.PercOf(split.DelegatorsFees, activeCumulativeRewards, totalStake)
			split.TranscoderShare.Add(commission, stakeFees)

			// fees per unit of stake, rebased onto the reward grown value of one original unit
			growth := mathutil.PercOf(prev.RewardFactor, split.DelegatorsFees, totalStake)
			rec.CumulativeFeeFactor = new(big.Int).Add(prev.FeeFactor, growth)
		}
	}

	rec.FeesApplied = true
	if err := s.set(candidate, round, rec); err != nil {
		return nil, err
	}
	return split, nil
}
