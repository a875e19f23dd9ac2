// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/vechain/stakeledger/builtin/staker/candidate"
	"github.com/vechain/stakeledger/builtin/staker/delegation"
	"github.com/vechain/stakeledger/builtin/staker/mathutil"
	"github.com/vechain/stakeledger/builtin/staker/reverts"
	"github.com/vechain/stakeledger/thor"
)

var tokenUnit = big.NewInt(1e18)

func bigUint(v uint64) *big.Int {
	return new(big.Int).SetUint64(v)
}

// Reward mints the reward of an active transcoder for the current round and distributes it.
func (s *Staker) Reward(sender thor.Address) error {
	return s.RewardWithHint(sender, Hints{})
}

func (s *Staker) RewardWithHint(sender thor.Address, hints Hints) error {
	logger.Debug("reward", "transcoder", sender)

	return s.atomic("reward", func() error {
		cur, err := s.initializedRound()
		if err != nil {
			return err
		}
		cand, err := s.candidates.Get(sender)
		if err != nil {
			return err
		}
		if !cand.IsActive(cur) {
			return reverts.New("caller must be an active transcoder")
		}
		if cand.LastRewardRound == cur {
			return reverts.New("caller has already called reward for the current round")
		}

		if err := s.snapshotCommission(sender, cand, cur); err != nil {
			return err
		}
		rec, err := s.earnings.Get(sender, cur)
		if err != nil {
			return err
		}
		totalActive, err := s.stats.CurrentRoundTotalActiveStake()
		if err != nil {
			return err
		}
		rewards, err := s.minter.CreateReward(rec.TotalStake, totalActive)
		if err != nil {
			return err
		}
		treasuryRewards, err := s.payTreasury(sender, rewards)
		if err != nil {
			return err
		}
		transcoderRewards := new(big.Int).Sub(rewards, treasuryRewards)

		formula, err := s.formula(cur)
		if err != nil {
			return err
		}
		cand.ActiveCumulativeRewards = new(big.Int).Set(cand.CumulativeRewards)
		split, err := s.earnings.ApplyReward(sender, cur, transcoderRewards, cand.ActiveCumulativeRewards, formula)
		if err != nil {
			return err
		}
		cand.CumulativeRewards.Add(cand.CumulativeRewards, split.TranscoderShare)
		cand.LastRewardRound = cur
		if err := s.candidates.Set(sender, cand); err != nil {
			return err
		}
		if err := s.increaseTotalStake(sender, transcoderRewards, hints.NewPrev, hints.NewNext, cur); err != nil {
			return err
		}

		s.emit(&RewardEvent{Transcoder: sender, Round: cur, Amount: transcoderRewards})
		logger.Info("rewarded", "transcoder", sender, "round", cur, "amount", transcoderRewards, "formula", formula)
		return nil
	})
}

// snapshotCommission fixes the cuts and stake basis of the round on first use.
func (s *Staker) snapshotCommission(addr thor.Address, cand *candidate.Candidate, cur uint64) error {
	rewardCut, feeShare := cand.EffectiveCuts(cur)
	if err := s.earnings.SetCommission(addr, cur, rewardCut, feeShare); err != nil {
		return err
	}
	return s.rollStake(addr, cand, cur)
}

// payTreasury transfers the treasury cut of rewards. Once the treasury holds the ceiling the
// cut stops, from this reward on.
func (s *Staker) payTreasury(transcoder thor.Address, rewards *big.Int) (*big.Int, error) {
	rate, err := s.stats.TreasuryRewardCutRate()
	if err != nil {
		return nil, err
	}
	if rate.Sign() == 0 {
		return new(big.Int), nil
	}
	treasury, err := s.treasury.Get()
	if err != nil {
		return nil, err
	}
	if treasury.IsZero() {
		return new(big.Int), nil
	}
	ceiling, err := s.params.Get(thor.KeyTreasuryBalanceCeiling)
	if err != nil {
		return nil, err
	}
	if ceiling.Sign() > 0 {
		balance, err := s.minter.BalanceOf(treasury)
		if err != nil {
			return nil, err
		}
		if balance.Cmp(ceiling) >= 0 {
			s.stats.ZeroTreasuryRewardCutRate()
			s.emit(&ParameterUpdateEvent{Param: "treasuryRewardCutRate", Value: new(big.Int)})
			logger.Info("treasury ceiling reached", "balance", balance, "ceiling", ceiling)
			return new(big.Int), nil
		}
	}

	amount := mathutil.PrecisePercOf(rewards, rate)
	if amount.Sign() == 0 {
		return amount, nil
	}
	if err := s.minter.TrustedTransferTokens(treasury, amount); err != nil {
		return nil, err
	}
	s.emit(&TreasuryRewardEvent{Transcoder: transcoder, Treasury: treasury, Amount: amount})
	return amount, nil
}

// ReportFees attributes fees redeemed for transcoder in round, which must be the current round.
// Fees are applied once per round: a later report for the same round, or one for a transcoder
// that is not registered, is dropped.
func (s *Staker) ReportFees(caller, transcoder thor.Address, fees *big.Int, round uint64) error {
	logger.Debug("reporting fees", "transcoder", transcoder, "fees", fees, "round", round)

	return s.atomic("report_fees", func() error {
		if err := s.onlyCaller(s.feeReporter, caller, "the fee reporter"); err != nil {
			return err
		}
		cur, err := s.initializedRound()
		if err != nil {
			return err
		}
		if round != cur {
			return reverts.Newf("fees must be reported for the current round %d", cur)
		}
		if fees == nil || fees.Sign() < 0 {
			return reverts.New("invalid fee amount")
		}

		del, err := s.delegators.GetDelegator(transcoder)
		if err != nil {
			return err
		}
		if !del.IsRegisteredTranscoder(transcoder) {
			logger.Debug("fees dropped, transcoder not registered", "transcoder", transcoder, "fees", fees)
			return nil
		}

		cand, err := s.candidates.Get(transcoder)
		if err != nil {
			return err
		}
		active := cand.ActiveCumulativeRewardsAt(cur)
		if cand.LastRewardRound != cur {
			// reward snapshots these when it runs first
			if err := s.snapshotCommission(transcoder, cand, cur); err != nil {
				return err
			}
		}

		formula, err := s.formula(cur)
		if err != nil {
			return err
		}
		split, err := s.earnings.ApplyFees(transcoder, cur, fees, active, formula)
		if err != nil {
			return err
		}
		if split.Skipped {
			logger.Debug("fees dropped, already applied this round", "transcoder", transcoder, "fees", fees, "round", cur)
			return nil
		}
		cand.CumulativeFees.Add(cand.CumulativeFees, split.TranscoderShare)
		cand.LastFeeRound = cur
		if err := s.candidates.Set(transcoder, cand); err != nil {
			return err
		}

		s.emit(&FeesReportedEvent{Transcoder: transcoder, Round: cur, Fees: new(big.Int).Set(fees)})
		return nil
	})
}

// SetCurrentRoundTotalActiveStake fixes the total active stake of the new round and applies
// the pending treasury rate. It runs once per round.
func (s *Staker) SetCurrentRoundTotalActiveStake(caller thor.Address) error {
	return s.atomic("set_total_active_stake", func() error {
		if err := s.onlyCaller(s.roundsManager, caller, "the rounds manager"); err != nil {
			return err
		}
		cur, err := s.rounds.CurrentRound()
		if err != nil {
			return err
		}
		done, total, err := s.stats.Snapshot(cur)
		if err != nil {
			return err
		}
		if !done {
			return reverts.Newf("total active stake already set for round %d", cur)
		}
		changed, rate, err := s.stats.ApplyNextTreasuryRewardCutRate()
		if err != nil {
			return err
		}
		if changed {
			s.emit(&ParameterUpdateEvent{Param: "treasuryRewardCutRate", Value: rate})
		}
		if err := s.checkpoints.CheckpointTotalActiveStake(total, cur); err != nil {
			return err
		}

		metricTotalActiveStake().Set(new(big.Int).Quo(total, tokenUnit).Int64())
		logger.Info("round total active stake", "round", cur, "total", total)
		return nil
	})
}

// SetTreasuryRewardCutRate sets the treasury cut, a PreciseUnit fraction, from the next round on.
func (s *Staker) SetTreasuryRewardCutRate(rate *big.Int) error {
	return s.atomic("set_treasury_rate", func() error {
		if rate == nil || !mathutil.ValidPrecisePerc(rate) {
			return reverts.New("cut rate must be a valid precise percentage")
		}
		s.stats.SetNextTreasuryRewardCutRate(rate)
		s.emit(&ParameterUpdateEvent{Param: "nextRoundTreasuryRewardCutRate", Value: new(big.Int).Set(rate)})
		return nil
	})
}

// Slash burns slashAmount (PPM) of the self bond of transcoder and pays finderFee (PPM) of the
// penalty to finder.
func (s *Staker) Slash(caller, transcoder, finder thor.Address, slashAmount, finderFee uint64) error {
	return s.SlashWithHint(caller, transcoder, finder, slashAmount, finderFee, Hints{})
}

func (s *Staker) SlashWithHint(caller, transcoder, finder thor.Address, slashAmount, finderFee uint64, hints Hints) error {
	logger.Debug("slashing", "transcoder", transcoder, "finder", finder, "slashAmount", slashAmount)

	return s.atomic("slash", func() error {
		if err := s.onlyCaller(s.verifier, caller, "the verifier"); err != nil {
			return err
		}
		cur, err := s.initializedRound()
		if err != nil {
			return err
		}
		if !mathutil.ValidPerc(slashAmount) || !mathutil.ValidPerc(finderFee) {
			return reverts.New("invalid percentage")
		}

		del, err := s.delegators.GetDelegator(transcoder)
		if err != nil {
			return err
		}
		if err := s.claim(transcoder, del, cur); err != nil {
			return err
		}
		if del.BondedAmount.Sign() == 0 {
			return s.checkpoint(transcoder, cur)
		}

		penalty, err := s.applyPenalty(transcoder, del, slashAmount, hints, cur)
		if err != nil {
			return err
		}

		burn := new(big.Int).Set(penalty)
		finderReward := new(big.Int)
		if !finder.IsZero() {
			finderReward = mathutil.PercOfPPM(penalty, finderFee)
			burn.Sub(burn, finderReward)
			if finderReward.Sign() > 0 {
				if err := s.minter.TrustedTransferTokens(finder, finderReward); err != nil {
					return err
				}
			}
		}
		if burn.Sign() > 0 {
			if err := s.minter.TrustedBurnTokens(burn); err != nil {
				return err
			}
		}

		s.emit(&TranscoderSlashedEvent{Transcoder: transcoder, Finder: finder, Penalty: penalty, FinderReward: finderReward})
		logger.Info("transcoder slashed", "transcoder", transcoder, "penalty", penalty, "finderReward", finderReward)
		return s.checkpoint(transcoder, cur)
	})
}

// applyPenalty cuts the bond of transcoder, resigning it from the pool.
func (s *Staker) applyPenalty(transcoder thor.Address, del *delegation.Delegator, slashAmount uint64, hints Hints, cur uint64) (*big.Int, error) {
	penalty := mathutil.PercOfPPM(del.BondedAmount, slashAmount)

	inPool, err := s.pool.Contains(transcoder)
	if err != nil {
		return nil, err
	}
	if inPool {
		if err := s.resignTranscoder(transcoder, cur); err != nil {
			return nil, err
		}
	}

	del.BondedAmount.Sub(del.BondedAmount, penalty)
	if err := s.delegators.SetDelegator(transcoder, del); err != nil {
		return nil, err
	}
	if !del.DelegateAddress.IsZero() && penalty.Sign() > 0 {
		if err := s.decreaseTotalStake(del.DelegateAddress, penalty, hints.NewPrev, hints.NewNext, cur); err != nil {
			return nil, err
		}
	}
	return penalty, nil
}
