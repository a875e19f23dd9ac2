// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/builtin/staker/mathutil"
	"github.com/vechain/stakeledger/builtin/staker/pool"
	"github.com/vechain/stakeledger/builtin/staker/reverts"
	"github.com/vechain/stakeledger/thor"
)

// Transcoder sets the cuts of a registered transcoder from the next round on, and lets a
// transcoder outside the pool try to join it.
func (s *Staker) Transcoder(sender thor.Address, rewardCut, feeShare uint64) error {
	return s.TranscoderWithHint(sender, rewardCut, feeShare, Hints{})
}

func (s *Staker) TranscoderWithHint(sender thor.Address, rewardCut, feeShare uint64, hints Hints) error {
	logger.Debug("updating transcoder", "transcoder", sender, "rewardCut", rewardCut, "feeShare", feeShare)

	return s.atomic("transcoder", func() error {
		cur, err := s.initializedRound()
		if err != nil {
			return err
		}
		locked, err := s.rounds.CurrentRoundLocked()
		if err != nil {
			return err
		}
		if locked {
			return reverts.New("can't update transcoder params, current round is locked")
		}
		if !mathutil.ValidPerc(rewardCut) {
			return reverts.New("invalid rewardCut percentage")
		}
		if !mathutil.ValidPerc(feeShare) {
			return reverts.New("invalid feeShare percentage")
		}

		del, err := s.delegators.GetDelegator(sender)
		if err != nil {
			return err
		}
		if !del.IsRegisteredTranscoder(sender) {
			return reverts.New("transcoder must be registered")
		}
		cand, err := s.candidates.Get(sender)
		if err != nil {
			return err
		}
		if cand.IsActive(cur) && cand.LastRewardRound != cur {
			return reverts.New("caller can't be active or must have already called reward for the current round")
		}

		cand.ScheduleCuts(cur, cur+1, rewardCut, feeShare)

		inPool, err := s.pool.Contains(sender)
		if err != nil {
			return err
		}
		if !inPool {
			if err := s.tryToJoinActiveSet(sender, cand, cand.DelegatedAmount, cur+1, hints.NewPrev, hints.NewNext); err != nil {
				return err
			}
		}
		if err := s.candidates.Set(sender, cand); err != nil {
			return err
		}

		s.emit(&TranscoderUpdateEvent{
			Transcoder:      sender,
			RewardCut:       rewardCut,
			FeeShare:        feeShare,
			ActivationRound: cur + 1,
		})
		logger.Info("transcoder updated", "transcoder", sender, "rewardCut", rewardCut, "feeShare", feeShare)
		return nil
	})
}

// SetNumActiveTranscoders changes the capacity of the pool. It cannot shrink below the
// current number of members.
func (s *Staker) SetNumActiveTranscoders(n uint64) error {
	return s.atomic("set_num_active_transcoders", func() error {
		if err := s.pool.SetMaxSize(n); err != nil {
			if errors.Is(err, pool.ErrMaxSizeTooLow) {
				return reverts.New("new limit must be greater than or equal to the current number of transcoders")
			}
			return err
		}
		if err := s.params.SetUint64(thor.KeyNumActiveTranscoders, n); err != nil {
			return err
		}
		s.emit(&ParameterUpdateEvent{Param: "numActiveTranscoders", Value: bigUint(n)})
		logger.Info("pool size changed", "numActiveTranscoders", n)
		return nil
	})
}
