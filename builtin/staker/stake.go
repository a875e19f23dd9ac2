// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/vechain/stakeledger/builtin/staker/candidate"
	"github.com/vechain/stakeledger/builtin/staker/reverts"
	"github.com/vechain/stakeledger/thor"
)

// rollStake makes sure the earnings record of cur carries the stake of the transcoder when
// nothing changed it since an earlier round.
func (s *Staker) rollStake(addr thor.Address, cand *candidate.Candidate, cur uint64) error {
	if cand.LastActiveStakeUpdateRound >= cur {
		return nil
	}
	rec, err := s.earnings.Get(addr, cand.LastActiveStakeUpdateRound)
	if err != nil {
		return err
	}
	return s.earnings.SetStake(addr, cur, rec.TotalStake)
}

// increaseTotalStake adds amount to the stake delegated to delegate, moving it up the pool or
// letting a registered transcoder try to join it.
func (s *Staker) increaseTotalStake(delegate thor.Address, amount *big.Int, prev, next *thor.Address, cur uint64) error {
	cand, err := s.candidates.Get(delegate)
	if err != nil {
		return err
	}
	currStake := new(big.Int).Set(cand.DelegatedAmount)
	newStake := new(big.Int).Add(currStake, amount)

	del, err := s.delegators.GetDelegator(delegate)
	if err != nil {
		return err
	}
	if del.IsRegisteredTranscoder(delegate) {
		inPool, err := s.pool.Contains(delegate)
		if err != nil {
			return err
		}
		if inPool {
			if err := s.updatePoolStake(delegate, cand, currStake, newStake, prev, next, cur); err != nil {
				return err
			}
			if err := s.stats.AddNextRoundStake(amount); err != nil {
				return err
			}
		} else if err := s.tryToJoinActiveSet(delegate, cand, newStake, cur+1, prev, next); err != nil {
			return err
		}
	}

	cand.DelegatedAmount = newStake
	if err := s.candidates.Set(delegate, cand); err != nil {
		return err
	}
	return s.checkpoint(delegate, cur)
}

// decreaseTotalStake takes amount from the stake delegated to delegate.
func (s *Staker) decreaseTotalStake(delegate thor.Address, amount *big.Int, prev, next *thor.Address, cur uint64) error {
	cand, err := s.candidates.Get(delegate)
	if err != nil {
		return err
	}
	currStake := new(big.Int).Set(cand.DelegatedAmount)
	newStake := new(big.Int).Sub(currStake, amount)
	if newStake.Sign() < 0 {
		return reverts.NewInvariant("delegated amount underflow")
	}

	inPool, err := s.pool.Contains(delegate)
	if err != nil {
		return err
	}
	if inPool {
		if err := s.updatePoolStake(delegate, cand, currStake, newStake, prev, next, cur); err != nil {
			return err
		}
		if err := s.stats.SubNextRoundStake(amount); err != nil {
			return err
		}
	}

	cand.DelegatedAmount = newStake
	if err := s.candidates.Set(delegate, cand); err != nil {
		return err
	}
	return s.checkpoint(delegate, cur)
}

// updatePoolStake repositions a pool member and records its stake for the next round.
func (s *Staker) updatePoolStake(
	addr thor.Address,
	cand *candidate.Candidate,
	currStake, newStake *big.Int,
	prev, next *thor.Address,
	cur uint64,
) error {
	if err := s.pool.UpdateKey(addr, newStake, prev, next); err != nil {
		return err
	}
	if newStake.Sign() == 0 {
		// a zero key drops the member
		s.markDeactivated(addr, cand, cur+1)
	}
	if cand.LastActiveStakeUpdateRound < cur {
		if err := s.earnings.SetStake(addr, cur, currStake); err != nil {
			return err
		}
	}
	if err := s.earnings.SetStake(addr, cur+1, newStake); err != nil {
		return err
	}
	cand.LastActiveStakeUpdateRound = cur + 1
	s.emit(&StakePoolChangedEvent{Transcoder: addr, Stake: new(big.Int).Set(newStake)})
	return nil
}

// tryToJoinActiveSet inserts addr into the pool from activationRound on, evicting the member
// with the lowest stake when the pool is full. A newcomer must have strictly more stake than it.
func (s *Staker) tryToJoinActiveSet(
	addr thor.Address,
	cand *candidate.Candidate,
	stake *big.Int,
	activationRound uint64,
	prev, next *thor.Address,
) error {
	if stake.Sign() == 0 {
		return nil
	}
	full, err := s.pool.IsFull()
	if err != nil {
		return err
	}
	if full {
		last, err := s.pool.Last()
		if err != nil {
			return err
		}
		if last.IsZero() {
			// a pool of size zero admits nobody
			return nil
		}
		lastStake, err := s.pool.Key(last)
		if err != nil {
			return err
		}
		if stake.Cmp(lastStake) <= 0 {
			return nil
		}
		if err := s.pool.Remove(last); err != nil {
			return err
		}
		if err := s.stats.SubNextRoundStake(lastStake); err != nil {
			return err
		}
		evicted, err := s.candidates.Get(last)
		if err != nil {
			return err
		}
		s.markDeactivated(last, evicted, activationRound)
		if err := s.candidates.Set(last, evicted); err != nil {
			return err
		}
		s.emit(&StakePoolChangedEvent{Transcoder: last, Stake: new(big.Int)})
		logger.Info("transcoder evicted", "transcoder", last, "stake", lastStake, "by", addr)
	}

	if err := s.pool.Insert(addr, stake, prev, next); err != nil {
		return err
	}
	if err := s.stats.AddNextRoundStake(stake); err != nil {
		return err
	}
	if err := s.earnings.SetStake(addr, activationRound, stake); err != nil {
		return err
	}
	cand.LastActiveStakeUpdateRound = activationRound
	cand.ActivationRound = activationRound
	cand.DeactivationRound = thor.MaxFutureRound

	s.emit(&TranscoderActivatedEvent{Transcoder: addr, ActivationRound: activationRound})
	s.emit(&StakePoolChangedEvent{Transcoder: addr, Stake: new(big.Int).Set(stake)})
	s.observePool()
	return nil
}

// resignTranscoder removes addr from the pool, it stays active through the current round.
func (s *Staker) resignTranscoder(addr thor.Address, cur uint64) error {
	cand, err := s.candidates.Get(addr)
	if err != nil {
		return err
	}
	if err := s.pool.Remove(addr); err != nil {
		return err
	}
	if err := s.stats.SubNextRoundStake(cand.DelegatedAmount); err != nil {
		return err
	}
	s.markDeactivated(addr, cand, cur+1)
	if err := s.candidates.Set(addr, cand); err != nil {
		return err
	}
	s.emit(&StakePoolChangedEvent{Transcoder: addr, Stake: new(big.Int)})
	return nil
}

func (s *Staker) markDeactivated(addr thor.Address, cand *candidate.Candidate, round uint64) {
	cand.DeactivationRound = round
	s.emit(&TranscoderDeactivatedEvent{Transcoder: addr, DeactivationRound: round})
	s.observePool()
}

func (s *Staker) observePool() {
	if size, err := s.pool.Size(); err == nil {
		metricPoolSize().Set(int64(size))
	}
}
