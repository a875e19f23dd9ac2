// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/builtin/staker/candidate"
	"github.com/vechain/stakeledger/builtin/staker/checkpoint"
	"github.com/vechain/stakeledger/builtin/staker/delegation"
	"github.com/vechain/stakeledger/builtin/staker/earnings"
	"github.com/vechain/stakeledger/thor"
)

// PoolMember is an entry of the transcoder pool, in descending stake order.
type PoolMember struct {
	Address thor.Address
	Stake   *big.Int
}

// TranscoderStatus is the registration state of a transcoder.
type TranscoderStatus uint8

const (
	TranscoderNotRegistered TranscoderStatus = iota
	TranscoderRegistered
)

func (s TranscoderStatus) String() string {
	if s == TranscoderRegistered {
		return "registered"
	}
	return "not-registered"
}

func (s *Staker) clampRound(endRound uint64) (uint64, error) {
	cur, err := s.rounds.CurrentRound()
	if err != nil {
		return 0, err
	}
	return min(endRound, cur), nil
}

func (s *Staker) pending(addr thor.Address, endRound uint64) (*big.Int, *big.Int, error) {
	end, err := s.clampRound(endRound)
	if err != nil {
		return nil, nil, err
	}
	del, err := s.delegators.GetDelegator(addr)
	if err != nil {
		return nil, nil, err
	}
	in, err := s.claimInput(addr, del, end)
	if err != nil {
		return nil, nil, err
	}
	return s.earnings.PendingStakeAndFees(in)
}

// PendingStake returns the bonded amount of addr with its earnings through endRound, clamped
// to the current round.
func (s *Staker) PendingStake(addr thor.Address, endRound uint64) (*big.Int, error) {
	stake, _, err := s.pending(addr, endRound)
	return stake, err
}

// PendingFees returns the withdrawable fees of addr with its earnings through endRound.
func (s *Staker) PendingFees(addr thor.Address, endRound uint64) (*big.Int, error) {
	_, fees, err := s.pending(addr, endRound)
	return fees, err
}

// TranscoderTotalStake returns the stake delegated to addr.
func (s *Staker) TranscoderTotalStake(addr thor.Address) (*big.Int, error) {
	cand, err := s.candidates.Get(addr)
	if err != nil {
		return nil, err
	}
	return cand.DelegatedAmount, nil
}

func (s *Staker) DelegatorStatus(addr thor.Address) (delegation.Status, error) {
	cur, err := s.rounds.CurrentRound()
	if err != nil {
		return delegation.StatusUnbonded, err
	}
	del, err := s.delegators.GetDelegator(addr)
	if err != nil {
		return delegation.StatusUnbonded, err
	}
	return del.Status(cur), nil
}

func (s *Staker) TranscoderStatus(addr thor.Address) (TranscoderStatus, error) {
	ok, err := s.IsRegisteredTranscoder(addr)
	if err != nil || !ok {
		return TranscoderNotRegistered, err
	}
	return TranscoderRegistered, nil
}

func (s *Staker) IsRegisteredTranscoder(addr thor.Address) (bool, error) {
	del, err := s.delegators.GetDelegator(addr)
	if err != nil {
		return false, err
	}
	return del.IsRegisteredTranscoder(addr), nil
}

// IsActiveTranscoder reports whether addr is in the active set of the current round.
func (s *Staker) IsActiveTranscoder(addr thor.Address) (bool, error) {
	cur, err := s.rounds.CurrentRound()
	if err != nil {
		return false, err
	}
	cand, err := s.candidates.Get(addr)
	if err != nil {
		return false, err
	}
	return cand.IsActive(cur), nil
}

func (s *Staker) GetDelegator(addr thor.Address) (*delegation.Delegator, error) {
	return s.delegators.GetDelegator(addr)
}

func (s *Staker) GetTranscoder(addr thor.Address) (*candidate.Candidate, error) {
	return s.candidates.Get(addr)
}

func (s *Staker) GetEarningsPoolForRound(addr thor.Address, round uint64) (*earnings.Record, error) {
	return s.earnings.Get(addr, round)
}

// LatestFactors returns the cumulative factors of addr in effect at round.
func (s *Staker) LatestFactors(addr thor.Address, round uint64) (*earnings.Factors, error) {
	return s.earnings.LatestFactors(addr, round)
}

func (s *Staker) GetUnbondingLock(addr thor.Address, id uint64) (*delegation.UnbondingLock, error) {
	return s.delegators.GetLock(addr, id)
}

func (s *Staker) IsValidUnbondingLock(addr thor.Address, id uint64) (bool, error) {
	lock, err := s.delegators.GetLock(addr, id)
	if err != nil {
		return false, err
	}
	return lock.IsValid(), nil
}

// GetTranscoderPool lists the pool from the highest stake down.
func (s *Staker) GetTranscoderPool() ([]PoolMember, error) {
	var members []PoolMember
	err := s.pool.Iter(func(id thor.Address, key *big.Int) (bool, error) {
		members = append(members, PoolMember{Address: id, Stake: key})
		return true, nil
	})
	return members, err
}

func (s *Staker) GetTranscoderPoolSize() (uint64, error) {
	return s.pool.Size()
}

func (s *Staker) GetTranscoderPoolMaxSize() (uint64, error) {
	return s.pool.MaxSize()
}

func (s *Staker) GetFirstTranscoderInPool() (thor.Address, error) {
	return s.pool.First()
}

func (s *Staker) GetNextTranscoderInPool(addr thor.Address) (thor.Address, error) {
	return s.pool.Next(addr)
}

// GetTotalBonded returns the total active stake of the current round.
func (s *Staker) GetTotalBonded() (*big.Int, error) {
	return s.stats.CurrentRoundTotalActiveStake()
}

func (s *Staker) NextRoundTotalActiveStake() (*big.Int, error) {
	return s.stats.NextRoundTotalActiveStake()
}

func (s *Staker) checkLookupRound(round uint64) error {
	cur, err := s.rounds.CurrentRound()
	if err != nil {
		return err
	}
	if round > cur+1 {
		return errors.Wrapf(checkpoint.ErrFutureLookup, "round %d", round)
	}
	return nil
}

// GetBondingStateAt returns the stake account counted with at the start of round and its delegate.
// A delegate's stake is its delegated amount. A delegator's stake includes the rewards its
// delegate had earned through round. It fails with checkpoint.ErrNoCheckpoint when account has
// no checkpoint at or before round.
func (s *Staker) GetBondingStateAt(account thor.Address, round uint64) (*big.Int, thor.Address, error) {
	if err := s.checkLookupRound(round); err != nil {
		return nil, thor.Address{}, err
	}
	bond, _, err := s.checkpoints.GetBondingCheckpointAt(account, round)
	if err != nil {
		return nil, thor.Address{}, errors.Wrapf(err, "account %v", account)
	}
	if bond.BondedAmount.Sign() == 0 {
		return new(big.Int), bond.DelegateAddress, nil
	}
	if bond.DelegateAddress == account {
		return new(big.Int).Set(bond.DelegatedAmount), account, nil
	}

	stake, err := s.delegatorStakeAt(bond, round)
	if err != nil {
		return nil, thor.Address{}, err
	}
	return stake, bond.DelegateAddress, nil
}

func (s *Staker) delegatorStakeAt(bond *checkpoint.BondingCheckpoint, round uint64) (*big.Int, error) {
	delegateBond, _, err := s.checkpoints.GetBondingCheckpointAt(bond.DelegateAddress, round)
	if err != nil {
		return nil, errors.Wrapf(err, "delegate %v", bond.DelegateAddress)
	}
	rewardRound := delegateBond.LastRewardRound
	if rewardRound < bond.LastClaimRound {
		return new(big.Int).Set(bond.BondedAmount), nil
	}

	start, err := s.earnings.LatestFactors(bond.DelegateAddress, bond.LastClaimRound)
	if err != nil {
		return nil, err
	}
	end, err := s.earnings.LatestFactors(bond.DelegateAddress, rewardRound)
	if err != nil {
		return nil, err
	}
	stake := new(big.Int).Mul(bond.BondedAmount, end.RewardFactor)
	return stake.Quo(stake, start.RewardFactor), nil
}

// GetTotalActiveStakeAt returns the total active stake recorded for round. It fails with
// checkpoint.ErrNoCheckpoint when nothing was recorded at or before round.
func (s *Staker) GetTotalActiveStakeAt(round uint64) (*big.Int, error) {
	if err := s.checkLookupRound(round); err != nil {
		return nil, err
	}
	total, err := s.checkpoints.GetTotalActiveStakeAt(round)
	if err != nil {
		return nil, errors.Wrapf(err, "round %d", round)
	}
	return total, nil
}
