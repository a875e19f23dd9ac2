// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package checkpoint records bonding state and total active stake per round so that past
// values can be looked up with a binary search.
package checkpoint

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/builtin/solidity"
	"github.com/vechain/stakeledger/thor"
)

var (
	ErrNoCheckpoint = errors.New("no checkpoint at or before round")
	ErrFutureLookup = errors.New("lookup round is in the future")

	slotBonding          = thor.BytesToBytes32([]byte("checkpoints-bonding"))
	slotBondingRounds    = thor.BytesToBytes32([]byte("checkpoints-bonding-rounds"))
	slotTotalStake       = thor.BytesToBytes32([]byte("checkpoints-total-stake"))
	slotTotalStakeRounds = thor.BytesToBytes32([]byte("checkpoints-total-stake-rounds"))

	// owner key of the single total stake series
	totalStakeOwner = thor.BytesToBytes32([]byte("total-active-stake"))
)

// BondingCheckpoint is the bonding state of an account effective from a round on.
type BondingCheckpoint struct {
	BondedAmount    *big.Int
	DelegateAddress thor.Address
	DelegatedAmount *big.Int
	LastClaimRound  uint64
	LastRewardRound uint64
}

type Service struct {
	bonding          *solidity.Mapping[thor.Bytes32, *BondingCheckpoint]
	bondingRounds    *solidity.SortedRounds
	totalStake       *solidity.Mapping[thor.Bytes32, *big.Int]
	totalStakeRounds *solidity.SortedRounds
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		bonding:          solidity.NewMapping[thor.Bytes32, *BondingCheckpoint](sctx, slotBonding),
		bondingRounds:    solidity.NewSortedRounds(sctx, slotBondingRounds),
		totalStake:       solidity.NewMapping[thor.Bytes32, *big.Int](sctx, slotTotalStake),
		totalStakeRounds: solidity.NewSortedRounds(sctx, slotTotalStakeRounds),
	}
}

func bondingKey(account thor.Address, round uint64) thor.Bytes32 {
	return thor.Blake2b(account.Bytes(), thor.Uint64ToBytes32(round).Bytes())
}

// CheckpointBondingState records cp for account from round on. Rounds must not decrease;
// recording the same round again overwrites it.
func (s *Service) CheckpointBondingState(account thor.Address, round uint64, cp *BondingCheckpoint) error {
	if err := s.bondingRounds.Push(account, round); err != nil {
		return errors.Wrap(err, "failed to index bonding checkpoint")
	}
	if err := s.bonding.Set(bondingKey(account, round), cp); err != nil {
		return errors.Wrap(err, "failed to set bonding checkpoint")
	}
	return nil
}

// GetBondingCheckpointAt returns the checkpoint of account in effect at round and the round
// it was recorded for.
func (s *Service) GetBondingCheckpointAt(account thor.Address, round uint64) (*BondingCheckpoint, uint64, error) {
	found, ok, err := s.bondingRounds.Floor(account, round)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to search bonding checkpoints")
	}
	if !ok {
		return nil, 0, ErrNoCheckpoint
	}
	cp, err := s.bonding.Get(bondingKey(account, found))
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to get bonding checkpoint")
	}
	if cp == nil {
		return nil, 0, errors.Errorf("bonding checkpoint of round %d indexed but missing", found)
	}
	return cp, found, nil
}

// HasBondingCheckpoint reports whether account was ever checkpointed.
func (s *Service) HasBondingCheckpoint(account thor.Address) (bool, error) {
	n, err := s.bondingRounds.Len(account)
	return n > 0, err
}

// CheckpointTotalActiveStake records the total active stake of round.
func (s *Service) CheckpointTotalActiveStake(amount *big.Int, round uint64) error {
	if err := s.totalStakeRounds.Push(totalStakeOwner, round); err != nil {
		return errors.Wrap(err, "failed to index total stake checkpoint")
	}
	if err := s.totalStake.Set(thor.Uint64ToBytes32(round), amount); err != nil {
		return errors.Wrap(err, "failed to set total stake checkpoint")
	}
	return nil
}

// GetTotalActiveStakeAt returns the total active stake recorded at or before round.
func (s *Service) GetTotalActiveStakeAt(round uint64) (*big.Int, error) {
	found, ok, err := s.totalStakeRounds.Floor(totalStakeOwner, round)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search total stake checkpoints")
	}
	if !ok {
		return nil, ErrNoCheckpoint
	}
	amount, err := s.totalStake.Get(thor.Uint64ToBytes32(found))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get total stake checkpoint")
	}
	if amount == nil {
		return new(big.Int), nil
	}
	return amount, nil
}
