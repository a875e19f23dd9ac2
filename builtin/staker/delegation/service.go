// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/builtin/solidity"
	"github.com/vechain/stakeledger/thor"
)

var (
	slotDelegators     = thor.BytesToBytes32([]byte("delegators"))
	slotUnbondingLocks = thor.BytesToBytes32([]byte("unbonding-locks"))
)

type Service struct {
	delegators *solidity.Mapping[thor.Address, *Delegator]
	locks      *solidity.Mapping[thor.Bytes32, *UnbondingLock]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		delegators: solidity.NewMapping[thor.Address, *Delegator](sctx, slotDelegators),
		locks:      solidity.NewMapping[thor.Bytes32, *UnbondingLock](sctx, slotUnbondingLocks),
	}
}

// GetDelegator returns the delegator record of addr, a zero record if there is none.
func (s *Service) GetDelegator(addr thor.Address) (*Delegator, error) {
	d, err := s.delegators.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get delegator")
	}
	if d == nil {
		return newDelegator(), nil
	}
	return d, nil
}

func (s *Service) SetDelegator(addr thor.Address, d *Delegator) error {
	if err := s.delegators.Set(addr, d); err != nil {
		return errors.Wrap(err, "failed to set delegator")
	}
	return nil
}

func lockKey(addr thor.Address, id uint64) thor.Bytes32 {
	return thor.Blake2b(addr.Bytes(), thor.Uint64ToBytes32(id).Bytes())
}

// AddLock stores a new unbonding lock of addr and advances the lock id counter of d.
// The caller persists d.
func (s *Service) AddLock(addr thor.Address, d *Delegator, amount *big.Int, withdrawRound uint64) (uint64, error) {
	id := d.NextUnbondingLockID
	d.NextUnbondingLockID++
	lock := &UnbondingLock{Amount: new(big.Int).Set(amount), WithdrawRound: withdrawRound}
	if err := s.locks.Set(lockKey(addr, id), lock); err != nil {
		return 0, errors.Wrap(err, "failed to set unbonding lock")
	}
	return id, nil
}

// GetLock returns the lock id of addr; unknown locks come back invalid.
func (s *Service) GetLock(addr thor.Address, id uint64) (*UnbondingLock, error) {
	lock, err := s.locks.Get(lockKey(addr, id))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get unbonding lock")
	}
	if lock == nil {
		return &UnbondingLock{Amount: new(big.Int)}, nil
	}
	return lock, nil
}

func (s *Service) DeleteLock(addr thor.Address, id uint64) {
	s.locks.Delete(lockKey(addr, id))
}
