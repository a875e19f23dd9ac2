// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

import (
	"math/big"

	"github.com/vechain/stakeledger/thor"
)

// Status of a delegator relative to a round.
type Status uint8

const (
	StatusPending Status = iota
	StatusBonded
	StatusUnbonded
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusBonded:
		return "bonded"
	default:
		return "unbonded"
	}
}

type Delegator struct {
	BondedAmount        *big.Int
	Fees                *big.Int // realized fees not yet withdrawn
	DelegateAddress     thor.Address
	StartRound          uint64 // first round the bond earns
	LastClaimRound      uint64
	NextUnbondingLockID uint64
}

func newDelegator() *Delegator {
	return &Delegator{
		BondedAmount: new(big.Int),
		Fees:         new(big.Int),
	}
}

// Status returns the status of the delegator during round.
func (d *Delegator) Status(round uint64) Status {
	if d.BondedAmount.Sign() == 0 {
		return StatusUnbonded
	}
	if d.StartRound > round {
		return StatusPending
	}
	return StatusBonded
}

// IsRegisteredTranscoder reports whether addr, the owner of d, is a registered transcoder:
// self delegated with a positive bond.
func (d *Delegator) IsRegisteredTranscoder(addr thor.Address) bool {
	return d.DelegateAddress == addr && d.BondedAmount.Sign() > 0
}

// UnbondingLock holds unbonded stake until WithdrawRound. A zero WithdrawRound marks a
// consumed or unknown lock.
type UnbondingLock struct {
	Amount        *big.Int
	WithdrawRound uint64
}

func (l *UnbondingLock) IsValid() bool {
	return l.WithdrawRound > 0
}
