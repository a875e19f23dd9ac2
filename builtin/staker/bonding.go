// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/vechain/stakeledger/builtin/staker/delegation"
	"github.com/vechain/stakeledger/builtin/staker/reverts"
	"github.com/vechain/stakeledger/thor"
)

// Bond delegates amount from sender to the address to, or moves the existing bond of sender to it.
func (s *Staker) Bond(sender thor.Address, amount *big.Int, to thor.Address) error {
	return s.BondWithHint(sender, amount, to, Hints{})
}

func (s *Staker) BondWithHint(sender thor.Address, amount *big.Int, to thor.Address, hints Hints) error {
	logger.Debug("bonding", "delegator", sender, "to", to, "amount", amount)

	return s.atomic("bond", func() error {
		cur, err := s.initializedRound()
		if err != nil {
			return err
		}
		if amount == nil || amount.Sign() < 0 {
			return reverts.New("invalid amount")
		}
		if to.IsZero() {
			return reverts.New("invalid delegate address")
		}

		del, err := s.delegators.GetDelegator(sender)
		if err != nil {
			return err
		}
		if err := s.claim(sender, del, cur); err != nil {
			return err
		}

		oldDelegate := del.DelegateAddress
		currentBonded := new(big.Int).Set(del.BondedAmount)
		delegationAmount := new(big.Int).Set(amount)

		if del.Status(cur) == delegation.StatusUnbonded {
			del.StartRound = cur + 1
		} else if currentBonded.Sign() > 0 && oldDelegate != to {
			// a transcoder's self bond backs its registration
			if del.IsRegisteredTranscoder(sender) {
				return reverts.New("registered transcoders can't delegate towards other addresses")
			}
			// moving the bond restarts it next round
			del.StartRound = cur + 1
			delegationAmount.Add(delegationAmount, currentBonded)
			if err := s.decreaseTotalStake(oldDelegate, currentBonded, hints.OldPrev, hints.OldNext, cur); err != nil {
				return err
			}
		}
		if delegationAmount.Sign() == 0 {
			return reverts.New("delegation amount must be greater than 0")
		}

		del.DelegateAddress = to
		del.BondedAmount.Add(del.BondedAmount, amount)
		if err := s.delegators.SetDelegator(sender, del); err != nil {
			return err
		}
		if err := s.increaseTotalStake(to, delegationAmount, hints.NewPrev, hints.NewNext, cur); err != nil {
			return err
		}
		if amount.Sign() > 0 {
			if err := s.minter.DepositTokens(sender, amount); err != nil {
				return err
			}
		}

		s.emit(&BondEvent{
			NewDelegate:      to,
			OldDelegate:      oldDelegate,
			Delegator:        sender,
			AdditionalAmount: new(big.Int).Set(amount),
			BondedAmount:     new(big.Int).Set(del.BondedAmount),
		})
		if err := s.checkpoint(sender, cur); err != nil {
			return err
		}
		logger.Info("bonded", "delegator", sender, "to", to, "bonded", del.BondedAmount)
		return nil
	})
}

// Unbond moves amount of the bond of sender into a new unbonding lock.
func (s *Staker) Unbond(sender thor.Address, amount *big.Int) error {
	return s.UnbondWithHint(sender, amount, Hints{})
}

func (s *Staker) UnbondWithHint(sender thor.Address, amount *big.Int, hints Hints) error {
	logger.Debug("unbonding", "delegator", sender, "amount", amount)

	return s.atomic("unbond", func() error {
		cur, err := s.initializedRound()
		if err != nil {
			return err
		}
		del, err := s.delegators.GetDelegator(sender)
		if err != nil {
			return err
		}
		if err := s.claim(sender, del, cur); err != nil {
			return err
		}
		if del.Status(cur) != delegation.StatusBonded {
			return reverts.New("caller must be bonded")
		}
		if amount == nil || amount.Sign() <= 0 {
			return reverts.New("unbond amount must be greater than 0")
		}
		if amount.Cmp(del.BondedAmount) > 0 {
			return reverts.New("amount is greater than bonded amount")
		}

		lockID, withdrawRound, err := s.unbond(sender, del, amount, hints, cur)
		if err != nil {
			return err
		}
		logger.Info("unbonded", "delegator", sender, "lockID", lockID, "withdrawRound", withdrawRound)
		return nil
	})
}

// unbond creates the lock and releases the stake. del is persisted.
func (s *Staker) unbond(sender thor.Address, del *delegation.Delegator, amount *big.Int, hints Hints, cur uint64) (uint64, uint64, error) {
	period, err := s.params.GetUint64(thor.KeyUnbondingPeriod)
	if err != nil {
		return 0, 0, err
	}
	delegate := del.DelegateAddress
	withdrawRound := cur + 1 + period

	del.BondedAmount.Sub(del.BondedAmount, amount)
	lockID, err := s.delegators.AddLock(sender, del, amount, withdrawRound)
	if err != nil {
		return 0, 0, err
	}

	if del.BondedAmount.Sign() == 0 {
		// fully unbonded delegators are not delegated to anyone
		del.DelegateAddress = thor.Address{}
		del.StartRound = 0

		inPool, err := s.pool.Contains(sender)
		if err != nil {
			return 0, 0, err
		}
		if inPool {
			if err := s.resignTranscoder(sender, cur); err != nil {
				return 0, 0, err
			}
		}
	}
	if err := s.delegators.SetDelegator(sender, del); err != nil {
		return 0, 0, err
	}
	// only the delegated amount changes when sender just resigned
	if err := s.decreaseTotalStake(delegate, amount, hints.NewPrev, hints.NewNext, cur); err != nil {
		return 0, 0, err
	}

	s.emit(&UnbondEvent{
		Delegate:      delegate,
		Delegator:     sender,
		LockID:        lockID,
		Amount:        new(big.Int).Set(amount),
		WithdrawRound: withdrawRound,
	})
	if err := s.checkpoint(sender, cur); err != nil {
		return 0, 0, err
	}
	return lockID, withdrawRound, nil
}

// Rebond puts the stake of an unbonding lock back to the current delegate of sender.
func (s *Staker) Rebond(sender thor.Address, lockID uint64) error {
	return s.RebondWithHint(sender, lockID, Hints{})
}

func (s *Staker) RebondWithHint(sender thor.Address, lockID uint64, hints Hints) error {
	logger.Debug("rebonding", "delegator", sender, "lockID", lockID)

	return s.atomic("rebond", func() error {
		cur, err := s.initializedRound()
		if err != nil {
			return err
		}
		del, err := s.delegators.GetDelegator(sender)
		if err != nil {
			return err
		}
		if err := s.claim(sender, del, cur); err != nil {
			return err
		}
		if del.Status(cur) == delegation.StatusUnbonded {
			return reverts.New("caller must be bonded")
		}
		return s.processRebond(sender, del, lockID, hints, cur)
	})
}

// RebondFromUnbonded delegates the stake of an unbonding lock of an unbonded sender to the address to.
func (s *Staker) RebondFromUnbonded(sender, to thor.Address, lockID uint64) error {
	return s.RebondFromUnbondedWithHint(sender, to, lockID, Hints{})
}

func (s *Staker) RebondFromUnbondedWithHint(sender, to thor.Address, lockID uint64, hints Hints) error {
	logger.Debug("rebonding from unbonded", "delegator", sender, "to", to, "lockID", lockID)

	return s.atomic("rebond", func() error {
		cur, err := s.initializedRound()
		if err != nil {
			return err
		}
		if to.IsZero() {
			return reverts.New("invalid delegate address")
		}
		del, err := s.delegators.GetDelegator(sender)
		if err != nil {
			return err
		}
		if err := s.claim(sender, del, cur); err != nil {
			return err
		}
		if del.Status(cur) != delegation.StatusUnbonded {
			return reverts.New("caller must be unbonded")
		}
		del.StartRound = cur + 1
		del.DelegateAddress = to
		return s.processRebond(sender, del, lockID, hints, cur)
	})
}

func (s *Staker) processRebond(sender thor.Address, del *delegation.Delegator, lockID uint64, hints Hints, cur uint64) error {
	lock, err := s.delegators.GetLock(sender, lockID)
	if err != nil {
		return err
	}
	if !lock.IsValid() {
		return reverts.New("invalid unbonding lock ID")
	}

	del.BondedAmount.Add(del.BondedAmount, lock.Amount)
	s.delegators.DeleteLock(sender, lockID)
	if err := s.delegators.SetDelegator(sender, del); err != nil {
		return err
	}
	if err := s.increaseTotalStake(del.DelegateAddress, lock.Amount, hints.NewPrev, hints.NewNext, cur); err != nil {
		return err
	}

	s.emit(&RebondEvent{
		Delegate:  del.DelegateAddress,
		Delegator: sender,
		LockID:    lockID,
		Amount:    new(big.Int).Set(lock.Amount),
	})
	logger.Info("rebonded", "delegator", sender, "lockID", lockID, "amount", lock.Amount)
	return s.checkpoint(sender, cur)
}

// WithdrawStake pays out an unbonding lock whose withdraw round has come.
func (s *Staker) WithdrawStake(sender thor.Address, lockID uint64) error {
	logger.Debug("withdrawing stake", "delegator", sender, "lockID", lockID)

	return s.atomic("withdraw_stake", func() error {
		cur, err := s.initializedRound()
		if err != nil {
			return err
		}
		lock, err := s.delegators.GetLock(sender, lockID)
		if err != nil {
			return err
		}
		if !lock.IsValid() {
			return reverts.New("invalid unbonding lock ID")
		}
		if lock.WithdrawRound > cur {
			return reverts.New("withdraw round must be before or equal to the current round")
		}

		s.delegators.DeleteLock(sender, lockID)
		if err := s.minter.TrustedTransferTokens(sender, lock.Amount); err != nil {
			return err
		}

		s.emit(&WithdrawStakeEvent{
			Delegator:     sender,
			LockID:        lockID,
			Amount:        new(big.Int).Set(lock.Amount),
			WithdrawRound: lock.WithdrawRound,
		})
		logger.Info("withdrew stake", "delegator", sender, "lockID", lockID, "amount", lock.Amount)
		return nil
	})
}

// WithdrawFees claims earnings and pays amount of the realized fees of sender to recipient.
func (s *Staker) WithdrawFees(sender, recipient thor.Address, amount *big.Int) error {
	logger.Debug("withdrawing fees", "delegator", sender, "recipient", recipient, "amount", amount)

	return s.atomic("withdraw_fees", func() error {
		cur, err := s.initializedRound()
		if err != nil {
			return err
		}
		if amount == nil || amount.Sign() <= 0 {
			return reverts.New("withdraw amount must be greater than 0")
		}
		if recipient.IsZero() {
			return reverts.New("invalid recipient")
		}
		del, err := s.delegators.GetDelegator(sender)
		if err != nil {
			return err
		}
		if err := s.claim(sender, del, cur); err != nil {
			return err
		}
		if amount.Cmp(del.Fees) > 0 {
			return reverts.New("insufficient fees to withdraw")
		}

		del.Fees.Sub(del.Fees, amount)
		if err := s.delegators.SetDelegator(sender, del); err != nil {
			return err
		}
		if err := s.minter.TrustedWithdrawFees(recipient, amount); err != nil {
			return err
		}

		s.emit(&WithdrawFeesEvent{Delegator: sender, Recipient: recipient, Amount: new(big.Int).Set(amount)})
		return s.checkpoint(sender, cur)
	})
}

// ClaimEarnings realizes the earnings of sender through endRound.
// A transcoder claims its own cut in full, so it may only claim through the current round.
func (s *Staker) ClaimEarnings(sender thor.Address, endRound uint64) error {
	logger.Debug("claiming earnings", "delegator", sender, "endRound", endRound)

	return s.atomic("claim_earnings", func() error {
		cur, err := s.initializedRound()
		if err != nil {
			return err
		}
		del, err := s.delegators.GetDelegator(sender)
		if err != nil {
			return err
		}
		if endRound <= del.LastClaimRound {
			return reverts.New("end round must be after last claim round")
		}
		if endRound > cur {
			return reverts.New("end round must be before or equal to current round")
		}
		if del.DelegateAddress == sender && endRound != cur {
			return reverts.New("transcoders must claim through the current round")
		}
		if err := s.claim(sender, del, endRound); err != nil {
			return err
		}
		return s.checkpoint(sender, cur)
	})
}

// TransferBond moves amount of the bond of sender to receiver, under the same delegate.
func (s *Staker) TransferBond(sender, receiver thor.Address, amount *big.Int) error {
	return s.TransferBondWithHint(sender, receiver, amount, Hints{})
}

// TransferBondWithHint: Old* hints position the delegate after the sender unbonds, New* after the
// receiver rebonds.
func (s *Staker) TransferBondWithHint(sender, receiver thor.Address, amount *big.Int, hints Hints) error {
	logger.Debug("transferring bond", "from", sender, "to", receiver, "amount", amount)

	return s.atomic("transfer_bond", func() error {
		cur, err := s.initializedRound()
		if err != nil {
			return err
		}
		if receiver == sender || receiver.IsZero() {
			return reverts.New("invalid receiver")
		}

		oldDel, err := s.delegators.GetDelegator(sender)
		if err != nil {
			return err
		}
		if err := s.claim(sender, oldDel, cur); err != nil {
			return err
		}
		if oldDel.Status(cur) != delegation.StatusBonded {
			return reverts.New("caller must be bonded")
		}
		if amount == nil || amount.Sign() <= 0 {
			return reverts.New("transfer amount must be greater than 0")
		}
		if amount.Cmp(oldDel.BondedAmount) > 0 {
			return reverts.New("amount is greater than bonded amount")
		}
		oldDelegate := oldDel.DelegateAddress

		lockID, _, err := s.unbond(sender, oldDel, amount, Hints{NewPrev: hints.OldPrev, NewNext: hints.OldNext}, cur)
		if err != nil {
			return err
		}
		// the stake goes to the receiver instead of a withdrawable lock
		s.delegators.DeleteLock(sender, lockID)

		newDel, err := s.delegators.GetDelegator(receiver)
		if err != nil {
			return err
		}
		if err := s.claim(receiver, newDel, cur); err != nil {
			return err
		}
		if newDel.BondedAmount.Sign() == 0 {
			// a transfer never makes the receiver self delegated
			if oldDelegate == receiver {
				return reverts.New("receiver cannot be the delegate")
			}
			newDel.DelegateAddress = oldDelegate
			newDel.StartRound = cur + 1
		} else if newDel.DelegateAddress != oldDelegate {
			return reverts.New("receiver is delegated to a different address")
		}

		newDel.BondedAmount.Add(newDel.BondedAmount, amount)
		if err := s.delegators.SetDelegator(receiver, newDel); err != nil {
			return err
		}
		if err := s.increaseTotalStake(oldDelegate, amount, hints.NewPrev, hints.NewNext, cur); err != nil {
			return err
		}

		s.emit(&TransferBondEvent{OldDelegator: sender, NewDelegator: receiver, Amount: new(big.Int).Set(amount)})
		if err := s.checkpoint(receiver, cur); err != nil {
			return err
		}
		logger.Info("transferred bond", "from", sender, "to", receiver, "amount", amount)
		return nil
	})
}
