// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/vechain/stakeledger/builtin/staker/delegation"
	"github.com/vechain/stakeledger/builtin/staker/earnings"
	"github.com/vechain/stakeledger/builtin/staker/reverts"
	"github.com/vechain/stakeledger/thor"
)

// claimInput collects what the earnings ledger needs to value the bond of addr through endRound.
func (s *Staker) claimInput(addr thor.Address, del *delegation.Delegator, endRound uint64) (*earnings.ClaimInput, error) {
	upgrade, err := s.params.GetUint64(thor.KeyCumulativeUpgradeRound)
	if err != nil {
		return nil, err
	}
	in := &earnings.ClaimInput{
		Delegate:       del.DelegateAddress,
		BondedAmount:   del.BondedAmount,
		Fees:           del.Fees,
		LastClaimRound: del.LastClaimRound,
		EndRound:       endRound,
		UpgradeRound:   upgrade,
	}
	if del.DelegateAddress == addr {
		cand, err := s.candidates.Get(addr)
		if err != nil {
			return nil, err
		}
		in.IsTranscoder = true
		in.CumulativeRewards = cand.CumulativeRewards
		in.CumulativeFees = cand.CumulativeFees
	}
	return in, nil
}

// claim realizes the earnings of addr through endRound into del and persists it.
func (s *Staker) claim(addr thor.Address, del *delegation.Delegator, endRound uint64) error {
	if endRound <= del.LastClaimRound {
		return nil
	}
	startRound := del.LastClaimRound + 1

	if del.DelegateAddress.IsZero() || del.BondedAmount.Sign() == 0 {
		del.LastClaimRound = endRound
		return s.delegators.SetDelegator(addr, del)
	}

	in, err := s.claimInput(addr, del, endRound)
	if err != nil {
		return err
	}
	if in.UpgradeRound > startRound {
		legacyEnd := min(endRound, in.UpgradeRound-1)
		if legacyEnd-del.LastClaimRound > MaxEarningsClaimRounds.Get() {
			return reverts.Newf("too many legacy rounds to claim, claim through round %d first",
				del.LastClaimRound+MaxEarningsClaimRounds.Get())
		}
	}

	stake, fees, err := s.earnings.PendingStakeAndFees(in)
	if err != nil {
		return err
	}
	rewards := new(big.Int).Sub(stake, del.BondedAmount)
	newFees := new(big.Int).Sub(fees, del.Fees)

	if in.IsTranscoder {
		cand, err := s.candidates.Get(addr)
		if err != nil {
			return err
		}
		cand.CumulativeRewards = new(big.Int)
		cand.CumulativeFees = new(big.Int)
		if err := s.candidates.Set(addr, cand); err != nil {
			return err
		}
	}

	del.BondedAmount = stake
	del.Fees = fees
	del.LastClaimRound = endRound
	if err := s.delegators.SetDelegator(addr, del); err != nil {
		return err
	}

	s.emit(&EarningsClaimedEvent{
		Delegate:   del.DelegateAddress,
		Delegator:  addr,
		Rewards:    rewards,
		Fees:       newFees,
		StartRound: startRound,
		EndRound:   endRound,
	})
	return nil
}
