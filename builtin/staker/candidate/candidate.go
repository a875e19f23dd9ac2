// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package candidate

import (
	"math/big"
)

// Candidate is the transcoder side of an address. Its self bond lives in the delegator record
// of the same address.
type Candidate struct {
	RewardCut           uint64 // PPM of rewards kept by the candidate
	FeeShare            uint64 // PPM of fees passed on to delegators
	PendingRewardCut    uint64
	PendingFeeShare     uint64
	CutsActivationRound uint64 // round the pending cuts take effect, 0 if none

	DelegatedAmount            *big.Int // stake delegated to the address, self bond included
	LastActiveStakeUpdateRound uint64
	LastRewardRound            uint64
	LastFeeRound               uint64
	ActivationRound            uint64
	DeactivationRound          uint64

	CumulativeRewards       *big.Int // unclaimed cut, realized into the self bond on claim
	ActiveCumulativeRewards *big.Int // CumulativeRewards as of the last reward call
	CumulativeFees          *big.Int
}

func newCandidate() *Candidate {
	return &Candidate{
		DelegatedAmount:         new(big.Int),
		CumulativeRewards:       new(big.Int),
		ActiveCumulativeRewards: new(big.Int),
		CumulativeFees:          new(big.Int),
	}
}

// IsActive reports whether the candidate is in the active set during round.
func (c *Candidate) IsActive(round uint64) bool {
	return c.ActivationRound <= round && round < c.DeactivationRound
}

// EffectiveCuts returns the cuts in force during round.
func (c *Candidate) EffectiveCuts(round uint64) (rewardCut, feeShare uint64) {
	if c.CutsActivationRound != 0 && round >= c.CutsActivationRound {
		return c.PendingRewardCut, c.PendingFeeShare
	}
	return c.RewardCut, c.FeeShare
}

// ScheduleCuts queues new cuts that take effect at activation. Pending cuts that are already in
// force at round become the active ones first.
func (c *Candidate) ScheduleCuts(round, activation, rewardCut, feeShare uint64) {
	c.RewardCut, c.FeeShare = c.EffectiveCuts(round)
	c.PendingRewardCut = rewardCut
	c.PendingFeeShare = feeShare
	c.CutsActivationRound = activation
}

// ActiveCumulativeRewardsAt is the unclaimed cut that took part in the stake of round.
func (c *Candidate) ActiveCumulativeRewardsAt(round uint64) *big.Int {
	if c.LastRewardRound == round {
		return c.ActiveCumulativeRewards
	}
	return c.CumulativeRewards
}
