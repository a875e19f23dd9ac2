// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bonding

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakeledger/builtin/staker/candidate"
	"github.com/vechain/stakeledger/builtin/staker/delegation"
	"github.com/vechain/stakeledger/builtin/staker/earnings"
	"github.com/vechain/stakeledger/thor"
)

func amount(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		v = new(big.Int)
	}
	return (*math.HexOrDecimal256)(new(big.Int).Set(v))
}

type Round struct {
	Round       uint64 `json:"round"`
	StartBlock  uint64 `json:"startBlock"`
	BlockNumber uint64 `json:"blockNumber"`
	Length      uint64 `json:"length"`
	Initialized bool   `json:"initialized"`
	Locked      bool   `json:"locked"`
}

type Delegator struct {
	Address             thor.Address          `json:"address"`
	Status              string                `json:"status"`
	BondedAmount        *math.HexOrDecimal256 `json:"bondedAmount"`
	Fees                *math.HexOrDecimal256 `json:"fees"`
	DelegateAddress     thor.Address          `json:"delegateAddress"`
	StartRound          uint64                `json:"startRound"`
	LastClaimRound      uint64                `json:"lastClaimRound"`
	NextUnbondingLockID uint64                `json:"nextUnbondingLockId"`
	PendingStake        *math.HexOrDecimal256 `json:"pendingStake"`
	PendingFees         *math.HexOrDecimal256 `json:"pendingFees"`
}

func newDelegator(addr thor.Address, d *delegation.Delegator, status delegation.Status, stake, fees *big.Int) *Delegator {
	return &Delegator{
		Address:             addr,
		Status:              status.String(),
		BondedAmount:        amount(d.BondedAmount),
		Fees:                amount(d.Fees),
		DelegateAddress:     d.DelegateAddress,
		StartRound:          d.StartRound,
		LastClaimRound:      d.LastClaimRound,
		NextUnbondingLockID: d.NextUnbondingLockID,
		PendingStake:        amount(stake),
		PendingFees:         amount(fees),
	}
}

type Transcoder struct {
	Address             thor.Address          `json:"address"`
	Status              string                `json:"status"`
	Active              bool                  `json:"active"`
	RewardCut           uint64                `json:"rewardCut"`
	FeeShare            uint64                `json:"feeShare"`
	PendingRewardCut    uint64                `json:"pendingRewardCut"`
	PendingFeeShare     uint64                `json:"pendingFeeShare"`
	CutsActivationRound uint64                `json:"cutsActivationRound"`
	DelegatedAmount     *math.HexOrDecimal256 `json:"delegatedAmount"`
	LastRewardRound     uint64                `json:"lastRewardRound"`
	LastFeeRound        uint64                `json:"lastFeeRound"`
	ActivationRound     uint64                `json:"activationRound"`
	// nil when the transcoder has no scheduled deactivation
	DeactivationRound *uint64               `json:"deactivationRound"`
	CumulativeRewards *math.HexOrDecimal256 `json:"cumulativeRewards"`
	CumulativeFees    *math.HexOrDecimal256 `json:"cumulativeFees"`
}

// newTranscoder reports the cuts in force at round alongside the scheduled ones.
func newTranscoder(addr thor.Address, c *candidate.Candidate, status string, active bool, round uint64) *Transcoder {
	rewardCut, feeShare := c.EffectiveCuts(round)
	t := &Transcoder{
		Address:             addr,
		Status:              status,
		Active:              active,
		RewardCut:           rewardCut,
		FeeShare:            feeShare,
		PendingRewardCut:    c.PendingRewardCut,
		PendingFeeShare:     c.PendingFeeShare,
		CutsActivationRound: c.CutsActivationRound,
		DelegatedAmount:     amount(c.DelegatedAmount),
		LastRewardRound:     c.LastRewardRound,
		LastFeeRound:        c.LastFeeRound,
		ActivationRound:     c.ActivationRound,
		CumulativeRewards:   amount(c.CumulativeRewards),
		CumulativeFees:      amount(c.CumulativeFees),
	}
	if c.DeactivationRound != thor.MaxFutureRound {
		round := c.DeactivationRound
		t.DeactivationRound = &round
	}
	return t
}

type PoolMember struct {
	Address thor.Address          `json:"address"`
	Stake   *math.HexOrDecimal256 `json:"stake"`
}

type Pool struct {
	MaxSize                   uint64                `json:"maxSize"`
	Members                   []PoolMember          `json:"members"`
	NextRoundTotalActiveStake *math.HexOrDecimal256 `json:"nextRoundTotalActiveStake"`
}

type EarningsPool struct {
	Round                  uint64                `json:"round"`
	TotalStake             *math.HexOrDecimal256 `json:"totalStake"`
	RewardCut              uint64                `json:"rewardCut"`
	FeeShare               uint64                `json:"feeShare"`
	CumulativeRewardFactor *math.HexOrDecimal256 `json:"cumulativeRewardFactor"`
	CumulativeFeeFactor    *math.HexOrDecimal256 `json:"cumulativeFeeFactor"`
}

func newEarningsPool(round uint64, r *earnings.Record) *EarningsPool {
	return &EarningsPool{
		Round:                  round,
		TotalStake:             amount(r.TotalStake),
		RewardCut:              r.RewardCut,
		FeeShare:               r.FeeShare,
		CumulativeRewardFactor: amount(r.CumulativeRewardFactor),
		CumulativeFeeFactor:    amount(r.CumulativeFeeFactor),
	}
}

type UnbondingLock struct {
	ID            uint64                `json:"id"`
	Amount        *math.HexOrDecimal256 `json:"amount"`
	WithdrawRound uint64                `json:"withdrawRound"`
	Valid         bool                  `json:"valid"`
}

type BondingState struct {
	Round    uint64                `json:"round"`
	Amount   *math.HexOrDecimal256 `json:"amount"`
	Delegate thor.Address          `json:"delegate"`
}

type TotalActiveStake struct {
	Round  uint64                `json:"round"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}
