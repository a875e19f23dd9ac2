// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/vechain/stakeledger/thor"
)

// Events emitted by the staker. Subject is the account an event is filed under.

type BondEvent struct {
	NewDelegate      thor.Address
	OldDelegate      thor.Address
	Delegator        thor.Address
	AdditionalAmount *big.Int
	BondedAmount     *big.Int
}

func (e *BondEvent) EventName() string     { return "Bond" }
func (e *BondEvent) Subject() thor.Address { return e.Delegator }

type UnbondEvent struct {
	Delegate      thor.Address
	Delegator     thor.Address
	LockID        uint64
	Amount        *big.Int
	WithdrawRound uint64
}

func (e *UnbondEvent) EventName() string     { return "Unbond" }
func (e *UnbondEvent) Subject() thor.Address { return e.Delegator }

type RebondEvent struct {
	Delegate  thor.Address
	Delegator thor.Address
	LockID    uint64
	Amount    *big.Int
}

func (e *RebondEvent) EventName() string     { return "Rebond" }
func (e *RebondEvent) Subject() thor.Address { return e.Delegator }

type WithdrawStakeEvent struct {
	Delegator     thor.Address
	LockID        uint64
	Amount        *big.Int
	WithdrawRound uint64
}

func (e *WithdrawStakeEvent) EventName() string     { return "WithdrawStake" }
func (e *WithdrawStakeEvent) Subject() thor.Address { return e.Delegator }

type WithdrawFeesEvent struct {
	Delegator thor.Address
	Recipient thor.Address
	Amount    *big.Int
}

func (e *WithdrawFeesEvent) EventName() string     { return "WithdrawFees" }
func (e *WithdrawFeesEvent) Subject() thor.Address { return e.Delegator }

type RewardEvent struct {
	Transcoder thor.Address
	Round      uint64
	Amount     *big.Int
}

func (e *RewardEvent) EventName() string     { return "Reward" }
func (e *RewardEvent) Subject() thor.Address { return e.Transcoder }

type TreasuryRewardEvent struct {
	Transcoder thor.Address
	Treasury   thor.Address
	Amount     *big.Int
}

func (e *TreasuryRewardEvent) EventName() string     { return "TreasuryReward" }
func (e *TreasuryRewardEvent) Subject() thor.Address { return e.Transcoder }

type FeesReportedEvent struct {
	Transcoder thor.Address
	Round      uint64
	Fees       *big.Int
}

func (e *FeesReportedEvent) EventName() string     { return "FeesReported" }
func (e *FeesReportedEvent) Subject() thor.Address { return e.Transcoder }

type TranscoderUpdateEvent struct {
	Transcoder      thor.Address
	RewardCut       uint64
	FeeShare        uint64
	ActivationRound uint64
}

func (e *TranscoderUpdateEvent) EventName() string     { return "TranscoderUpdate" }
func (e *TranscoderUpdateEvent) Subject() thor.Address { return e.Transcoder }

type TranscoderActivatedEvent struct {
	Transcoder      thor.Address
	ActivationRound uint64
}

func (e *TranscoderActivatedEvent) EventName() string     { return "TranscoderActivated" }
func (e *TranscoderActivatedEvent) Subject() thor.Address { return e.Transcoder }

type TranscoderDeactivatedEvent struct {
	Transcoder        thor.Address
	DeactivationRound uint64
}

func (e *TranscoderDeactivatedEvent) EventName() string     { return "TranscoderDeactivated" }
func (e *TranscoderDeactivatedEvent) Subject() thor.Address { return e.Transcoder }

type TranscoderSlashedEvent struct {
	Transcoder   thor.Address
	Finder       thor.Address
	Penalty      *big.Int
	FinderReward *big.Int
}

func (e *TranscoderSlashedEvent) EventName() string     { return "TranscoderSlashed" }
func (e *TranscoderSlashedEvent) Subject() thor.Address { return e.Transcoder }

type EarningsClaimedEvent struct {
	Delegate   thor.Address
	Delegator  thor.Address
	Rewards    *big.Int
	Fees       *big.Int
	StartRound uint64
	EndRound   uint64
}

func (e *EarningsClaimedEvent) EventName() string     { return "EarningsClaimed" }
func (e *EarningsClaimedEvent) Subject() thor.Address { return e.Delegator }

type TransferBondEvent struct {
	OldDelegator thor.Address
	NewDelegator thor.Address
	Amount       *big.Int
}

func (e *TransferBondEvent) EventName() string     { return "TransferBond" }
func (e *TransferBondEvent) Subject() thor.Address { return e.OldDelegator }

// StakePoolChangedEvent reports a new pool key of a transcoder, zero once it left the pool.
type StakePoolChangedEvent struct {
	Transcoder thor.Address
	Stake      *big.Int
}

func (e *StakePoolChangedEvent) EventName() string     { return "StakePoolChanged" }
func (e *StakePoolChangedEvent) Subject() thor.Address { return e.Transcoder }

type CheckpointRecordedEvent struct {
	Account         thor.Address
	StartRound      uint64
	BondedAmount    *big.Int
	DelegateAddress thor.Address
	DelegatedAmount *big.Int
	LastClaimRound  uint64
	LastRewardRound uint64
}

func (e *CheckpointRecordedEvent) EventName() string     { return "CheckpointRecorded" }
func (e *CheckpointRecordedEvent) Subject() thor.Address { return e.Account }

// ParameterUpdateEvent reports a governance parameter change.
type ParameterUpdateEvent struct {
	Param string
	Value *big.Int
}

func (e *ParameterUpdateEvent) EventName() string     { return "ParameterUpdate" }
func (e *ParameterUpdateEvent) Subject() thor.Address { return thor.Address{} }
