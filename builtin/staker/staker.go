// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/vechain/stakeledger/builtin/params"
	"github.com/vechain/stakeledger/builtin/solidity"
	"github.com/vechain/stakeledger/builtin/staker/candidate"
	"github.com/vechain/stakeledger/builtin/staker/checkpoint"
	"github.com/vechain/stakeledger/builtin/staker/delegation"
	"github.com/vechain/stakeledger/builtin/staker/earnings"
	"github.com/vechain/stakeledger/builtin/staker/globalstats"
	"github.com/vechain/stakeledger/builtin/staker/pool"
	"github.com/vechain/stakeledger/builtin/staker/reverts"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/thor"
)

var (
	logger = log.WithContext("pkg", "staker")

	// MaxEarningsClaimRounds bounds the legacy rounds a single claim may walk.
	MaxEarningsClaimRounds = solidity.NewConfigVariable("staker-max-earnings-claim-rounds", 100)

	slotRoundsManager = thor.BytesToBytes32([]byte("collaborator-rounds-manager"))
	slotFeeReporter   = thor.BytesToBytes32([]byte("collaborator-fee-reporter"))
	slotVerifier      = thor.BytesToBytes32([]byte("collaborator-verifier"))
	slotTreasury      = thor.BytesToBytes32([]byte("collaborator-treasury"))
	slotPool          = thor.BytesToBytes32([]byte("transcoder-pool"))
)

func SetLogger(l log.Logger) {
	logger = l
}

// Rounds is the source of the round clock.
type Rounds interface {
	CurrentRound() (uint64, error)
	CurrentRoundInitialized() (bool, error)
	CurrentRoundLocked() (bool, error)
}

// Minter mints rewards and moves the tokens held by the ledger.
type Minter interface {
	CreateReward(fracNum, fracDenom *big.Int) (*big.Int, error)
	TrustedTransferTokens(to thor.Address, amount *big.Int) error
	TrustedBurnTokens(amount *big.Int) error
	TrustedWithdrawFees(to thor.Address, amount *big.Int) error
	DepositTokens(from thor.Address, amount *big.Int) error
	BalanceOf(addr thor.Address) (*big.Int, error)
}

// Collaborators are the addresses allowed to call the privileged entry points, and the treasury.
type Collaborators struct {
	RoundsManager thor.Address
	FeeReporter   thor.Address
	Verifier      thor.Address
	Treasury      thor.Address
}

// Staker implements the bonding manager: delegation, earnings and the active transcoder set.
type Staker struct {
	state  *state.State
	params *params.Params
	rounds Rounds
	minter Minter

	candidates  *candidate.Service
	delegators  *delegation.Service
	earnings    *earnings.Service
	pool        *pool.Pool
	checkpoints *checkpoint.Service
	stats       *globalstats.Service

	roundsManager *solidity.Address
	feeReporter   *solidity.Address
	verifier      *solidity.Address
	treasury      *solidity.Address
}

// New create a new instance. The meter may be nil.
func New(addr thor.Address, st *state.State, params *params.Params, rounds Rounds, minter Minter, meter *solidity.Meter) *Staker {
	sctx := solidity.NewContext(addr, st, meter)

	MaxEarningsClaimRounds.Override(sctx)

	return &Staker{
		state:  st,
		params: params,
		rounds: rounds,
		minter: minter,

		candidates:  candidate.New(sctx),
		delegators:  delegation.New(sctx),
		earnings:    earnings.New(sctx),
		pool:        pool.New(sctx, slotPool),
		checkpoints: checkpoint.New(sctx),
		stats:       globalstats.New(sctx),

		roundsManager: solidity.NewAddress(sctx, slotRoundsManager),
		feeReporter:   solidity.NewAddress(sctx, slotFeeReporter),
		verifier:      solidity.NewAddress(sctx, slotVerifier),
		treasury:      solidity.NewAddress(sctx, slotTreasury),
	}
}

// Initialize records the collaborators and sizes the transcoder pool from params.
func (s *Staker) Initialize(c Collaborators) error {
	return s.atomic("initialize", func() error {
		s.roundsManager.Set(c.RoundsManager)
		s.feeReporter.Set(c.FeeReporter)
		s.verifier.Set(c.Verifier)
		s.treasury.Set(c.Treasury)

		n, err := s.params.GetUint64(thor.KeyNumActiveTranscoders)
		if err != nil {
			return err
		}
		if err := s.pool.SetMaxSize(n); err != nil {
			return err
		}
		rate, err := s.params.Get(thor.KeyTreasuryRewardCutRate)
		if err != nil {
			return err
		}
		s.stats.SetNextTreasuryRewardCutRate(rate)

		logger.Info("staker initialized", "maxTranscoders", n, "treasury", c.Treasury)
		return nil
	})
}

// atomic runs fn inside a journal checkpoint so that a failing call leaves no trace,
// events included.
func (s *Staker) atomic(op string, fn func() error) error {
	rev := s.state.NewCheckpoint()
	if err := fn(); err != nil {
		s.state.RevertTo(rev)
		metricReverts().AddWithLabel(1, map[string]string{"op": op})
		logger.Debug("call reverted", "op", op, "error", err)
		return err
	}
	metricOps().AddWithLabel(1, map[string]string{"op": op})
	return nil
}

// initializedRound returns the current round, rejecting the call until it is initialized.
func (s *Staker) initializedRound() (uint64, error) {
	ok, err := s.rounds.CurrentRoundInitialized()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, reverts.New("current round is not initialized")
	}
	return s.rounds.CurrentRound()
}

func (s *Staker) onlyCaller(slot *solidity.Address, caller thor.Address, role string) error {
	want, err := slot.Get()
	if err != nil {
		return err
	}
	if want.IsZero() || want != caller {
		return reverts.NewUnauthorized("caller must be " + role)
	}
	return nil
}

func (s *Staker) formula(round uint64) (earnings.Formula, error) {
	upgrade, err := s.params.GetUint64(thor.KeyCumulativeUpgradeRound)
	if err != nil {
		return earnings.Cumulative, err
	}
	return earnings.FormulaFor(round, upgrade), nil
}

func (s *Staker) emit(ev state.Event) {
	s.state.AddEvent(ev)
}

// checkpoint records the bonding state of account effective from the next round.
func (s *Staker) checkpoint(account thor.Address, cur uint64) error {
	del, err := s.delegators.GetDelegator(account)
	if err != nil {
		return err
	}
	cand, err := s.candidates.Get(account)
	if err != nil {
		return err
	}
	cp := &checkpoint.BondingCheckpoint{
		BondedAmount:    new(big.Int).Set(del.BondedAmount),
		DelegateAddress: del.DelegateAddress,
		DelegatedAmount: new(big.Int).Set(cand.DelegatedAmount),
		LastClaimRound:  del.LastClaimRound,
		LastRewardRound: cand.LastRewardRound,
	}
	if err := s.checkpoints.CheckpointBondingState(account, cur+1, cp); err != nil {
		return err
	}
	s.emit(&CheckpointRecordedEvent{
		Account:         account,
		StartRound:      cur + 1,
		BondedAmount:    cp.BondedAmount,
		DelegateAddress: cp.DelegateAddress,
		DelegatedAmount: cp.DelegatedAmount,
		LastClaimRound:  cp.LastClaimRound,
		LastRewardRound: cp.LastRewardRound,
	})
	return nil
}

// CheckpointBondingState records the current bonding state of account. It lets accounts that
// predate checkpointing appear in historical queries.
func (s *Staker) CheckpointBondingState(account thor.Address) error {
	return s.atomic("checkpoint", func() error {
		cur, err := s.initializedRound()
		if err != nil {
			return err
		}
		return s.checkpoint(account, cur)
	})
}
