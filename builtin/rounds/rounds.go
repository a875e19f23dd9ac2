// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package rounds derives rounds from a block height and initializes them.
package rounds

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/builtin/params"
	"github.com/vechain/stakeledger/builtin/solidity"
	"github.com/vechain/stakeledger/builtin/staker/mathutil"
	"github.com/vechain/stakeledger/builtin/staker/reverts"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/metrics"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/thor"
)

var (
	logger = log.WithContext("pkg", "rounds")

	metricCurrentRound = metrics.LazyLoadGauge("rounds_current_round")

	slotBlockNum         = thor.BytesToBytes32([]byte("rounds-block-num"))
	slotLastInitialized  = thor.BytesToBytes32([]byte("rounds-last-initialized"))
	slotLengthUpdateRnd  = thor.BytesToBytes32([]byte("rounds-length-update-round"))
	slotLengthUpdateBlck = thor.BytesToBytes32([]byte("rounds-length-update-block"))
)

// StakeSnapshotter fixes the total active stake of the new round.
type StakeSnapshotter interface {
	SetCurrentRoundTotalActiveStake(caller thor.Address) error
}

// RewardSetter sets the tokens mintable in the new round.
type RewardSetter interface {
	SetCurrentRewardTokens() error
}

// Manager is the round clock. The block height only moves forward.
type Manager struct {
	addr   thor.Address
	state  *state.State
	params *params.Params

	staker StakeSnapshotter
	minter RewardSetter

	blockNum         *solidity.Raw[uint64]
	lastInitialized  *solidity.Raw[uint64]
	lengthUpdateRnd  *solidity.Raw[uint64]
	lengthUpdateBlck *solidity.Raw[uint64]
}

func New(addr thor.Address, st *state.State, params *params.Params) *Manager {
	sctx := solidity.NewContext(addr, st, nil)
	return &Manager{
		addr:             addr,
		state:            st,
		params:           params,
		blockNum:         solidity.NewRaw[uint64](sctx, slotBlockNum),
		lastInitialized:  solidity.NewRaw[uint64](sctx, slotLastInitialized),
		lengthUpdateRnd:  solidity.NewRaw[uint64](sctx, slotLengthUpdateRnd),
		lengthUpdateBlck: solidity.NewRaw[uint64](sctx, slotLengthUpdateBlck),
	}
}

// Bind sets the contracts notified when a round is initialized.
func (m *Manager) Bind(staker StakeSnapshotter, minter RewardSetter) {
	m.staker = staker
	m.minter = minter
}

// Address is the caller identity of the manager towards the staker.
func (m *Manager) Address() thor.Address {
	return m.addr
}

func (m *Manager) BlockNum() (uint64, error) {
	return m.blockNum.Get()
}

// AdvanceBlocks moves the block height forward by n.
func (m *Manager) AdvanceBlocks(n uint64) error {
	cur, err := m.blockNum.Get()
	if err != nil {
		return err
	}
	if err := m.blockNum.Set(cur + n); err != nil {
		return err
	}
	if round, err := m.CurrentRound(); err == nil {
		metricCurrentRound().Set(int64(round))
	}
	return nil
}

func (m *Manager) RoundLength() (uint64, error) {
	return m.params.GetUint64(thor.KeyRoundLength)
}

// CurrentRound returns the round of the current block height.
func (m *Manager) CurrentRound() (uint64, error) {
	length, err := m.RoundLength()
	if err != nil {
		return 0, err
	}
	if length == 0 {
		return 0, errors.New("round length is not set")
	}
	block, err := m.blockNum.Get()
	if err != nil {
		return 0, err
	}
	updateRound, err := m.lengthUpdateRnd.Get()
	if err != nil {
		return 0, err
	}
	updateBlock, err := m.lengthUpdateBlck.Get()
	if err != nil {
		return 0, err
	}
	return updateRound + (block-updateBlock)/length, nil
}

// CurrentRoundStartBlock returns the first block of the current round.
func (m *Manager) CurrentRoundStartBlock() (uint64, error) {
	cur, err := m.CurrentRound()
	if err != nil {
		return 0, err
	}
	length, err := m.RoundLength()
	if err != nil {
		return 0, err
	}
	updateRound, err := m.lengthUpdateRnd.Get()
	if err != nil {
		return 0, err
	}
	updateBlock, err := m.lengthUpdateBlck.Get()
	if err != nil {
		return 0, err
	}
	return updateBlock + (cur-updateRound)*length, nil
}

func (m *Manager) LastInitializedRound() (uint64, error) {
	return m.lastInitialized.Get()
}

func (m *Manager) CurrentRoundInitialized() (bool, error) {
	cur, err := m.CurrentRound()
	if err != nil {
		return false, err
	}
	last, err := m.lastInitialized.Get()
	if err != nil {
		return false, err
	}
	return last == cur, nil
}

// CurrentRoundLocked reports whether the current round entered its lock period, the last
// roundLockAmount PPM of its blocks.
func (m *Manager) CurrentRoundLocked() (bool, error) {
	length, err := m.RoundLength()
	if err != nil {
		return false, err
	}
	lockAmount, err := m.params.GetUint64(thor.KeyRoundLockAmount)
	if err != nil {
		return false, err
	}
	start, err := m.CurrentRoundStartBlock()
	if err != nil {
		return false, err
	}
	block, err := m.blockNum.Get()
	if err != nil {
		return false, err
	}
	lockBlocks := mathutil.PercOfPPM(new(big.Int).SetUint64(length), lockAmount).Uint64()
	return block-start >= length-lockBlocks, nil
}

// InitializeRound starts the current round once: it snapshots the total active stake and
// sets the mintable reward tokens.
func (m *Manager) InitializeRound() error {
	rev := m.state.NewCheckpoint()
	if err := m.initializeRound(); err != nil {
		m.state.RevertTo(rev)
		return err
	}
	return nil
}

func (m *Manager) initializeRound() error {
	if m.staker == nil || m.minter == nil {
		return errors.New("rounds manager is not bound")
	}
	ok, err := m.CurrentRoundInitialized()
	if err != nil {
		return err
	}
	if ok {
		return reverts.New("round already initialized")
	}
	cur, err := m.CurrentRound()
	if err != nil {
		return err
	}
	if err := m.lastInitialized.Set(cur); err != nil {
		return err
	}
	if err := m.staker.SetCurrentRoundTotalActiveStake(m.addr); err != nil {
		return err
	}
	if err := m.minter.SetCurrentRewardTokens(); err != nil {
		return err
	}
	logger.Info("round initialized", "round", cur)
	return nil
}

// SetRoundLength changes the round length from the next round boundary.
func (m *Manager) SetRoundLength(length uint64) error {
	if length == 0 {
		return reverts.New("round length cannot be 0")
	}
	cur, err := m.CurrentRound()
	if err != nil {
		return err
	}
	start, err := m.CurrentRoundStartBlock()
	if err != nil {
		return err
	}
	if err := m.lengthUpdateRnd.Set(cur); err != nil {
		return err
	}
	if err := m.lengthUpdateBlck.Set(start); err != nil {
		return err
	}
	return m.params.SetUint64(thor.KeyRoundLength, length)
}
