// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package minter mints round rewards and holds the bonded stake and fees of the ledger.
package minter

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/builtin/params"
	"github.com/vechain/stakeledger/builtin/solidity"
	"github.com/vechain/stakeledger/builtin/staker/mathutil"
	"github.com/vechain/stakeledger/builtin/staker/reverts"
	"github.com/vechain/stakeledger/builtin/token"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/thor"
)

var (
	logger = log.WithContext("pkg", "minter")

	slotMintable = thor.BytesToBytes32([]byte("minter-current-mintable"))
	slotMinted   = thor.BytesToBytes32([]byte("minter-current-minted"))
)

// Clock returns the current round.
type Clock interface {
	CurrentRound() (uint64, error)
}

// Minter owns two token accounts: the stake vault at its own address and the fee vault.
type Minter struct {
	token  *token.Token
	params *params.Params
	clock  Clock

	stakeVault thor.Address
	feeVault   thor.Address

	mintable *solidity.Uint256
	minted   *solidity.Uint256
}

// New creates a minter whose state lives at addr.
func New(addr, feeVault thor.Address, st *state.State, tok *token.Token, params *params.Params, clock Clock) *Minter {
	sctx := solidity.NewContext(addr, st, nil)
	return &Minter{
		token:      tok,
		params:     params,
		clock:      clock,
		stakeVault: addr,
		feeVault:   feeVault,
		mintable:   solidity.NewUint256(sctx, slotMintable),
		minted:     solidity.NewUint256(sctx, slotMinted),
	}
}

func (m *Minter) round() (uint64, error) {
	return m.clock.CurrentRound()
}

// SetCurrentRewardTokens sets the tokens mintable in the new round to the inflation share of
// the total supply and resets the minted counter.
func (m *Minter) SetCurrentRewardTokens() error {
	supply, err := m.token.GetTotalSupply()
	if err != nil {
		return err
	}
	inflation, err := m.params.GetUint64(thor.KeyInflation)
	if err != nil {
		return err
	}
	mintable := mathutil.PercOfPPM(supply, inflation)
	m.mintable.Set(mintable)
	m.minted.Set(new(big.Int))

	logger.Debug("round reward tokens", "mintable", mintable, "inflation", inflation)
	return nil
}

func (m *Minter) CurrentMintableTokens() (*big.Int, error) {
	return m.mintable.Get()
}

func (m *Minter) CurrentMintedTokens() (*big.Int, error) {
	return m.minted.Get()
}

// CreateReward mints fracNum/fracDenom of the round's mintable tokens into the stake vault.
func (m *Minter) CreateReward(fracNum, fracDenom *big.Int) (*big.Int, error) {
	mintable, err := m.mintable.Get()
	if err != nil {
		return nil, err
	}
	minted, err := m.minted.Get()
	if err != nil {
		return nil, err
	}
	amount := mathutil.PercOf(mintable, fracNum, fracDenom)
	if new(big.Int).Add(minted, amount).Cmp(mintable) > 0 {
		return nil, reverts.NewInvariant("minted tokens cannot exceed mintable tokens")
	}
	if amount.Sign() == 0 {
		return amount, nil
	}
	round, err := m.round()
	if err != nil {
		return nil, err
	}
	if err := m.token.Mint(round, m.stakeVault, amount); err != nil {
		return nil, errors.Wrap(err, "mint reward")
	}
	if err := m.minted.Add(amount); err != nil {
		return nil, err
	}
	return amount, nil
}

// DepositTokens moves amount from the wallet of from into the stake vault.
func (m *Minter) DepositTokens(from thor.Address, amount *big.Int) error {
	return m.move(from, m.stakeVault, amount)
}

// TrustedTransferTokens pays amount out of the stake vault.
func (m *Minter) TrustedTransferTokens(to thor.Address, amount *big.Int) error {
	return m.move(m.stakeVault, to, amount)
}

// TrustedBurnTokens destroys amount held by the stake vault.
func (m *Minter) TrustedBurnTokens(amount *big.Int) error {
	round, err := m.round()
	if err != nil {
		return err
	}
	return m.vaultErr(m.token.Burn(round, m.stakeVault, amount))
}

// DepositFees moves amount from payer into the fee vault.
func (m *Minter) DepositFees(payer thor.Address, amount *big.Int) error {
	return m.move(payer, m.feeVault, amount)
}

// TrustedWithdrawFees pays amount out of the fee vault.
func (m *Minter) TrustedWithdrawFees(to thor.Address, amount *big.Int) error {
	return m.move(m.feeVault, to, amount)
}

// StakeVault is the account holding bonded stake and minted rewards.
func (m *Minter) StakeVault() thor.Address {
	return m.stakeVault
}

// FeeVault is the account holding deposited fees.
func (m *Minter) FeeVault() thor.Address {
	return m.feeVault
}

func (m *Minter) BalanceOf(addr thor.Address) (*big.Int, error) {
	return m.token.GetBalance(addr)
}

func (m *Minter) move(from, to thor.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	round, err := m.round()
	if err != nil {
		return err
	}
	return m.vaultErr(m.token.Transfer(round, from, to, amount))
}

// vaultErr turns a short balance into a revert.
func (m *Minter) vaultErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, token.ErrInsufficientBalance) {
		return reverts.New(err.Error())
	}
	return err
}
