// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token keeps the balances of the staking token.
package token

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/builtin/solidity"
	"github.com/vechain/stakeledger/thor"
)

var (
	slotAccounts = thor.BytesToBytes32([]byte("token-accounts"))
	slotSupply   = thor.BytesToBytes32([]byte("token-supply"))
	slotMinted   = thor.BytesToBytes32([]byte("total-minted"))
	slotBurned   = thor.BytesToBytes32([]byte("total-burned"))
)

// ErrInsufficientBalance is returned when a debit exceeds the balance.
var ErrInsufficientBalance = errors.New("insufficient balance")

type Token struct {
	accounts *solidity.Mapping[thor.Address, *account]
	supply   *solidity.Uint256
	minted   *solidity.Uint256
	burned   *solidity.Uint256
}

func New(sctx *solidity.Context) *Token {
	return &Token{
		accounts: solidity.NewMapping[thor.Address, *account](sctx, slotAccounts),
		supply:   solidity.NewUint256(sctx, slotSupply),
		minted:   solidity.NewUint256(sctx, slotMinted),
		burned:   solidity.NewUint256(sctx, slotBurned),
	}
}

// GetBalance returns the token balance of addr.
func (t *Token) GetBalance(addr thor.Address) (*big.Int, error) {
	acc, err := t.accounts.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get account")
	}
	return acc.balance(), nil
}

// GetTotalSupply returns the circulating supply, minted minus burned.
func (t *Token) GetTotalSupply() (*big.Int, error) {
	return t.supply.Get()
}

func (t *Token) GetTotalMinted() (*big.Int, error) {
	return t.minted.Get()
}

func (t *Token) GetTotalBurned() (*big.Int, error) {
	return t.burned.Get()
}

func (t *Token) setBalance(addr thor.Address, round uint64, balance *big.Int) error {
	if balance.Sign() == 0 {
		t.accounts.Delete(addr)
		return nil
	}
	if err := t.accounts.Set(addr, &account{Balance: balance, Round: round}); err != nil {
		return errors.Wrap(err, "failed to set account")
	}
	return nil
}

// AddBalance credits addr without touching the supply.
func (t *Token) AddBalance(round uint64, addr thor.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	bal, err := t.GetBalance(addr)
	if err != nil {
		return err
	}
	return t.setBalance(addr, round, bal.Add(bal, amount))
}

// SubBalance debits addr without touching the supply.
func (t *Token) SubBalance(round uint64, addr thor.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	bal, err := t.GetBalance(addr)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return errors.Wrapf(ErrInsufficientBalance, "%v has %v, needs %v", addr, bal, amount)
	}
	return t.setBalance(addr, round, bal.Sub(bal, amount))
}

// Transfer moves amount from one account to another.
func (t *Token) Transfer(round uint64, from, to thor.Address, amount *big.Int) error {
	if err := t.SubBalance(round, from, amount); err != nil {
		return err
	}
	return t.AddBalance(round, to, amount)
}

// Mint creates amount new tokens owned by to.
func (t *Token) Mint(round uint64, to thor.Address, amount *big.Int) error {
	if err := t.AddBalance(round, to, amount); err != nil {
		return err
	}
	if err := t.minted.Add(amount); err != nil {
		return err
	}
	return t.supply.Add(amount)
}

// Burn destroys amount tokens owned by from.
func (t *Token) Burn(round uint64, from thor.Address, amount *big.Int) error {
	if err := t.SubBalance(round, from, amount); err != nil {
		return err
	}
	if err := t.burned.Add(amount); err != nil {
		return err
	}
	return t.supply.Sub(amount)
}
