// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package minter

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/builtin/params"
	"github.com/vechain/stakeledger/builtin/solidity"
	"github.com/vechain/stakeledger/builtin/staker/reverts"
	"github.com/vechain/stakeledger/builtin/token"
	"github.com/vechain/stakeledger/lvldb"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/test/datagen"
	"github.com/vechain/stakeledger/thor"
)

type fixedClock uint64

func (c fixedClock) CurrentRound() (uint64, error) { return uint64(c), nil }

var (
	vault    = thor.Address{0xaa}
	feeVault = thor.Address{0xfe}
)

func newMinter(t *testing.T) (*Minter, *token.Token) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	st := state.New(db)
	tok := token.New(solidity.NewContext(thor.Address{0x70}, st, nil))
	p := params.New(solidity.NewContext(thor.Address{0x71}, st, nil))
	require.NoError(t, p.Init())
	return New(vault, feeVault, st, tok, p, fixedClock(3)), tok
}

func TestCreateReward(t *testing.T) {
	m, tok := newMinter(t)
	require.NoError(t, tok.Mint(0, datagen.RandAddress(), big.NewInt(1_000_000_000)))
	require.NoError(t, m.SetCurrentRewardTokens())

	mintable, err := m.CurrentMintableTokens()
	require.NoError(t, err)
	assert.Equal(t, "137000", mintable.String())

	reward, err := m.CreateReward(big.NewInt(1), big.NewInt(2))
	require.NoError(t, err)
	assert.Equal(t, "68500", reward.String())

	bal, err := m.BalanceOf(vault)
	require.NoError(t, err)
	assert.Equal(t, "68500", bal.String())

	_, err = m.CreateReward(big.NewInt(1), big.NewInt(2))
	require.NoError(t, err)
	_, err = m.CreateReward(big.NewInt(1), big.NewInt(2))
	assert.True(t, reverts.IsInvariant(err))
}

func TestCreateReward_ZeroDenominator(t *testing.T) {
	m, tok := newMinter(t)
	require.NoError(t, tok.Mint(0, datagen.RandAddress(), big.NewInt(1_000_000_000)))
	require.NoError(t, m.SetCurrentRewardTokens())

	reward, err := m.CreateReward(big.NewInt(1), new(big.Int))
	require.NoError(t, err)
	assert.Equal(t, 0, reward.Sign())
}

func TestVaults(t *testing.T) {
	m, tok := newMinter(t)
	alice := datagen.RandAddress()
	require.NoError(t, tok.Mint(0, alice, big.NewInt(1000)))

	require.NoError(t, m.DepositTokens(alice, big.NewInt(600)))
	require.NoError(t, m.DepositFees(alice, big.NewInt(300)))

	err := m.TrustedTransferTokens(alice, big.NewInt(601))
	assert.True(t, reverts.IsRevertErr(err))

	require.NoError(t, m.TrustedBurnTokens(big.NewInt(100)))
	require.NoError(t, m.TrustedWithdrawFees(alice, big.NewInt(300)))

	bal, err := m.BalanceOf(alice)
	require.NoError(t, err)
	assert.Equal(t, "400", bal.String())
	bal, err = m.BalanceOf(vault)
	require.NoError(t, err)
	assert.Equal(t, "500", bal.String())

	supply, err := tok.GetTotalSupply()
	require.NoError(t, err)
	assert.Equal(t, "900", supply.String())
}
