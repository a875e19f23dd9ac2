// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/builtin/solidity"
	"github.com/vechain/stakeledger/lvldb"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/test/datagen"
	"github.com/vechain/stakeledger/thor"
)

func newToken(t *testing.T) *Token {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	return New(solidity.NewContext(thor.BytesToAddress([]byte("tok")), state.New(db), nil))
}

func TestMintTransferBurn(t *testing.T) {
	tok := newToken(t)
	alice, bob := datagen.RandAddress(), datagen.RandAddress()

	require.NoError(t, tok.Mint(1, alice, big.NewInt(1000)))
	require.NoError(t, tok.Transfer(1, alice, bob, big.NewInt(300)))
	require.NoError(t, tok.Burn(2, bob, big.NewInt(100)))

	bal, err := tok.GetBalance(alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(700), bal)

	bal, err = tok.GetBalance(bob)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(200), bal)

	supply, err := tok.GetTotalSupply()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(900), supply)

	minted, err := tok.GetTotalMinted()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), minted)

	burned, err := tok.GetTotalBurned()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), burned)
}

func TestInsufficientBalance(t *testing.T) {
	tok := newToken(t)
	alice, bob := datagen.RandAddress(), datagen.RandAddress()

	require.NoError(t, tok.Mint(1, alice, big.NewInt(10)))
	err := tok.Transfer(1, alice, bob, big.NewInt(11))
	assert.True(t, errors.Is(err, ErrInsufficientBalance))

	err = tok.Burn(1, bob, big.NewInt(1))
	assert.True(t, errors.Is(err, ErrInsufficientBalance))

	bal, err := tok.GetBalance(alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10), bal)
}

func TestZeroBalanceClearsAccount(t *testing.T) {
	tok := newToken(t)
	alice := datagen.RandAddress()

	require.NoError(t, tok.Mint(1, alice, big.NewInt(5)))
	require.NoError(t, tok.SubBalance(1, alice, big.NewInt(5)))

	exists, err := tok.accounts.Exists(alice)
	require.NoError(t, err)
	assert.False(t, exists)
}
