// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/thor"
)

func TestUint256(t *testing.T) {
	ctx := newContext()
	uint := NewUint256(ctx, thor.Bytes32{01})

	value, err := uint.Get()
	require.NoError(t, err)
	assert.Equal(t, 0, value.Sign())

	uint.Set(big.NewInt(1000))
	assert.Equal(t, uint64(1), ctx.meter.Stores())

	value, err = uint.Get()
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), value)

	require.NoError(t, uint.Add(big.NewInt(500)))
	value, err = uint.Get()
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(1500), value)

	require.NoError(t, uint.Sub(big.NewInt(200)))
	value, err = uint.Get()
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(1300), value)

	assert.Error(t, uint.Sub(big.NewInt(1301)))
	value, err = uint.Get()
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(1300), value, "failed sub must not write")
}
