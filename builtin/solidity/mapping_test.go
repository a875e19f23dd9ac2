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

	"github.com/vechain/stakeledger/lvldb"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/test/datagen"
	"github.com/vechain/stakeledger/thor"
)

type TestStruct struct {
	Field1 uint64
	Amount *big.Int
	Addr1  thor.Address
	Next   *thor.Address `rlp:"nil"`
}

// newContext returns a fresh Context over an in-memory store with a meter attached.
func newContext() *Context {
	db, _ := lvldb.NewMem()
	return NewContext(thor.Address{1}, state.New(db), &Meter{})
}

func TestMapping_StructPointer(t *testing.T) {
	ctx := newContext()
	mapping := NewMapping[thor.Bytes32, *TestStruct](ctx, thor.Bytes32{1})
	key := datagen.RandomHash()

	t.Run("missing key returns nil", func(t *testing.T) {
		got, err := mapping.Get(key)
		require.NoError(t, err)
		assert.Nil(t, got)

		exists, err := mapping.Exists(key)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("set then get", func(t *testing.T) {
		next := datagen.RandAddress()
		value := &TestStruct{Field1: 100, Amount: big.NewInt(12345), Addr1: datagen.RandAddress(), Next: &next}
		require.NoError(t, mapping.Set(key, value))

		got, err := mapping.Get(key)
		require.NoError(t, err)
		assert.Equal(t, value, got)

		exists, err := mapping.Exists(key)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("nil pointer field round trips", func(t *testing.T) {
		value := &TestStruct{Field1: 1, Amount: big.NewInt(0)}
		require.NoError(t, mapping.Set(key, value))

		got, err := mapping.Get(key)
		require.NoError(t, err)
		assert.Nil(t, got.Next)
		assert.Equal(t, 0, got.Amount.Sign())
	})

	t.Run("delete clears the slot", func(t *testing.T) {
		mapping.Delete(key)
		got, err := mapping.Get(key)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestMapping_ValueTypes(t *testing.T) {
	ctx := newContext()
	amounts := NewMapping[thor.Address, *big.Int](ctx, thor.Bytes32{2})
	flags := NewMapping[thor.Address, TestStruct](ctx, thor.Bytes32{3})

	addr := datagen.RandAddress()
	require.NoError(t, amounts.Set(addr, big.NewInt(42)))
	got, err := amounts.Get(addr)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(42), got)

	empty, err := flags.Get(addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), empty.Field1)
}

func TestMapping_DistinctBasePositions(t *testing.T) {
	ctx := newContext()
	a := NewMapping[thor.Address, uint64](ctx, thor.Bytes32{4})
	b := NewMapping[thor.Address, uint64](ctx, thor.Bytes32{5})

	addr := datagen.RandAddress()
	require.NoError(t, a.Set(addr, 7))

	got, err := b.Get(addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), got)
}

func TestMeter(t *testing.T) {
	ctx := newContext()
	mapping := NewMapping[thor.Bytes32, *TestStruct](ctx, thor.Bytes32{1})
	key := datagen.RandomHash()
	next := datagen.RandAddress()

	require.NoError(t, mapping.Set(key, &TestStruct{Field1: 1, Amount: big.NewInt(1), Next: &next}))
	assert.Equal(t, uint64(2), ctx.meter.Stores(), "struct spans two slots")

	ctx.meter.Reset()
	_, err := mapping.Get(key)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), ctx.meter.Loads())
	assert.Equal(t, uint64(2), ctx.meter.Total())
}

func TestRaw(t *testing.T) {
	ctx := newContext()
	head := NewRaw[*thor.Address](ctx, thor.Bytes32{9})

	got, err := head.Get()
	require.NoError(t, err)
	assert.Nil(t, got)

	addr := datagen.RandAddress()
	require.NoError(t, head.Set(&addr))
	got, err = head.Get()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, addr, *got)

	size := NewRaw[uint64](ctx, thor.Bytes32{10})
	require.NoError(t, size.Set(3))
	n, err := size.Get()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)
}

func TestAddress(t *testing.T) {
	ctx := newContext()
	slot := NewAddress(ctx, thor.Bytes32{11})

	got, err := slot.Get()
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	addr := datagen.RandAddress()
	slot.Set(addr)
	got, err = slot.Get()
	require.NoError(t, err)
	assert.Equal(t, addr, got)
}
