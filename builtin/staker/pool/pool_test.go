// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/builtin/solidity"
	"github.com/vechain/stakeledger/lvldb"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/test/datagen"
	"github.com/vechain/stakeledger/thor"
)

func newPool(t *testing.T, maxSize uint64) (*Pool, *solidity.Meter) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	meter := &solidity.Meter{}
	p := New(solidity.NewContext(thor.Address{0xaa}, state.New(db), meter), thor.Bytes32{1})
	require.NoError(t, p.SetMaxSize(maxSize))
	return p, meter
}

type member struct {
	id  thor.Address
	key int64
}

func members(t *testing.T, p *Pool) []member {
	var out []member
	require.NoError(t, p.Iter(func(id thor.Address, key *big.Int) (bool, error) {
		out = append(out, member{id, key.Int64()})
		return true, nil
	}))
	return out
}

func assertSorted(t *testing.T, p *Pool) {
	list := members(t, p)
	size, err := p.Size()
	require.NoError(t, err)
	assert.Equal(t, uint64(len(list)), size)
	assert.True(t, sort.SliceIsSorted(list, func(i, j int) bool { return list[i].key > list[j].key }))

	// walking backwards yields the same members
	last, err := p.Last()
	require.NoError(t, err)
	for i := len(list) - 1; i >= 0; i-- {
		assert.Equal(t, list[i].id, last)
		last, err = p.Prev(last)
		require.NoError(t, err)
	}
	assert.True(t, last.IsZero())
}

func TestInsert_NoHints(t *testing.T) {
	p, _ := newPool(t, 10)
	ids := datagen.RandAddresses(5)
	for i, key := range []int64{30, 50, 10, 40, 20} {
		require.NoError(t, p.Insert(ids[i], big.NewInt(key), nil, nil))
	}
	assertSorted(t, p)

	first, err := p.First()
	require.NoError(t, err)
	assert.Equal(t, ids[1], first)
	last, err := p.Last()
	require.NoError(t, err)
	assert.Equal(t, ids[2], last)
}

func TestInsert_EqualKeysKeepInsertionOrder(t *testing.T) {
	p, _ := newPool(t, 10)
	ids := datagen.RandAddresses(3)
	for _, id := range ids {
		require.NoError(t, p.Insert(id, big.NewInt(7), nil, nil))
	}
	list := members(t, p)
	require.Len(t, list, 3)
	for i, id := range ids {
		assert.Equal(t, id, list[i].id)
	}
}

func TestInsert_Errors(t *testing.T) {
	p, _ := newPool(t, 1)
	id := datagen.RandAddress()

	assert.ErrorIs(t, p.Insert(thor.Address{}, big.NewInt(1), nil, nil), ErrInvalidID)
	assert.ErrorIs(t, p.Insert(id, big.NewInt(0), nil, nil), ErrInvalidKey)

	require.NoError(t, p.Insert(id, big.NewInt(1), nil, nil))
	assert.ErrorIs(t, p.Insert(datagen.RandAddress(), big.NewInt(5), nil, nil), ErrFull)

	require.NoError(t, p.SetMaxSize(2))
	assert.ErrorIs(t, p.Insert(id, big.NewInt(5), nil, nil), ErrMember)
	assert.ErrorIs(t, p.Remove(datagen.RandAddress()), ErrNotMember)

	require.NoError(t, p.Insert(datagen.RandAddress(), big.NewInt(5), nil, nil))
	assert.ErrorIs(t, p.SetMaxSize(1), ErrMaxSizeTooLow)
}

func TestInsert_WrongHints(t *testing.T) {
	p, _ := newPool(t, 20)
	ids := datagen.RandAddresses(10)
	for i, id := range ids {
		require.NoError(t, p.Insert(id, big.NewInt(int64(10*(i+1))), nil, nil))
	}

	stranger := datagen.RandAddress()
	cases := []struct {
		name       string
		key        int64
		prev, next *thor.Address
	}{
		{"unknown hints", 55, &stranger, &stranger},
		{"prev too low", 75, &ids[0], nil},
		{"next too high", 15, nil, &ids[9]},
		{"swapped", 35, &ids[2], &ids[3]},
		{"only prev", 5, &ids[8], nil},
		{"only next", 100, nil, &ids[0]},
		{"new head", 1000, &ids[9], &ids[8]},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.NoError(t, p.Insert(datagen.RandAddress(), big.NewInt(c.key), c.prev, c.next))
			assertSorted(t, p)
		})
	}
}

func TestInsert_CorrectHintsAreConstantCost(t *testing.T) {
	p, meter := newPool(t, 200)
	ids := datagen.RandAddresses(100)
	for i, id := range ids {
		require.NoError(t, p.Insert(id, big.NewInt(int64(1000-i*10)), nil, nil))
	}

	// hinted insert in the middle of the list
	meter.Reset()
	require.NoError(t, p.Insert(datagen.RandAddress(), big.NewInt(505), &ids[49], &ids[50]))
	hinted := meter.Total()

	// unhinted insert near the tail walks the list
	meter.Reset()
	require.NoError(t, p.Insert(datagen.RandAddress(), big.NewInt(15), nil, nil))
	unhinted := meter.Total()

	assert.Less(t, hinted, uint64(30))
	assert.Greater(t, unhinted, 5*hinted)
	assertSorted(t, p)
}

func TestRemove(t *testing.T) {
	p, _ := newPool(t, 10)
	ids := datagen.RandAddresses(4)
	for i, id := range ids {
		require.NoError(t, p.Insert(id, big.NewInt(int64(4-i)), nil, nil))
	}

	// middle, head, tail
	for _, i := range []int{1, 0, 3} {
		require.NoError(t, p.Remove(ids[i]))
		ok, err := p.Contains(ids[i])
		require.NoError(t, err)
		assert.False(t, ok)
		assertSorted(t, p)
	}

	require.NoError(t, p.Remove(ids[2]))
	first, err := p.First()
	require.NoError(t, err)
	last, err := p.Last()
	require.NoError(t, err)
	assert.True(t, first.IsZero())
	assert.True(t, last.IsZero())

	key, err := p.Key(ids[2])
	require.NoError(t, err)
	assert.Equal(t, 0, key.Sign())
}

func TestUpdateKey(t *testing.T) {
	p, _ := newPool(t, 10)
	ids := datagen.RandAddresses(3)
	for i, id := range ids {
		require.NoError(t, p.Insert(id, big.NewInt(int64(30-10*i)), nil, nil))
	}

	require.NoError(t, p.UpdateKey(ids[2], big.NewInt(100), nil, &ids[0]))
	first, err := p.First()
	require.NoError(t, err)
	assert.Equal(t, ids[2], first)
	assertSorted(t, p)

	require.NoError(t, p.UpdateKey(ids[2], big.NewInt(0), nil, nil))
	size, err := p.Size()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), size)
}

func TestValidPosition(t *testing.T) {
	p, _ := newPool(t, 10)

	ok, err := p.ValidPosition(big.NewInt(1), nil, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	a, b := datagen.RandAddress(), datagen.RandAddress()
	require.NoError(t, p.Insert(a, big.NewInt(20), nil, nil))
	require.NoError(t, p.Insert(b, big.NewInt(10), nil, nil))

	for _, c := range []struct {
		key        int64
		prev, next *thor.Address
		want       bool
	}{
		{5, nil, nil, false},
		{21, nil, &a, true},
		{20, nil, &a, false},
		{10, &b, nil, true},
		{11, &b, nil, false},
		{20, &a, &b, true},
		{10, &a, &b, false},
		{15, &b, &a, false},
	} {
		ok, err := p.ValidPosition(big.NewInt(c.key), c.prev, c.next)
		require.NoError(t, err)
		assert.Equal(t, c.want, ok, "key %d", c.key)
	}
}

func TestIter_Stop(t *testing.T) {
	p, _ := newPool(t, 10)
	for i := range 5 {
		require.NoError(t, p.Insert(datagen.RandAddress(), big.NewInt(int64(i+1)), nil, nil))
	}
	var seen int
	require.NoError(t, p.Iter(func(thor.Address, *big.Int) (bool, error) {
		seen++
		return seen < 2, nil
	}))
	assert.Equal(t, 2, seen)
}
