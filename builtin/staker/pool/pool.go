// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pool implements a bounded doubly linked list kept in descending key order.
// Members with equal keys keep insertion order, so the most recent of them sits closest to the tail.
package pool

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/builtin/solidity"
	"github.com/vechain/stakeledger/metrics"
	"github.com/vechain/stakeledger/thor"
)

var (
	ErrFull          = errors.New("pool is full")
	ErrMember        = errors.New("already a member")
	ErrNotMember     = errors.New("not a member")
	ErrInvalidKey    = errors.New("key must be positive")
	ErrInvalidID     = errors.New("invalid member id")
	ErrMaxSizeTooLow = errors.New("max size below current size")

	metricSearchSteps = metrics.LazyLoadHistogram("pool_search_steps", metrics.BucketPoolSearch)
)

type node struct {
	Key  *big.Int
	Next thor.Address // zero at the tail
	Prev thor.Address // zero at the head
}

// Pool is the storage backed sorted list. Hints passed to Insert and UpdateKey are the expected
// neighbours of the new position; stale or wrong hints only cost a walk along the list.
type Pool struct {
	nodes   *solidity.Mapping[thor.Address, *node]
	head    *solidity.Address
	tail    *solidity.Address
	size    *solidity.Raw[uint64]
	maxSize *solidity.Raw[uint64]
}

// New creates a pool whose slots derive from base.
func New(sctx *solidity.Context, base thor.Bytes32) *Pool {
	slot := func(name string) thor.Bytes32 {
		return thor.Blake2b(base.Bytes(), []byte(name))
	}
	return &Pool{
		nodes:   solidity.NewMapping[thor.Address, *node](sctx, slot("nodes")),
		head:    solidity.NewAddress(sctx, slot("head")),
		tail:    solidity.NewAddress(sctx, slot("tail")),
		size:    solidity.NewRaw[uint64](sctx, slot("size")),
		maxSize: solidity.NewRaw[uint64](sctx, slot("max-size")),
	}
}

func (p *Pool) Size() (uint64, error) {
	return p.size.Get()
}

func (p *Pool) MaxSize() (uint64, error) {
	return p.maxSize.Get()
}

// SetMaxSize changes the capacity. It never evicts, so it may not drop below the current size.
func (p *Pool) SetMaxSize(n uint64) error {
	size, err := p.size.Get()
	if err != nil {
		return err
	}
	if n < size {
		return ErrMaxSizeTooLow
	}
	return p.maxSize.Set(n)
}

func (p *Pool) IsFull() (bool, error) {
	size, err := p.size.Get()
	if err != nil {
		return false, err
	}
	maxSize, err := p.maxSize.Get()
	if err != nil {
		return false, err
	}
	return size >= maxSize, nil
}

func (p *Pool) Contains(id thor.Address) (bool, error) {
	if id.IsZero() {
		return false, nil
	}
	return p.nodes.Exists(id)
}

// Key returns the key of id, zero for non members.
func (p *Pool) Key(id thor.Address) (*big.Int, error) {
	n, err := p.nodes.Get(id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return new(big.Int), nil
	}
	return n.Key, nil
}

// First returns the member with the highest key, zero when empty.
func (p *Pool) First() (thor.Address, error) {
	return p.head.Get()
}

// Last returns the member with the lowest key, zero when empty.
func (p *Pool) Last() (thor.Address, error) {
	return p.tail.Get()
}

func (p *Pool) Next(id thor.Address) (thor.Address, error) {
	n, err := p.nodes.Get(id)
	if err != nil || n == nil {
		return thor.Address{}, err
	}
	return n.Next, nil
}

func (p *Pool) Prev(id thor.Address) (thor.Address, error) {
	n, err := p.nodes.Get(id)
	if err != nil || n == nil {
		return thor.Address{}, err
	}
	return n.Prev, nil
}

// Iter walks the members from the highest key down until fn returns false or an error.
func (p *Pool) Iter(fn func(id thor.Address, key *big.Int) (bool, error)) error {
	ptr, err := p.head.Get()
	if err != nil {
		return err
	}
	for !ptr.IsZero() {
		n, err := p.nodes.Get(ptr)
		if err != nil {
			return err
		}
		if n == nil {
			return errors.Errorf("pool corrupted: dangling member %v", ptr)
		}
		cont, err := fn(ptr, n.Key)
		if err != nil || !cont {
			return err
		}
		ptr = n.Next
	}
	return nil
}

// Insert adds id with key between the hinted neighbours, searching from them when they are not
// a valid position.
func (p *Pool) Insert(id thor.Address, key *big.Int, prevHint, nextHint *thor.Address) error {
	if id.IsZero() {
		return ErrInvalidID
	}
	if key == nil || key.Sign() <= 0 {
		return ErrInvalidKey
	}
	full, err := p.IsFull()
	if err != nil {
		return err
	}
	if full {
		return ErrFull
	}
	member, err := p.Contains(id)
	if err != nil {
		return err
	}
	if member {
		return ErrMember
	}

	prev, next, err := p.position(key, prevHint, nextHint)
	if err != nil {
		return err
	}

	if err := p.nodes.Set(id, &node{Key: new(big.Int).Set(key), Next: next, Prev: prev}); err != nil {
		return err
	}
	if prev.IsZero() {
		p.head.Set(id)
	} else if err := p.link(prev, func(n *node) { n.Next = id }); err != nil {
		return err
	}
	if next.IsZero() {
		p.tail.Set(id)
	} else if err := p.link(next, func(n *node) { n.Prev = id }); err != nil {
		return err
	}

	size, err := p.size.Get()
	if err != nil {
		return err
	}
	return p.size.Set(size + 1)
}

// Remove unlinks id.
func (p *Pool) Remove(id thor.Address) error {
	n, err := p.nodes.Get(id)
	if err != nil {
		return err
	}
	if n == nil {
		return ErrNotMember
	}

	if n.Prev.IsZero() {
		p.head.Set(n.Next)
	} else if err := p.link(n.Prev, func(prev *node) { prev.Next = n.Next }); err != nil {
		return err
	}
	if n.Next.IsZero() {
		p.tail.Set(n.Prev)
	} else if err := p.link(n.Next, func(next *node) { next.Prev = n.Prev }); err != nil {
		return err
	}
	p.nodes.Delete(id)

	size, err := p.size.Get()
	if err != nil {
		return err
	}
	return p.size.Set(size - 1)
}

// UpdateKey moves id to the position of newKey. A zero key removes it.
func (p *Pool) UpdateKey(id thor.Address, newKey *big.Int, prevHint, nextHint *thor.Address) error {
	if err := p.Remove(id); err != nil {
		return err
	}
	if newKey.Sign() == 0 {
		return nil
	}
	return p.Insert(id, newKey, prevHint, nextHint)
}

func (p *Pool) link(id thor.Address, update func(n *node)) error {
	n, err := p.nodes.Get(id)
	if err != nil {
		return err
	}
	if n == nil {
		return errors.Errorf("pool corrupted: missing neighbour %v", id)
	}
	update(n)
	return p.nodes.Set(id, n)
}
