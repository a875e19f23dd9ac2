// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/vechain/stakeledger/thor"
)

// ValidPosition reports whether key fits right between prev and next. A nil side means the
// respective end of the list.
func (p *Pool) ValidPosition(key *big.Int, prev, next *thor.Address) (bool, error) {
	switch {
	case prev == nil && next == nil:
		size, err := p.size.Get()
		return size == 0, err
	case prev == nil:
		head, err := p.head.Get()
		if err != nil || head != *next || head.IsZero() {
			return false, err
		}
		headKey, err := p.Key(head)
		if err != nil {
			return false, err
		}
		return key.Cmp(headKey) > 0, nil
	case next == nil:
		tail, err := p.tail.Get()
		if err != nil || tail != *prev || tail.IsZero() {
			return false, err
		}
		tailKey, err := p.Key(tail)
		if err != nil {
			return false, err
		}
		return key.Cmp(tailKey) <= 0, nil
	default:
		prevNode, err := p.nodes.Get(*prev)
		if err != nil || prevNode == nil || prevNode.Next != *next {
			return false, err
		}
		nextNode, err := p.nodes.Get(*next)
		if err != nil || nextNode == nil {
			return false, err
		}
		return prevNode.Key.Cmp(key) >= 0 && key.Cmp(nextNode.Key) > 0, nil
	}
}

// position returns the neighbours for key, zero meaning the end of the list.
func (p *Pool) position(key *big.Int, prevHint, nextHint *thor.Address) (prev, next thor.Address, err error) {
	valid, err := p.ValidPosition(key, prevHint, nextHint)
	if err != nil {
		return
	}
	if valid {
		metricSearchSteps().Observe(0)
		if prevHint != nil {
			prev = *prevHint
		}
		if nextHint != nil {
			next = *nextHint
		}
		return
	}

	// drop hints that cannot bound the position
	if prevHint != nil {
		prevKey, ok, err := p.memberKey(*prevHint)
		if err != nil {
			return prev, next, err
		}
		if !ok || key.Cmp(prevKey) > 0 {
			prevHint = nil
		}
	}
	if nextHint != nil {
		nextKey, ok, err := p.memberKey(*nextHint)
		if err != nil {
			return prev, next, err
		}
		if !ok || key.Cmp(nextKey) <= 0 {
			nextHint = nil
		}
	}

	var steps int64
	switch {
	case prevHint != nil:
		prev, next, steps, err = p.descend(key, *prevHint)
	case nextHint != nil:
		prev, next, steps, err = p.ascend(key, *nextHint)
	default:
		var head thor.Address
		if head, err = p.head.Get(); err != nil {
			return
		}
		prev, next, steps, err = p.descend(key, head)
	}
	metricSearchSteps().Observe(steps)
	return
}

func (p *Pool) memberKey(id thor.Address) (*big.Int, bool, error) {
	n, err := p.nodes.Get(id)
	if err != nil || n == nil {
		return nil, false, err
	}
	return n.Key, true, nil
}

// descend walks toward the tail from start, whose key is known to be >= key unless start is the head.
func (p *Pool) descend(key *big.Int, start thor.Address) (prev, next thor.Address, steps int64, err error) {
	if start.IsZero() {
		return
	}
	startNode, err := p.nodes.Get(start)
	if err != nil {
		return
	}
	if startNode == nil {
		return prev, next, steps, ErrNotMember
	}
	if startNode.Prev.IsZero() && key.Cmp(startNode.Key) > 0 {
		return thor.Address{}, start, 0, nil
	}

	prev, next = start, startNode.Next
	for !next.IsZero() {
		n, err := p.nodes.Get(next)
		if err != nil {
			return prev, next, steps, err
		}
		if n.Key.Cmp(key) < 0 {
			break
		}
		prev, next = next, n.Next
		steps++
	}
	return
}

// ascend walks toward the head from start, whose key is known to be < key.
func (p *Pool) ascend(key *big.Int, start thor.Address) (prev, next thor.Address, steps int64, err error) {
	startNode, err := p.nodes.Get(start)
	if err != nil {
		return
	}
	if startNode == nil {
		return prev, next, steps, ErrNotMember
	}
	next, prev = start, startNode.Prev
	for !prev.IsZero() {
		n, err := p.nodes.Get(prev)
		if err != nil {
			return prev, next, steps, err
		}
		if n.Key.Cmp(key) >= 0 {
			break
		}
		next, prev = prev, n.Prev
		steps++
	}
	return
}
