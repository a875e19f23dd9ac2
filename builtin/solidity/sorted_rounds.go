// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/thor"
)

// ErrUnsortedRound is returned when appending a round lower than the last one of an owner.
var ErrUnsortedRound = errors.New("round is lower than the last recorded round")

// SortedRounds is an append-only, per-owner list of ascending round numbers.
// It answers "latest round at or before R" with a binary search, so history lookups
// cost O(log n) slot reads regardless of how many rounds were recorded.
type SortedRounds struct {
	context *Context
	basePos thor.Bytes32
}

func NewSortedRounds(context *Context, pos thor.Bytes32) *SortedRounds {
	return &SortedRounds{context: context, basePos: pos}
}

func (s *SortedRounds) lenPos(owner Key) thor.Bytes32 {
	return thor.Blake2b(owner.Bytes(), s.basePos.Bytes())
}

func (s *SortedRounds) itemPos(owner Key, i uint64) thor.Bytes32 {
	var idx [8]byte
	binary.BigEndian.PutUint64(idx[:], i)
	return thor.Blake2b(owner.Bytes(), s.basePos.Bytes(), idx[:])
}

func (s *SortedRounds) load(pos thor.Bytes32) (uint64, error) {
	v, err := s.context.state.GetStorage(s.context.address, pos)
	if err != nil {
		return 0, err
	}
	s.context.chargeLoad(32)
	return v.Uint64(), nil
}

func (s *SortedRounds) store(pos thor.Bytes32, v uint64) {
	s.context.chargeStore(32)
	s.context.state.SetStorage(s.context.address, pos, thor.Uint64ToBytes32(v))
}

// Len returns the number of rounds recorded for owner.
func (s *SortedRounds) Len(owner Key) (uint64, error) {
	return s.load(s.lenPos(owner))
}

// At returns the i-th recorded round of owner.
func (s *SortedRounds) At(owner Key, i uint64) (uint64, error) {
	return s.load(s.itemPos(owner, i))
}

// Last returns the highest recorded round of owner.
func (s *SortedRounds) Last(owner Key) (round uint64, ok bool, err error) {
	n, err := s.Len(owner)
	if err != nil || n == 0 {
		return 0, false, err
	}
	round, err = s.At(owner, n-1)
	return round, err == nil, err
}

// Push appends round for owner. Pushing the last round again is a no-op.
func (s *SortedRounds) Push(owner Key, round uint64) error {
	n, err := s.Len(owner)
	if err != nil {
		return err
	}
	if n > 0 {
		last, err := s.At(owner, n-1)
		if err != nil {
			return err
		}
		if last == round {
			return nil
		}
		if last > round {
			return errors.Wrapf(ErrUnsortedRound, "push %d after %d", round, last)
		}
	}
	s.store(s.itemPos(owner, n), round)
	s.store(s.lenPos(owner), n+1)
	return nil
}

// Floor returns the latest recorded round of owner that is less than or equal to round.
func (s *SortedRounds) Floor(owner Key, round uint64) (found uint64, ok bool, err error) {
	n, err := s.Len(owner)
	if err != nil || n == 0 {
		return 0, false, err
	}

	// search the first index whose round is greater than the target
	lo, hi := uint64(0), n
	for lo < hi {
		mid := lo + (hi-lo)/2
		v, err := s.At(owner, mid)
		if err != nil {
			return 0, false, err
		}
		if v <= round {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == 0 {
		return 0, false, nil
	}
	found, err = s.At(owner, lo-1)
	if err != nil {
		return 0, false, err
	}
	return found, true, nil
}
