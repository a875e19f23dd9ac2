// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"
)

// Stage abstracts changes on the ledger storage.
type Stage struct {
	state   *State
	changes map[storageKey]rlp.RawValue
	events  []Event
}

// Len returns the number of changed storage slots.
func (s *Stage) Len() int {
	return len(s.changes)
}

// Events returns events emitted by the staged changes.
func (s *Stage) Events() []Event {
	return s.events
}

// Commit writes all changes into the kv store atomically and resets the journal.
func (s *Stage) Commit() error {
	bulk := s.state.store.Bulk()
	for k, v := range s.changes {
		var err error
		if len(v) == 0 {
			err = bulk.Delete(k.dbKey())
		} else {
			err = bulk.Put(k.dbKey(), v)
		}
		if err != nil {
			return &Error{err}
		}
	}
	if err := bulk.Write(); err != nil {
		return &Error{err}
	}
	for k, v := range s.changes {
		s.state.cache.Add(k, v)
	}
	metricStorageWrites().Add(int64(len(s.changes)))
	s.state.reset()
	return nil
}
