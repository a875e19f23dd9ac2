// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"github.com/vechain/stakeledger/thor"
)

// Event is a ledger event as stored in the db.
type Event struct {
	Round   uint32
	Index   uint32
	Name    string
	Subject thor.Address
	Data    []byte // json encoded event body
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range is an inclusive round range.
type Range struct {
	From uint32
	To   uint32
}

type Options struct {
	Offset uint64
	Limit  uint64
}

// EventCriteria matches events by name and subject. Nil fields match anything.
type EventCriteria struct {
	Name    *string
	Subject *thor.Address
}

// EventFilter selects events matching any of the criteria within the range.
type EventFilter struct {
	CriteriaSet []*EventCriteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}
