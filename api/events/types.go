// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"encoding/json"

	"github.com/vechain/stakeledger/logdb"
	"github.com/vechain/stakeledger/thor"
)

type Range struct {
	From *uint32 `json:"from,omitempty"`
	To   *uint32 `json:"to,omitempty"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

type Criteria struct {
	Name    *string       `json:"name,omitempty"`
	Subject *thor.Address `json:"subject,omitempty"`
}

type Filter struct {
	CriteriaSet []*Criteria `json:"criteriaSet"`
	Range       *Range      `json:"range"`
	Options     *Options    `json:"options"`
	Order       logdb.Order `json:"order"`
}

type FilteredEvent struct {
	Name    string          `json:"name"`
	Subject thor.Address    `json:"subject"`
	Round   uint32          `json:"round"`
	Index   uint32          `json:"index"`
	Data    json.RawMessage `json:"data"`
}

func convertFilter(f *Filter) *logdb.EventFilter {
	out := &logdb.EventFilter{
		Order: f.Order,
	}
	if f.Range != nil {
		r := &logdb.Range{To: ^uint32(0)}
		if f.Range.From != nil {
			r.From = *f.Range.From
		}
		if f.Range.To != nil {
			r.To = *f.Range.To
		}
		out.Range = r
	}
	if f.Options != nil {
		out.Options = &logdb.Options{Offset: f.Options.Offset, Limit: f.Options.Limit}
	}
	for _, c := range f.CriteriaSet {
		out.CriteriaSet = append(out.CriteriaSet, &logdb.EventCriteria{Name: c.Name, Subject: c.Subject})
	}
	return out
}

func convertEvent(e *logdb.Event) *FilteredEvent {
	return &FilteredEvent{
		Name:    e.Name,
		Subject: e.Subject,
		Round:   e.Round,
		Index:   e.Index,
		Data:    json.RawMessage(e.Data),
	}
}
