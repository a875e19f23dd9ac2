// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package candidate

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/builtin/solidity"
	"github.com/vechain/stakeledger/thor"
)

var slotCandidates = thor.BytesToBytes32([]byte("candidates"))

type Service struct {
	candidates *solidity.Mapping[thor.Address, *Candidate]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		candidates: solidity.NewMapping[thor.Address, *Candidate](sctx, slotCandidates),
	}
}

// Get returns the candidate record of addr, a zero record if there is none.
func (s *Service) Get(addr thor.Address) (*Candidate, error) {
	c, err := s.candidates.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get candidate")
	}
	if c == nil {
		return newCandidate(), nil
	}
	return c, nil
}

func (s *Service) Set(addr thor.Address, c *Candidate) error {
	if err := s.candidates.Set(addr, c); err != nil {
		return errors.Wrap(err, "failed to set candidate")
	}
	return nil
}
