// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/vechain/stakeledger/builtin/minter"
	"github.com/vechain/stakeledger/builtin/params"
	"github.com/vechain/stakeledger/builtin/rounds"
	"github.com/vechain/stakeledger/builtin/solidity"
	"github.com/vechain/stakeledger/builtin/staker"
	"github.com/vechain/stakeledger/builtin/token"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/thor"
)

// Builtin contracts binding.
var (
	Params = &paramsContract{contractAddress("Params")}
	Token  = &tokenContract{contractAddress("Token")}
	Rounds = &roundsContract{contractAddress("RoundsManager")}
	Minter = &minterContract{contractAddress("Minter"), contractAddress("FeeVault")}
	Staker = &stakerContract{contractAddress("Staker")}
)

type contract struct {
	Address thor.Address
}

func contractAddress(name string) contract {
	return contract{thor.BytesToAddress([]byte(name))}
}

type (
	paramsContract struct{ contract }
	tokenContract  struct{ contract }
	roundsContract struct{ contract }
	minterContract struct {
		contract
		FeeVault contract
	}
	stakerContract struct{ contract }
)

func (p *paramsContract) WithState(st *state.State) *params.Params {
	return params.New(solidity.NewContext(p.Address, st, nil))
}

func (t *tokenContract) WithState(st *state.State) *token.Token {
	return token.New(solidity.NewContext(t.Address, st, nil))
}

func (r *roundsContract) WithState(st *state.State, p *params.Params) *rounds.Manager {
	return rounds.New(r.Address, st, p)
}

func (m *minterContract) WithState(st *state.State, tok *token.Token, p *params.Params, clock minter.Clock) *minter.Minter {
	return minter.New(m.Address, m.FeeVault.Address, st, tok, p, clock)
}

func (s *stakerContract) WithState(st *state.State, p *params.Params, r staker.Rounds, m staker.Minter, meter *solidity.Meter) *staker.Staker {
	return staker.New(s.Address, st, p, r, m, meter)
}
