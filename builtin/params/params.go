// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/builtin/solidity"
	"github.com/vechain/stakeledger/thor"
)

// Params binder of the governance params store.
type Params struct {
	values *solidity.Mapping[thor.Bytes32, *big.Int]
}

func New(sctx *solidity.Context) *Params {
	return &Params{
		values: solidity.NewMapping[thor.Bytes32, *big.Int](sctx, thor.BytesToBytes32([]byte("params"))),
	}
}

// Get native way to get param. Unset params read as zero.
func (p *Params) Get(key thor.Bytes32) (*big.Int, error) {
	v, err := p.values.Get(key)
	if err != nil {
		return nil, errors.Wrapf(err, "get param %v", key.AbbrevString())
	}
	if v == nil {
		return new(big.Int), nil
	}
	return v, nil
}

// GetUint64 reads a param that must fit into uint64.
func (p *Params) GetUint64(key thor.Bytes32) (uint64, error) {
	v, err := p.Get(key)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, errors.Errorf("param %v out of range: %v", key.AbbrevString(), v)
	}
	return v.Uint64(), nil
}

// Set native way to set param.
func (p *Params) Set(key thor.Bytes32, value *big.Int) error {
	if value == nil || value.Sign() < 0 {
		return errors.Errorf("invalid value for param %v", key.AbbrevString())
	}
	return p.values.Set(key, value)
}

// SetUint64 is Set for small params.
func (p *Params) SetUint64(key thor.Bytes32, value uint64) error {
	return p.Set(key, new(big.Int).SetUint64(value))
}

// Defaults are the initial values written by Init.
var Defaults = map[thor.Bytes32]uint64{
	thor.KeyUnbondingPeriod:      thor.InitialUnbondingPeriod,
	thor.KeyNumActiveTranscoders: thor.InitialNumActiveTranscoders,
	thor.KeyRoundLength:          thor.InitialRoundLength,
	thor.KeyRoundLockAmount:      thor.InitialRoundLockAmount,
	thor.KeyInflation:            thor.InitialInflation,
}

// Init writes Defaults for every param that is still unset.
func (p *Params) Init() error {
	for key, value := range Defaults {
		cur, err := p.Get(key)
		if err != nil {
			return err
		}
		if cur.Sign() != 0 {
			continue
		}
		if err := p.SetUint64(key, value); err != nil {
			return err
		}
	}
	return nil
}
