// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakeledger/thor"
)

// ParamKeys maps the param names accepted in a genesis file to their storage keys.
var ParamKeys = map[string]thor.Bytes32{
	"unbondingPeriod":        thor.KeyUnbondingPeriod,
	"numActiveTranscoders":   thor.KeyNumActiveTranscoders,
	"treasuryRewardCutRate":  thor.KeyTreasuryRewardCutRate,
	"treasuryBalanceCeiling": thor.KeyTreasuryBalanceCeiling,
	"cumulativeUpgradeRound": thor.KeyCumulativeUpgradeRound,
	"inflation":              thor.KeyInflation,
	"roundLength":            thor.KeyRoundLength,
	"roundLockAmount":        thor.KeyRoundLockAmount,
}

// Allocation is an initial token balance.
type Allocation struct {
	Address thor.Address          `yaml:"address" json:"address"`
	Amount  *math.HexOrDecimal256 `yaml:"amount" json:"amount"`
}

// Genesis describes the state a new ledger starts from.
type Genesis struct {
	Treasury    thor.Address                     `yaml:"treasury" json:"treasury"`
	FeeReporter thor.Address                     `yaml:"feeReporter" json:"feeReporter"`
	Verifier    thor.Address                     `yaml:"verifier" json:"verifier"`
	Params      map[string]*math.HexOrDecimal256 `yaml:"params" json:"params"`
	Alloc       []Allocation                     `yaml:"alloc" json:"alloc"`
}

// DevGenesis returns a genesis with default params and no allocations.
func DevGenesis() *Genesis {
	return &Genesis{
		Treasury:    thor.BytesToAddress([]byte("Treasury")),
		FeeReporter: thor.BytesToAddress([]byte("FeeReporter")),
		Verifier:    thor.BytesToAddress([]byte("Verifier")),
	}
}

type paramValue struct {
	name  string
	key   thor.Bytes32
	value *big.Int
}

// params returns the param overrides in name order.
func (g *Genesis) params() ([]paramValue, error) {
	names := make([]string, 0, len(g.Params))
	for name := range g.Params {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]paramValue, 0, len(names))
	for _, name := range names {
		key, ok := ParamKeys[name]
		if !ok {
			return nil, fmt.Errorf("unknown param %q", name)
		}
		v := g.Params[name]
		if v == nil || (*big.Int)(v).Sign() < 0 {
			return nil, fmt.Errorf("invalid value for param %q", name)
		}
		out = append(out, paramValue{name, key, (*big.Int)(v)})
	}
	return out, nil
}
