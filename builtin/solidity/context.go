// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/thor"
)

// Meter counts storage slots loaded and stored through a Context.
type Meter struct {
	loads  uint64
	stores uint64
}

func (m *Meter) Loads() uint64  { return m.loads }
func (m *Meter) Stores() uint64 { return m.stores }

// Total returns loads plus stores.
func (m *Meter) Total() uint64 { return m.loads + m.stores }

func (m *Meter) Reset() {
	m.loads = 0
	m.stores = 0
}

type Context struct {
	address thor.Address
	state   *state.State
	meter   *Meter
}

// NewContext returns a storage context bound to the contract address. The meter may be nil.
func NewContext(address thor.Address, state *state.State, meter *Meter) *Context {
	return &Context{
		address: address,
		state:   state,
		meter:   meter,
	}
}

func (c *Context) State() *state.State {
	return c.state
}

func (c *Context) Address() thor.Address {
	return c.address
}

// toWordSize converts bytes length to the number of 32 bytes slots it occupies.
func toWordSize(length int) uint64 {
	if length == 0 {
		return 1
	}
	return (uint64(length) + 31) / 32
}

func (c *Context) chargeLoad(length int) {
	if c.meter != nil {
		c.meter.loads += toWordSize(length)
	}
}

func (c *Context) chargeStore(length int) {
	if c.meter != nil {
		c.meter.stores += toWordSize(length)
	}
}
