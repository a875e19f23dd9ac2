// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"github.com/vechain/stakeledger/thor"
)

// Hints are the expected pool neighbours of transcoders whose stake a call changes.
// New* is the position of the delegate the call adds to or takes from. Old* is the position of
// the delegate a bond moves away from. A nil hint is resolved by searching the pool.
type Hints struct {
	OldPrev *thor.Address
	OldNext *thor.Address
	NewPrev *thor.Address
	NewNext *thor.Address
}
