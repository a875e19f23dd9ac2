// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import "math/big"

type account struct {
	Balance *big.Int

	// round of the last change, kept for inspection
	Round uint64
}

func (a *account) balance() *big.Int {
	if a == nil || a.Balance == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(a.Balance)
}
