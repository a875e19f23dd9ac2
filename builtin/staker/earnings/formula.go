// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package earnings

// Formula selects how earnings of a round are recorded and claimed.
type Formula uint8

const (
	// Legacy keeps per-round pools that claims divide pro rata, one round at a time.
	Legacy Formula = iota
	// Cumulative keeps monotone factors so a claim reads two snapshots.
	Cumulative
)

func (f Formula) String() string {
	if f == Legacy {
		return "legacy"
	}
	return "cumulative"
}

// FormulaFor returns the formula in effect at round. Rounds before the upgrade round use Legacy;
// an upgrade round of zero means the cumulative formula applies from genesis.
func FormulaFor(round, upgradeRound uint64) Formula {
	if round < upgradeRound {
		return Legacy
	}
	return Cumulative
}
