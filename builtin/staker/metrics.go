// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"github.com/vechain/stakeledger/metrics"
)

var (
	metricOps              = metrics.LazyLoadCounterVec("staker_ops_count", []string{"op"})
	metricReverts          = metrics.LazyLoadCounterVec("staker_reverts_count", []string{"op"})
	metricPoolSize         = metrics.LazyLoadGauge("staker_pool_size")
	metricTotalActiveStake = metrics.LazyLoadGauge("staker_total_active_stake_tokens")
)
