// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/vechain/stakeledger/metrics"
)

var (
	metricCalls        = metrics.LazyLoadCounterVec("ledger_calls_count", []string{"result"})
	metricEvents       = metrics.LazyLoadCounter("ledger_events_count")
	metricCallDuration = metrics.LazyLoadHistogram("ledger_call_duration_ms", metrics.Bucket10s)
	metricStorageWords = metrics.LazyLoadHistogram("ledger_call_storage_words", []int64{0, 10, 50, 100, 500, 1000, 5000})
)
