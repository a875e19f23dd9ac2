// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequence(t *testing.T) {
	tests := []struct {
		name  string
		round uint32
		index uint32
	}{
		{"regular", 1, 2},
		{"max round", math.MaxUint32, 1},
		{"max index", 5, math.MaxInt32},
		{"both max", math.MaxUint32, math.MaxInt32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := newSequence(tt.round, tt.index)
			assert.Equal(t, tt.round, seq.Round())
			assert.Equal(t, tt.index, seq.Index())
			assert.True(t, seq >= 0)
		})
	}

	assert.Panics(t, func() { newSequence(1, math.MaxInt32+1) })
	assert.True(t, newSequence(2, 0) > newSequence(1, math.MaxInt32))
}
