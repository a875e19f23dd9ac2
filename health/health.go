// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"sync"
	"time"
)

const delayBuffer = 5 * time.Second

type RoundProgress struct {
	Round     uint64     `json:"round"`
	Timestamp *time.Time `json:"timestamp"`
}

type Status struct {
	Healthy         bool           `json:"healthy"`
	RoundProgress   *RoundProgress `json:"roundProgress"`
	BlockProduction bool           `json:"blockProduction"`
}

// Health tracks round initialization. Without block production rounds only move on
// demand and the ledger is always healthy.
type Health struct {
	lock             sync.RWMutex
	round            uint64
	roundInitialized time.Time
	producing        bool
	roundDuration    time.Duration
}

func New(roundDuration time.Duration) *Health {
	return &Health{roundDuration: roundDuration}
}

func (h *Health) RoundInitialized(round uint64) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.roundInitialized = time.Now()
	h.round = round
}

func (h *Health) BlockProduction(enabled bool) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.producing = enabled
}

func (h *Health) Status() (*Status, error) {
	h.lock.RLock()
	defer h.lock.RUnlock()

	progress := &RoundProgress{Round: h.round}
	if !h.roundInitialized.IsZero() {
		ts := h.roundInitialized
		progress.Timestamp = &ts
	}

	healthy := !h.producing ||
		time.Since(h.roundInitialized) <= h.roundDuration+delayBuffer

	return &Status{
		Healthy:         healthy,
		RoundProgress:   progress,
		BlockProduction: h.producing,
	}, nil
}
