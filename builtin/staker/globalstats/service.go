// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package globalstats

import (
	"math/big"

	"github.com/vechain/stakeledger/builtin/solidity"
	"github.com/vechain/stakeledger/thor"
)

var (
	slotNextRoundTotalActiveStake    = thor.BytesToBytes32([]byte("next-round-total-active-stake"))
	slotCurrentRoundTotalActiveStake = thor.BytesToBytes32([]byte("current-round-total-active-stake"))
	slotLastSnapshotRound            = thor.BytesToBytes32([]byte("last-snapshot-round"))
	slotTreasuryRewardCutRate        = thor.BytesToBytes32([]byte("treasury-reward-cut-rate"))
	slotNextTreasuryRewardCutRate    = thor.BytesToBytes32([]byte("next-treasury-reward-cut-rate"))
)

// Service manages ledger wide totals.
// The next round total moves with every change to the active set; the current round total is
// a once per round copy of it used as the reward denominator.
type Service struct {
	nextRoundTotalActiveStake    *solidity.Uint256
	currentRoundTotalActiveStake *solidity.Uint256
	lastSnapshotRound            *solidity.Raw[*uint64]

	treasuryRewardCutRate     *solidity.Uint256
	nextTreasuryRewardCutRate *solidity.Uint256
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		nextRoundTotalActiveStake:    solidity.NewUint256(sctx, slotNextRoundTotalActiveStake),
		currentRoundTotalActiveStake: solidity.NewUint256(sctx, slotCurrentRoundTotalActiveStake),
		lastSnapshotRound:            solidity.NewRaw[*uint64](sctx, slotLastSnapshotRound),
		treasuryRewardCutRate:        solidity.NewUint256(sctx, slotTreasuryRewardCutRate),
		nextTreasuryRewardCutRate:    solidity.NewUint256(sctx, slotNextTreasuryRewardCutRate),
	}
}

func (s *Service) NextRoundTotalActiveStake() (*big.Int, error) {
	return s.nextRoundTotalActiveStake.Get()
}

func (s *Service) CurrentRoundTotalActiveStake() (*big.Int, error) {
	return s.currentRoundTotalActiveStake.Get()
}

// AddNextRoundStake increases the next round total when active stake grows.
func (s *Service) AddNextRoundStake(amount *big.Int) error {
	return s.nextRoundTotalActiveStake.Add(amount)
}

// SubNextRoundStake decreases the next round total when active stake shrinks.
func (s *Service) SubNextRoundStake(amount *big.Int) error {
	return s.nextRoundTotalActiveStake.Sub(amount)
}

// LastSnapshotRound returns the round of the last snapshot, ok is false before the first one.
func (s *Service) LastSnapshotRound() (round uint64, ok bool, err error) {
	r, err := s.lastSnapshotRound.Get()
	if err != nil || r == nil {
		return 0, false, err
	}
	return *r, true, nil
}

// Snapshot copies the next round total into the current round total for round.
// It reports false when round was already snapshotted.
func (s *Service) Snapshot(round uint64) (bool, *big.Int, error) {
	last, ok, err := s.LastSnapshotRound()
	if err != nil {
		return false, nil, err
	}
	if ok && last >= round {
		return false, nil, nil
	}
	total, err := s.nextRoundTotalActiveStake.Get()
	if err != nil {
		return false, nil, err
	}
	s.currentRoundTotalActiveStake.Set(total)
	if err := s.lastSnapshotRound.Set(&round); err != nil {
		return false, nil, err
	}
	return true, total, nil
}

// TreasuryRewardCutRate returns the rate in force, in PreciseUnit.
func (s *Service) TreasuryRewardCutRate() (*big.Int, error) {
	return s.treasuryRewardCutRate.Get()
}

// NextTreasuryRewardCutRate returns the rate that takes effect at the next snapshot.
func (s *Service) NextTreasuryRewardCutRate() (*big.Int, error) {
	return s.nextTreasuryRewardCutRate.Get()
}

func (s *Service) SetNextTreasuryRewardCutRate(rate *big.Int) {
	s.nextTreasuryRewardCutRate.Set(rate)
}

// ApplyNextTreasuryRewardCutRate makes the next rate the current one. It reports whether the
// rate changed.
func (s *Service) ApplyNextTreasuryRewardCutRate() (bool, *big.Int, error) {
	cur, err := s.treasuryRewardCutRate.Get()
	if err != nil {
		return false, nil, err
	}
	next, err := s.nextTreasuryRewardCutRate.Get()
	if err != nil {
		return false, nil, err
	}
	if cur.Cmp(next) == 0 {
		return false, cur, nil
	}
	s.treasuryRewardCutRate.Set(next)
	return true, next, nil
}

// ZeroTreasuryRewardCutRate stops the treasury cut now and for the next round.
func (s *Service) ZeroTreasuryRewardCutRate() {
	s.treasuryRewardCutRate.Set(new(big.Int))
	s.nextTreasuryRewardCutRate.Set(new(big.Int))
}
