// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package earnings

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/builtin/solidity"
	"github.com/vechain/stakeledger/lvldb"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/test/datagen"
	"github.com/vechain/stakeledger/thor"
)

func newService(t *testing.T) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	return New(solidity.NewContext(thor.Address{0xee}, state.New(db), nil))
}

// factor returns v * PreciseUnit / 100.
func factor(hundredths int64) *big.Int {
	v := new(big.Int).Mul(thor.PreciseUnit, big.NewInt(hundredths))
	return v.Quo(v, big.NewInt(100))
}

func TestGet_Empty(t *testing.T) {
	svc := newService(t)
	rec, err := svc.Get(datagen.RandAddress(), 7)
	require.NoError(t, err)
	assert.True(t, rec.IsEmpty())

	f, err := svc.LatestFactors(datagen.RandAddress(), 100)
	require.NoError(t, err)
	assert.Equal(t, InitialFactors(), f)
}

func TestApplyReward_Cumulative(t *testing.T) {
	svc := newService(t)
	cand := datagen.RandAddress()

	require.NoError(t, svc.SetStake(cand, 5, big.NewInt(2000)))
	require.NoError(t, svc.SetCommission(cand, 5, 500_000, 0))

	split, err := svc.ApplyReward(cand, 5, big.NewInt(1000), big.NewInt(0), Cumulative)
	require.NoError(t, err)
	assert.False(t, split.Skipped)
	assert.Equal(t, big.NewInt(500), split.Commission)
	assert.Equal(t, big.NewInt(500), split.DelegatorsRewards)
	assert.Equal(t, big.NewInt(500), split.TranscoderShare)

	f, err := svc.LatestFactors(cand, 5)
	require.NoError(t, err)
	assert.Equal(t, factor(125), f.RewardFactor)

	// later rounds see the same factors until something new is recorded
	f, err = svc.LatestFactors(cand, 40)
	require.NoError(t, err)
	assert.Equal(t, factor(125), f.RewardFactor)

	// earlier rounds do not
	f, err = svc.LatestFactors(cand, 4)
	require.NoError(t, err)
	assert.Equal(t, InitialFactors(), f)
}

func TestApplyReward_Idempotent(t *testing.T) {
	svc := newService(t)
	cand := datagen.RandAddress()
	require.NoError(t, svc.SetStake(cand, 1, big.NewInt(1000)))

	_, err := svc.ApplyReward(cand, 1, big.NewInt(100), big.NewInt(0), Cumulative)
	require.NoError(t, err)
	before, err := svc.Get(cand, 1)
	require.NoError(t, err)

	split, err := svc.ApplyReward(cand, 1, big.NewInt(100), big.NewInt(0), Cumulative)
	require.NoError(t, err)
	assert.True(t, split.Skipped)
	assert.Equal(t, 0, split.TranscoderShare.Sign())

	after, err := svc.Get(cand, 1)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestApplyReward_ZeroStake(t *testing.T) {
	svc := newService(t)
	cand := datagen.RandAddress()

	split, err := svc.ApplyReward(cand, 3, big.NewInt(100), big.NewInt(0), Cumulative)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), split.TranscoderShare)

	f, err := svc.LatestFactors(cand, 3)
	require.NoError(t, err)
	assert.Equal(t, thor.PreciseUnit, f.RewardFactor)
}

func TestApplyReward_CarriesPreviousFactors(t *testing.T) {
	svc := newService(t)
	cand := datagen.RandAddress()

	require.NoError(t, svc.SetStake(cand, 2, big.NewInt(1000)))
	_, err := svc.ApplyReward(cand, 2, big.NewInt(1000), big.NewInt(0), Cumulative)
	require.NoError(t, err)

	require.NoError(t, svc.SetStake(cand, 9, big.NewInt(2000)))
	_, err = svc.ApplyReward(cand, 9, big.NewInt(1000), big.NewInt(0), Cumulative)
	require.NoError(t, err)

	// 2.0 * (1 + 1000/2000)
	f, err := svc.LatestFactors(cand, 9)
	require.NoError(t, err)
	assert.Equal(t, factor(300), f.RewardFactor)

	f, err = svc.LatestFactors(cand, 8)
	require.NoError(t, err)
	assert.Equal(t, factor(200), f.RewardFactor)
}

func TestApplyFees_OncePerRound(t *testing.T) {
	t.Run("cumulative", func(t *testing.T) {
		svc := newService(t)
		cand := datagen.RandAddress()

		require.NoError(t, svc.SetStake(cand, 4, big.NewInt(1000)))
		require.NoError(t, svc.SetCommission(cand, 4, 0, 750_000))

		split, err := svc.ApplyFees(cand, 4, big.NewInt(400), big.NewInt(0), Cumulative)
		require.NoError(t, err)
		assert.False(t, split.Skipped)
		assert.Equal(t, big.NewInt(100), split.Commission)
		assert.Equal(t, big.NewInt(300), split.DelegatorsFees)
		assert.Equal(t, big.NewInt(100), split.TranscoderShare)

		split, err = svc.ApplyFees(cand, 4, big.NewInt(600), big.NewInt(0), Cumulative)
		require.NoError(t, err)
		assert.True(t, split.Skipped)
		assert.Equal(t, 0, split.Commission.Sign())
		assert.Equal(t, 0, split.DelegatorsFees.Sign())
		assert.Equal(t, 0, split.TranscoderShare.Sign())

		f, err := svc.LatestFactors(cand, 4)
		require.NoError(t, err)
		// 300 delegator fees for 1000 stake, the second report left it unchanged
		assert.Equal(t, factor(30), f.FeeFactor)
		assert.Equal(t, thor.PreciseUnit, f.RewardFactor)

		rec, err := svc.Get(cand, 4)
		require.NoError(t, err)
		assert.True(t, rec.FeesApplied)
	})

	t.Run("legacy", func(t *testing.T) {
		svc := newService(t)
		cand := datagen.RandAddress()

		require.NoError(t, svc.SetStake(cand, 1, big.NewInt(1000)))
		require.NoError(t, svc.SetCommission(cand, 1, 0, 500_000))

		_, err := svc.ApplyFees(cand, 1, big.NewInt(200), big.NewInt(0), Legacy)
		require.NoError(t, err)
		split, err := svc.ApplyFees(cand, 1, big.NewInt(800), big.NewInt(0), Legacy)
		require.NoError(t, err)
		assert.True(t, split.Skipped)

		rec, err := svc.Get(cand, 1)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(100), rec.FeePool)
		assert.Equal(t, big.NewInt(100), rec.TranscoderFeePool)
	})
}

func TestApplyFees_UsesPreviousRewardFactor(t *testing.T) {
	svc := newService(t)
	cand := datagen.RandAddress()

	require.NoError(t, svc.SetStake(cand, 1, big.NewInt(1000)))
	_, err := svc.ApplyReward(cand, 1, big.NewInt(1000), big.NewInt(0), Cumulative)
	require.NoError(t, err)

	require.NoError(t, svc.SetStake(cand, 2, big.NewInt(2000)))
	require.NoError(t, svc.SetCommission(cand, 2, 0, thor.PPM))
	_, err = svc.ApplyReward(cand, 2, big.NewInt(2000), big.NewInt(0), Cumulative)
	require.NoError(t, err)
	_, err = svc.ApplyFees(cand, 2, big.NewInt(200), big.NewInt(0), Cumulative)
	require.NoError(t, err)

	f, err := svc.LatestFactors(cand, 2)
	require.NoError(t, err)
	assert.Equal(t, factor(400), f.RewardFactor)
	// prev factor 2.0 * 200 / 2000
	assert.Equal(t, factor(20), f.FeeFactor)
}

func TestFactorsMonotonic(t *testing.T) {
	svc := newService(t)
	cand := datagen.RandAddress()

	prev := InitialFactors()
	for round := uint64(1); round <= 30; round++ {
		require.NoError(t, svc.SetStake(cand, round, datagen.RandAmount(1_000_000)))
		require.NoError(t, svc.SetCommission(cand, round, uint64(datagen.RandIntN(int(thor.PPM))), uint64(datagen.RandIntN(int(thor.PPM)))))
		if datagen.RandIntN(2) == 0 {
			_, err := svc.ApplyReward(cand, round, datagen.RandAmount(10_000), big.NewInt(0), Cumulative)
			require.NoError(t, err)
		}
		if datagen.RandIntN(2) == 0 {
			_, err := svc.ApplyFees(cand, round, datagen.RandAmount(10_000), big.NewInt(0), Cumulative)
			require.NoError(t, err)
		}
		f, err := svc.LatestFactors(cand, round)
		require.NoError(t, err)
		assert.True(t, f.RewardFactor.Cmp(prev.RewardFactor) >= 0, "reward factor decreased at round %d", round)
		assert.True(t, f.FeeFactor.Cmp(prev.FeeFactor) >= 0, "fee factor decreased at round %d", round)
		prev = f
	}
}

func TestApplyLegacy(t *testing.T) {
	svc := newService(t)
	cand := datagen.RandAddress()

	require.NoError(t, svc.SetStake(cand, 1, big.NewInt(1000)))
	require.NoError(t, svc.SetCommission(cand, 1, 100_000, 500_000))

	split, err := svc.ApplyReward(cand, 1, big.NewInt(1000), big.NewInt(0), Legacy)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), split.Commission)
	assert.Equal(t, 0, split.TranscoderShare.Sign())

	_, err = svc.ApplyFees(cand, 1, big.NewInt(200), big.NewInt(0), Legacy)
	require.NoError(t, err)

	rec, err := svc.Get(cand, 1)
	require.NoError(t, err)
	assert.False(t, rec.HasFactors)
	assert.Equal(t, big.NewInt(900), rec.RewardPool)
	assert.Equal(t, big.NewInt(100), rec.TranscoderRewardPool)
	assert.Equal(t, big.NewInt(100), rec.FeePool)
	assert.Equal(t, big.NewInt(100), rec.TranscoderFeePool)
	assert.Equal(t, big.NewInt(1000), rec.ClaimableStake)

	// legacy rounds leave the factor index untouched
	f, err := svc.LatestFactors(cand, 1)
	require.NoError(t, err)
	assert.Equal(t, InitialFactors(), f)
}

func TestPendingStakeAndFees(t *testing.T) {
	svc := newService(t)
	cand := datagen.RandAddress()

	// round 1: 2000 stake, 50% cut, 1000 reward
	require.NoError(t, svc.SetStake(cand, 1, big.NewInt(2000)))
	require.NoError(t, svc.SetCommission(cand, 1, 500_000, 500_000))
	_, err := svc.ApplyReward(cand, 1, big.NewInt(1000), big.NewInt(0), Cumulative)
	require.NoError(t, err)

	t.Run("delegator", func(t *testing.T) {
		stake, fees, err := svc.PendingStakeAndFees(&ClaimInput{
			Delegate:       cand,
			BondedAmount:   big.NewInt(1000),
			Fees:           big.NewInt(0),
			LastClaimRound: 0,
			EndRound:       1,
		})
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(1250), stake)
		assert.Equal(t, 0, fees.Sign())
	})

	t.Run("transcoder adds its cut", func(t *testing.T) {
		stake, _, err := svc.PendingStakeAndFees(&ClaimInput{
			Delegate:          cand,
			BondedAmount:      big.NewInt(1000),
			Fees:              big.NewInt(0),
			LastClaimRound:    0,
			EndRound:          1,
			IsTranscoder:      true,
			CumulativeRewards: big.NewInt(500),
			CumulativeFees:    big.NewInt(0),
		})
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(1750), stake)
	})

	t.Run("nothing to claim", func(t *testing.T) {
		stake, fees, err := svc.PendingStakeAndFees(&ClaimInput{
			Delegate:       cand,
			BondedAmount:   big.NewInt(1000),
			Fees:           big.NewInt(3),
			LastClaimRound: 1,
			EndRound:       1,
		})
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(1000), stake)
		assert.Equal(t, big.NewInt(3), fees)
	})

	t.Run("fees after reward", func(t *testing.T) {
		require.NoError(t, svc.SetStake(cand, 2, big.NewInt(2500)))
		require.NoError(t, svc.SetCommission(cand, 2, 500_000, thor.PPM))
		_, err := svc.ApplyFees(cand, 2, big.NewInt(250), big.NewInt(0), Cumulative)
		require.NoError(t, err)

		// 1250 of 2500 stake earns half the fees
		stake, fees, err := svc.PendingStakeAndFees(&ClaimInput{
			Delegate:       cand,
			BondedAmount:   big.NewInt(1000),
			Fees:           big.NewInt(0),
			LastClaimRound: 0,
			EndRound:       2,
		})
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(1250), stake)
		assert.Equal(t, big.NewInt(125), fees)
	})
}

func TestPendingStakeAndFees_LegacyThenCumulative(t *testing.T) {
	svc := newService(t)
	cand := datagen.RandAddress()
	const upgrade = 3

	// legacy round 1: stake 1000, full reward to delegators
	require.NoError(t, svc.SetStake(cand, 1, big.NewInt(1000)))
	_, err := svc.ApplyReward(cand, 1, big.NewInt(100), big.NewInt(0), FormulaFor(1, upgrade))
	require.NoError(t, err)

	// cumulative round 3: stake 1100
	require.NoError(t, svc.SetStake(cand, 3, big.NewInt(1100)))
	_, err = svc.ApplyReward(cand, 3, big.NewInt(110), big.NewInt(0), FormulaFor(3, upgrade))
	require.NoError(t, err)

	stake, _, err := svc.PendingStakeAndFees(&ClaimInput{
		Delegate:       cand,
		BondedAmount:   big.NewInt(500),
		Fees:           big.NewInt(0),
		LastClaimRound: 0,
		EndRound:       3,
		UpgradeRound:   upgrade,
	})
	require.NoError(t, err)
	// 500 + 50 in round 1, then * 1.1
	assert.Equal(t, big.NewInt(605), stake)
}

func TestFormulaFor(t *testing.T) {
	assert.Equal(t, Cumulative, FormulaFor(0, 0))
	assert.Equal(t, Legacy, FormulaFor(4, 5))
	assert.Equal(t, Cumulative, FormulaFor(5, 5))
	assert.Equal(t, "cumulative", Cumulative.String())
}
