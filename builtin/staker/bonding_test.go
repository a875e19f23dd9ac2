// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/builtin/staker/delegation"
	"github.com/vechain/stakeledger/builtin/staker/reverts"
	"github.com/vechain/stakeledger/test/datagen"
	"github.com/vechain/stakeledger/thor"
)

func TestBond_SelfJoinsPool(t *testing.T) {
	f := newFixture(t, 3)
	alice := datagen.RandAddress()
	f.bond(alice, 1000, alice)

	assert.Equal(t, []thor.Address{alice}, f.poolAddresses())
	assert.Equal(t, "1000", f.delegatedAmount(alice))
	assert.Equal(t, "0", f.balance(alice))
	assert.Equal(t, "1000", f.balance(vaultAddr))

	status, err := f.staker.DelegatorStatus(alice)
	require.NoError(t, err)
	assert.Equal(t, delegation.StatusPending, status)
	active, err := f.staker.IsActiveTranscoder(alice)
	require.NoError(t, err)
	assert.False(t, active, "joins from the next round")

	f.nextRound()
	status, err = f.staker.DelegatorStatus(alice)
	require.NoError(t, err)
	assert.Equal(t, delegation.StatusBonded, status)
	active, err = f.staker.IsActiveTranscoder(alice)
	require.NoError(t, err)
	assert.True(t, active)
	total, err := f.staker.GetTotalBonded()
	require.NoError(t, err)
	assert.Equal(t, "1000", total.String())
}

func TestBond_Validation(t *testing.T) {
	f := newFixture(t, 3)
	alice := datagen.RandAddress()
	f.fund(alice, 1000)

	tests := []struct {
		name   string
		amount *big.Int
		to     thor.Address
	}{
		{"negative amount", big.NewInt(-1), alice},
		{"zero amount for a new bond", big.NewInt(0), alice},
		{"zero delegate", big.NewInt(10), thor.Address{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.staker.Bond(alice, tt.amount, tt.to)
			assert.True(t, reverts.IsRevertErr(err))
		})
	}
	assert.Equal(t, "1000", f.balance(alice))
}

func TestBond_MoveDelegate(t *testing.T) {
	f := newFixture(t, 3)
	alice, carol, bob := datagen.RandAddress(), datagen.RandAddress(), datagen.RandAddress()
	f.register(alice, 1000, 0, 0)
	f.register(carol, 1000, 0, 0)
	f.bond(bob, 500, alice)
	f.nextRound()

	require.NoError(t, f.staker.Bond(bob, big.NewInt(0), carol))
	assert.Equal(t, "1000", f.delegatedAmount(alice))
	assert.Equal(t, "1500", f.delegatedAmount(carol))

	del, err := f.staker.GetDelegator(bob)
	require.NoError(t, err)
	assert.Equal(t, carol, del.DelegateAddress)
	assert.Equal(t, uint64(3), del.StartRound)

	next, err := f.staker.NextRoundTotalActiveStake()
	require.NoError(t, err)
	assert.Equal(t, "2500", next.String())

	err = f.staker.Bond(alice, big.NewInt(0), carol)
	assert.True(t, reverts.IsRevertErr(err), "a registered transcoder keeps its self bond")
}

func TestUnbond_WithdrawRound(t *testing.T) {
	f := newFixture(t, 3)
	alice, bob := datagen.RandAddress(), datagen.RandAddress()
	f.register(alice, 1000, 0, 0)
	f.bond(bob, 500, alice)

	err := f.staker.Unbond(bob, big.NewInt(100))
	assert.True(t, reverts.IsRevertErr(err), "pending delegators can't unbond")

	f.nextRound()
	require.NoError(t, f.staker.Unbond(bob, big.NewInt(200)))
	assert.Equal(t, "1300", f.delegatedAmount(alice))

	lock, err := f.staker.GetUnbondingLock(bob, 0)
	require.NoError(t, err)
	assert.Equal(t, "200", lock.Amount.String())
	assert.Equal(t, uint64(2+1+thor.InitialUnbondingPeriod), lock.WithdrawRound)

	f.rounds.round = lock.WithdrawRound - 1
	err = f.staker.WithdrawStake(bob, 0)
	assert.True(t, reverts.IsRevertErr(err))

	f.rounds.round = lock.WithdrawRound
	require.NoError(t, f.staker.WithdrawStake(bob, 0))
	assert.Equal(t, "200", f.balance(bob))

	valid, err := f.staker.IsValidUnbondingLock(bob, 0)
	require.NoError(t, err)
	assert.False(t, valid)
	err = f.staker.WithdrawStake(bob, 0)
	assert.True(t, reverts.IsRevertErr(err))
}

func TestUnbond_Validation(t *testing.T) {
	f := newFixture(t, 3)
	alice, bob := datagen.RandAddress(), datagen.RandAddress()
	f.register(alice, 1000, 0, 0)
	f.bond(bob, 500, alice)
	f.nextRound()

	assert.True(t, reverts.IsRevertErr(f.staker.Unbond(bob, big.NewInt(0))))
	assert.True(t, reverts.IsRevertErr(f.staker.Unbond(bob, big.NewInt(501))))
	assert.True(t, reverts.IsRevertErr(f.staker.Unbond(datagen.RandAddress(), big.NewInt(1))))
}

func TestUnbond_Full(t *testing.T) {
	f := newFixture(t, 3)
	alice, bob := datagen.RandAddress(), datagen.RandAddress()
	f.register(alice, 1000, 0, 0)
	f.bond(bob, 500, alice)
	f.nextRound()

	require.NoError(t, f.staker.Unbond(bob, big.NewInt(500)))
	del, err := f.staker.GetDelegator(bob)
	require.NoError(t, err)
	assert.True(t, del.DelegateAddress.IsZero())
	status, err := f.staker.DelegatorStatus(bob)
	require.NoError(t, err)
	assert.Equal(t, delegation.StatusUnbonded, status)

	// a transcoder unbonding everything leaves the pool but stays active this round
	require.NoError(t, f.staker.Unbond(alice, big.NewInt(1000)))
	assert.Empty(t, f.poolAddresses())
	active, err := f.staker.IsActiveTranscoder(alice)
	require.NoError(t, err)
	assert.True(t, active)
	next, err := f.staker.NextRoundTotalActiveStake()
	require.NoError(t, err)
	assert.Equal(t, 0, next.Sign())

	f.nextRound()
	active, err = f.staker.IsActiveTranscoder(alice)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestRebond(t *testing.T) {
	f := newFixture(t, 3)
	alice, bob := datagen.RandAddress(), datagen.RandAddress()
	f.register(alice, 1000, 0, 0)
	f.bond(bob, 500, alice)
	f.nextRound()

	require.NoError(t, f.staker.Unbond(bob, big.NewInt(200)))
	assert.True(t, reverts.IsRevertErr(f.staker.Rebond(bob, 1)), "unknown lock")

	require.NoError(t, f.staker.Rebond(bob, 0))
	assert.Equal(t, "1500", f.delegatedAmount(alice))
	del, err := f.staker.GetDelegator(bob)
	require.NoError(t, err)
	assert.Equal(t, "500", del.BondedAmount.String())
	valid, err := f.staker.IsValidUnbondingLock(bob, 0)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestRebondFromUnbonded(t *testing.T) {
	f := newFixture(t, 3)
	alice, carol, bob := datagen.RandAddress(), datagen.RandAddress(), datagen.RandAddress()
	f.register(alice, 1000, 0, 0)
	f.register(carol, 1000, 0, 0)
	f.bond(bob, 500, alice)
	f.nextRound()

	require.NoError(t, f.staker.Unbond(bob, big.NewInt(500)))
	assert.True(t, reverts.IsRevertErr(f.staker.Rebond(bob, 0)), "unbonded delegators rebond to a delegate")

	require.NoError(t, f.staker.RebondFromUnbonded(bob, carol, 0))
	del, err := f.staker.GetDelegator(bob)
	require.NoError(t, err)
	assert.Equal(t, carol, del.DelegateAddress)
	assert.Equal(t, uint64(3), del.StartRound)
	assert.Equal(t, "1000", f.delegatedAmount(alice))
	assert.Equal(t, "1500", f.delegatedAmount(carol))

	assert.True(t, reverts.IsRevertErr(f.staker.RebondFromUnbonded(bob, carol, 0)), "bonded again")
}

func TestWithdrawFees(t *testing.T) {
	f := newFixture(t, 3)
	alice, payer, recipient := datagen.RandAddress(), datagen.RandAddress(), datagen.RandAddress()
	f.register(alice, 1000, 0, 0)
	f.nextRound()

	f.fund(payer, 1000)
	require.NoError(t, f.minter.DepositFees(payer, big.NewInt(1000)))
	require.NoError(t, f.staker.ReportFees(reporterAddr, alice, big.NewInt(1000), 2))
	assert.Equal(t, "1000", f.pendingFees(alice))

	require.NoError(t, f.staker.WithdrawFees(alice, recipient, big.NewInt(600)))
	assert.Equal(t, "600", f.balance(recipient))
	assert.Equal(t, "400", f.balance(feeVaultAddr))

	del, err := f.staker.GetDelegator(alice)
	require.NoError(t, err)
	assert.Equal(t, "400", del.Fees.String())

	assert.True(t, reverts.IsRevertErr(f.staker.WithdrawFees(alice, recipient, big.NewInt(401))))
	assert.True(t, reverts.IsRevertErr(f.staker.WithdrawFees(alice, thor.Address{}, big.NewInt(1))))
	assert.True(t, reverts.IsRevertErr(f.staker.WithdrawFees(alice, recipient, big.NewInt(0))))
}

func TestClaimEarnings(t *testing.T) {
	f := newFixture(t, 3)
	alice, bob := datagen.RandAddress(), datagen.RandAddress()
	f.register(alice, 1000, 500_000, 0)
	f.bond(bob, 1000, alice)
	f.nextRound()
	require.NoError(t, f.staker.Reward(alice))
	f.nextRound()
	f.nextRound()

	assert.True(t, reverts.IsRevertErr(f.staker.ClaimEarnings(bob, 5)), "future round")
	assert.True(t, reverts.IsRevertErr(f.staker.ClaimEarnings(bob, 1)), "already claimed")
	assert.True(t, reverts.IsRevertErr(f.staker.ClaimEarnings(alice, 3)), "transcoders claim through the current round")

	require.NoError(t, f.staker.ClaimEarnings(bob, 3))
	del, err := f.staker.GetDelegator(bob)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), del.LastClaimRound)
	assert.Equal(t, "1250", del.BondedAmount.String())

	evs := f.st.Events()
	claimed, ok := evs[len(evs)-2].(*EarningsClaimedEvent)
	require.True(t, ok)
	assert.Equal(t, "250", claimed.Rewards.String())
	assert.Equal(t, uint64(2), claimed.StartRound)

	require.NoError(t, f.staker.ClaimEarnings(alice, 4))
	del, err = f.staker.GetDelegator(alice)
	require.NoError(t, err)
	assert.Equal(t, "1750", del.BondedAmount.String())
	cand, err := f.staker.GetTranscoder(alice)
	require.NoError(t, err)
	assert.Equal(t, 0, cand.CumulativeRewards.Sign())
	assert.Equal(t, "3000", cand.DelegatedAmount.String())
}

func TestTransferBond(t *testing.T) {
	f := newFixture(t, 3)
	alice, carol := datagen.RandAddress(), datagen.RandAddress()
	bob, dave, eve := datagen.RandAddress(), datagen.RandAddress(), datagen.RandAddress()
	f.register(alice, 1000, 0, 0)
	f.register(carol, 1000, 0, 0)
	f.bond(bob, 500, alice)
	f.bond(eve, 100, carol)

	assert.True(t, reverts.IsRevertErr(f.staker.TransferBond(bob, dave, big.NewInt(100))), "bob is pending")
	f.nextRound()

	require.NoError(t, f.staker.TransferBond(bob, dave, big.NewInt(200)))
	assert.Equal(t, "1500", f.delegatedAmount(alice))

	bobDel, err := f.staker.GetDelegator(bob)
	require.NoError(t, err)
	assert.Equal(t, "300", bobDel.BondedAmount.String())
	valid, err := f.staker.IsValidUnbondingLock(bob, 0)
	require.NoError(t, err)
	assert.False(t, valid, "no withdrawable lock is left behind")

	daveDel, err := f.staker.GetDelegator(dave)
	require.NoError(t, err)
	assert.Equal(t, "200", daveDel.BondedAmount.String())
	assert.Equal(t, alice, daveDel.DelegateAddress)
	assert.Equal(t, uint64(3), daveDel.StartRound)

	next, err := f.staker.NextRoundTotalActiveStake()
	require.NoError(t, err)
	assert.Equal(t, "2600", next.String())

	tests := []struct {
		name     string
		receiver thor.Address
		amount   int64
	}{
		{"to self", bob, 10},
		{"to the zero address", thor.Address{}, 10},
		{"receiver delegated elsewhere", eve, 10},
		{"more than bonded", datagen.RandAddress(), 301},
		{"zero amount", datagen.RandAddress(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.staker.TransferBond(bob, tt.receiver, big.NewInt(tt.amount))
			assert.True(t, reverts.IsRevertErr(err))
		})
	}
}
