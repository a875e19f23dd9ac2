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

	"github.com/vechain/stakeledger/builtin/minter"
	"github.com/vechain/stakeledger/builtin/params"
	"github.com/vechain/stakeledger/builtin/solidity"
	"github.com/vechain/stakeledger/builtin/staker/reverts"
	"github.com/vechain/stakeledger/builtin/token"
	"github.com/vechain/stakeledger/lvldb"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/test/datagen"
	"github.com/vechain/stakeledger/thor"
)

var (
	stakerAddr   = thor.Address{0x51}
	vaultAddr    = thor.Address{0x52}
	feeVaultAddr = thor.Address{0x53}
	managerAddr  = thor.Address{0x54}
	reporterAddr = thor.Address{0x55}
	verifierAddr = thor.Address{0x56}
	treasuryAddr = thor.Address{0x57}
)

type testRounds struct {
	round         uint64
	uninitialized bool
	locked        bool
}

func (r *testRounds) CurrentRound() (uint64, error)          { return r.round, nil }
func (r *testRounds) CurrentRoundInitialized() (bool, error) { return !r.uninitialized, nil }
func (r *testRounds) CurrentRoundLocked() (bool, error)      { return r.locked, nil }

// testMinter mints a fixed reward instead of the inflation share.
type testMinter struct {
	*minter.Minter
	tok    *token.Token
	rounds *testRounds
	reward *big.Int
}

func (m *testMinter) CreateReward(_, _ *big.Int) (*big.Int, error) {
	amount := new(big.Int).Set(m.reward)
	if amount.Sign() == 0 {
		return amount, nil
	}
	return amount, m.tok.Mint(m.rounds.round, vaultAddr, amount)
}

type fixture struct {
	t      *testing.T
	st     *state.State
	params *params.Params
	tok    *token.Token
	rounds *testRounds
	minter *testMinter
	meter  *solidity.Meter
	staker *Staker
}

func newFixture(t *testing.T, maxTranscoders uint64) *fixture {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	st := state.New(db)

	p := params.New(solidity.NewContext(thor.Address{0x50}, st, nil))
	require.NoError(t, p.Init())
	require.NoError(t, p.SetUint64(thor.KeyNumActiveTranscoders, maxTranscoders))

	rounds := &testRounds{round: 1}
	tok := token.New(solidity.NewContext(thor.Address{0x4f}, st, nil))
	m := &testMinter{
		Minter: minter.New(vaultAddr, feeVaultAddr, st, tok, p, rounds),
		tok:    tok,
		rounds: rounds,
		reward: big.NewInt(1000),
	}
	meter := &solidity.Meter{}
	s := New(stakerAddr, st, p, rounds, m, meter)
	require.NoError(t, s.Initialize(Collaborators{
		RoundsManager: managerAddr,
		FeeReporter:   reporterAddr,
		Verifier:      verifierAddr,
		Treasury:      treasuryAddr,
	}))

	f := &fixture{t: t, st: st, params: p, tok: tok, rounds: rounds, minter: m, meter: meter, staker: s}
	require.NoError(t, s.SetCurrentRoundTotalActiveStake(managerAddr))
	return f
}

func (f *fixture) nextRound() {
	f.rounds.round++
	require.NoError(f.t, f.staker.SetCurrentRoundTotalActiveStake(managerAddr))
}

func (f *fixture) fund(addr thor.Address, amount int64) {
	require.NoError(f.t, f.tok.Mint(0, addr, big.NewInt(amount)))
}

func (f *fixture) bond(addr thor.Address, amount int64, to thor.Address) {
	f.fund(addr, amount)
	require.NoError(f.t, f.staker.Bond(addr, big.NewInt(amount), to))
}

// register self bonds amount and sets the cuts of addr.
func (f *fixture) register(addr thor.Address, amount int64, rewardCut, feeShare uint64) {
	f.bond(addr, amount, addr)
	require.NoError(f.t, f.staker.Transcoder(addr, rewardCut, feeShare))
}

func (f *fixture) pendingStake(addr thor.Address) string {
	stake, err := f.staker.PendingStake(addr, f.rounds.round)
	require.NoError(f.t, err)
	return stake.String()
}

func (f *fixture) pendingFees(addr thor.Address) string {
	fees, err := f.staker.PendingFees(addr, f.rounds.round)
	require.NoError(f.t, err)
	return fees.String()
}

func (f *fixture) delegatedAmount(addr thor.Address) string {
	stake, err := f.staker.TranscoderTotalStake(addr)
	require.NoError(f.t, err)
	return stake.String()
}

func (f *fixture) balance(addr thor.Address) string {
	bal, err := f.tok.GetBalance(addr)
	require.NoError(f.t, err)
	return bal.String()
}

func (f *fixture) poolAddresses() []thor.Address {
	members, err := f.staker.GetTranscoderPool()
	require.NoError(f.t, err)
	addrs := make([]thor.Address, 0, len(members))
	for _, m := range members {
		addrs = append(addrs, m.Address)
	}
	return addrs
}

func eventNames(evs []state.Event) []string {
	names := make([]string, 0, len(evs))
	for _, ev := range evs {
		names = append(names, ev.EventName())
	}
	return names
}

func TestInitialize(t *testing.T) {
	f := newFixture(t, 3)

	maxSize, err := f.staker.GetTranscoderPoolMaxSize()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), maxSize)

	err = f.staker.SetCurrentRoundTotalActiveStake(managerAddr)
	assert.True(t, reverts.IsRevertErr(err), "second snapshot in the same round")
}

func TestRoundNotInitialized(t *testing.T) {
	f := newFixture(t, 3)
	f.rounds.uninitialized = true

	alice := datagen.RandAddress()
	f.fund(alice, 100)
	err := f.staker.Bond(alice, big.NewInt(100), alice)
	assert.True(t, reverts.IsRevertErr(err))
	assert.Equal(t, "100", f.balance(alice))
}

func TestAtomicRevertDropsEvents(t *testing.T) {
	f := newFixture(t, 3)
	alice := datagen.RandAddress()

	before := len(f.st.Events())
	// not funded: the deposit fails after the bond was recorded
	err := f.staker.Bond(alice, big.NewInt(100), alice)
	require.Error(t, err)

	assert.Len(t, f.st.Events(), before)
	del, err := f.staker.GetDelegator(alice)
	require.NoError(t, err)
	assert.Equal(t, 0, del.BondedAmount.Sign())
	assert.Equal(t, "0", f.delegatedAmount(alice))
	size, err := f.staker.GetTranscoderPoolSize()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), size)
	next, err := f.staker.NextRoundTotalActiveStake()
	require.NoError(t, err)
	assert.Equal(t, 0, next.Sign())
}

func TestUnauthorizedCallers(t *testing.T) {
	f := newFixture(t, 3)
	alice := datagen.RandAddress()
	f.register(alice, 1000, 0, 0)
	stranger := datagen.RandAddress()

	err := f.staker.ReportFees(stranger, alice, big.NewInt(10), 1)
	assert.True(t, reverts.IsUnauthorized(err))

	err = f.staker.Slash(stranger, alice, stranger, 100_000, 0)
	assert.True(t, reverts.IsUnauthorized(err))

	err = f.staker.SetCurrentRoundTotalActiveStake(stranger)
	assert.True(t, reverts.IsUnauthorized(err))

	// collaborators are not interchangeable
	err = f.staker.Slash(reporterAddr, alice, stranger, 100_000, 0)
	assert.True(t, reverts.IsUnauthorized(err))
}

func TestCheckpointBondingStateEmitsEvent(t *testing.T) {
	f := newFixture(t, 3)
	alice := datagen.RandAddress()

	require.NoError(t, f.staker.CheckpointBondingState(alice))
	evs := f.st.Events()
	require.NotEmpty(t, evs)
	ev, ok := evs[len(evs)-1].(*CheckpointRecordedEvent)
	require.True(t, ok)
	assert.Equal(t, alice, ev.Account)
	assert.Equal(t, uint64(2), ev.StartRound)
}
