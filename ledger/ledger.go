// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger binds the builtin contracts over one store and serializes calls into them.
package ledger

import (
	"encoding/json"
	"math/big"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/builtin"
	"github.com/vechain/stakeledger/builtin/minter"
	"github.com/vechain/stakeledger/builtin/params"
	"github.com/vechain/stakeledger/builtin/rounds"
	"github.com/vechain/stakeledger/builtin/solidity"
	"github.com/vechain/stakeledger/builtin/staker"
	"github.com/vechain/stakeledger/builtin/token"
	"github.com/vechain/stakeledger/kv"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/logdb"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/thor"
)

var logger = log.WithContext("pkg", "ledger")

var (
	stateBucket = kv.Bucket("s") // contract storage
	metaBucket  = kv.Bucket("m") // ledger metadata

	genesisKey = []byte("genesis")
)

// Contracts are the builtin contracts bound to the ledger state.
type Contracts struct {
	Params *params.Params
	Token  *token.Token
	Rounds *rounds.Manager
	Minter *minter.Minter
	Staker *staker.Staker
}

// Ledger owns the state of the builtin contracts. Calls run one at a time; a call that
// succeeds is committed to the store together with its events, a call that fails leaves nothing.
type Ledger struct {
	mu        sync.Mutex
	genesis   *Genesis
	state     *state.State
	meter     *solidity.Meter
	contracts *Contracts
	logDB     *logdb.LogDB
	writer    *logdb.Writer
}

// Open binds the contracts over store, writing genesis when the store is empty. An existing
// store keeps the genesis it was created with. logDB may be nil, in which case events are
// dropped after commit.
func Open(store kv.Store, logDB *logdb.LogDB, genesis *Genesis) (*Ledger, error) {
	st := state.New(stateBucket.NewStore(store))
	meter := &solidity.Meter{}

	p := builtin.Params.WithState(st)
	tok := builtin.Token.WithState(st)
	r := builtin.Rounds.WithState(st, p)
	m := builtin.Minter.WithState(st, tok, p, r)
	s := builtin.Staker.WithState(st, p, r, m, meter)
	r.Bind(s, m)

	l := &Ledger{
		state:     st,
		meter:     meter,
		contracts: &Contracts{Params: p, Token: tok, Rounds: r, Minter: m, Staker: s},
		logDB:     logDB,
	}
	if logDB != nil {
		l.writer = logDB.NewWriter()
	}

	length, err := p.GetUint64(thor.KeyRoundLength)
	if err != nil {
		return nil, errors.Wrap(err, "load round length")
	}
	if length != 0 {
		if l.genesis, err = loadGenesis(metaBucket.NewGetter(store)); err != nil {
			return nil, err
		}
		round, err := r.CurrentRound()
		if err != nil {
			return nil, errors.Wrap(err, "load current round")
		}
		logger.Info("ledger opened", "round", round)
		return l, nil
	}

	if genesis == nil {
		genesis = DevGenesis()
	}
	// the metadata goes first, a store holding state always has it
	if err := saveGenesis(metaBucket.NewPutter(store), genesis); err != nil {
		return nil, err
	}
	l.genesis = genesis
	if err := l.Execute(func(c *Contracts) error {
		return setupGenesis(c, genesis)
	}); err != nil {
		return nil, errors.Wrap(err, "setup genesis")
	}
	logger.Info("genesis written", "treasury", genesis.Treasury, "allocs", len(genesis.Alloc))
	return l, nil
}

func saveGenesis(w kv.Putter, g *Genesis) error {
	data, err := json.Marshal(g)
	if err != nil {
		return errors.Wrap(err, "encode genesis")
	}
	if err := w.Put(genesisKey, data); err != nil {
		return errors.Wrap(err, "save genesis")
	}
	return nil
}

func loadGenesis(r kv.Getter) (*Genesis, error) {
	data, err := r.Get(genesisKey)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, errors.New("genesis missing from ledger metadata")
		}
		return nil, errors.Wrap(err, "load genesis")
	}
	var g Genesis
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}
	return &g, nil
}

func setupGenesis(c *Contracts, g *Genesis) error {
	if err := c.Params.Init(); err != nil {
		return err
	}
	overrides, err := g.params()
	if err != nil {
		return err
	}
	for _, pv := range overrides {
		if err := c.Params.Set(pv.key, pv.value); err != nil {
			return err
		}
	}
	for _, a := range g.Alloc {
		if a.Amount == nil {
			continue
		}
		if err := c.Token.Mint(0, a.Address, (*big.Int)(a.Amount)); err != nil {
			return err
		}
	}
	if err := c.Staker.Initialize(staker.Collaborators{
		RoundsManager: c.Rounds.Address(),
		FeeReporter:   g.FeeReporter,
		Verifier:      g.Verifier,
		Treasury:      g.Treasury,
	}); err != nil {
		return err
	}
	// round 0 starts initialized
	if err := c.Staker.SetCurrentRoundTotalActiveStake(c.Rounds.Address()); err != nil {
		return err
	}
	return c.Minter.SetCurrentRewardTokens()
}

// Execute runs fn as one call. State changes and events are committed when fn succeeds
// and dropped when it fails.
func (l *Ledger) Execute(fn func(c *Contracts) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	start := time.Now()
	l.meter.Reset()
	rev := l.state.NewCheckpoint()
	if err := fn(l.contracts); err != nil {
		l.state.RevertTo(rev)
		metricCalls().AddWithLabel(1, map[string]string{"result": "reverted"})
		return err
	}
	if err := l.commit(); err != nil {
		l.state.RevertTo(rev)
		metricCalls().AddWithLabel(1, map[string]string{"result": "failed"})
		return err
	}
	metricCalls().AddWithLabel(1, map[string]string{"result": "committed"})
	metricCallDuration().Observe(time.Since(start).Milliseconds())
	metricStorageWords().Observe(int64(l.meter.Total()))
	return nil
}

func (l *Ledger) commit() error {
	stage := l.state.Stage()
	events := stage.Events()

	if l.writer != nil && len(events) > 0 {
		round, err := l.contracts.Rounds.CurrentRound()
		if err != nil {
			return err
		}
		records, err := toRecords(events)
		if err != nil {
			return err
		}
		if err := l.writer.Write(round, records); err != nil {
			l.writer.Rollback()
			return errors.Wrap(err, "write events")
		}
	}
	if err := stage.Commit(); err != nil {
		if l.writer != nil {
			l.writer.Rollback()
		}
		return errors.Wrap(err, "commit state")
	}
	if l.writer != nil {
		// state is already durable, a lost event batch is logged rather than failing the call
		if err := l.writer.Commit(); err != nil {
			l.writer.Rollback()
			logger.Error("failed to persist events", "count", len(events), "err", err)
		}
	}
	metricEvents().Add(int64(len(events)))
	return nil
}

type subjecter interface {
	Subject() thor.Address
}

func toRecords(events []state.Event) ([]*logdb.Event, error) {
	records := make([]*logdb.Event, 0, len(events))
	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			return nil, errors.Wrapf(err, "encode event %s", ev.EventName())
		}
		rec := &logdb.Event{Name: ev.EventName(), Data: data}
		if s, ok := ev.(subjecter); ok {
			rec.Subject = s.Subject()
		}
		records = append(records, rec)
	}
	return records, nil
}

// View runs fn with the contracts for reading. Changes made by fn are discarded.
func (l *Ledger) View(fn func(c *Contracts) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rev := l.state.NewCheckpoint()
	defer l.state.RevertTo(rev)
	return fn(l.contracts)
}

// Genesis returns the genesis the ledger was created with.
func (l *Ledger) Genesis() *Genesis {
	return l.genesis
}

// LogDB returns the event store, nil if events are not persisted.
func (l *Ledger) LogDB() *logdb.LogDB {
	return l.logDB
}

// CurrentRound returns the current round.
func (l *Ledger) CurrentRound() (round uint64, err error) {
	err = l.View(func(c *Contracts) error {
		round, err = c.Rounds.CurrentRound()
		return err
	})
	return
}

// AdvanceBlocks moves the block height forward by n.
func (l *Ledger) AdvanceBlocks(n uint64) error {
	return l.Execute(func(c *Contracts) error {
		return c.Rounds.AdvanceBlocks(n)
	})
}

// NextRound moves to the first block of the next round and initializes it.
func (l *Ledger) NextRound() (uint64, error) {
	var round uint64
	err := l.Execute(func(c *Contracts) error {
		length, err := c.Rounds.RoundLength()
		if err != nil {
			return err
		}
		start, err := c.Rounds.CurrentRoundStartBlock()
		if err != nil {
			return err
		}
		block, err := c.Rounds.BlockNum()
		if err != nil {
			return err
		}
		if err := c.Rounds.AdvanceBlocks(start + length - block); err != nil {
			return err
		}
		if err := c.Rounds.InitializeRound(); err != nil {
			return err
		}
		round, err = c.Rounds.CurrentRound()
		return err
	})
	if err != nil {
		return 0, err
	}
	logger.Debug("round advanced", "round", round)
	return round, nil
}

// CacheStats returns the hit and miss counts of the state read cache.
func (l *Ledger) CacheStats() (hit, miss int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.CacheStats()
}
