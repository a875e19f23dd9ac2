// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	pb "gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"

	"github.com/vechain/stakeledger/builtin/staker/reverts"
	"github.com/vechain/stakeledger/kv"
	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/logdb"
	"github.com/vechain/stakeledger/lvldb"
	"github.com/vechain/stakeledger/thor"
)

// scenario is a sequence of rounds, each initialized before its operations run.
type scenario struct {
	Genesis *ledger.Genesis `yaml:"genesis"`
	Rounds  []scenarioRound `yaml:"rounds"`
}

type scenarioRound struct {
	Ops []operation `yaml:"ops"`
}

type operation struct {
	Op        string                `yaml:"op"`
	From      thor.Address          `yaml:"from"`
	To        thor.Address          `yaml:"to"`
	Amount    *math.HexOrDecimal256 `yaml:"amount"`
	RewardCut uint64                `yaml:"rewardCut"`
	FeeShare  uint64                `yaml:"feeShare"`
	Lock      uint64                `yaml:"lock"`
	EndRound  uint64                `yaml:"endRound"`
	Percent   uint64                `yaml:"percent"`
	FinderFee uint64                `yaml:"finderFee"`
}

func (op *operation) amount() *big.Int {
	if op.Amount == nil {
		return new(big.Int)
	}
	return (*big.Int)(op.Amount)
}

func (sc *scenario) numOps() (n int) {
	for _, r := range sc.Rounds {
		n += len(r.Ops)
	}
	return
}

func loadScenario(r io.Reader) (*scenario, error) {
	var sc scenario
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, errors.Wrap(err, "decode scenario")
	}
	if sc.Genesis == nil {
		sc.Genesis = ledger.DevGenesis()
	}
	for i, round := range sc.Rounds {
		for j, op := range round.Ops {
			if _, ok := opHandlers[op.Op]; !ok {
				return nil, fmt.Errorf("round %d op %d: unknown op %q", i, j, op.Op)
			}
		}
	}
	return &sc, nil
}

type opHandler func(c *ledger.Contracts, gene *ledger.Genesis, round uint64, op *operation) error

var opHandlers = map[string]opHandler{
	"transcoder": func(c *ledger.Contracts, _ *ledger.Genesis, _ uint64, op *operation) error {
		return c.Staker.Transcoder(op.From, op.RewardCut, op.FeeShare)
	},
	"bond": func(c *ledger.Contracts, _ *ledger.Genesis, _ uint64, op *operation) error {
		return c.Staker.Bond(op.From, op.amount(), op.To)
	},
	"unbond": func(c *ledger.Contracts, _ *ledger.Genesis, _ uint64, op *operation) error {
		return c.Staker.Unbond(op.From, op.amount())
	},
	"rebond": func(c *ledger.Contracts, _ *ledger.Genesis, _ uint64, op *operation) error {
		return c.Staker.Rebond(op.From, op.Lock)
	},
	"rebondFromUnbonded": func(c *ledger.Contracts, _ *ledger.Genesis, _ uint64, op *operation) error {
		return c.Staker.RebondFromUnbonded(op.From, op.To, op.Lock)
	},
	"withdrawStake": func(c *ledger.Contracts, _ *ledger.Genesis, _ uint64, op *operation) error {
		return c.Staker.WithdrawStake(op.From, op.Lock)
	},
	"withdrawFees": func(c *ledger.Contracts, _ *ledger.Genesis, _ uint64, op *operation) error {
		return c.Staker.WithdrawFees(op.From, op.To, op.amount())
	},
	"transferBond": func(c *ledger.Contracts, _ *ledger.Genesis, _ uint64, op *operation) error {
		return c.Staker.TransferBond(op.From, op.To, op.amount())
	},
	"claim": func(c *ledger.Contracts, _ *ledger.Genesis, round uint64, op *operation) error {
		end := op.EndRound
		if end == 0 {
			end = round
		}
		return c.Staker.ClaimEarnings(op.From, end)
	},
	"reward": func(c *ledger.Contracts, _ *ledger.Genesis, _ uint64, op *operation) error {
		return c.Staker.Reward(op.From)
	},
	// fees are paid by From into the fee vault and reported for transcoder To
	"fees": func(c *ledger.Contracts, gene *ledger.Genesis, round uint64, op *operation) error {
		if err := c.Minter.DepositFees(op.From, op.amount()); err != nil {
			return err
		}
		return c.Staker.ReportFees(gene.FeeReporter, op.To, op.amount(), round)
	},
	// slashes transcoder To, paying the finder fee to From
	"slash": func(c *ledger.Contracts, gene *ledger.Genesis, _ uint64, op *operation) error {
		return c.Staker.Slash(gene.Verifier, op.To, op.From, op.Percent, op.FinderFee)
	},
}

type simulationReport struct {
	Rounds   int
	Applied  int
	Reverted int
}

// runScenario plays sc against l. Reverted operations are logged and skipped, any other
// error stops the run. Collaborator addresses come from the genesis l was created with.
func runScenario(l *ledger.Ledger, sc *scenario, onOp func()) (*simulationReport, error) {
	gene := l.Genesis()
	report := &simulationReport{}
	for _, r := range sc.Rounds {
		round, err := l.NextRound()
		if err != nil {
			return report, errors.Wrap(err, "next round")
		}
		report.Rounds++

		for i := range r.Ops {
			op := &r.Ops[i]
			err := l.Execute(func(c *ledger.Contracts) error {
				return opHandlers[op.Op](c, gene, round, op)
			})
			switch {
			case err == nil:
				report.Applied++
			case reverts.IsRevertErr(err):
				log.Debug("operation reverted", "round", round, "op", op.Op, "from", op.From, "err", err)
				report.Reverted++
			default:
				return report, errors.Wrapf(err, "round %d op %s", round, op.Op)
			}
			if onOp != nil {
				onOp()
			}
		}
	}
	return report, nil
}

func simulateAction(ctx *cli.Context) error {
	if _, err := initLogger(ctx); err != nil {
		return err
	}

	path := ctx.String(scenarioFlag.Name)
	if path == "" {
		path = ctx.Args().First()
	}
	if path == "" {
		return errors.New("scenario file required")
	}
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open scenario file")
	}
	defer file.Close()
	sc, err := loadScenario(file)
	if err != nil {
		return err
	}

	var (
		store kv.Store
		logDB *logdb.LogDB
	)
	if ctx.Bool(persistFlag.Name) {
		dataDir, err := makeDataDir(ctx)
		if err != nil {
			return err
		}
		mainDB, err := openMainDB(ctx, dataDir)
		if err != nil {
			return err
		}
		defer mainDB.Close()
		store = mainDB
		if logDB, err = openLogDB(dataDir); err != nil {
			return err
		}
	} else {
		mainDB, err := lvldb.NewMem()
		if err != nil {
			return err
		}
		defer mainDB.Close()
		store = mainDB
		if logDB, err = logdb.NewMem(); err != nil {
			return err
		}
	}
	defer logDB.Close()

	l, err := ledger.Open(store, logDB, sc.Genesis)
	if err != nil {
		return err
	}

	pbar := pb.New64(int64(sc.numOps())).
		Set64(0).
		SetMaxWidth(90).
		Start()
	report, err := runScenario(l, sc, func() { pbar.Add64(1) })
	pbar.Finish()
	if err != nil {
		return err
	}

	events, err := logDB.FilterEvents(context.Background(), nil)
	if err != nil {
		return err
	}
	fmt.Printf("rounds: %d, applied: %d, reverted: %d, events: %d\n",
		report.Rounds, report.Applied, report.Reverted, len(events))
	return nil
}
