// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakeledger/builtin/staker/candidate"
	"github.com/vechain/stakeledger/builtin/staker/checkpoint"
	"github.com/vechain/stakeledger/builtin/staker/delegation"
	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/thor"
)

// accountSummary is what inspect reports for one address.
type accountSummary struct {
	Address          thor.Address
	Round            uint64
	Balance          *big.Int
	DelegatorStatus  string
	Delegator        *delegation.Delegator
	PendingStake     *big.Int
	PendingFees      *big.Int
	TranscoderStatus string
	Transcoder       *candidate.Candidate
	TotalStake       *big.Int
	Checkpointed     bool // false when the account has no checkpoint at or before the queried round
	StakeAtRound     *big.Int
	DelegateAtRound  thor.Address
}

func inspectAccount(l *ledger.Ledger, addr thor.Address, atRound uint64) (*accountSummary, error) {
	sum := &accountSummary{Address: addr}
	err := l.View(func(c *ledger.Contracts) (err error) {
		if sum.Round, err = c.Rounds.CurrentRound(); err != nil {
			return err
		}
		if sum.Balance, err = c.Token.GetBalance(addr); err != nil {
			return err
		}
		dstatus, err := c.Staker.DelegatorStatus(addr)
		if err != nil {
			return err
		}
		sum.DelegatorStatus = dstatus.String()
		if sum.Delegator, err = c.Staker.GetDelegator(addr); err != nil {
			return err
		}
		if sum.PendingStake, err = c.Staker.PendingStake(addr, sum.Round); err != nil {
			return err
		}
		if sum.PendingFees, err = c.Staker.PendingFees(addr, sum.Round); err != nil {
			return err
		}
		tstatus, err := c.Staker.TranscoderStatus(addr)
		if err != nil {
			return err
		}
		sum.TranscoderStatus = tstatus.String()
		if sum.Transcoder, err = c.Staker.GetTranscoder(addr); err != nil {
			return err
		}
		if sum.TotalStake, err = c.Staker.TranscoderTotalStake(addr); err != nil {
			return err
		}

		if atRound == 0 {
			atRound = sum.Round
		}
		sum.StakeAtRound, sum.DelegateAtRound, err = c.Staker.GetBondingStateAt(addr, atRound)
		if errors.Is(err, checkpoint.ErrNoCheckpoint) {
			return nil
		}
		sum.Checkpointed = err == nil
		return err
	})
	if err != nil {
		return nil, err
	}
	return sum, nil
}

func printAccountSummary(w io.Writer, sum *accountSummary) {
	checkpointed := "none"
	if sum.Checkpointed {
		checkpointed = fmt.Sprintf("%v to %v", sum.StakeAtRound, sum.DelegateAtRound)
	}
	fmt.Fprintf(w, `Account %v
    Round          [ %v ]
    Balance        [ %v ]
    Delegator      [ %v, bonded %v to %v ]
    Pending        [ stake %v, fees %v ]
    Transcoder     [ %v, total stake %v ]
    Checkpointed   [ %v ]
`,
		sum.Address,
		sum.Round,
		sum.Balance,
		sum.DelegatorStatus, sum.Delegator.BondedAmount, sum.Delegator.DelegateAddress,
		sum.PendingStake, sum.PendingFees,
		sum.TranscoderStatus, sum.TotalStake,
		checkpointed)
}

func inspectAction(ctx *cli.Context) error {
	if _, err := initLogger(ctx); err != nil {
		return err
	}
	if ctx.NArg() != 1 {
		return errors.New("usage: inspect [flags] <address>")
	}
	addr, err := thor.ParseAddress(ctx.Args().First())
	if err != nil {
		return errors.Wrap(err, "parse address")
	}

	gene, err := loadGenesis(ctx.String(genesisFlag.Name))
	if err != nil {
		return err
	}
	dataDir, err := makeDataDir(ctx)
	if err != nil {
		return err
	}
	mainDB, err := openMainDB(ctx, dataDir)
	if err != nil {
		return err
	}
	defer mainDB.Close()

	l, err := ledger.Open(mainDB, nil, gene)
	if err != nil {
		return err
	}
	sum, err := inspectAccount(l, *addr, ctx.Uint64(roundFlag.Name))
	if err != nil {
		return err
	}

	if ctx.Bool(dumpFlag.Name) {
		spew.Fdump(os.Stdout, sum)
		return nil
	}
	printAccountSummary(os.Stdout, sum)
	return nil
}
