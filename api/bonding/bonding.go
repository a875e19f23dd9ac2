// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bonding

import (
	"math/big"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/api/restutil"
	"github.com/vechain/stakeledger/builtin/staker/checkpoint"
	"github.com/vechain/stakeledger/ledger"
)

type Bonding struct {
	ledger *ledger.Ledger
}

func New(l *ledger.Ledger) *Bonding {
	return &Bonding{l}
}

func (b *Bonding) handleGetRound(w http.ResponseWriter, _ *http.Request) error {
	var round Round
	if err := b.ledger.View(func(c *ledger.Contracts) (err error) {
		if round.Round, err = c.Rounds.CurrentRound(); err != nil {
			return err
		}
		if round.StartBlock, err = c.Rounds.CurrentRoundStartBlock(); err != nil {
			return err
		}
		if round.BlockNumber, err = c.Rounds.BlockNum(); err != nil {
			return err
		}
		if round.Length, err = c.Rounds.RoundLength(); err != nil {
			return err
		}
		if round.Initialized, err = c.Rounds.CurrentRoundInitialized(); err != nil {
			return err
		}
		round.Locked, err = c.Rounds.CurrentRoundLocked()
		return err
	}); err != nil {
		return err
	}
	return restutil.WriteJSON(w, &round)
}

func (b *Bonding) handleGetDelegator(w http.ResponseWriter, req *http.Request) error {
	addr, err := restutil.AddressVar(req, "address")
	if err != nil {
		return err
	}
	var result *Delegator
	if err := b.ledger.View(func(c *ledger.Contracts) error {
		cur, err := c.Rounds.CurrentRound()
		if err != nil {
			return err
		}
		endRound, err := restutil.Uint64Query(req, "endRound", cur)
		if err != nil {
			return err
		}
		del, err := c.Staker.GetDelegator(addr)
		if err != nil {
			return err
		}
		status, err := c.Staker.DelegatorStatus(addr)
		if err != nil {
			return err
		}
		stake, err := c.Staker.PendingStake(addr, endRound)
		if err != nil {
			return err
		}
		fees, err := c.Staker.PendingFees(addr, endRound)
		if err != nil {
			return err
		}
		result = newDelegator(addr, del, status, stake, fees)
		return nil
	}); err != nil {
		return err
	}
	return restutil.WriteJSON(w, result)
}

func (b *Bonding) handleGetUnbondingLock(w http.ResponseWriter, req *http.Request) error {
	addr, err := restutil.AddressVar(req, "address")
	if err != nil {
		return err
	}
	id, err := restutil.Uint64Var(req, "id")
	if err != nil {
		return err
	}
	var result *UnbondingLock
	if err := b.ledger.View(func(c *ledger.Contracts) error {
		lock, err := c.Staker.GetUnbondingLock(addr, id)
		if err != nil {
			return err
		}
		result = &UnbondingLock{
			ID:            id,
			Amount:        amount(lock.Amount),
			WithdrawRound: lock.WithdrawRound,
			Valid:         lock.IsValid(),
		}
		return nil
	}); err != nil {
		return err
	}
	if !result.Valid && result.WithdrawRound == 0 {
		return restutil.NotFound(errors.New("unbonding lock not found"))
	}
	return restutil.WriteJSON(w, result)
}

func (b *Bonding) handleGetBondingState(w http.ResponseWriter, req *http.Request) error {
	addr, err := restutil.AddressVar(req, "address")
	if err != nil {
		return err
	}
	round, err := restutil.Uint64Var(req, "round")
	if err != nil {
		return err
	}
	var result *BondingState
	if err := b.ledger.View(func(c *ledger.Contracts) error {
		amt, delegate, err := c.Staker.GetBondingStateAt(addr, round)
		if err != nil {
			return err
		}
		result = &BondingState{Round: round, Amount: amount(amt), Delegate: delegate}
		return nil
	}); err != nil {
		return lookupError(err)
	}
	return restutil.WriteJSON(w, result)
}

func (b *Bonding) handleGetTranscoder(w http.ResponseWriter, req *http.Request) error {
	addr, err := restutil.AddressVar(req, "address")
	if err != nil {
		return err
	}
	var result *Transcoder
	if err := b.ledger.View(func(c *ledger.Contracts) error {
		cur, err := c.Rounds.CurrentRound()
		if err != nil {
			return err
		}
		cand, err := c.Staker.GetTranscoder(addr)
		if err != nil {
			return err
		}
		status, err := c.Staker.TranscoderStatus(addr)
		if err != nil {
			return err
		}
		active, err := c.Staker.IsActiveTranscoder(addr)
		if err != nil {
			return err
		}
		result = newTranscoder(addr, cand, status.String(), active, cur)
		return nil
	}); err != nil {
		return err
	}
	return restutil.WriteJSON(w, result)
}

func (b *Bonding) handleGetEarningsPool(w http.ResponseWriter, req *http.Request) error {
	addr, err := restutil.AddressVar(req, "address")
	if err != nil {
		return err
	}
	round, err := restutil.Uint64Var(req, "round")
	if err != nil {
		return err
	}
	var result *EarningsPool
	if err := b.ledger.View(func(c *ledger.Contracts) error {
		rec, err := c.Staker.GetEarningsPoolForRound(addr, round)
		if err != nil {
			return err
		}
		result = newEarningsPool(round, rec)
		return nil
	}); err != nil {
		return err
	}
	return restutil.WriteJSON(w, result)
}

// parseAmount accepts a decimal or 0x prefixed hex amount.
func parseAmount(s string) (*big.Int, error) {
	var (
		v   *uint256.Int
		err error
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err = uint256.FromHex(s)
	} else {
		v, err = uint256.FromDecimal(s)
	}
	if err != nil {
		return nil, err
	}
	return v.ToBig(), nil
}

func (b *Bonding) handleGetPool(w http.ResponseWriter, req *http.Request) error {
	minStake := new(big.Int)
	if s := req.URL.Query().Get("minStake"); s != "" {
		v, err := parseAmount(s)
		if err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "minStake"))
		}
		minStake = v
	}

	var result Pool
	if err := b.ledger.View(func(c *ledger.Contracts) error {
		members, err := c.Staker.GetTranscoderPool()
		if err != nil {
			return err
		}
		// members are ordered by stake, highest first
		result.Members = make([]PoolMember, 0, len(members))
		for _, m := range members {
			if m.Stake.Cmp(minStake) < 0 {
				break
			}
			result.Members = append(result.Members, PoolMember{Address: m.Address, Stake: amount(m.Stake)})
		}
		if result.MaxSize, err = c.Staker.GetTranscoderPoolMaxSize(); err != nil {
			return err
		}
		total, err := c.Staker.NextRoundTotalActiveStake()
		if err != nil {
			return err
		}
		result.NextRoundTotalActiveStake = amount(total)
		return nil
	}); err != nil {
		return err
	}
	return restutil.WriteJSON(w, &result)
}

func (b *Bonding) handleGetTotalActiveStake(w http.ResponseWriter, req *http.Request) error {
	round, err := restutil.Uint64Var(req, "round")
	if err != nil {
		return err
	}
	var result *TotalActiveStake
	if err := b.ledger.View(func(c *ledger.Contracts) error {
		total, err := c.Staker.GetTotalActiveStakeAt(round)
		if err != nil {
			return err
		}
		result = &TotalActiveStake{Round: round, Amount: amount(total)}
		return nil
	}); err != nil {
		return lookupError(err)
	}
	return restutil.WriteJSON(w, result)
}

func lookupError(err error) error {
	switch {
	case errors.Is(err, checkpoint.ErrFutureLookup):
		return restutil.BadRequest(err)
	case errors.Is(err, checkpoint.ErrNoCheckpoint):
		return restutil.NotFound(err)
	}
	return err
}

func (b *Bonding) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/round").
		Methods(http.MethodGet).
		Name("GET /bonding/round").
		HandlerFunc(restutil.WrapHandlerFunc(b.handleGetRound))
	sub.Path("/pool").
		Methods(http.MethodGet).
		Name("GET /bonding/pool").
		HandlerFunc(restutil.WrapHandlerFunc(b.handleGetPool))
	sub.Path("/total-active-stake/{round}").
		Methods(http.MethodGet).
		Name("GET /bonding/total-active-stake/{round}").
		HandlerFunc(restutil.WrapHandlerFunc(b.handleGetTotalActiveStake))
	sub.Path("/delegators/{address}").
		Methods(http.MethodGet).
		Name("GET /bonding/delegators/{address}").
		HandlerFunc(restutil.WrapHandlerFunc(b.handleGetDelegator))
	sub.Path("/delegators/{address}/locks/{id}").
		Methods(http.MethodGet).
		Name("GET /bonding/delegators/{address}/locks/{id}").
		HandlerFunc(restutil.WrapHandlerFunc(b.handleGetUnbondingLock))
	sub.Path("/delegators/{address}/state/{round}").
		Methods(http.MethodGet).
		Name("GET /bonding/delegators/{address}/state/{round}").
		HandlerFunc(restutil.WrapHandlerFunc(b.handleGetBondingState))
	sub.Path("/transcoders/{address}").
		Methods(http.MethodGet).
		Name("GET /bonding/transcoders/{address}").
		HandlerFunc(restutil.WrapHandlerFunc(b.handleGetTranscoder))
	sub.Path("/transcoders/{address}/earnings/{round}").
		Methods(http.MethodGet).
		Name("GET /bonding/transcoders/{address}/earnings/{round}").
		HandlerFunc(restutil.WrapHandlerFunc(b.handleGetEarningsPool))
}
