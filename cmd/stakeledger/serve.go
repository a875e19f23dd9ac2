// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakeledger/api"
	"github.com/vechain/stakeledger/api/admin"
	"github.com/vechain/stakeledger/health"
	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/logdb"
	"github.com/vechain/stakeledger/metrics"
)

func serveAction(ctx *cli.Context) error {
	logLevel, err := initLogger(ctx)
	if err != nil {
		return err
	}
	exitSignal := handleExitSignal()

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
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
	defer func() { log.Info("closing main database..."); mainDB.Close() }()

	var logDB *logdb.LogDB
	if !ctx.Bool(skipLogsFlag.Name) {
		if logDB, err = openLogDB(dataDir); err != nil {
			return err
		}
		defer func() { log.Info("closing log database..."); logDB.Close() }()
	}

	l, err := ledger.Open(mainDB, logDB, gene)
	if err != nil {
		return err
	}

	interval := time.Duration(ctx.Uint64(blockIntervalFlag.Name)) * time.Second
	length, err := roundLength(l)
	if err != nil {
		return err
	}
	round, err := l.CurrentRound()
	if err != nil {
		return err
	}
	healthStatus := health.New(time.Duration(length) * interval)
	healthStatus.RoundInitialized(round)

	enableReqLogger := &atomic.Bool{}
	enableReqLogger.Store(ctx.Bool(enableAPILogsFlag.Name))
	handler := api.New(l, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		PprofOn:              ctx.Bool(pprofFlag.Name),
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
		LogsLimit:            ctx.Uint64(apiLogsLimitFlag.Name),
		EnableReqLogger:      enableReqLogger,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		Log5xxErrors:         ctx.Bool(apiLog5xxErrorsFlag.Name),
	})

	apiSrv, err := newAPIServer(
		ctx.String(apiAddrFlag.Name),
		handler,
		time.Duration(ctx.Uint64(apiTimeoutFlag.Name))*time.Millisecond,
	)
	if err != nil {
		return err
	}

	var servers []*httpServer
	closeAll := func() {
		for _, srv := range servers {
			srv.listener.Close()
		}
	}
	servers = append(servers, apiSrv)

	metricsURL := "disabled"
	if ctx.Bool(enableMetricsFlag.Name) {
		metricsSrv, err := newMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			closeAll()
			return fmt.Errorf("unable to start metrics server - %w", err)
		}
		servers = append(servers, metricsSrv)
		metricsURL = metricsSrv.URL("/metrics")
	}
	adminURL := "disabled"
	if ctx.Bool(enableAdminFlag.Name) {
		adminSrv, err := newAdminServer(ctx.String(adminAddrFlag.Name), admin.New(logLevel, healthStatus, enableReqLogger))
		if err != nil {
			closeAll()
			return fmt.Errorf("unable to start admin server - %w", err)
		}
		servers = append(servers, adminSrv)
		adminURL = adminSrv.URL("/admin")
	}

	g, gctx := errgroup.WithContext(exitSignal)
	for _, srv := range servers {
		srv.Run(gctx, g)
	}

	if interval > 0 {
		healthStatus.BlockProduction(true)
		g.Go(func() error {
			return produceBlocks(gctx, l, interval, healthStatus)
		})
	}

	printStartupMessage(dataDir, round, apiSrv.URL("/"), metricsURL, adminURL)

	return g.Wait()
}

// produceBlocks advances the ledger one block per interval and initializes each new round.
func produceBlocks(ctx context.Context, l *ledger.Ledger, interval time.Duration, h *health.Health) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			var (
				round       uint64
				initialized bool
			)
			err := l.Execute(func(c *ledger.Contracts) error {
				if err := c.Rounds.AdvanceBlocks(1); err != nil {
					return err
				}
				ok, err := c.Rounds.CurrentRoundInitialized()
				if err != nil {
					return err
				}
				if !ok {
					if err := c.Rounds.InitializeRound(); err != nil {
						return err
					}
					initialized = true
				}
				round, err = c.Rounds.CurrentRound()
				return err
			})
			if err != nil {
				return errors.Wrap(err, "produce block")
			}
			if initialized {
				h.RoundInitialized(round)
				log.Info("round initialized", "round", round)
			}
		}
	}
}

func roundLength(l *ledger.Ledger) (length uint64, err error) {
	err = l.View(func(c *ledger.Contracts) error {
		length, err = c.Rounds.RoundLength()
		return err
	})
	return
}

func printStartupMessage(dataDir string, round uint64, apiURL, metricsURL, adminURL string) {
	fmt.Printf(`Starting %v
    Round        [ %v ]
    Data dir     [ %v ]
    API portal   [ %v ]
    Metrics      [ %v ]
    Admin        [ %v ]
`,
		"StakeLedger "+fullVersion(),
		round,
		dataDir,
		apiURL,
		metricsURL,
		adminURL)
}
