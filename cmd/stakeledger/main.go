// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// stakeledger runs the staking ledger behind a REST API, replays scenarios and inspects accounts.
package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"
)

var (
	version       string
	gitCommit     string
	gitTag        string
	copyrightYear string

	logFlags = []cli.Flag{
		verbosityFlag,
		logFormatFlag,
	}
	serveFlags = withLogFlags(
		dataDirFlag,
		genesisFlag,
		cacheFlag,
		apiAddrFlag,
		apiCorsFlag,
		apiTimeoutFlag,
		apiLogsLimitFlag,
		enableAPILogsFlag,
		apiSlowQueriesThresholdFlag,
		apiLog5xxErrorsFlag,
		pprofFlag,
		skipLogsFlag,
		blockIntervalFlag,
		enableMetricsFlag,
		metricsAddrFlag,
		enableAdminFlag,
		adminAddrFlag,
	)
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func withLogFlags(flags ...cli.Flag) []cli.Flag {
	return append(flags, logFlags...)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "StakeLedger",
		Usage:     "Staking ledger with rewards, fees and checkpointed stake",
		Copyright: fmt.Sprintf("2025-%s VeChain Foundation <https://vechain.org/>", copyrightYear),
		Flags:     serveFlags,
		Action:    serveAction,
		Commands: []cli.Command{
			{
				Name:   "serve",
				Usage:  "run the ledger behind the REST API (default)",
				Flags:  serveFlags,
				Action: serveAction,
			},
			{
				Name:  "simulate",
				Usage: "replay a scenario of staking operations round by round",
				Flags: withLogFlags(
					scenarioFlag,
					persistFlag,
					dataDirFlag,
					cacheFlag,
				),
				Action: simulateAction,
			},
			{
				Name:      "inspect",
				Usage:     "print the staking state of an account",
				ArgsUsage: "<address>",
				Flags: withLogFlags(
					dataDirFlag,
					genesisFlag,
					cacheFlag,
					roundFlag,
					dumpFlag,
				),
				Action: inspectAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
