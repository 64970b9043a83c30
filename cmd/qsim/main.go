// Copyright 2023 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// qsim runs serialised quantum circuits on a state-vector simulator.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	_ "go.uber.org/automaxprocs"

	"github.com/fillay12321/qsim/quest/node"
)

var (
	configFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	seedFlag = &cli.Uint64Flag{
		Name:  "seed",
		Usage: "Seed of the random stream (default: process entropy)",
	}
	ranksFlag = &cli.IntFlag{
		Name:  "ranks",
		Usage: "In-process ranks for distributed functions when no launcher assigns one",
		Value: 1,
	}
)

var app = &cli.App{
	Name:      "qsim",
	Usage:     "simulate serialised quantum circuits",
	ArgsUsage: "<node-definition.json>",
	Flags: append([]cli.Flag{
		configFileFlag,
		seedFlag,
		ranksFlag,
	}, logFlags...),
	Action: runNode,
	Commands: []*cli.Command{
		inspectCommand,
		dumpConfigCommand,
	},
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal: %v\n", err)
		os.Exit(1)
	}
}

// runNode executes the node definition named by the first argument.
func runNode(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("expected a node definition path as the only argument, have %d arguments", ctx.NArg())
	}
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	def, err := node.LoadNodeDefinition(ctx.Args().First())
	if err != nil {
		return err
	}
	closer, err := setupLogging(cfg.Log, def.LogPath)
	if err != nil {
		return err
	}
	defer closer.Close()

	runner := node.NewRunner()
	runner.Config = cfg.Simulator
	runner.Ranks = ctx.Int(ranksFlag.Name)
	if ctx.IsSet(seedFlag.Name) {
		seed := ctx.Uint64(seedFlag.Name)
		runner.Seed = &seed
	}
	return runner.Run(ctx.Context, def)
}
