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

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/fillay12321/qsim/quest"
	"github.com/fillay12321/qsim/quest/processor"
	"github.com/fillay12321/qsim/quest/rng"
	"github.com/fillay12321/qsim/quest/serial"
)

var inspectCommand = &cli.Command{
	Action:    inspect,
	Name:      "inspect",
	Usage:     "Print the primitive gates each command of a circuit translates to",
	ArgsUsage: "<circuit.json>",
	Flags:     []cli.Flag{configFileFlag, seedFlag},
}

var errUntranslatable = errors.New("circuit has untranslatable commands")

func inspect(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("expected a circuit path as the only argument")
	}
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	f, err := os.Open(ctx.Args().First())
	if err != nil {
		return err
	}
	defer f.Close()
	circuit, err := serial.DecodeCircuit(f)
	if err != nil {
		return err
	}
	runner, err := quest.NewShotRunner(quest.DefaultStrategy, nil)
	if err != nil {
		return err
	}
	opts := processor.Options{Measure: runner.MeasureMode(), ZZPhase: cfg.Simulator.ZZPhaseForm}
	return inspectCircuit(os.Stdout, circuit, opts, rng.NewSeeded(ctx.Uint64(seedFlag.Name)))
}

func inspectCircuit(w io.Writer, c *serial.Circuit, opts processor.Options, stream *rng.Stream) error {
	name := "<unnamed>"
	if c.Name != nil {
		name = *c.Name
	}
	bold := color.New(color.Bold)
	bold.Fprintf(w, "Circuit %s: %d qubits, %d bits, %d commands (measure %s, ZZPhase %s)\n",
		name, len(c.Qubits), len(c.Bits), len(c.Commands), opts.Measure, opts.ZZPhase)

	rows := processor.Describe(c, opts, stream)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Op", "Args", "Params", "Primitives"})
	table.SetAutoWrapText(false)
	failed := 0
	for _, row := range rows {
		args := make([]string, len(row.Command.Args))
		for i, a := range row.Command.Args {
			args[i] = a.String()
		}
		var prims string
		if row.Err != nil {
			failed++
			prims = "error: " + row.Err.Error()
		} else {
			parts := make([]string, len(row.Gates))
			for i, g := range row.Gates {
				parts[i] = fmt.Sprintf("%s%v", g.Name(), g.Qubits())
				if p := g.Params(); p != "" {
					parts[i] += " " + p
				}
			}
			prims = strings.Join(parts, "; ")
		}
		table.Append([]string{
			strconv.Itoa(row.Index),
			string(row.Command.Op.Type),
			strings.Join(args, " "),
			strings.Join(row.Command.Op.Params, ", "),
			prims,
		})
	}
	table.Render()

	if failed > 0 {
		color.New(color.FgRed).Fprintf(w, "%d of %d commands cannot be translated\n", failed, len(rows))
		return fmt.Errorf("%w: %d", errUntranslatable, failed)
	}
	return nil
}
