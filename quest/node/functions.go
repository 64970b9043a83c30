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

package node

import (
	"context"
	"io"

	"github.com/ethereum/go-ethereum/log"

	"github.com/fillay12321/qsim/quest/rng"
	"github.com/fillay12321/qsim/quest/serial"
)

// submit simulates a list of circuits with one stream and writes their results in
// input order.
func submit(ctx context.Context, r *Runner, def *NodeDefinition, logger log.Logger) error {
	var (
		circuits []*serial.Circuit
		nShots   uint32
	)
	err := def.readInput("circuits", func(in io.Reader) (err error) {
		circuits, err = serial.DecodeCircuits(in)
		return err
	})
	if err != nil {
		return err
	}
	if err := def.readJSON("n_shots", &nShots); err != nil {
		return err
	}
	sim, err := r.simulator(logger)
	if err != nil {
		return err
	}
	results, err := sim.SimulateCircuits(circuits, int(nShots), r.Seed)
	if err != nil {
		return err
	}
	logger.Info("Simulated circuits", "circuits", len(circuits), "shots", nShots)
	return commit(ctx, def, map[string]interface{}{"backend_results": results}, logger)
}

// submitSingle simulates one circuit.
func submitSingle(ctx context.Context, r *Runner, def *NodeDefinition, logger log.Logger) error {
	var (
		circuit serial.Circuit
		nShots  uint32
	)
	if err := def.readJSON("circuit", &circuit); err != nil {
		return err
	}
	if err := def.readJSON("n_shots", &nShots); err != nil {
		return err
	}
	sim, err := r.simulator(logger)
	if err != nil {
		return err
	}
	result, err := sim.SimulateCircuit(&circuit, int(nShots), rng.New(r.Seed))
	if err != nil {
		return err
	}
	logger.Info("Simulated circuit", "qubits", len(circuit.Qubits), "shots", nShots)
	return commit(ctx, def, map[string]interface{}{"backend_result": result}, logger)
}
