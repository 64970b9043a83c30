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

//go:build mpi

package node

import (
	"context"

	"github.com/ethereum/go-ethereum/log"

	"github.com/fillay12321/qsim/quest/rng"
	"github.com/fillay12321/qsim/quest/serial"
)

func init() {
	Register("submit_single_mpi", submitSingleMPI)
}

// submitSingleMPI simulates one circuit on every rank. Only rank 0 writes the result
// and the completion marker. Under an external launcher this process is one rank;
// otherwise Runner.Ranks ranks run in-process.
func submitSingleMPI(ctx context.Context, r *Runner, def *NodeDefinition, logger log.Logger) error {
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
	if rank, ok := LauncherRank(); ok {
		return runRank(ctx, r, def, &circuit, int(nShots), rank, logger)
	}
	return RunRanks(ctx, r.Ranks, func(ctx context.Context, rank int) error {
		return runRank(ctx, r, def, &circuit, int(nShots), rank, logger)
	})
}

func runRank(ctx context.Context, r *Runner, def *NodeDefinition, circuit *serial.Circuit, nShots, rank int, logger log.Logger) error {
	logger = logger.New("rank", rank)
	sim, err := r.simulator(logger)
	if err != nil {
		return err
	}
	result, err := sim.SimulateCircuit(circuit, nShots, rng.New(r.Seed))
	if err != nil {
		return err
	}
	if rank != 0 {
		logger.Debug("Discarding result on non-root rank")
		return nil
	}
	return commit(ctx, def, map[string]interface{}{"backend_result": result}, logger)
}
