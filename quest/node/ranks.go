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
	"os"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// rankVariables are the environment variables MPI launchers and schedulers use to
// tell a process its rank, in lookup order.
var rankVariables = []string{
	"OMPI_COMM_WORLD_RANK",
	"PMI_RANK",
	"PMIX_RANK",
	"SLURM_PROCID",
}

// LauncherRank returns the rank assigned by an external launcher, if any.
func LauncherRank() (int, bool) {
	for _, name := range rankVariables {
		v, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		rank, err := strconv.Atoi(v)
		if err != nil || rank < 0 {
			continue
		}
		return rank, true
	}
	return 0, false
}

// writesMarker reports whether this process is the one that writes outputs: rank 0
// of an external launcher, or the only process when there is no launcher.
func writesMarker() bool {
	rank, ok := LauncherRank()
	return !ok || rank == 0
}

// RunRanks runs fn for ranks 0..n-1 concurrently and returns the first error. The
// context passed to fn is cancelled as soon as any rank fails.
func RunRanks(ctx context.Context, n int, fn func(ctx context.Context, rank int) error) error {
	if n <= 0 {
		n = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	for rank := 0; rank < n; rank++ {
		rank := rank
		g.Go(func() error {
			return fn(ctx, rank)
		})
	}
	return g.Wait()
}
