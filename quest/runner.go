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

package quest

import (
	"fmt"

	"github.com/fillay12321/qsim/quest/processor"
	"github.com/fillay12321/qsim/quest/quantum"
	"github.com/fillay12321/qsim/quest/results"
	"github.com/fillay12321/qsim/quest/rng"
	"github.com/fillay12321/qsim/quest/utils"
)

// ShotRunner executes a built circuit against a state and encodes the outcomes.
type ShotRunner interface {
	Strategy() Strategy

	// MeasureMode is the translation mode the runner's circuits must be built with.
	MeasureMode() processor.MeasureMode

	// Run produces nShots outcomes of width bits each.
	Run(circuit *quantum.Circuit, env *quantum.QuestEnv, nShots, width int, stream *rng.Stream) (results.OutcomeArray, error)
}

// NewShotRunner returns the runner implementing strategy. A nil profiler records
// nothing.
func NewShotRunner(strategy Strategy, profiler *utils.Profiler) (ShotRunner, error) {
	if profiler == nil {
		profiler = utils.NewProfiler()
		profiler.Disable()
	}
	switch strategy {
	case PerShot:
		return &PerShotRunner{profiler: profiler}, nil
	case Bulk:
		return &BulkRunner{profiler: profiler}, nil
	}
	return nil, fmt.Errorf("unknown strategy %v", strategy)
}

// PerShotRunner prepares the zero state and runs the full circuit for every shot.
type PerShotRunner struct {
	profiler *utils.Profiler
}

func (r *PerShotRunner) Strategy() Strategy                 { return PerShot }
func (r *PerShotRunner) MeasureMode() processor.MeasureMode { return processor.MeasureCollapse }

// Run draws one value per shot from stream and hands it to the circuit update.
func (r *PerShotRunner) Run(circuit *quantum.Circuit, env *quantum.QuestEnv, nShots, width int, stream *rng.Stream) (results.OutcomeArray, error) {
	if nShots == 0 {
		return results.OutcomeArray{Width: width, Array: [][]byte{}}, nil
	}
	defer r.profiler.Track("shots")()
	shots := make([][]uint64, nShots)
	for i := range shots {
		env.SetZeroState()
		if err := circuit.Update(env, stream.Uint64()); err != nil {
			return results.OutcomeArray{}, fmt.Errorf("shot %d: %w", i, err)
		}
		shots[i] = env.ClassicalRegister()
	}
	return results.ConvertShots(shots), nil
}

// BulkRunner runs the circuit once and samples every shot from the final state.
type BulkRunner struct {
	profiler *utils.Profiler
}

func (r *BulkRunner) Strategy() Strategy                 { return Bulk }
func (r *BulkRunner) MeasureMode() processor.MeasureMode { return processor.MeasureDeferred }

// Run draws two values from stream: one for the update and one for sampling.
func (r *BulkRunner) Run(circuit *quantum.Circuit, env *quantum.QuestEnv, nShots, width int, stream *rng.Stream) (results.OutcomeArray, error) {
	defer r.profiler.Track("shots")()
	env.SetZeroState()
	if err := circuit.Update(env, stream.Uint64()); err != nil {
		return results.OutcomeArray{}, err
	}
	samples := env.Sampling(nShots, stream.Uint64())
	return results.ConvertSamples(width, samples), nil
}
