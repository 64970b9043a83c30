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

// Package quest runs serialised circuits on the state-vector engine and returns their
// packed shot outcomes.
package quest

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/fillay12321/qsim/quest/processor"
	"github.com/fillay12321/qsim/quest/quantum"
	"github.com/fillay12321/qsim/quest/results"
	"github.com/fillay12321/qsim/quest/rng"
	"github.com/fillay12321/qsim/quest/serial"
	"github.com/fillay12321/qsim/quest/utils"
)

var (
	// ErrTooManyQubits is returned for circuits wider than Config.MaxQubits.
	ErrTooManyQubits = errors.New("circuit exceeds qubit limit")

	// ErrNegativeShots is returned for a negative shot count.
	ErrNegativeShots = errors.New("negative shot count")
)

// Simulator turns serial circuits into backend results. It is not safe for concurrent
// use; every rank or goroutine owns its own Simulator.
type Simulator struct {
	config   Config
	runner   ShotRunner
	builder  *processor.Builder
	profiler *utils.Profiler
	log      log.Logger
}

// NewSimulator creates a simulator producing shots with strategy. A nil logger means
// the root logger.
func NewSimulator(config Config, strategy Strategy, logger log.Logger) (*Simulator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Root()
	}
	profiler := utils.NewProfiler()
	if !config.Profile {
		profiler.Disable()
	}
	runner, err := NewShotRunner(strategy, profiler)
	if err != nil {
		return nil, err
	}
	return &Simulator{
		config: config,
		runner: runner,
		builder: processor.NewBuilder(processor.Options{
			Measure: runner.MeasureMode(),
			ZZPhase: config.ZZPhaseForm,
		}),
		profiler: profiler,
		log:      logger,
	}, nil
}

// Strategy returns the shot strategy of the simulator.
func (s *Simulator) Strategy() Strategy { return s.runner.Strategy() }

// Profiler returns the timing profiler. It records nothing unless Config.Profile is set.
func (s *Simulator) Profiler() *utils.Profiler { return s.profiler }

// SimulateCircuit runs nShots shots of c. All randomness, both for measurement seeds
// during translation and for execution, comes from stream.
func (s *Simulator) SimulateCircuit(c *serial.Circuit, nShots int, stream *rng.Stream) (*results.BackendResult, error) {
	if c == nil {
		return nil, serial.ErrNullCircuit
	}
	if nShots < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeShots, nShots)
	}
	numQubits, width := len(c.Qubits), len(c.Bits)
	if numQubits > s.config.MaxQubits {
		return nil, fmt.Errorf("%w: %d qubits, limit %d", ErrTooManyQubits, numQubits, s.config.MaxQubits)
	}
	if s.config.MemoryCheck {
		if err := utils.CheckStateVectorFits(numQubits); err != nil {
			return nil, err
		}
	}
	if s.runner.Strategy() == Bulk {
		if n := c.CountMeasurements(); n > 0 {
			s.log.Warn("Measurements deferred to end-of-circuit sampling", "measurements", n)
		}
	}

	s.profiler.StartOperation("build")
	circuit, err := s.builder.Build(c, stream)
	s.profiler.EndOperation("build")
	if err != nil {
		return nil, err
	}
	env, err := quantum.NewQuestEnv(numQubits, width)
	if err != nil {
		return nil, err
	}
	shots, err := s.runner.Run(circuit, env, nShots, width, stream)
	if err != nil {
		return nil, err
	}
	s.log.Debug("Simulated circuit", "qubits", numQubits, "bits", width, "gates", circuit.Len(),
		"shots", nShots, "strategy", s.runner.Strategy())

	return &results.BackendResult{Qubits: c.Qubits, Bits: c.Bits, Shots: shots}, nil
}

// SimulateCircuits runs every circuit in order with one stream created from seed. A
// nil seed draws the stream from process entropy. With profiling on, timings are
// reset at the start of each batch and logged at its end.
func (s *Simulator) SimulateCircuits(cs []*serial.Circuit, nShots int, seed *uint64) ([]*results.BackendResult, error) {
	profiling := s.profiler.IsEnabled()
	if profiling {
		s.profiler.Reset()
	}
	stream := rng.New(seed)
	out := make([]*results.BackendResult, 0, len(cs))
	for i, c := range cs {
		res, err := s.SimulateCircuit(c, nShots, stream)
		if err != nil {
			return nil, fmt.Errorf("circuit %d: %w", i, err)
		}
		out = append(out, res)
	}
	if profiling {
		s.profiler.LogStatistics(s.log)
		s.log.Info("Simulated circuit batch", "circuits", len(cs),
			"build", common.PrettyDuration(s.profiler.GetTotalTime("build")),
			"shots", common.PrettyDuration(s.profiler.GetTotalTime("shots")))
	}
	return out, nil
}
