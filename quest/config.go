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
)

// Config are the configuration options of the Simulator.
type Config struct {
	MaxQubits   int                   // Widest circuit accepted
	ZZPhaseForm processor.ZZPhaseForm // "rotation" or "diagonal"
	MemoryCheck bool                  // Check the state vector against free host memory
	Profile     bool                  // Record and log build/run timings
}

// DefaultConfig contains the default settings of the simulator.
var DefaultConfig = Config{
	MaxQubits:   25,
	ZZPhaseForm: processor.ZZPhaseRotation,
	MemoryCheck: true,
}

// Validate checks the settings for consistency.
func (c *Config) Validate() error {
	if c.MaxQubits <= 0 || c.MaxQubits > quantum.MaxSupportedQubits {
		return fmt.Errorf("MaxQubits %d outside 1..%d", c.MaxQubits, quantum.MaxSupportedQubits)
	}
	switch c.ZZPhaseForm {
	case processor.ZZPhaseRotation, processor.ZZPhaseDiagonal:
	default:
		return fmt.Errorf("unknown ZZPhaseForm %q", c.ZZPhaseForm)
	}
	return nil
}
