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

import "fmt"

// Strategy selects how shots are produced.
type Strategy int

const (
	// PerShot re-runs the circuit once per shot, collapsing the state at every
	// Measure and reading the classical register afterwards.
	PerShot Strategy = iota

	// Bulk runs the circuit once, without intermediate measurements, and samples all
	// shots from the final amplitudes.
	Bulk
)

func (s Strategy) String() string {
	switch s {
	case PerShot:
		return "per-shot"
	case Bulk:
		return "bulk"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}
