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

package processor

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fillay12321/qsim/quest/expr"
	"github.com/fillay12321/qsim/quest/quantum"
	"github.com/fillay12321/qsim/quest/rng"
	"github.com/fillay12321/qsim/quest/serial"
)

func command(op serial.OpType, params []string, args ...serial.ElementId) serial.Command {
	return serial.Command{Op: serial.Operation{Type: op, Params: params}, Args: args}
}

func q(i int64) serial.ElementId { return serial.NewElement("q", i) }
func c(i int64) serial.ElementId { return serial.NewElement("c", i) }

func gateNames(gates []quantum.Gate) []string {
	names := make([]string, len(gates))
	for i, g := range gates {
		names[i] = g.Name()
	}
	return names
}

func TestMapCommand(t *testing.T) {
	tests := []struct {
		cmd    serial.Command
		names  []string
		qubits [][]int
	}{
		{command(serial.OpX, nil, q(0)), []string{"X"}, [][]int{{0}}},
		{command(serial.OpY, nil, q(1)), []string{"Y"}, [][]int{{1}}},
		{command(serial.OpZ, nil, q(2)), []string{"Z"}, [][]int{{2}}},
		{command(serial.OpH, nil, q(0)), []string{"H"}, [][]int{{0}}},
		{command(serial.OpCX, nil, q(2), q(0)), []string{"CNOT"}, [][]int{{2, 0}}},
		{command(serial.OpPhasedX, []string{"0.5", "0.25"}, q(1)), []string{"RZ", "RX", "RZ"}, [][]int{{1}, {1}, {1}}},
		{command(serial.OpZZPhase, []string{"0.1"}, q(0), q(2)), []string{"PauliRotation"}, [][]int{{0, 2}}},
		{command(serial.OpMeasure, nil, q(1), c(0)), []string{"Measurement"}, [][]int{{1}}},
	}
	tr := NewTranslator(Options{}, 3, 1, rng.NewSeeded(1))
	for _, tt := range tests {
		t.Run(string(tt.cmd.Op.Type), func(t *testing.T) {
			gates, err := tr.MapCommand(&tt.cmd)
			require.NoError(t, err)
			assert.Equal(t, tt.names, gateNames(gates))
			for i, g := range gates {
				assert.Equal(t, tt.qubits[i], g.Qubits())
			}
		})
	}
}

func TestPhasedXAngles(t *testing.T) {
	cmd := command(serial.OpPhasedX, []string{"0.5", "0.25"}, q(0))
	gates, err := NewTranslator(Options{}, 1, 0, nil).MapCommand(&cmd)
	require.NoError(t, err)
	require.Len(t, gates, 3)

	beta := -0.25 * math.Pi
	alpha := -0.5 * math.Pi
	assert.Equal(t, quantum.NewRZGate(0, beta).Params(), gates[0].Params())
	assert.Equal(t, quantum.NewRXGate(0, alpha).Params(), gates[1].Params())
	assert.Equal(t, quantum.NewRZGate(0, -beta).Params(), gates[2].Params())
}

func TestPhasedXFlipsQubit(t *testing.T) {
	env, err := quantum.NewQuestEnv(1, 0)
	require.NoError(t, err)

	cmd := command(serial.OpPhasedX, []string{"1", "0.5"}, q(0))
	gates, err := NewTranslator(Options{}, 1, 0, nil).MapCommand(&cmd)
	require.NoError(t, err)
	for _, g := range gates {
		require.NoError(t, g.Apply(env, 0))
	}
	amp, err := env.GetAmplitude(1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, cmplx.Abs(amp), 1e-12)
}

func TestZZPhaseFormsAgree(t *testing.T) {
	for _, angle := range []string{"0", "0.1", "0.5", "1", "-0.37", "0.306088405064804"} {
		states := make(map[ZZPhaseForm][]complex128)
		for _, form := range []ZZPhaseForm{ZZPhaseRotation, ZZPhaseDiagonal} {
			env, err := quantum.NewQuestEnv(3, 0)
			require.NoError(t, err)
			tr := NewTranslator(Options{ZZPhase: form}, 3, 0, nil)
			cmds := []serial.Command{
				command(serial.OpH, nil, q(0)),
				command(serial.OpH, nil, q(1)),
				command(serial.OpH, nil, q(2)),
				command(serial.OpZZPhase, []string{angle}, q(2), q(0)),
			}
			for i := range cmds {
				gates, err := tr.MapCommand(&cmds[i])
				require.NoError(t, err)
				for _, g := range gates {
					require.NoError(t, g.Apply(env, 0))
				}
			}
			states[form] = env.GetStateVector()
		}
		rot, diag := states[ZZPhaseRotation], states[ZZPhaseDiagonal]
		require.Len(t, diag, len(rot))
		for i := range rot {
			assert.InDelta(t, real(rot[i]), real(diag[i]), 1e-12, "angle %s amplitude %d", angle, i)
			assert.InDelta(t, imag(rot[i]), imag(diag[i]), 1e-12, "angle %s amplitude %d", angle, i)
		}
	}
}

func TestMeasureModes(t *testing.T) {
	cmd := command(serial.OpMeasure, nil, q(0), c(0))

	stream := rng.NewSeeded(7)
	gates, err := NewTranslator(Options{Measure: MeasureCollapse}, 1, 1, stream).MapCommand(&cmd)
	require.NoError(t, err)
	assert.Equal(t, []string{"Measurement"}, gateNames(gates))
	assert.Equal(t, uint64(1), stream.Draws())

	stream = rng.NewSeeded(7)
	gates, err = NewTranslator(Options{Measure: MeasureDeferred}, 1, 1, stream).MapCommand(&cmd)
	require.NoError(t, err)
	assert.Equal(t, []string{"I"}, gateNames(gates))
	assert.Zero(t, stream.Draws())

	_, err = NewTranslator(Options{Measure: MeasureCollapse}, 1, 1, nil).MapCommand(&cmd)
	assert.ErrorIs(t, err, ErrNoRandomness)
}

func TestMapCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		cmd  serial.Command
		want error
	}{
		{"unsupported", command("CCX", nil, q(0), q(1), q(2)), ErrUnsupportedOp},
		{"qubit range", command(serial.OpX, nil, q(2)), ErrArgumentRange},
		{"negative", command(serial.OpH, nil, q(-1)), ErrArgumentRange},
		{"bit range", command(serial.OpMeasure, nil, q(0), c(1)), ErrArgumentRange},
		{"missing target", command(serial.OpCX, nil, q(0)), ErrMissingArgument},
		{"missing beta", command(serial.OpPhasedX, []string{"0.5"}, q(0)), expr.ErrParamIndex},
		{"no params", command(serial.OpZZPhase, nil, q(0), q(1)), expr.ErrNoParams},
	}
	tr := NewTranslator(Options{}, 2, 1, rng.NewSeeded(1))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tr.MapCommand(&tt.cmd)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	bad := command(serial.OpPhasedX, []string{"1 +", "0"}, q(0))
	_, err := tr.MapCommand(&bad)
	var perr *expr.ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestSupported(t *testing.T) {
	tr := NewTranslator(Options{}, 1, 1, nil)
	for _, op := range []serial.OpType{serial.OpX, serial.OpY, serial.OpZ, serial.OpH, serial.OpCX,
		serial.OpPhasedX, serial.OpZZPhase, serial.OpMeasure} {
		assert.True(t, tr.Supported(op), op)
	}
	assert.False(t, tr.Supported("Rz"))
	assert.False(t, tr.Supported("Barrier"))
}
