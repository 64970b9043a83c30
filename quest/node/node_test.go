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
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/fillay12321/qsim/quest"
	"github.com/fillay12321/qsim/quest/results"
	"github.com/fillay12321/qsim/quest/serial"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const bellCircuit = `{
  "phase": "0.0",
  "qubits": [["q", [0]], ["q", [1]]],
  "bits": [["c", [0]], ["c", [1]]],
  "commands": [
    {"op": {"type": "H"}, "args": [["q", [0]]]},
    {"op": {"type": "CX"}, "args": [["q", [0]], ["q", [1]]]},
    {"op": {"type": "Measure"}, "args": [["q", [0]], ["c", [0]]]},
    {"op": {"type": "Measure"}, "args": [["q", [1]], ["c", [1]]]}
  ],
  "implicit_permutation": []
}`

const flipCircuit = `{
  "phase": "0.0",
  "qubits": [["q", [0]]],
  "bits": [["c", [0]]],
  "commands": [
    {"op": {"type": "X"}, "args": [["q", [0]]]},
    {"op": {"type": "Measure"}, "args": [["q", [0]], ["c", [0]]]}
  ],
  "implicit_permutation": []
}`

type fixture struct {
	dir string
	def *NodeDefinition
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newFixture(t *testing.T, function string, inputs map[string]string, outputs ...string) *fixture {
	t.Helper()
	dir := t.TempDir()
	def := &NodeDefinition{
		FunctionName: function,
		Inputs:       make(map[string]string),
		Outputs:      make(map[string]string),
		DonePath:     filepath.Join(dir, "done"),
	}
	for name, content := range inputs {
		path := filepath.Join(dir, name+".json")
		writeFile(t, path, content)
		def.Inputs[name] = path
	}
	for _, name := range outputs {
		def.Outputs[name] = filepath.Join(dir, name+".json")
	}
	return &fixture{dir: dir, def: def}
}

func (f *fixture) done() bool {
	_, err := os.Stat(f.def.DonePath)
	return err == nil
}

func (f *fixture) read(t *testing.T, name string, v interface{}) {
	t.Helper()
	data, err := os.ReadFile(f.def.Outputs[name])
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

func testRunner(seed *uint64) *Runner {
	r := NewRunner()
	r.Config.MemoryCheck = false
	r.Seed = seed
	return r
}

func TestSubmitSingle(t *testing.T) {
	clearLauncher(t)
	f := newFixture(t, "submit_single", map[string]string{"circuit": bellCircuit, "n_shots": "10"}, "backend_result")
	require.NoError(t, testRunner(nil).Run(context.Background(), f.def))
	assert.True(t, f.done())

	var res results.BackendResult
	f.read(t, "backend_result", &res)
	assert.Equal(t, 2, res.Shots.Width)
	require.Len(t, res.Shots.Array, 10)
	for _, shot := range res.Shots.Array {
		assert.Contains(t, [][]byte{{0}, {192}}, shot)
	}
}

func TestSubmit(t *testing.T) {
	clearLauncher(t)
	f := newFixture(t, "submit", map[string]string{
		"circuits": "[" + flipCircuit + "," + bellCircuit + "]",
		"n_shots":  "5",
	}, "backend_results")
	require.NoError(t, testRunner(nil).Run(context.Background(), f.def))
	assert.True(t, f.done())

	var res []results.BackendResult
	f.read(t, "backend_results", &res)
	require.Len(t, res, 2)
	assert.Equal(t, 1, res[0].Shots.Width)
	for _, shot := range res[0].Shots.Array {
		assert.Equal(t, []byte{128}, shot)
	}
	assert.Len(t, res[1].Shots.Array, 5)
}

func TestSeededRunsReproduce(t *testing.T) {
	clearLauncher(t)
	seed := uint64(99)
	var outputs [][]byte
	for i := 0; i < 2; i++ {
		f := newFixture(t, "submit", map[string]string{"circuits": "[" + bellCircuit + "]", "n_shots": "64"}, "backend_results")
		require.NoError(t, testRunner(&seed).Run(context.Background(), f.def))
		data, err := os.ReadFile(f.def.Outputs["backend_results"])
		require.NoError(t, err)
		outputs = append(outputs, data)
	}
	assert.Equal(t, outputs[0], outputs[1])
}

func TestRunFailuresLeaveNoMarker(t *testing.T) {
	clearLauncher(t)
	tests := []struct {
		name     string
		function string
		inputs   map[string]string
		outputs  []string
		limit    int
		want     error
	}{
		{"unknown function", "submit_batch", map[string]string{"circuit": bellCircuit, "n_shots": "1"}, []string{"backend_result"}, 0, ErrUnknownFunction},
		{"missing circuit", "submit_single", map[string]string{"n_shots": "1"}, []string{"backend_result"}, 0, ErrMissingInput},
		{"null circuit", "submit", map[string]string{"circuits": "[" + bellCircuit + ",null]", "n_shots": "1"}, []string{"backend_results"}, 0, serial.ErrNullCircuit},
		{"missing output", "submit_single", map[string]string{"circuit": bellCircuit, "n_shots": "1"}, nil, 0, ErrMissingInput},
		{"too wide", "submit_single", map[string]string{"circuit": bellCircuit, "n_shots": "1"}, []string{"backend_result"}, 1, quest.ErrTooManyQubits},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.function, tt.inputs, tt.outputs...)
			r := testRunner(nil)
			if tt.limit > 0 {
				r.Config.MaxQubits = tt.limit
			}
			err := r.Run(context.Background(), f.def)
			assert.ErrorIs(t, err, tt.want)
			assert.False(t, f.done())
		})
	}
}

// clearLauncher hides any launcher rank the test process inherited.
func clearLauncher(t *testing.T) {
	t.Helper()
	for _, name := range rankVariables {
		t.Setenv(name, "")
	}
}

func TestStaleMarkerRemoved(t *testing.T) {
	clearLauncher(t)
	f := newFixture(t, "submit_single", map[string]string{"circuit": `{"qubits": [["q", [0]]], "bits": [], "commands": [{"op": {"type": "CCX"}, "args": [["q", [0]]]}]}`, "n_shots": "1"}, "backend_result")
	writeFile(t, f.def.DonePath, "")
	require.Error(t, testRunner(nil).Run(context.Background(), f.def))
	assert.False(t, f.done())
	_, err := os.Stat(f.def.Outputs["backend_result"])
	assert.True(t, errors.Is(err, os.ErrNotExist))

	// An unknown function fails before any handler runs; the old marker still goes.
	f = newFixture(t, "bogus", map[string]string{"circuit": bellCircuit, "n_shots": "1"}, "backend_result")
	writeFile(t, f.def.DonePath, "")
	require.ErrorIs(t, testRunner(nil).Run(context.Background(), f.def), ErrUnknownFunction)
	assert.False(t, f.done())
}

func TestNonRootRankKeepsMarker(t *testing.T) {
	clearLauncher(t)
	t.Setenv("OMPI_COMM_WORLD_RANK", "1")

	f := newFixture(t, "bogus", nil, "backend_result")
	writeFile(t, f.def.DonePath, "")
	require.ErrorIs(t, testRunner(nil).Run(context.Background(), f.def), ErrUnknownFunction)
	assert.True(t, f.done())

	f = newFixture(t, "submit_single", map[string]string{"circuit": bellCircuit, "n_shots": "4"}, "backend_result")
	require.NoError(t, testRunner(nil).Run(context.Background(), f.def))
	assert.False(t, f.done())
	_, err := os.Stat(f.def.Outputs["backend_result"])
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestNegativeShotsRejected(t *testing.T) {
	clearLauncher(t)
	f := newFixture(t, "submit_single", map[string]string{"circuit": bellCircuit, "n_shots": "-3"}, "backend_result")
	assert.Error(t, testRunner(nil).Run(context.Background(), f.def))
	assert.False(t, f.done())
}

func TestLoadNodeDefinition(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "node.json")
	writeFile(t, path, `{"function_name": "submit_single", "inputs": {"circuit": "c.json", "n_shots": "n.json"},
		"outputs": {"backend_result": "r.json"}, "done_path": "done", "log_path": "node.log"}`)
	def, err := LoadNodeDefinition(path)
	require.NoError(t, err)
	assert.Equal(t, "submit_single", def.FunctionName)
	assert.Equal(t, "c.json", def.Inputs["circuit"])
	assert.Equal(t, "r.json", def.Outputs["backend_result"])
	assert.Equal(t, "node.log", def.LogPath)

	writeFile(t, path, `{"function_name": "submit"}`)
	_, err = LoadNodeDefinition(path)
	assert.ErrorIs(t, err, ErrMissingInput)

	writeFile(t, path, `{`)
	_, err = LoadNodeDefinition(path)
	assert.Error(t, err)

	_, err = LoadNodeDefinition(filepath.Join(dir, "absent.json"))
	assert.Error(t, err)
}

func TestFunctions(t *testing.T) {
	names := Functions()
	assert.Contains(t, names, "submit")
	assert.Contains(t, names, "submit_single")
}

func TestLauncherRank(t *testing.T) {
	for _, name := range rankVariables {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	_, ok := LauncherRank()
	assert.False(t, ok)

	t.Setenv("SLURM_PROCID", "3")
	rank, ok := LauncherRank()
	assert.True(t, ok)
	assert.Equal(t, 3, rank)

	t.Setenv("PMI_RANK", "1")
	rank, _ = LauncherRank()
	assert.Equal(t, 1, rank)

	t.Setenv("OMPI_COMM_WORLD_RANK", "bogus")
	rank, _ = LauncherRank()
	assert.Equal(t, 1, rank)
}

func TestRunRanks(t *testing.T) {
	var seen [4]atomic.Bool
	require.NoError(t, RunRanks(context.Background(), 4, func(ctx context.Context, rank int) error {
		seen[rank].Store(true)
		return nil
	}))
	for rank := range seen {
		assert.True(t, seen[rank].Load(), rank)
	}

	var calls atomic.Int32
	require.NoError(t, RunRanks(context.Background(), 0, func(ctx context.Context, rank int) error {
		calls.Add(1)
		return nil
	}))
	assert.Equal(t, int32(1), calls.Load())
}

func TestRunRanksCancelsOnError(t *testing.T) {
	boom := errors.New("boom")
	err := RunRanks(context.Background(), 3, func(ctx context.Context, rank int) error {
		if rank == 1 {
			return boom
		}
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, boom)
}
