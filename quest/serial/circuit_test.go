package serial

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bell = `{
  "name": "bell",
  "phase": "0.0",
  "qubits": [["q", [0]], ["q", [1]]],
  "bits": [["c", [0]], ["c", [1]]],
  "commands": [
    {"op": {"type": "H"}, "args": [["q", [0]]]},
    {"op": {"type": "CX"}, "args": [["q", [0]], ["q", [1]]], "opgroup": "entangle"},
    {"op": {"type": "Measure"}, "args": [["q", [0]], ["c", [0]]]},
    {"op": {"type": "Measure"}, "args": [["q", [1]], ["c", [1]]]}
  ],
  "implicit_permutation": [[["q", [0]], ["q", [0]]], [["q", [1]], ["q", [1]]]]
}`

func TestDecodeCircuit(t *testing.T) {
	c, err := DecodeCircuit(strings.NewReader(bell))
	require.NoError(t, err)
	require.NotNil(t, c.Name)
	assert.Equal(t, "bell", *c.Name)
	assert.Equal(t, []ElementId{NewElement("q", 0), NewElement("q", 1)}, c.Qubits)
	assert.Len(t, c.Bits, 2)
	require.Len(t, c.Commands, 4)
	assert.Equal(t, OpCX, c.Commands[1].Op.Type)
	require.NotNil(t, c.Commands[1].OpGroup)
	assert.Equal(t, "entangle", *c.Commands[1].OpGroup)
	assert.Equal(t, 2, c.CountMeasurements())
	assert.Len(t, c.ImplicitPermutation, 2)
}

func TestCircuitRoundTrip(t *testing.T) {
	c, err := DecodeCircuit(strings.NewReader(bell))
	require.NoError(t, err)
	enc, err := json.Marshal(c)
	require.NoError(t, err)
	again, err := DecodeCircuit(strings.NewReader(string(enc)))
	require.NoError(t, err)
	assert.Equal(t, c, again)
}

func TestElementId(t *testing.T) {
	var e ElementId
	require.NoError(t, json.Unmarshal([]byte(`["node", [1, 2]]`), &e))
	assert.Equal(t, "node[1,2]", e.String())

	enc, err := json.Marshal(ElementId{Reg: "q"})
	require.NoError(t, err)
	assert.JSONEq(t, `["q", []]`, string(enc))

	for _, bad := range []string{`"q"`, `["q"]`, `[1, [0]]`, `["q", 0]`, `["q", [0], 1]`} {
		assert.ErrorIs(t, json.Unmarshal([]byte(bad), &e), ErrBadElement, bad)
	}
}

func TestCommandArg(t *testing.T) {
	cmd := Command{Op: Operation{Type: OpCX}, Args: []ElementId{
		NewElement("q", 3),
		NewElement("q", -1),
		NewElement("q", math.MaxUint32+1),
		{Reg: "q"},
		NewElement("q", math.MaxUint32),
	}}
	idx, err := cmd.Arg(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), idx)

	for _, i := range []int{1, 2, 3, 5, -1} {
		_, err := cmd.Arg(i)
		assert.Error(t, err, i)
	}
	idx, err = cmd.Arg(4)
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32), idx)
}

func TestDecodeCircuits(t *testing.T) {
	cs, err := DecodeCircuits(strings.NewReader("[" + bell + "," + bell + "]"))
	require.NoError(t, err)
	assert.Len(t, cs, 2)

	_, err = DecodeCircuits(strings.NewReader(bell))
	assert.Error(t, err)

	_, err = DecodeCircuits(strings.NewReader("[" + bell + ",null]"))
	assert.ErrorIs(t, err, ErrNullCircuit)
	assert.Contains(t, err.Error(), "circuit 1")
}
