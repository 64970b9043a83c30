// Package serial holds the JSON model of a serialised circuit: named gate operations
// over register elements, as emitted by pytket's Circuit.to_dict.
package serial

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
)

var (
	// ErrBadElement is returned for register elements that are not [name, [indices]].
	ErrBadElement = errors.New("malformed register element")

	// ErrNullCircuit is returned when a circuit list contains null.
	ErrNullCircuit = errors.New("null circuit")
)

// OpType names a gate kind, e.g. "H", "CX", "PhasedX".
type OpType string

// Operation types understood by the translator. Anything else is carried through the
// data model untouched and rejected at translation time.
const (
	OpX       OpType = "X"
	OpY       OpType = "Y"
	OpZ       OpType = "Z"
	OpH       OpType = "H"
	OpCX      OpType = "CX"
	OpPhasedX OpType = "PhasedX"
	OpZZPhase OpType = "ZZPhase"
	OpMeasure OpType = "Measure"
)

// ElementId identifies one qubit or bit: a register name and its (possibly multi
// dimensional) index. On the wire it is the pair ["q", [0]].
type ElementId struct {
	Reg   string
	Index []int64
}

// NewElement is a convenience constructor for one dimensional registers.
func NewElement(reg string, index int64) ElementId {
	return ElementId{Reg: reg, Index: []int64{index}}
}

func (e ElementId) String() string {
	s := e.Reg + "["
	for i, idx := range e.Index {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprint(idx)
	}
	return s + "]"
}

// MarshalJSON encodes the element as [name, [indices]].
func (e ElementId) MarshalJSON() ([]byte, error) {
	index := e.Index
	if index == nil {
		index = []int64{}
	}
	return json.Marshal([]interface{}{e.Reg, index})
}

// UnmarshalJSON decodes [name, [indices]].
func (e *ElementId) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrBadElement, err)
	}
	if len(raw) != 2 {
		return fmt.Errorf("%w: want 2 entries, have %d", ErrBadElement, len(raw))
	}
	if err := json.Unmarshal(raw[0], &e.Reg); err != nil {
		return fmt.Errorf("%w: register name: %v", ErrBadElement, err)
	}
	if err := json.Unmarshal(raw[1], &e.Index); err != nil {
		return fmt.Errorf("%w: index: %v", ErrBadElement, err)
	}
	return nil
}

// Operation is the gate applied by a command.
type Operation struct {
	Type        OpType          `json:"type"`
	NQb         *uint32         `json:"n_qb,omitempty"`
	Params      []string        `json:"params,omitempty"`
	Signature   []string        `json:"signature,omitempty"`
	Box         json.RawMessage `json:"box,omitempty"`
	Conditional json.RawMessage `json:"conditional,omitempty"`
}

// Command applies an operation to an ordered list of arguments. The meaning of each
// argument position is fixed per operation (control/target, qubit/bit, ...).
type Command struct {
	Op      Operation   `json:"op"`
	Args    []ElementId `json:"args"`
	OpGroup *string     `json:"opgroup,omitempty"`
}

// Arg returns the first index of argument i as a uint32. Indices that are negative or
// do not fit 32 bits are rejected.
func (c *Command) Arg(i int) (uint32, error) {
	if i < 0 || i >= len(c.Args) {
		return 0, fmt.Errorf("%s: argument %d missing, have %d", c.Op.Type, i, len(c.Args))
	}
	arg := c.Args[i]
	if len(arg.Index) == 0 {
		return 0, fmt.Errorf("%s: argument %d (%s) has no index", c.Op.Type, i, arg)
	}
	idx := arg.Index[0]
	if idx < 0 || idx > math.MaxUint32 {
		return 0, fmt.Errorf("%s: argument %d index %d does not fit uint32", c.Op.Type, i, idx)
	}
	return uint32(idx), nil
}

// Circuit is a serialised circuit. Qubits and Bits are the declared registers and
// determine the simulated width and the shape of the result.
type Circuit struct {
	Name                *string        `json:"name,omitempty"`
	Phase               string         `json:"phase"`
	Qubits              []ElementId    `json:"qubits"`
	Bits                []ElementId    `json:"bits"`
	Commands            []Command      `json:"commands"`
	ImplicitPermutation [][2]ElementId `json:"implicit_permutation"`
	CreatedQubits       []ElementId    `json:"created_qubits,omitempty"`
	DiscardedQubits     []ElementId    `json:"discarded_qubits,omitempty"`
}

// CountMeasurements returns the number of Measure commands.
func (c *Circuit) CountMeasurements() int {
	n := 0
	for i := range c.Commands {
		if c.Commands[i].Op.Type == OpMeasure {
			n++
		}
	}
	return n
}

// DecodeCircuit reads one circuit.
func DecodeCircuit(r io.Reader) (*Circuit, error) {
	var c Circuit
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("decoding circuit: %w", err)
	}
	return &c, nil
}

// DecodeCircuits reads a JSON list of circuits. A null entry is an error.
func DecodeCircuits(r io.Reader) ([]*Circuit, error) {
	var cs []*Circuit
	if err := json.NewDecoder(r).Decode(&cs); err != nil {
		return nil, fmt.Errorf("decoding circuits: %w", err)
	}
	for i, c := range cs {
		if c == nil {
			return nil, fmt.Errorf("%w: circuit %d", ErrNullCircuit, i)
		}
	}
	return cs, nil
}
