package quantum

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Pauli однокубитный оператор Паули
type Pauli uint8

const (
	PauliI Pauli = iota
	PauliX
	PauliY
	PauliZ
)

func (p Pauli) String() string {
	switch p {
	case PauliI:
		return "I"
	case PauliX:
		return "X"
	case PauliY:
		return "Y"
	case PauliZ:
		return "Z"
	}
	return fmt.Sprintf("Pauli(%d)", uint8(p))
}

// Gate примитивная операция движка. После создания вентиль не меняется.
//
// seed выдается Circuit.Update, по значению на вентиль; читают его только
// вероятностные вентили.
type Gate interface {
	Name() string
	Qubits() []int
	Params() string
	Apply(env *QuestEnv, seed uint64) error
}

type singleQubitGate struct {
	name  string
	qubit int
	apply func(env *QuestEnv, qubit int) error
}

func (g *singleQubitGate) Name() string   { return g.name }
func (g *singleQubitGate) Qubits() []int  { return []int{g.qubit} }
func (g *singleQubitGate) Params() string { return "" }

func (g *singleQubitGate) Apply(env *QuestEnv, _ uint64) error {
	return g.apply(env, g.qubit)
}

// NewXGate возвращает Паули-X (NOT)
func NewXGate(qubit int) Gate {
	return &singleQubitGate{name: "X", qubit: qubit, apply: (*QuestEnv).ApplyPauliX}
}

// NewYGate возвращает Паули-Y
func NewYGate(qubit int) Gate {
	return &singleQubitGate{name: "Y", qubit: qubit, apply: (*QuestEnv).ApplyPauliY}
}

// NewZGate возвращает Паули-Z
func NewZGate(qubit int) Gate {
	return &singleQubitGate{name: "Z", qubit: qubit, apply: (*QuestEnv).ApplyPauliZ}
}

// NewHGate возвращает вентиль Адамара
func NewHGate(qubit int) Gate {
	return &singleQubitGate{name: "H", qubit: qubit, apply: (*QuestEnv).ApplyHadamard}
}

// NewIdentityGate возвращает тождественный вентиль. Индекс кубита все равно проверяется.
func NewIdentityGate(qubit int) Gate {
	return &singleQubitGate{name: "I", qubit: qubit, apply: func(env *QuestEnv, q int) error {
		return env.checkQubitIndex(q)
	}}
}

type cnotGate struct {
	control, target int
}

// NewCNOTGate возвращает управляемое NOT
func NewCNOTGate(control, target int) Gate {
	return &cnotGate{control: control, target: target}
}

func (g *cnotGate) Name() string   { return "CNOT" }
func (g *cnotGate) Qubits() []int  { return []int{g.control, g.target} }
func (g *cnotGate) Params() string { return "" }

func (g *cnotGate) Apply(env *QuestEnv, _ uint64) error {
	return env.ApplyCNOT(g.control, g.target)
}

type rotationGate struct {
	axis  Pauli
	qubit int
	angle float64
}

// NewRXGate возвращает exp(iθX/2)
func NewRXGate(qubit int, angle float64) Gate {
	return &rotationGate{axis: PauliX, qubit: qubit, angle: angle}
}

// NewRZGate возвращает exp(iθZ/2)
func NewRZGate(qubit int, angle float64) Gate {
	return &rotationGate{axis: PauliZ, qubit: qubit, angle: angle}
}

func (g *rotationGate) Name() string   { return "R" + g.axis.String() }
func (g *rotationGate) Qubits() []int  { return []int{g.qubit} }
func (g *rotationGate) Params() string { return fmt.Sprintf("θ=%.12g", g.angle) }

func (g *rotationGate) Apply(env *QuestEnv, _ uint64) error {
	if g.axis == PauliX {
		return env.ApplyRotationX(g.qubit, g.angle)
	}
	return env.ApplyRotationZ(g.qubit, g.angle)
}

type pauliRotationGate struct {
	qubits []int
	paulis []Pauli
	angle  float64
}

// NewPauliRotationGate возвращает exp(iθP/2) для строки Паули paulis на кубитах qubits
func NewPauliRotationGate(qubits []int, paulis []Pauli, angle float64) (Gate, error) {
	if len(qubits) != len(paulis) || len(qubits) == 0 {
		return nil, fmt.Errorf("%w: pauli rotation over %d qubits with %d paulis", ErrInvalidGate, len(qubits), len(paulis))
	}
	return &pauliRotationGate{
		qubits: append([]int(nil), qubits...),
		paulis: append([]Pauli(nil), paulis...),
		angle:  angle,
	}, nil
}

func (g *pauliRotationGate) Name() string  { return "PauliRotation" }
func (g *pauliRotationGate) Qubits() []int { return append([]int(nil), g.qubits...) }

func (g *pauliRotationGate) Params() string {
	var sb strings.Builder
	for _, p := range g.paulis {
		sb.WriteString(p.String())
	}
	return fmt.Sprintf("%s θ=%.12g", sb.String(), g.angle)
}

func (g *pauliRotationGate) Apply(env *QuestEnv, _ uint64) error {
	return env.ApplyPauliRotation(g.qubits, g.paulis, g.angle)
}

type diagonalGate struct {
	qubits []int
	diag   []complex128
}

// NewDiagonalGate возвращает диагональный унитарный вентиль diag. Элемент k
// применяется к базисным состояниям, где бит j числа k равен qubits[j].
func NewDiagonalGate(qubits []int, diag []complex128) (Gate, error) {
	if len(qubits) == 0 || len(diag) != 1<<len(qubits) {
		return nil, fmt.Errorf("%w: %d diagonal entries for %d qubits", ErrInvalidGate, len(diag), len(qubits))
	}
	return &diagonalGate{
		qubits: append([]int(nil), qubits...),
		diag:   append([]complex128(nil), diag...),
	}, nil
}

func (g *diagonalGate) Name() string   { return "DiagonalMatrix" }
func (g *diagonalGate) Qubits() []int  { return append([]int(nil), g.qubits...) }
func (g *diagonalGate) Params() string { return fmt.Sprintf("%.6g", g.diag) }

func (g *diagonalGate) Apply(env *QuestEnv, _ uint64) error {
	return env.ApplyDiagonal(g.qubits, g.diag)
}

type measurementGate struct {
	qubit int
	bit   int
	seed  uint32
}

// NewMeasurement возвращает измерение кубита в вычислительном базисе с записью в
// классический бит bit. seed смешивается с seed обновления: повторные прогоны схемы
// дают разные исходы и при этом воспроизводимы.
func NewMeasurement(qubit, bit int, seed uint32) Gate {
	return &measurementGate{qubit: qubit, bit: bit, seed: seed}
}

func (g *measurementGate) Name() string   { return "Measurement" }
func (g *measurementGate) Qubits() []int  { return []int{g.qubit} }
func (g *measurementGate) Params() string { return fmt.Sprintf("bit=%d seed=%d", g.bit, g.seed) }

func (g *measurementGate) Apply(env *QuestEnv, seed uint64) error {
	if g.bit < 0 {
		return fmt.Errorf("%w: negative classical bit %d", ErrInvalidGate, g.bit)
	}
	r := rand.New(rand.NewPCG(uint64(g.seed), seed)).Float64()
	outcome, err := env.MeasureQubit(g.qubit, r)
	if err != nil {
		return err
	}
	env.SetClassicalValue(g.bit, uint64(outcome))
	return nil
}
