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

// Package processor транслирует команды сериализованных схем в примитивные вентили движка
package processor

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/fillay12321/qsim/quest/expr"
	"github.com/fillay12321/qsim/quest/quantum"
	"github.com/fillay12321/qsim/quest/rng"
	"github.com/fillay12321/qsim/quest/serial"
)

var (
	// ErrUnsupportedOp возникает при попытке транслировать неподдерживаемую операцию
	ErrUnsupportedOp = errors.New("unsupported operation")

	// ErrArgumentRange возникает, когда индекс аргумента не указывает на объявленный
	// кубит или бит
	ErrArgumentRange = errors.New("argument index out of range")

	// ErrMissingArgument возвращается, если у команды меньше аргументов, чем нужно
	ErrMissingArgument = errors.New("missing argument")

	// ErrNoRandomness возвращается, если измерению нужен seed, а поток не передан
	ErrNoRandomness = errors.New("measurement requires a random stream")
)

// MeasureMode определяет, как реализуются команды Measure
type MeasureMode int

const (
	// MeasureCollapse превращает Measure в измерение с seed, которое схлопывает
	// состояние и пишет в классический регистр
	MeasureCollapse MeasureMode = iota

	// MeasureDeferred превращает Measure в тождественный вентиль. Измерение происходит
	// при выборке из итогового состояния.
	MeasureDeferred
)

func (m MeasureMode) String() string {
	switch m {
	case MeasureCollapse:
		return "collapse"
	case MeasureDeferred:
		return "deferred"
	}
	return fmt.Sprintf("MeasureMode(%d)", int(m))
}

// ZZPhaseForm выбирает примитив для ZZPhase
type ZZPhaseForm string

const (
	// ZZPhaseRotation вращение Паули Z⊗Z
	ZZPhaseRotation ZZPhaseForm = "rotation"

	// ZZPhaseDiagonal явная диагональная матрица из 4 элементов
	ZZPhaseDiagonal ZZPhaseForm = "diagonal"
)

// Options настройки Translator
type Options struct {
	Measure MeasureMode
	ZZPhase ZZPhaseForm
}

// Translator преобразует команды одной схемы в примитивные вентили
type Translator struct {
	opts      Options
	numQubits int
	numBits   int
	evaluator *expr.Evaluator
	stream    *rng.Stream
	opMapping map[serial.OpType]func(cmd *serial.Command) ([]quantum.Gate, error)
}

// NewTranslator создает транслятор для схемы с заданными размерами регистров.
// stream дает seed для измерений и читается только в режиме MeasureCollapse.
func NewTranslator(opts Options, numQubits, numBits int, stream *rng.Stream) *Translator {
	if opts.ZZPhase == "" {
		opts.ZZPhase = ZZPhaseRotation
	}
	t := &Translator{
		opts:      opts,
		numQubits: numQubits,
		numBits:   numBits,
		evaluator: expr.NewEvaluator(),
		stream:    stream,
	}
	t.initializeOpMapping()
	return t
}

func (t *Translator) initializeOpMapping() {
	t.opMapping = map[serial.OpType]func(cmd *serial.Command) ([]quantum.Gate, error){
		// Паули и Адамар
		serial.OpX: t.singleQubit(quantum.NewXGate),
		serial.OpY: t.singleQubit(quantum.NewYGate),
		serial.OpZ: t.singleQubit(quantum.NewZGate),
		serial.OpH: t.singleQubit(quantum.NewHGate),

		serial.OpCX: t.mapCX,

		// Нативные вентили ионных ловушек, под которые компилируются схемы
		serial.OpPhasedX: t.mapPhasedX,
		serial.OpZZPhase: t.mapZZPhase,

		serial.OpMeasure: t.mapMeasure,
	}
}

// Supported сообщает, поддерживается ли операция
func (t *Translator) Supported(op serial.OpType) bool {
	_, ok := t.opMapping[op]
	return ok
}

// MapCommand возвращает примитивные вентили команды в порядке применения
func (t *Translator) MapCommand(cmd *serial.Command) ([]quantum.Gate, error) {
	handler, exists := t.opMapping[cmd.Op.Type]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedOp, cmd.Op.Type)
	}
	return handler(cmd)
}

// arg возвращает индекс регистра для аргумента i
func arg(cmd *serial.Command, i int) (uint32, error) {
	if i >= len(cmd.Args) {
		return 0, fmt.Errorf("%w: %s needs argument %d, has %d", ErrMissingArgument, cmd.Op.Type, i, len(cmd.Args))
	}
	idx, err := cmd.Arg(i)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrArgumentRange, err)
	}
	return idx, nil
}

func (t *Translator) qubitArg(cmd *serial.Command, i int) (int, error) {
	idx, err := arg(cmd, i)
	if err != nil {
		return 0, err
	}
	if int64(idx) >= int64(t.numQubits) {
		return 0, fmt.Errorf("%w: %s argument %d is qubit %d, circuit has %d", ErrArgumentRange, cmd.Op.Type, i, idx, t.numQubits)
	}
	return int(idx), nil
}

func (t *Translator) bitArg(cmd *serial.Command, i int) (int, error) {
	idx, err := arg(cmd, i)
	if err != nil {
		return 0, err
	}
	if int64(idx) >= int64(t.numBits) {
		return 0, fmt.Errorf("%w: %s argument %d is bit %d, circuit has %d", ErrArgumentRange, cmd.Op.Type, i, idx, t.numBits)
	}
	return int(idx), nil
}

// angle вычисляет параметр i и переводит полуобороты входного формата в радианы
// движка, который вращает в обратную сторону
func (t *Translator) angle(cmd *serial.Command, i int) (float64, error) {
	v, err := t.evaluator.EvalParam(cmd, i)
	if err != nil {
		return 0, fmt.Errorf("%s parameter %d: %w", cmd.Op.Type, i, err)
	}
	return -v * math.Pi, nil
}

func (t *Translator) singleQubit(gate func(int) quantum.Gate) func(*serial.Command) ([]quantum.Gate, error) {
	return func(cmd *serial.Command) ([]quantum.Gate, error) {
		q, err := t.qubitArg(cmd, 0)
		if err != nil {
			return nil, err
		}
		return []quantum.Gate{gate(q)}, nil
	}
}

func (t *Translator) mapCX(cmd *serial.Command) ([]quantum.Gate, error) {
	control, err := t.qubitArg(cmd, 0)
	if err != nil {
		return nil, err
	}
	target, err := t.qubitArg(cmd, 1)
	if err != nil {
		return nil, err
	}
	return []quantum.Gate{quantum.NewCNOTGate(control, target)}, nil
}

// mapPhasedX реализует PhasedX(α, β) = Rz(β)·Rx(α)·Rz(-β). α вычисляется раньше β.
func (t *Translator) mapPhasedX(cmd *serial.Command) ([]quantum.Gate, error) {
	q, err := t.qubitArg(cmd, 0)
	if err != nil {
		return nil, err
	}
	alpha, err := t.angle(cmd, 0)
	if err != nil {
		return nil, err
	}
	beta, err := t.angle(cmd, 1)
	if err != nil {
		return nil, err
	}
	return []quantum.Gate{
		quantum.NewRZGate(q, beta),
		quantum.NewRXGate(q, alpha),
		quantum.NewRZGate(q, -beta),
	}, nil
}

func (t *Translator) mapZZPhase(cmd *serial.Command) ([]quantum.Gate, error) {
	q1, err := t.qubitArg(cmd, 0)
	if err != nil {
		return nil, err
	}
	q2, err := t.qubitArg(cmd, 1)
	if err != nil {
		return nil, err
	}
	alpha, err := t.angle(cmd, 0)
	if err != nil {
		return nil, err
	}
	var gate quantum.Gate
	switch t.opts.ZZPhase {
	case ZZPhaseRotation:
		gate, err = quantum.NewPauliRotationGate([]int{q1, q2}, []quantum.Pauli{quantum.PauliZ, quantum.PauliZ}, alpha)
	case ZZPhaseDiagonal:
		gate, err = quantum.NewDiagonalGate([]int{q1, q2}, zzPhaseDiagonal(alpha))
	default:
		err = fmt.Errorf("%w: unknown ZZPhase form %q", ErrUnsupportedOp, t.opts.ZZPhase)
	}
	if err != nil {
		return nil, err
	}
	return []quantum.Gate{gate}, nil
}

// zzPhaseDiagonal возвращает exp(iθ/2 Z⊗Z) в виде диагонали: четные по паритету
// состояния получают e^{iθ/2}, нечетные e^{-iθ/2}. При θ = -πα это ZZPhase(α).
func zzPhaseDiagonal(theta float64) []complex128 {
	even := cmplx.Rect(1, theta/2)
	odd := cmplx.Rect(1, -theta/2)
	return []complex128{even, odd, odd, even}
}

func (t *Translator) mapMeasure(cmd *serial.Command) ([]quantum.Gate, error) {
	q, err := t.qubitArg(cmd, 0)
	if err != nil {
		return nil, err
	}
	if t.opts.Measure == MeasureDeferred {
		return []quantum.Gate{quantum.NewIdentityGate(q)}, nil
	}
	bit, err := t.bitArg(cmd, 1)
	if err != nil {
		return nil, err
	}
	if t.stream == nil {
		return nil, ErrNoRandomness
	}
	return []quantum.Gate{quantum.NewMeasurement(q, bit, t.stream.Uint32())}, nil
}
