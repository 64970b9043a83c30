// Package quantum реализует движок вектора состояния, на котором исполняются схемы.
//
// Кубит k соответствует биту k индекса базисного состояния. Вращения задаются как
// R_P(θ) = exp(+iθP/2), то есть в обратную сторону относительно формата входных схем,
// поэтому при трансляции углы меняют знак.
package quantum

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"math/cmplx"
	"math/rand/v2"
	"sort"
	"sync"
)

// MaxSupportedQubits ограничивает размер вектора состояния: 2^30 амплитуд это 16GiB
const MaxSupportedQubits = 30

var (
	// ErrQubitOutOfRange ошибка, возникающая при обращении к несуществующему кубиту
	ErrQubitOutOfRange = errors.New("qubit index out of range")

	// ErrInvalidGate ошибка, возникающая при некорректном описании вентиля
	ErrInvalidGate = errors.New("invalid gate")

	// ErrInvalidQuantumState ошибка, возникающая когда амплитуды нельзя нормировать
	ErrInvalidQuantumState = errors.New("invalid quantum state")
)

// QuestEnv хранит амплитуды n-кубитного регистра и классический регистр,
// в который пишут измерения
type QuestEnv struct {
	numQubits int

	// Для n кубитов размер массива будет 2^n
	state []complex128

	// По слову на классический бит, значим только младший бит
	classical []uint64

	mutex sync.Mutex
}

// NewQuestEnv создает регистр из numQubits кубитов в состоянии |0...0⟩ и классический
// регистр из numBits бит
func NewQuestEnv(numQubits, numBits int) (*QuestEnv, error) {
	if numQubits < 0 {
		return nil, fmt.Errorf("%w: negative qubit count %d", ErrQubitOutOfRange, numQubits)
	}
	if numQubits > MaxSupportedQubits {
		return nil, fmt.Errorf("%w: %d qubits exceeds the supported maximum of %d", ErrQubitOutOfRange, numQubits, MaxSupportedQubits)
	}
	if numBits < 0 {
		numBits = 0
	}
	state := make([]complex128, 1<<numQubits)
	state[0] = 1
	return &QuestEnv{
		numQubits: numQubits,
		state:     state,
		classical: make([]uint64, numBits),
	}, nil
}

// GetQubitCount возвращает количество кубитов в системе
func (q *QuestEnv) GetQubitCount() int {
	return q.numQubits
}

// SetZeroState сбрасывает состояние в начальное |0...0⟩ и обнуляет классический
// регистр, сохраняя его ширину
func (q *QuestEnv) SetZeroState() {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	for i := range q.state {
		q.state[i] = 0
	}
	q.state[0] = 1
	for i := range q.classical {
		q.classical[i] = 0
	}
}

// ClassicalRegister возвращает копию классического регистра
func (q *QuestEnv) ClassicalRegister() []uint64 {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	reg := make([]uint64, len(q.classical))
	copy(reg, q.classical)
	return reg
}

// SetClassicalValue записывает value по индексу, при необходимости расширяя регистр
func (q *QuestEnv) SetClassicalValue(index int, value uint64) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if index >= len(q.classical) {
		grown := make([]uint64, index+1)
		copy(grown, q.classical)
		q.classical = grown
	}
	q.classical[index] = value
}

// GetStateVector возвращает копию амплитуд
func (q *QuestEnv) GetStateVector() []complex128 {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	stateCopy := make([]complex128, len(q.state))
	copy(stateCopy, q.state)
	return stateCopy
}

// GetAmplitude возвращает амплитуду базисного состояния
func (q *QuestEnv) GetAmplitude(basisState uint64) (complex128, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if basisState >= uint64(len(q.state)) {
		return 0, fmt.Errorf("%w: basis state %d", ErrQubitOutOfRange, basisState)
	}
	return q.state[basisState], nil
}

func (q *QuestEnv) checkQubitIndex(qubit int) error {
	if qubit < 0 || qubit >= q.numQubits {
		return fmt.Errorf("%w: qubit %d, register has %d", ErrQubitOutOfRange, qubit, q.numQubits)
	}
	return nil
}

// applyPairs применяет матрицу 2x2 [[m00 m01] [m10 m11]] к кубиту
func (q *QuestEnv) applyPairs(qubit int, m00, m01, m10, m11 complex128) {
	bit := 1 << qubit
	for i := range q.state {
		if i&bit != 0 {
			continue
		}
		j := i | bit
		a0, a1 := q.state[i], q.state[j]
		q.state[i] = m00*a0 + m01*a1
		q.state[j] = m10*a0 + m11*a1
	}
}

// ApplyHadamard применяет вентиль Адамара к указанному кубиту
func (q *QuestEnv) ApplyHadamard(qubit int) error {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if err := q.checkQubitIndex(qubit); err != nil {
		return err
	}
	h := complex(1/math.Sqrt2, 0)
	q.applyPairs(qubit, h, h, h, -h)
	return nil
}

// ApplyPauliX инвертирует кубит
func (q *QuestEnv) ApplyPauliX(qubit int) error {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if err := q.checkQubitIndex(qubit); err != nil {
		return err
	}
	bit := 1 << qubit
	for i := range q.state {
		if i&bit == 0 {
			j := i | bit
			q.state[i], q.state[j] = q.state[j], q.state[i]
		}
	}
	return nil
}

// ApplyPauliY применяет Y: |0⟩ -> i|1⟩, |1⟩ -> -i|0⟩
func (q *QuestEnv) ApplyPauliY(qubit int) error {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if err := q.checkQubitIndex(qubit); err != nil {
		return err
	}
	q.applyPairs(qubit, 0, -1i, 1i, 0)
	return nil
}

// ApplyPauliZ меняет знак амплитуд, где кубит равен 1
func (q *QuestEnv) ApplyPauliZ(qubit int) error {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if err := q.checkQubitIndex(qubit); err != nil {
		return err
	}
	bit := 1 << qubit
	for i := range q.state {
		if i&bit != 0 {
			q.state[i] = -q.state[i]
		}
	}
	return nil
}

// ApplyCNOT инвертирует target там, где control равен 1
func (q *QuestEnv) ApplyCNOT(control, target int) error {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if err := q.checkQubitIndex(control); err != nil {
		return err
	}
	if err := q.checkQubitIndex(target); err != nil {
		return err
	}
	if control == target {
		return fmt.Errorf("%w: control and target are both qubit %d", ErrInvalidGate, control)
	}
	cbit, tbit := 1<<control, 1<<target
	for i := range q.state {
		if i&cbit != 0 && i&tbit == 0 {
			j := i | tbit
			q.state[i], q.state[j] = q.state[j], q.state[i]
		}
	}
	return nil
}

// ApplyRotationX применяет exp(iθX/2)
func (q *QuestEnv) ApplyRotationX(qubit int, theta float64) error {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if err := q.checkQubitIndex(qubit); err != nil {
		return err
	}
	c := complex(math.Cos(theta/2), 0)
	s := complex(0, math.Sin(theta/2))
	q.applyPairs(qubit, c, s, s, c)
	return nil
}

// ApplyRotationZ применяет exp(iθZ/2) = diag(e^{iθ/2}, e^{-iθ/2})
func (q *QuestEnv) ApplyRotationZ(qubit int, theta float64) error {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if err := q.checkQubitIndex(qubit); err != nil {
		return err
	}
	q.applyPairs(qubit, cmplx.Rect(1, theta/2), 0, 0, cmplx.Rect(1, -theta/2))
	return nil
}

// ApplyPauliRotation применяет exp(iθP/2) для строки Паули P на заданных кубитах
func (q *QuestEnv) ApplyPauliRotation(qubits []int, paulis []Pauli, theta float64) error {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if len(qubits) != len(paulis) {
		return fmt.Errorf("%w: %d qubits for %d paulis", ErrInvalidGate, len(qubits), len(paulis))
	}
	var flip, zmask, ymask int
	for k, qubit := range qubits {
		if err := q.checkQubitIndex(qubit); err != nil {
			return err
		}
		bit := 1 << qubit
		if (flip|zmask)&bit != 0 {
			return fmt.Errorf("%w: qubit %d repeated", ErrInvalidGate, qubit)
		}
		switch paulis[k] {
		case PauliI:
		case PauliX:
			flip |= bit
		case PauliY:
			flip |= bit
			zmask |= bit
			ymask |= bit
		case PauliZ:
			zmask |= bit
		default:
			return fmt.Errorf("%w: unknown pauli %d", ErrInvalidGate, paulis[k])
		}
	}
	// P|i⟩ = i^{#Y} (-1)^{popcount(i & zmask)} |i ^ flip⟩
	yphase := complex128(1)
	for n := bits.OnesCount(uint(ymask)); n > 0; n-- {
		yphase *= 1i
	}
	c := complex(math.Cos(theta/2), 0)
	s := complex(0, math.Sin(theta/2))

	applied := make([]complex128, len(q.state))
	for i, amp := range q.state {
		v := yphase * amp
		if bits.OnesCount(uint(i&zmask))%2 == 1 {
			v = -v
		}
		applied[i^flip] = v
	}
	for i := range q.state {
		q.state[i] = c*q.state[i] + s*applied[i]
	}
	return nil
}

// ApplyDiagonal умножает каждую амплитуду на diag[k], где бит j числа k равен
// значению qubits[j] в базисном состоянии
func (q *QuestEnv) ApplyDiagonal(qubits []int, diag []complex128) error {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if len(diag) != 1<<len(qubits) {
		return fmt.Errorf("%w: %d diagonal entries for %d qubits", ErrInvalidGate, len(diag), len(qubits))
	}
	for _, qubit := range qubits {
		if err := q.checkQubitIndex(qubit); err != nil {
			return err
		}
	}
	for i := range q.state {
		k := 0
		for j, qubit := range qubits {
			k |= ((i >> qubit) & 1) << j
		}
		q.state[i] *= diag[k]
	}
	return nil
}

// MeasureQubit проецирует кубит на |0⟩, если r меньше вероятности получить 0, иначе
// на |1⟩, нормирует состояние и возвращает результат. r равномерно в [0,1).
func (q *QuestEnv) MeasureQubit(qubit int, r float64) (int, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if err := q.checkQubitIndex(qubit); err != nil {
		return -1, err
	}
	bit := 1 << qubit
	prob0, prob1 := 0.0, 0.0
	for i, amp := range q.state {
		p := real(amp)*real(amp) + imag(amp)*imag(amp)
		if i&bit == 0 {
			prob0 += p
		} else {
			prob1 += p
		}
	}
	// Из-за округления prob0 может быть чуть меньше суммы при нулевых амплитудах |1⟩,
	// поэтому выбираем только исход с ненулевым весом
	result, norm := 0, prob0
	if (r*(prob0+prob1) >= prob0 && prob1 > 0) || prob0 == 0 {
		result, norm = 1, prob1
	}
	if norm <= 0 {
		return -1, fmt.Errorf("%w: qubit %d has zero norm", ErrInvalidQuantumState, qubit)
	}
	scale := complex(1/math.Sqrt(norm), 0)
	for i := range q.state {
		if (i&bit != 0) != (result == 1) {
			q.state[i] = 0
		} else {
			q.state[i] *= scale
		}
	}
	return result, nil
}

// Sampling выбирает n базисных состояний по распределению амплитуд, не меняя
// состояние. Генератор инициализируется seed.
func (q *QuestEnv) Sampling(n int, seed uint64) []uint64 {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	stacked := make([]float64, len(q.state)+1)
	for i, amp := range q.state {
		stacked[i+1] = stacked[i] + real(amp)*real(amp) + imag(amp)*imag(amp)
	}
	random := rand.New(rand.NewPCG(seed, seed^seedMix))
	samples := make([]uint64, n)
	for k := range samples {
		r := random.Float64()
		// Первый элемент накопленной суммы строго больше r, минус один
		idx := sort.Search(len(stacked), func(i int) bool { return stacked[i] > r }) - 1
		if idx >= len(q.state) {
			idx = len(q.state) - 1
		}
		if idx < 0 {
			idx = 0
		}
		samples[k] = uint64(idx)
	}
	return samples
}

// seedMix развязывает два слова PCG, полученные из одного 64-битного seed
const seedMix = 0x9e3779b97f4a7c15

