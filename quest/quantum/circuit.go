package quantum

import (
	"fmt"
	"math/rand/v2"
)

// Circuit упорядоченный список примитивных вентилей над фиксированным числом кубитов
type Circuit struct {
	numQubits int
	gates     []Gate
}

// NewCircuit создает пустую схему из numQubits кубитов
func NewCircuit(numQubits int) *Circuit {
	return &Circuit{numQubits: numQubits}
}

// QubitCount возвращает количество кубитов схемы
func (c *Circuit) QubitCount() int { return c.numQubits }

// Len возвращает количество вентилей
func (c *Circuit) Len() int { return len(c.gates) }

// Gates возвращает вентили в порядке применения
func (c *Circuit) Gates() []Gate {
	return append([]Gate(nil), c.gates...)
}

// AddGate добавляет g, проверив, что он затрагивает только кубиты схемы
func (c *Circuit) AddGate(g Gate) error {
	for _, q := range g.Qubits() {
		if q < 0 || q >= c.numQubits {
			return fmt.Errorf("%w: %s on qubit %d, circuit has %d", ErrQubitOutOfRange, g.Name(), q, c.numQubits)
		}
	}
	c.gates = append(c.gates, g)
	return nil
}

// Update применяет вентили к env по порядку. Каждый вентиль получает свое значение
// из генератора, инициализированного seed: два обновления с одним seed совпадают.
func (c *Circuit) Update(env *QuestEnv, seed uint64) error {
	if env.GetQubitCount() != c.numQubits {
		return fmt.Errorf("%w: circuit has %d qubits, state has %d", ErrQubitOutOfRange, c.numQubits, env.GetQubitCount())
	}
	random := rand.New(rand.NewPCG(seed, seed^seedMix))
	for i, g := range c.gates {
		if err := g.Apply(env, random.Uint64()); err != nil {
			return fmt.Errorf("gate %d (%s): %w", i, g.Name(), err)
		}
	}
	return nil
}
