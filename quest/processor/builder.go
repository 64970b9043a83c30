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
	"fmt"

	"github.com/ethereum/go-ethereum/log"

	"github.com/fillay12321/qsim/quest/quantum"
	"github.com/fillay12321/qsim/quest/rng"
	"github.com/fillay12321/qsim/quest/serial"
)

// Builder превращает сериализованные схемы в схемы движка
type Builder struct {
	opts Options
}

// NewBuilder создает построитель с настройками opts
func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts}
}

// Build транслирует команды c по порядку и собирает вентили в схему из len(c.Qubits)
// кубитов. В режиме MeasureCollapse на каждую команду Measure из stream берется
// одно значение.
func (b *Builder) Build(c *serial.Circuit, stream *rng.Stream) (*quantum.Circuit, error) {
	t := NewTranslator(b.opts, len(c.Qubits), len(c.Bits), stream)
	circuit := quantum.NewCircuit(len(c.Qubits))
	for i := range c.Commands {
		cmd := &c.Commands[i]
		gates, err := t.MapCommand(cmd)
		if err != nil {
			return nil, fmt.Errorf("command %d: %w", i, err)
		}
		for _, g := range gates {
			if err := circuit.AddGate(g); err != nil {
				return nil, fmt.Errorf("command %d: %w", i, err)
			}
		}
	}
	log.Debug("Built circuit", "qubits", circuit.QubitCount(), "bits", len(c.Bits),
		"commands", len(c.Commands), "gates", circuit.Len(), "measure", b.opts.Measure)
	return circuit, nil
}

// Translation примитивная реализация одной команды
type Translation struct {
	Index   int
	Command *serial.Command
	Gates   []quantum.Gate
	Err     error
}

// Describe транслирует все команды c, не останавливаясь на первой ошибке, чтобы
// сообщить обо всех неподдерживаемых операциях сразу
func Describe(c *serial.Circuit, opts Options, stream *rng.Stream) []Translation {
	t := NewTranslator(opts, len(c.Qubits), len(c.Bits), stream)
	out := make([]Translation, len(c.Commands))
	for i := range c.Commands {
		cmd := &c.Commands[i]
		gates, err := t.MapCommand(cmd)
		out[i] = Translation{Index: i, Command: cmd, Gates: gates, Err: err}
	}
	return out
}
