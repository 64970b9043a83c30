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

package utils

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/shirou/gopsutil/mem"
)

// ErrInsufficientMemory ошибка, возникающая когда вектор состояния не помещается
// в доступную память хоста
var ErrInsufficientMemory = errors.New("insufficient memory for state vector")

// amplitudeSize размер одной амплитуды complex128
const amplitudeSize = 16

// memoryHeadroom доля доступной памяти, которую может занять вектор состояния
const memoryHeadroom = 0.8

// HardwareInfo описывает хост, на котором идет симуляция
type HardwareInfo struct {
	CPUCores        int
	TotalMemory     uint64
	AvailableMemory uint64
}

// virtualMemory подменяется в тестах
var virtualMemory = mem.VirtualMemory

// DetectHardware определяет количество ядер и объем памяти хоста
func DetectHardware() (*HardwareInfo, error) {
	vm, err := virtualMemory()
	if err != nil {
		return nil, fmt.Errorf("querying host memory: %w", err)
	}
	info := &HardwareInfo{
		CPUCores:        runtime.NumCPU(),
		TotalMemory:     vm.Total,
		AvailableMemory: vm.Available,
	}
	log.Debug("Detected hardware", "cpus", info.CPUCores,
		"total", common.StorageSize(info.TotalMemory), "available", common.StorageSize(info.AvailableMemory))
	return info, nil
}

// StateVectorSize возвращает размер в байтах амплитуд для numQubits кубитов
func StateVectorSize(numQubits int) uint64 {
	return uint64(amplitudeSize) << uint(numQubits)
}

// MaxQubits возвращает максимальное число кубитов, помещающееся в доступную память
func (h *HardwareInfo) MaxQubits() int {
	budget := uint64(float64(h.AvailableMemory) * memoryHeadroom)
	n := 0
	for n < 62 && StateVectorSize(n+1) <= budget {
		n++
	}
	return n
}

// CheckStateVector возвращает ErrInsufficientMemory, если состояние из numQubits
// кубитов не помещается в доступную память
func (h *HardwareInfo) CheckStateVector(numQubits int) error {
	need := StateVectorSize(numQubits)
	budget := uint64(float64(h.AvailableMemory) * memoryHeadroom)
	if need > budget {
		return fmt.Errorf("%w: %d qubits need %v, %v available", ErrInsufficientMemory,
			numQubits, common.StorageSize(need), common.StorageSize(h.AvailableMemory))
	}
	return nil
}

// CheckStateVectorFits определяет память хоста и проверяет по ней состояние
// из numQubits кубитов
func CheckStateVectorFits(numQubits int) error {
	info, err := DetectHardware()
	if err != nil {
		return err
	}
	return info.CheckStateVector(numQubits)
}

func (h *HardwareInfo) String() string {
	return fmt.Sprintf("CPU: %d cores, memory: %v available of %v", h.CPUCores,
		common.StorageSize(h.AvailableMemory), common.StorageSize(h.TotalMemory))
}
