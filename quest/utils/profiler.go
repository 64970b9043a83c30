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

// Package utils содержит вспомогательные средства симулятора: замер времени операций
// и проверку памяти перед выделением вектора состояния.
package utils

import (
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

// OperationStats содержит статистику по операции
type OperationStats struct {
	Count        int64
	TotalTime    time.Duration
	MinTime      time.Duration
	MaxTime      time.Duration
	AvgTime      time.Duration
	LastCallTime time.Time
}

// Profiler замеряет длительность именованных операций
type Profiler struct {
	operationStats    map[string]*OperationStats
	currentOperations map[string]time.Time // имя -> время начала

	mutex   sync.Mutex
	enabled bool
}

// NewProfiler создает включенный профайлер
func NewProfiler() *Profiler {
	return &Profiler{
		operationStats:    make(map[string]*OperationStats),
		currentOperations: make(map[string]time.Time),
		enabled:           true,
	}
}

// StartOperation отмечает начало операции
func (p *Profiler) StartOperation(operationName string) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if !p.enabled {
		return
	}
	p.currentOperations[operationName] = time.Now()
}

// EndOperation отмечает конец операции, обновляет статистику и возвращает длительность.
// Операция, которая не была начата, не учитывается.
func (p *Profiler) EndOperation(operationName string) time.Duration {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if !p.enabled {
		return 0
	}
	startTime, ok := p.currentOperations[operationName]
	if !ok {
		return 0
	}
	endTime := time.Now()
	duration := endTime.Sub(startTime)
	delete(p.currentOperations, operationName)

	stats, ok := p.operationStats[operationName]
	if !ok {
		stats = &OperationStats{MinTime: duration, MaxTime: duration}
		p.operationStats[operationName] = stats
	}
	stats.Count++
	stats.TotalTime += duration
	if duration < stats.MinTime {
		stats.MinTime = duration
	}
	if duration > stats.MaxTime {
		stats.MaxTime = duration
	}
	stats.AvgTime = time.Duration(stats.TotalTime.Nanoseconds() / stats.Count)
	stats.LastCallTime = endTime

	return duration
}

// Track начинает операцию и возвращает функцию для её завершения через defer.
func (p *Profiler) Track(operationName string) func() {
	p.StartOperation(operationName)
	return func() { p.EndOperation(operationName) }
}

// GetOperationStats возвращает копию статистики операции или nil
func (p *Profiler) GetOperationStats(operationName string) *OperationStats {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	stats, ok := p.operationStats[operationName]
	if !ok {
		return nil
	}
	cpy := *stats
	return &cpy
}

// GetAllOperationStats возвращает копию статистики всех операций
func (p *Profiler) GetAllOperationStats() map[string]*OperationStats {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	result := make(map[string]*OperationStats, len(p.operationStats))
	for name, stats := range p.operationStats {
		cpy := *stats
		result[name] = &cpy
	}
	return result
}

// GetCallCount возвращает количество завершенных вызовов операции
func (p *Profiler) GetCallCount(operationName string) int64 {
	if stats := p.GetOperationStats(operationName); stats != nil {
		return stats.Count
	}
	return 0
}

// GetTotalTime возвращает суммарное время операции
func (p *Profiler) GetTotalTime(operationName string) time.Duration {
	if stats := p.GetOperationStats(operationName); stats != nil {
		return stats.TotalTime
	}
	return 0
}

// Reset сбрасывает всю статистику
func (p *Profiler) Reset() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.operationStats = make(map[string]*OperationStats)
	p.currentOperations = make(map[string]time.Time)
}

// Disable выключает профайлер: дальнейшие Start/EndOperation ничего не делают.
func (p *Profiler) Disable() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.enabled = false
}

func (p *Profiler) IsEnabled() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.enabled
}

// LogStatistics пишет в лог по строке на операцию, в порядке имен
func (p *Profiler) LogStatistics(logger log.Logger) {
	stats := p.GetAllOperationStats()
	if len(stats) == 0 {
		return
	}
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := stats[name]
		logger.Info("Operation timing", "op", name, "calls", s.Count,
			"total", common.PrettyDuration(s.TotalTime), "min", common.PrettyDuration(s.MinTime),
			"max", common.PrettyDuration(s.MaxTime), "avg", common.PrettyDuration(s.AvgTime))
	}
}
