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
	"fmt"
	"io/fs"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/fillay12321/qsim/quest"
)

// lockRetryDelay is the poll interval while waiting for the output lock.
const lockRetryDelay = 50 * time.Millisecond

// Handler executes one function of a node definition.
type Handler func(ctx context.Context, r *Runner, def *NodeDefinition, logger log.Logger) error

var (
	handlersMu sync.RWMutex
	handlers   = map[string]Handler{
		"submit":        submit,
		"submit_single": submitSingle,
	}
)

// Register adds a handler under name, replacing any existing one.
func Register(name string, h Handler) {
	handlersMu.Lock()
	defer handlersMu.Unlock()
	handlers[name] = h
}

// Functions returns the names of all registered handlers.
func Functions() []string {
	handlersMu.RLock()
	defer handlersMu.RUnlock()
	names := make([]string, 0, len(handlers))
	for name := range handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookup(name string) (Handler, bool) {
	handlersMu.RLock()
	defer handlersMu.RUnlock()
	h, ok := handlers[name]
	return h, ok
}

// Runner executes node definitions.
type Runner struct {
	Config   quest.Config
	Strategy quest.Strategy
	Seed     *uint64 // nil draws from process entropy
	Ranks    int     // in-process ranks when no launcher assigned one
	Log      log.Logger
}

// NewRunner returns a runner with the default config and strategy of this build.
func NewRunner() *Runner {
	return &Runner{
		Config:   quest.DefaultConfig,
		Strategy: quest.DefaultStrategy,
		Ranks:    1,
		Log:      log.Root(),
	}
}

// Run executes def. The completion marker is written last and only if every output
// was written successfully.
func (r *Runner) Run(ctx context.Context, def *NodeDefinition) error {
	// A marker left by an earlier run must not survive a failing one. Processes that
	// never write the marker leave it alone since it may belong to rank 0.
	if writesMarker() {
		if err := os.Remove(def.DonePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing stale completion marker: %w", err)
		}
	}
	handler, ok := lookup(def.FunctionName)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFunction, def.FunctionName)
	}
	logger := r.Log
	if logger == nil {
		logger = log.Root()
	}
	logger = logger.New("run", uuid.New().String(), "function", def.FunctionName)

	start := time.Now()
	logger.Info("Running node", "strategy", r.Strategy, "seeded", r.Seed != nil)
	if err := handler(ctx, r, def, logger); err != nil {
		logger.Error("Node failed", "err", err)
		return err
	}
	logger.Info("Node finished", "elapsed", time.Since(start))
	return nil
}

func (r *Runner) simulator(logger log.Logger) (*quest.Simulator, error) {
	return quest.NewSimulator(r.Config, r.Strategy, logger)
}

// commit writes every output as JSON and then the completion marker, holding a file
// lock next to the marker for the whole sequence. Non-root launcher ranks write nothing.
func commit(ctx context.Context, def *NodeDefinition, outputs map[string]interface{}, logger log.Logger) error {
	if !writesMarker() {
		logger.Debug("Skipping outputs on non-root launcher rank")
		return nil
	}
	paths := make(map[string]string, len(outputs))
	for name := range outputs {
		path, err := def.output(name)
		if err != nil {
			return err
		}
		paths[name] = path
	}
	lock := flock.New(def.DonePath + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("locking %s: %w", lock.Path(), err)
	}
	if !locked {
		return fmt.Errorf("could not lock %s", lock.Path())
	}
	defer lock.Unlock()

	for name, v := range outputs {
		if err := writeJSON(paths[name], v); err != nil {
			return fmt.Errorf("output %q: %w", name, err)
		}
		logger.Debug("Wrote output", "name", name, "path", paths[name])
	}
	if err := os.WriteFile(def.DonePath, nil, 0o644); err != nil {
		return fmt.Errorf("writing completion marker: %w", err)
	}
	return nil
}

func writeJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(f).Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
