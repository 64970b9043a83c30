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

// Package node executes a node definition: a JSON document naming a function, the
// files it reads and writes, and the completion marker written on success.
package node

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	// ErrUnknownFunction is returned for function names without a handler.
	ErrUnknownFunction = errors.New("unknown function")

	// ErrMissingInput is returned when a required input or output path is absent.
	ErrMissingInput = errors.New("missing input")
)

// NodeDefinition describes one invocation.
type NodeDefinition struct {
	FunctionName string            `json:"function_name"`
	Inputs       map[string]string `json:"inputs"`
	Outputs      map[string]string `json:"outputs"`
	DonePath     string            `json:"done_path"`
	LogPath      string            `json:"log_path,omitempty"`
}

// LoadNodeDefinition reads a node definition from path.
func LoadNodeDefinition(path string) (*NodeDefinition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var def NodeDefinition
	if err := json.NewDecoder(f).Decode(&def); err != nil {
		return nil, fmt.Errorf("invalid node definition %s: %w", path, err)
	}
	if def.DonePath == "" {
		return nil, fmt.Errorf("%w: node definition %s has no done_path", ErrMissingInput, path)
	}
	return &def, nil
}

func (d *NodeDefinition) input(name string) (string, error) {
	path, ok := d.Inputs[name]
	if !ok || path == "" {
		return "", fmt.Errorf("%w: %s needs input %q", ErrMissingInput, d.FunctionName, name)
	}
	return path, nil
}

func (d *NodeDefinition) output(name string) (string, error) {
	path, ok := d.Outputs[name]
	if !ok || path == "" {
		return "", fmt.Errorf("%w: %s needs output %q", ErrMissingInput, d.FunctionName, name)
	}
	return path, nil
}

// readInput opens the input file called name and hands it to decode.
func (d *NodeDefinition) readInput(name string, decode func(io.Reader) error) error {
	path, err := d.input(name)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := decode(f); err != nil {
		return fmt.Errorf("input %q (%s): %w", name, path, err)
	}
	return nil
}

// readJSON decodes the input file called name into v.
func (d *NodeDefinition) readJSON(name string, v interface{}) error {
	return d.readInput(name, func(r io.Reader) error {
		return json.NewDecoder(r).Decode(v)
	})
}
