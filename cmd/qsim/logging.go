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

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	verbosityFlag = &cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value: 3,
	}
	logJSONFlag = &cli.BoolFlag{
		Name:  "log.json",
		Usage: "Format logs with JSON",
	}
	logFileFlag = &cli.StringFlag{
		Name:  "log.file",
		Usage: "Write logs to a file (in addition to stderr)",
	}
	logMaxSizeFlag = &cli.IntFlag{
		Name:  "log.maxsize",
		Usage: "Maximum size in MBs of a single log file",
		Value: 100,
	}
	logFlags = []cli.Flag{verbosityFlag, logJSONFlag, logFileFlag, logMaxSizeFlag}
)

func applyLogFlags(ctx *cli.Context, cfg *logConfig) {
	if ctx.IsSet(verbosityFlag.Name) {
		cfg.Verbosity = ctx.Int(verbosityFlag.Name)
	}
	if ctx.IsSet(logJSONFlag.Name) {
		cfg.JSON = ctx.Bool(logJSONFlag.Name)
	}
	if ctx.IsSet(logFileFlag.Name) {
		cfg.File = ctx.String(logFileFlag.Name)
	}
	if ctx.IsSet(logMaxSizeFlag.Name) {
		cfg.MaxSize = ctx.Int(logMaxSizeFlag.Name)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// setupLogging installs the default logger. Logs go to stderr and, if cfg.File or
// nodeLogPath is set, to a rotating file as well. The returned closer flushes the file.
func setupLogging(cfg logConfig, nodeLogPath string) (io.Closer, error) {
	var (
		output   io.Writer = os.Stderr
		useColor           = (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
		closer   io.Closer = nopCloser{}
	)
	if useColor {
		output = colorable.NewColorableStderr()
	}
	path := cfg.File
	if path == "" {
		path = nodeLogPath
	}
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("log directory: %w", err)
		}
		file := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    cfg.MaxSize,
			MaxBackups: 3,
			Compress:   true,
		}
		output = io.MultiWriter(output, file)
		closer = file
		useColor = false
	}

	level := log.FromLegacyLevel(cfg.Verbosity)
	var handler slog.Handler
	switch {
	case cfg.JSON:
		handler = log.JSONHandlerWithLevel(output, level)
	default:
		handler = log.NewTerminalHandlerWithLevel(output, level, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
	return closer, nil
}
