// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/relabs-tech/pose_viewer/internal/config"
	"github.com/relabs-tech/pose_viewer/internal/logging"
	"github.com/relabs-tech/pose_viewer/internal/poselog"
	"github.com/relabs-tech/pose_viewer/internal/source"
)

// Dump output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// SourceOptions builds the acquisition options from the configuration.
func SourceOptions(cfg *config.Config) source.Options {
	return source.Options{
		HTTPTimeout: cfg.SourceHTTP(),
		IdleTimeout: cfg.SourceIdle(),
		BaudRate:    uint(cfg.SerialBaudRate),
	}
}

// RunDump parses the log at location once and writes it to w as a table or
// as the JSON batch. Acquisition errors are returned unchanged in meaning.
func RunDump(ctx context.Context, logger *logging.Logger, location string, opts source.Options, w io.Writer, format string) error {
	if format != FormatTable && format != FormatJSON {
		return fmt.Errorf("unknown output format %q", format)
	}

	batch, err := loadBatch(ctx, location, opts, poselog.NewParser(logger.Component("poselog")))
	if err != nil {
		return err
	}
	logger.Component("dump").Debugw("parsed pose log", "source", location, "records", len(batch.Records))

	if format == FormatTable {
		_, err := io.WriteString(w, formatBatch(batch))
		return err
	}

	out := encodableBatch(batch, logger.Component("dump"))

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}
	return nil
}
