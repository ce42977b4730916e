// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// pose_dump parses a pose log once and prints the records.
//
// Run:
//
//	go run ./cmd/pose_dump -format json
//	go run ./cmd/pose_dump -source http://detector.local/poses.txt
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/pose_viewer/internal/app"
	"github.com/relabs-tech/pose_viewer/internal/config"
	"github.com/relabs-tech/pose_viewer/internal/logging"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the KEY=VALUE configuration file")
	location := flag.String("source", "", "pose log location (overrides POSE_SOURCE)")
	format := flag.String("format", app.FormatTable, "output format: table or json")
	flag.Parse()

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()

	logger, err := logging.NewLogger(cfg.LogDevelopment, cfg.LogDebug)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	loc := cfg.PoseSource
	if *location != "" {
		loc = *location
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunDump(ctx, logger, loc, app.SourceOptions(cfg), os.Stdout, *format); err != nil {
		logger.Fatalw("dump failed", "source", loc, "error", err)
	}
}
