// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// pose_mock writes a synthetic pose log, for demos and for feeding
// pose_publisher without a part detector.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/relabs-tech/pose_viewer/internal/app"
	"github.com/relabs-tech/pose_viewer/internal/logging"
)

func main() {
	count := flag.Int("n", 10, "number of records to generate")
	out := flag.String("o", "", "output file (default stdout)")
	flag.Parse()

	logger, err := logging.NewLogger(true, false)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			logger.Fatalw("failed to create output file", "path", *out, "error", err)
		}
		defer f.Close()
		w = f
	}

	if err := app.RunMock(w, *count); err != nil {
		logger.Fatalw("mock log failed", "error", err)
	}
	logger.Infow("wrote mock pose log", "records", *count, "path", *out)
}
