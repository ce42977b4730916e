// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"io"

	"github.com/relabs-tech/pose_viewer/internal/orientation"
	"github.com/relabs-tech/pose_viewer/internal/poselog"
)

// RunMock writes a synthetic pose log of count records to w. Parts are laid
// out on a 10-unit grid, five per row, oriented by the mock source.
func RunMock(w io.Writer, count int) error {
	if count < 0 {
		return fmt.Errorf("record count must not be negative, got %d", count)
	}

	src := orientation.NewMockSource()
	records := make([]poselog.Record, 0, count)

	for i := 0; i < count; i++ {
		e, err := src.Next()
		if err != nil {
			return fmt.Errorf("mock source: %w", err)
		}
		records = append(records, poselog.Record{
			Name: fmt.Sprintf("screw_%d", i),
			Position: poselog.Position{
				X: float64(i%5) * 10,
				Y: float64(i/5) * 10,
				Z: 40,
			},
			Orientation: e,
		})
	}

	_, err := io.WriteString(w, poselog.Format(records))
	return err
}
