// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package poselog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/relabs-tech/pose_viewer/internal/orientation"
)

// Format writes records in the detector's log layout, numbering blocks from
// 1. Names containing '-' cannot be represented by the header line and have
// those characters replaced with '_'.
func Format(records []Record) string {
	var b strings.Builder
	for i, r := range records {
		name := strings.ReplaceAll(strings.TrimSpace(r.Name), "-", "_")
		if name == "" {
			name = "part_" + strconv.Itoa(i)
		}

		fmt.Fprintf(&b, "----- %d. %s -----\n", i+1, name)
		b.WriteString("position:\n")
		fmt.Fprintf(&b, "  x: %s\n", formatFloat(r.Position.X))
		fmt.Fprintf(&b, "  y: %s\n", formatFloat(r.Position.Y))
		fmt.Fprintf(&b, "  z: %s\n", formatFloat(r.Position.Z))

		m := orientation.ComposeXYZ(r.Orientation)
		b.WriteString("rotation\n[\n")
		for row := 0; row < 3; row++ {
			fmt.Fprintf(&b, "  %s, %s, %s\n",
				formatFloat(m.At(row, 0)),
				formatFloat(m.At(row, 1)),
				formatFloat(m.At(row, 2)),
			)
		}
		b.WriteString("]\n")
	}
	return b.String()
}

// formatFloat prints the shortest text that parses back to v.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
