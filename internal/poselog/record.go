// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package poselog

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/relabs-tech/pose_viewer/internal/orientation"
)

// Position is the detected location of a part, in the units of the log.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Record is one detected part: its name, where it is and how it is turned.
// Records are values; nothing mutates them after Parse returns.
type Record struct {
	Name        string            `json:"name"`
	Position    Position          `json:"position"`
	Orientation orientation.Euler `json:"orientation"`
}

// Transform returns the placement of the record as a homogeneous transform:
// the XYZ rotation plus the position multiplied by scale (the consumer's
// unit conversion, e.g. 0.001 for millimetres into metres).
func (r Record) Transform(scale float64) orientation.Matrix4 {
	return orientation.ComposeXYZ(r.Orientation).WithTranslation(
		r.Position.X*scale,
		r.Position.Y*scale,
		r.Position.Z*scale,
	)
}

// Finite reports whether all six numbers are finite. Garbage rotation rows
// can decode to NaN, which JSON cannot carry.
func (r Record) Finite() bool {
	for _, v := range []float64{
		r.Position.X, r.Position.Y, r.Position.Z,
		r.Orientation.X, r.Orientation.Y, r.Orientation.Z,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Batch is the result of one parse run as it travels between processes.
type Batch struct {
	ID       string    `json:"id"`
	Source   string    `json:"source"`
	ParsedAt time.Time `json:"parsed_at"`
	Records  []Record  `json:"records"`
}

// NewBatch wraps records parsed from source with a fresh run ID.
func NewBatch(source string, records []Record) Batch {
	if records == nil {
		records = []Record{}
	}
	return Batch{
		ID:       uuid.NewString(),
		Source:   source,
		ParsedAt: time.Now().UTC(),
		Records:  records,
	}
}
