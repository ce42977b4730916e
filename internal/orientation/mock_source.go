// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
)

// mockStep is the phase advance per generated sample.
const mockStep = 0.1

type mockSource struct {
	n int
}

// NewMockSource creates a mock orientation source that
// generates smooth changing values. The sequence is deterministic so
// generated logs can be compared between runs.
func NewMockSource() Source {
	return &mockSource{}
}

func (m *mockSource) Next() (Euler, error) {
	t := float64(m.n) * mockStep
	m.n++

	// Pitch stays well inside ±90° so samples never hit gimbal lock.
	return Euler{
		X: 20 * math.Sin(t) * math.Pi / 180,
		Y: 15 * math.Cos(t*0.7) * math.Pi / 180,
		Z: math.Remainder(t*30, 360) * math.Pi / 180,
	}, nil
}
