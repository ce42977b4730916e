// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
)

// gimbalLockLimit is the |m13| above which the middle (Y) rotation is treated
// as ±90° and the X/Z split is no longer unique.
const gimbalLockLimit = 0.9999999

// Euler is the canonical orientation of a detected part: three rotations in
// radians applied in fixed X, Y, Z order (R = Rx·Ry·Rz).
type Euler struct {
	X float64 `json:"rx"`
	Y float64 `json:"ry"`
	Z float64 `json:"rz"`
}

// Degrees returns the same rotation expressed in degrees.
func (e Euler) Degrees() Euler {
	return Euler{
		X: e.X * 180.0 / math.Pi,
		Y: e.Y * 180.0 / math.Pi,
		Z: e.Z * 180.0 / math.Pi,
	}
}

// Source is anything that can provide orientations one after another.
type Source interface {
	Next() (Euler, error)
}

// Matrix4 is a row-major 4x4 homogeneous transform. Element (r, c) lives at
// index r*4+c.
type Matrix4 [16]float64

// Identity returns the identity transform.
func Identity() Matrix4 {
	return Matrix4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// At returns element (row, col).
func (m Matrix4) At(row, col int) float64 {
	return m[row*4+col]
}

// WithTranslation returns a copy of m with the translation column set.
func (m Matrix4) WithTranslation(x, y, z float64) Matrix4 {
	m[3], m[7], m[11] = x, y, z
	return m
}

// FromRows builds a homogeneous transform whose upper-left 3x3 block is the
// given rotation rows as-is. Nothing is orthonormalized or checked.
func FromRows(r1, r2, r3 [3]float64) Matrix4 {
	return Matrix4{
		r1[0], r1[1], r1[2], 0,
		r2[0], r2[1], r2[2], 0,
		r3[0], r3[1], r3[2], 0,
		0, 0, 0, 1,
	}
}

// EulerXYZ decomposes the rotation block of m into XYZ Euler angles.
//
// With R = Rx(x)·Ry(y)·Rz(z):
//
//	y = asin(m13)
//	x = atan2(-m23, m33)
//	z = atan2(-m12, m11)
//
// At gimbal lock (|m13| ≈ 1) z is pinned to 0 and x absorbs the combined
// rotation: x = atan2(m32, m22).
func EulerXYZ(m Matrix4) Euler {
	m11, m12, m13 := m[0], m[1], m[2]
	m22, m23 := m[5], m[6]
	m32, m33 := m[9], m[10]

	var e Euler
	e.Y = math.Asin(clamp(m13, -1, 1))
	if math.Abs(m13) < gimbalLockLimit {
		e.X = math.Atan2(-m23, m33)
		e.Z = math.Atan2(-m12, m11)
	} else {
		e.X = math.Atan2(m32, m22)
		e.Z = 0
	}
	return e
}

// ComposeXYZ builds the rotation Rx(x)·Ry(y)·Rz(z). It is the inverse of
// EulerXYZ away from gimbal lock.
func ComposeXYZ(e Euler) Matrix4 {
	a, b := math.Cos(e.X), math.Sin(e.X)
	c, d := math.Cos(e.Y), math.Sin(e.Y)
	ce, f := math.Cos(e.Z), math.Sin(e.Z)

	ae, af := a*ce, a*f
	be, bf := b*ce, b*f

	return Matrix4{
		c * ce, -c * f, d, 0,
		af + be*d, ae - bf*d, -b * c, 0,
		bf - ae*d, be + af*d, a * c, 0,
		0, 0, 0, 1,
	}
}

// clamp keeps asin inside its domain when rounding pushes |v| past 1.
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
