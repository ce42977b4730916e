// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package poselog

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var rowSepRe = regexp.MustCompile(`[,\s]+`)

// ParseRow reads one matrix row such as "  -0.0314729, -0.907673, -0.418496"
// or "[1 0 0]". Brackets are dropped, commas and whitespace separate values,
// and a token that is not a number becomes NaN. Values keep their order.
func ParseRow(line string) []float64 {
	line = strings.NewReplacer("[", "", "]", "").Replace(line)

	var out []float64
	for _, tok := range rowSepRe.Split(line, -1) {
		if tok == "" {
			continue
		}
		v, err := strconv.ParseFloat(tok, 64)
		// Out-of-range literals keep their ±Inf like any other number.
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			v = math.NaN()
		}
		out = append(out, v)
	}
	return out
}

// rowOrDefault takes the first three values of a parsed row and fills any
// missing position from def.
func rowOrDefault(vals []float64, def [3]float64) [3]float64 {
	row := def
	for i := 0; i < len(row) && i < len(vals); i++ {
		row[i] = vals[i]
	}
	return row
}
