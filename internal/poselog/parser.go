// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package poselog turns the pose log written by the part detector into an
// ordered list of records.
//
// A log is a sequence of blocks like:
//
//	----- 1. screw_0 -----
//	position:
//	 x: 12.5
//	 y: -3.1
//	 z: 40.0
//	rotation
//	[
//	 -0.0314729, -0.907673, -0.418496
//	 0.999, -0.0292, -0.0118
//	 0.0, -0.4187, 0.9081
//	]
//
// Parsing is best-effort: a block whose fields are missing or unreadable
// still produces a record, with position (0,0,0) and identity rotation
// standing in for what could not be read. Only blocks without a header line
// are lost.
package poselog

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/relabs-tech/pose_viewer/internal/orientation"
)

const numberPattern = `([-+]?\d*\.?\d+(?:[eE][-+]?\d+)?)`

var (
	headerRe   = regexp.MustCompile(`^\s*-{5,}\s*\d+\.\s*([^-]+?)\s*-{2,}\s*$`)
	positionRe = regexp.MustCompile(`^\s*position\s*:`)
	rotationRe = regexp.MustCompile(`(?i)^\s*rotation\s*$`)

	axisKeys = [3]string{"x", "y", "z"}
	axisRe   = [3]*regexp.Regexp{
		regexp.MustCompile(`^\s*x\s*:\s*` + numberPattern),
		regexp.MustCompile(`^\s*y\s*:\s*` + numberPattern),
		regexp.MustCompile(`^\s*z\s*:\s*` + numberPattern),
	}

	// Rows that cannot be read fall back to these; all three together are
	// the identity rotation.
	defaultRows = [3][3]float64{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
)

type state int

const (
	stateSeekHeader state = iota
	stateSeekPosition
	stateReadX
	stateReadY
	stateReadZ
	stateSeekRotation
	stateSkipOpenBracket
	stateReadRow1
	stateReadRow2
	stateReadRow3
	stateSkipCloseBracket
	stateEmit
	stateDone
)

var stateNames = [...]string{
	stateSeekHeader:       "SeekHeader",
	stateSeekPosition:     "SeekPosition",
	stateReadX:            "ReadX",
	stateReadY:            "ReadY",
	stateReadZ:            "ReadZ",
	stateSeekRotation:     "SeekRotation",
	stateSkipOpenBracket:  "SkipOpenBracket",
	stateReadRow1:         "ReadRow1",
	stateReadRow2:         "ReadRow2",
	stateReadRow3:         "ReadRow3",
	stateSkipCloseBracket: "SkipCloseBracket",
	stateEmit:             "Emit",
	stateDone:             "Done",
}

func (s state) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Parser parses pose logs. The zero value is not usable; use NewParser.
type Parser struct {
	log *zap.SugaredLogger
}

// NewParser returns a parser that reports every field it had to default on
// log at debug level. A nil log discards the reports.
func NewParser(log *zap.SugaredLogger) *Parser {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Parser{log: log}
}

// Parse parses text with a silent parser.
func Parse(text string) []Record {
	return NewParser(nil).Parse(text)
}

// Parse returns one record per header line in text, in the order the headers
// appear. It never fails; an empty or header-less text yields an empty slice.
func (p *Parser) Parse(text string) []Record {
	sc := &scanner{lines: splitLines(text), log: p.log}
	records := make([]Record, 0)

	for st := stateSeekHeader; st != stateDone; {
		var rec *Record
		st, rec = sc.step(st)
		if rec != nil {
			records = append(records, *rec)
		}
	}
	return records
}

// draft collects the fields of the record under the cursor.
type draft struct {
	name string
	pos  [3]float64
	rows [3][3]float64
}

func (d draft) record() Record {
	return Record{
		Name:        d.name,
		Position:    Position{X: d.pos[0], Y: d.pos[1], Z: d.pos[2]},
		Orientation: orientation.EulerXYZ(orientation.FromRows(d.rows[0], d.rows[1], d.rows[2])),
	}
}

// scanner is the cursor of one Parse call. lines[cur:end] is what is left of
// the current record span; end is the next header or the end of input.
type scanner struct {
	lines []string
	cur   int
	end   int
	rec   draft
	log   *zap.SugaredLogger
}

// step runs one state and returns the next one, plus the finished record
// when st is stateEmit.
func (s *scanner) step(st state) (state, *Record) {
	switch st {
	case stateSeekHeader:
		i, name, ok := findHeader(s.lines, s.cur, len(s.lines))
		if !ok {
			s.cur = len(s.lines)
			return stateDone, nil
		}
		s.rec = draft{name: name, rows: defaultRows}
		s.cur = i + 1
		s.end = len(s.lines)
		if next, _, ok := findHeader(s.lines, s.cur, len(s.lines)); ok {
			s.end = next
		}
		return stateSeekPosition, nil

	case stateSeekPosition:
		i := seek(s.lines, s.cur, s.end, positionRe)
		if i == s.end {
			s.debug("position marker missing, using origin")
			s.cur = s.end
			return stateReadX, nil
		}
		s.cur = i + 1
		return stateReadX, nil

	case stateReadX, stateReadY, stateReadZ:
		axis := int(st - stateReadX)
		if s.cur >= s.end {
			s.debug("position axis missing", "axis", axisKeys[axis])
			return st + 1, nil
		}
		if v, ok := readAxis(s.lines[s.cur], axis); ok {
			s.rec.pos[axis] = v
		} else {
			s.debug("position axis unreadable", "axis", axisKeys[axis], "text", s.lines[s.cur])
		}
		s.cur++
		return st + 1, nil

	case stateSeekRotation:
		i := seek(s.lines, s.cur, s.end, rotationRe)
		if i == s.end {
			s.debug("rotation marker missing, using identity")
			s.cur = s.end
			return stateEmit, nil
		}
		s.cur = i + 1
		return stateSkipOpenBracket, nil

	case stateSkipOpenBracket:
		if s.cur < s.end && strings.Contains(s.lines[s.cur], "[") {
			s.cur++
		}
		return stateReadRow1, nil

	case stateReadRow1, stateReadRow2, stateReadRow3:
		k := int(st - stateReadRow1)
		if s.cur >= s.end {
			s.debug("rotation row missing", "row", k+1)
			return st + 1, nil
		}
		vals := ParseRow(s.lines[s.cur])
		if len(vals) < 3 {
			s.debug("rotation row short", "row", k+1, "values", len(vals))
		}
		s.rec.rows[k] = rowOrDefault(vals, defaultRows[k])
		s.cur++
		return st + 1, nil

	case stateSkipCloseBracket:
		if s.cur < s.end && strings.Contains(s.lines[s.cur], "]") {
			s.cur++
		}
		return stateEmit, nil

	case stateEmit:
		rec := s.rec.record()
		return stateSeekHeader, &rec
	}

	return stateDone, nil
}

func (s *scanner) debug(msg string, kv ...interface{}) {
	s.log.Debugw(msg, append([]interface{}{"record", s.rec.name, "line", s.cur + 1}, kv...)...)
}

// findHeader returns the index and trimmed name of the first header line in
// lines[from:to].
func findHeader(lines []string, from, to int) (int, string, bool) {
	for i := from; i < to; i++ {
		if m := headerRe.FindStringSubmatch(lines[i]); m != nil {
			return i, strings.TrimSpace(m[1]), true
		}
	}
	return to, "", false
}

// seek returns the index of the first line in lines[from:to] matching re,
// or to when there is none.
func seek(lines []string, from, to int, re *regexp.Regexp) int {
	for i := from; i < to; i++ {
		if re.MatchString(lines[i]) {
			return i
		}
	}
	return to
}

// readAxis reads "<key>: <number>" for the given axis (0=x, 1=y, 2=z).
func readAxis(line string, axis int) (float64, bool) {
	m := axisRe[axis].FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return v, true
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
