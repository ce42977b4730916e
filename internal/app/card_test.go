// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bytes"
	"fmt"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/pose_viewer/internal/poselog"
)

func TestCardLines_Waiting(t *testing.T) {
	assert.Equal(t, []string{"POSES", "Waiting..."}, cardLines(nil))
}

func TestCardLines_Truncates(t *testing.T) {
	b := sampleBatch()
	b.Records = nil
	for i := 0; i < cardMaxRows+5; i++ {
		b.Records = append(b.Records, poselog.Record{Name: fmt.Sprintf("p%d", i)})
	}

	lines := cardLines(&b)
	require.Len(t, lines, cardMaxRows+2)
	assert.Equal(t, "POSES 37  09:26:53", lines[0])
	assert.Equal(t, "... 5 more", lines[len(lines)-1])
}

func TestWriteCardPNG(t *testing.T) {
	b := sampleBatch()

	var buf bytes.Buffer
	require.NoError(t, writeCardPNG(&buf, &b))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, cardWidth, img.Bounds().Dx())
	assert.Equal(t, 2*cardMargin+3*cardLineHeight, img.Bounds().Dy())

	// Some text must have been drawn.
	lit := false
	for y := 0; y < img.Bounds().Dy() && !lit; y++ {
		for x := 0; x < img.Bounds().Dx(); x++ {
			if r, _, _, _ := img.At(x, y).RGBA(); r != 0 {
				lit = true
				break
			}
		}
	}
	assert.True(t, lit)
}
