// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/relabs-tech/pose_viewer/internal/poselog"
)

// Card layout in pixels. basicfont.Face7x13 glyphs are 7 wide, 13 high.
const (
	cardWidth      = 480
	cardLineHeight = 13
	cardMargin     = 4
	cardMaxRows    = 32
)

var (
	cardBackground = color.Gray{Y: 0}
	cardForeground = color.Gray{Y: 255}
)

// cardLines is the text drawn on the card: a header line and one line per
// record, truncated with a trailing count when the batch is long.
func cardLines(b *poselog.Batch) []string {
	if b == nil {
		return []string{"POSES", "Waiting..."}
	}

	lines := []string{fmt.Sprintf("POSES %d  %s", len(b.Records), b.ParsedAt.Format("15:04:05"))}
	for i, r := range b.Records {
		if i == cardMaxRows {
			lines = append(lines, fmt.Sprintf("... %d more", len(b.Records)-cardMaxRows))
			break
		}
		d := r.Orientation.Degrees()
		lines = append(lines, fmt.Sprintf("%2d %-12.12s %7.1f %7.1f %7.1f | %6.1f %6.1f %6.1f",
			i, r.Name, r.Position.X, r.Position.Y, r.Position.Z, d.X, d.Y, d.Z))
	}
	return lines
}

// renderCard draws the batch summary into a grayscale image.
func renderCard(b *poselog.Batch) *image.Gray {
	lines := cardLines(b)
	h := 2*cardMargin + len(lines)*cardLineHeight
	img := image.NewGray(image.Rect(0, 0, cardWidth, h))

	// Blank image
	draw.Draw(img, img.Bounds(), &image.Uniform{cardBackground}, image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{cardForeground},
		Face: basicfont.Face7x13,
	}

	for i, line := range lines {
		drawer.Dot = fixed.P(cardMargin, cardMargin+(i+1)*cardLineHeight-2)
		drawer.DrawString(line)
	}
	return img
}

func writeCardPNG(w io.Writer, b *poselog.Batch) error {
	if err := png.Encode(w, renderCard(b)); err != nil {
		return fmt.Errorf("encode card: %w", err)
	}
	return nil
}
