// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"time"

	"github.com/relabs-tech/pose_viewer/internal/orientation"
	"github.com/relabs-tech/pose_viewer/internal/poselog"
)

// fakeToken is an already completed mqtt.Token.
type fakeToken struct {
	err error
}

func (t fakeToken) Wait() bool                     { return true }
func (t fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t fakeToken) Error() error                   { return t.err }

func (t fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// fakeMessage is an inbound mqtt.Message.
type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return true }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

func sampleBatch() poselog.Batch {
	return poselog.Batch{
		ID:       "2b7c1d9e-0000-4000-8000-000000000001",
		Source:   "data/screw_poses.txt",
		ParsedAt: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Records: []poselog.Record{
			{
				Name:        "screw_0",
				Position:    poselog.Position{X: 12.5, Y: -3.1, Z: 40},
				Orientation: orientation.Euler{Z: 1.5707963267948966},
			},
			{
				Name:     "screw_1",
				Position: poselog.Position{X: 1, Y: 2, Z: 3},
			},
		},
	}
}

const samplePoseLog = `----- 1. screw_0 -----
position:
 x: 12.5
 y: -3.1
 z: 40.0
rotation
[
 0, -1, 0
 1, 0, 0
 0, 0, 1
]
----- 2. screw_1 -----
position:
 x: 1
 y: 2
 z: 3
rotation
[
 1, 0, 0
 0, 1, 0
 0, 0, 1
]
`
