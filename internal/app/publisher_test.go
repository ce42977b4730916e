// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/relabs-tech/pose_viewer/internal/poselog"
	"github.com/relabs-tech/pose_viewer/internal/source"
)

type published struct {
	topic    string
	retained bool
	payload  []byte
}

type recordingPublisher struct {
	msgs   []published
	failOn string
}

func (p *recordingPublisher) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	if topic == p.failOn {
		return fakeToken{err: errors.New("broker gone")}
	}
	p.msgs = append(p.msgs, published{topic: topic, retained: retained, payload: payload.([]byte)})
	return fakeToken{}
}

func TestPublishBatch_TopicsAndPayloads(t *testing.T) {
	pub := &recordingPublisher{}
	b := sampleBatch()

	require.NoError(t, publishBatch(pub, "poses/batch", "poses/record", b, zap.NewNop().Sugar()))
	require.Len(t, pub.msgs, 3)

	assert.Equal(t, "poses/record/0", pub.msgs[0].topic)
	assert.Equal(t, "poses/record/1", pub.msgs[1].topic)
	assert.Equal(t, "poses/batch", pub.msgs[2].topic)
	for _, m := range pub.msgs {
		assert.True(t, m.retained, m.topic)
	}

	var rec poselog.Record
	require.NoError(t, json.Unmarshal(pub.msgs[1].payload, &rec))
	assert.Equal(t, b.Records[1], rec)

	var got poselog.Batch
	require.NoError(t, json.Unmarshal(pub.msgs[2].payload, &got))
	assert.Equal(t, b.ID, got.ID)
	assert.True(t, b.ParsedAt.Equal(got.ParsedAt))
	assert.Equal(t, b.Records, got.Records)
}

func TestPublishBatch_SkipsNonFiniteRecords(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	pub := &recordingPublisher{}

	b := sampleBatch()
	b.Records = append([]poselog.Record{{Name: "broken"}}, b.Records...)
	b.Records[0].Orientation.Z = math.NaN()

	require.NoError(t, publishBatch(pub, "poses/batch", "poses/record", b, zap.New(core).Sugar()))

	topics := make([]string, 0, len(pub.msgs))
	for _, m := range pub.msgs {
		topics = append(topics, m.topic)
	}
	assert.Equal(t, []string{"poses/record/1", "poses/record/2", "poses/batch"}, topics)

	var got poselog.Batch
	require.NoError(t, json.Unmarshal(pub.msgs[2].payload, &got))
	assert.Len(t, got.Records, 2)

	require.Equal(t, 1, logs.FilterMessage("skipping record with non-finite values").Len())
	assert.Equal(t, int64(0), logs.All()[0].ContextMap()["index"])
}

func TestPublishBatch_PublishErrorIsReturned(t *testing.T) {
	pub := &recordingPublisher{failOn: "poses/batch"}

	err := publishBatch(pub, "poses/batch", "poses/record", sampleBatch(), zap.NewNop().Sugar())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "poses/batch")
	assert.Contains(t, err.Error(), "broker gone")
}

func TestLoadBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poses.txt")
	require.NoError(t, os.WriteFile(path, []byte(samplePoseLog), 0o644))

	b, err := loadBatch(context.Background(), path, source.Options{}, poselog.NewParser(nil))
	require.NoError(t, err)

	assert.NotEmpty(t, b.ID)
	assert.Equal(t, path, b.Source)
	require.Len(t, b.Records, 2)
	assert.Equal(t, "screw_0", b.Records[0].Name)
	assert.InDelta(t, math.Pi/2, b.Records[0].Orientation.Z, 1e-9)
}

func TestLoadBatch_MissingSource(t *testing.T) {
	_, err := loadBatch(context.Background(), filepath.Join(t.TempDir(), "nope.txt"), source.Options{}, poselog.NewParser(nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
