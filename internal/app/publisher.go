// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/relabs-tech/pose_viewer/internal/config"
	"github.com/relabs-tech/pose_viewer/internal/logging"
	"github.com/relabs-tech/pose_viewer/internal/poselog"
	"github.com/relabs-tech/pose_viewer/internal/source"
)

// RunPublisher reads the pose log, parses it and publishes the batch to MQTT.
// With PUBLISH_INTERVAL set it keeps re-reading the log on that period until
// ctx is cancelled; otherwise it publishes once and returns the first error.
func RunPublisher(ctx context.Context, logger *logging.Logger) error {
	cfg := config.Get()
	log := logger.Component("publisher")

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDPublisher)
	if err != nil {
		return err
	}
	defer client.Disconnect(disconnectQuiesce)
	log.Infow("connected to MQTT broker", "broker", cfg.MQTTBroker)

	parser := poselog.NewParser(logger.Component("poselog"))
	publishOnce := func() error {
		batch, err := loadBatch(ctx, cfg.PoseSource, SourceOptions(cfg), parser)
		if err != nil {
			return err
		}
		return publishBatch(client, cfg.TopicPoses, cfg.TopicPoseRecord, batch, log)
	}

	if cfg.PublishInterval == 0 {
		return publishOnce()
	}

	if err := publishOnce(); err != nil {
		log.Warnw("publish failed, retrying on next tick", "error", err)
	}

	ticker := time.NewTicker(cfg.PublishEvery())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			return nil
		case <-ticker.C:
			if err := publishOnce(); err != nil {
				log.Warnw("publish failed, retrying on next tick", "error", err)
			}
		}
	}
}

// loadBatch fetches the log at location and parses it. The only error is a
// failure to obtain the text.
func loadBatch(ctx context.Context, location string, opts source.Options, parser *poselog.Parser) (poselog.Batch, error) {
	text, err := source.Load(ctx, location, opts)
	if err != nil {
		return poselog.Batch{}, err
	}
	return poselog.NewBatch(location, parser.Parse(text)), nil
}

// publishBatch sends the batch retained on batchTopic and every record on
// recordTopic/<index>, index being the record's position in the log.
func publishBatch(pub publisher, batchTopic, recordTopic string, batch poselog.Batch, log *zap.SugaredLogger) error {
	out := encodableBatch(batch, log)

	for i, r := range batch.Records {
		if !r.Finite() {
			continue
		}
		payload, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal record %d: %w", i, err)
		}
		topic := fmt.Sprintf("%s/%d", recordTopic, i)
		if token := pub.Publish(topic, 0, true, payload); token.Wait() && token.Error() != nil {
			return fmt.Errorf("MQTT publish %s: %w", topic, token.Error())
		}
	}

	payload, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}
	if token := pub.Publish(batchTopic, 0, true, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT publish %s: %w", batchTopic, token.Error())
	}

	log.Infow("published pose batch",
		"id", out.ID,
		"source", out.Source,
		"records", len(out.Records),
		"skipped", len(batch.Records)-len(out.Records),
	)
	return nil
}

// encodableBatch returns a copy of b without the records holding NaN or Inf,
// which JSON cannot carry. Each dropped record is reported on log.
func encodableBatch(b poselog.Batch, log *zap.SugaredLogger) poselog.Batch {
	out := b
	out.Records = make([]poselog.Record, 0, len(b.Records))
	for i, r := range b.Records {
		if !r.Finite() {
			log.Warnw("skipping record with non-finite values", "index", i, "name", r.Name)
			continue
		}
		out.Records = append(out.Records, r)
	}
	return out
}
