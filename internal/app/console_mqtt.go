// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/relabs-tech/pose_viewer/internal/config"
	"github.com/relabs-tech/pose_viewer/internal/logging"
	"github.com/relabs-tech/pose_viewer/internal/poselog"
)

// RunConsoleMQTT prints every pose batch published on TOPIC_POSES until ctx
// is cancelled.
func RunConsoleMQTT(ctx context.Context, logger *logging.Logger) error {
	cfg := config.Get()
	log := logger.Component("console")

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}
	defer client.Disconnect(disconnectQuiesce)
	log.Infow("connected to MQTT broker", "broker", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicPoses, 0, consoleHandler(os.Stdout, log))
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", cfg.TopicPoses, token.Error())
	}
	log.Infow("subscribed", "topic", cfg.TopicPoses)

	<-ctx.Done()
	log.Info("shutting down")
	return nil
}

func consoleHandler(w io.Writer, log *zap.SugaredLogger) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		var b poselog.Batch
		if err := json.Unmarshal(msg.Payload(), &b); err != nil {
			log.Warnw("batch unmarshal error", "topic", msg.Topic(), "error", err)
			return
		}
		fmt.Fprint(w, formatBatch(b))
	}
}

// formatBatch renders a batch as console lines, angles in degrees.
func formatBatch(b poselog.Batch) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[BATCH] id=%s source=%s records=%d\n", b.ID, b.Source, len(b.Records))
	for i, r := range b.Records {
		d := r.Orientation.Degrees()
		fmt.Fprintf(&sb,
			"[POSE] %3d %-16s X=%9.3f Y=%9.3f Z=%9.3f  RX=%7.2f RY=%7.2f RZ=%7.2f\n",
			i, r.Name, r.Position.X, r.Position.Y, r.Position.Z, d.X, d.Y, d.Z,
		)
	}
	return sb.String()
}
