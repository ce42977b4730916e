// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// DefaultPath is where the binaries look for their configuration.
const DefaultPath = "pose_config.txt"

// Config holds all application configuration values.
type Config struct {
	// Pose log acquisition
	PoseSource        string // path, file://, http(s):// or serial:// location
	SourceIdleTimeout int    // milliseconds; serial read ends after this much silence
	SourceHTTPTimeout int    // milliseconds
	SerialBaudRate    int

	// MQTT
	MQTTBroker            string
	MQTTClientIDPublisher string
	MQTTClientIDConsole   string
	MQTTClientIDWeb       string

	// Topics
	TopicPoses      string // whole batch, retained
	TopicPoseRecord string // per-record prefix; records go to <prefix>/<index>

	// Timing
	PublishInterval int // milliseconds; 0 publishes once and exits

	// Placement
	PositionScale float64 // log units -> scene units

	// Web Server
	WebServerPort int

	// Logging
	LogDevelopment bool
	LogDebug       bool
}

// Default returns the configuration used for keys the file leaves out.
func Default() *Config {
	return &Config{
		PoseSource:            "data/screw_poses.txt",
		SourceIdleTimeout:     500,
		SourceHTTPTimeout:     10000,
		SerialBaudRate:        115200,
		MQTTBroker:            "tcp://localhost:1883",
		MQTTClientIDPublisher: "pose-publisher",
		MQTTClientIDConsole:   "pose-console-subscriber",
		MQTTClientIDWeb:       "pose-web-subscriber",
		TopicPoses:            "poses/batch",
		TopicPoseRecord:       "poses/record",
		PublishInterval:       0,
		PositionScale:         1.0,
		WebServerPort:         8080,
		LogDevelopment:        true,
	}
}

// Package-level singleton: InitGlobal sets it once, Get reads it under a
// read lock so any goroutine can call it.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads a KEY=VALUE configuration file on top of Default.
// Blank lines and '#' comments are ignored; unknown keys are an error.
func Load(configPath string) (*Config, error) {
	values, err := godotenv.Read(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := cfg.setValue(key, values[key]); err != nil {
			return nil, fmt.Errorf("config %s: %w", configPath, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// Pose log acquisition
	case "POSE_SOURCE":
		c.PoseSource = value
	case "SOURCE_IDLE_TIMEOUT":
		v, err := nonNegativeInt(key, value)
		if err != nil {
			return err
		}
		c.SourceIdleTimeout = v
	case "SOURCE_HTTP_TIMEOUT":
		v, err := nonNegativeInt(key, value)
		if err != nil {
			return err
		}
		c.SourceHTTPTimeout = v
	case "SERIAL_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SERIAL_BAUD_RATE %q: %w", value, err)
		}
		if rate <= 0 {
			return fmt.Errorf("SERIAL_BAUD_RATE must be positive, got %d", rate)
		}
		c.SerialBaudRate = rate

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PUBLISHER":
		c.MQTTClientIDPublisher = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value

	// Topics
	case "TOPIC_POSES":
		c.TopicPoses = value
	case "TOPIC_POSE_RECORD":
		c.TopicPoseRecord = value

	// Timing
	case "PUBLISH_INTERVAL":
		v, err := nonNegativeInt(key, value)
		if err != nil {
			return err
		}
		c.PublishInterval = v

	// Placement
	case "POSITION_SCALE":
		scale, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid POSITION_SCALE %q: %w", value, err)
		}
		if scale <= 0 {
			return fmt.Errorf("POSITION_SCALE must be positive, got %g", scale)
		}
		c.PositionScale = scale

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		if port < 1 || port > 65535 {
			return fmt.Errorf("WEB_SERVER_PORT must be 1-65535, got %d", port)
		}
		c.WebServerPort = port

	// Logging
	case "LOG_DEVELOPMENT":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid LOG_DEVELOPMENT %q: %w", value, err)
		}
		c.LogDevelopment = v
	case "LOG_DEBUG":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid LOG_DEBUG %q: %w", value, err)
		}
		c.LogDebug = v

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

func nonNegativeInt(key, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %d", key, v)
	}
	return v, nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.PoseSource == "" {
		return fmt.Errorf("POSE_SOURCE is required")
	}
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.TopicPoses == "" {
		return fmt.Errorf("TOPIC_POSES is required")
	}
	if c.TopicPoseRecord == "" {
		return fmt.Errorf("TOPIC_POSE_RECORD is required")
	}
	return nil
}

// PublishEvery returns PublishInterval as a duration.
func (c *Config) PublishEvery() time.Duration {
	return time.Duration(c.PublishInterval) * time.Millisecond
}

// SourceIdle returns SourceIdleTimeout as a duration.
func (c *Config) SourceIdle() time.Duration {
	return time.Duration(c.SourceIdleTimeout) * time.Millisecond
}

// SourceHTTP returns SourceHTTPTimeout as a duration.
func (c *Config) SourceHTTP() time.Duration {
	return time.Duration(c.SourceHTTPTimeout) * time.Millisecond
}

// InitGlobal initializes the global configuration from file.
// Only the first call has any effect.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
