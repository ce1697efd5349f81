//
//
// Tencent is pleased to support the open source community by making tRPC available.
//
// Copyright (C) 2023 THL A29 Limited, a Tencent company.
// All rights reserved.
//
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the  Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.
//
//

// Package config loads the YAML configuration of the udpecho programs.
package config

import (
	"net"
	"os"
	"strings"
	"time"

	"github.com/netlab/udpecho"
	"github.com/netlab/udpecho/internal/netutil"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the complete configuration of udpecho-server.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig configures the echo server.
type ServerConfig struct {
	Network         string        `yaml:"network"`
	Address         string        `yaml:"address"`
	ReusePort       bool          `yaml:"reuse_port"`
	MaxDatagramSize int           `yaml:"max_datagram_size"`
	MaxWorkers      int           `yaml:"max_workers"` // 0 means no limit
	OSDuplicate     bool          `yaml:"os_duplicate"`
	Truncation      string        `yaml:"truncation"` // accept or drop
	ReplyTimeout    time.Duration `yaml:"reply_timeout"`
	ReplyPrefix     string        `yaml:"reply_prefix"`
}

// LoggingConfig configures the program logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig configures the prometheus endpoint. An empty address disables it.
type MetricsConfig struct {
	Address string `yaml:"address"`
	Path    string `yaml:"path"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Network:         "udp",
			Address:         udpecho.DefaultAddress,
			MaxDatagramSize: udpecho.DefaultMaxDatagramSize,
			Truncation:      udpecho.TruncateAccept.String(),
			ReplyPrefix:     udpecho.DefaultReplyPrefix,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Metrics: MetricsConfig{
			Path: "/metrics",
		},
	}
}

// Load reads the file at path on top of the defaults and validates the result.
// Keys missing from the file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config file %s", path)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config file %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}
	return cfg, nil
}

// Validate checks every section of the configuration.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return errors.Wrap(err, "server config")
	}
	if err := c.Logging.Validate(); err != nil {
		return errors.Wrap(err, "logging config")
	}
	if err := c.Metrics.Validate(); err != nil {
		return errors.Wrap(err, "metrics config")
	}
	return nil
}

// Validate validates server configuration.
func (s *ServerConfig) Validate() error {
	if err := netutil.ValidateUDP(s.Network); err != nil {
		return err
	}
	if s.Address == "" {
		return errors.New("address cannot be empty")
	}
	if s.MaxDatagramSize < 1 || s.MaxDatagramSize > 65535 {
		return errors.Errorf("max_datagram_size must be between 1 and 65535, got %d", s.MaxDatagramSize)
	}
	if s.MaxWorkers < 0 {
		return errors.Errorf("max_workers cannot be negative, got %d", s.MaxWorkers)
	}
	if s.ReplyTimeout < 0 {
		return errors.Errorf("reply_timeout cannot be negative, got %s", s.ReplyTimeout)
	}
	if _, err := s.TruncationPolicy(); err != nil {
		return err
	}
	return nil
}

// TruncationPolicy parses the truncation setting.
func (s *ServerConfig) TruncationPolicy() (udpecho.TruncationPolicy, error) {
	switch s.Truncation {
	case "", udpecho.TruncateAccept.String():
		return udpecho.TruncateAccept, nil
	case udpecho.TruncateDrop.String():
		return udpecho.TruncateDrop, nil
	default:
		return 0, errors.Errorf("truncation must be 'accept' or 'drop', got '%s'", s.Truncation)
	}
}

// Options converts the server configuration into server options.
func (s *ServerConfig) Options() []udpecho.Option {
	policy, _ := s.TruncationPolicy()
	return []udpecho.Option{
		udpecho.WithMaxDatagramSize(s.MaxDatagramSize),
		udpecho.WithMaxWorkers(s.MaxWorkers),
		udpecho.WithOSDuplicate(s.OSDuplicate),
		udpecho.WithTruncationPolicy(policy),
		udpecho.WithReplyTimeout(s.ReplyTimeout),
		udpecho.WithReplyPrefix(s.ReplyPrefix),
	}
}

// Validate validates logging configuration.
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return errors.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}
	validFormats := map[string]bool{"console": true, "json": true}
	if !validFormats[l.Format] {
		return errors.Errorf("format must be 'console' or 'json', got '%s'", l.Format)
	}
	return nil
}

// Validate validates metrics configuration. Nothing is checked while the
// endpoint is disabled.
func (m *MetricsConfig) Validate() error {
	if m.Address == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(m.Address); err != nil {
		return errors.Wrapf(err, "invalid address '%s'", m.Address)
	}
	if !strings.HasPrefix(m.Path, "/") {
		return errors.Errorf("path must start with '/', got '%s'", m.Path)
	}
	return nil
}
