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

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/netlab/udpecho"
	"github.com/netlab/udpecho/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.Nil(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	require.Nil(t, cfg.Validate())
	assert.Equal(t, "udp", cfg.Server.Network)
	assert.Equal(t, udpecho.DefaultAddress, cfg.Server.Address)
	assert.Equal(t, udpecho.DefaultMaxDatagramSize, cfg.Server.MaxDatagramSize)
	assert.Equal(t, udpecho.DefaultReplyPrefix, cfg.Server.ReplyPrefix)
	assert.Equal(t, "", cfg.Metrics.Address)
	assert.Len(t, cfg.Server.Options(), 6)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  address: 0.0.0.0:6000
  reuse_port: true
  max_workers: 64
  os_duplicate: true
  truncation: drop
  reply_timeout: 250ms
logging:
  level: debug
  format: json
metrics:
  address: 127.0.0.1:9100
`)
	cfg, err := config.Load(path)
	require.Nil(t, err)
	assert.Equal(t, "0.0.0.0:6000", cfg.Server.Address)
	assert.True(t, cfg.Server.ReusePort)
	assert.Equal(t, 64, cfg.Server.MaxWorkers)
	assert.True(t, cfg.Server.OSDuplicate)
	assert.Equal(t, 250*time.Millisecond, cfg.Server.ReplyTimeout)
	policy, err := cfg.Server.TruncationPolicy()
	require.Nil(t, err)
	assert.Equal(t, udpecho.TruncateDrop, policy)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "127.0.0.1:9100", cfg.Metrics.Address)

	// Keys missing from the file keep their defaults.
	assert.Equal(t, "udp", cfg.Server.Network)
	assert.Equal(t, udpecho.DefaultMaxDatagramSize, cfg.Server.MaxDatagramSize)
	assert.Equal(t, udpecho.DefaultReplyPrefix, cfg.Server.ReplyPrefix)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoad_emptyReplyPrefix(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "server:\n  reply_prefix: \"\"\n"))
	require.Nil(t, err)
	assert.Equal(t, "", cfg.Server.ReplyPrefix)
}

func TestLoad_errors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.NotNil(t, err)

	_, err = config.Load(writeConfig(t, "server: [unclosed"))
	assert.NotNil(t, err)

	_, err = config.Load(writeConfig(t, "server:\n  network: tcp\n"))
	assert.NotNil(t, err)

	_, err = config.Load(writeConfig(t, "metrics:\n  address: 127.0.0.1:9100\n  path: \"\"\n"))
	assert.NotNil(t, err)
}

func TestMetricsConfigValidate(t *testing.T) {
	disabled := config.MetricsConfig{Path: ""}
	assert.Nil(t, disabled.Validate())
	enabled := config.MetricsConfig{Address: ":9100", Path: "/metrics"}
	assert.Nil(t, enabled.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
	}{
		{"bad network", func(c *config.Config) { c.Server.Network = "ip" }},
		{"empty address", func(c *config.Config) { c.Server.Address = "" }},
		{"zero datagram size", func(c *config.Config) { c.Server.MaxDatagramSize = 0 }},
		{"huge datagram size", func(c *config.Config) { c.Server.MaxDatagramSize = 70000 }},
		{"negative workers", func(c *config.Config) { c.Server.MaxWorkers = -1 }},
		{"negative reply timeout", func(c *config.Config) { c.Server.ReplyTimeout = -time.Second }},
		{"bad truncation", func(c *config.Config) { c.Server.Truncation = "split" }},
		{"bad level", func(c *config.Config) { c.Logging.Level = "trace" }},
		{"bad format", func(c *config.Config) { c.Logging.Format = "text" }},
		{"metrics without path", func(c *config.Config) {
			c.Metrics.Address = "127.0.0.1:9100"
			c.Metrics.Path = ""
		}},
		{"metrics relative path", func(c *config.Config) {
			c.Metrics.Address = "127.0.0.1:9100"
			c.Metrics.Path = "metrics"
		}},
		{"metrics address without port", func(c *config.Config) { c.Metrics.Address = "localhost" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.modify(cfg)
			assert.NotNil(t, cfg.Validate())
		})
	}
}
