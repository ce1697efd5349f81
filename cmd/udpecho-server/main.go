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

// Package main is the echo server. Every datagram it receives is answered by
// its own worker with "Echo: " followed by the received text.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/netlab/udpecho"
	"github.com/netlab/udpecho/config"
	"github.com/netlab/udpecho/log"
	"github.com/netlab/udpecho/metrics"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	os.Exit(realMain(os.Args[1:]))
}

// realMain runs the server and returns the process exit code, so that deferred
// cleanups run before the process exits.
func realMain(args []string) int {
	fs := flag.NewFlagSet("udpecho-server", flag.ContinueOnError)
	var (
		configPath  = fs.String("config", "", "path to the YAML configuration file")
		addr        = fs.String("addr", "", "udp address to bind, overrides the configuration")
		metricsAddr = fs.String("metrics-addr", "", "address of the prometheus endpoint, overrides the configuration")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "load configuration: %v\n", err)
			return 1
		}
	}
	if *addr != "" {
		cfg.Server.Address = *addr
	}
	if *metricsAddr != "" {
		cfg.Metrics.Address = *metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		return 1
	}

	logger, err := log.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create logger: %v\n", err)
		return 1
	}
	log.Default = logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Address != "" {
		srv := serveMetrics(cfg.Metrics)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	if err := run(ctx, cfg.Server); err != nil && !errors.Is(err, context.Canceled) {
		log.Errorf("udpecho server: %v", err)
		return 1
	}
	log.Infof("udpecho server stopped, %d tasks in flight", metrics.InFlight())
	metrics.ShowMetrics()
	return 0
}

func run(ctx context.Context, cfg config.ServerConfig) error {
	h, err := udpecho.Bind(cfg.Network, cfg.Address, cfg.ReusePort)
	if err != nil {
		return err
	}
	s, err := udpecho.NewServer(h, cfg.Options()...)
	if err != nil {
		h.Close()
		return err
	}
	return s.Serve(ctx)
}

func serveMetrics(cfg config.MetricsConfig) *http.Server {
	prometheus.MustRegister(metrics.NewCollector())
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.Handler())
	srv := &http.Server{Addr: cfg.Address, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Infof("udpecho metrics on http://%s%s", cfg.Address, cfg.Path)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("udpecho metrics server: %v", err)
		}
	}()
	return srv
}
