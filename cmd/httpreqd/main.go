// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Command httpreqd is the reference server binary around pkg/httpreq:
// it wires internal/config, internal/logging, internal/metrics and
// server.Server together behind a github.com/spf13/cobra CLI, in the
// shape packetd's cmd/watch.go wires its own cobra command around
// confengine + controller.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/coreproto/httpreq/internal/config"
	"github.com/coreproto/httpreq/internal/logging"
	"github.com/coreproto/httpreq/pkg/httpreq"
	"github.com/coreproto/httpreq/server"
)

type serveCmdConfig struct {
	ConfigFile  string
	Listen      string
	FrameSize   int
	MaxConns    int
	MetricsAddr string
	LogLevel    string
	Console     bool
}

var serveConfig serveCmdConfig

var rootCmd = &cobra.Command{
	Use:   "httpreqd",
	Short: "Reference HTTP/1.1 request-assembler server",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Accept connections and assemble HTTP/1.1 requests off them",
	Example: "  httpreqd serve --listen 127.0.0.1:8080 --console",
	Run: func(cmd *cobra.Command, args []string) {
		srvCfg := config.DefaultServer()
		if serveConfig.ConfigFile != "" {
			cfg, err := config.LoadConfigPath(serveConfig.ConfigFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
				os.Exit(1)
			}
			srvCfg, err = config.LoadServer(cfg)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to unpack config: %v\n", err)
				os.Exit(1)
			}
		}
		if serveConfig.Listen != "" {
			srvCfg.Listen = serveConfig.Listen
		}
		if serveConfig.FrameSize > 0 {
			srvCfg.FrameSize = serveConfig.FrameSize
		}
		if serveConfig.MaxConns > 0 {
			srvCfg.MaxConns = serveConfig.MaxConns
		}
		if serveConfig.Console {
			srvCfg.Logger.Stdout = true
		}
		if serveConfig.LogLevel != "" {
			srvCfg.Logger.Level = serveConfig.LogLevel
		}

		logging.SetOptions(srvCfg.Logger)
		log := logging.New(srvCfg.Logger)

		if serveConfig.MetricsAddr != "" {
			go func() {
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.Handler())
				if err := http.ListenAndServe(serveConfig.MetricsAddr, mux); err != nil {
					log.Errorf("metrics listener stopped: %v", err)
				}
			}()
		}

		srv := &server.Server{
			Addr:      srvCfg.Listen,
			FrameSize: srvCfg.FrameSize,
			MaxConns:  srvCfg.MaxConns,
			Log:       log,
			Handler: server.HandlerFunc(func(req *httpreq.Request) []byte {
				return []byte("HTTP/1.1 204 No Content\r\nConnection: close\r\nContent-Length: 0\r\n\r\n")
			}),
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log.Infof("listening on %s", srvCfg.Listen)
		if err := srv.ListenAndServe(ctx); err != nil {
			log.Errorf("server stopped: %v", err)
			os.Exit(1)
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveConfig.ConfigFile, "config", "", "Path to a YAML config file")
	serveCmd.Flags().StringVar(&serveConfig.Listen, "listen", "", "Address to listen on (overrides config)")
	serveCmd.Flags().IntVar(&serveConfig.FrameSize, "frame-size", 0, "Bytes read per socket read (overrides config)")
	serveCmd.Flags().IntVar(&serveConfig.MaxConns, "max-conns", 0, "Maximum concurrent connections (overrides config)")
	serveCmd.Flags().StringVar(&serveConfig.MetricsAddr, "metrics-addr", "", "Address to serve /metrics on; empty disables it")
	serveCmd.Flags().StringVar(&serveConfig.LogLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	serveCmd.Flags().BoolVar(&serveConfig.Console, "console", false, "Log to stdout instead of the configured file sink")
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
