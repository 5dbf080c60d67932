package main

import (
	"bufio"
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"itmtrace/internal/metrics"
	"itmtrace/itm"
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [FILE]",
		Short: "Decode a trace byte stream while exposing Prometheus counters over HTTP",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runServe(cmd, cfg, path)
		},
	}
	cmd.Flags().Bool("naive", false, "continue past malformed packets instead of stopping at the first one")
	cmd.Flags().Bool("only-gts", false, "set the decoder's only-GTS option; it affects timestamp batching only, and this command counts packets without timestamp batching")
	cmd.Flags().String("metrics-addr", ":9090", "address to serve /metrics on")
	cmd.Flags().Bool("verbose", false, "log decode errors and resync events via logrus instead of discarding them")
	return cmd
}

func runServe(cmd *cobra.Command, cfg decodeConfig, path string) error {
	reg := prometheus.NewRegistry()
	rec := metrics.New(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	addr := cfg.MetricsAddr
	if addr == "" {
		addr = ":9090"
	}
	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	in, err := openInput(path)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer in.Close()

	var log itm.Logger
	if cfg.Verbose {
		log = itm.NewLogrusLogger(nil)
	}
	dec := itm.New(itm.Options{OnlyGTS: cfg.OnlyGTS, Metrics: rec, Log: log})

	reader := bufio.NewReader(in)
	buf := make([]byte, 4096)
	for {
		n, readErr := reader.Read(buf)
		if n > 0 {
			dec.Push(buf[:n])
			if err := drainServe(dec, cfg); err != nil && !cfg.Naive {
				_ = srv.Close()
				return err
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			_ = srv.Close()
			return fmt.Errorf("reading input: %w", readErr)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "drained input; serving metrics on %s\n", addr)
	return <-errCh
}

func drainServe(dec *itm.Decoder, cfg decodeConfig) error {
	for {
		_, malformed, ok := dec.Next()
		if !ok {
			return nil
		}
		if malformed != nil && !cfg.Naive {
			return fmt.Errorf("malformed packet: %v", malformed)
		}
	}
}
