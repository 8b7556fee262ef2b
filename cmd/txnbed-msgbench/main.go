// Copyright 2018 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pingcap-incubator/txnbed/config"
	"github.com/pingcap-incubator/txnbed/log"
	"github.com/pingcap-incubator/txnbed/stats"
	"github.com/pingcap/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	statusAddr string
	ccAlg      string
	workload   string
	threads    uint64
	opts       benchOptions
)

func newRunCommand() *cobra.Command {
	m := &cobra.Command{
		Use:   "run",
		Short: "Send YCSB client queries through the codec and loopback transport",
		RunE:  runBench,
	}
	m.Flags().StringVarP(&configPath, "config", "c", "", "TOML config file")
	m.Flags().StringVar(&statusAddr, "status-addr", "", "Serve prometheus metrics on this address")
	m.Flags().StringVar(&ccAlg, "cc-alg", "", "Override the concurrency control algorithm")
	m.Flags().StringVar(&workload, "workload", "", "Override the workload")
	m.Flags().Uint64Var(&threads, "threads", 0, "Override the client thread count")
	m.Flags().IntVar(&opts.TxnPerThread, "txns", 1000, "Transactions issued by every client thread")
	m.Flags().IntVar(&opts.Window, "window", 8, "Outstanding transactions per client thread")
	m.Flags().IntVar(&opts.Rate, "rate", 0, "Attempt n transactions per second in total (default: unlimited)")
	return m
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	conf, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("cc-alg") {
		conf.CCAlg = config.CCAlg(strings.ToUpper(ccAlg))
	}
	if cmd.Flags().Changed("workload") {
		conf.Workload = config.Workload(strings.ToUpper(workload))
	}
	if cmd.Flags().Changed("threads") {
		conf.ThreadCnt = threads
	}
	return conf, conf.Validate()
}

func runBench(cmd *cobra.Command, args []string) error {
	conf, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := log.InitLogger(conf.LogLevel); err != nil {
		return errors.Trace(err)
	}
	log.Info("starting msgbench", zap.Stringer("config", conf), zap.Int("txns", opts.TxnPerThread))

	b, err := newBench(conf, opts)
	if err != nil {
		return err
	}
	defer b.close()

	if statusAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(stats.NewCollector(b.stats))
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(statusAddr, mux); err != nil {
				log.Warn("status server stopped", zap.String("addr", statusAddr), zap.Error(err))
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		select {
		case sig := <-sc:
			log.Info("got signal to exit", zap.Stringer("signal", sig))
			cancel()
		case <-ctx.Done():
		}
	}()

	start := time.Now()
	err = b.run(ctx)
	log.Info("run finished", zap.Duration("takes", time.Since(start)))

	sum := b.stats.Publish()
	sum.Log()
	if perr := sum.Print(os.Stdout); perr != nil {
		return errors.Trace(perr)
	}
	return err
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "txnbed-msgbench",
		Short: "Message codec and transport benchmark",
	}
	rootCmd.AddCommand(newRunCommand())
	cobra.EnablePrefixMatching = true

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
