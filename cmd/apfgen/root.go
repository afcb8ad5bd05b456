// Copyright (c) 2026 The APF Generator Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/muhomorr/platform-packages-modules-NetworkStack/internal/metrics"
)

var cfgFile string

// rootCmd represents the apfgen command.
var rootCmd = &cobra.Command{
	Use:               "apfgen",
	Short:             "Assembles APF (Android Packet Filter) bytecode programs",
	PersistentPreRunE: maybeServeMetrics,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.apfgen.toml)")
	rootCmd.PersistentFlags().Int("apf-version", 4, "default interpreter version floor")
	rootCmd.PersistentFlags().String("format", "", "program description format: toml, json, or cbor (default: guess from extension)")
	rootCmd.PersistentFlags().String("metrics-addr", "", "address to serve Prometheus metrics on for batch-assembly jobs (default: disabled)")
	if err := viper.BindPFlag("apf_version", rootCmd.PersistentFlags().Lookup("apf-version")); err != nil {
		log.WithError(err).Fatal("failed to bind flag")
	}
	if err := viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format")); err != nil {
		log.WithError(err).Fatal("failed to bind flag")
	}
	if err := viper.BindPFlag("metrics_addr", rootCmd.PersistentFlags().Lookup("metrics-addr")); err != nil {
		log.WithError(err).Fatal("failed to bind flag")
	}
	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		log.WithError(err).Fatal("failed to register metrics collectors")
	}
	cobra.OnInitialize(initConfig)
}

// maybeServeMetrics starts a background /metrics listener when
// --metrics-addr is set, so a long batch-assembly run can be scraped
// while it works. It never blocks command execution.
func maybeServeMetrics(cmd *cobra.Command, args []string) error {
	addr := viper.GetString("metrics_addr")
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.WithError(err).Error("metrics listener stopped")
		}
	}()
	log.WithField("addr", addr).Info("serving prometheus metrics")
	return nil
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".apfgen")
		viper.SetConfigType("toml")
	}
	if err := viper.ReadInConfig(); err != nil {
		log.WithError(err).Debug("no apfgen config file found, using flag defaults")
	}
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
