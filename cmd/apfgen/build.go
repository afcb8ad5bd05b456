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
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/muhomorr/platform-packages-modules-NetworkStack/internal/metrics"
)

var (
	buildInputPath  string
	buildOutputPath string
)

func init() {
	buildCmd.Flags().StringVarP(&buildInputPath, "input", "i", "", "program description file (required)")
	buildCmd.Flags().StringVarP(&buildOutputPath, "output", "o", "", "bytecode output path (default: stdout)")
	_ = buildCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(buildCmd)
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Assemble a program description into APF bytecode",
	RunE: func(cmd *cobra.Command, args []string) error {
		runID := uuid.New()
		entry := log.WithField("run_id", runID)

		spec, err := decodeProgramSpec(buildInputPath, viper.GetString("format"))
		if err != nil {
			return errors.WithMessage(err, "failed to decode program description")
		}
		if spec.Version == 0 {
			spec.Version = viper.GetInt("apf_version")
		}

		bytecode, err := Assemble(spec)
		metrics.RecordAssembly(len(bytecode), err)
		if err != nil {
			entry.WithError(err).Error("failed to assemble program")
			return errors.WithMessage(err, "failed to assemble program")
		}
		entry.WithField("bytes", len(bytecode)).Info("assembled program")

		if buildOutputPath == "" {
			_, err = os.Stdout.Write(bytecode)
			return err
		}
		return os.WriteFile(buildOutputPath, bytecode, 0o644)
	},
}
