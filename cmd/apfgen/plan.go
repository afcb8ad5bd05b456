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
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/muhomorr/platform-packages-modules-NetworkStack/asm"
)

var planInputPath string

func init() {
	planCmd.Flags().StringVarP(&planInputPath, "input", "i", "", "program description file (required)")
	_ = planCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(planCmd)
}

// planCmd prints the non-finalizing program-length overestimate: a
// report of where the layout fixed point would start, not a
// disassembly of generated bytes.
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Report the pre-fixed-point size estimate for a program description, without generating it",
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := decodeProgramSpec(planInputPath, viper.GetString("format"))
		if err != nil {
			return errors.WithMessage(err, "failed to decode program description")
		}
		if spec.Version == 0 {
			spec.Version = viper.GetInt("apf_version")
		}

		b, err := asm.New(spec.Version)
		if err != nil {
			return err
		}
		for i, in := range spec.Instructions {
			if err := applyInstruction(b, in); err != nil {
				return fmt.Errorf("instruction %d (%s): %w", i, in.Op, err)
			}
		}

		overestimate, err := b.ProgramLengthOverestimate()
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"METRIC", "VALUE"})
		table.Append([]string{"instructions appended", fmt.Sprintf("%d", len(spec.Instructions))})
		table.Append([]string{"size overestimate (bytes)", fmt.Sprintf("%d", overestimate)})
		table.Render()
		return nil
	},
}
