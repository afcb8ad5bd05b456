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
	"github.com/spf13/cobra"

	"github.com/muhomorr/platform-packages-modules-NetworkStack/asm"
)

func init() {
	rootCmd.AddCommand(opcodesCmd)
}

// opcodeRow describes one primary opcode for display purposes only; it
// has no bearing on the encoding the asm package actually produces.
type opcodeRow struct {
	name       string
	value      asm.Opcode
	minVersion int
}

var opcodeTable = []opcodeRow{
	{"PASS", asm.PASS, asm.MinAPFVersion},
	{"DROP", asm.DROP, asm.MinAPFVersionInDev},
	{"LDB", asm.LDB, asm.MinAPFVersion},
	{"LDH", asm.LDH, asm.MinAPFVersion},
	{"LDW", asm.LDW, asm.MinAPFVersion},
	{"LDBX", asm.LDBX, asm.MinAPFVersion},
	{"LDHX", asm.LDHX, asm.MinAPFVersion},
	{"LDWX", asm.LDWX, asm.MinAPFVersion},
	{"ADD", asm.ADD, asm.MinAPFVersion},
	{"MUL", asm.MUL, asm.MinAPFVersion},
	{"DIV", asm.DIV, asm.MinAPFVersion},
	{"AND", asm.AND, asm.MinAPFVersion},
	{"OR", asm.OR, asm.MinAPFVersion},
	{"SH", asm.SH, asm.MinAPFVersion},
	{"LI", asm.LI, asm.MinAPFVersion},
	{"JMP", asm.JMP, asm.MinAPFVersion},
	{"JEQ", asm.JEQ, asm.MinAPFVersion},
	{"JNE", asm.JNE, asm.MinAPFVersion},
	{"JGT", asm.JGT, asm.MinAPFVersion},
	{"JLT", asm.JLT, asm.MinAPFVersion},
	{"JSET", asm.JSET, asm.MinAPFVersion},
	{"JNEBS", asm.JNEBS, asm.MinAPFVersion},
	{"EXT", asm.EXT, asm.MinAPFVersion},
	{"LDDW", asm.LDDW, asm.APFVersion4},
	{"STDW", asm.STDW, asm.APFVersion4},
	{"WRITE", asm.WRITE, asm.MinAPFVersionInDev},
	{"MEMCOPY", asm.MEMCOPY, asm.MinAPFVersionInDev},
}

var opcodesCmd = &cobra.Command{
	Use:   "opcodes",
	Short: "List the primary opcode table this generator understands",
	RunE: func(cmd *cobra.Command, args []string) error {
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"NAME", "VALUE", "MIN VERSION"})
		for _, row := range opcodeTable {
			table.Append([]string{row.name, fmt.Sprintf("%d", row.value), fmt.Sprintf("%d", row.minVersion)})
		}
		table.Render()
		return nil
	},
}
