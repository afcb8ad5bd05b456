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
	"strings"

	"github.com/muhomorr/platform-packages-modules-NetworkStack/asm"
)

// ProgramSpec is the declarative instruction-list format the CLI reads,
// one record per Builder append call. It is not a filter policy format:
// it has no notion of packet fields, only of opcodes and their operands.
type ProgramSpec struct {
	Version      int               `json:"version" toml:"version" cbor:"version"`
	Instructions []InstructionSpec `json:"instructions" toml:"instructions" cbor:"instructions"`
}

// InstructionSpec describes one append call. Fields are interpreted
// according to Op; unused fields for a given op are ignored.
type InstructionSpec struct {
	Op       string `json:"op" toml:"op" cbor:"op"`
	Register string `json:"register,omitempty" toml:"register,omitempty" cbor:"register,omitempty"`
	Value    int64  `json:"value,omitempty" toml:"value,omitempty" cbor:"value,omitempty"`
	Target   string `json:"target,omitempty" toml:"target,omitempty" cbor:"target,omitempty"`
	Label    string `json:"label,omitempty" toml:"label,omitempty" cbor:"label,omitempty"`
	Slot     int    `json:"slot,omitempty" toml:"slot,omitempty" cbor:"slot,omitempty"`
	Size     int    `json:"size,omitempty" toml:"size,omitempty" cbor:"size,omitempty"`
	Offset   int    `json:"offset,omitempty" toml:"offset,omitempty" cbor:"offset,omitempty"`
	Length   int    `json:"length,omitempty" toml:"length,omitempty" cbor:"length,omitempty"`
	Bytes    []byte `json:"bytes,omitempty" toml:"bytes,omitempty" cbor:"bytes,omitempty"`
}

func register(s string) (asm.Register, error) {
	switch strings.ToUpper(s) {
	case "", "R0":
		return asm.R0, nil
	case "R1":
		return asm.R1, nil
	default:
		return 0, fmt.Errorf("unknown register %q", s)
	}
}

// Assemble turns a ProgramSpec into bytecode by replaying its
// instructions against a fresh Builder.
func Assemble(spec ProgramSpec) ([]byte, error) {
	b, err := asm.New(spec.Version)
	if err != nil {
		return nil, err
	}

	for i, in := range spec.Instructions {
		if err := applyInstruction(b, in); err != nil {
			return nil, fmt.Errorf("instruction %d (%s): %w", i, in.Op, err)
		}
	}

	return b.Generate()
}

func applyInstruction(b *asm.Builder, in InstructionSpec) error {
	r, err := register(in.Register)
	if err != nil {
		return err
	}
	v := int(in.Value)

	switch strings.ToUpper(in.Op) {
	case "LABEL":
		return b.DefineLabel(in.Label)
	case "PASS":
		return b.AddPass()
	case "DROP":
		return b.AddDrop()
	case "COUNT_AND_PASS":
		return b.AddCountAndPass(v)
	case "COUNT_AND_DROP":
		return b.AddCountAndDrop(v)
	case "JMP":
		return b.AddJump(in.Target)
	case "JEQ":
		return b.AddJumpIfR0Equals(v, in.Target)
	case "JNE":
		return b.AddJumpIfR0NotEquals(v, in.Target)
	case "JGT":
		return b.AddJumpIfR0GreaterThan(v, in.Target)
	case "JLT":
		return b.AddJumpIfR0LessThan(v, in.Target)
	case "JSET":
		return b.AddJumpIfR0AnyBitsSet(v, in.Target)
	case "JEQ_R1":
		return b.AddJumpIfR0EqualsR1(in.Target)
	case "JNE_R1":
		return b.AddJumpIfR0NotEqualsR1(in.Target)
	case "JGT_R1":
		return b.AddJumpIfR0GreaterThanR1(in.Target)
	case "JLT_R1":
		return b.AddJumpIfR0LessThanR1(in.Target)
	case "JSET_R1":
		return b.AddJumpIfR0AnyBitsSetR1(in.Target)
	case "JNEBS":
		return b.AddJumpIfBytesAtR0NotEqual(in.Bytes, in.Target)
	case "LDB":
		return b.AddLoad8(r, v)
	case "LDH":
		return b.AddLoad16(r, v)
	case "LDW":
		return b.AddLoad32(r, v)
	case "LDBX":
		return b.AddLoad8Indexed(r, v)
	case "LDHX":
		return b.AddLoad16Indexed(r, v)
	case "LDWX":
		return b.AddLoad32Indexed(r, v)
	case "ADD":
		return b.AddAdd(v)
	case "MUL":
		return b.AddMul(v)
	case "DIV":
		return b.AddDiv(v)
	case "AND":
		return b.AddAnd(v)
	case "OR":
		return b.AddOr(v)
	case "LSH":
		return b.AddLeftShift(v)
	case "RSH":
		return b.AddRightShift(v)
	case "ADD_R1":
		return b.AddAddR1()
	case "MUL_R1":
		return b.AddMulR1()
	case "DIV_R1":
		return b.AddDivR1()
	case "AND_R1":
		return b.AddAndR1()
	case "OR_R1":
		return b.AddOrR1()
	case "LSH_R1":
		return b.AddLeftShiftR1()
	case "LI":
		return b.AddLoadImmediate(r, v)
	case "LDM":
		return b.AddLoadFromMemory(r, in.Slot)
	case "STM":
		return b.AddStoreToMemory(r, in.Slot)
	case "NOT":
		return b.AddNot(r)
	case "NEG":
		return b.AddNeg(r)
	case "SWAP":
		return b.AddSwap()
	case "MOVE":
		return b.AddMove(r)
	case "ALLOCATE_R0":
		return b.AddAllocateR0()
	case "ALLOCATE":
		return b.AddAllocate(v)
	case "TRANSMIT":
		return b.AddTransmit()
	case "DISCARD":
		return b.AddDiscard()
	case "DATA":
		return b.AddData(in.Bytes)
	case "LDDW":
		return b.AddLoadData(r, v)
	case "STDW":
		return b.AddStoreData(r, v)
	case "WRITE":
		return b.AddWrite(uint32(in.Value), in.Size)
	case "EWRITE":
		return b.AddExtendedWrite(r, in.Size)
	case "PKTCOPY":
		return b.AddPacketCopy(in.Offset, in.Length)
	case "DATACOPY":
		return b.AddDataCopy(in.Offset, in.Length)
	case "EPKTCOPY":
		return b.AddExtendedPacketCopy(r, in.Offset, in.Length)
	case "EDATACOPY":
		return b.AddExtendedDataCopy(r, in.Offset, in.Length)
	default:
		return fmt.Errorf("unknown op %q", in.Op)
	}
}
