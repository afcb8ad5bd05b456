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

// Package asm assembles APF (Android Packet Filter) bytecode programs.
//
// Callers append typed instructions to a Builder and call Generate once
// to obtain the final byte stream. The package resolves symbolic labels,
// chooses the minimum-width encoding for every variable-size immediate,
// and iterates a size-minimization fixed point before emitting bytes.
package asm

// Opcode is a 5-bit primary opcode.
type Opcode byte

// LABEL is a sentinel, not a real opcode: it marks a zero-byte
// pseudo-instruction that anchors a name.
const (
	LABEL Opcode = 0xff // not emitted; disambiguated from PASS/DROP by field, not value

	PASS    Opcode = 0 // shares code with DROP; register bit disambiguates
	DROP    Opcode = 0
	LDB     Opcode = 1
	LDH     Opcode = 2
	LDW     Opcode = 3
	LDBX    Opcode = 4
	LDHX    Opcode = 5
	LDWX    Opcode = 6
	ADD     Opcode = 7
	MUL     Opcode = 8
	DIV     Opcode = 9
	AND     Opcode = 10
	OR      Opcode = 11
	SH      Opcode = 12
	LI      Opcode = 13
	JMP     Opcode = 14
	JEQ     Opcode = 15
	JNE     Opcode = 16
	JGT     Opcode = 17
	JLT     Opcode = 18
	JSET    Opcode = 19
	JNEBS   Opcode = 20
	EXT     Opcode = 21
	LDDW    Opcode = 22
	STDW    Opcode = 23
	WRITE   Opcode = 24
	MEMCOPY Opcode = 25
)

// ExtendedOpcode selects the real operation when the primary opcode is EXT.
type ExtendedOpcode int

const (
	LDM       ExtendedOpcode = 0  // base; actual selector is LDM+slot
	STM       ExtendedOpcode = 16 // base; actual selector is STM+slot
	NOT       ExtendedOpcode = 32
	NEG       ExtendedOpcode = 33
	SWAP      ExtendedOpcode = 34
	MOVE      ExtendedOpcode = 35
	ALLOCATE  ExtendedOpcode = 36
	TRANSMIT  ExtendedOpcode = 37 // shares code with DISCARD; register bit disambiguates
	DISCARD   ExtendedOpcode = 37
	EWRITE1   ExtendedOpcode = 38
	EWRITE2   ExtendedOpcode = 39
	EWRITE4   ExtendedOpcode = 40
	EPKTCOPY  ExtendedOpcode = 41
	EDATACOPY ExtendedOpcode = 42
)

// Register is a single bit, R0 or R1. Every emitted instruction carries
// exactly one register bit in its leading byte.
type Register byte

const (
	R0 Register = 0
	R1 Register = 1
)

// Memory slots available for LDM/STM. Slots 13-15 are prefilled by the
// interpreter; the generator treats them as ordinary writable slots.
const (
	MemorySlots = 16

	IPv4HeaderSizeMemorySlot = 13
	PacketSizeMemorySlot     = 14
	FilterAgeMemorySlot      = 15

	FirstPrefilledMemorySlot = IPv4HeaderSizeMemorySlot
	LastPrefilledMemorySlot  = FilterAgeMemorySlot
)

// Interpreter version floors.
const (
	MinAPFVersion      = 2 // floor accepted by New
	MinAPFVersionInDev = 5 // floor for counters, ALLOCATE, TRANSMIT/DISCARD, data region, WRITE family
	APFVersion4        = 4 // floor for LDDW/STDW
)

// SupportsVersion reports whether version is usable with this package.
func SupportsVersion(version int) bool {
	return version >= MinAPFVersion
}

// DropLabel and PassLabel are reserved sentinel target names. They are
// never placed in the label table; the Builder resolves them directly to
// private anchor instructions positioned by the layout pass at the end of
// the program (PASS) and one byte past the end (DROP).
const (
	DropLabel = "__DROP__"
	PassLabel = "__PASS__"
)
