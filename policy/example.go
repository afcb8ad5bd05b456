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

// Package policy is a worked example of composing asm.Builder calls into
// one assembled program. It is deliberately not a policy compiler: it
// knows nothing about packet semantics beyond the handful of offsets it
// hard-codes, and exists to exercise the builder's opcode surface (data
// region, counters, memory slots, the output buffer lifecycle) the way a
// real caller would chain them.
package policy

import (
	"github.com/muhomorr/platform-packages-modules-NetworkStack/asm"
)

// EtherTypeOffset and IPv4ProtoOffset are illustrative packet offsets,
// not derived from any packet-classification logic in this module.
const (
	EtherTypeOffset = 12
	IPv4ProtoOffset = 23

	EtherTypeIPv4 = 0x0800
	ProtoUDP      = 17

	// DropCounter is the counter slot incremented by the DROP this
	// example takes when it sees a non-IPv4, non-UDP packet.
	DropCounter = 1
)

// KitchenSinkProgram builds a small representative program: reserve a
// one-counter data region, pass IPv4/UDP packets, and count-and-drop
// everything else. It requires MinAPFVersionInDev because it uses the
// data region and counted termination opcodes.
func KitchenSinkProgram(version int) ([]byte, error) {
	b, err := asm.New(version)
	if err != nil {
		return nil, err
	}

	// One counter slot, 4 bytes, zero-initialized.
	if err := b.AddData(make([]byte, 4)); err != nil {
		return nil, err
	}

	if err := b.AddLoad16(asm.R0, EtherTypeOffset); err != nil {
		return nil, err
	}
	if err := b.AddJumpIfR0NotEquals(EtherTypeIPv4, "not_ipv4_udp"); err != nil {
		return nil, err
	}

	if err := b.AddLoad8(asm.R0, IPv4ProtoOffset); err != nil {
		return nil, err
	}
	if err := b.AddJumpIfR0NotEquals(ProtoUDP, "not_ipv4_udp"); err != nil {
		return nil, err
	}

	if err := b.AddPass(); err != nil {
		return nil, err
	}

	if err := b.DefineLabel("not_ipv4_udp"); err != nil {
		return nil, err
	}
	if err := b.AddCountAndDrop(DropCounter); err != nil {
		return nil, err
	}

	return b.Generate()
}

// AllocateAndTransmitEchoProgram builds a program that allocates an
// output buffer the size of the packet, copies the first 255 bytes of the
// packet into it, and transmits it back out — an APF loopback/echo, useful for exercising
// the ALLOCATE/MEMCOPY/TRANSMIT family end to end.
func AllocateAndTransmitEchoProgram(version int) ([]byte, error) {
	b, err := asm.New(version)
	if err != nil {
		return nil, err
	}

	if err := b.AddLoadFromMemory(asm.R0, asm.PacketSizeMemorySlot); err != nil {
		return nil, err
	}
	if err := b.AddAllocateR0(); err != nil {
		return nil, err
	}
	if err := b.AddLoadFromMemory(asm.R0, asm.PacketSizeMemorySlot); err != nil {
		return nil, err
	}
	// MEMCOPY's length field is a single byte: cap the demo copy at 255
	// bytes so AddPacketCopy's range check always passes regardless of
	// how big PacketSizeMemorySlot happens to be at runtime.
	if err := b.AddPacketCopy(0, 255); err != nil {
		return nil, err
	}
	if err := b.AddTransmit(); err != nil {
		return nil, err
	}

	return b.Generate()
}
