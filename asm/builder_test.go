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

package asm

import (
	"fmt"
	"testing"

	. "github.com/onsi/gomega"
)

func TestNewRejectsOldVersion(t *testing.T) {
	RegisterTestingT(t)
	_, err := New(1)
	Expect(err).To(HaveOccurred())
}

func TestEmptyProgram(t *testing.T) {
	RegisterTestingT(t)
	b, err := New(MinAPFVersion)
	Expect(err).NotTo(HaveOccurred())
	bytecode, err := b.Generate()
	Expect(err).NotTo(HaveOccurred())
	Expect(bytecode).To(BeEmpty())
}

func TestSinglePass(t *testing.T) {
	RegisterTestingT(t)
	b, _ := New(MinAPFVersion)
	Expect(b.AddPass()).NotTo(HaveOccurred())
	bytecode, err := b.Generate()
	Expect(err).NotTo(HaveOccurred())
	Expect(bytecode).To(Equal([]byte{0x00}))
}

func TestSingleDrop(t *testing.T) {
	RegisterTestingT(t)
	b, _ := New(MinAPFVersionInDev)
	Expect(b.AddDrop()).NotTo(HaveOccurred())
	bytecode, err := b.Generate()
	Expect(err).NotTo(HaveOccurred())
	Expect(bytecode).To(Equal([]byte{0x01}))
}

func TestLoadImmediateSmallValue(t *testing.T) {
	RegisterTestingT(t)
	b, _ := New(MinAPFVersion)
	Expect(b.AddLoadImmediate(R0, 5)).NotTo(HaveOccurred())
	bytecode, err := b.Generate()
	Expect(err).NotTo(HaveOccurred())
	Expect(bytecode).To(Equal([]byte{0x6A, 0x05}))
}

func TestJumpForwardOverOnePass(t *testing.T) {
	RegisterTestingT(t)
	b, _ := New(MinAPFVersion)
	Expect(b.AddJump("target")).NotTo(HaveOccurred())
	Expect(b.AddPass()).NotTo(HaveOccurred())
	Expect(b.DefineLabel("target")).NotTo(HaveOccurred())
	bytecode, err := b.Generate()
	Expect(err).NotTo(HaveOccurred())
	Expect(bytecode).To(Equal([]byte{0x72, 0x01, 0x00}))
}

func TestJumpToPassSentinel(t *testing.T) {
	RegisterTestingT(t)
	b, _ := New(MinAPFVersion)
	Expect(b.AddJumpIfR0Equals(1, PassLabel)).NotTo(HaveOccurred())
	Expect(b.AddDrop()).To(HaveOccurred()) // v2 builder, DROP needs v5
	bytecode, err := b.Generate()
	Expect(err).NotTo(HaveOccurred())
	// JEQ with imm=1 (1 byte), target is immediately after -> offset 0, but
	// the offset shares the imm's 1-byte width: 1 + 1 + 1 bytes.
	Expect(bytecode).To(HaveLen(3))
}

func TestDuplicateLabelFails(t *testing.T) {
	RegisterTestingT(t)
	b, _ := New(MinAPFVersion)
	Expect(b.DefineLabel("x")).NotTo(HaveOccurred())
	err := b.DefineLabel("x")
	Expect(err).To(HaveOccurred())
}

func TestUnresolvedLabelFailsAtGenerate(t *testing.T) {
	RegisterTestingT(t)
	b, _ := New(MinAPFVersion)
	Expect(b.AddJump("nowhere")).NotTo(HaveOccurred())
	_, err := b.Generate()
	Expect(err).To(HaveOccurred())
}

func TestGenerateOnlyOnce(t *testing.T) {
	RegisterTestingT(t)
	b, _ := New(MinAPFVersion)
	_, err := b.Generate()
	Expect(err).NotTo(HaveOccurred())
	_, err = b.Generate()
	Expect(err).To(HaveOccurred())
}

func TestAppendAfterGenerateFails(t *testing.T) {
	RegisterTestingT(t)
	b, _ := New(MinAPFVersion)
	_, err := b.Generate()
	Expect(err).NotTo(HaveOccurred())
	err = b.AddPass()
	Expect(err).To(HaveOccurred())
}

func TestDataMustBeFirst(t *testing.T) {
	RegisterTestingT(t)
	b, _ := New(MinAPFVersionInDev)
	Expect(b.AddPass()).NotTo(HaveOccurred())
	err := b.AddData([]byte{1, 2, 3})
	Expect(err).To(HaveOccurred())

	b2, _ := New(MinAPFVersionInDev)
	Expect(b2.AddData([]byte{0x11, 0x22, 0x33})).NotTo(HaveOccurred())
	bytecode, err := b2.Generate()
	Expect(err).NotTo(HaveOccurred())
	// JMP(R=1) leading byte, 1-byte length field (3), then 3 raw bytes.
	Expect(bytecode).To(Equal([]byte{0x72 | 0x01, 0x03, 0x11, 0x22, 0x33}))
}

func TestMemorySlotRangeCheck(t *testing.T) {
	RegisterTestingT(t)
	b, _ := New(MinAPFVersion)
	Expect(b.AddLoadFromMemory(R0, 0)).NotTo(HaveOccurred())
	Expect(b.AddLoadFromMemory(R0, MemorySlots-1)).NotTo(HaveOccurred())
	err := b.AddLoadFromMemory(R0, MemorySlots)
	Expect(err).To(HaveOccurred())
	err = b.AddLoadFromMemory(R0, -1)
	Expect(err).To(HaveOccurred())
}

func TestCounterRangeCheck(t *testing.T) {
	RegisterTestingT(t)
	b, _ := New(MinAPFVersionInDev)
	Expect(b.AddCountAndPass(1)).NotTo(HaveOccurred())
	Expect(b.AddCountAndPass(1000)).NotTo(HaveOccurred())
	Expect(b.AddCountAndPass(0)).To(HaveOccurred())
	Expect(b.AddCountAndPass(1001)).To(HaveOccurred())
}

func TestVersionGating(t *testing.T) {
	RegisterTestingT(t)
	b, _ := New(MinAPFVersion)
	Expect(b.AddDrop()).To(HaveOccurred())
	Expect(b.AddAllocateR0()).To(HaveOccurred())
	Expect(b.AddTransmit()).To(HaveOccurred())
	Expect(b.AddLoadData(R0, 0)).To(HaveOccurred())

	b4, _ := New(APFVersion4)
	Expect(b4.AddLoadData(R0, 0)).NotTo(HaveOccurred())
	Expect(b4.AddDrop()).To(HaveOccurred())
}

// TestBranchShrinkConvergence constructs a JEQ whose target lies more
// than 255 bytes past it. The first layout pass reserves a 4-byte offset;
// the fixed point shrinks it to the 2 bytes the distance needs. We assert
// that the final emission is no larger than the first-pass estimate and
// that the JEQ's width field ends up at 2 bytes.
func TestBranchShrinkConvergence(t *testing.T) {
	RegisterTestingT(t)
	b, _ := New(MinAPFVersion)

	// Padding of AddOrR1 instructions (1 byte each, no immediate), enough
	// for a >255 byte gap; their size is fixed, so only the branch's own
	// offset field shrinks.
	const padCount = 300
	Expect(b.AddJumpIfR0Equals(5, "far")).NotTo(HaveOccurred())
	for i := 0; i < padCount; i++ {
		Expect(b.AddOrR1()).NotTo(HaveOccurred())
	}
	Expect(b.DefineLabel("far")).NotTo(HaveOccurred())

	overestimate, err := b.ProgramLengthOverestimate()
	Expect(err).NotTo(HaveOccurred())

	bytecode, err := b.Generate()
	Expect(err).NotTo(HaveOccurred())
	Expect(len(bytecode)).To(BeNumerically("<=", overestimate))
	// The target is 300 pad bytes past the end of the JEQ, needing 2 bytes.
	Expect(bytecode[0] & 0x06 >> 1).To(Equal(byte(2)))
}

func TestMonotonicNonDecreasingOffsets(t *testing.T) {
	RegisterTestingT(t)
	b, _ := New(MinAPFVersion)
	Expect(b.AddLoadImmediate(R0, 1)).NotTo(HaveOccurred())
	Expect(b.AddLoadImmediate(R0, 2)).NotTo(HaveOccurred())
	Expect(b.AddLoadImmediate(R0, 3)).NotTo(HaveOccurred())
	_, err := b.Generate()
	Expect(err).NotTo(HaveOccurred())

	last := -1
	for _, in := range b.instructions {
		Expect(in.offset).To(BeNumerically(">=", last))
		last = in.offset
	}
}

func TestPacketAndDataCopy(t *testing.T) {
	RegisterTestingT(t)
	b, _ := New(MinAPFVersionInDev)
	Expect(b.AddPacketCopy(0, 10)).NotTo(HaveOccurred())
	Expect(b.AddDataCopy(5, 255)).NotTo(HaveOccurred())
	err := b.AddPacketCopy(0, 256)
	Expect(err).To(HaveOccurred())
	err = b.AddPacketCopy(-1, 1)
	Expect(err).To(HaveOccurred())
	_, err = b.Generate()
	Expect(err).NotTo(HaveOccurred())
}

func TestWriteSizeValidation(t *testing.T) {
	RegisterTestingT(t)
	b, _ := New(MinAPFVersionInDev)
	Expect(b.AddWrite(5, 1)).NotTo(HaveOccurred())
	Expect(b.AddWrite(300, 1)).To(HaveOccurred())
	Expect(b.AddWrite(300, 2)).NotTo(HaveOccurred())
	err := b.AddWrite(1, 3)
	Expect(err).To(HaveOccurred())
}

func TestExtendedCopyValidation(t *testing.T) {
	RegisterTestingT(t)
	b, _ := New(MinAPFVersionInDev)
	Expect(b.AddExtendedPacketCopy(R0, 0, 10)).NotTo(HaveOccurred())
	Expect(b.AddExtendedDataCopy(R1, 5, 255)).NotTo(HaveOccurred())
	err := b.AddExtendedPacketCopy(R0, 0, 256)
	Expect(err).To(HaveOccurred())
	_, err = b.Generate()
	Expect(err).NotTo(HaveOccurred())
}

func ExampleBuilder_opcodeFirstByteLayout() {
	b, _ := New(MinAPFVersion)
	_ = b.AddLoadImmediate(R0, 5)
	bytecode, _ := b.Generate()
	fmt.Printf("%02x %02x\n", bytecode[0], bytecode[1])
	// Output: 6a 05
}
