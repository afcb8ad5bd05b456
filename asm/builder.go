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
	"github.com/muhomorr/platform-packages-modules-NetworkStack/internal/log"
	"github.com/muhomorr/platform-packages-modules-NetworkStack/internal/metrics"
)

// maxFixedPointIterations bounds the layout fixed point. Convergence in
// practice takes two or three passes; an unresolved 11th iteration is
// treated as "done" rather than looped forever.
const maxFixedPointIterations = 10

// Builder accumulates APF instructions in append order and, once, emits
// their bytecode. It is not safe for concurrent use; build one Builder
// per program.
type Builder struct {
	version      int
	instructions []*instruction
	labels       map[string]*instruction
	dropAnchor   *instruction
	passAnchor   *instruction
	generated    bool
}

// New creates a Builder targeting the given APF interpreter version. It
// fails if version is below MinAPFVersion.
func New(version int) (*Builder, error) {
	b := &Builder{
		version:    version,
		labels:     make(map[string]*instruction),
		dropAnchor: newLabelInstruction(),
		passAnchor: newLabelInstruction(),
	}
	if err := b.requireVersion(MinAPFVersion); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Builder) requireVersion(minimum int) error {
	if b.version < minimum {
		return illegalf("requires APF >= %d", minimum)
	}
	return nil
}

func (b *Builder) append(in *instruction) error {
	if b.generated {
		return illegalf("program already generated")
	}
	b.instructions = append(b.instructions, in)
	return nil
}

func (b *Builder) resolve(name string) (int, bool) {
	switch name {
	case PassLabel:
		return b.passAnchor.offset, true
	case DropLabel:
		return b.dropAnchor.offset, true
	default:
		in, ok := b.labels[name]
		if !ok {
			return 0, false
		}
		return in.offset, true
	}
}

// DefineLabel appends a zero-size anchor at the current end of the
// program. Branches may target it before or after it is defined.
func (b *Builder) DefineLabel(name string) error {
	if _, exists := b.labels[name]; exists {
		return illegalf("duplicate label %s", name)
	}
	in := newLabelInstruction()
	in.setLabel(name)
	if err := b.append(in); err != nil {
		return err
	}
	b.labels[name] = in
	return nil
}

func newExt(selector ExtendedOpcode, r Register) *instruction {
	in := &instruction{opcode: EXT, register: r}
	im, _ := newUnsignedIndeterminate(int64(selector))
	in.addImm(im)
	return in
}

func newExtSlot(selector ExtendedOpcode, slot int, r Register) (*instruction, error) {
	if slot < 0 || slot >= MemorySlots {
		return nil, illegalf("illegal memory slot number: %d", slot)
	}
	in := &instruction{opcode: EXT, register: r}
	im, err := newUnsignedIndeterminate(int64(selector) + int64(slot))
	if err != nil {
		return nil, err
	}
	in.addImm(im)
	return in, nil
}

// --- packet loads ---

func (b *Builder) addLoad(op Opcode, r Register, ofs int) error {
	in := &instruction{opcode: op, register: r}
	im, err := newUnsignedIndeterminate(int64(ofs))
	if err != nil {
		return err
	}
	in.addImm(im)
	return b.append(in)
}

func (b *Builder) AddLoad8(r Register, ofs int) error         { return b.addLoad(LDB, r, ofs) }
func (b *Builder) AddLoad16(r Register, ofs int) error        { return b.addLoad(LDH, r, ofs) }
func (b *Builder) AddLoad32(r Register, ofs int) error        { return b.addLoad(LDW, r, ofs) }
func (b *Builder) AddLoad8Indexed(r Register, ofs int) error  { return b.addLoad(LDBX, r, ofs) }
func (b *Builder) AddLoad16Indexed(r Register, ofs int) error { return b.addLoad(LDHX, r, ofs) }
func (b *Builder) AddLoad32Indexed(r Register, ofs int) error { return b.addLoad(LDWX, r, ofs) }

// --- arithmetic/bitwise with R0 and immediate ---

func (b *Builder) AddAdd(val int) error {
	im, err := newTwosComplementUnsignedIndeterminate(int64(val))
	if err != nil {
		return err
	}
	return b.append(&instruction{opcode: ADD, imms: []immediate{im}})
}

func (b *Builder) AddMul(val int) error {
	im, err := newUnsignedIndeterminate(int64(val))
	if err != nil {
		return err
	}
	return b.append(&instruction{opcode: MUL, imms: []immediate{im}})
}

func (b *Builder) AddDiv(val int) error {
	im, err := newUnsignedIndeterminate(int64(val))
	if err != nil {
		return err
	}
	return b.append(&instruction{opcode: DIV, imms: []immediate{im}})
}

func (b *Builder) AddAnd(val int) error {
	im, err := newTwosComplementUnsignedIndeterminate(int64(val))
	if err != nil {
		return err
	}
	return b.append(&instruction{opcode: AND, imms: []immediate{im}})
}

func (b *Builder) AddOr(val int) error {
	im, err := newTwosComplementUnsignedIndeterminate(int64(val))
	if err != nil {
		return err
	}
	return b.append(&instruction{opcode: OR, imms: []immediate{im}})
}

func (b *Builder) AddLeftShift(val int) error {
	im, err := newSignedIndeterminate(int64(val))
	if err != nil {
		return err
	}
	return b.append(&instruction{opcode: SH, imms: []immediate{im}})
}

func (b *Builder) AddRightShift(val int) error {
	im, err := newSignedIndeterminate(int64(-val))
	if err != nil {
		return err
	}
	return b.append(&instruction{opcode: SH, imms: []immediate{im}})
}

// --- arithmetic/bitwise between R0 and R1 ---

func (b *Builder) AddAddR1() error       { return b.append(&instruction{opcode: ADD, register: R1}) }
func (b *Builder) AddMulR1() error       { return b.append(&instruction{opcode: MUL, register: R1}) }
func (b *Builder) AddDivR1() error       { return b.append(&instruction{opcode: DIV, register: R1}) }
func (b *Builder) AddAndR1() error       { return b.append(&instruction{opcode: AND, register: R1}) }
func (b *Builder) AddOrR1() error        { return b.append(&instruction{opcode: OR, register: R1}) }
func (b *Builder) AddLeftShiftR1() error { return b.append(&instruction{opcode: SH, register: R1}) }

// AddLoadImmediate moves value into register.
func (b *Builder) AddLoadImmediate(register Register, value int) error {
	im, err := newSignedIndeterminate(int64(value))
	if err != nil {
		return err
	}
	return b.append(&instruction{opcode: LI, register: register, imms: []immediate{im}})
}

// --- branches ---

func (b *Builder) AddJump(target string) error {
	in := &instruction{opcode: JMP}
	in.setTargetLabel(target)
	return b.append(in)
}

func (b *Builder) addCondImm(op Opcode, val int, target string, twosComp bool) error {
	var im immediate
	var err error
	if twosComp {
		im, err = newTwosComplementUnsignedIndeterminate(int64(val))
	} else {
		im, err = newUnsignedIndeterminate(int64(val))
	}
	if err != nil {
		return err
	}
	in := &instruction{opcode: op, imms: []immediate{im}}
	in.setTargetLabel(target)
	return b.append(in)
}

func (b *Builder) AddJumpIfR0Equals(val int, target string) error {
	return b.addCondImm(JEQ, val, target, true)
}

func (b *Builder) AddJumpIfR0NotEquals(val int, target string) error {
	return b.addCondImm(JNE, val, target, true)
}

func (b *Builder) AddJumpIfR0GreaterThan(val int, target string) error {
	return b.addCondImm(JGT, val, target, false)
}

func (b *Builder) AddJumpIfR0LessThan(val int, target string) error {
	return b.addCondImm(JLT, val, target, false)
}

func (b *Builder) AddJumpIfR0AnyBitsSet(val int, target string) error {
	return b.addCondImm(JSET, val, target, true)
}

func (b *Builder) addCondR1(op Opcode, target string) error {
	in := &instruction{opcode: op, register: R1}
	in.setTargetLabel(target)
	return b.append(in)
}

func (b *Builder) AddJumpIfR0EqualsR1(target string) error      { return b.addCondR1(JEQ, target) }
func (b *Builder) AddJumpIfR0NotEqualsR1(target string) error   { return b.addCondR1(JNE, target) }
func (b *Builder) AddJumpIfR0GreaterThanR1(target string) error { return b.addCondR1(JGT, target) }
func (b *Builder) AddJumpIfR0LessThanR1(target string) error    { return b.addCondR1(JLT, target) }
func (b *Builder) AddJumpIfR0AnyBitsSetR1(target string) error  { return b.addCondR1(JSET, target) }

// AddJumpIfBytesAtR0NotEqual jumps to target if the bytes of the packet
// at the offset in R0 don't match data.
func (b *Builder) AddJumpIfBytesAtR0NotEqual(data []byte, target string) error {
	im, err := newUnsignedIndeterminate(int64(len(data)))
	if err != nil {
		return err
	}
	in := &instruction{opcode: JNEBS, imms: []immediate{im}}
	in.setTargetLabel(target)
	in.setBytesImm(data)
	return b.append(in)
}

// --- memory-slot load/store ---

func (b *Builder) AddLoadFromMemory(r Register, slot int) error {
	in, err := newExtSlot(LDM, slot, r)
	if err != nil {
		return err
	}
	return b.append(in)
}

func (b *Builder) AddStoreToMemory(r Register, slot int) error {
	in, err := newExtSlot(STM, slot, r)
	if err != nil {
		return err
	}
	return b.append(in)
}

// --- register-only ops ---

func (b *Builder) AddNot(r Register) error  { return b.append(newExt(NOT, r)) }
func (b *Builder) AddNeg(r Register) error  { return b.append(newExt(NEG, r)) }
func (b *Builder) AddSwap() error           { return b.append(newExt(SWAP, R0)) }
func (b *Builder) AddMove(r Register) error { return b.append(newExt(MOVE, r)) }

// --- termination ---

func (b *Builder) AddPass() error {
	// PASS requires R0 because it shares its opcode with DROP.
	return b.append(&instruction{opcode: PASS, register: R0})
}

func (b *Builder) AddDrop() error {
	if err := b.requireVersion(MinAPFVersionInDev); err != nil {
		return err
	}
	// DROP requires R1 because it shares its opcode with PASS.
	return b.append(&instruction{opcode: DROP, register: R1})
}

func (b *Builder) AddCountAndPass(counter int) error {
	if err := b.requireVersion(MinAPFVersionInDev); err != nil {
		return err
	}
	if err := checkRange("counter number", int64(counter), 1, 1000); err != nil {
		return err
	}
	im, err := newUnsignedIndeterminate(int64(counter))
	if err != nil {
		return err
	}
	return b.append(&instruction{opcode: PASS, register: R0, imms: []immediate{im}})
}

func (b *Builder) AddCountAndDrop(counter int) error {
	if err := b.requireVersion(MinAPFVersionInDev); err != nil {
		return err
	}
	if err := checkRange("counter number", int64(counter), 1, 1000); err != nil {
		return err
	}
	im, err := newUnsignedIndeterminate(int64(counter))
	if err != nil {
		return err
	}
	return b.append(&instruction{opcode: DROP, register: R1, imms: []immediate{im}})
}

// --- output-buffer lifecycle ---

func (b *Builder) AddAllocateR0() error {
	if err := b.requireVersion(MinAPFVersionInDev); err != nil {
		return err
	}
	return b.append(newExt(ALLOCATE, R0))
}

func (b *Builder) AddAllocate(size int) error {
	if err := b.requireVersion(MinAPFVersionInDev); err != nil {
		return err
	}
	in := &instruction{opcode: EXT, register: R1}
	sel, err := newUnsignedIndeterminate(int64(ALLOCATE))
	if err != nil {
		return err
	}
	in.addImm(sel)
	szImm, err := newUnsignedBE16(int64(size))
	if err != nil {
		return err
	}
	in.addImm(szImm)
	return b.append(in)
}

func (b *Builder) AddTransmit() error {
	if err := b.requireVersion(MinAPFVersionInDev); err != nil {
		return err
	}
	// TRANSMIT requires R0 because it shares its opcode with DISCARD.
	return b.append(newExt(TRANSMIT, R0))
}

func (b *Builder) AddDiscard() error {
	if err := b.requireVersion(MinAPFVersionInDev); err != nil {
		return err
	}
	// DISCARD requires R1 because it shares its opcode with TRANSMIT.
	return b.append(newExt(DISCARD, R1))
}

// --- data region ---

// AddData declares the leading data region. It must be the first
// instruction appended to the Builder.
func (b *Builder) AddData(data []byte) error {
	if err := b.requireVersion(MinAPFVersionInDev); err != nil {
		return err
	}
	if len(b.instructions) != 0 {
		return illegalf("data instruction has to come first")
	}
	im, err := newUnsignedIndeterminate(int64(len(data)))
	if err != nil {
		return err
	}
	in := &instruction{opcode: JMP, register: R1, imms: []immediate{im}}
	in.setBytesImm(data)
	return b.append(in)
}

// --- data-memory load/store ---

func (b *Builder) AddLoadData(dst Register, ofs int) error {
	if err := b.requireVersion(APFVersion4); err != nil {
		return err
	}
	im, err := newSignedIndeterminate(int64(ofs))
	if err != nil {
		return err
	}
	return b.append(&instruction{opcode: LDDW, register: dst, imms: []immediate{im}})
}

func (b *Builder) AddStoreData(src Register, ofs int) error {
	if err := b.requireVersion(APFVersion4); err != nil {
		return err
	}
	im, err := newSignedIndeterminate(int64(ofs))
	if err != nil {
		return err
	}
	return b.append(&instruction{opcode: STDW, register: src, imms: []immediate{im}})
}

// --- WRITE / MEMCOPY family (supplements the reference source's
// commented-out appenders; the opcodes themselves are part of the
// documented instruction set) ---

func checkWriteSize(size int) error {
	if size != 1 && size != 2 && size != 4 {
		return illegalf("length field must be 1, 2 or 4, got %d", size)
	}
	return nil
}

// AddWrite writes a 1, 2, or 4 byte immediate value to the output
// buffer. size must be large enough to losslessly hold value.
func (b *Builder) AddWrite(value uint32, size int) error {
	if err := b.requireVersion(MinAPFVersionInDev); err != nil {
		return err
	}
	if err := checkWriteSize(size); err != nil {
		return err
	}
	if got := calculateImmSize(int32(value), false); got > size {
		return illegalf("value %d does not fit into size %d", value, size)
	}
	var im immediate
	var err error
	switch size {
	case 1:
		im, err = newUnsigned8(int64(value))
	case 2:
		im, err = newUnsignedBE16(int64(value))
	default:
		im, err = newUnsignedBE32(int64(value))
	}
	if err != nil {
		return err
	}
	return b.append(&instruction{opcode: WRITE, imms: []immediate{im}})
}

// AddExtendedWrite writes 1, 2, or 4 bytes from register to the output
// buffer, selected by size.
func (b *Builder) AddExtendedWrite(r Register, size int) error {
	if err := b.requireVersion(MinAPFVersionInDev); err != nil {
		return err
	}
	if err := checkWriteSize(size); err != nil {
		return err
	}
	sel := EWRITE1
	switch size {
	case 2:
		sel = EWRITE2
	case 4:
		sel = EWRITE4
	}
	return b.append(newExt(sel, r))
}

func checkCopyLength(length int) error {
	return checkRange("copy length", int64(length), 0, 255)
}

func checkCopyOffset(offset int) error {
	if offset < 0 {
		return illegalf("offset must be non negative, offset: %d", offset)
	}
	return nil
}

// offsetImm encodes a copy offset: if it is exactly 0 it is still
// encoded at a fixed 1-byte width, since it is an always-present
// positional field rather than a true variable-size operand.
func offsetImm(offset int) (immediate, error) {
	if offset == 0 {
		return newUnsigned8(0)
	}
	return newUnsignedIndeterminate(int64(offset))
}

func (b *Builder) addMemCopy(srcOffset, length int, register Register) error {
	if err := b.requireVersion(MinAPFVersionInDev); err != nil {
		return err
	}
	if err := checkCopyLength(length); err != nil {
		return err
	}
	if err := checkCopyOffset(srcOffset); err != nil {
		return err
	}
	ofsImm, err := offsetImm(srcOffset)
	if err != nil {
		return err
	}
	lenImm, err := newUnsigned8(int64(length))
	if err != nil {
		return err
	}
	return b.append(&instruction{opcode: MEMCOPY, register: register, imms: []immediate{ofsImm, lenImm}})
}

// AddPacketCopy copies length bytes from the packet at srcOffset into
// the output buffer.
func (b *Builder) AddPacketCopy(srcOffset, length int) error {
	return b.addMemCopy(srcOffset, length, R0)
}

// AddDataCopy copies length bytes from the APF data region at
// srcOffset into the output buffer.
func (b *Builder) AddDataCopy(srcOffset, length int) error {
	return b.addMemCopy(srcOffset, length, R1)
}

func (b *Builder) addExtMemCopy(sel ExtendedOpcode, r Register, relOffset, length int) error {
	if err := b.requireVersion(MinAPFVersionInDev); err != nil {
		return err
	}
	if err := checkCopyLength(length); err != nil {
		return err
	}
	if err := checkCopyOffset(relOffset); err != nil {
		return err
	}
	in := &instruction{opcode: EXT, register: r}
	selImm, err := newUnsignedIndeterminate(int64(sel))
	if err != nil {
		return err
	}
	in.addImm(selImm)
	ofsImm, err := offsetImm(relOffset)
	if err != nil {
		return err
	}
	in.addImm(ofsImm)
	lenImm, err := newUnsigned8(int64(length))
	if err != nil {
		return err
	}
	in.addImm(lenImm)
	return b.append(in)
}

// AddExtendedPacketCopy copies length bytes from the packet at
// [r + relOffset] into the output buffer.
func (b *Builder) AddExtendedPacketCopy(r Register, relOffset, length int) error {
	return b.addExtMemCopy(EPKTCOPY, r, relOffset, length)
}

// AddExtendedDataCopy copies length bytes from the APF data region at
// [r + relOffset] into the output buffer.
func (b *Builder) AddExtendedDataCopy(r Register, relOffset, length int) error {
	return b.addExtMemCopy(EDATACOPY, r, relOffset, length)
}

// --- layout, length estimate, generation ---

// updateOffsets assigns every instruction's offset as the running sum of
// preceding sizes, and returns the total program length.
func (b *Builder) updateOffsets() (int, error) {
	offset := 0
	for _, in := range b.instructions {
		in.offset = offset
		size, err := in.size()
		if err != nil {
			return 0, err
		}
		offset += size
	}
	return offset, nil
}

// ProgramLengthOverestimate runs one layout pass and returns the total
// size without finalizing the Builder. The real Generate call may
// return a smaller program once the fixed point has had a chance to run.
func (b *Builder) ProgramLengthOverestimate() (int, error) {
	return b.updateOffsets()
}

// Generate runs the layout fixed point and writes the final bytecode.
// It is the terminal operation: a Builder can only be generated once.
func (b *Builder) Generate() ([]byte, error) {
	if b.generated {
		return nil, illegalf("can only generate() once")
	}
	b.generated = true

	var totalSize int
	iterations := maxFixedPointIterations
	iterationsUsed := 0
	converged := false
	for {
		var err error
		totalSize, err = b.updateOffsets()
		if err != nil {
			return nil, err
		}
		b.passAnchor.offset = totalSize
		b.dropAnchor.offset = totalSize + 1

		if iterations == 0 {
			break
		}
		iterations--
		iterationsUsed++

		shrunkAny := false
		for _, in := range b.instructions {
			shrunk, err := in.shrink(b.resolve)
			if err != nil {
				return nil, err
			}
			if shrunk {
				shrunkAny = true
			}
		}
		log.Debugf("apf layout pass: size=%d shrunk=%v iterations_left=%d", totalSize, shrunkAny, iterations)
		if !shrunkAny {
			converged = true
			break
		}
	}
	metrics.RecordFixedPointIterations(iterationsUsed)
	if !converged {
		log.Warnf("apf layout fixed point did not converge within %d iterations", maxFixedPointIterations)
	}

	bytecode := make([]byte, 0, totalSize)
	for _, in := range b.instructions {
		var err error
		bytecode, err = in.generate(bytecode, b.resolve)
		if err != nil {
			return nil, err
		}
	}
	if len(bytecode) != totalSize {
		return nil, illegalf("generated %d bytes but expected %d", len(bytecode), totalSize)
	}
	return bytecode, nil
}
