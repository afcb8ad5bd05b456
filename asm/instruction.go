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

// instruction is one emitted instruction, or a zero-size LABEL
// pseudo-instruction anchoring a name.
type instruction struct {
	opcode   Opcode
	register Register
	imms     []immediate

	isLabel bool
	label   string // set when isLabel

	targetLabel     string // "" when this instruction is not a branch
	targetLabelSize int    // tentative/reserved width, starts at 4, only shrinks

	bytesImm []byte // raw payload: byte-sequence compare, data region, ...

	offset int // byte offset from program start, filled by the layout pass
}

func newLabelInstruction() *instruction {
	return &instruction{isLabel: true}
}

func (in *instruction) setLabel(name string) {
	in.isLabel = true
	in.label = name
}

func (in *instruction) setTargetLabel(name string) {
	in.targetLabel = name
	in.targetLabelSize = 4 // may shrink later in the fixed point
}

func (in *instruction) setBytesImm(b []byte) {
	in.bytesImm = b
}

func (in *instruction) addImm(im immediate) {
	in.imms = append(in.imms, im)
}

// requiredIndeterminateSize is the maximum of the branch-width and the
// minimum widths of this instruction's indeterminate immediates. All
// indeterminate immediates of one instruction share this single width.
func (in *instruction) requiredIndeterminateSize() int {
	maxSize := in.targetLabelSize
	for _, im := range in.imms {
		if w := im.minWidth(); w > maxSize {
			maxSize = w
		}
	}
	return maxSize
}

// size reports the total encoded length, including the leading byte. A
// LABEL pseudo-instruction has size 0.
func (in *instruction) size() (int, error) {
	if in.isLabel {
		return 0, nil
	}
	size := 1
	indetSize := in.requiredIndeterminateSize()
	for _, im := range in.imms {
		w, err := im.encodedWidth(indetSize)
		if err != nil {
			return 0, err
		}
		size += w
	}
	if in.targetLabel != "" {
		size += indetSize
	}
	size += len(in.bytesImm)
	return size, nil
}

// shrink recomputes the reserved width for the target-label offset field
// against the current distance to the target. It may only decrease the
// reserved width: growing it would be a fixed-point monotonicity bug.
func (in *instruction) shrink(targetOffset func(name string) (int, bool)) (bool, error) {
	if in.targetLabel == "" {
		return false, nil
	}
	dist, err := in.targetDistance(targetOffset)
	if err != nil {
		return false, err
	}
	newSize := calculateImmSize(int32(dist), false)
	old := in.targetLabelSize
	if newSize > old {
		return false, illegalf("instruction grew: target label width went from %d to %d", old, newSize)
	}
	in.targetLabelSize = newSize
	return newSize < old, nil
}

// targetDistance computes the signed distance from the byte immediately
// following this instruction to the first byte of its target label.
func (in *instruction) targetDistance(targetOffset func(name string) (int, bool)) (int, error) {
	offset, ok := targetOffset(in.targetLabel)
	if !ok {
		return 0, illegalf("label not found: %s", in.targetLabel)
	}
	size, err := in.size()
	if err != nil {
		return 0, err
	}
	return offset - (in.offset + size), nil
}

// immSizeField packs the chosen indeterminate width into the 2-bit field
// of the leading byte: 0->0, 1->1, 2->2, 4->3.
func immSizeField(width int) byte {
	if width == 4 {
		return 3
	}
	return byte(width)
}

func (in *instruction) leadingByte() byte {
	sizeField := immSizeField(in.requiredIndeterminateSize())
	return byte(in.opcode)<<3 | sizeField<<1 | byte(in.register)
}

// generate appends this instruction's bytes to buf.
func (in *instruction) generate(buf []byte, targetOffset func(name string) (int, bool)) ([]byte, error) {
	if in.isLabel {
		return buf, nil
	}
	start := len(buf)
	buf = append(buf, in.leadingByte())
	indetSize := in.requiredIndeterminateSize()
	if in.targetLabel != "" {
		dist, err := in.targetDistance(targetOffset)
		if err != nil {
			return nil, err
		}
		buf = appendBigEndian(buf, int32(dist), indetSize)
	}
	for _, im := range in.imms {
		var err error
		buf, err = im.writeValue(buf, indetSize)
		if err != nil {
			return nil, err
		}
	}
	buf = append(buf, in.bytesImm...)
	wantSize, err := in.size()
	if err != nil {
		return nil, err
	}
	if len(buf)-start != wantSize {
		return nil, illegalf("wrote %d bytes but should have written %d", len(buf)-start, wantSize)
	}
	return buf, nil
}
