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

// immediateKind tags the size/signedness discipline of an immediate.
type immediateKind int

const (
	indeterminateSigned immediateKind = iota
	indeterminateUnsigned
	signed8
	unsigned8
	signedBE16
	unsignedBE16
	signedBE32
	unsignedBE32
)

// immediate is a tagged 32-bit value with a size discipline. Indeterminate
// kinds have their encoded width picked by the layout pass; determinate
// kinds always encode at a fixed width.
type immediate struct {
	kind  immediateKind
	value int32
}

func newSignedIndeterminate(v int64) (immediate, error) {
	if err := checkRange("signed indeterminate immediate", v, minInt32, maxUint32); err != nil {
		return immediate{}, err
	}
	return immediate{kind: indeterminateSigned, value: int32(v)}, nil
}

func newUnsignedIndeterminate(v int64) (immediate, error) {
	if err := checkRange("unsigned indeterminate immediate", v, 0, maxUint32); err != nil {
		return immediate{}, err
	}
	return immediate{kind: indeterminateUnsigned, value: int32(uint32(v))}, nil
}

// newTwosComplementUnsignedIndeterminate accepts either a negative signed
// 32-bit value or its unsigned bit-pattern reinterpretation, storing the
// bits as an unsigned-kind immediate.
func newTwosComplementUnsignedIndeterminate(v int64) (immediate, error) {
	if err := checkRange("unsigned indeterminate immediate", v, minInt32, maxUint32); err != nil {
		return immediate{}, err
	}
	return immediate{kind: indeterminateUnsigned, value: int32(uint32(v))}, nil
}

func newTwosComplementSignedIndeterminate(v int64) (immediate, error) {
	if err := checkRange("signed indeterminate immediate", v, minInt32, maxUint32); err != nil {
		return immediate{}, err
	}
	return immediate{kind: indeterminateSigned, value: int32(uint32(v))}, nil
}

func newSigned8(v int64) (immediate, error) {
	if err := checkRange("signed8 immediate", v, -128, 127); err != nil {
		return immediate{}, err
	}
	return immediate{kind: signed8, value: int32(v)}, nil
}

func newUnsigned8(v int64) (immediate, error) {
	if err := checkRange("unsigned8 immediate", v, 0, 255); err != nil {
		return immediate{}, err
	}
	return immediate{kind: unsigned8, value: int32(v)}, nil
}

func newSignedBE16(v int64) (immediate, error) {
	if err := checkRange("signedBE16 immediate", v, -32768, 32767); err != nil {
		return immediate{}, err
	}
	return immediate{kind: signedBE16, value: int32(v)}, nil
}

func newUnsignedBE16(v int64) (immediate, error) {
	if err := checkRange("unsignedBE16 immediate", v, 0, 65535); err != nil {
		return immediate{}, err
	}
	return immediate{kind: unsignedBE16, value: int32(v)}, nil
}

func newSignedBE32(v int64) (immediate, error) {
	if err := checkRange("signedBE32 immediate", v, minInt32, maxInt32); err != nil {
		return immediate{}, err
	}
	return immediate{kind: signedBE32, value: int32(v)}, nil
}

func newUnsignedBE32(v int64) (immediate, error) {
	if err := checkRange("unsignedBE32 immediate", v, 0, maxUint32); err != nil {
		return immediate{}, err
	}
	return immediate{kind: unsignedBE32, value: int32(uint32(v))}, nil
}

const (
	minInt32  = -2147483648
	maxInt32  = 2147483647
	maxUint32 = 4294967295
)

// calculateImmSize computes the minimum width needed to losslessly
// represent imm: 0 bytes for zero, else the smallest of {1,2,4} bytes
// that fits, signed or unsigned per the signed flag.
func calculateImmSize(imm int32, signed bool) int {
	if imm == 0 {
		return 0
	}
	if signed {
		if imm >= -128 && imm <= 127 {
			return 1
		}
		if imm >= -32768 && imm <= 32767 {
			return 2
		}
		return 4
	}
	u := uint32(imm)
	if u <= 255 {
		return 1
	}
	if u <= 65535 {
		return 2
	}
	return 4
}

// minWidth returns the minimum encodable width for indeterminate kinds,
// and 0 for determinate kinds so callers can combine widths with max().
func (im immediate) minWidth() int {
	switch im.kind {
	case indeterminateSigned:
		return calculateImmSize(im.value, true)
	case indeterminateUnsigned:
		return calculateImmSize(im.value, false)
	default:
		return 0
	}
}

// encodedWidth returns the number of bytes this immediate occupies once
// the instruction's shared indeterminate width (immFieldSize) is chosen.
// For determinate kinds, immFieldSize is ignored.
func (im immediate) encodedWidth(immFieldSize int) (int, error) {
	switch im.kind {
	case signed8, unsigned8:
		return 1, nil
	case signedBE16, unsignedBE16:
		return 2, nil
	case signedBE32, unsignedBE32:
		return 4, nil
	case indeterminateSigned, indeterminateUnsigned:
		minRequired := im.minWidth()
		if minRequired > immFieldSize {
			return 0, illegalf("immFieldSize %d is too small to encode value %d", immFieldSize, im.value)
		}
		return immFieldSize, nil
	default:
		return 0, illegalf("unhandled immediate kind %d", im.kind)
	}
}

// writeValue appends the big-endian, truncated-to-width encoding of the
// immediate's payload to buf and returns the new slice.
func (im immediate) writeValue(buf []byte, immFieldSize int) ([]byte, error) {
	width, err := im.encodedWidth(immFieldSize)
	if err != nil {
		return nil, err
	}
	return appendBigEndian(buf, im.value, width), nil
}

// appendBigEndian appends the low-order width bytes of value's two's
// complement representation, most-significant byte first.
func appendBigEndian(buf []byte, value int32, width int) []byte {
	for i := width - 1; i >= 0; i-- {
		buf = append(buf, byte((value>>(8*i))&0xff))
	}
	return buf
}
