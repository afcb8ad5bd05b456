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
	"testing"

	. "github.com/onsi/gomega"
)

func TestCalculateImmSize(t *testing.T) {
	RegisterTestingT(t)

	Expect(calculateImmSize(0, true)).To(Equal(0))
	Expect(calculateImmSize(0, false)).To(Equal(0))
	Expect(calculateImmSize(-1, true)).To(Equal(1))
	Expect(calculateImmSize(127, true)).To(Equal(1))
	Expect(calculateImmSize(128, true)).To(Equal(2))
	Expect(calculateImmSize(255, false)).To(Equal(1))
	Expect(calculateImmSize(256, false)).To(Equal(2))
	Expect(calculateImmSize(65535, false)).To(Equal(2))
	Expect(calculateImmSize(65536, false)).To(Equal(4))
	Expect(calculateImmSize(-32768, true)).To(Equal(2))
	Expect(calculateImmSize(-32769, true)).To(Equal(4))
}

func TestIndeterminateRangeChecks(t *testing.T) {
	RegisterTestingT(t)

	_, err := newUnsignedIndeterminate(-1)
	Expect(err).To(HaveOccurred())

	_, err = newUnsignedIndeterminate(maxUint32)
	Expect(err).NotTo(HaveOccurred())

	_, err = newUnsignedIndeterminate(maxUint32 + 1)
	Expect(err).To(HaveOccurred())

	_, err = newSignedIndeterminate(minInt32)
	Expect(err).NotTo(HaveOccurred())

	_, err = newSignedIndeterminate(minInt32 - 1)
	Expect(err).To(HaveOccurred())
}

func TestDeterminateRangeChecks(t *testing.T) {
	RegisterTestingT(t)

	_, err := newSigned8(127)
	Expect(err).NotTo(HaveOccurred())
	_, err = newSigned8(128)
	Expect(err).To(HaveOccurred())

	_, err = newUnsigned8(255)
	Expect(err).NotTo(HaveOccurred())
	_, err = newUnsigned8(256)
	Expect(err).To(HaveOccurred())

	_, err = newUnsignedBE16(65535)
	Expect(err).NotTo(HaveOccurred())
	_, err = newUnsignedBE16(65536)
	Expect(err).To(HaveOccurred())
}

func TestEncodedWidthTooSmallFails(t *testing.T) {
	RegisterTestingT(t)

	im, err := newUnsignedIndeterminate(300)
	Expect(err).NotTo(HaveOccurred())
	_, err = im.encodedWidth(1)
	Expect(err).To(HaveOccurred())

	width, err := im.encodedWidth(2)
	Expect(err).NotTo(HaveOccurred())
	Expect(width).To(Equal(2))
}

func TestWriteValueTruncatesBigEndian(t *testing.T) {
	RegisterTestingT(t)

	im, err := newSignedIndeterminate(-1)
	Expect(err).NotTo(HaveOccurred())
	buf, err := im.writeValue(nil, 1)
	Expect(err).NotTo(HaveOccurred())
	Expect(buf).To(Equal([]byte{0xff}))

	im2, err := newUnsignedBE32(0x1eadbeef)
	Expect(err).NotTo(HaveOccurred())
	buf2, err := im2.writeValue(nil, 0)
	Expect(err).NotTo(HaveOccurred())
	Expect(buf2).To(Equal([]byte{0x1e, 0xad, 0xbe, 0xef}))
}
