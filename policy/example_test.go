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

package policy_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/muhomorr/platform-packages-modules-NetworkStack/asm"
	"github.com/muhomorr/platform-packages-modules-NetworkStack/policy"
)

var _ = Describe("KitchenSinkProgram", func() {
	It("assembles cleanly at the in-dev version floor", func() {
		bytecode, err := policy.KitchenSinkProgram(asm.MinAPFVersionInDev)
		Expect(err).NotTo(HaveOccurred())
		Expect(bytecode).NotTo(BeEmpty())
	})

	It("rejects a version too old for the data region and counters", func() {
		_, err := policy.KitchenSinkProgram(asm.MinAPFVersion)
		Expect(err).To(HaveOccurred())
	})

	It("starts with the JMP(R=1) data-region header", func() {
		bytecode, err := policy.KitchenSinkProgram(asm.MinAPFVersionInDev)
		Expect(err).NotTo(HaveOccurred())
		Expect(bytecode[0] & 0x01).To(Equal(byte(1)), "register bit of the leading instruction must be 1 for a data declaration")
	})
})

var _ = Describe("AllocateAndTransmitEchoProgram", func() {
	It("assembles cleanly at the in-dev version floor", func() {
		bytecode, err := policy.AllocateAndTransmitEchoProgram(asm.MinAPFVersionInDev)
		Expect(err).NotTo(HaveOccurred())
		Expect(bytecode).NotTo(BeEmpty())
	})
})
