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

import "fmt"

// IllegalInstruction is returned whenever an append or generate call
// would produce an illegal APF instruction: an out-of-range operand, a
// version-gated opcode on a too-old Builder, a structural error (e.g.
// duplicate label), or an unresolved label at generation time.
type IllegalInstruction struct {
	Msg string
}

func (e *IllegalInstruction) Error() string {
	return e.Msg
}

func illegalf(format string, args ...any) *IllegalInstruction {
	return &IllegalInstruction{Msg: fmt.Sprintf(format, args...)}
}

func checkRange(name string, value, lower, upper int64) error {
	if value >= lower && value <= upper {
		return nil
	}
	return illegalf("%s: %d, must be in range [%d, %d]", name, value, lower, upper)
}
