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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/fxamacker/cbor/v2"
)

// decodeProgramSpec reads a ProgramSpec from path. format overrides the
// extension-based guess; pass "" to guess from the file extension.
func decodeProgramSpec(path, format string) (ProgramSpec, error) {
	var spec ProgramSpec

	raw, err := os.ReadFile(path)
	if err != nil {
		return spec, err
	}

	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(path), ".")
	}

	switch strings.ToLower(format) {
	case "toml", "":
		_, err = toml.Decode(string(raw), &spec)
	case "json":
		err = json.Unmarshal(raw, &spec)
	case "cbor":
		err = cbor.Unmarshal(raw, &spec)
	default:
		return spec, fmt.Errorf("unsupported program format %q", format)
	}
	return spec, err
}
