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

// Package log is a thin wrapper around logrus, in the same spirit as
// calico's lib/std/log/logrus package: a package-level logger that the
// rest of the module calls into directly, rather than plumbing a logger
// instance through every constructor.
package log

import (
	"github.com/sirupsen/logrus"
)

var base = logrus.StandardLogger()

// Entry re-exports logrus.Entry so callers can build up fields without
// importing logrus directly.
type Entry = logrus.Entry

// SetLevel adjusts the package-wide log level.
func SetLevel(level logrus.Level) {
	base.SetLevel(level)
}

// WithField returns an Entry with one field set.
func WithField(key string, value any) *Entry {
	return base.WithField(key, value)
}

// WithError returns an Entry carrying err under the standard "error" key.
func WithError(err error) *Entry {
	return base.WithError(err)
}

func Debugf(format string, args ...any) { base.Debugf(format, args...) }
func Infof(format string, args ...any)  { base.Infof(format, args...) }
func Warnf(format string, args ...any)  { base.Warnf(format, args...) }
func Errorf(format string, args ...any) { base.Errorf(format, args...) }
