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

// Package metrics registers the Prometheus collectors exposed by the
// apfgen CLI when assembling programs in batch.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ProgramsAssembled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "apfgen",
			Name:      "programs_assembled_total",
			Help:      "Number of APF program assembly attempts by the CLI, by result (ok or error).",
		},
		[]string{"result"},
	)

	ProgramBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "apfgen",
			Name:      "program_bytes",
			Help:      "Size in bytes of successfully assembled APF programs.",
			Buckets:   prometheus.ExponentialBuckets(8, 2, 12),
		},
	)

	FixedPointIterations = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "apfgen",
			Name:      "fixed_point_iterations",
			Help:      "Number of layout shrink passes the builder ran before Generate converged or gave up.",
			Buckets:   prometheus.LinearBuckets(0, 1, 11), // 0..10, matching the fixed point's iteration cap
		},
	)
)

// Register adds the apfgen collectors to reg.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{ProgramsAssembled, ProgramBytes, FixedPointIterations} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// RecordAssembly updates the collectors for one CLI assembly attempt.
func RecordAssembly(bytecodeLen int, err error) {
	if err != nil {
		ProgramsAssembled.WithLabelValues("error").Inc()
		return
	}
	ProgramsAssembled.WithLabelValues("ok").Inc()
	ProgramBytes.Observe(float64(bytecodeLen))
}

// RecordFixedPointIterations records how many shrink passes one
// Generate call needed before its layout converged.
func RecordFixedPointIterations(iterations int) {
	FixedPointIterations.Observe(float64(iterations))
}
