// Copyright 2023 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package v2

import "github.com/prometheus/client_golang/prometheus"

var (
	mmcjTaskCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mo",
			Subsystem: "mmcj",
			Name:      "task_total",
			Help:      "Total number of finished mmcj tasks.",
		}, []string{"type"})
	MMCJTaskSucceedCounter = mmcjTaskCounter.WithLabelValues("succeed")
	MMCJTaskFailedCounter  = mmcjTaskCounter.WithLabelValues("failed")

	MMCJInputRecordCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mo",
			Subsystem: "mmcj",
			Name:      "input_record_total",
			Help:      "Total number of tagged records delivered to mmcj tasks.",
		})

	MMCJSkippedRecordCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mo",
			Subsystem: "mmcj",
			Name:      "skipped_record_total",
			Help:      "Total number of keys whose pre-aggregation was empty.",
		})

	MMCJGroupCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mo",
			Subsystem: "mmcj",
			Name:      "group_total",
			Help:      "Total number of join key groups processed.",
		})

	MMCJCachedBlockCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mo",
			Subsystem: "mmcj",
			Name:      "cached_block_total",
			Help:      "Total number of blocks put into the left operand cache.",
		})

	MMCJMultiplyCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mo",
			Subsystem: "mmcj",
			Name:      "multiply_total",
			Help:      "Total number of block multiplications.",
		})

	mmcjOutputBlockCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mo",
			Subsystem: "mmcj",
			Name:      "output_block_total",
			Help:      "Total number of blocks emitted to the sink.",
		}, []string{"type"})
	MMCJEvictedBlockCounter = mmcjOutputBlockCounter.WithLabelValues("evict")
	MMCJDrainedBlockCounter = mmcjOutputBlockCounter.WithLabelValues("drain")
	MMCJDummyBlockCounter   = mmcjOutputBlockCounter.WithLabelValues("dummy")

	MMCJDistinctEvictedGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "mo",
			Subsystem: "mmcj",
			Name:      "distinct_evicted_coordinates",
			Help:      "Estimated distinct coordinates forwarded past the output caches by the last job.",
		})

	MMCJOutCacheBytesGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "mo",
			Subsystem: "mmcj",
			Name:      "out_cache_bytes",
			Help:      "Bytes allocated by the output caches of the last job.",
		})

	MMCJTaskDurationHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "mo",
			Subsystem: "mmcj",
			Name:      "task_duration_seconds",
			Help:      "Bucketed histogram of time spent inside the mmcj operator per task.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 20),
		})
)
