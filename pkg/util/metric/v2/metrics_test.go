// Copyright 2021 Matrix Origin
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

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMMCJMetricsRegistered(t *testing.T) {
	MMCJTaskSucceedCounter.Inc()
	MMCJDummyBlockCounter.Add(3)
	MMCJTaskDurationHistogram.Observe(0.5)

	families, err := GetPrometheusGatherer().Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, name := range []string{
		"mo_mmcj_task_total",
		"mo_mmcj_output_block_total",
		"mo_mmcj_task_duration_seconds",
		"mo_mmcj_input_record_total",
	} {
		require.True(t, names[name], name)
	}
}
