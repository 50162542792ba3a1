// Copyright 2022 Matrix Origin
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

package sysmem

const (
	// fallbackTotal is used when physical memory cannot be queried.
	fallbackTotal int64 = 4 << 30
	// budgetRatio is the share of physical memory a task may plan with.
	budgetRatio = 0.7
)

// LocalMemBudget returns the memory budget of a local task in bytes.
func LocalMemBudget() int64 {
	return int64(float64(Total()) * budgetRatio)
}
