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

package process

import (
	"context"
	"sync"
	"time"

	"github.com/axiomhq/hyperloglog"

	"github.com/matrixorigin/molinalg/pkg/container/index"
)

// OutputReason tells why a block left an operator.
type OutputReason int

const (
	// OutputEvict is a result forwarded because the output cache was full.
	OutputEvict OutputReason = iota
	// OutputDrain is a cached result flushed at task completion.
	OutputDrain
	// OutputDummy is a zero block of the dummy grid.
	OutputDummy
)

func (r OutputReason) String() string {
	switch r {
	case OutputEvict:
		return "evict"
	case OutputDrain:
		return "drain"
	case OutputDummy:
		return "dummy"
	}
	return "unknown"
}

// Limitation holds the resource limits of one task.
type Limitation struct {
	// Size is the memory budget of the task in bytes.
	Size int64
}

// Analyze is the per operator reporting side channel. Operators receive it
// through the Process they are called with.
type Analyze interface {
	Start()
	Stop()
	Input(records int64)
	Skip()
	Group()
	Cache()
	Multiply()
	Alloc(size int64)
	Capacity(entries int64)
	Output(reason OutputReason, idx index.MatrixIndexes)
}

// AnalyzeInfo is the counter set behind Analyze.
type AnalyzeInfo struct {
	TaskId int32

	TimeConsumed   int64
	InputRecords   int64
	SkippedRecords int64
	Groups         int64
	CachedBlocks   int64
	Multiplies     int64
	MemorySize     int64
	EvictedBlocks  int64
	DrainedBlocks  int64
	DummyBlocks    int64

	// OutCacheCapacity is the number of output entries the task may keep.
	OutCacheCapacity int64

	mu sync.Mutex
	// evicted estimates how many distinct coordinates bypassed the output
	// cache.
	evicted *hyperloglog.Sketch
}

type analyze struct {
	start    time.Time
	analInfo *AnalyzeInfo
}

// Process is the execution context of one task instance.
type Process struct {
	Id  string
	Ctx context.Context
	Lim Limitation

	analInfo *AnalyzeInfo
}
