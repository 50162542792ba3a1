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
	"sync/atomic"
	"time"

	"github.com/axiomhq/hyperloglog"

	"github.com/matrixorigin/molinalg/pkg/container/index"
)

func NewAnalyzeInfo(taskId int32) *AnalyzeInfo {
	return &AnalyzeInfo{
		TaskId:  taskId,
		evicted: hyperloglog.New(),
	}
}

// DistinctEvicted returns the estimated number of distinct coordinates that
// were forwarded because the output cache was full.
func (a *AnalyzeInfo) DistinctEvicted() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.evicted.Estimate()
}

// DistinctEvictedOf estimates the distinct forwarded coordinates over a
// set of tasks.
func DistinctEvictedOf(infos []*AnalyzeInfo) (uint64, error) {
	total := hyperloglog.New()
	for _, a := range infos {
		a.mu.Lock()
		err := total.Merge(a.evicted)
		a.mu.Unlock()
		if err != nil {
			return 0, err
		}
	}
	return total.Estimate(), nil
}

// OutputBlocks is the total number of blocks emitted to the sink.
func (a *AnalyzeInfo) OutputBlocks() int64 {
	return atomic.LoadInt64(&a.EvictedBlocks) +
		atomic.LoadInt64(&a.DrainedBlocks) +
		atomic.LoadInt64(&a.DummyBlocks)
}

func (a *analyze) Start() {
	a.start = time.Now()
}

func (a *analyze) Stop() {
	if a.analInfo != nil {
		atomic.AddInt64(&a.analInfo.TimeConsumed, int64(time.Since(a.start)))
	}
}

func (a *analyze) Input(records int64) {
	if a.analInfo != nil {
		atomic.AddInt64(&a.analInfo.InputRecords, records)
	}
}

func (a *analyze) Skip() {
	if a.analInfo != nil {
		atomic.AddInt64(&a.analInfo.SkippedRecords, 1)
	}
}

func (a *analyze) Group() {
	if a.analInfo != nil {
		atomic.AddInt64(&a.analInfo.Groups, 1)
	}
}

func (a *analyze) Cache() {
	if a.analInfo != nil {
		atomic.AddInt64(&a.analInfo.CachedBlocks, 1)
	}
}

func (a *analyze) Multiply() {
	if a.analInfo != nil {
		atomic.AddInt64(&a.analInfo.Multiplies, 1)
	}
}

func (a *analyze) Alloc(size int64) {
	if a.analInfo != nil {
		atomic.AddInt64(&a.analInfo.MemorySize, size)
	}
}

func (a *analyze) Capacity(entries int64) {
	if a.analInfo != nil {
		atomic.StoreInt64(&a.analInfo.OutCacheCapacity, entries)
	}
}

func (a *analyze) Output(reason OutputReason, idx index.MatrixIndexes) {
	if a.analInfo == nil {
		return
	}
	switch reason {
	case OutputEvict:
		atomic.AddInt64(&a.analInfo.EvictedBlocks, 1)
		a.analInfo.mu.Lock()
		a.analInfo.evicted.Insert(idx.AppendBytes(nil))
		a.analInfo.mu.Unlock()
	case OutputDrain:
		atomic.AddInt64(&a.analInfo.DrainedBlocks, 1)
	case OutputDummy:
		atomic.AddInt64(&a.analInfo.DummyBlocks, 1)
	}
}
