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

package mmcj

import (
	"context"
	"math"

	"golang.org/x/exp/slices"

	"github.com/matrixorigin/molinalg/pkg/container/block"
	"github.com/matrixorigin/molinalg/pkg/container/index"
	"github.com/matrixorigin/molinalg/pkg/vm/process"
)

const (
	// per entry overhead of the output map and the block header, in bytes
	entryObjectOverhead = 77
	entryKeyOverhead    = 20
	entryRefOverhead    = 12
	cellSize            = 8
	mapLoadFactor       = 0.75
)

// OutCacheElementSize estimates the resident size of one output entry of
// brlen x bclen cells.
func OutCacheElementSize(brlen, bclen int32) int64 {
	raw := float64(entryObjectOverhead + cellSize*int64(brlen)*int64(bclen) + entryKeyOverhead + entryRefOverhead)
	return int64(math.Ceil(raw / mapLoadFactor))
}

// OutCacheSize is the number of output entries a task may keep resident.
func OutCacheSize(memoryBudget, mmcjCacheSize int64, brlen, bclen int32) int64 {
	return (memoryBudget - mmcjCacheSize) / OutCacheElementSize(brlen, bclen)
}

// outputCache folds partial products per output coordinate with the
// incremental aggregate of the operator. It never holds more than capacity
// entries. A new coordinate arriving when the cache is full is written
// straight to the sink.
type outputCache struct {
	capacity int64
	entries  map[index.MatrixIndexes]block.Block
	agg      block.AggregateOperator
	peak     int

	sink Sink
	anal process.Analyze
}

func newOutputCache(capacity int64, agg block.AggregateOperator, sink Sink, anal process.Analyze) *outputCache {
	initial := capacity
	if initial > defaultCacheSlots {
		initial = defaultCacheSlots
	}
	return &outputCache{
		capacity: capacity,
		entries:  make(map[index.MatrixIndexes]block.Block, initial),
		agg:      agg,
		sink:     sink,
		anal:     anal,
	}
}

func (c *outputCache) len() int {
	return len(c.entries)
}

func (c *outputCache) write(ctx context.Context, idx index.MatrixIndexes, value block.Block) error {
	if sum, ok := c.entries[idx]; ok {
		return block.Accumulate(ctx, sum, value, c.agg.IncrementalOp)
	}
	if int64(len(c.entries)) < c.capacity {
		sum := block.New(value.Rows(), value.Cols(), value.IsSparse())
		block.Fill(sum, c.agg.InitialValue)
		if err := block.Accumulate(ctx, sum, value, c.agg.IncrementalOp); err != nil {
			return err
		}
		c.entries[idx] = sum
		c.anal.Alloc(sum.InMemorySize())
		if len(c.entries) > c.peak {
			c.peak = len(c.entries)
		}
		return nil
	}
	if err := c.sink.Emit(idx, value); err != nil {
		return err
	}
	c.anal.Output(process.OutputEvict, idx)
	return nil
}

// drain emits every resident entry once, in coordinate order, and leaves
// the cache empty.
func (c *outputCache) drain() error {
	keys := make([]index.MatrixIndexes, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b index.MatrixIndexes) int {
		return a.Compare(b)
	})
	for _, k := range keys {
		if err := c.sink.Emit(k, c.entries[k]); err != nil {
			return err
		}
		c.anal.Output(process.OutputDrain, k)
		delete(c.entries, k)
	}
	return nil
}

func (c *outputCache) free() {
	c.entries = nil
}
