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
	"github.com/matrixorigin/molinalg/pkg/container/block"
	"github.com/matrixorigin/molinalg/pkg/container/index"
	"github.com/matrixorigin/molinalg/pkg/vm/process"
)

//go:generate mockgen -source=types.go -destination=types_mock_test.go -package=mmcj

const (
	thisOperatorName = "mmcj"
)

// Sink receives the output blocks of a task. It is append only. value may
// be a buffer the operator reuses, so Emit must not keep it after it
// returns.
type Sink interface {
	Emit(idx index.MatrixIndexes, value block.Block) error
}

// Aggregator collapses all values delivered under one key into a single
// block. A nil block without error means the key is skipped.
type Aggregator interface {
	Aggregate(proc *process.Process, key index.TaggedFirstSecondIndexes, values []block.Block) (block.Block, error)
}

// Argument is the mmcj reducer: it caches the blocks tagged 0 of a join
// key and multiplies every block tagged 1 of the same join key against
// them.
type Argument struct {
	ctr *container

	// TagForLeft is the input tag whose blocks are the row operand of the
	// product. It is fixed for the whole task.
	TagForLeft uint8
	// Dim1 and Dim2 describe the row and column operand. They size the
	// output cache and the dummy grid.
	Dim1 index.MatrixCharacteristics
	Dim2 index.MatrixCharacteristics
	// ResultIndexes are the job results this operator writes, at most one.
	ResultIndexes []int32
	// MemoryBudget is the memory of the task in bytes and MMCJCacheSize the
	// part of it set aside for the left operand cache.
	MemoryBudget  int64
	MMCJCacheSize int64
	// OutputDummyRecords makes Close emit a zero block for every output
	// coordinate. Exactly one task of a job sets it.
	OutputDummyRecords bool

	Op         *block.AggregateBinaryOperator
	Aggregator Aggregator
	Sink       Sink
}

// remainIndexValue is a block together with the index its operand keeps.
type remainIndexValue struct {
	remainIndex int64
	value       block.Block
}

func (r *remainIndexValue) set(ind int64, b block.Block) {
	if r.value == nil {
		r.value = block.NewLike(b)
	}
	r.remainIndex = ind
	r.value.Copy(b)
}

type container struct {
	cache leftCache
	out   *outputCache

	// flow tracking
	started        bool
	prevFirstIndex int64
	prevTag        int
	closed         bool

	// product of the last multiply, reused across calls
	valueBuffer block.Block
}
