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
	"bytes"
	"fmt"

	"go.uber.org/zap"

	"github.com/matrixorigin/molinalg/pkg/common/moerr"
	"github.com/matrixorigin/molinalg/pkg/config"
	"github.com/matrixorigin/molinalg/pkg/container/block"
	"github.com/matrixorigin/molinalg/pkg/container/index"
	"github.com/matrixorigin/molinalg/pkg/logutil"
	"github.com/matrixorigin/molinalg/pkg/vm/process"
)

// NewArgumentFromConfig builds the operator of one task.
func NewArgumentFromConfig(cfg *config.TaskParameters, sink Sink, outputDummyRecords bool) (*Argument, error) {
	op, err := block.ParseAggregateBinaryOperator(moerr.Context(), cfg.Operator)
	if err != nil {
		return nil, err
	}
	return &Argument{
		TagForLeft:         cfg.TagForLeft,
		Dim1:               cfg.Dim1,
		Dim2:               cfg.Dim2,
		ResultIndexes:      cfg.ResultIndexes,
		MemoryBudget:       cfg.MemoryBudget,
		MMCJCacheSize:      cfg.MMCJCacheSize,
		OutputDummyRecords: outputDummyRecords,
		Op:                 op,
		Aggregator:         &SumAggregator{},
		Sink:               sink,
	}, nil
}

func (arg *Argument) String(buf *bytes.Buffer) {
	buf.WriteString(thisOperatorName + ": ")
	opName := "ba+*"
	if arg.Op != nil {
		opName = arg.Op.Name
	}
	buf.WriteString(fmt.Sprintf("%s(%dx%d, %dx%d) left=tag%d",
		opName, arg.Dim1.Rows, arg.Dim1.Cols, arg.Dim2.Rows, arg.Dim2.Cols, arg.TagForLeft))
	if arg.OutputDummyRecords {
		buf.WriteString(" with dummy")
	}
}

func (arg *Argument) Prepare(proc *process.Process) error {
	if len(arg.ResultIndexes) > 1 {
		return moerr.NewBadConfig(proc.Ctx, "mmcj only outputs one result, got %d", len(arg.ResultIndexes))
	}
	if arg.TagForLeft != index.TagLeft && arg.TagForLeft != index.TagRight {
		return moerr.NewBadConfig(proc.Ctx, "tag for left must be 0 or 1, got %d", arg.TagForLeft)
	}
	brlen, bclen := arg.Dim1.RowsPerBlock, arg.Dim2.ColsPerBlock
	if brlen <= 0 || bclen <= 0 {
		return moerr.NewBadConfig(proc.Ctx, "block size %dx%d", brlen, bclen)
	}
	budget := arg.MemoryBudget
	if budget == 0 {
		budget = proc.Lim.Size
	}
	capacity := OutCacheSize(budget, arg.MMCJCacheSize, brlen, bclen)
	if capacity <= 0 {
		return moerr.NewBadConfig(proc.Ctx, "memory budget %d leaves no room for the output cache (reserved %d, element %d)",
			budget, arg.MMCJCacheSize, OutCacheElementSize(brlen, bclen))
	}
	if arg.Sink == nil {
		return moerr.NewInvalidArg(proc.Ctx, "mmcj sink", nil)
	}
	if arg.Op == nil {
		arg.Op = block.SumProduct()
	}
	if arg.Aggregator == nil {
		arg.Aggregator = &SumAggregator{}
	}

	anal := proc.GetAnalyze()
	anal.Capacity(capacity)
	arg.ctr = new(container)
	arg.ctr.out = newOutputCache(capacity, arg.Op.AggOp, arg.Sink, anal)
	arg.ctr.valueBuffer = block.NewDense(0, 0)
	logutil.Debug("mmcj prepared",
		zap.String("task", proc.Id),
		zap.Int64("budget", budget),
		zap.Int64("out-cache-capacity", capacity),
		zap.Uint8("tag-for-left", arg.TagForLeft))
	return nil
}

func (ctr *container) processJoin(ap *Argument, proc *process.Process, anal process.Analyze, tag uint8, remainIndex int64, value block.Block) error {
	if tag == index.TagLeft {
		ctr.cache.add(remainIndex, value)
		anal.Cache()
		return nil
	}
	// nothing to join with for this key
	if ctr.cache.size == 0 {
		return nil
	}
	return ctr.cache.forEach(func(cached *remainIndexValue) error {
		var left, right block.Block
		var idx index.MatrixIndexes
		if ap.TagForLeft == index.TagLeft {
			left, right = cached.value, value
			idx = index.MatrixIndexes{Row: cached.remainIndex, Col: remainIndex}
		} else {
			left, right = value, cached.value
			idx = index.MatrixIndexes{Row: remainIndex, Col: cached.remainIndex}
		}
		if err := block.AggregateBinary(proc.Ctx, left, right, ctr.valueBuffer, ap.Op); err != nil {
			return err
		}
		anal.Multiply()
		return ctr.out.write(proc.Ctx, idx, ctr.valueBuffer)
	})
}

// Close flushes the output cache and, when OutputDummyRecords is set, emits
// a zero block for every coordinate of the output grid.
func (arg *Argument) Close(proc *process.Process) error {
	ctr := arg.ctr
	if ctr == nil {
		return moerr.NewInvalidState(proc.Ctx, "mmcj close before prepare")
	}
	if ctr.closed {
		return moerr.NewInvalidState(proc.Ctx, "mmcj closed twice")
	}
	ctr.closed = true

	drained := ctr.out.len()
	peak := ctr.out.peak
	if err := ctr.out.drain(); err != nil {
		return err
	}
	dummies := int64(0)
	if arg.OutputDummyRecords {
		n, err := arg.emitDummyGrid(proc)
		if err != nil {
			return err
		}
		dummies = n
	}
	logutil.Info("mmcj task finished",
		zap.String("task", proc.Id),
		zap.Int("drained", drained),
		zap.Int("out-cache-peak", peak),
		zap.Int("left-cache-slots", len(ctr.cache.slots)),
		zap.Int64("left-cache-bytes", ctr.cache.inMemorySize()),
		zap.Int64("dummy", dummies))
	return nil
}

// emitDummyGrid writes one zero block per output block coordinate. Edge
// blocks are clipped to the matrix size. Coordinates are 1-based.
func (arg *Argument) emitDummyGrid(proc *process.Process) (int64, error) {
	anal := proc.GetAnalyze()
	brlen, bclen := int64(arg.Dim1.RowsPerBlock), int64(arg.Dim2.ColsPerBlock)
	rlen, clen := arg.Dim1.Rows, arg.Dim2.Cols
	zero := block.NewDense(0, 0)
	var n int64
	for r := int64(1); r <= arg.Dim1.NumRowBlocks(); r++ {
		rows := min(brlen, rlen-(r-1)*brlen)
		for c := int64(1); c <= arg.Dim2.NumColBlocks(); c++ {
			cols := min(bclen, clen-(c-1)*bclen)
			zero.Reset(int(rows), int(cols))
			idx := index.MatrixIndexes{Row: r, Col: c}
			if err := arg.Sink.Emit(idx, zero); err != nil {
				return n, err
			}
			anal.Output(process.OutputDummy, idx)
			n++
		}
	}
	return n, nil
}

func (arg *Argument) Free(proc *process.Process, pipelineFailed bool, err error) {
	ctr := arg.ctr
	if ctr == nil {
		return
	}
	if pipelineFailed {
		logutil.Warn("mmcj task failed",
			zap.String("task", proc.Id),
			zap.Int("unflushed", ctr.out.len()),
			zap.Error(err))
	}
	ctr.out.free()
	ctr.cache = leftCache{}
	ctr.valueBuffer = nil
	arg.ctr = nil
}
