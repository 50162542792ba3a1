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

package job

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/matrixorigin/molinalg/pkg/common/moerr"
	"github.com/matrixorigin/molinalg/pkg/config"
	"github.com/matrixorigin/molinalg/pkg/container/block"
	"github.com/matrixorigin/molinalg/pkg/container/index"
	"github.com/matrixorigin/molinalg/pkg/logutil"
	"github.com/matrixorigin/molinalg/pkg/shuffle"
	"github.com/matrixorigin/molinalg/pkg/sql/colexec/mmcj"
	v2 "github.com/matrixorigin/molinalg/pkg/util/metric/v2"
	"github.com/matrixorigin/molinalg/pkg/vm/process"
)

// dummyTask is the task that emits the dummy grid.
const dummyTask = 0

// Result holds the counters of every task of a finished job.
type Result struct {
	Tasks    []*process.AnalyzeInfo
	Duration time.Duration
}

func (r *Result) InputRecords() int64 {
	var n int64
	for _, t := range r.Tasks {
		n += atomic.LoadInt64(&t.InputRecords)
	}
	return n
}

func (r *Result) OutputBlocks() int64 {
	var n int64
	for _, t := range r.Tasks {
		n += t.OutputBlocks()
	}
	return n
}

// Runner executes the reduce side of one matrix multiplication job on the
// local machine, one mmcj task per partition.
type Runner struct {
	cfg  *config.TaskParameters
	sink mmcj.Sink
}

func NewRunner(cfg *config.TaskParameters, sink mmcj.Sink) *Runner {
	return &Runner{cfg: cfg, sink: sink}
}

// Run shuffles records into cfg.Parallelism partitions and reduces them
// concurrently. The first failing task cancels the others.
func (r *Runner) Run(ctx context.Context, records []shuffle.Record) (*Result, error) {
	if err := r.cfg.Validate(ctx); err != nil {
		return nil, err
	}
	n := r.cfg.Parallelism
	if n <= 0 {
		n = 1
	}
	// the budget covers the whole job, each task gets an even share
	budget := r.cfg.MemoryBudget / int64(n)
	if budget <= r.cfg.MMCJCacheSize {
		return nil, moerr.NewBadConfig(ctx, "memory budget %d over %d tasks leaves %d per task, not above mmcj cache size %d",
			r.cfg.MemoryBudget, n, budget, r.cfg.MMCJCacheSize)
	}

	shuffler := shuffle.New(n)
	shuffler.AddAll(records)
	parts := shuffler.Partitions()
	if err := shuffle.CheckDisjoint(ctx, parts); err != nil {
		return nil, err
	}

	pool, err := ants.NewPool(n)
	if err != nil {
		return nil, moerr.ConvertGoError(ctx, err)
	}
	defer pool.Release()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	start := time.Now()
	res := &Result{Tasks: make([]*process.AnalyzeInfo, n)}
	for i := range res.Tasks {
		res.Tasks[i] = process.NewAnalyzeInfo(int32(i))
	}
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			if err := r.runTask(ctx, parts[i], res.Tasks[i], budget); err != nil {
				fail(err)
			}
		}); err != nil {
			wg.Done()
			fail(moerr.ConvertGoError(ctx, err))
			break
		}
	}
	wg.Wait()
	res.Duration = time.Since(start)
	publishJob(res)

	if firstErr != nil {
		logutil.Error("mmcj job failed", zap.Error(firstErr))
		return res, firstErr
	}
	logutil.Info("mmcj job finished",
		zap.Int("tasks", n),
		zap.Int64("input", res.InputRecords()),
		zap.Int64("output", res.OutputBlocks()),
		zap.Duration("duration", res.Duration))
	return res, nil
}

func (r *Runner) runTask(ctx context.Context, part *shuffle.Partition, info *process.AnalyzeInfo, budget int64) (err error) {
	proc := process.NewWithAnalyzeInfo(ctx, fmt.Sprintf("mmcj-%d", part.Id),
		process.Limitation{Size: budget}, info)
	var arg *mmcj.Argument
	defer func() {
		if e := recover(); e != nil {
			err = moerr.ConvertPanicError(ctx, e)
		}
		if arg != nil {
			arg.Free(proc, err != nil, err)
		}
		publish(info, err)
	}()

	if arg, err = mmcj.NewArgumentFromConfig(r.cfg, r.sink, part.Id == dummyTask); err != nil {
		return err
	}
	arg.MemoryBudget = budget
	if err = arg.Prepare(proc); err != nil {
		return err
	}

	logutil.Debug("mmcj task started",
		zap.String("task", proc.Id),
		zap.Int("keys", part.Keys()),
		zap.Uint64("join-keys", part.JoinKeys().GetCardinality()))
	if err = part.Replay(ctx, func(key index.TaggedFirstSecondIndexes, values []block.Block) error {
		return arg.Reduce(proc, key, values)
	}); err != nil {
		return err
	}
	return arg.Close(proc)
}

func publish(info *process.AnalyzeInfo, err error) {
	if err != nil {
		v2.MMCJTaskFailedCounter.Inc()
	} else {
		v2.MMCJTaskSucceedCounter.Inc()
	}
	v2.MMCJInputRecordCounter.Add(float64(atomic.LoadInt64(&info.InputRecords)))
	v2.MMCJSkippedRecordCounter.Add(float64(atomic.LoadInt64(&info.SkippedRecords)))
	v2.MMCJGroupCounter.Add(float64(atomic.LoadInt64(&info.Groups)))
	v2.MMCJCachedBlockCounter.Add(float64(atomic.LoadInt64(&info.CachedBlocks)))
	v2.MMCJMultiplyCounter.Add(float64(atomic.LoadInt64(&info.Multiplies)))
	v2.MMCJEvictedBlockCounter.Add(float64(atomic.LoadInt64(&info.EvictedBlocks)))
	v2.MMCJDrainedBlockCounter.Add(float64(atomic.LoadInt64(&info.DrainedBlocks)))
	v2.MMCJDummyBlockCounter.Add(float64(atomic.LoadInt64(&info.DummyBlocks)))
	v2.MMCJTaskDurationHistogram.Observe(time.Duration(atomic.LoadInt64(&info.TimeConsumed)).Seconds())
}

// publishJob sets the gauges that describe a job as a whole.
func publishJob(res *Result) {
	var bytes int64
	for _, t := range res.Tasks {
		bytes += atomic.LoadInt64(&t.MemorySize)
	}
	v2.MMCJOutCacheBytesGauge.Set(float64(bytes))

	distinct, err := process.DistinctEvictedOf(res.Tasks)
	if err != nil {
		logutil.Warn("mmcj distinct evicted estimate failed", zap.Error(err))
		return
	}
	v2.MMCJDistinctEvictedGauge.Set(float64(distinct))
}
