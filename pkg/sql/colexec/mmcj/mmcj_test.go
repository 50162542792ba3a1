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
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/molinalg/pkg/common/moerr"
	"github.com/matrixorigin/molinalg/pkg/config"
	"github.com/matrixorigin/molinalg/pkg/container/block"
	"github.com/matrixorigin/molinalg/pkg/container/index"
	"github.com/matrixorigin/molinalg/pkg/vm/process"
)

const tol = 1e-9

// collectSink keeps a copy of every emitted block and the sum per
// coordinate.
type collectSink struct {
	order []index.MatrixIndexes
	sums  map[index.MatrixIndexes]block.Block
	count map[index.MatrixIndexes]int
}

func newCollectSink() *collectSink {
	return &collectSink{
		sums:  make(map[index.MatrixIndexes]block.Block),
		count: make(map[index.MatrixIndexes]int),
	}
}

func (s *collectSink) Emit(idx index.MatrixIndexes, value block.Block) error {
	s.order = append(s.order, idx)
	s.count[idx]++
	if sum, ok := s.sums[idx]; ok {
		return block.Accumulate(context.TODO(), sum, value, block.Plus)
	}
	cp := block.NewDense(0, 0)
	cp.Copy(value)
	s.sums[idx] = cp
	return nil
}

type tcTest struct {
	arg  *Argument
	proc *process.Process
	sink *collectSink
}

func square(n int32) index.MatrixCharacteristics {
	return index.MatrixCharacteristics{Rows: 4, Cols: 4, RowsPerBlock: n, ColsPerBlock: n}
}

func newTestCase(tagForLeft uint8, budget int64) tcTest {
	sink := newCollectSink()
	return tcTest{
		arg: &Argument{
			TagForLeft:    tagForLeft,
			Dim1:          square(2),
			Dim2:          square(2),
			ResultIndexes: []int32{0},
			MemoryBudget:  budget,
			Sink:          sink,
		},
		proc: process.New(context.TODO(), "mmcj-test", process.Limitation{}),
		sink: sink,
	}
}

func key(joinKey int64, tag uint8, sub int64) index.TaggedFirstSecondIndexes {
	return index.TaggedFirstSecondIndexes{First: joinKey, Tag: tag, Second: sub}
}

func dense(vals ...float64) *block.Dense {
	return block.NewDenseFrom(2, 2, vals)
}

func product(t *testing.T, l, r block.Block) block.Block {
	out := block.NewDense(0, 0)
	require.NoError(t, block.AggregateBinary(context.TODO(), l, r, out, block.SumProduct()))
	return out
}

func sum(t *testing.T, bs ...block.Block) block.Block {
	out := block.NewDense(bs[0].Rows(), bs[0].Cols())
	for _, b := range bs {
		require.NoError(t, block.Accumulate(context.TODO(), out, b, block.Plus))
	}
	return out
}

func TestString(t *testing.T) {
	tc := newTestCase(0, 1<<20)
	tc.arg.OutputDummyRecords = true
	buf := new(bytes.Buffer)
	tc.arg.String(buf)
	require.Equal(t, "mmcj: ba+*(4x4, 4x4) left=tag0 with dummy", buf.String())
}

func TestEndToEnd(t *testing.T) {
	tc := newTestCase(0, 1<<20)
	require.NoError(t, tc.arg.Prepare(tc.proc))

	a1, a2 := dense(1, 2, 3, 4), dense(0, 1, 1, 0)
	b1, b2 := dense(2, 0, 0, 2), dense(1, 1, 1, 1)
	c1, d1 := dense(1, 0, 0, 1), dense(5, 6, 7, 8)

	require.NoError(t, tc.arg.Reduce(tc.proc, key(7, 0, 1), []block.Block{a1}))
	require.NoError(t, tc.arg.Reduce(tc.proc, key(7, 0, 2), []block.Block{a2}))
	require.NoError(t, tc.arg.Reduce(tc.proc, key(7, 1, 1), []block.Block{b1}))
	require.NoError(t, tc.arg.Reduce(tc.proc, key(7, 1, 2), []block.Block{b2}))
	require.Equal(t, 4, tc.arg.ctr.out.len())
	require.Empty(t, tc.sink.order)

	require.NoError(t, tc.arg.Reduce(tc.proc, key(9, 0, 1), []block.Block{c1}))
	require.NoError(t, tc.arg.Reduce(tc.proc, key(9, 1, 1), []block.Block{d1}))
	require.NoError(t, tc.arg.Close(tc.proc))
	require.Equal(t, 0, tc.arg.ctr.out.len())

	want := map[index.MatrixIndexes]block.Block{
		{Row: 1, Col: 1}: sum(t, product(t, a1, b1), product(t, c1, d1)),
		{Row: 2, Col: 1}: product(t, a2, b1),
		{Row: 1, Col: 2}: product(t, a1, b2),
		{Row: 2, Col: 2}: product(t, a2, b2),
	}
	require.Len(t, tc.sink.sums, len(want))
	for idx, w := range want {
		require.Equal(t, 1, tc.sink.count[idx], idx.String())
		require.True(t, block.EqualApprox(w, tc.sink.sums[idx], tol), idx.String())
	}
	// drained in coordinate order
	require.Equal(t, []index.MatrixIndexes{
		{Row: 1, Col: 1}, {Row: 1, Col: 2}, {Row: 2, Col: 1}, {Row: 2, Col: 2},
	}, tc.sink.order)

	info := tc.proc.GetAnalyzeInfo()
	require.Equal(t, int64(2), info.Groups)
	require.Equal(t, int64(3), info.CachedBlocks)
	require.Equal(t, int64(5), info.Multiplies)
	require.Equal(t, int64(4), info.DrainedBlocks)
	require.Equal(t, int64(0), info.EvictedBlocks)
	tc.arg.Free(tc.proc, false, nil)
}

var maxOp = block.BinaryOperator{Name: "max", Fn: math.Max}

func maxPlus() *block.AggregateBinaryOperator {
	return &block.AggregateBinaryOperator{
		Name:     "max+",
		BinaryOp: block.Plus,
		AggOp:    block.AggregateOperator{InitialValue: math.Inf(-1), IncrementalOp: maxOp},
	}
}

func TestOperatorAggregateInOutputCache(t *testing.T) {
	ctx := context.TODO()
	tc := newTestCase(0, 1<<20)
	tc.arg.Op = maxPlus()
	require.NoError(t, tc.arg.Prepare(tc.proc))

	a := block.NewSparse(0, 0)
	a.Copy(dense(0, -1, 2, 0))
	b := dense(0, 3, -2, 0)
	c, d := dense(-5, -5, -5, -5), dense(1, 1, 1, 1)

	require.NoError(t, tc.arg.Reduce(tc.proc, key(1, 0, 1), []block.Block{a}))
	require.NoError(t, tc.arg.Reduce(tc.proc, key(1, 1, 1), []block.Block{b}))
	require.NoError(t, tc.arg.Reduce(tc.proc, key(2, 0, 1), []block.Block{c}))
	require.NoError(t, tc.arg.Reduce(tc.proc, key(2, 1, 1), []block.Block{d}))
	require.NoError(t, tc.arg.Close(tc.proc))

	first, second := block.NewDense(0, 0), block.NewDense(0, 0)
	require.NoError(t, block.AggregateBinary(ctx, a, b, first, maxPlus()))
	require.NoError(t, block.AggregateBinary(ctx, c, d, second, maxPlus()))
	require.True(t, block.EqualApprox(dense(0, 3, 2, 5), first, 0))
	require.NoError(t, block.Accumulate(ctx, first, second, maxOp))

	idx := index.MatrixIndexes{Row: 1, Col: 1}
	require.Equal(t, 1, tc.sink.count[idx])
	// max(first, -4) cell by cell, a sum would give -4, -1, -2, 1
	require.True(t, block.EqualApprox(dense(0, 3, 2, 5), tc.sink.sums[idx], 0))
	tc.arg.Free(tc.proc, false, nil)
}

func TestSwappedTagForLeft(t *testing.T) {
	tc := newTestCase(1, 1<<20)
	require.NoError(t, tc.arg.Prepare(tc.proc))

	cached, probe := dense(1, 2, 3, 4), dense(0, 1, 2, 3)
	require.NoError(t, tc.arg.Reduce(tc.proc, key(3, 0, 5), []block.Block{cached}))
	require.NoError(t, tc.arg.Reduce(tc.proc, key(3, 1, 8), []block.Block{probe}))
	require.NoError(t, tc.arg.Close(tc.proc))

	idx := index.MatrixIndexes{Row: 8, Col: 5}
	require.Len(t, tc.sink.sums, 1)
	require.True(t, block.EqualApprox(product(t, probe, cached), tc.sink.sums[idx], tol))
}

func TestTagOutOfOrder(t *testing.T) {
	tc := newTestCase(0, 1<<20)
	require.NoError(t, tc.arg.Prepare(tc.proc))

	require.NoError(t, tc.arg.Reduce(tc.proc, key(4, 0, 1), []block.Block{dense(1, 1, 1, 1)}))
	require.NoError(t, tc.arg.Reduce(tc.proc, key(4, 1, 1), []block.Block{dense(1, 1, 1, 1)}))
	err := tc.arg.Reduce(tc.proc, key(4, 0, 2), []block.Block{dense(1, 1, 1, 1)})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrTagOutOfOrder), err)

	// a new join key opens a new group and may start with tag 0 again
	tc = newTestCase(0, 1<<20)
	require.NoError(t, tc.arg.Prepare(tc.proc))
	require.NoError(t, tc.arg.Reduce(tc.proc, key(4, 1, 1), []block.Block{dense(1, 1, 1, 1)}))
	require.NoError(t, tc.arg.Reduce(tc.proc, key(5, 0, 1), []block.Block{dense(1, 1, 1, 1)}))
}

func TestInvalidTag(t *testing.T) {
	tc := newTestCase(0, 1<<20)
	require.NoError(t, tc.arg.Prepare(tc.proc))
	err := tc.arg.Reduce(tc.proc, key(1, 2, 1), []block.Block{dense(1, 1, 1, 1)})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
}

func TestOneSidedKey(t *testing.T) {
	tc := newTestCase(0, 1<<20)
	require.NoError(t, tc.arg.Prepare(tc.proc))

	// only right blocks for key 1, only left blocks for key 2
	require.NoError(t, tc.arg.Reduce(tc.proc, key(1, 1, 1), []block.Block{dense(1, 2, 3, 4)}))
	require.NoError(t, tc.arg.Reduce(tc.proc, key(1, 1, 2), []block.Block{dense(1, 2, 3, 4)}))
	require.NoError(t, tc.arg.Reduce(tc.proc, key(2, 0, 1), []block.Block{dense(1, 2, 3, 4)}))
	// the left blocks of key 2 must not join the right blocks of key 3
	require.NoError(t, tc.arg.Reduce(tc.proc, key(3, 1, 1), []block.Block{dense(1, 2, 3, 4)}))
	require.NoError(t, tc.arg.Close(tc.proc))
	require.Empty(t, tc.sink.order)
	require.Equal(t, int64(0), tc.proc.GetAnalyzeInfo().Multiplies)
}

func TestSkipEmptyAggregation(t *testing.T) {
	tc := newTestCase(0, 1<<20)
	require.NoError(t, tc.arg.Prepare(tc.proc))
	require.NoError(t, tc.arg.Reduce(tc.proc, key(1, 0, 1), nil))
	require.Equal(t, int64(1), tc.proc.GetAnalyzeInfo().SkippedRecords)
	require.Equal(t, int64(0), tc.proc.GetAnalyzeInfo().Groups)
}

func TestPreAggregation(t *testing.T) {
	tc := newTestCase(0, 1<<20)
	require.NoError(t, tc.arg.Prepare(tc.proc))

	l1, l2 := dense(1, 0, 0, 1), dense(1, 1, 1, 1)
	r := dense(1, 2, 3, 4)
	require.NoError(t, tc.arg.Reduce(tc.proc, key(1, 0, 1), []block.Block{l1, l2}))
	require.NoError(t, tc.arg.Reduce(tc.proc, key(1, 1, 1), []block.Block{r}))
	require.NoError(t, tc.arg.Close(tc.proc))
	require.True(t, block.EqualApprox(product(t, sum(t, l1, l2), r),
		tc.sink.sums[index.MatrixIndexes{Row: 1, Col: 1}], tol))
}

func TestShapeMismatch(t *testing.T) {
	tc := newTestCase(0, 1<<20)
	require.NoError(t, tc.arg.Prepare(tc.proc))
	require.NoError(t, tc.arg.Reduce(tc.proc, key(1, 0, 1), []block.Block{dense(1, 2, 3, 4)}))
	err := tc.arg.Reduce(tc.proc, key(1, 1, 1), []block.Block{block.NewDense(3, 2)})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrShapeMismatch))
}

func TestOrderInvariance(t *testing.T) {
	a1, a2 := dense(1, 2, 3, 4), dense(4, 3, 2, 1)
	b1 := dense(0, 1, 1, 0)

	run := func(first, second int64, fb, sb block.Block) map[index.MatrixIndexes]block.Block {
		tc := newTestCase(0, 1<<20)
		require.NoError(t, tc.arg.Prepare(tc.proc))
		require.NoError(t, tc.arg.Reduce(tc.proc, key(1, 0, first), []block.Block{fb}))
		require.NoError(t, tc.arg.Reduce(tc.proc, key(1, 0, second), []block.Block{sb}))
		require.NoError(t, tc.arg.Reduce(tc.proc, key(1, 1, 1), []block.Block{b1}))
		require.NoError(t, tc.arg.Close(tc.proc))
		return tc.sink.sums
	}
	x := run(1, 2, a1, a2)
	y := run(2, 1, a2, a1)
	require.Len(t, y, len(x))
	for idx, v := range x {
		require.True(t, block.EqualApprox(v, y[idx], tol), idx.String())
	}
}

func TestCapacityBound(t *testing.T) {
	element := OutCacheElementSize(2, 2)
	require.Equal(t, int64(188), element)

	tc := newTestCase(0, 2*element)
	require.NoError(t, tc.arg.Prepare(tc.proc))
	require.Equal(t, int64(2), tc.arg.ctr.out.capacity)

	a1, a2 := dense(1, 2, 3, 4), dense(0, 1, 1, 0)
	b1, b2 := dense(2, 0, 0, 2), dense(1, 1, 1, 1)
	c1, d2 := dense(1, 0, 0, 1), dense(5, 6, 7, 8)
	steps := []struct {
		k index.TaggedFirstSecondIndexes
		v block.Block
	}{
		{key(7, 0, 1), a1}, {key(7, 0, 2), a2},
		{key(7, 1, 1), b1}, {key(7, 1, 2), b2},
		{key(9, 0, 1), c1}, {key(9, 1, 2), d2},
	}
	for _, s := range steps {
		require.NoError(t, tc.arg.Reduce(tc.proc, s.k, []block.Block{s.v}))
		require.LessOrEqual(t, tc.arg.ctr.out.len(), 2)
	}
	// (1,2) and (2,2) overflowed and went straight to the sink, twice for (1,2)
	require.Equal(t, 3, len(tc.sink.order))
	require.NoError(t, tc.arg.Close(tc.proc))

	info := tc.proc.GetAnalyzeInfo()
	require.Equal(t, int64(3), info.EvictedBlocks)
	require.Equal(t, int64(2), info.DrainedBlocks)
	require.Equal(t, uint64(2), info.DistinctEvicted())

	want := map[index.MatrixIndexes]block.Block{
		{Row: 1, Col: 1}: product(t, a1, b1),
		{Row: 2, Col: 1}: product(t, a2, b1),
		{Row: 1, Col: 2}: sum(t, product(t, a1, b2), product(t, c1, d2)),
		{Row: 2, Col: 2}: product(t, a2, b2),
	}
	for idx, w := range want {
		require.True(t, block.EqualApprox(w, tc.sink.sums[idx], tol), idx.String())
	}
}

func TestPrepareErrors(t *testing.T) {
	tc := newTestCase(0, 1<<20)
	tc.arg.ResultIndexes = []int32{0, 1}
	require.True(t, moerr.IsMoErrCode(tc.arg.Prepare(tc.proc), moerr.ErrBadConfig))

	tc = newTestCase(0, OutCacheElementSize(2, 2)-1)
	require.True(t, moerr.IsMoErrCode(tc.arg.Prepare(tc.proc), moerr.ErrBadConfig))

	tc = newTestCase(0, 1<<20)
	tc.arg.MMCJCacheSize = 1 << 20
	require.True(t, moerr.IsMoErrCode(tc.arg.Prepare(tc.proc), moerr.ErrBadConfig))

	tc = newTestCase(2, 1<<20)
	require.True(t, moerr.IsMoErrCode(tc.arg.Prepare(tc.proc), moerr.ErrBadConfig))

	tc = newTestCase(0, 1<<20)
	tc.arg.Sink = nil
	require.True(t, moerr.IsMoErrCode(tc.arg.Prepare(tc.proc), moerr.ErrInvalidArg))

	// budget falls back to the process limitation
	tc = newTestCase(0, 0)
	tc.proc.Lim.Size = 10 * OutCacheElementSize(2, 2)
	require.NoError(t, tc.arg.Prepare(tc.proc))
	require.Equal(t, int64(10), tc.arg.ctr.out.capacity)
}

func TestLifecycleState(t *testing.T) {
	tc := newTestCase(0, 1<<20)
	err := tc.arg.Reduce(tc.proc, key(1, 0, 1), []block.Block{dense(1, 1, 1, 1)})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidState))

	require.NoError(t, tc.arg.Prepare(tc.proc))
	require.NoError(t, tc.arg.Close(tc.proc))
	err = tc.arg.Reduce(tc.proc, key(1, 0, 1), []block.Block{dense(1, 1, 1, 1)})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidState))
	require.True(t, moerr.IsMoErrCode(tc.arg.Close(tc.proc), moerr.ErrInvalidState))

	tc.arg.Free(tc.proc, true, moerr.NewInternalError(context.TODO(), "boom"))
	require.Nil(t, tc.arg.ctr)
}

func TestDummyGrid(t *testing.T) {
	tc := newTestCase(0, 1<<20)
	tc.arg.Dim1 = index.MatrixCharacteristics{Rows: 5, Cols: 4, RowsPerBlock: 2, ColsPerBlock: 2}
	tc.arg.Dim2 = index.MatrixCharacteristics{Rows: 4, Cols: 3, RowsPerBlock: 2, ColsPerBlock: 2}
	tc.arg.OutputDummyRecords = true
	require.NoError(t, tc.arg.Prepare(tc.proc))
	require.NoError(t, tc.arg.Close(tc.proc))

	require.Len(t, tc.sink.order, 6)
	shapes := map[index.MatrixIndexes][2]int{
		{Row: 1, Col: 1}: {2, 2}, {Row: 1, Col: 2}: {2, 1},
		{Row: 2, Col: 1}: {2, 2}, {Row: 2, Col: 2}: {2, 1},
		{Row: 3, Col: 1}: {1, 2}, {Row: 3, Col: 2}: {1, 1},
	}
	for idx, shape := range shapes {
		b := tc.sink.sums[idx]
		require.NotNil(t, b, idx.String())
		require.Equal(t, shape[0], b.Rows(), idx.String())
		require.Equal(t, shape[1], b.Cols(), idx.String())
		require.Equal(t, int64(0), b.NonZeros())
	}
	require.Equal(t, int64(6), tc.proc.GetAnalyzeInfo().DummyBlocks)
}

func TestSinkError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sink := NewMockSink(ctrl)
	sink.EXPECT().Emit(index.MatrixIndexes{Row: 1, Col: 1}, gomock.Any()).
		Return(moerr.NewInternalError(context.TODO(), "disk full")).Times(1)

	tc := newTestCase(0, 1<<20)
	tc.arg.Sink = sink
	require.NoError(t, tc.arg.Prepare(tc.proc))
	require.NoError(t, tc.arg.Reduce(tc.proc, key(1, 0, 1), []block.Block{dense(1, 1, 1, 1)}))
	require.NoError(t, tc.arg.Reduce(tc.proc, key(1, 1, 1), []block.Block{dense(1, 1, 1, 1)}))
	require.True(t, moerr.IsMoErrCode(tc.arg.Close(tc.proc), moerr.ErrInternal))
}

func TestAggregatorError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	agg := NewMockAggregator(ctrl)
	agg.EXPECT().Aggregate(gomock.Any(), key(1, 0, 1), gomock.Any()).
		Return(nil, moerr.NewInvalidInput(context.TODO(), "corrupt block"))

	tc := newTestCase(0, 1<<20)
	tc.arg.Aggregator = agg
	require.NoError(t, tc.arg.Prepare(tc.proc))
	err := tc.arg.Reduce(tc.proc, key(1, 0, 1), []block.Block{dense(1, 1, 1, 1)})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
}

// blocksOf cuts a dense matrix into blocks keyed by 1-based block
// coordinates. Every other block is stored sparse.
func blocksOf(full *block.Dense, mc index.MatrixCharacteristics) map[index.MatrixIndexes]block.Block {
	out := make(map[index.MatrixIndexes]block.Block)
	brlen, bclen := int64(mc.RowsPerBlock), int64(mc.ColsPerBlock)
	for r := int64(1); r <= mc.NumRowBlocks(); r++ {
		rows := min(brlen, mc.Rows-(r-1)*brlen)
		for c := int64(1); c <= mc.NumColBlocks(); c++ {
			cols := min(bclen, mc.Cols-(c-1)*bclen)
			b := block.New(int(rows), int(cols), (r+c)%2 == 0)
			for i := 0; i < int(rows); i++ {
				for j := 0; j < int(cols); j++ {
					b.Set(i, j, full.Get(int((r-1)*brlen)+i, int((c-1)*bclen)+j))
				}
			}
			out[index.MatrixIndexes{Row: r, Col: c}] = b
		}
	}
	return out
}

func randomMatrix(rnd *rand.Rand, rows, cols int) *block.Dense {
	m := block.NewDense(rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if rnd.Intn(3) > 0 {
				m.Set(i, j, float64(rnd.Intn(10)-5))
			}
		}
	}
	return m
}

func TestMatchesReferenceProduct(t *testing.T) {
	dim1 := index.MatrixCharacteristics{Rows: 5, Cols: 7, RowsPerBlock: 2, ColsPerBlock: 3}
	dim2 := index.MatrixCharacteristics{Rows: 7, Cols: 4, RowsPerBlock: 3, ColsPerBlock: 3}
	rnd := rand.New(rand.NewSource(42))
	a := randomMatrix(rnd, 5, 7)
	b := randomMatrix(rnd, 7, 4)
	want := blocksOf(product(t, a, b).(*block.Dense), index.MatrixCharacteristics{
		Rows: 5, Cols: 4, RowsPerBlock: 2, ColsPerBlock: 3,
	})
	aBlocks, bBlocks := blocksOf(a, dim1), blocksOf(b, dim2)

	for _, capacity := range []int64{1, 2, 100} {
		sink := newCollectSink()
		arg := &Argument{
			Dim1:         dim1,
			Dim2:         dim2,
			MemoryBudget: capacity * OutCacheElementSize(2, 3),
			Sink:         sink,
		}
		proc := process.New(context.TODO(), "reference", process.Limitation{})
		require.NoError(t, arg.Prepare(proc))
		for k := int64(1); k <= dim1.NumColBlocks(); k++ {
			for i := int64(1); i <= dim1.NumRowBlocks(); i++ {
				v := aBlocks[index.MatrixIndexes{Row: i, Col: k}]
				require.NoError(t, arg.Reduce(proc, key(k, 0, i), []block.Block{v}))
			}
			for j := int64(1); j <= dim2.NumColBlocks(); j++ {
				v := bBlocks[index.MatrixIndexes{Row: k, Col: j}]
				require.NoError(t, arg.Reduce(proc, key(k, 1, j), []block.Block{v}))
				require.LessOrEqual(t, int64(arg.ctr.out.len()), capacity)
			}
		}
		require.NoError(t, arg.Close(proc))
		require.Len(t, sink.sums, len(want))
		for idx, w := range want {
			require.True(t, block.EqualApprox(w, sink.sums[idx], tol), "%s capacity %d", idx, capacity)
		}
	}
}

func TestNewArgumentFromConfig(t *testing.T) {
	cfg := &config.TaskParameters{
		MemoryBudget:  1 << 20,
		Dim1:          square(2),
		Dim2:          square(2),
		TagForLeft:    1,
		ResultIndexes: []int32{0},
		Operator:      "sum-product",
	}
	sink := newCollectSink()
	arg, err := NewArgumentFromConfig(cfg, sink, true)
	require.NoError(t, err)
	require.Equal(t, uint8(1), arg.TagForLeft)
	require.True(t, arg.OutputDummyRecords)
	require.Equal(t, "ba+*", arg.Op.Name)

	cfg.Operator = "max-min"
	_, err = NewArgumentFromConfig(cfg, sink, false)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrUnknownOperator))
}
