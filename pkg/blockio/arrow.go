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

package blockio

import (
	"context"
	"io"
	"sync"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/matrixorigin/molinalg/pkg/common/moerr"
	"github.com/matrixorigin/molinalg/pkg/container/block"
	"github.com/matrixorigin/molinalg/pkg/container/index"
)

var outputSchema = arrow.NewSchema([]arrow.Field{
	{Name: "row", Type: arrow.PrimitiveTypes.Int64},
	{Name: "col", Type: arrow.PrimitiveTypes.Int64},
	{Name: "rows", Type: arrow.PrimitiveTypes.Int32},
	{Name: "cols", Type: arrow.PrimitiveTypes.Int32},
	{Name: "values", Type: arrow.ListOf(arrow.PrimitiveTypes.Float64)},
}, nil)

// ArrowSink writes output blocks as an Arrow IPC stream, one record batch
// per batchSize blocks.
type ArrowSink struct {
	sync.Mutex
	mem       memory.Allocator
	builder   *array.RecordBuilder
	writer    *ipc.Writer
	closer    io.Closer
	pending   int
	batchSize int
	scratch   []float64
}

func NewArrowSink(w io.WriteCloser, compress bool) *ArrowSink {
	mem := memory.NewGoAllocator()
	out, closer := wrapWriter(w, compress)
	return &ArrowSink{
		mem:       mem,
		builder:   array.NewRecordBuilder(mem, outputSchema),
		writer:    ipc.NewWriter(out, ipc.WithSchema(outputSchema), ipc.WithAllocator(mem)),
		closer:    closer,
		batchSize: defaultBatchSize,
	}
}

func (s *ArrowSink) Emit(idx index.MatrixIndexes, value block.Block) error {
	s.Lock()
	defer s.Unlock()
	s.builder.Field(0).(*array.Int64Builder).Append(idx.Row)
	s.builder.Field(1).(*array.Int64Builder).Append(idx.Col)
	s.builder.Field(2).(*array.Int32Builder).Append(int32(value.Rows()))
	s.builder.Field(3).(*array.Int32Builder).Append(int32(value.Cols()))
	lb := s.builder.Field(4).(*array.ListBuilder)
	lb.Append(true)
	s.scratch = appendValues(s.scratch[:0], value)
	lb.ValueBuilder().(*array.Float64Builder).AppendValues(s.scratch, nil)
	s.pending++
	if s.pending >= s.batchSize {
		return s.flush()
	}
	return nil
}

func (s *ArrowSink) flush() error {
	if s.pending == 0 {
		return nil
	}
	rec := s.builder.NewRecord()
	defer rec.Release()
	s.pending = 0
	return s.writer.Write(rec)
}

func (s *ArrowSink) Close() error {
	s.Lock()
	defer s.Unlock()
	err := s.flush()
	if werr := s.writer.Close(); err == nil {
		err = werr
	}
	s.builder.Release()
	if cerr := s.closer.Close(); err == nil {
		err = cerr
	}
	return err
}

// ReadArrow decodes a stream written by ArrowSink.
func ReadArrow(ctx context.Context, r io.ReadCloser, compress bool) ([]Output, error) {
	in, closer := wrapReader(r, compress)
	defer closer.Close()
	rd, err := ipc.NewReader(in, ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, err
	}
	defer rd.Release()
	if rd.Schema().NumFields() != outputSchema.NumFields() {
		return nil, moerr.NewInvalidInput(ctx, "unexpected arrow schema %s", rd.Schema())
	}

	var outputs []Output
	for rd.Next() {
		rec := rd.Record()
		rowCol := rec.Column(0).(*array.Int64)
		colCol := rec.Column(1).(*array.Int64)
		rowsCol := rec.Column(2).(*array.Int32)
		colsCol := rec.Column(3).(*array.Int32)
		list := rec.Column(4).(*array.List)
		values := list.ListValues().(*array.Float64).Float64Values()
		offsets := list.Offsets()
		for i := 0; i < int(rec.NumRows()); i++ {
			b, err := decodeBlock(ctx, rowsCol.Value(i), colsCol.Value(i), false,
				values[offsets[i]:offsets[i+1]])
			if err != nil {
				return nil, err
			}
			outputs = append(outputs, Output{
				Index: index.MatrixIndexes{Row: rowCol.Value(i), Col: colCol.Value(i)},
				Value: b,
			})
		}
	}
	if err := rd.Err(); err != nil {
		return nil, err
	}
	return outputs, nil
}
