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

	"github.com/pierrec/lz4/v4"

	"github.com/matrixorigin/molinalg/pkg/common/moerr"
	"github.com/matrixorigin/molinalg/pkg/container/block"
	"github.com/matrixorigin/molinalg/pkg/container/index"
)

// appendValues appends the cells of b in row major order.
func appendValues(dst []float64, b block.Block) []float64 {
	if d, ok := b.(*block.Dense); ok {
		return append(dst, d.Values()...)
	}
	start := len(dst)
	for i := 0; i < b.Rows()*b.Cols(); i++ {
		dst = append(dst, 0)
	}
	cols := b.Cols()
	b.ForEachNonZero(func(i, j int, v float64) {
		dst[start+i*cols+j] = v
	})
	return dst
}

func decodeBlock(ctx context.Context, rows, cols int32, sparse bool, values []float64) (block.Block, error) {
	if rows < 0 || cols < 0 || int(rows)*int(cols) != len(values) {
		return nil, moerr.NewInvalidInput(ctx, "block of %dx%d with %d values", rows, cols, len(values))
	}
	if !sparse {
		data := make([]float64, len(values))
		copy(data, values)
		return block.NewDenseFrom(int(rows), int(cols), data), nil
	}
	b := block.NewSparse(int(rows), int(cols))
	for k, v := range values {
		if v != 0 {
			b.Set(k/int(cols), k%int(cols), v)
		}
	}
	return b, nil
}

func (r *OutputRecord) decode(ctx context.Context) (Output, error) {
	b, err := decodeBlock(ctx, r.Rows, r.Cols, false, r.Values)
	if err != nil {
		return Output{}, err
	}
	return Output{Index: index.MatrixIndexes{Row: r.Row, Col: r.Col}, Value: b}, nil
}

// Sum adds up outputs per coordinate, the way a downstream consumer of
// several tasks combines them.
func Sum(ctx context.Context, outputs []Output) (map[index.MatrixIndexes]block.Block, error) {
	sums := make(map[index.MatrixIndexes]block.Block, len(outputs))
	for _, o := range outputs {
		if s, ok := sums[o.Index]; ok {
			if err := block.Accumulate(ctx, s, o.Value, block.Plus); err != nil {
				return nil, err
			}
			continue
		}
		s := block.NewDense(0, 0)
		s.Copy(o.Value)
		sums[o.Index] = s
	}
	return sums, nil
}

type multiCloser []io.Closer

func (mc multiCloser) Close() error {
	var first error
	for _, c := range mc {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// wrapWriter optionally puts an lz4 frame around w. Closing the returned
// closer flushes the frame and then closes w.
func wrapWriter(w io.WriteCloser, compress bool) (io.Writer, io.Closer) {
	if !compress {
		return w, w
	}
	zw := lz4.NewWriter(w)
	return zw, multiCloser{zw, w}
}

func wrapReader(r io.ReadCloser, compress bool) (io.Reader, io.Closer) {
	if !compress {
		return r, r
	}
	return lz4.NewReader(r), r
}
