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

package block

import (
	"bytes"
	"fmt"
)

// blockHeaderSize approximates the fixed per-block overhead.
const blockHeaderSize = 44

var _ Block = new(Dense)

// Dense stores the cells row major in a single slice.
type Dense struct {
	rows, cols int
	data       []float64
}

func NewDense(rows, cols int) *Dense {
	return &Dense{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

// NewDenseFrom wraps data, which must hold rows*cols values row major.
func NewDenseFrom(rows, cols int, data []float64) *Dense {
	if len(data) != rows*cols {
		panic(fmt.Sprintf("dense block %dx%d built from %d values", rows, cols, len(data)))
	}
	return &Dense{rows: rows, cols: cols, data: data}
}

func (d *Dense) Rows() int      { return d.rows }
func (d *Dense) Cols() int      { return d.cols }
func (d *Dense) IsSparse() bool { return false }

func (d *Dense) NonZeros() int64 {
	var n int64
	for _, v := range d.data {
		if v != 0 {
			n++
		}
	}
	return n
}

func (d *Dense) InMemorySize() int64 {
	return blockHeaderSize + 8*int64(cap(d.data))
}

func (d *Dense) Get(i, j int) float64 {
	return d.data[i*d.cols+j]
}

func (d *Dense) Set(i, j int, v float64) {
	d.data[i*d.cols+j] = v
}

// Values returns the row major backing slice.
func (d *Dense) Values() []float64 {
	return d.data
}

func (d *Dense) Reset(rows, cols int) {
	n := rows * cols
	if cap(d.data) >= n {
		d.data = d.data[:n]
		for i := range d.data {
			d.data[i] = 0
		}
	} else {
		d.data = make([]float64, n)
	}
	d.rows, d.cols = rows, cols
}

func (d *Dense) Copy(src Block) {
	if s, ok := src.(*Dense); ok {
		if cap(d.data) >= len(s.data) {
			d.data = d.data[:len(s.data)]
		} else {
			d.data = make([]float64, len(s.data))
		}
		copy(d.data, s.data)
		d.rows, d.cols = s.rows, s.cols
		return
	}
	d.Reset(src.Rows(), src.Cols())
	src.ForEachNonZero(func(i, j int, v float64) {
		d.data[i*d.cols+j] = v
	})
}

func (d *Dense) ForEachNonZero(fn func(i, j int, v float64)) {
	for i := 0; i < d.rows; i++ {
		row := d.data[i*d.cols : (i+1)*d.cols]
		for j, v := range row {
			if v != 0 {
				fn(i, j, v)
			}
		}
	}
}

func (d *Dense) RowNonZeros(i int, fn func(j int, v float64)) {
	row := d.data[i*d.cols : (i+1)*d.cols]
	for j, v := range row {
		if v != 0 {
			fn(j, v)
		}
	}
}

func (d *Dense) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "dense %dx%d nnz=%d", d.rows, d.cols, d.NonZeros())
	if d.rows*d.cols <= 16 {
		fmt.Fprintf(&buf, " %v", d.data)
	}
	return buf.String()
}
