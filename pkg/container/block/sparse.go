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
	"fmt"
	"sort"
)

var _ Block = new(Sparse)

type sparseRow struct {
	cols []int
	vals []float64
}

// Sparse keeps, for every row, the non-zero cells sorted by column.
type Sparse struct {
	rows, cols int
	data       []sparseRow
}

func NewSparse(rows, cols int) *Sparse {
	return &Sparse{rows: rows, cols: cols, data: make([]sparseRow, rows)}
}

func (s *Sparse) Rows() int      { return s.rows }
func (s *Sparse) Cols() int      { return s.cols }
func (s *Sparse) IsSparse() bool { return true }

func (s *Sparse) NonZeros() int64 {
	var n int64
	for i := 0; i < s.rows; i++ {
		n += int64(len(s.data[i].cols))
	}
	return n
}

func (s *Sparse) InMemorySize() int64 {
	size := int64(blockHeaderSize)
	for i := 0; i < s.rows; i++ {
		size += 48 + 16*int64(cap(s.data[i].cols))
	}
	return size
}

func (s *Sparse) Get(i, j int) float64 {
	r := &s.data[i]
	k := sort.SearchInts(r.cols, j)
	if k < len(r.cols) && r.cols[k] == j {
		return r.vals[k]
	}
	return 0
}

func (s *Sparse) Set(i, j int, v float64) {
	if j < 0 || j >= s.cols {
		panic(fmt.Sprintf("column %d out of range [0,%d)", j, s.cols))
	}
	r := &s.data[i]
	k := sort.SearchInts(r.cols, j)
	found := k < len(r.cols) && r.cols[k] == j
	switch {
	case found && v == 0:
		r.cols = append(r.cols[:k], r.cols[k+1:]...)
		r.vals = append(r.vals[:k], r.vals[k+1:]...)
	case found:
		r.vals[k] = v
	case v != 0:
		r.cols = append(r.cols, 0)
		r.vals = append(r.vals, 0)
		copy(r.cols[k+1:], r.cols[k:])
		copy(r.vals[k+1:], r.vals[k:])
		r.cols[k] = j
		r.vals[k] = v
	}
}

func (s *Sparse) Reset(rows, cols int) {
	if cap(s.data) >= rows {
		s.data = s.data[:rows]
	} else {
		s.data = append(s.data[:cap(s.data)], make([]sparseRow, rows-cap(s.data))...)
	}
	for i := range s.data {
		s.data[i].cols = s.data[i].cols[:0]
		s.data[i].vals = s.data[i].vals[:0]
	}
	s.rows, s.cols = rows, cols
}

func (s *Sparse) Copy(src Block) {
	s.Reset(src.Rows(), src.Cols())
	if o, ok := src.(*Sparse); ok {
		for i := range o.data {
			s.data[i].cols = append(s.data[i].cols, o.data[i].cols...)
			s.data[i].vals = append(s.data[i].vals, o.data[i].vals...)
		}
		return
	}
	src.ForEachNonZero(func(i, j int, v float64) {
		// row major visiting keeps every row sorted
		s.data[i].cols = append(s.data[i].cols, j)
		s.data[i].vals = append(s.data[i].vals, v)
	})
}

func (s *Sparse) ForEachNonZero(fn func(i, j int, v float64)) {
	for i := 0; i < s.rows; i++ {
		r := &s.data[i]
		for k, j := range r.cols {
			fn(i, j, r.vals[k])
		}
	}
}

func (s *Sparse) RowNonZeros(i int, fn func(j int, v float64)) {
	r := &s.data[i]
	for k, j := range r.cols {
		fn(j, r.vals[k])
	}
}

func (s *Sparse) String() string {
	return fmt.Sprintf("sparse %dx%d nnz=%d", s.rows, s.cols, s.NonZeros())
}
