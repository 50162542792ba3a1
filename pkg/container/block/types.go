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

// Block is one tile of a block-partitioned float64 matrix.
//
// Callers outside this package treat a Block as opaque: they copy, reset,
// accumulate and multiply blocks through the functions of this package and
// never look at the representation.
type Block interface {
	Rows() int
	Cols() int
	IsSparse() bool
	NonZeros() int64
	// InMemorySize is the estimated number of bytes held by the block.
	InMemorySize() int64

	Get(i, j int) float64
	Set(i, j int, v float64)

	// Reset resizes the block to rows x cols with every cell zero. The
	// underlying storage is reused when it is large enough.
	Reset(rows, cols int)
	// Copy overwrites the block with the shape and content of src.
	Copy(src Block)

	// ForEachNonZero visits the non-zero cells in row major order.
	ForEachNonZero(fn func(i, j int, v float64))
	// RowNonZeros visits the non-zero cells of row i in column order.
	RowNonZeros(i int, fn func(j int, v float64))

	String() string
}

// BinaryFunc combines two cell values.
type BinaryFunc func(a, b float64) float64

// BinaryOperator is a named cell wise function.
type BinaryOperator struct {
	Name string
	Fn   BinaryFunc
}

// AggregateOperator folds values into an accumulator starting from
// InitialValue with IncrementalOp.
type AggregateOperator struct {
	InitialValue  float64
	IncrementalOp BinaryOperator
}

// AggregateBinaryOperator describes a matrix product over a semiring: cells
// are combined with BinaryOp and reduced with AggOp.
type AggregateBinaryOperator struct {
	Name     string
	BinaryOp BinaryOperator
	AggOp    AggregateOperator
}
