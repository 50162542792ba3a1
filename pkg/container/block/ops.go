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
	"context"
	"math"
	"strings"

	"github.com/matrixorigin/molinalg/pkg/common/moerr"
)

var (
	Plus = BinaryOperator{
		Name: "+",
		Fn:   func(a, b float64) float64 { return a + b },
	}
	Multiply = BinaryOperator{
		Name: "*",
		Fn:   func(a, b float64) float64 { return a * b },
	}

	SumAggregate = AggregateOperator{
		InitialValue:  0,
		IncrementalOp: Plus,
	}
)

// SumProduct returns the ordinary matrix product operator.
func SumProduct() *AggregateBinaryOperator {
	return &AggregateBinaryOperator{
		Name:     "ba+*",
		BinaryOp: Multiply,
		AggOp:    SumAggregate,
	}
}

// ParseAggregateBinaryOperator resolves an operator by name.
func ParseAggregateBinaryOperator(ctx context.Context, name string) (*AggregateBinaryOperator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "ba+*", "sum-product":
		return SumProduct(), nil
	default:
		return nil, moerr.NewUnknownOperator(ctx, name)
	}
}

// New allocates a zero block of the requested representation.
func New(rows, cols int, sparse bool) Block {
	if sparse {
		return NewSparse(rows, cols)
	}
	return NewDense(rows, cols)
}

// NewLike allocates an empty block with the representation of b.
func NewLike(b Block) Block {
	return New(0, 0, b.IsSparse())
}

// AggregateBinary computes out = left (x) right under op, overwriting out.
// The inner dimensions must agree.
func AggregateBinary(ctx context.Context, left, right, out Block, op *AggregateBinaryOperator) error {
	if left.Cols() != right.Rows() {
		return moerr.NewShapeMismatch(ctx, "%dx%d * %dx%d",
			left.Rows(), left.Cols(), right.Rows(), right.Cols())
	}
	out.Reset(left.Rows(), right.Cols())

	mul := op.BinaryOp.Fn
	agg := op.AggOp.IncrementalOp.Fn
	if !op.skipsZeros() {
		genericAggregateBinary(left, right, out, mul, agg, op.AggOp.InitialValue)
		return nil
	}
	l, lok := left.(*Dense)
	r, rok := right.(*Dense)
	o, ook := out.(*Dense)
	if lok && rok && ook {
		denseAggregateBinary(l, r, o, mul, agg)
		return nil
	}
	left.ForEachNonZero(func(i, k int, a float64) {
		right.RowNonZeros(k, func(j int, b float64) {
			out.Set(i, j, agg(out.Get(i, j), mul(a, b)))
		})
	})
	return nil
}

// skipsZeros reports whether zero cells can be left out of a product, which
// holds for the (+, *) semiring only.
func (op *AggregateBinaryOperator) skipsZeros() bool {
	return op.BinaryOp.Name == Multiply.Name &&
		op.AggOp.IncrementalOp.Name == Plus.Name &&
		op.AggOp.InitialValue == 0
}

// denseAggregateBinary is the i-k-j loop over the raw slices.
func denseAggregateBinary(l, r, o *Dense, mul, agg BinaryFunc) {
	n := r.cols
	for i := 0; i < l.rows; i++ {
		orow := o.data[i*n : (i+1)*n]
		lrow := l.data[i*l.cols : (i+1)*l.cols]
		for k, a := range lrow {
			if a == 0 {
				continue
			}
			rrow := r.data[k*n : (k+1)*n]
			for j, b := range rrow {
				orow[j] = agg(orow[j], mul(a, b))
			}
		}
	}
}

// genericAggregateBinary visits every cell, zeros included.
func genericAggregateBinary(left, right, out Block, mul, agg BinaryFunc, initial float64) {
	for i := 0; i < left.Rows(); i++ {
		for j := 0; j < right.Cols(); j++ {
			acc := initial
			for k := 0; k < left.Cols(); k++ {
				acc = agg(acc, mul(left.Get(i, k), right.Get(k, j)))
			}
			out.Set(i, j, acc)
		}
	}
}

// Accumulate folds src into dst cell by cell with op. Shapes must match.
func Accumulate(ctx context.Context, dst, src Block, op BinaryOperator) error {
	if dst.Rows() != src.Rows() || dst.Cols() != src.Cols() {
		return moerr.NewShapeMismatch(ctx, "%dx%d += %dx%d",
			dst.Rows(), dst.Cols(), src.Rows(), src.Cols())
	}
	d, dok := dst.(*Dense)
	s, sok := src.(*Dense)
	if dok && sok {
		for i, v := range s.data {
			d.data[i] = op.Fn(d.data[i], v)
		}
		return nil
	}
	if op.Name != Plus.Name {
		for i := 0; i < src.Rows(); i++ {
			for j := 0; j < src.Cols(); j++ {
				dst.Set(i, j, op.Fn(dst.Get(i, j), src.Get(i, j)))
			}
		}
		return nil
	}
	src.ForEachNonZero(func(i, j int, v float64) {
		dst.Set(i, j, op.Fn(dst.Get(i, j), v))
	})
	return nil
}

// Fill sets every cell of b to v.
func Fill(b Block, v float64) {
	b.Reset(b.Rows(), b.Cols())
	if v == 0 {
		return
	}
	for i := 0; i < b.Rows(); i++ {
		for j := 0; j < b.Cols(); j++ {
			b.Set(i, j, v)
		}
	}
}

// EqualApprox reports whether a and b have the same shape and every cell
// differs by at most tol.
func EqualApprox(a, b Block, tol float64) bool {
	if a.Rows() != b.Rows() || a.Cols() != b.Cols() {
		return false
	}
	for i := 0; i < a.Rows(); i++ {
		for j := 0; j < a.Cols(); j++ {
			if math.Abs(a.Get(i, j)-b.Get(i, j)) > tol {
				return false
			}
		}
	}
	return true
}
