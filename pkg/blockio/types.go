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

// Package blockio reads job input records and writes operator output
// blocks to memory, Arrow IPC streams and parquet files.
package blockio

import (
	"github.com/matrixorigin/molinalg/pkg/container/block"
	"github.com/matrixorigin/molinalg/pkg/container/index"
)

const (
	FormatArrow   = "arrow"
	FormatParquet = "parquet"

	defaultBatchSize = 1024
)

// Output is one emitted block.
type Output struct {
	Index index.MatrixIndexes
	Value block.Block
}

// FileSink is a sink backed by a file. Close flushes buffered blocks.
type FileSink interface {
	Emit(idx index.MatrixIndexes, value block.Block) error
	Close() error
}

// OutputRecord is the row layout of an output block in parquet files.
// Values are row major and always dense.
type OutputRecord struct {
	Row    int64     `parquet:"row"`
	Col    int64     `parquet:"col"`
	Rows   int32     `parquet:"rows"`
	Cols   int32     `parquet:"cols"`
	Values []float64 `parquet:"values"`
}

// TaggedRecord is the row layout of a job input record.
type TaggedRecord struct {
	First  int64     `parquet:"first"`
	Tag    int32     `parquet:"tag"`
	Second int64     `parquet:"second"`
	Rows   int32     `parquet:"rows"`
	Cols   int32     `parquet:"cols"`
	Sparse bool      `parquet:"sparse"`
	Values []float64 `parquet:"values"`
}
