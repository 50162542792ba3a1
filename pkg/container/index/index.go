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

package index

import (
	"encoding/binary"
	"fmt"
)

const (
	// TagLeft marks records of the operand that is cached per join key.
	TagLeft uint8 = 0
	// TagRight marks records of the probing operand.
	TagRight uint8 = 1
)

// MatrixIndexes is the 1-based (row, column) index of a block inside a
// block-partitioned matrix.
type MatrixIndexes struct {
	Row int64
	Col int64
}

func (ix MatrixIndexes) String() string {
	return fmt.Sprintf("(%d,%d)", ix.Row, ix.Col)
}

// Less orders indexes row major.
func (ix MatrixIndexes) Less(o MatrixIndexes) bool {
	if ix.Row != o.Row {
		return ix.Row < o.Row
	}
	return ix.Col < o.Col
}

func (ix MatrixIndexes) Compare(o MatrixIndexes) int {
	switch {
	case ix.Less(o):
		return -1
	case o.Less(ix):
		return 1
	default:
		return 0
	}
}

// AppendBytes appends the 16 byte big endian encoding of ix, suitable as a
// hash or sort key.
func (ix MatrixIndexes) AppendBytes(buf []byte) []byte {
	buf = binary.BigEndian.AppendUint64(buf, uint64(ix.Row))
	return binary.BigEndian.AppendUint64(buf, uint64(ix.Col))
}

// TaggedFirstSecondIndexes is the shuffle key of a tagged block record.
// First is the join key (the contracted dimension), Second is the index the
// operand keeps.
type TaggedFirstSecondIndexes struct {
	First  int64
	Tag    uint8
	Second int64
}

func (k TaggedFirstSecondIndexes) String() string {
	return fmt.Sprintf("(%d,%d,%d)", k.First, k.Tag, k.Second)
}

// Less orders keys by join key, then tag, then second index. This is the
// order a reducer expects its input in.
func (k TaggedFirstSecondIndexes) Less(o TaggedFirstSecondIndexes) bool {
	if k.First != o.First {
		return k.First < o.First
	}
	if k.Tag != o.Tag {
		return k.Tag < o.Tag
	}
	return k.Second < o.Second
}

// MatrixCharacteristics describes the logical size and blocking of a matrix.
type MatrixCharacteristics struct {
	Rows         int64 `toml:"rows"`
	Cols         int64 `toml:"cols"`
	RowsPerBlock int32 `toml:"rows-per-block"`
	ColsPerBlock int32 `toml:"cols-per-block"`
}

// NumRowBlocks returns the number of block rows, a partial last block
// included.
func (mc MatrixCharacteristics) NumRowBlocks() int64 {
	if mc.RowsPerBlock <= 0 {
		return 0
	}
	return (mc.Rows + int64(mc.RowsPerBlock) - 1) / int64(mc.RowsPerBlock)
}

// NumColBlocks returns the number of block columns, a partial last block
// included.
func (mc MatrixCharacteristics) NumColBlocks() int64 {
	if mc.ColsPerBlock <= 0 {
		return 0
	}
	return (mc.Cols + int64(mc.ColsPerBlock) - 1) / int64(mc.ColsPerBlock)
}
