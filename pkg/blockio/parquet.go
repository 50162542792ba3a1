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
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/parquet-go/parquet-go"

	"github.com/matrixorigin/molinalg/pkg/common/moerr"
	"github.com/matrixorigin/molinalg/pkg/container/block"
	"github.com/matrixorigin/molinalg/pkg/container/index"
	"github.com/matrixorigin/molinalg/pkg/shuffle"
)

// ParquetSink writes output blocks as OutputRecord rows.
type ParquetSink struct {
	sync.Mutex
	writer    *parquet.GenericWriter[OutputRecord]
	closer    io.Closer
	rows      []OutputRecord
	batchSize int
}

func NewParquetSink(w io.WriteCloser, compress bool) *ParquetSink {
	out, closer := wrapWriter(w, compress)
	return &ParquetSink{
		writer:    parquet.NewGenericWriter[OutputRecord](out),
		closer:    closer,
		batchSize: defaultBatchSize,
	}
}

func (s *ParquetSink) Emit(idx index.MatrixIndexes, value block.Block) error {
	s.Lock()
	defer s.Unlock()
	s.rows = append(s.rows, OutputRecord{
		Row:    idx.Row,
		Col:    idx.Col,
		Rows:   int32(value.Rows()),
		Cols:   int32(value.Cols()),
		Values: appendValues(nil, value),
	})
	if len(s.rows) >= s.batchSize {
		return s.flush()
	}
	return nil
}

func (s *ParquetSink) flush() error {
	if len(s.rows) == 0 {
		return nil
	}
	_, err := s.writer.Write(s.rows)
	s.rows = s.rows[:0]
	return err
}

func (s *ParquetSink) Close() error {
	s.Lock()
	defer s.Unlock()
	err := s.flush()
	if werr := s.writer.Close(); err == nil {
		err = werr
	}
	if cerr := s.closer.Close(); err == nil {
		err = cerr
	}
	return err
}

// readAll loads a parquet file into memory. An lz4 framed file has to be
// decompressed before parquet can seek in it.
func readAll[T any](r io.ReadCloser, compress bool) ([]T, error) {
	in, closer := wrapReader(r, compress)
	defer closer.Close()
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, err
	}
	reader := parquet.NewGenericReader[T](bytes.NewReader(data))
	defer reader.Close()
	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return rows[:n], nil
}

// ReadParquet decodes a file written by ParquetSink.
func ReadParquet(ctx context.Context, r io.ReadCloser, compress bool) ([]Output, error) {
	rows, err := readAll[OutputRecord](r, compress)
	if err != nil {
		return nil, err
	}
	outputs := make([]Output, 0, len(rows))
	for i := range rows {
		o, err := rows[i].decode(ctx)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, o)
	}
	return outputs, nil
}

// WriteTaggedRecords writes job input records.
func WriteTaggedRecords(w io.WriteCloser, compress bool, recs []shuffle.Record) error {
	out, closer := wrapWriter(w, compress)
	writer := parquet.NewGenericWriter[TaggedRecord](out)
	rows := make([]TaggedRecord, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, TaggedRecord{
			First:  rec.Key.First,
			Tag:    int32(rec.Key.Tag),
			Second: rec.Key.Second,
			Rows:   int32(rec.Value.Rows()),
			Cols:   int32(rec.Value.Cols()),
			Sparse: rec.Value.IsSparse(),
			Values: appendValues(nil, rec.Value),
		})
	}
	_, err := writer.Write(rows)
	if werr := writer.Close(); err == nil {
		err = werr
	}
	if cerr := closer.Close(); err == nil {
		err = cerr
	}
	return err
}

// ReadTaggedRecords reads job input records written by WriteTaggedRecords.
func ReadTaggedRecords(ctx context.Context, r io.ReadCloser, compress bool) ([]shuffle.Record, error) {
	rows, err := readAll[TaggedRecord](r, compress)
	if err != nil {
		return nil, err
	}
	recs := make([]shuffle.Record, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		if row.Tag != int32(index.TagLeft) && row.Tag != int32(index.TagRight) {
			return nil, moerr.NewInvalidInput(ctx, "record %d has tag %d", i, row.Tag)
		}
		b, err := decodeBlock(ctx, row.Rows, row.Cols, row.Sparse, row.Values)
		if err != nil {
			return nil, err
		}
		recs = append(recs, shuffle.Record{
			Key: index.TaggedFirstSecondIndexes{
				First:  row.First,
				Tag:    uint8(row.Tag),
				Second: row.Second,
			},
			Value: b,
		})
	}
	return recs, nil
}
