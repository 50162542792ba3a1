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
	"os"
	"strings"

	"github.com/matrixorigin/molinalg/pkg/common/moerr"
)

// CreateFileSink creates path and returns a sink of the given format.
func CreateFileSink(ctx context.Context, path, format string, compress bool) (FileSink, error) {
	format = strings.ToLower(format)
	if format != FormatArrow && format != FormatParquet {
		return nil, moerr.NewNotSupported(ctx, "output format %s", format)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, moerr.ConvertGoError(ctx, err)
	}
	if format == FormatArrow {
		return NewArrowSink(f, compress), nil
	}
	return NewParquetSink(f, compress), nil
}

// ReadOutputFile reads a file written by a sink from CreateFileSink.
func ReadOutputFile(ctx context.Context, path, format string, compress bool) ([]Output, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, moerr.NewFileNotFound(ctx, path)
	}
	switch strings.ToLower(format) {
	case FormatArrow:
		return ReadArrow(ctx, f, compress)
	case FormatParquet:
		return ReadParquet(ctx, f, compress)
	}
	f.Close()
	return nil, moerr.NewNotSupported(ctx, "output format %s", format)
}
