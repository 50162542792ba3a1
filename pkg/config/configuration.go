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

package config

import (
	"context"
	"os"
	"runtime"

	"github.com/BurntSushi/toml"

	"github.com/matrixorigin/molinalg/pkg/common/moerr"
	"github.com/matrixorigin/molinalg/pkg/container/block"
	"github.com/matrixorigin/molinalg/pkg/container/index"
	"github.com/matrixorigin/molinalg/pkg/logutil"
	"github.com/matrixorigin/molinalg/pkg/util/sysmem"
)

var (
	// getLocalMemBudget discovers the budget when none is configured.
	getLocalMemBudget = sysmem.LocalMemBudget

	defaultParallelism = runtime.NumCPU
)

const (
	defaultOperator  = "ba+*"
	defaultLogLevel  = "info"
	defaultLogFormat = "console"
)

// TaskParameters configures the mmcj tasks of one job.
type TaskParameters struct {
	//memory budget of the job in bytes, split evenly across the tasks.
	//default: 70% of physical memory
	MemoryBudget int64 `toml:"memory-budget"`

	//bytes reserved for the left operand cache, subtracted from each task's
	//share before sizing the output cache. default: 0
	MMCJCacheSize int64 `toml:"mmcj-cache-size"`

	//characteristics of the left (row) matrix
	Dim1 index.MatrixCharacteristics `toml:"dim1"`

	//characteristics of the right (column) matrix
	Dim2 index.MatrixCharacteristics `toml:"dim2"`

	//which input tag plays the row operand. default: 0
	TagForLeft uint8 `toml:"tag-for-left"`

	//indexes of the job results produced by the operator. mmcj produces one.
	ResultIndexes []int32 `toml:"result-indexes"`

	//aggregate binary operator. default: ba+*
	Operator string `toml:"operator"`

	//number of concurrent task instances. default: number of cpus
	Parallelism int `toml:"parallelism"`

	Log logutil.LogConfig `toml:"log"`
}

// ParseConfigFromFile decodes a toml file and fills the defaults.
func ParseConfigFromFile(file string) (*TaskParameters, error) {
	ctx := context.Background()
	if file == "" {
		return nil, moerr.NewNoConfig(ctx, "toml config file")
	}
	if _, err := os.Stat(file); err != nil {
		return nil, moerr.NewFileNotFound(ctx, file)
	}
	cfg := &TaskParameters{}
	if _, err := toml.DecodeFile(file, cfg); err != nil {
		return nil, moerr.NewBadConfig(ctx, "decode %s: %v", file, err)
	}
	cfg.SetDefaultValues()
	return cfg, nil
}

// ParseConfig decodes toml text and fills the defaults.
func ParseConfig(data string) (*TaskParameters, error) {
	cfg := &TaskParameters{}
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, moerr.NewBadConfig(context.Background(), "decode: %v", err)
	}
	cfg.SetDefaultValues()
	return cfg, nil
}

func (tp *TaskParameters) SetDefaultValues() {
	if tp.MemoryBudget == 0 {
		tp.MemoryBudget = getLocalMemBudget()
	}
	if len(tp.ResultIndexes) == 0 {
		tp.ResultIndexes = []int32{0}
	}
	if tp.Operator == "" {
		tp.Operator = defaultOperator
	}
	if tp.Parallelism <= 0 {
		tp.Parallelism = defaultParallelism()
	}
	if tp.Log.Level == "" {
		tp.Log.Level = defaultLogLevel
	}
	if tp.Log.Format == "" {
		tp.Log.Format = defaultLogFormat
	}
}

// Validate rejects configurations no task can start with.
func (tp *TaskParameters) Validate(ctx context.Context) error {
	if len(tp.ResultIndexes) > 1 {
		return moerr.NewBadConfig(ctx, "mmcj only outputs one result, got %d", len(tp.ResultIndexes))
	}
	if tp.TagForLeft != index.TagLeft && tp.TagForLeft != index.TagRight {
		return moerr.NewBadConfig(ctx, "tag-for-left must be 0 or 1, got %d", tp.TagForLeft)
	}
	if tp.Dim1.RowsPerBlock <= 0 || tp.Dim1.ColsPerBlock <= 0 ||
		tp.Dim2.RowsPerBlock <= 0 || tp.Dim2.ColsPerBlock <= 0 {
		return moerr.NewBadConfig(ctx, "block sizes must be positive")
	}
	if tp.Dim1.Cols != tp.Dim2.Rows {
		return moerr.NewBadConfig(ctx, "inner dimensions differ: %d vs %d", tp.Dim1.Cols, tp.Dim2.Rows)
	}
	if tp.MemoryBudget <= tp.MMCJCacheSize {
		return moerr.NewBadConfig(ctx, "memory budget %d does not exceed mmcj cache size %d",
			tp.MemoryBudget, tp.MMCJCacheSize)
	}
	if _, err := block.ParseAggregateBinaryOperator(ctx, tp.Operator); err != nil {
		return err
	}
	return nil
}
