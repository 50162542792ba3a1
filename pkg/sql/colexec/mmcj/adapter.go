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

package mmcj

import (
	"github.com/matrixorigin/molinalg/pkg/common/moerr"
	"github.com/matrixorigin/molinalg/pkg/container/block"
	"github.com/matrixorigin/molinalg/pkg/container/index"
	"github.com/matrixorigin/molinalg/pkg/vm/process"
)

// Reduce consumes all values delivered under one key. Keys must arrive
// grouped by join key (First) and, inside a group, with all tag 0 keys
// before the tag 1 keys.
func (arg *Argument) Reduce(proc *process.Process, key index.TaggedFirstSecondIndexes, values []block.Block) error {
	ctr := arg.ctr
	if ctr == nil {
		return moerr.NewInvalidState(proc.Ctx, "mmcj reduce before prepare")
	}
	if ctr.closed {
		return moerr.NewInvalidState(proc.Ctx, "mmcj reduce after close")
	}

	anal := proc.GetAnalyze()
	anal.Start()
	defer anal.Stop()
	anal.Input(int64(len(values)))

	value, err := arg.Aggregator.Aggregate(proc, key, values)
	if err != nil {
		return err
	}
	if value == nil {
		anal.Skip()
		return nil
	}

	tag := int(key.Tag)
	if tag != int(index.TagLeft) && tag != int(index.TagRight) {
		return moerr.NewInvalidInput(proc.Ctx, "tag %d of key %s", key.Tag, key)
	}
	if !ctr.started || key.First != ctr.prevFirstIndex {
		ctr.cache.reset()
		ctr.prevFirstIndex = key.First
		ctr.started = true
		anal.Group()
	} else if ctr.prevTag > tag {
		return moerr.NewTagOutOfOrder(proc.Ctx, uint8(ctr.prevTag), key.Tag, key.First)
	}

	if err := ctr.processJoin(arg, proc, anal, key.Tag, key.Second, value); err != nil {
		return err
	}
	ctr.prevTag = tag
	return nil
}
