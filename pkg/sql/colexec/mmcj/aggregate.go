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
	"github.com/matrixorigin/molinalg/pkg/container/block"
	"github.com/matrixorigin/molinalg/pkg/container/index"
	"github.com/matrixorigin/molinalg/pkg/vm/process"
)

// SumAggregator adds up all blocks delivered under the same key. The
// returned block is only valid until the next call.
type SumAggregator struct {
	buf block.Block
}

func (s *SumAggregator) Aggregate(proc *process.Process, _ index.TaggedFirstSecondIndexes, values []block.Block) (block.Block, error) {
	switch len(values) {
	case 0:
		return nil, nil
	case 1:
		return values[0], nil
	}
	if s.buf == nil || s.buf.IsSparse() != values[0].IsSparse() {
		s.buf = block.NewLike(values[0])
	}
	s.buf.Copy(values[0])
	for _, v := range values[1:] {
		if err := block.Accumulate(proc.Ctx, s.buf, v, block.Plus); err != nil {
			return nil, err
		}
	}
	return s.buf, nil
}
