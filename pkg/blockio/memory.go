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
	"sync"

	"github.com/matrixorigin/molinalg/pkg/container/block"
	"github.com/matrixorigin/molinalg/pkg/container/index"
)

// MemorySink keeps a copy of every emitted block. It is safe for concurrent
// use by several tasks.
type MemorySink struct {
	sync.Mutex
	outputs []Output
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Emit(idx index.MatrixIndexes, value block.Block) error {
	cp := block.NewLike(value)
	cp.Copy(value)
	s.Lock()
	s.outputs = append(s.outputs, Output{Index: idx, Value: cp})
	s.Unlock()
	return nil
}

func (s *MemorySink) Close() error {
	return nil
}

func (s *MemorySink) Len() int {
	s.Lock()
	defer s.Unlock()
	return len(s.outputs)
}

// Outputs returns the emitted blocks in emission order.
func (s *MemorySink) Outputs() []Output {
	s.Lock()
	defer s.Unlock()
	out := make([]Output, len(s.outputs))
	copy(out, s.outputs)
	return out
}

func (s *MemorySink) Sum(ctx context.Context) (map[index.MatrixIndexes]block.Block, error) {
	return Sum(ctx, s.Outputs())
}
