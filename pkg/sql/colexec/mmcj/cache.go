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
)

const defaultCacheSlots = 100

// leftCache holds the tagged 0 blocks of the current join key. Slots are
// never freed: slots[:size] are live, slots[size:] wait to be overwritten
// by the next join key.
type leftCache struct {
	slots []*remainIndexValue
	size  int
}

func (c *leftCache) reset() {
	c.size = 0
}

func (c *leftCache) add(remainIndex int64, b block.Block) {
	if c.slots == nil {
		c.slots = make([]*remainIndexValue, 0, defaultCacheSlots)
	}
	if c.size < len(c.slots) {
		c.slots[c.size].set(remainIndex, b)
	} else {
		slot := &remainIndexValue{}
		slot.set(remainIndex, b)
		c.slots = append(c.slots, slot)
	}
	c.size++
}

func (c *leftCache) get(i int) *remainIndexValue {
	return c.slots[i]
}

// forEach visits the live entries in insertion order and stops at the first
// error.
func (c *leftCache) forEach(fn func(*remainIndexValue) error) error {
	for i := 0; i < c.size; i++ {
		if err := fn(c.slots[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c *leftCache) inMemorySize() int64 {
	var size int64
	for _, s := range c.slots {
		size += s.value.InMemorySize()
	}
	return size
}
