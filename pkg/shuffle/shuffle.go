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

package shuffle

import (
	"context"
	"sync"

	"github.com/RoaringBitmap/roaring/roaring64"
	"github.com/google/btree"

	"github.com/matrixorigin/molinalg/pkg/common/moerr"
	"github.com/matrixorigin/molinalg/pkg/container/block"
	"github.com/matrixorigin/molinalg/pkg/container/index"
)

const defaultDegree = 32

// Record is one tagged block produced by a mapper.
type Record struct {
	Key   index.TaggedFirstSecondIndexes
	Value block.Block
}

// ReduceFunc receives every value of one key.
type ReduceFunc func(key index.TaggedFirstSecondIndexes, values []block.Block) error

type keyNode struct {
	key    index.TaggedFirstSecondIndexes
	values []block.Block
}

func (n *keyNode) Less(item btree.Item) bool {
	return n.key.Less(item.(*keyNode).key)
}

// Partition is the input of one reduce task: keys in reducer order and the
// set of join keys it owns.
type Partition struct {
	Id int

	tree     *btree.BTree
	joinKeys *roaring64.Bitmap
	records  int
}

func newPartition(id int) *Partition {
	return &Partition{
		Id:       id,
		tree:     btree.New(defaultDegree),
		joinKeys: roaring64.New(),
	}
}

func (p *Partition) add(rec Record) {
	probe := &keyNode{key: rec.Key}
	if item := p.tree.Get(probe); item != nil {
		n := item.(*keyNode)
		n.values = append(n.values, rec.Value)
	} else {
		probe.values = []block.Block{rec.Value}
		p.tree.ReplaceOrInsert(probe)
	}
	p.joinKeys.Add(uint64(rec.Key.First))
	p.records++
}

// Keys is the number of distinct keys.
func (p *Partition) Keys() int {
	return p.tree.Len()
}

// Records is the number of records added.
func (p *Partition) Records() int {
	return p.records
}

// JoinKeys returns the join keys owned by the partition. The bitmap must
// not be modified.
func (p *Partition) JoinKeys() *roaring64.Bitmap {
	return p.joinKeys
}

// Replay calls fn for every key in ascending (joinKey, tag, second) order.
// It stops at the first error or when ctx is done.
func (p *Partition) Replay(ctx context.Context, fn ReduceFunc) error {
	var err error
	p.tree.Ascend(func(item btree.Item) bool {
		if err = ctx.Err(); err != nil {
			return false
		}
		n := item.(*keyNode)
		err = fn(n.key, n.values)
		return err == nil
	})
	return err
}

// Shuffler routes records to partitions by join key.
type Shuffler struct {
	sync.Mutex
	partitions []*Partition
}

func New(n int) *Shuffler {
	if n <= 0 {
		n = 1
	}
	s := &Shuffler{partitions: make([]*Partition, n)}
	for i := range s.partitions {
		s.partitions[i] = newPartition(i)
	}
	return s
}

// PartitionOf returns the partition a join key belongs to.
func (s *Shuffler) PartitionOf(joinKey int64) int {
	n := int64(len(s.partitions))
	return int(((joinKey % n) + n) % n)
}

func (s *Shuffler) Add(rec Record) {
	s.Lock()
	defer s.Unlock()
	s.partitions[s.PartitionOf(rec.Key.First)].add(rec)
}

func (s *Shuffler) AddAll(recs []Record) {
	s.Lock()
	defer s.Unlock()
	for _, rec := range recs {
		s.partitions[s.PartitionOf(rec.Key.First)].add(rec)
	}
}

func (s *Shuffler) Partitions() []*Partition {
	return s.partitions
}

// CheckDisjoint fails if two partitions own the same join key.
func CheckDisjoint(ctx context.Context, parts []*Partition) error {
	for i := 0; i < len(parts); i++ {
		for j := i + 1; j < len(parts); j++ {
			shared := roaring64.And(parts[i].joinKeys, parts[j].joinKeys)
			if !shared.IsEmpty() {
				return moerr.NewInternalError(ctx, "partitions %d and %d share %d join keys",
					parts[i].Id, parts[j].Id, shared.GetCardinality())
			}
		}
	}
	return nil
}
