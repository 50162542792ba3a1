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

package process

import (
	"context"
)

// New creates a process for task id with its own analyze info.
func New(ctx context.Context, id string, lim Limitation) *Process {
	return &Process{
		Id:       id,
		Ctx:      ctx,
		Lim:      lim,
		analInfo: NewAnalyzeInfo(0),
	}
}

// NewWithAnalyzeInfo creates a process reporting into info.
func NewWithAnalyzeInfo(ctx context.Context, id string, lim Limitation, info *AnalyzeInfo) *Process {
	return &Process{
		Id:       id,
		Ctx:      ctx,
		Lim:      lim,
		analInfo: info,
	}
}

func (proc *Process) GetAnalyze() Analyze {
	return &analyze{analInfo: proc.analInfo}
}

func (proc *Process) GetAnalyzeInfo() *AnalyzeInfo {
	return proc.analInfo
}
