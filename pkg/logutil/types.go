// Copyright 2022 Matrix Origin
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

package logutil

import (
	"go.uber.org/zap/zapcore"
)

// LogConfig serializes log related config in toml/json.
type LogConfig struct {
	Level      string `toml:"level" user_setting:"basic"`
	Format     string `toml:"format" user_setting:"basic"`
	Filename   string `toml:"filename" user_setting:"basic"`
	MaxSize    int    `toml:"max-size"`
	MaxDays    int    `toml:"max-days"`
	MaxBackups int    `toml:"max-backups"`
	// StacktraceLevel is the level from which a stack trace is attached,
	// "panic" when empty.
	StacktraceLevel string `toml:"stacktrace-level"`
}

// ZapSink pairs an encoder with the syncer it writes to.
type ZapSink struct {
	enc zapcore.Encoder
	out zapcore.WriteSyncer
}
