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

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/matrixorigin/molinalg/pkg/blockio"
	"github.com/matrixorigin/molinalg/pkg/common/moerr"
	"github.com/matrixorigin/molinalg/pkg/config"
	"github.com/matrixorigin/molinalg/pkg/job"
	"github.com/matrixorigin/molinalg/pkg/logutil"
)

var (
	configFile = flag.String("cfg", "./etc/mmcj.toml", "toml configuration of the mmcj tasks")
	inputFile  = flag.String("input", "", "parquet file of tagged input records")
	outputFile = flag.String("output", "", "output file")
	format     = flag.String("format", blockio.FormatArrow, "output format, arrow or parquet")
	inputLZ4   = flag.Bool("input-lz4", false, "input file is lz4 framed")
	outputLZ4  = flag.Bool("lz4", false, "lz4 frame the output file")
)

func main() {
	flag.Parse()

	cfg, err := config.ParseConfigFromFile(*configFile)
	if err != nil {
		panic(fmt.Sprintf("failed to parse config from %s, error: %s", *configFile, err.Error()))
	}
	logutil.SetupMOLogger(&cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()
	if err := run(ctx, cfg); err != nil {
		logutil.Error("mmcj-run failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.TaskParameters) (err error) {
	if *inputFile == "" || *outputFile == "" {
		return moerr.NewInvalidArg(ctx, "input and output", "empty")
	}
	f, err := os.Open(*inputFile)
	if err != nil {
		return moerr.NewFileNotFound(ctx, *inputFile)
	}
	records, err := blockio.ReadTaggedRecords(ctx, f, *inputLZ4)
	if err != nil {
		return err
	}

	sink, err := blockio.CreateFileSink(ctx, *outputFile, *format, *outputLZ4)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sink.Close(); err == nil {
			err = cerr
		}
	}()

	res, err := job.NewRunner(cfg, sink).Run(ctx, records)
	if err != nil {
		return err
	}
	logutil.Info("mmcj-run done",
		zap.Int("records", len(records)),
		zap.Int64("blocks", res.OutputBlocks()),
		zap.String("output", *outputFile),
		zap.Duration("duration", res.Duration))
	return nil
}
