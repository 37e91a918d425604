// Package local runs pipelines against in-memory Datasets and Workspaces, for tests
package local

import (
	"context"
	"fmt"

	"github.com/go-sif/splitmerge"
	"github.com/go-sif/splitmerge/config"
	"github.com/go-sif/splitmerge/datasource/memory"
	"github.com/go-sif/splitmerge/pipeline"
)

// CreateConf returns a Conf for an in-memory run with a certain number of partitions and workers.
// A workers count of 0 runs sequentially.
func CreateConf(numPartitions int, numWorkers int) *config.Conf {
	conf := config.DefaultConf()
	conf.Workspace = config.MemoryWorkspace
	conf.PartitionCount = numPartitions
	if numWorkers > 0 {
		conf.ConcurrencyMode = splitmerge.Pooled
		conf.MaxWorkers = numWorkers
	} else {
		conf.ConcurrencyMode = splitmerge.Sequential
	}
	return conf
}

// RunTransform runs fn over input, returning the merged output
func RunTransform(ctx context.Context, input splitmerge.Dataset, fn splitmerge.UserTransform, conf *config.Conf) (out *memory.Output, result *pipeline.Result, err error) {
	defer recoverError(&err)
	p, err := pipeline.Create(fn, conf)
	if err != nil {
		return nil, nil, err
	}
	out = memory.CreateOutput(fmt.Sprintf("%s_out", input.Name()))
	result, err = p.Run(ctx, input, out)
	return out, result, err
}

// RunJoin joins input against target, returning the merged output and the unmatched keys
func RunJoin(ctx context.Context, input splitmerge.Dataset, target splitmerge.Dataset, leftKey string, rightKey string, conf *config.Conf) (out *memory.Output, unmatched *memory.Output, result *pipeline.JoinResult, err error) {
	defer recoverError(&err)
	p, err := pipeline.CreateJoin(target, leftKey, rightKey, conf)
	if err != nil {
		return nil, nil, nil, err
	}
	out = memory.CreateOutput(fmt.Sprintf("%s_joined", input.Name()))
	unmatched = memory.CreateOutput(fmt.Sprintf("%s_unmatched", input.Name()))
	p.SetUnmatchedOutput(unmatched)
	result, err = p.Run(ctx, input, out)
	return out, unmatched, result, err
}

// recoverError turns a panic carrying an error into a returned error
func recoverError(err *error) {
	if r := recover(); r != nil {
		if anErr, ok := r.(error); ok {
			*err = anErr
		} else {
			panic(r)
		}
	}
}
