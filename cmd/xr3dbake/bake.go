// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/gogpu/xr3d/shader"
	"github.com/gogpu/xr3d/shaderkey"
)

// job is one variant to bake.
type job struct {
	key      string
	features shader.Features
}

func jobsFromArgs(args []string, features shader.Features) []job {
	jobs := make([]job, 0, len(args))
	for _, a := range args {
		jobs = append(jobs, job{key: a, features: features})
	}
	return jobs
}

// readJobs reads a key file: one key per line, optionally followed by a
// tab and a feature list.
func readJobs(path string, defaults shader.Features) ([]job, error) {
	f, err := os.Open(path) //nolint:gosec // key file is a command line argument
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var jobs []job
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		j := job{key: text, features: defaults}
		if key, list, ok := strings.Cut(text, "\t"); ok {
			fs, err := shader.ParseFeatures(strings.TrimSpace(list))
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, line, err)
			}
			j = job{key: strings.TrimSpace(key), features: fs}
		}
		jobs = append(jobs, j)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return jobs, nil
}

// uniqueJobs drops repeated (key, features) pairs, keeping the first.
func uniqueJobs(jobs []job) []job {
	seen := make(map[job]bool, len(jobs))
	out := jobs[:0:0]
	for _, j := range jobs {
		if seen[j] {
			continue
		}
		seen[j] = true
		out = append(out, j)
	}
	return out
}

// bake compiles every distinct job through c on a worker pool. It returns
// one entry per distinct variant in job order, plus the number of failed
// jobs. Key strings that spell the same variant differently yield a single
// entry.
func bake(c *shader.Cache, jobs []job, workers int) ([]shader.CollectionEntry, int) {
	jobs = uniqueJobs(jobs)
	props := shaderkey.NewDefaultMaterialKeyProperties()
	results := make([]*shader.CollectionEntry, len(jobs))

	pool := worker.NewDynamicWorkerPool(max(workers, 1), 256, time.Second)
	defer pool.Stop()

	var wg sync.WaitGroup
	for i, j := range jobs {
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				entry, err := bakeOne(c, props, j)
				if err != nil {
					return nil, err
				}
				results[i] = entry
				return entry, nil
			},
		})
	}
	wg.Wait()

	entries := make([]shader.CollectionEntry, 0, len(jobs))
	seen := make(map[shader.CacheKey]bool, len(jobs))
	failed := 0
	for _, e := range results {
		if e == nil {
			failed++
			continue
		}
		if ck := e.CacheKey(); !seen[ck] {
			seen[ck] = true
			entries = append(entries, *e)
		}
	}
	return entries, failed
}

func bakeOne(c *shader.Cache, props *shaderkey.DefaultMaterialKeyProperties, j job) (*shader.CollectionEntry, error) {
	key := shaderkey.NewDefaultMaterialKey(0)
	if err := key.FromString(props, j.key); err != nil {
		return nil, err
	}
	p, err := c.GetOrCompile(props, &key, j.features, nil)
	if err != nil {
		return nil, err
	}
	entry := &shader.CollectionEntry{
		Key:      shader.MaterialCacheKey(props, &key),
		Features: j.features,
	}
	for _, s := range []shader.Stage{shader.StageVertex, shader.StageFragment} {
		if sh := p.Shader(s); sh != nil {
			entry.Shaders = append(entry.Shaders, *sh)
		}
	}
	return entry, nil
}
