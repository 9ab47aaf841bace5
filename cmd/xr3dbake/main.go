// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command xr3dbake precompiles default material shader variants into a
// shader collection file.
//
// Usage:
//
//	xr3dbake [flags] [key ...]
//
// Keys are material key strings as printed by DefaultMaterialKey.String.
// With -keys, one key per line is read from a file; a line may carry a
// tab and a '|' separated feature list overriding -features. Empty lines
// and lines starting with '#' are skipped.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/muesli/termenv"

	"github.com/gogpu/xr3d"
	"github.com/gogpu/xr3d/config"
	"github.com/gogpu/xr3d/shader"
)

func main() {
	var (
		configPath = flag.String("config", "", "config file (.toml or .yaml)")
		keysPath   = flag.String("keys", "", "file with one material key per line")
		features   = flag.String("features", "", "'|' separated shader features, e.g. Ssao|AcesTonemapping")
		targets    = flag.String("targets", "", "comma separated targets (spirv, glsl, msl, hlsl); overrides the config")
		output     = flag.String("o", "", "output file (default <shader.cache_dir>/"+shader.CollectionFile()+")")
		workers    = flag.Int("j", runtime.NumCPU(), "parallel bake workers")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		xr3d.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	if err := run(*configPath, *keysPath, *features, *targets, *output, *workers, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "xr3dbake:", err)
		os.Exit(1)
	}
}

func run(configPath, keysPath, featureList, targetList, output string, workers int, args []string) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}
	if targetList != "" {
		cfg.Shader.Targets = strings.Split(targetList, ",")
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	defaults, err := shader.ParseFeatures(featureList)
	if err != nil {
		return err
	}
	jobs := jobsFromArgs(args, defaults)
	if keysPath != "" {
		fileJobs, err := readJobs(keysPath, defaults)
		if err != nil {
			return err
		}
		jobs = append(jobs, fileJobs...)
	}
	if len(jobs) == 0 {
		return fmt.Errorf("no material keys given")
	}

	if output == "" {
		output = filepath.Join(cfg.Shader.CacheDir, shader.CollectionFile())
	}

	out := termenv.NewOutput(os.Stdout)
	ctx, err := xr3d.NewContext(xr3d.WithConfig(cfg), xr3d.WithStatusCallback(statusPrinter(out)))
	if err != nil {
		return err
	}
	defer ctx.Close()

	entries, failed := bake(ctx.ShaderCache(), jobs, workers)
	if len(entries) > 0 {
		if err := writeCollection(output, entries); err != nil {
			return err
		}
	}

	summary := fmt.Sprintf("%d variants baked into %s, %d failed", len(entries), output, failed)
	if failed > 0 {
		fmt.Fprintln(os.Stdout, out.String(summary).Foreground(out.Color("1")).Bold())
		return fmt.Errorf("%d variants failed", failed)
	}
	fmt.Fprintln(os.Stdout, out.String(summary).Foreground(out.Color("2")).Bold())
	return nil
}

// statusPrinter prints one colored line per baked stage.
func statusPrinter(out *termenv.Output) shader.StatusCallback {
	return func(key string, status shader.BakeStatus, errMsg string, stage shader.Stage) {
		if len(key) > 60 {
			key = key[:57] + "..."
		}
		if status == shader.StatusSuccess {
			fmt.Fprintf(os.Stdout, "%s %-8s %s\n", out.String("ok").Foreground(out.Color("2")), stage, key)
			return
		}
		fmt.Fprintf(os.Stdout, "%s %-8s %s\n    %s\n", out.String("error").Foreground(out.Color("1")), stage, key, errMsg)
	}
}

func writeCollection(path string, entries []shader.CollectionEntry) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return err
		}
	}
	f, err := os.Create(path) //nolint:gosec // output path is a command line argument
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return shader.WriteCollection(f, entries)
}
