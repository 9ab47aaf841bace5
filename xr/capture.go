// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package xr

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/image/tiff"

	"github.com/gogpu/xr3d/render"
)

// FrameCapture writes the CPU pixels of rendered eye images to TIFF files,
// one file per view and frame. GPU-only color buffers are skipped.
type FrameCapture struct {
	dir    string
	limit  int
	frame  uint64
	frames map[uint64]bool
	files  []string
}

// NewFrameCapture captures up to limit frames into dir. A limit below one
// captures a single frame.
func NewFrameCapture(dir string, limit int) *FrameCapture {
	return &FrameCapture{
		dir:    dir,
		limit:  max(limit, 1),
		frames: make(map[uint64]bool),
	}
}

// BeginFrame starts frame n.
func (c *FrameCapture) BeginFrame(n uint64) { c.frame = n }

// Done reports whether the frame limit was reached.
func (c *FrameCapture) Done() bool { return len(c.frames) >= c.limit && !c.frames[c.frame] }

// Files returns the paths written so far.
func (c *FrameCapture) Files() []string { return c.files }

// Capture writes the layers of buf. view is the eye index, or -1 when buf
// holds every eye as array layers.
func (c *FrameCapture) Capture(view int, buf render.ColorBuffer) error {
	if !buf.HasPixels() || c.Done() {
		return nil
	}
	if err := os.MkdirAll(c.dir, 0o750); err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	c.frames[c.frame] = true

	var errs []error
	for i, layer := range buf.Layers {
		eye := view
		if view < 0 {
			eye = i
		}
		name := filepath.Join(c.dir, fmt.Sprintf("frame%05d_view%d.tiff", c.frame, eye))
		if err := writeTIFF(name, layer); err != nil {
			errs = append(errs, err)
			continue
		}
		c.files = append(c.files, name)
	}
	return errors.Join(errs...)
}

func writeTIFF(name string, layer *render.PixmapTarget) (err error) {
	f, err := os.Create(name) //nolint:gosec // capture directory is configured by the user
	if err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := tiff.Encode(f, layer.Image(), &tiff.Options{Compression: tiff.Deflate}); err != nil {
		return fmt.Errorf("capture %s: %w", name, err)
	}
	return nil
}
