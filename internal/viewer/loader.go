// Package viewer wires surface loading, the scene graph, the camera and the
// gaze cursor into the interactive spatial mapping viewer.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/spatial-viewer/internal/config"
	"github.com/Faultbox/spatial-viewer/internal/logger"
	"github.com/Faultbox/spatial-viewer/pkg/spatial"
)

// Loader errors.
var (
	ErrNoFiles    = errors.New("no surface files found")
	ErrNoSurfaces = errors.New("no usable surfaces")
)

// LoadReport summarizes a LoadSurfaces run. Err combines every per-file
// and per-record failure; the run can still succeed when it is non-nil.
type LoadReport struct {
	Files    []string
	Surfaces int
	Err      error
	Elapsed  time.Duration
}

// Failures returns the individual errors held in Err.
func (r LoadReport) Failures() []error {
	return multierr.Errors(r.Err)
}

// FindSurfaceFiles returns the files in dir matching any pattern, sorted
// and without duplicates.
func FindSurfaceFiles(dir string, patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, p := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, p))
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

type fileResult struct {
	records []*spatial.SurfaceRecord
	errs    []error
}

// LoadSurfaces parses every surface file in cfg.Dir in parallel. Broken
// files and records are logged and skipped. The records come back sorted
// by name. It fails only when nothing usable was found or ctx ends.
func LoadSurfaces(ctx context.Context, cfg config.DataConfig) ([]*spatial.SurfaceRecord, LoadReport, error) {
	log := logger.Named("loader")
	start := time.Now()

	files, err := FindSurfaceFiles(cfg.Dir, cfg.Patterns)
	if err != nil {
		return nil, LoadReport{}, err
	}
	report := LoadReport{Files: files}
	if len(files) == 0 {
		return nil, report, fmt.Errorf("%w in %s (patterns %v)", ErrNoFiles, cfg.Dir, cfg.Patterns)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]fileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			recs, errs := spatial.LoadFile(path)
			results[i] = fileResult{records: recs, errs: errs}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, report, fmt.Errorf("loading surfaces: %w", err)
	}

	var records []*spatial.SurfaceRecord
	for i, res := range results {
		for _, e := range res.errs {
			log.Warn("skipping surface", zap.Error(e))
			report.Err = multierr.Append(report.Err, e)
		}
		log.Debug("surface file parsed",
			zap.String("file", filepath.Base(files[i])),
			zap.Int("surfaces", len(res.records)),
			zap.Int("errors", len(res.errs)),
		)
		records = append(records, res.records...)
	}

	sort.SliceStable(records, func(a, b int) bool {
		if records[a].Name() != records[b].Name() {
			return records[a].Name() < records[b].Name()
		}
		return records[a].ID < records[b].ID
	})

	report.Surfaces = len(records)
	report.Elapsed = time.Since(start)
	log.Info("surfaces loaded",
		zap.Int("files", len(files)),
		zap.Int("surfaces", report.Surfaces),
		zap.Int("failures", len(report.Failures())),
		zap.Duration("elapsed", report.Elapsed),
	)

	if len(records) == 0 {
		if report.Err != nil {
			return nil, report, fmt.Errorf("%w in %s: %w", ErrNoSurfaces, cfg.Dir, report.Err)
		}
		return nil, report, fmt.Errorf("%w in %s", ErrNoSurfaces, cfg.Dir)
	}
	return records, report, nil
}
