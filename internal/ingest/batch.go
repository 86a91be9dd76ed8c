package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/Werneck0live/personal-controller/internal/importer"
)

// FileError is a file the batch could not import.
type FileError struct {
	Path string `json:"path"`
	Err  string `json:"error"`
}

type BatchSummary struct {
	Files      []*Summary  `json:"files"`
	Failed     []FileError `json:"failed,omitempty"`
	Imported   int         `json:"imported"`
	Duplicates int         `json:"duplicates"`
	Skipped    int         `json:"skipped"`
	Indexed    int         `json:"indexed"`
}

func (b *BatchSummary) add(s *Summary) {
	b.Files = append(b.Files, s)
	b.Imported += s.Imported
	b.Duplicates += s.Duplicates
	b.Skipped += s.Skipped
	b.Indexed += s.Indexed
}

// Batch imports every regular file of dir in parallel. With KindAuto,
// files whose type cannot be detected are reported as failed.
func (s *Service) Batch(ctx context.Context, kind importer.Kind, dir string) (*BatchSummary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", importer.ErrImport, err)
	}
	var paths []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out = &BatchSummary{Files: []*Summary{}}
	)
	for _, p := range paths {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			sum, err := s.ImportFile(ctx, kind, p)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				out.Failed = append(out.Failed, FileError{Path: p, Err: err.Error()})
				return
			}
			out.add(sum)
		})
		if err != nil {
			wg.Done()
			mu.Lock()
			out.Failed = append(out.Failed, FileError{Path: p, Err: err.Error()})
			mu.Unlock()
		}
	}
	wg.Wait()

	sort.Slice(out.Files, func(i, j int) bool { return out.Files[i].Source < out.Files[j].Source })
	sort.Slice(out.Failed, func(i, j int) bool { return out.Failed[i].Path < out.Failed[j].Path })

	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, ctxErr
	}
	if len(out.Files) == 0 && len(out.Failed) > 0 {
		return out, errors.Join(importer.ErrImport, fmt.Errorf("no file of %s could be imported", dir))
	}
	s.log.Info("batch_done", "dir", dir, "files", len(out.Files), "failed", len(out.Failed), "imported", out.Imported)
	return out, nil
}
