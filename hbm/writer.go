package hbm

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/fluentmap/model"
)

// DirWriter writes documents to a directory in parallel, one
// <name>.hbm.xml file per document.
type DirWriter struct {
	dir     string
	workers int

	mu      sync.Mutex
	metrics WriterMetrics
}

// WriterMetrics tracks what a DirWriter produced.
type WriterMetrics struct {
	FilesWritten int
	TotalBytes   int64
}

// NewDirWriter returns a writer targeting dir.
func NewDirWriter(dir string) *DirWriter {
	return &DirWriter{dir: dir, workers: runtime.GOMAXPROCS(0)}
}

// WithWorkers sets the number of parallel workers.
func (w *DirWriter) WithWorkers(n int) *DirWriter {
	if n > 0 {
		w.workers = n
	}
	return w
}

// Metrics returns a snapshot of the writer metrics.
func (w *DirWriter) Metrics() WriterMetrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.metrics
}

// FileName returns the file name of doc. Documents sharing a name get a
// numeric suffix in WriteAll.
func FileName(doc *model.Document) string {
	return doc.Name() + ".hbm.xml"
}

// WriteAll writes docs and returns the written paths in document order.
func (w *DirWriter) WriteAll(ctx context.Context, docs []*model.Document) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("hbm: create output directory: %w", err)
	}
	paths := make([]string, len(docs))
	seen := make(map[string]int)
	for i, doc := range docs {
		name := doc.Name()
		if n := seen[name]; n > 0 {
			paths[i] = filepath.Join(w.dir, fmt.Sprintf("%s.%d.hbm.xml", name, n))
		} else {
			paths[i] = filepath.Join(w.dir, FileName(doc))
		}
		seen[name]++
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(w.workers)
	for i, doc := range docs {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return w.writeFile(paths[i], doc)
			}
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func (w *DirWriter) writeFile(path string, doc *model.Document) error {
	var buf bytes.Buffer
	if err := Write(&buf, doc); err != nil {
		return fmt.Errorf("hbm: encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("hbm: write %s: %w", filepath.Base(path), err)
	}
	w.mu.Lock()
	w.metrics.FilesWritten++
	w.metrics.TotalBytes += int64(buf.Len())
	w.mu.Unlock()
	return nil
}

// WriteDir writes docs to dir using all available workers.
func WriteDir(ctx context.Context, dir string, docs []*model.Document) ([]string, error) {
	return NewDirWriter(dir).WriteAll(ctx, docs)
}
