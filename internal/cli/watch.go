package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/syssam/fluentmap/compiler/load"
)

// debounce collapses the burst of events editors emit on save.
const debounce = 100 * time.Millisecond

// projectFile returns the project file named by path.
func projectFile(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("cli: %w", err)
	}
	if fi.IsDir() {
		path = filepath.Join(path, load.DefaultFile)
	}
	return filepath.Abs(path)
}

// watch compiles the project and recompiles on every change of the project
// file until ctx is done. Compilation errors are logged and do not stop
// watching.
func (r *Runner) watch(ctx context.Context) error {
	file, err := projectFile(r.cfg.ProjectPath)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("cli: watch: %w", err)
	}
	defer w.Close()
	// Editors replace files on save, so watch the directory.
	if err := w.Add(filepath.Dir(file)); err != nil {
		return fmt.Errorf("cli: watch %s: %w", file, err)
	}
	r.rebuild(ctx)
	r.log.InfoContext(ctx, "watching", "file", file)

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != file || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			r.log.DebugContext(ctx, "project changed", "op", ev.Op.String())
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.log.WarnContext(ctx, "watch error", "error", err)
		case <-timer.C:
			r.rebuild(ctx)
		}
	}
}

func (r *Runner) rebuild(ctx context.Context) {
	start := time.Now()
	if _, err := r.Once(ctx); err != nil {
		r.log.ErrorContext(ctx, "compilation failed", "error", err)
		return
	}
	r.log.InfoContext(ctx, "compiled", "duration", time.Since(start))
}
