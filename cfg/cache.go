package cfg

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/fluentmap"
)

// cacheVersion is bumped whenever the cached layout changes.
const cacheVersion = 1

type cacheEntry struct {
	Version    int               `msgpack:"version"`
	Properties map[string]string `msgpack:"properties"`
	Mappings   []Mapping         `msgpack:"mappings"`
}

// restore loads the cached configuration into c. It reports false when
// there is no usable entry for the current properties.
func (f *FluentConfiguration) restore(ctx context.Context, c *Configuration) (bool, error) {
	data, err := f.cache.Get(ctx, f.cacheKey)
	if err != nil || data == nil {
		return false, err
	}
	var e cacheEntry
	if err := msgpack.Unmarshal(data, &e); err != nil {
		return false, fmt.Errorf("cfg: decode cache: %w", err)
	}
	if e.Version != cacheVersion || !maps.Equal(e.Properties, c.properties) {
		f.log.Debug("configuration cache is stale", "key", f.cacheKey)
		return false, nil
	}
	for _, m := range e.Mappings {
		c.mappings = append(c.mappings, m)
		for _, name := range m.Entities {
			c.entities[name] = struct{}{}
		}
	}
	c.cached = true
	f.log.Info("configuration restored from cache", "key", f.cacheKey, "documents", len(e.Mappings))
	return true, nil
}

func (f *FluentConfiguration) store(ctx context.Context, c *Configuration) error {
	data, err := msgpack.Marshal(&cacheEntry{
		Version:    cacheVersion,
		Properties: c.properties,
		Mappings:   c.mappings,
	})
	if err != nil {
		return fmt.Errorf("cfg: encode cache: %w", err)
	}
	if err := f.cache.Set(ctx, f.cacheKey, data); err != nil {
		return fmt.Errorf("cfg: write cache: %w", err)
	}
	return nil
}

// DirCache is a fluentmap.Cache storing one file per key in a directory.
type DirCache struct {
	Dir string
}

// FileCache returns a cache and key storing a single value at path.
func FileCache(path string) (*DirCache, string) {
	return &DirCache{Dir: filepath.Dir(path)}, filepath.Base(path)
}

// Get implements fluentmap.Cache.
func (d *DirCache) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(d.Dir, key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

// Set implements fluentmap.Cache. The value is written to a temporary file
// and renamed into place.
func (d *DirCache) Set(_ context.Context, key string, value []byte) error {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(d.Dir, key+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(d.Dir, key))
}

// Delete implements fluentmap.Cache.
func (d *DirCache) Delete(_ context.Context, key string) error {
	err := os.Remove(filepath.Join(d.Dir, key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

var _ fluentmap.Cache = (*DirCache)(nil)
