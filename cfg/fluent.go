package cfg

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/syssam/fluentmap"
	"github.com/syssam/fluentmap/dialect"
)

// FluentConfiguration builds a Configuration. Modifications run in a fixed
// order regardless of the order they were declared in: PreConfigure,
// database settings, mappings, exporters, ExposeConfiguration and
// PostConfigure.
type FluentConfiguration struct {
	cfg      *Configuration
	log      *slog.Logger
	db       *dialect.Settings
	mappings []func(*MappingConfiguration)
	pre      []func(*Configuration) error
	expose   []func(*Configuration) error
	post     []func(*Configuration) error
	cache    fluentmap.Cache
	cacheKey string
}

// Fluently starts a configuration from scratch.
func Fluently() *FluentConfiguration {
	return Configure(NewConfiguration())
}

// Configure starts from an existing configuration.
func Configure(c *Configuration) *FluentConfiguration {
	return &FluentConfiguration{cfg: c, log: slog.New(slog.DiscardHandler)}
}

// Logger sets the logger of the configuration and of the mapping compiler.
func (f *FluentConfiguration) Logger(l *slog.Logger) *FluentConfiguration {
	if l != nil {
		f.log = l
	}
	return f
}

// Database applies the settings of a database. The last call wins.
func (f *FluentConfiguration) Database(s dialect.Settings) *FluentConfiguration {
	f.db = &s
	return f
}

// Mappings adds mapping declarations. It may be called several times.
func (f *FluentConfiguration) Mappings(fn func(*MappingConfiguration)) *FluentConfiguration {
	f.mappings = append(f.mappings, fn)
	return f
}

// PreConfigure runs fn before any other modification.
func (f *FluentConfiguration) PreConfigure(fn func(*Configuration) error) *FluentConfiguration {
	f.pre = append(f.pre, fn)
	return f
}

// ExposeConfiguration runs fn once the mappings are registered and exported.
func (f *FluentConfiguration) ExposeConfiguration(fn func(*Configuration)) *FluentConfiguration {
	f.expose = append(f.expose, func(c *Configuration) error {
		fn(c)
		return nil
	})
	return f
}

// PostConfigure runs fn after every other modification.
func (f *FluentConfiguration) PostConfigure(fn func(*Configuration) error) *FluentConfiguration {
	f.post = append(f.post, fn)
	return f
}

// CacheTo caches the built configuration in the file at path.
func (f *FluentConfiguration) CacheTo(path string) *FluentConfiguration {
	c, key := FileCache(path)
	return f.CacheWith(c, key)
}

// CacheWith caches the built configuration in c under key.
func (f *FluentConfiguration) CacheWith(c fluentmap.Cache, key string) *FluentConfiguration {
	f.cache, f.cacheKey = c, key
	return f
}

// BuildConfiguration applies every modification and returns the
// configuration. A cached configuration built for the same database settings
// is returned without compiling the mappings.
func (f *FluentConfiguration) BuildConfiguration(ctx context.Context) (*Configuration, error) {
	c := f.cfg
	c.log = f.log
	for _, fn := range f.pre {
		if err := fn(c); err != nil {
			return nil, fmt.Errorf("cfg: pre-configure: %w", err)
		}
	}
	if f.db != nil {
		if err := f.db.Validate(); err != nil {
			return nil, err
		}
		c.SetProperties(f.db.EngineProperties())
	}
	if f.cache != nil {
		ok, err := f.restore(ctx, c)
		if err != nil {
			f.log.Warn("configuration cache ignored", "key", f.cacheKey, "error", err)
		}
		if ok {
			return f.finish(c)
		}
	}
	mc := newMappingConfiguration()
	for _, fn := range f.mappings {
		fn(mc)
	}
	docs, err := mc.apply(ctx, c, f.log)
	if err != nil {
		return nil, fmt.Errorf("cfg: mappings: %w", err)
	}
	if err := mc.export(ctx, docs, f.log); err != nil {
		return nil, err
	}
	if f.cache != nil {
		if err := f.store(ctx, c); err != nil {
			return nil, err
		}
	}
	f.log.Info("configuration built", "entities", len(c.Entities()), "documents", len(c.Mappings()))
	return f.finish(c)
}

func (f *FluentConfiguration) finish(c *Configuration) (*Configuration, error) {
	for _, fn := range f.expose {
		if err := fn(c); err != nil {
			return nil, err
		}
	}
	for _, fn := range f.post {
		if err := fn(c); err != nil {
			return nil, fmt.Errorf("cfg: post-configure: %w", err)
		}
	}
	return c, nil
}
