package sql

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/syssam/fluentmap/dialect"
)

// QueryStats counts the statements run through a StatsDriver. Exec
// statements are also counted per leading verb, such as "CREATE TABLE" or
// "CREATE INDEX", so schema application can be summarized.
type QueryStats struct {
	mu       sync.Mutex
	queries  int64
	execs    int64
	slow     int64
	errors   int64
	duration time.Duration
	verbs    map[string]int64
}

func (s *QueryStats) add(query string, d time.Duration, err error, isQuery, slow bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if isQuery {
		s.queries++
	} else {
		s.execs++
		if s.verbs == nil {
			s.verbs = make(map[string]int64)
		}
		s.verbs[verb(query)]++
	}
	if err != nil {
		s.errors++
	}
	if slow {
		s.slow++
	}
	s.duration += d
}

// Stats returns a snapshot of the counters.
func (s *QueryStats) Stats() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StatsSnapshot{
		TotalQueries:  s.queries,
		TotalExecs:    s.execs,
		TotalDuration: s.duration,
		SlowQueries:   s.slow,
		Errors:        s.errors,
		Statements:    maps.Clone(s.verbs),
	}
}

// Reset zeroes every counter.
func (s *QueryStats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries, s.execs, s.slow, s.errors, s.duration = 0, 0, 0, 0, 0
	s.verbs = nil
}

// verb returns the upper-cased statement keyword, with the object kind for
// CREATE, ALTER and DROP.
func verb(query string) string {
	fields := strings.Fields(strings.ToUpper(query))
	switch {
	case len(fields) == 0:
		return ""
	case len(fields) > 1 && (fields[0] == "CREATE" || fields[0] == "ALTER" || fields[0] == "DROP"):
		if fields[1] == "UNIQUE" && len(fields) > 2 {
			return fields[0] + " " + fields[2]
		}
		return fields[0] + " " + fields[1]
	default:
		return fields[0]
	}
}

// StatsSnapshot is a point-in-time copy of QueryStats.
type StatsSnapshot struct {
	TotalQueries  int64
	TotalExecs    int64
	TotalDuration time.Duration
	SlowQueries   int64
	Errors        int64
	// Statements counts exec statements by verb.
	Statements map[string]int64
}

// AvgQueryDuration returns the mean statement duration.
func (s StatsSnapshot) AvgQueryDuration() time.Duration {
	if n := s.TotalQueries + s.TotalExecs; n > 0 {
		return s.TotalDuration / time.Duration(n)
	}
	return 0
}

// String returns a one-line summary.
func (s StatsSnapshot) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "queries=%d execs=%d duration=%s avg=%s slow=%d errors=%d",
		s.TotalQueries, s.TotalExecs, s.TotalDuration, s.AvgQueryDuration(), s.SlowQueries, s.Errors)
	for _, v := range slices.Sorted(maps.Keys(s.Statements)) {
		fmt.Fprintf(&b, " %q=%d", v, s.Statements[v])
	}
	return b.String()
}

// LogValue implements slog.LogValuer.
func (s StatsSnapshot) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("queries", s.TotalQueries),
		slog.Int64("execs", s.TotalExecs),
		slog.Duration("duration", s.TotalDuration),
		slog.Int64("slow", s.SlowQueries),
		slog.Int64("errors", s.Errors),
	}
	for _, v := range slices.Sorted(maps.Keys(s.Statements)) {
		attrs = append(attrs, slog.Int64(strings.ToLower(strings.ReplaceAll(v, " ", "_")), s.Statements[v]))
	}
	return slog.GroupValue(attrs...)
}

// SlowQueryHook is called for every statement slower than the threshold.
type SlowQueryHook func(ctx context.Context, query string, args []any, duration time.Duration)

// StatsDriver is a Driver that records QueryStats.
type StatsDriver struct {
	*Driver
	stats *QueryStats

	mu        sync.RWMutex
	threshold time.Duration
	hook      SlowQueryHook
}

// StatsOption configures a StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the slow statement threshold. The default is 100ms.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) { s.threshold = d }
}

// WithSlowQueryHook sets the hook called for slow statements.
func WithSlowQueryHook(hook SlowQueryHook) StatsOption {
	return func(s *StatsDriver) { s.hook = hook }
}

// WithSlowQueryLog logs slow statements to l at warn level.
func WithSlowQueryLog(l *slog.Logger) StatsOption {
	return WithSlowQueryHook(func(ctx context.Context, query string, args []any, duration time.Duration) {
		l.WarnContext(ctx, "slow statement", "duration", duration, "query", query, "args", args)
	})
}

// NewStatsDriver wraps drv. The schema exporter reports these counts after
// applying DDL:
//
//	stats := sql.NewStatsDriver(drv, sql.WithSlowQueryLog(logger))
//	_, err := exporter.Apply(ctx, stats, doc)
//	logger.Info("schema applied", "stats", stats.QueryStats().Stats())
func NewStatsDriver(drv *Driver, opts ...StatsOption) *StatsDriver {
	s := &StatsDriver{Driver: drv, stats: &QueryStats{}, threshold: 100 * time.Millisecond}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QueryStats returns the live counters.
func (d *StatsDriver) QueryStats() *QueryStats { return d.stats }

// SlowThreshold returns the slow statement threshold.
func (d *StatsDriver) SlowThreshold() time.Duration {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.threshold
}

// SetSlowThreshold changes the slow statement threshold.
func (d *StatsDriver) SetSlowThreshold(threshold time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.threshold = threshold
}

// Query implements dialect.ExecQuerier.
func (d *StatsDriver) Query(ctx context.Context, query string, args, v any) error {
	return d.observe(ctx, query, args, true, func() error { return d.Driver.Query(ctx, query, args, v) })
}

// Exec implements dialect.ExecQuerier.
func (d *StatsDriver) Exec(ctx context.Context, query string, args, v any) error {
	return d.observe(ctx, query, args, false, func() error { return d.Driver.Exec(ctx, query, args, v) })
}

func (d *StatsDriver) observe(ctx context.Context, query string, args any, isQuery bool, run func() error) error {
	start := time.Now()
	err := run()
	elapsed := time.Since(start)

	d.mu.RLock()
	threshold, hook := d.threshold, d.hook
	d.mu.RUnlock()

	slow := elapsed > threshold
	d.stats.add(query, elapsed, err, isQuery, slow)
	if slow && hook != nil {
		argv, _ := args.([]any)
		hook(ctx, query, argv, elapsed)
	}
	return err
}

// Tx starts a transaction whose statements are counted too.
func (d *StatsDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &StatsTx{Tx: tx, driver: d}, nil
}

// StatsTx is a transaction of a StatsDriver.
type StatsTx struct {
	dialect.Tx
	driver *StatsDriver
}

// Query implements dialect.ExecQuerier.
func (tx *StatsTx) Query(ctx context.Context, query string, args, v any) error {
	return tx.driver.observe(ctx, query, args, true, func() error { return tx.Tx.Query(ctx, query, args, v) })
}

// Exec implements dialect.ExecQuerier.
func (tx *StatsTx) Exec(ctx context.Context, query string, args, v any) error {
	return tx.driver.observe(ctx, query, args, false, func() error { return tx.Tx.Exec(ctx, query, args, v) })
}

var (
	_ dialect.Driver = (*StatsDriver)(nil)
	_ dialect.Tx     = (*StatsTx)(nil)
)

// OpenWithStats opens the database described by s and counts its
// statements.
func OpenWithStats(s dialect.Settings, opts ...StatsOption) (*StatsDriver, error) {
	drv, err := OpenSettings(s)
	if err != nil {
		return nil, err
	}
	return NewStatsDriver(drv, opts...), nil
}
