package services

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/accessconsole/internal/client/client"
	"github.com/dmitrijs2005/accessconsole/internal/client/records"
	"github.com/dmitrijs2005/accessconsole/internal/client/tracker"
	"github.com/dmitrijs2005/accessconsole/internal/common"
	"github.com/dmitrijs2005/accessconsole/internal/logging"
	"github.com/dmitrijs2005/accessconsole/internal/oid"
	"github.com/dmitrijs2005/accessconsole/internal/schema"
	"github.com/dmitrijs2005/accessconsole/internal/wire"
)

var (
	ErrNotFound   = common.ErrNotFound
	ErrReadOnly   = common.ErrReadOnly
	ErrNotCreated = errors.New("server response names no new record")
)

const (
	defaultChunkSize = 500
	defaultGrace     = 5 * time.Minute
	defaultPoll      = 2 * time.Second
	defaultSweep     = 15 * time.Second
)

// Console is the operator's working copy of the device tree.
type Console struct {
	// ingestMu serializes whole responses; mu guards store and tracker.
	ingestMu sync.Mutex
	mu       sync.Mutex

	client   client.Client
	registry *schema.Registry
	store    *records.Store
	engine   *records.Engine
	tracker  *tracker.Tracker

	logger   logging.Logger
	notifier Notifier
	now      func() time.Time

	tables        []schema.Tag
	chunkSize     int
	grace         time.Duration
	pollInterval  time.Duration
	sweepInterval time.Duration
}

// Option configures a Console.
type Option func(*Console)

func WithLogger(l logging.Logger) Option {
	return func(c *Console) { c.logger = l }
}

func WithNotifier(n Notifier) Option {
	return func(c *Console) { c.notifier = n }
}

// WithClock overrides the clock used for liveness and tombstone expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Console) { c.now = now }
}

// WithTables limits polling to the given tables. By default every table in
// the registry is polled.
func WithTables(tags ...schema.Tag) Option {
	return func(c *Console) { c.tables = tags }
}

// WithChunkSize bounds how many updates are applied per lock hold.
func WithChunkSize(n int) Option {
	return func(c *Console) {
		if n > 0 {
			c.chunkSize = n
		}
	}
}

// WithTombstoneGrace sets how long a deleted record stays visible.
func WithTombstoneGrace(d time.Duration) Option {
	return func(c *Console) {
		if d > 0 {
			c.grace = d
		}
	}
}

// WithIntervals sets the poll and sweep periods used by Run.
func WithIntervals(poll, sweep time.Duration) Option {
	return func(c *Console) {
		if poll > 0 {
			c.pollInterval = poll
		}
		if sweep > 0 {
			c.sweepInterval = sweep
		}
	}
}

func NewConsole(cl client.Client, registry *schema.Registry, opts ...Option) *Console {
	c := &Console{
		client:        cl,
		registry:      registry,
		logger:        logging.Nop(),
		notifier:      nopNotifier{},
		now:           time.Now,
		tables:        registry.Tags(),
		chunkSize:     defaultChunkSize,
		grace:         defaultGrace,
		pollInterval:  defaultPoll,
		sweepInterval: defaultSweep,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("module", "console")

	c.store = records.NewStore(registry)
	c.tracker = tracker.New(
		tracker.WithRoots(c.rootOf),
		tracker.WithWritable(c.writable),
	)
	c.engine = records.NewEngine(c.store,
		records.WithObserver(c.tracker),
		records.WithClock(func() time.Time { return c.now() }),
		records.WithLogger(c.logger),
	)
	return c
}

func (c *Console) rootOf(o oid.OID) (oid.OID, bool) {
	t, ok := c.registry.Lookup(o)
	if !ok {
		return "", false
	}
	m, ok := t.MatchRoot(o)
	return m.Root, ok
}

func (c *Console) writable(o oid.OID) bool {
	t, ok := c.registry.Lookup(o)
	if !ok {
		return false
	}
	m, ok := t.MatchRoot(o)
	return ok && t.Writable(m.Suffix)
}

// Registry returns the schema the console was built with.
func (c *Console) Registry() *schema.Registry {
	return c.registry
}

// Poll fetches one table and applies the response.
func (c *Console) Poll(ctx context.Context, tag schema.Tag) error {
	resp, err := c.client.Poll(ctx, tag)
	if err != nil {
		c.logger.Warn(ctx, "poll failed", "table", tag, "error", err)
		c.surface(err)
		return fmt.Errorf("poll %s: %w", tag, err)
	}

	st := c.ingest(resp)
	c.logger.Debug(ctx, "poll applied", "table", tag, "applied", st.Applied, "dropped", st.Dropped, "created", st.Created)
	return nil
}

// PollAll polls every configured table, stopping at the first failure.
func (c *Console) PollAll(ctx context.Context) error {
	for _, tag := range c.tables {
		if err := c.Poll(ctx, tag); err != nil {
			return err
		}
	}
	return nil
}

// ingest applies a response in table order. The response as a whole is
// exclusive with other responses; each chunk is exclusive with edits.
func (c *Console) ingest(resp wire.Response) records.Stats {
	c.ingestMu.Lock()
	defer c.ingestMu.Unlock()

	tags := make([]schema.Tag, 0, len(resp))
	for tag := range resp {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })

	var total records.Stats
	for _, tag := range tags {
		updates := resp[tag]
		for start := 0; start < len(updates); start += c.chunkSize {
			end := min(start+c.chunkSize, len(updates))

			c.mu.Lock()
			total.Add(c.engine.Ingest(updates[start:end]))
			c.mu.Unlock()

			if end < len(updates) {
				runtime.Gosched()
			}
		}
	}
	return total
}

// Sweep evicts tombstones past the grace period and forgets their fields.
func (c *Console) Sweep() []oid.OID {
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := c.store.Sweep(c.now(), c.grace)
	for _, o := range evicted {
		c.tracker.Forget(o)
	}
	if len(evicted) > 0 {
		c.logger.Debug(context.Background(), "tombstones evicted", "count", len(evicted))
		c.notifier.Notify(NoticeChanged, fmt.Sprintf("%d deleted record(s) removed", len(evicted)))
	}
	return evicted
}

// Run polls and sweeps on their intervals until ctx is done. Poll failures
// are surfaced and retried on the next tick.
func (c *Console) Run(ctx context.Context) error {
	pollTicker := time.NewTicker(c.pollInterval)
	defer pollTicker.Stop()
	sweepTicker := time.NewTicker(c.sweepInterval)
	defer sweepTicker.Stop()

	_ = c.PollAll(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pollTicker.C:
			_ = c.PollAll(ctx)
		case <-sweepTicker.C:
			c.Sweep()
		}
	}
}

// surface turns a client error into an operator notice.
func (c *Console) surface(err error) {
	var rejected *client.RejectedError
	switch {
	case errors.As(err, &rejected):
		c.notifier.Notify(NoticeRejected, rejected.Message)
	case errors.Is(err, client.ErrUnavailable):
		c.notifier.Notify(NoticeWarning, "server unavailable, changes are kept")
	default:
		c.notifier.Notify(NoticeWarning, err.Error())
	}
}
