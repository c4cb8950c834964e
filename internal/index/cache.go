package index

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/xoro/robotframework-gherkin-parser/internal/keyword"
)

// DefaultTTL is the staleness window after which a cached index is
// rebuilt on the next request.
const DefaultTTL = 30 * time.Second

// Options configure a Cache. The zero value uses DefaultTTL and
// time.Now.
type Options struct {
	TTL time.Duration
	Now func() time.Time
}

// Cache serves fresh keyword and step indexes for a workspace root,
// rebuilding at most once per staleness window. Concurrent requests for
// a stale index share a single rebuild. A rebuild keeps running after
// its requesting caller cancels, so the result still lands in the cache
// for the next caller; only Close aborts in-flight builds.
type Cache struct {
	opts  Options
	group singleflight.Group

	baseCtx context.Context
	cancel  context.CancelFunc

	mu       sync.Mutex
	keywords cacheEntry[*KeywordIndex]
	steps    cacheEntry[[]keyword.Occurrence]

	// Overridable for tests.
	buildKeywords func(ctx context.Context, root string) (*KeywordIndex, error)
	buildSteps    func(ctx context.Context, root string) ([]keyword.Occurrence, error)
}

// NewCache returns a Cache with the given options.
func NewCache(opts Options) *Cache {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Cache{
		opts:          opts,
		baseCtx:       ctx,
		cancel:        cancel,
		buildKeywords: BuildKeywords,
		buildSteps:    BuildSteps,
	}
}

// Close aborts any in-flight rebuilds.
func (c *Cache) Close() { c.cancel() }

// Keywords returns a keyword index for root no older than the staleness
// window. If the caller's context is cancelled while a rebuild is in
// flight, the previous snapshot (possibly nil) is returned along with
// the context error and the rebuild continues in the background.
func (c *Cache) Keywords(ctx context.Context, root string) (*KeywordIndex, error) {
	return getFresh(ctx, c, "keywords:"+root, &c.keywords, c.buildKeywords, root)
}

// Steps is the step-occurrence counterpart of Keywords.
func (c *Cache) Steps(ctx context.Context, root string) ([]keyword.Occurrence, error) {
	return getFresh(ctx, c, "steps:"+root, &c.steps, c.buildSteps, root)
}

type cacheEntry[T any] struct {
	root    string
	value   T
	builtAt time.Time
	valid   bool
}

func (e cacheEntry[T]) fresh(root string, now time.Time, ttl time.Duration) bool {
	return e.valid && e.root == root && now.Sub(e.builtAt) <= ttl
}

func getFresh[T any](
	ctx context.Context,
	c *Cache,
	key string,
	entry *cacheEntry[T],
	build func(context.Context, string) (T, error),
	root string,
) (T, error) {
	c.mu.Lock()
	if entry.fresh(root, c.opts.Now(), c.opts.TTL) {
		v := entry.value
		c.mu.Unlock()
		return v, nil
	}
	stale := entry.value
	c.mu.Unlock()

	ch := c.group.DoChan(key, func() (any, error) {
		// Builds run on the cache's own context so a cancelled caller
		// does not abort them for everyone else.
		v, err := build(c.baseCtx, root)
		if err != nil {
			// Cancelled or failed builds leave the existing entry alone.
			return nil, err
		}
		c.mu.Lock()
		*entry = cacheEntry[T]{root: root, value: v, builtAt: c.opts.Now(), valid: true}
		c.mu.Unlock()
		return v, nil
	})

	select {
	case <-ctx.Done():
		return stale, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return stale, res.Err
		}
		return res.Val.(T), nil
	}
}
