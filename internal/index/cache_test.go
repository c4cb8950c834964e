package index

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/xoro/robotframework-gherkin-parser/internal/keyword"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCacheSkipsRescanWithinWindow(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	c := NewCache(Options{TTL: 30 * time.Second, Now: clock.Now})
	defer c.Close()

	var (
		mu    sync.Mutex
		scans int
	)
	c.buildKeywords = func(ctx context.Context, root string) (*KeywordIndex, error) {
		mu.Lock()
		scans++
		mu.Unlock()
		return NewKeywordIndex([]*keyword.Definition{
			keyword.NewDefinition("I press add", root+"/steps/calc.resource", 1),
		}), nil
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		ix, err := c.Keywords(ctx, "/project")
		if err != nil {
			t.Fatalf("Keywords: %v", err)
		}
		if ix.Len() != 1 {
			t.Fatalf("Len() = %d, want 1", ix.Len())
		}
	}
	if scans != 1 {
		t.Errorf("scans = %d, want 1", scans)
	}

	clock.Advance(31 * time.Second)
	if _, err := c.Keywords(ctx, "/project"); err != nil {
		t.Fatalf("Keywords after expiry: %v", err)
	}
	if scans != 2 {
		t.Errorf("scans after expiry = %d, want 2", scans)
	}
}

func TestCacheRootChangeInvalidates(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	c := NewCache(Options{TTL: 30 * time.Second, Now: clock.Now})
	defer c.Close()

	var (
		mu    sync.Mutex
		roots []string
	)
	c.buildSteps = func(ctx context.Context, root string) ([]keyword.Occurrence, error) {
		mu.Lock()
		roots = append(roots, root)
		mu.Unlock()
		return []keyword.Occurrence{{File: root + "/f.feature", Line: 3, Text: "I press add"}}, nil
	}

	ctx := context.Background()
	if _, err := c.Steps(ctx, "/a"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Steps(ctx, "/b"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Steps(ctx, "/b"); err != nil {
		t.Fatal(err)
	}
	if len(roots) != 2 || roots[0] != "/a" || roots[1] != "/b" {
		t.Errorf("builds ran for roots %v, want [/a /b]", roots)
	}
}

func TestCacheCancelledCallerDetaches(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	c := NewCache(Options{TTL: 30 * time.Second, Now: clock.Now})
	defer c.Close()

	var (
		mu      sync.Mutex
		scans   int
		started = make(chan struct{})
		release = make(chan struct{})
	)
	c.buildKeywords = func(ctx context.Context, root string) (*KeywordIndex, error) {
		mu.Lock()
		scans++
		mu.Unlock()
		close(started)
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return NewKeywordIndex([]*keyword.Definition{
			keyword.NewDefinition("I press add", "/p/steps/calc.resource", 1),
		}), nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := c.Keywords(ctx, "/p")
		errc <- err
	}()

	<-started
	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled caller got %v, want context.Canceled", err)
	}

	// The build keeps running on the cache's own context and must still
	// populate the entry for the next caller.
	close(release)
	deadline := time.After(5 * time.Second)
	for {
		c.mu.Lock()
		valid := c.keywords.valid
		c.mu.Unlock()
		if valid {
			break
		}
		select {
		case <-deadline:
			t.Fatal("cache entry never populated after caller cancelled")
		case <-time.After(time.Millisecond):
		}
	}

	ix, err := c.Keywords(context.Background(), "/p")
	if err != nil {
		t.Fatalf("Keywords: %v", err)
	}
	if ix.Len() != 1 {
		t.Errorf("Len() = %d, want 1", ix.Len())
	}
	if scans != 1 {
		t.Errorf("scans = %d, want 1", scans)
	}
}

func TestCacheBuildErrorKeepsExistingEntry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	c := NewCache(Options{TTL: 30 * time.Second, Now: clock.Now})
	defer c.Close()

	fail := false
	c.buildKeywords = func(ctx context.Context, root string) (*KeywordIndex, error) {
		if fail {
			return nil, errors.New("disk on fire")
		}
		return NewKeywordIndex([]*keyword.Definition{
			keyword.NewDefinition("I press add", "/p/steps/calc.resource", 1),
		}), nil
	}

	ctx := context.Background()
	if _, err := c.Keywords(ctx, "/p"); err != nil {
		t.Fatal(err)
	}

	fail = true
	clock.Advance(31 * time.Second)
	stale, err := c.Keywords(ctx, "/p")
	if err == nil {
		t.Fatal("expected build error")
	}
	if stale == nil || stale.Len() != 1 {
		t.Errorf("failed rebuild did not return the previous snapshot")
	}
}
