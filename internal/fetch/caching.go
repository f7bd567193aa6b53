package fetch

import (
	"context"
	"log/slog"
	"sync"
)

// CachingFetcher fetches each source at most once successfully per process.
// Concurrent callers for the same source wait for the first fetch; failures
// are not cached, so a later call tries again.
type CachingFetcher struct {
	next  Fetcher
	cache *Cache

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewCachingFetcher wraps next with cache.
func NewCachingFetcher(next Fetcher, cache *Cache) *CachingFetcher {
	return &CachingFetcher{
		next:  next,
		cache: cache,
		locks: make(map[string]*sync.Mutex),
	}
}

func (f *CachingFetcher) sourceLock(source string) *sync.Mutex {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.locks[source]
	if !ok {
		l = &sync.Mutex{}
		f.locks[source] = l
	}
	return l
}

// Fetch implements Fetcher.
func (f *CachingFetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	l := f.sourceLock(source)
	l.Lock()
	defer l.Unlock()

	body, ok, err := f.cache.Get(source)
	if err != nil {
		slog.Warn("reading document cache", "source", source, "error", err)
	} else if ok {
		slog.Debug("document cache hit", "source", source)
		return body, nil
	}

	body, err = f.next.Fetch(ctx, source)
	if err != nil {
		return nil, err
	}
	if err := f.cache.Put(source, body); err != nil {
		slog.Warn("writing document cache", "source", source, "error", err)
	}
	slog.Debug("fetched document", "source", source, "bytes", len(body))
	return body, nil
}

// Entries lists the cached documents.
func (f *CachingFetcher) Entries() ([]Entry, error) {
	return f.cache.Entries()
}
