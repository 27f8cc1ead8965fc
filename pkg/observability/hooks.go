// Package observability lets main plug metrics into the editor without the
// instrumented packages depending on a metrics backend.
//
// Each area (editor operations, project stores, the render cache, the HTTP
// API) has a hook interface and a no-op default. Libraries call the current
// hooks; main replaces them once at startup:
//
//	hooks := observability.NewPrometheusHooks(prometheus.DefaultRegisterer)
//	observability.SetEditorHooks(hooks)
//	observability.SetStoreHooks(hooks)
//
// and instrumented code reports through them:
//
//	observability.Editor().OnOperation("import", time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Editor Hooks
// =============================================================================

// EditorHooks receives events from the editor facade. Editor operations are
// synchronous and in memory, so they carry no context.
type EditorHooks interface {
	// OnOperation records a completed editor operation such as "import",
	// "paste" or "rename_node".
	OnOperation(op string, duration time.Duration, err error)

	// OnNotification records a user-facing notification.
	OnNotification(level string)

	// OnTreeCount records the number of trees after a tree was added or
	// removed.
	OnTreeCount(n int)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from project storage backends.
type StoreHooks interface {
	// OnStoreOp records a storage call. backend is "file", "redis" or
	// "mongo"; op is "save", "load", "delete" or "list".
	OnStoreOp(ctx context.Context, backend, op string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records the response sent for a request.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEditorHooks is a no-op implementation of EditorHooks.
type NoopEditorHooks struct{}

func (NoopEditorHooks) OnOperation(string, time.Duration, error) {}
func (NoopEditorHooks) OnNotification(string)                    {}
func (NoopEditorHooks) OnTreeCount(int)                          {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnStoreOp(context.Context, string, string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                     {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

// slot holds the current hooks of one area.
type slot[T any] struct {
	mu   sync.RWMutex
	cur  T
	noop T
}

func newSlot[T any](noop T) *slot[T] { return &slot[T]{cur: noop, noop: noop} }

func (s *slot[T]) set(h T) {
	if any(h) == nil {
		return
	}
	s.mu.Lock()
	s.cur = h
	s.mu.Unlock()
}

func (s *slot[T]) get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

func (s *slot[T]) reset() {
	s.mu.Lock()
	s.cur = s.noop
	s.mu.Unlock()
}

var (
	editorSlot = newSlot[EditorHooks](NoopEditorHooks{})
	storeSlot  = newSlot[StoreHooks](NoopStoreHooks{})
	cacheSlot  = newSlot[CacheHooks](NoopCacheHooks{})
	httpSlot   = newSlot[HTTPHooks](NoopHTTPHooks{})
)

// SetEditorHooks replaces the editor hooks. A nil h is ignored.
func SetEditorHooks(h EditorHooks) { editorSlot.set(h) }

// SetStoreHooks replaces the project store hooks. A nil h is ignored.
func SetStoreHooks(h StoreHooks) { storeSlot.set(h) }

// SetCacheHooks replaces the cache hooks. A nil h is ignored.
func SetCacheHooks(h CacheHooks) { cacheSlot.set(h) }

// SetHTTPHooks replaces the HTTP hooks. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) { httpSlot.set(h) }

func Editor() EditorHooks { return editorSlot.get() }
func Store() StoreHooks   { return storeSlot.get() }
func Cache() CacheHooks   { return cacheSlot.get() }
func HTTP() HTTPHooks     { return httpSlot.get() }

// Reset restores every area to its no-op hooks.
func Reset() {
	editorSlot.reset()
	storeSlot.reset()
	cacheSlot.reset()
	httpSlot.reset()
}
