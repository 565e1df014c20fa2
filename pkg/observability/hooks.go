// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup
// to receive events about decomposition, routing, cache operations and
// served HTTP requests.
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetRoutingHooks(&myRoutingHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Routing().OnRouteStart(ctx, len(points))
//	// ... route ...
//	observability.Routing().OnRouteComplete(ctx, found, candidates, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Decompose Hooks
// =============================================================================

// DecomposeHooks receives events from visibility-cell decomposition.
type DecomposeHooks interface {
	OnDecomposeStart(ctx context.Context, nodes, edges int)
	OnDecomposeComplete(ctx context.Context, cells int, duration time.Duration, err error)
}

// =============================================================================
// Routing Hooks
// =============================================================================

// RoutingHooks receives events from the region router.
type RoutingHooks interface {
	OnRouteStart(ctx context.Context, points int)
	OnRouteComplete(ctx context.Context, found bool, candidates int, duration time.Duration, err error)
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
// Server Hooks
// =============================================================================

// ServerHooks receives events for HTTP requests served by the route API.
type ServerHooks interface {
	OnRequest(ctx context.Context, method, path string)
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopDecomposeHooks is a no-op implementation of DecomposeHooks.
type NoopDecomposeHooks struct{}

func (NoopDecomposeHooks) OnDecomposeStart(context.Context, int, int)                     {}
func (NoopDecomposeHooks) OnDecomposeComplete(context.Context, int, time.Duration, error) {}

// NoopRoutingHooks is a no-op implementation of RoutingHooks.
type NoopRoutingHooks struct{}

func (NoopRoutingHooks) OnRouteStart(context.Context, int)                                {}
func (NoopRoutingHooks) OnRouteComplete(context.Context, bool, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopServerHooks is a no-op implementation of ServerHooks.
type NoopServerHooks struct{}

func (NoopServerHooks) OnRequest(context.Context, string, string)                      {}
func (NoopServerHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	decomposeHooks DecomposeHooks = NoopDecomposeHooks{}
	routingHooks   RoutingHooks   = NoopRoutingHooks{}
	cacheHooks     CacheHooks     = NoopCacheHooks{}
	serverHooks    ServerHooks    = NoopServerHooks{}
	hooksMu        sync.RWMutex
)

// SetDecomposeHooks registers custom decomposition hooks.
func SetDecomposeHooks(h DecomposeHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		decomposeHooks = h
	}
}

// SetRoutingHooks registers custom routing hooks.
func SetRoutingHooks(h RoutingHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		routingHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetServerHooks registers custom server hooks.
func SetServerHooks(h ServerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		serverHooks = h
	}
}

// Decompose returns the registered decomposition hooks.
func Decompose() DecomposeHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return decomposeHooks
}

// Routing returns the registered routing hooks.
func Routing() RoutingHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return routingHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Server returns the registered server hooks.
func Server() ServerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return serverHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	decomposeHooks = NoopDecomposeHooks{}
	routingHooks = NoopRoutingHooks{}
	cacheHooks = NoopCacheHooks{}
	serverHooks = NoopServerHooks{}
}
