// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers can register
// hooks at startup to receive events about export execution, result index
// operations, and remote API calls.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetExportHooks(&myExportHooks{})
//	    observability.SetIndexHooks(&myIndexHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Export().OnFetchStart(ctx, presentationID, slideCount)
//	// ... fetch slides ...
//	observability.Export().OnFetchComplete(ctx, presentationID, fetched, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// ExportHooks receives events from the export pipeline.
type ExportHooks interface {
	// Fetch events, one pair per presentation.
	OnFetchStart(ctx context.Context, presentationID string, slideCount int)
	OnFetchComplete(ctx context.Context, presentationID string, fetched int, duration time.Duration)

	// Render events, one pair per presentation.
	OnRenderStart(ctx context.Context, presentationID string, width, height int)
	OnRenderComplete(ctx context.Context, presentationID string, rendered int, duration time.Duration)

	// Assembly events, one pair per produced video.
	OnAssembleStart(ctx context.Context, presentationID string, frames int)
	OnAssembleComplete(ctx context.Context, presentationID string, duration time.Duration, err error)
}

// IndexHooks receives events from result index operations.
type IndexHooks interface {
	// OnIndexHit records a verified index hit for one format key.
	OnIndexHit(ctx context.Context, format string)

	// OnIndexMiss records an index miss (absent, stale, or refresh).
	OnIndexMiss(ctx context.Context, format string)

	// OnIndexSet records an index write.
	OnIndexSet(ctx context.Context, format string, artifacts int)
}

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// NoopExportHooks is a no-op implementation of ExportHooks.
type NoopExportHooks struct{}

func (NoopExportHooks) OnFetchStart(context.Context, string, int)                        {}
func (NoopExportHooks) OnFetchComplete(context.Context, string, int, time.Duration)      {}
func (NoopExportHooks) OnRenderStart(context.Context, string, int, int)                  {}
func (NoopExportHooks) OnRenderComplete(context.Context, string, int, time.Duration)     {}
func (NoopExportHooks) OnAssembleStart(context.Context, string, int)                     {}
func (NoopExportHooks) OnAssembleComplete(context.Context, string, time.Duration, error) {}

// NoopIndexHooks is a no-op implementation of IndexHooks.
type NoopIndexHooks struct{}

func (NoopIndexHooks) OnIndexHit(context.Context, string)      {}
func (NoopIndexHooks) OnIndexMiss(context.Context, string)     {}
func (NoopIndexHooks) OnIndexSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

var (
	exportHooks ExportHooks = NoopExportHooks{}
	indexHooks  IndexHooks  = NoopIndexHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetExportHooks registers custom export hooks.
// This should be called once at application startup before any exports.
func SetExportHooks(h ExportHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		exportHooks = h
	}
}

// SetIndexHooks registers custom index hooks.
// This should be called once at application startup before any index
// operations.
func SetIndexHooks(h IndexHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		indexHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any HTTP
// operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Export returns the registered export hooks.
func Export() ExportHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return exportHooks
}

// Index returns the registered index hooks.
func Index() IndexHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return indexHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	exportHooks = NoopExportHooks{}
	indexHooks = NoopIndexHooks{}
	httpHooks = NoopHTTPHooks{}
}
