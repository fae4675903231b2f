package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Export hooks
	e := NoopExportHooks{}
	e.OnFetchStart(ctx, "P1", 12)
	e.OnFetchComplete(ctx, "P1", 12, time.Second)
	e.OnRenderStart(ctx, "P1", 1920, 1080)
	e.OnRenderComplete(ctx, "P1", 12, time.Second)
	e.OnAssembleStart(ctx, "P1", 144)
	e.OnAssembleComplete(ctx, "P1", time.Second, nil)

	// Index hooks
	i := NoopIndexHooks{}
	i.OnIndexHit(ctx, "png")
	i.OnIndexMiss(ctx, "mp4")
	i.OnIndexSet(ctx, "png", 12)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "api.example.com", "/presentations/P1")
	h.OnResponse(ctx, "GET", "api.example.com", "/presentations/P1", 200, time.Second)
	h.OnError(ctx, "GET", "api.example.com", "/presentations/P1", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Export().(NoopExportHooks); !ok {
		t.Error("Export() should return NoopExportHooks by default")
	}
	if _, ok := Index().(NoopIndexHooks); !ok {
		t.Error("Index() should return NoopIndexHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customExport := &testExportHooks{}
	SetExportHooks(customExport)
	if Export() != customExport {
		t.Error("SetExportHooks should set custom hooks")
	}

	customIndex := &testIndexHooks{}
	SetIndexHooks(customIndex)
	if Index() != customIndex {
		t.Error("SetIndexHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Export().(NoopExportHooks); !ok {
		t.Error("Reset() should restore NoopExportHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testExportHooks{}
	SetExportHooks(custom)

	// Setting nil should be ignored
	SetExportHooks(nil)

	if Export() != custom {
		t.Error("SetExportHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testExportHooks struct{ NoopExportHooks }
type testIndexHooks struct{ NoopIndexHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
