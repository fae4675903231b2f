package drive

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmidlo/gslide2media/pkg/errors"
	"github.com/dmidlo/gslide2media/pkg/httputil"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{BaseURL: srv.URL, Token: "test-token", RequestsPerSecond: 1000, Burst: 1000})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestGetPresentation(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/presentations/P1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("auth header = %q", got)
		}
		w.Write([]byte(`{
			"presentationId": "P1",
			"title": "Quarterly Review",
			"slides": [{"objectId": "s1"}, {"objectId": "s2"}]
		}`))
	}))

	p, err := c.GetPresentation(context.Background(), "P1")
	if err != nil {
		t.Fatalf("GetPresentation: %v", err)
	}
	if p.ID() != "P1" || p.Name() != "Quarterly Review" {
		t.Errorf("got %s / %s", p.ID(), p.Name())
	}
	if ids := p.SlideIDs(); len(ids) != 2 || ids[0] != "s1" || ids[1] != "s2" {
		t.Errorf("slide order = %v, want declared order", ids)
	}
}

func TestListFolder(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/folders/root/children" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"folders": [{"id": "F1", "name": "Archive"}],
			"presentations": [{"id": "P1", "title": "Deck"}]
		}`))
	}))

	l, err := c.ListFolder(context.Background(), "root")
	if err != nil {
		t.Fatalf("ListFolder: %v", err)
	}
	if len(l.Folders) != 1 || l.Folders[0].Name != "Archive" {
		t.Errorf("folders = %+v", l.Folders)
	}
	if len(l.Presentations) != 1 || l.Presentations[0].Name != "Deck" {
		t.Errorf("presentations = %+v", l.Presentations)
	}
}

func TestFetchSlideVectorNormalizes(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"width": 720, "height": 405,
			"svg": "<svg/>",
			"elements": [
				{"type": "RECTANGLE", "x": 10, "y": 10, "width": 100, "height": 50, "fill": "#ff0000"},
				{"type": "TEXT_BOX", "x": 10, "y": 80, "width": 200, "height": 30, "text": "Hello", "fontSize": 18},
				{"type": "WORD_ART", "x": 0, "y": 0, "width": 10, "height": 10},
				{"type": "LINE", "points": [{"x": 0, "y": 0}, {"x": 100, "y": 100}], "outline": "#0000ff"}
			]
		}`))
	}))

	doc, err := c.FetchSlideVector(context.Background(), "P1", "s1")
	if err != nil {
		t.Fatalf("FetchSlideVector: %v", err)
	}
	if doc.Width != 720 || doc.Height != 405 {
		t.Errorf("size = %.0fx%.0f", doc.Width, doc.Height)
	}
	if string(doc.Raw) != "<svg/>" {
		t.Errorf("Raw = %q, want passthrough svg", doc.Raw)
	}
	// The unmapped WORD_ART element is dropped, the rest survive.
	if len(doc.Elements) != 3 {
		t.Fatalf("elements = %d, want 3", len(doc.Elements))
	}
	if doc.Elements[1].Text != "Hello" || doc.Elements[1].FontSize != 18 {
		t.Errorf("text element = %+v", doc.Elements[1])
	}
	if len(doc.Elements[2].Points) != 2 {
		t.Errorf("line points = %+v", doc.Elements[2].Points)
	}
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantCode  errors.Code
		retryable bool
	}{
		{"not found", http.StatusNotFound, errors.ErrCodeNotFound, false},
		{"forbidden", http.StatusForbidden, errors.ErrCodePermissionDenied, false},
		{"unauthorized", http.StatusUnauthorized, errors.ErrCodePermissionDenied, false},
		{"throttled", http.StatusTooManyRequests, errors.ErrCodeRateLimited, true},
		{"server error", http.StatusBadGateway, errors.ErrCodeTransient, true},
		{"teapot", http.StatusTeapot, errors.ErrCodeInternal, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			_, err := c.GetPresentation(context.Background(), "P1")
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("code = %v, want %v", errors.GetCode(err), tt.wantCode)
			}
			if httputil.IsRetryable(err) != tt.retryable {
				t.Errorf("IsRetryable = %v, want %v", !tt.retryable, tt.retryable)
			}
		})
	}
}

func TestInvalidIDRejectedBeforeRequest(t *testing.T) {
	called := false
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	for _, id := range []string{"", "../escape", "a/b"} {
		if _, err := c.GetPresentation(context.Background(), id); !errors.Is(err, errors.ErrCodeInvalidID) {
			t.Errorf("id %q: err = %v, want INVALID_ID", id, err)
		}
	}
	if called {
		t.Error("invalid ids must not reach the network")
	}
}

func TestNormalizeRejectsEmptyPage(t *testing.T) {
	if _, err := normalizePage(&pageResponse{}); !errors.Is(err, errors.ErrCodeRenderFailed) {
		t.Errorf("err = %v, want RENDER_FAILED", err)
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient(Config{}); !errors.Is(err, errors.ErrCodeInvalidRequest) {
		t.Errorf("err = %v, want INVALID_REQUEST", err)
	}
}
