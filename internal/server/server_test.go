package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-partners/internal/config"
)

func serve(t *testing.T, srv *FeedServer, req *http.Request) *http.Response {
	t.Helper()
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	resp := w.Result()
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestHandler_ServesEachRouteWithItsType(t *testing.T) {
	srv := NewFeedServer("0")
	ics := []byte(config.StubVCalendar)
	vcf := []byte("BEGIN:VCARD\r\nVERSION:4.0\r\nFN:Sam\r\nEND:VCARD\r\n")
	require.NoError(t, srv.Publish(config.RouteCalendar, ics))
	require.NoError(t, srv.Publish(config.RouteContacts, vcf))

	tests := []struct {
		route, mime string
		body        []byte
	}{
		{config.RouteCalendar, config.MimeTextCalendar, ics},
		{config.RouteContacts, config.MimeTextVCard, vcf},
	}

	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			resp := serve(t, srv, httptest.NewRequest(http.MethodGet, tt.route, nil))

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.mime, resp.Header.Get(config.HeaderContentType))
			assert.Equal(t, config.MimeNoSniff, resp.Header.Get(config.HeaderXContentType))
			assert.Contains(t, resp.Header.Get(config.HeaderCacheControl), "no-cache")
			assert.NotEmpty(t, resp.Header.Get(config.HeaderETag))
			assert.NotEmpty(t, resp.Header.Get(config.HeaderLastModified))

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.body, body)
		})
	}
}

func TestHandler_HeadHasNoBody(t *testing.T) {
	srv := NewFeedServer("0")
	require.NoError(t, srv.Publish(config.RouteCalendar, []byte("DATA")))

	resp := serve(t, srv, httptest.NewRequest(http.MethodHead, config.RouteCalendar, nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Empty(t, body)
}

func TestHandler_ConditionalRequests(t *testing.T) {
	srv := NewFeedServer("0")
	require.NoError(t, srv.Publish(config.RouteCalendar, []byte("DATA_VERSION_1")))

	first := serve(t, srv, httptest.NewRequest(http.MethodGet, config.RouteCalendar, nil))
	etag := first.Header.Get(config.HeaderETag)
	lastMod := first.Header.Get(config.HeaderLastModified)
	require.NotEmpty(t, etag)

	byETag := httptest.NewRequest(http.MethodGet, config.RouteCalendar, nil)
	byETag.Header.Set(config.HeaderIfNoneMatch, etag)
	resp := serve(t, srv, byETag)
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Empty(t, body, "Body must be empty on 304 Not Modified")

	byDate := httptest.NewRequest(http.MethodGet, config.RouteCalendar, nil)
	byDate.Header.Set(config.HeaderIfModifiedSince, lastMod)
	assert.Equal(t, http.StatusNotModified, serve(t, srv, byDate).StatusCode)

	// New content invalidates the old ETag.
	require.NoError(t, srv.Publish(config.RouteCalendar, []byte("DATA_VERSION_2")))
	stale := httptest.NewRequest(http.MethodGet, config.RouteCalendar, nil)
	stale.Header.Set(config.HeaderIfNoneMatch, etag)
	assert.Equal(t, http.StatusOK, serve(t, srv, stale).StatusCode)
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	srv := NewFeedServer("0")
	resp := serve(t, srv, httptest.NewRequest(http.MethodPost, config.RouteContacts, nil))

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, config.AllowedMethods, resp.Header.Get(config.HeaderAllow))
}

func TestHandler_Initializing(t *testing.T) {
	srv := NewFeedServer("0")
	require.NoError(t, srv.Publish(config.RouteCalendar, []byte("DATA")))

	// Each route becomes ready independently.
	resp := serve(t, srv, httptest.NewRequest(http.MethodGet, config.RouteContacts, nil))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, config.RetryAfterSeconds, resp.Header.Get(config.HeaderRetryAfter))
}

func TestHandler_UnknownRoute(t *testing.T) {
	srv := NewFeedServer("0")
	resp := serve(t, srv, httptest.NewRequest(http.MethodGet, "/birthdays.ics", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	assert.Error(t, srv.Publish("/birthdays.ics", []byte("x")))
}

// TestServer_RaceCondition exercises concurrent Publish and reads.
// Run with `go test -race`.
func TestServer_RaceCondition(t *testing.T) {
	srv := NewFeedServer("0")
	handler := srv.Handler()
	var wg sync.WaitGroup
	end := time.Now().Add(300 * time.Millisecond)

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; time.Now().Before(end); i++ {
				route := config.RouteCalendar
				if i%2 == 1 {
					route = config.RouteContacts
				}
				_ = srv.Publish(route, []byte(fmt.Sprintf("VERSION:%d-%d", id, i)))
				time.Sleep(time.Microsecond)
			}
		}(w)
	}

	for r := 0; r < 16; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) {
				w := httptest.NewRecorder()
				handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, config.RouteCalendar, nil))
				if w.Code != http.StatusOK && w.Code != http.StatusServiceUnavailable {
					t.Errorf("Unexpected status code during race test: %d", w.Code)
				}
			}
		}()
	}

	wg.Wait()
}

func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", config.LocalhostBindAddr+":0")
	require.NoError(t, err)
	defer func() { _ = l.Close() }()
	_, port, err := net.SplitHostPort(l.Addr().String())
	require.NoError(t, err)
	return port
}

// TestServer_Lifecycle binds a real listener and shuts it down gracefully.
func TestServer_Lifecycle(t *testing.T) {
	port := freePort(t)
	srv := NewFeedServer(port)
	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() { errChan <- srv.Start(ctx) }()

	url := "http://" + config.LocalhostBindAddr + ":" + port + config.RouteCalendar
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return true
	}, 2*time.Second, 50*time.Millisecond, "Server failed to bind/listen in time")

	require.NoError(t, srv.Publish(config.RouteCalendar, []byte(config.StubVCalendar)))
	resp, err := http.Get(url)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "BEGIN:VCALENDAR")

	cancel()
	select {
	case err := <-errChan:
		assert.NoError(t, err, "Server should shut down gracefully")
	case <-time.After(5 * time.Second):
		t.Fatal("Server shutdown timed out")
	}
}

func TestServer_StartRequiresPort(t *testing.T) {
	err := NewFeedServer("").Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrPortRequired)
}
