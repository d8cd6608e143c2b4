// Package server publishes the generated feeds on localhost so calendar and
// contact clients can subscribe to them.
package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tartampluch/go-partners/internal/config"
)

// cacheItem stores one rendered feed and its HTTP cache validators.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123, as HTTP requires
}

// feed is a single published document. Reads are lock-free: clients poll
// often and the content only changes after a partner edit.
type feed struct {
	route       string
	contentType string
	cache       atomic.Pointer[cacheItem]
}

// FeedServer serves the anniversaries calendar and the partners address book.
type FeedServer struct {
	Port  string
	feeds map[string]*feed
}

// NewFeedServer creates a server for the known routes. Nothing is served
// until the first Publish of each route.
func NewFeedServer(port string) *FeedServer {
	s := &FeedServer{Port: port, feeds: map[string]*feed{}}
	for _, f := range []*feed{
		{route: config.RouteCalendar, contentType: config.MimeTextCalendar},
		{route: config.RouteContacts, contentType: config.MimeTextVCard},
	} {
		s.feeds[f.route] = f
	}
	return s
}

// Handler returns the routing handler, for tests and custom listeners.
func (s *FeedServer) Handler() http.Handler {
	mux := http.NewServeMux()
	for route, f := range s.feeds {
		mux.Handle(route, f)
	}
	return mux
}

// Start listens on localhost and blocks until ctx is cancelled.
func (s *FeedServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)
	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Publish atomically replaces the content served on route.
func (s *FeedServer) Publish(route string, data []byte) error {
	f, ok := s.feeds[route]
	if !ok {
		return fmt.Errorf("%s: %q", config.ErrFeedPublish, route)
	}

	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))
	f.cache.Store(&cacheItem{
		data:         data,
		etag:         etag,
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	})

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyRoute, route,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
	return nil
}

// ServeHTTP serves the cached document with ETag and Last-Modified support.
func (f *feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return
	}

	item := f.cache.Load()
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set(config.HeaderContentType, f.contentType)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	if notModifiedSince(r.Header.Get(config.HeaderIfModifiedSince), item.lastModified) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyRoute, f.route,
				config.LogKeyError, err,
			)
		}
	}
}

func notModifiedSince(since, lastModified string) bool {
	if since == "" {
		return false
	}
	clientTime, err := time.Parse(http.TimeFormat, since)
	if err != nil {
		return false
	}
	serverTime, err := time.Parse(http.TimeFormat, lastModified)
	if err != nil {
		return false
	}
	return !serverTime.After(clientTime)
}
