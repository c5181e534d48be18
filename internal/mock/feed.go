package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	feedWriteWait  = 5 * time.Second
	feedBufferSize = 64
)

// FeedEvent is the message pushed to feed subscribers for each accepted update
type FeedEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Method    string    `json:"method"`
	Path      string    `json:"path"`
	Field     string    `json:"field"`
	Value     string    `json:"value"`
	Status    int       `json:"status"`
}

// Feed broadcasts accepted updates to WebSocket subscribers.
// Slow subscribers miss events instead of blocking the endpoint.
type Feed struct {
	upgrader websocket.Upgrader
	mu       sync.Mutex
	subs     map[*subscriber]struct{}
	closed   bool
	logger   *zap.Logger
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// NewFeed creates an empty feed
func NewFeed(logger *zap.Logger) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		subs:   make(map[*subscriber]struct{}),
		logger: logger,
	}
}

// ServeHTTP upgrades the connection and streams events until the peer leaves
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warn("feed upgrade failed", zap.Error(err))
		return
	}

	sub := &subscriber{conn: conn, send: make(chan []byte, feedBufferSize)}
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		conn.Close()
		return
	}
	f.subs[sub] = struct{}{}
	f.mu.Unlock()
	f.logger.Debug("feed subscriber joined", zap.String("remote", r.RemoteAddr))

	go f.writeLoop(sub)

	// Subscribers never send; reading only detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	f.remove(sub)
}

func (f *Feed) writeLoop(sub *subscriber) {
	defer sub.conn.Close()
	for msg := range sub.send {
		_ = sub.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
		if err := sub.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = sub.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(feedWriteWait))
}

func (f *Feed) remove(sub *subscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.subs[sub]; ok {
		delete(f.subs, sub)
		close(sub.send)
	}
}

// Publish sends entry to every subscriber
func (f *Feed) Publish(entry RequestLog) {
	data, err := json.Marshal(FeedEvent{
		Timestamp: entry.Timestamp,
		Method:    entry.Method,
		Path:      entry.Path,
		Field:     entry.Field,
		Value:     entry.Value,
		Status:    entry.Status,
	})
	if err != nil {
		f.logger.Error("failed to encode feed event", zap.Error(err))
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for sub := range f.subs {
		select {
		case sub.send <- data:
		default:
			f.logger.Warn("feed subscriber too slow, event dropped")
		}
	}
}

// Subscribers returns the number of connected subscribers
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Close disconnects every subscriber
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	for sub := range f.subs {
		delete(f.subs, sub)
		close(sub.send)
	}
}

// FeedURL turns an http(s) base address and a feed path into a ws(s) URL
func FeedURL(base, path string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return strings.TrimSuffix(base, "/") + path
}

// Watch connects to a feed and calls fn for each event until ctx ends or the
// server closes the feed
func Watch(ctx context.Context, feedURL string, fn func(FeedEvent)) error {
	dialer := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: 45 * time.Second,
	}
	conn, resp, err := dialer.DialContext(ctx, feedURL, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("failed to connect to feed (HTTP %d): %w", resp.StatusCode, err)
		}
		return fmt.Errorf("failed to connect to feed: %w", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var ev FeedEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("failed to read feed: %w", err)
		}
		fn(ev)
	}
}
