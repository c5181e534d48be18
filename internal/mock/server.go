package mock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/sjson"
	"go.uber.org/zap"
)

// maxLogs bounds the in-memory request log
const maxLogs = 1000

// Server is a scriptable update endpoint
type Server struct {
	config     *Config
	httpServer *http.Server
	listener   net.Listener
	logs       []RequestLog
	logsMutex  sync.RWMutex
	workdir    string
	notifyCh   chan struct{} // Channel to notify when new log arrives
	feed       *Feed
	logger     *zap.Logger
}

// NewServer creates a new mock server
func NewServer(config *Config, workdir string, logger *zap.Logger) *Server {
	if config.Host == "" {
		config.Host = "localhost"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("mock")

	return &Server{
		config:   config,
		logs:     make([]RequestLog, 0),
		workdir:  workdir,
		notifyCh: make(chan struct{}, 100), // Buffered channel for notifications
		feed:     NewFeed(logger),
		logger:   logger,
	}
}

// Handler returns the HTTP handler serving routes and the update feed
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	if s.config.Feed != "" {
		mux.Handle(s.config.Feed, s.feed)
	}
	mux.HandleFunc("/", s.handleRequest)
	return mux
}

// Start binds the listen address and serves in the background.
// Port 0 binds a free port; Address reports it.
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.config.Host, fmt.Sprint(s.config.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("mock server stopped", zap.Error(err))
		}
	}()

	s.logger.Info("mock server listening", zap.String("address", s.Address()))
	return nil
}

// Stop stops the mock server
func (s *Server) Stop() error {
	s.feed.Close()
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// handleRequest answers an update according to the first matching route
func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	bodyBytes, _ := io.ReadAll(r.Body)
	r.Body.Close()
	requestBody := string(bodyBytes)

	form, _ := url.ParseQuery(requestBody)
	method := effectiveMethod(r.Method, form)
	field, value := submittedField(form)

	route := s.findMatchingRoute(method, r.URL.Path)

	var status int
	var responseBody string
	var matchedRule string

	if route == nil {
		// No matching route - return 404
		status = http.StatusNotFound
		responseBody = fmt.Sprintf("Mock server: No route configured for %s %s", method, r.URL.Path)
		matchedRule = "none"
	} else {
		if route.Delay > 0 {
			time.Sleep(time.Duration(route.Delay) * time.Millisecond)
		}

		status = route.Status
		if status == 0 {
			status = http.StatusOK
		}

		for key, value := range route.Headers {
			w.Header().Set(key, value)
		}

		switch {
		case route.BodyFile != "":
			filePath := route.BodyFile
			if !filepath.IsAbs(filePath) {
				filePath = filepath.Join(s.workdir, filePath)
			}
			b, err := os.ReadFile(filePath)
			if err != nil {
				status = http.StatusInternalServerError
				responseBody = fmt.Sprintf("Mock server: Failed to read body file %s: %v", route.BodyFile, err)
			} else {
				responseBody = string(b)
			}
		case route.Echo || route.Display != "":
			display := value
			if route.Display != "" {
				display = strings.ReplaceAll(route.Display, "{{value}}", value)
			}
			responseBody, _ = sjson.Set("", "display_as", display)
			w.Header().Set("Content-Type", "application/json")
		default:
			responseBody = route.Body
		}

		matchedRule = route.Name
		if matchedRule == "" {
			matchedRule = fmt.Sprintf("%s %s", route.Method, route.Path)
		}
	}

	w.WriteHeader(status)
	_, _ = w.Write([]byte(responseBody))

	entry := RequestLog{
		Timestamp:   start,
		Method:      method,
		Path:        r.URL.Path,
		Headers:     flattenHeaders(r.Header),
		Body:        requestBody,
		Field:       field,
		Value:       value,
		MatchedRule: matchedRule,
		Status:      status,
		Duration:    time.Since(start),
	}

	if s.config.Logging {
		s.logger.Info("update received",
			zap.String("method", method),
			zap.String("path", r.URL.Path),
			zap.String("field", field),
			zap.String("rule", matchedRule),
			zap.Int("status", status),
			zap.Duration("duration", entry.Duration))
	}
	s.logRequest(entry)
	if route != nil && status >= 200 && status < 300 {
		s.feed.Publish(entry)
	}
}

// effectiveMethod honours the _method override of form posts
func effectiveMethod(method string, form url.Values) string {
	if override := form.Get("_method"); override != "" && strings.EqualFold(method, http.MethodPost) {
		return strings.ToUpper(override)
	}
	return strings.ToUpper(method)
}

var fieldPattern = regexp.MustCompile(`^[^\[\]]+\[[^\[\]]+\]$`)

// submittedField returns the first object[attribute] pair of the form
func submittedField(form url.Values) (string, string) {
	for key, values := range form {
		if fieldPattern.MatchString(key) && len(values) > 0 {
			return key, values[0]
		}
	}
	return "", ""
}

// findMatchingRoute finds the first route that matches the method and path
func (s *Server) findMatchingRoute(method, path string) *Route {
	for i := range s.config.Routes {
		route := &s.config.Routes[i]
		if !strings.EqualFold(route.Method, method) {
			continue
		}

		matched := false
		switch route.PathType {
		case "", "exact":
			matched = route.Path == path
		case "prefix":
			matched = strings.HasPrefix(path, route.Path)
		case "regex":
			if re, err := regexp.Compile(route.Path); err == nil {
				matched = re.MatchString(path)
			}
		}

		if matched {
			return route
		}
	}

	return nil
}

// logRequest adds a request to the log
func (s *Server) logRequest(log RequestLog) {
	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	s.logs = append(s.logs, log)
	if len(s.logs) > maxLogs {
		s.logs = s.logs[len(s.logs)-maxLogs:]
	}

	// Notify listeners (non-blocking)
	select {
	case s.notifyCh <- struct{}{}:
	default:
	}
}

// NotifyChannel returns the notification channel
func (s *Server) NotifyChannel() <-chan struct{} {
	return s.notifyCh
}

// GetLogs returns all logged requests
func (s *Server) GetLogs() []RequestLog {
	s.logsMutex.RLock()
	defer s.logsMutex.RUnlock()

	logs := make([]RequestLog, len(s.logs))
	copy(logs, s.logs)
	return logs
}

// ClearLogs clears all logged requests
func (s *Server) ClearLogs() {
	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	s.logs = make([]RequestLog, 0)
}

// Address returns the base URL of the running server
func (s *Server) Address() string {
	if s.listener != nil {
		return "http://" + s.listener.Addr().String()
	}
	return "http://" + net.JoinHostPort(s.config.Host, fmt.Sprint(s.config.Port))
}

// flattenHeaders converts http.Header to map[string]string (first value only)
func flattenHeaders(headers http.Header) map[string]string {
	result := make(map[string]string)
	for key, values := range headers {
		if len(values) > 0 {
			result[key] = values[0]
		}
	}
	return result
}

// FeedPath returns the path of the update feed, or "" when disabled
func (s *Server) FeedPath() string {
	return s.config.Feed
}
