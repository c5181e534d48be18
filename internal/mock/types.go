package mock

import "time"

// Config represents the mock update endpoint configuration
type Config struct {
	Port    int     `json:"port" yaml:"port"`                     // Server port (default: 8080, 0 picks a free port when Listen is used)
	Host    string  `json:"host" yaml:"host"`                     // Server host (default: localhost)
	Routes  []Route `json:"routes" yaml:"routes"`                 // Route definitions
	Logging bool    `json:"logging" yaml:"logging"`               // Enable request logging (default: true)
	Feed    string  `json:"feed,omitempty" yaml:"feed,omitempty"` // WebSocket path broadcasting accepted updates
}

// Route represents a mock route configuration
type Route struct {
	Name        string            `json:"name,omitempty" yaml:"name,omitempty"`               // Route description
	Method      string            `json:"method" yaml:"method"`                               // HTTP method; matched against _method too
	Path        string            `json:"path" yaml:"path"`                                   // URL path pattern
	PathType    string            `json:"pathType,omitempty" yaml:"pathType,omitempty"`       // exact, prefix, regex (default: exact)
	Status      int               `json:"status" yaml:"status"`                               // HTTP status code
	Headers     map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`         // Response headers
	Body        string            `json:"body,omitempty" yaml:"body,omitempty"`               // Response body
	BodyFile    string            `json:"bodyFile,omitempty" yaml:"bodyFile,omitempty"`       // Path to response body file
	Echo        bool              `json:"echo,omitempty" yaml:"echo,omitempty"`               // Reply {"display_as": <submitted value>}
	Display     string            `json:"display,omitempty" yaml:"display,omitempty"`         // display_as template, {{value}} is replaced
	Delay       int               `json:"delay,omitempty" yaml:"delay,omitempty"`             // Response delay in milliseconds
	Description string            `json:"description,omitempty" yaml:"description,omitempty"` // Route documentation
}

// RequestLog represents a logged update
type RequestLog struct {
	Timestamp   time.Time         `json:"timestamp"`
	Method      string            `json:"method"`
	Path        string            `json:"path"`
	Headers     map[string]string `json:"headers"`
	Body        string            `json:"body"`
	Field       string            `json:"field,omitempty"`
	Value       string            `json:"value,omitempty"`
	MatchedRule string            `json:"matchedRule"`
	Status      int               `json:"status"`
	Duration    time.Duration     `json:"duration"`
}
