package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/studiowebux/inplace/internal/mock"
)

// ServeOptions contains options for the mock update endpoint
type ServeOptions struct {
	ConfigPath string
	Host       string
	Port       int // -1 keeps the configured port
	Logger     *zap.Logger
}

// StartMock loads the endpoint configuration and starts serving it in the
// background. The built-in accept-all routes are used without a config file.
func StartMock(opts ServeOptions) (*mock.Server, error) {
	cfg := mock.DefaultConfig()
	workdir := "."
	if opts.ConfigPath != "" {
		loaded, err := mock.LoadConfig(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
		workdir = filepath.Dir(opts.ConfigPath)
	}
	if opts.Host != "" {
		cfg.Host = opts.Host
	}
	if opts.Port >= 0 {
		cfg.Port = opts.Port
	}

	srv := mock.NewServer(cfg, workdir, opts.Logger)
	if err := srv.Start(); err != nil {
		return nil, err
	}
	return srv, nil
}

// Serve runs the mock endpoint until ctx is done
func Serve(ctx context.Context, w io.Writer, opts ServeOptions) error {
	srv, err := StartMock(opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Listening on %s\n", srv.Address())
	if feed := srv.FeedPath(); feed != "" {
		fmt.Fprintf(w, "Update feed on %s\n", mock.FeedURL(srv.Address(), feed))
	}

	<-ctx.Done()
	return srv.Stop()
}

// Watch prints every update broadcast on a mock endpoint feed
func Watch(ctx context.Context, w io.Writer, feedURL string) error {
	return mock.Watch(ctx, feedURL, func(ev mock.FeedEvent) {
		fmt.Fprintf(w, "%s  %s%d%s  %-6s %s  %s = %q\n",
			ev.Timestamp.Local().Format("15:04:05"),
			getStatusColor(ev.Status), ev.Status, colorReset,
			ev.Method,
			ev.Path,
			ev.Field,
			ev.Value,
		)
	})
}
