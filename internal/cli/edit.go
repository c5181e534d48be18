package cli

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/studiowebux/inplace/internal/keybinds"
	"github.com/studiowebux/inplace/internal/mock"
	"github.com/studiowebux/inplace/internal/session"
	"github.com/studiowebux/inplace/internal/tui"
)

// EditOptions contains options for the interactive editor
type EditOptions struct {
	DocumentOptions
	OutPath string
	Keys    *keybinds.Registry
	History tui.JournalStore

	// Mock starts the mock endpoint and points the document at it
	Mock     bool
	MockOpts ServeOptions
}

// Edit opens the document in the terminal UI until the user quits
func Edit(ctx context.Context, opts EditOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if opts.Mock {
		srv, err := StartMock(opts.MockOpts)
		if err != nil {
			return err
		}
		defer func() {
			if err := srv.Stop(); err != nil {
				logger.Warn("failed to stop mock server", zap.Error(err))
			}
		}()
		if opts.Location == "" {
			opts.Location = srv.Address() + "/"
		}
		if feed := srv.FeedPath(); feed != "" {
			logger.Info("mock feed", zap.String("url", mock.FeedURL(srv.Address(), feed)))
		}
	}
	if opts.Location == "" {
		return fmt.Errorf("no document URL: pass --url or --mock")
	}

	sess, err := session.Open(opts.Path, session.Options{
		Location: opts.Location,
		Defaults: opts.Defaults,
		Journal:  opts.Journal,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancel := context.WithCancel(gctx)
	defer cancel()

	g.Go(func() error {
		return sess.Run(runCtx)
	})
	g.Go(func() error {
		defer cancel()
		err := tui.Run(runCtx, sess, tui.Options{
			OutPath: opts.OutPath,
			Journal: opts.History,
			Keys:    opts.Keys,
		})
		if err != nil && runCtx.Err() != nil {
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if sess.Dirty() {
		logger.Warn("quit with unsaved changes", zap.String("document", opts.Path))
	}
	return nil
}
