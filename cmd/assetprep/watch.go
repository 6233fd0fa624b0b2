package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/assetprep/internal/logger"
)

// watchDebounce coalesces the burst of events an editor save produces.
const watchDebounce = 200 * time.Millisecond

func cmdWatch(ctx context.Context, args []string, stdout io.Writer) error {
	var c common
	fs := newFlagSet("watch", &c)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	path, err := sceneArg(fs)
	if err != nil {
		return err
	}

	cfg, err := setup(&c)
	if err != nil {
		return err
	}

	path, err = filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// watch the directory so atomic replace-on-save is seen
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	analyze := func() {
		s, err := open(cfg, path)
		if err != nil {
			logger.Warn("scene unreadable", zap.String("path", path), zap.Error(err))
			return
		}
		if err := s.wf.RunAnalysis(ctx, c.objects()); err != nil {
			logger.Warn("analysis failed", zap.Error(err))
			return
		}
		fmt.Fprintf(stdout, "== %s (%s)\n", filepath.Base(path), time.Now().Format("15:04:05"))
		if err := printReport(stdout, s.wf.Report(), c.report); err != nil {
			logger.Warn("report failed", zap.Error(err))
		}
	}

	analyze()
	logger.Info("watching", zap.String("path", path))

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				fire = time.After(watchDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))
		case <-fire:
			fire = nil
			logger.Sugar.Infof("%s changed, re-analyzing", filepath.Base(path))
			analyze()
		}
	}
}
