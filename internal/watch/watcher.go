// Package watch rebuilds redirect artifacts on content changes and serves a
// local preview of the result.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/redirgen/internal/builder"
	"git.home.luguber.info/inful/redirgen/internal/config"
	"git.home.luguber.info/inful/redirgen/internal/logfields"
	"git.home.luguber.info/inful/redirgen/internal/metrics"
)

// Watcher ties the content watcher, the rebuild worker and the preview
// server together for one watch session.
type Watcher struct {
	cfg      *config.Config
	builder  *builder.Builder
	server   *Server
	recorder metrics.Recorder
}

// New creates a watch session. server may be nil for headless watch.
func New(cfg *config.Config, b *builder.Builder, server *Server, recorder metrics.Recorder) *Watcher {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Watcher{cfg: cfg, builder: b, server: server, recorder: recorder}
}

// Run builds once, then rebuilds on filesystem changes (and on the periodic
// rescan interval, when configured) until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	contentDir, err := filepath.Abs(w.cfg.Content.Directory)
	if err != nil {
		return fmt.Errorf("resolve content dir: %w", err)
	}
	if st, statErr := os.Stat(contentDir); statErr != nil || !st.IsDir() {
		return fmt.Errorf("content dir not found or not a directory: %s", contentDir)
	}

	// Initial build. A failure is reported but does not end the session;
	// the author is probably mid-edit.
	w.rebuild(ctx, "initial")

	if w.server != nil {
		if err := w.server.Start(ctx); err != nil {
			return err
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = fsw.Close() }()
	if err := addDirsRecursive(fsw, contentDir); err != nil {
		return err
	}

	rebuildReq, trigger := newDebouncer(w.cfg.Watch.DebounceDuration())
	w.startRebuildWorker(ctx, rebuildReq)

	scheduler, err := w.startRescanScheduler(trigger)
	if err != nil {
		return err
	}

	slog.Info("Watching for content changes",
		logfields.Path(contentDir),
		logfields.DurationMS(float64(w.cfg.Watch.DebounceDuration().Milliseconds())))

	for {
		select {
		case <-ctx.Done():
			return w.shutdown(scheduler)
		case ev, ok := <-fsw.Events:
			if !ok {
				return w.shutdown(scheduler)
			}
			w.handleFileEvent(fsw, ev, trigger)
		case err, ok := <-fsw.Errors:
			if !ok {
				return w.shutdown(scheduler)
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) shutdown(scheduler gocron.Scheduler) error {
	slog.Info("Shutting down watch session")
	if scheduler != nil {
		if err := scheduler.Shutdown(); err != nil {
			slog.Warn("Scheduler shutdown error", logfields.Error(err))
		}
	}
	if w.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := w.server.Stop(shutdownCtx); err != nil {
			slog.Warn("Preview server shutdown error", logfields.Error(err))
		}
	}
	return nil
}

// startRescanScheduler schedules full rescans when watch.rescan_interval is
// set. Rescans catch changes fsnotify can miss (network mounts, editors that
// swap whole directories).
func (w *Watcher) startRescanScheduler(trigger func(string)) (gocron.Scheduler, error) {
	interval := w.cfg.Watch.RescanDuration()
	if interval <= 0 {
		return nil, nil
	}
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { trigger("schedule") }),
		gocron.WithName("content-rescan"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rescan job: %w", err)
	}
	scheduler.Start()
	return scheduler, nil
}

// startRebuildWorker drains rebuild requests one at a time. A request that
// arrives while a build runs is queued, collapsed to a single follow-up.
func (w *Watcher) startRebuildWorker(ctx context.Context, rebuildReq chan string) {
	var mu sync.Mutex
	running := false
	pending := ""

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case trig, ok := <-rebuildReq:
				if !ok {
					return
				}
				mu.Lock()
				if running {
					pending = trig
					mu.Unlock()
					continue
				}
				running = true
				mu.Unlock()

				w.rebuild(ctx, trig)

				mu.Lock()
				running = false
				if pending != "" {
					next := pending
					pending = ""
					mu.Unlock()
					select {
					case rebuildReq <- next:
					default:
					}
				} else {
					mu.Unlock()
				}
			}
		}
	}()
}

// rebuild runs one build and, on success, swaps the fresh index into the
// preview server.
func (w *Watcher) rebuild(ctx context.Context, trigger string) {
	w.recorder.IncRebuild(trigger)
	result, err := w.builder.Build(ctx)
	if err != nil {
		slog.Warn("Rebuild failed", logfields.Error(err))
		return
	}
	if w.server != nil {
		w.server.SetIndex(result.Index)
	}
}

// newDebouncer returns a buffered request channel plus a trigger that
// coalesces bursts of events into one request after the quiet window.
func newDebouncer(quiet time.Duration) (chan string, func(string)) {
	var mu sync.Mutex
	var timer *time.Timer
	rebuildReq := make(chan string, 1)

	trigger := func(trig string) {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(quiet, func() {
			select {
			case rebuildReq <- trig:
			default:
			}
		})
	}
	return rebuildReq, trigger
}

// handleFileEvent filters noise and triggers a rebuild. New directories are
// added to the watch set so nested content is picked up.
func (w *Watcher) handleFileEvent(fsw *fsnotify.Watcher, ev fsnotify.Event, trigger func(string)) {
	if shouldIgnoreEvent(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = addDirsRecursive(fsw, ev.Name)
		}
	}
	slog.Debug("Content change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	trigger("fsnotify")
}

func addDirsRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(filepath.Base(path), ".") && path != root {
				return filepath.SkipDir
			}
			if err := fsw.Add(path); err != nil {
				slog.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// shouldIgnoreEvent reports events that never affect the built artifacts,
// mostly editor droppings.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, ".#") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	if base == "Thumbs.db" {
		return true
	}
	return false
}
