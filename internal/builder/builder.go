// Package builder orchestrates one redirect build: scan the content tree,
// resolve the redirect index, and run the configured artifact emitters.
package builder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/redirgen/internal/config"
	"git.home.luguber.info/inful/redirgen/internal/content"
	"git.home.luguber.info/inful/redirgen/internal/emit"
	"git.home.luguber.info/inful/redirgen/internal/history"
	"git.home.luguber.info/inful/redirgen/internal/logfields"
	"git.home.luguber.info/inful/redirgen/internal/metrics"
	"git.home.luguber.info/inful/redirgen/internal/notify"
	"git.home.luguber.info/inful/redirgen/internal/redirect"
)

// Builder runs redirect builds for one configuration.
type Builder struct {
	cfg       *config.Config
	outputDir string
	recorder  metrics.Recorder
	store     *history.Store
	notifier  notify.Notifier
}

// Result carries the outcome of one build for callers that keep serving from
// it (watch mode) or report on it (build command).
type Result struct {
	Report *emit.BuildReport
	Index  *redirect.Index
	Pairs  []redirect.Pair
}

// New creates a builder writing artifacts under outputDir.
func New(cfg *config.Config, outputDir string) *Builder {
	return &Builder{
		cfg:       cfg,
		outputDir: filepath.Clean(outputDir),
		recorder:  metrics.NoopRecorder{},
	}
}

// SetRecorder injects a metrics recorder (optional). Returns the builder for chaining.
func (b *Builder) SetRecorder(r metrics.Recorder) *Builder {
	if r == nil {
		b.recorder = metrics.NoopRecorder{}
		return b
	}
	b.recorder = r
	return b
}

// SetHistory injects the build history store (optional).
func (b *Builder) SetHistory(s *history.Store) *Builder {
	b.store = s
	return b
}

// SetNotifier injects the map change notifier (optional).
func (b *Builder) SetNotifier(n notify.Notifier) *Builder {
	b.notifier = n
	return b
}

// Build runs one full build and returns its result.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	report := emit.NewBuildReport(b.cfg.Content.Directory)
	slog.Info("Starting redirect build",
		logfields.BuildID(report.BuildID),
		logfields.Path(b.outputDir))

	result, err := b.run(ctx, report)
	report.Finish()

	b.recorder.ObserveBuildDuration(report.Duration())
	if err != nil {
		b.recorder.IncBuildOutcome("failed")
		return nil, err
	}
	b.recorder.IncBuildOutcome("success")
	b.recorder.SetPagesScanned(report.Pages)
	b.recorder.SetRedirectsResolved(report.Redirects)

	if err := report.Write(b.outputDir); err != nil {
		return nil, err
	}
	if b.store != nil {
		if err := b.store.Append(ctx, report); err != nil {
			slog.Warn("Failed to record build in history", logfields.Error(err))
		}
	}

	slog.Info("Redirect build finished",
		logfields.BuildID(report.BuildID),
		logfields.Count(report.Redirects),
		logfields.DurationMS(float64(report.Duration().Milliseconds())))
	return result, nil
}

func (b *Builder) run(ctx context.Context, report *emit.BuildReport) (*Result, error) {
	scanner := content.NewScanner(b.cfg.Content.Directory, b.cfg.Content.RedirectField)
	pages, err := scanner.Scan()
	if err != nil {
		return nil, err
	}
	report.Pages = len(pages)

	idx := redirect.NewIndex(pages)
	pairs := idx.Pairs()
	report.Redirects = len(pairs)

	if b.cfg.Output.Clean {
		if err := b.cleanOutputDir(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(b.outputDir, 0o750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	if b.cfg.Redirects.PagesEnabled() {
		pe, err := emit.NewPageEmitter(b.outputDir, b.cfg.TemplatePath(), b.cfg.Site.BasePath, b.cfg.Site.BaseURL)
		if err != nil {
			return nil, err
		}
		n, err := pe.Emit(pairs)
		if err != nil {
			return nil, err
		}
		report.PagesEmitted = n
	}

	if b.cfg.Redirects.MapEnabled() {
		me := emit.NewMapEmitter(b.outputDir, b.cfg.Redirects.MapFile, b.cfg.Site.BasePath)
		checksum, err := me.Emit(pairs)
		if err != nil {
			return nil, err
		}
		report.MapEmitted = true
		report.MapChecksum = checksum
		b.notifyMapChange(ctx, report, me.MapPath())
	}

	return &Result{Report: report, Index: idx, Pairs: pairs}, nil
}

// notifyMapChange publishes the new checksum unless it matches the previous
// build's. Notification failures never fail the build.
func (b *Builder) notifyMapChange(ctx context.Context, report *emit.BuildReport, mapPath string) {
	if b.notifier == nil {
		return
	}
	if b.store != nil {
		last, err := b.store.LastChecksum(ctx)
		if err == nil && last == report.MapChecksum {
			slog.Debug("Map unchanged, skipping notification", logfields.Checksum(last))
			return
		}
	}
	event := notify.MapChangeEvent{
		BuildID:   report.BuildID,
		Checksum:  report.MapChecksum,
		MapPath:   mapPath,
		Redirects: report.Redirects,
	}
	if err := b.notifier.PublishMapChange(event); err != nil {
		slog.Warn("Failed to publish map change event", logfields.Error(err))
	}
}

// cleanOutputDir removes previous build artifacts but leaves the directory
// itself (and anything hidden, e.g. .git) in place.
func (b *Builder) cleanOutputDir() error {
	entries, err := os.ReadDir(b.outputDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read output directory: %w", err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if err := os.RemoveAll(filepath.Join(b.outputDir, entry.Name())); err != nil {
			return fmt.Errorf("clean output directory: %w", err)
		}
	}
	return nil
}
