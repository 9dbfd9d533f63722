package commands

import (
	"context"
	"os/signal"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/redirgen/internal/builder"
	"git.home.luguber.info/inful/redirgen/internal/config"
	rerrors "git.home.luguber.info/inful/redirgen/internal/errors"
	"git.home.luguber.info/inful/redirgen/internal/metrics"
	"git.home.luguber.info/inful/redirgen/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Output   string `short:"o" help:"Output directory for emitted artifacts (overrides config)"`
	Port     int    `short:"p" help:"Preview server port (overrides config)"`
	NoServer bool   `help:"Rebuild on changes without serving a preview"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return rerrors.ConfigError(err, "failed to load configuration")
	}
	if w.Port != 0 {
		cfg.Watch.Port = w.Port
	}
	outputDir := ResolveOutputDir(w.Output, cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg := prom.NewRegistry()
	reg.MustRegister(promcollect.NewGoCollector(), promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}))
	recorder := metrics.NewPrometheusRecorder(reg)

	store, err := openHistory(cfg)
	if err != nil {
		return rerrors.Wrap(err, rerrors.CategoryHistory, rerrors.SeverityError, "failed to open history store")
	}
	if store != nil {
		defer func() { _ = store.Close() }()
	}

	notifier := openNotifier(cfg)
	if notifier != nil {
		defer notifier.Close()
	}

	b := builder.New(cfg, outputDir).
		SetRecorder(recorder).
		SetHistory(store).
		SetNotifier(notifier)

	var server *watch.Server
	if !w.NoServer {
		server = watch.NewServer(outputDir, cfg.Site.BasePath, cfg.Watch.Port, recorder, reg)
	}

	return watch.New(cfg, b, server, recorder).Run(ctx)
}
