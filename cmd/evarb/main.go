package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alejandrodnm/evarb/config"
	"github.com/alejandrodnm/evarb/internal/adapters/deribit"
	"github.com/alejandrodnm/evarb/internal/adapters/notify"
	"github.com/alejandrodnm/evarb/internal/adapters/polymarket"
	"github.com/alejandrodnm/evarb/internal/adapters/storage"
	"github.com/alejandrodnm/evarb/internal/engine"
	"github.com/alejandrodnm/evarb/internal/reconcile"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one tick and exit")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full record table (default: compact 1-line)")
	reconcileNow := flag.Bool("reconcile", false, "run one reconciliation cycle and exit")
	reportNow := flag.Bool("report", false, "print the last 24h of records and pnl snapshots and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("evarb starting",
		"config", *configPath,
		"events", len(cfg.Events),
		"interval", cfg.CheckInterval(),
		"dry_trade", cfg.Thresholds.DryTrade,
		"once", *once,
	)

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	csvLog, err := storage.NewCSVLog(cfg.Thresholds.OutputCSV)
	if err != nil {
		slog.Error("failed to open csv log", "err", err, "path", cfg.Thresholds.OutputCSV)
		os.Exit(1)
	}

	options := deribit.NewClient(cfg.API.DeribitBase)
	prediction := polymarket.NewClient(cfg.API.CLOBBase)
	notifier := notify.NewConsole(*table, cfg.Thresholds.NotifyNetEvMin)

	reconciler := reconcile.New(
		reconcile.Config{DiffToleranceUSD: cfg.Reconcile.DiffToleranceUSD},
		store,
		prediction,
		store,
		notifier,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *reconcileNow {
		if _, err := reconciler.Reconcile(ctx); err != nil {
			slog.Error("reconciliation failed", "err", err)
			os.Exit(1)
		}
		return
	}

	if *reportNow {
		if err := reconcile.DailyReport(ctx, store, notifier, time.Now()); err != nil {
			slog.Error("daily report failed", "err", err)
			os.Exit(1)
		}
		return
	}

	scheduler, err := reconcile.NewScheduler(cfg.Reconcile.Schedule, reconciler)
	if err != nil {
		slog.Error("failed to schedule reconciler", "err", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	e := buildEngine(cfg, *once, options, prediction, store, csvLog, notifier)
	if err := e.Run(ctx); err != nil {
		slog.Error("engine exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("evarb stopped cleanly")
}

// buildEngine cablea el engine a partir de la configuración validada.
func buildEngine(
	cfg *config.Config,
	once bool,
	options *deribit.Client,
	prediction *polymarket.Client,
	store *storage.SQLiteStorage,
	csvLog *storage.CSVLog,
	notifier *notify.Console,
) *engine.Engine {
	events := make([]engine.Event, 0, len(cfg.Events))
	for _, ev := range cfg.Events {
		events = append(events, engine.Event{
			Name:       ev.Name,
			Asset:      ev.Asset,
			PmAssetID:  ev.PmAssetID,
			K1Strike:   ev.K1Strike,
			K2Strike:   ev.K2Strike,
			Expiration: ev.Expiration,
		})
	}

	filter := engine.NewTradeFilter(engine.FilterConfig{
		MinPmPrice:  cfg.Thresholds.MinPmPrice,
		MaxPmPrice:  cfg.Thresholds.MaxPmPrice,
		MinNetEv:    cfg.Thresholds.MinNetEv,
		MinRoiPct:   cfg.Thresholds.MinRoiPct,
		DailyTrades: cfg.Thresholds.DailyTrades,
	})

	evaluator := engine.NewEvaluator(cfg.CostParameters(), engine.EvaluatorConfig{
		EvSpreadMin:     cfg.Thresholds.EvSpreadMin,
		MinContractSize: cfg.Thresholds.MinContractSize,
		RiskFactor:      cfg.Costs.RiskFactor,
		DryTrade:        cfg.Thresholds.DryTrade,
	}, filter)

	return engine.New(
		engine.Config{
			Events:        events,
			Investments:   cfg.Thresholds.Investments,
			CheckInterval: cfg.CheckInterval(),
			TickTimeout:   cfg.TickTimeout(),
			Workers:       cfg.Thresholds.AnalysisWorkers,
			Once:          once,
		},
		options,
		prediction,
		engine.NewNormalizer(cfg.Costs.RiskFreeRate, cfg.Costs.Volatility),
		evaluator,
		engine.NewRecorder(store, csvLog),
		notifier,
	)
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
