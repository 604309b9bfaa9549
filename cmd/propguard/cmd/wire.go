package cmd

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/propguard/broker"
	"github.com/rustyeddy/propguard/broker/oanda"
	"github.com/rustyeddy/propguard/broker/paper"
	"github.com/rustyeddy/propguard/config"
	"github.com/rustyeddy/propguard/engine"
	"github.com/rustyeddy/propguard/internal/logger"
	"github.com/rustyeddy/propguard/journal"
	"github.com/rustyeddy/propguard/monitoring"
	"github.com/rustyeddy/propguard/notify"
	"github.com/rustyeddy/propguard/risk"
	"github.com/rustyeddy/propguard/sentiment"
	"github.com/rustyeddy/propguard/strategies"
)

// app is one fully wired account.
type app struct {
	orch    *engine.Orchestrator
	broker  broker.Broker
	paper   *paper.Broker // set for paper runs
	journal journal.Journal
	metrics *monitoring.Metrics
}

func (a *app) Close() error {
	return a.journal.Close()
}

func build(cfg *config.Config) (*app, error) {
	logger.SetLevel(cfg.LogLevel)

	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}
	gov, err := risk.NewGovernor(policy)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfiguration, err)
	}
	det, err := strategies.ByName(cfg.DetectorConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfiguration, err)
	}

	a := &app{metrics: monitoring.New(nil)}
	switch strings.ToLower(cfg.Broker.Type) {
	case "oanda":
		base, err := oanda.BaseURL(cfg.Broker.OANDA.Env)
		if err != nil {
			return nil, err
		}
		c := oanda.NewClient(cfg.Broker.OANDA.Token, cfg.Broker.OANDA.AccountID, true)
		c.BaseURL = base
		a.broker = c
	default:
		candles, err := paper.LoadCSV(cfg.Broker.Paper.CandlesFile)
		if err != nil {
			return nil, fmt.Errorf("load paper candles: %w", err)
		}
		pb, err := paper.New(cfg.Strategy.Symbol, candles, cfg.Account.Balance, cfg.Broker.Paper.Warmup)
		if err != nil {
			return nil, fmt.Errorf("paper broker: %w", err)
		}
		a.broker = pb
		a.paper = pb
	}

	switch strings.ToLower(cfg.Journal.Type) {
	case "csv":
		a.journal, err = journal.NewCSV(cfg.Journal.Dir)
	case "sqlite":
		a.journal, err = journal.NewSQLite(cfg.Journal.DBPath)
	default:
		a.journal = journal.Discard{}
	}
	if err != nil {
		return nil, fmt.Errorf("create journal: %w", err)
	}

	notifiers := notify.Multi{notify.Log{}}
	if cfg.Notify.TelegramToken != "" {
		notifiers = append(notifiers, notify.NewTelegram(cfg.Notify.TelegramToken, cfg.Notify.TelegramChat))
	}

	opts := []engine.Option{
		engine.WithJournal(a.journal),
		engine.WithNotifier(notifiers),
		engine.WithMetrics(a.metrics),
	}
	switch strings.ToLower(cfg.Sentiment.Provider) {
	case "static":
		opts = append(opts, engine.WithSentiment(sentiment.Static(cfg.Sentiment.Static)))
	case "http":
		opts = append(opts, engine.WithSentiment(sentiment.NewHTTP(cfg.Sentiment.URL, cfg.Sentiment.Token)))
	}

	s := engine.Settings{
		Symbol:         cfg.Strategy.Symbol,
		Timeframe:      cfg.Strategy.Timeframe,
		CandleLimit:    cfg.Strategy.CandleLimit,
		RiskPerTrade:   cfg.Strategy.MaxRiskPerTrade,
		StopDistance:   cfg.Strategy.StopDistance,
		TargetDistance: cfg.Strategy.TargetDistance,
		SentimentText:  cfg.Strategy.SentimentText,
	}
	a.orch, err = engine.New(s, gov, det, a.broker, a.broker, opts...)
	if err != nil {
		a.journal.Close()
		return nil, err
	}
	return a, nil
}
