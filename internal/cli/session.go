package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"vlmbench/internal/classify"
	"vlmbench/internal/config"
	"vlmbench/internal/itemid"
	"vlmbench/internal/logging"
	"vlmbench/internal/metadata"
	"vlmbench/internal/metrics"
	"vlmbench/internal/oracle"
	"vlmbench/internal/spec"
	"vlmbench/internal/tasks"
)

// session holds what every config-driven command needs.
type session struct {
	cfg        spec.Config
	configPath string
	logger     *slog.Logger
	closers    []io.Closer
}

// openSession loads the config and builds the logger. console receives the
// human-readable log stream.
func openSession(g globalFlags, console io.Writer) (*session, error) {
	path, err := resolveConfigPath(g.configPath)
	if err != nil {
		return nil, fmt.Errorf("locate config: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logFile := cfg.Logging.File
	if g.logPath != "" {
		logFile = g.logPath
	}
	logger, closer, err := logging.New(logging.Options{
		Level:   cfg.Logging.Level,
		Debug:   g.debug,
		NoColor: g.noColor,
		File:    logFile,
		Console: console,
	})
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	return &session{cfg: cfg, configPath: path, logger: logger, closers: []io.Closer{closer}}, nil
}

func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i].Close()
	}
}

// applyTask overrides run.task and run.subtask and returns the definition.
func (s *session) applyTask(t taskFlag) (tasks.Definition, error) {
	task, subtask, ok, err := t.split()
	if err != nil {
		return tasks.Definition{}, err
	}
	if ok {
		s.cfg.Run.Task, s.cfg.Run.Subtask = task, subtask
	}
	return tasks.Lookup(s.cfg.Run.Task, s.cfg.Run.Subtask)
}

// applyRange overrides the configured range and returns it.
func (s *session) applyRange(r rangeFlags) itemid.Range {
	if r.start >= 0 {
		s.cfg.Run.Start = r.start
	}
	if r.end >= 0 {
		s.cfg.Run.End = r.end
	}
	return itemid.Range{Start: s.cfg.Run.Start, End: s.cfg.Run.End}
}

// openMetadataStore opens the configured metadata backend.
func (s *session) openMetadataStore() (metadata.Store, error) {
	var (
		store metadata.Store
		err   error
	)
	switch s.cfg.Metadata.Kind {
	case "sqlite":
		store, err = metadata.OpenSQLite(s.cfg.Metadata.SQLitePath)
	case "redis":
		store, err = metadata.OpenRedis(metadata.RedisConfig{
			URL:       s.cfg.Metadata.RedisURL,
			Password:  s.cfg.Metadata.RedisPassword,
			KeyPrefix: s.cfg.Metadata.KeyPrefix,
		})
	default:
		store, err = metadata.NewDirStore(s.cfg.Metadata.Dir)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s metadata store: %w", s.cfg.Metadata.Kind, err)
	}
	s.closers = append(s.closers, store)
	return store, nil
}

func (s *session) classifier() (*classify.Classifier, error) {
	store, err := s.openMetadataStore()
	if err != nil {
		return nil, err
	}
	return classify.New(store, s.logger), nil
}

// newOracle builds the oracle client for def, instrumented with metrics.
func (s *session) newOracle(def tasks.Definition) (oracle.Oracle, string, error) {
	cfg := s.cfg.Oracle
	model := config.OracleModel(s.cfg, def.NeedsEvaluator)
	schemas, err := oracle.CompileSchemaFiles(cfg.ResponseSchemas)
	if err != nil {
		return nil, "", fmt.Errorf("response schemas: %w", err)
	}
	var temperature float64
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	client, err := oracle.NewClient(oracle.Config{
		Backend:     oracle.Backend(cfg.Backend),
		BaseURL:     cfg.BaseURL,
		APIKey:      config.APIKey(s.cfg),
		Model:       model,
		Temperature: temperature,
		MaxTokens:   cfg.MaxTokens,
		CallTimeout: time.Duration(cfg.CallTimeoutSeconds) * time.Second,
		Images:      oracle.ImageEncoder{MaxSide: cfg.MaxImageSide},
		Schemas:     schemas,
		HTTP:        &http.Client{Timeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second},
		Logger:      s.logger,
	})
	if err != nil {
		return nil, "", err
	}
	return oracle.Observe(client, metrics.CallObserver{}), model, nil
}

// startMetrics serves /metrics when metrics.listen is set. The returned stop
// function is always safe to call.
func (s *session) startMetrics() (func(), error) {
	if s.cfg.Metrics.Listen == "" {
		return func() {}, nil
	}
	server := metrics.NewServer(s.cfg.Metrics.Listen, s.logger)
	addr, err := server.Start()
	if err != nil {
		return nil, fmt.Errorf("start metrics server: %w", err)
	}
	s.logger.Info("metrics listening", "addr", addr)
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Stop(ctx)
	}, nil
}
