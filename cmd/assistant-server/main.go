// cmd/assistant-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sales-assistant/internal/annotator"
	"sales-assistant/internal/chat"
	"sales-assistant/internal/common/config"
	"sales-assistant/internal/common/database"
	"sales-assistant/internal/common/logger"
	"sales-assistant/internal/convo"
	"sales-assistant/internal/erp"
	"sales-assistant/internal/querylog"
	"sales-assistant/internal/server"
	"sales-assistant/internal/store"
)

const shutdownGrace = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("starting sales assistant", map[string]interface{}{
		"name":        cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	pg, err := connectPostgres(cfg, log)
	if err != nil {
		log.WithError(err).Error("postgres unavailable, giving up", nil)
		os.Exit(1)
	}
	defer pg.Close()

	rdb, err := connectRedis(cfg, log)
	if err != nil {
		log.WithError(err).Error("redis unavailable, giving up", nil)
		os.Exit(1)
	}
	defer rdb.Close()

	audit := buildAuditLogger(cfg, log)

	sales := store.NewSalesStore(pg.DB, log)
	accounting := store.NewAccountingStore(pg.DB, log)
	sessions := convo.NewStore(rdb.Client, cfg.Session, log)

	chatSvc := chat.NewService(chat.Deps{
		Config:     cfg,
		Sales:      sales,
		Accounting: accounting,
		Sessions:   sessions,
		Live:       erp.NewClient(cfg.ERP, nil, log),
		Annotator:  annotator.New(cfg.Annotator, log),
		Audit:      audit,
		Logger:     log,
	})

	srv := server.New(cfg, chatSvc, sales, pg, rdb, nil, log)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.WithError(err).Error("http server failed", nil)
		os.Exit(1)
	case sig := <-sigCh:
		log.Info("shutting down", map[string]interface{}{"signal": sig.String()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("graceful shutdown incomplete", nil)
	}
}

func connectPostgres(cfg *config.Config, log logger.Logger) (*database.PostgresClient, error) {
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return nil, err
	}
	if err := pingWithRetry(func(ctx context.Context) error { return pg.Ping(ctx) }, "postgres", log); err != nil {
		pg.Close()
		return nil, err
	}
	return pg, nil
}

func connectRedis(cfg *config.Config, log logger.Logger) (*database.RedisClient, error) {
	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		return nil, err
	}
	if err := pingWithRetry(func(ctx context.Context) error { return rdb.Ping(ctx) }, "redis", log); err != nil {
		rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// pingWithRetry gives a dependency a few seconds to come up, useful
// when the whole stack starts at once.
func pingWithRetry(ping func(context.Context) error, name string, log logger.Logger) error {
	var err error
	for attempt := 1; attempt <= 5; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err = ping(ctx)
		cancel()
		if err == nil {
			return nil
		}
		log.Warn("dependency not ready, retrying", map[string]interface{}{
			"dependency": name,
			"attempt":    attempt,
			"error":      err.Error(),
		})
		time.Sleep(time.Duration(attempt) * time.Second)
	}
	return err
}

func buildAuditLogger(cfg *config.Config, log logger.Logger) *querylog.Logger {
	esCfg := cfg.Database.Elasticsearch
	if !esCfg.Enabled {
		return querylog.Disabled()
	}
	es, err := database.NewElasticsearch(esCfg)
	if err != nil {
		log.WithError(err).Warn("elasticsearch client init failed, audit logging disabled", nil)
		return querylog.Disabled()
	}
	if err := es.Ping(); err != nil {
		log.WithError(err).Warn("elasticsearch unreachable at startup, audit writes may fail", nil)
	}
	return querylog.New(es.Client, esCfg, log)
}
