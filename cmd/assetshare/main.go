package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/wildone/asset-share-commons/internal/config"
	dbRedis "github.com/wildone/asset-share-commons/internal/db/redis"
	logpkg "github.com/wildone/asset-share-commons/internal/logger"
	"github.com/wildone/asset-share-commons/internal/metrics"
	assetrepo "github.com/wildone/asset-share-commons/internal/repository/asset"
	pcrepo "github.com/wildone/asset-share-commons/internal/repository/pageconfig"
	searchrepo "github.com/wildone/asset-share-commons/internal/repository/search"
	chiTransport "github.com/wildone/asset-share-commons/internal/transport/chi"
	healthuc "github.com/wildone/asset-share-commons/internal/usecase/health"
	pageconfiguc "github.com/wildone/asset-share-commons/internal/usecase/pageconfig"
	searchuc "github.com/wildone/asset-share-commons/internal/usecase/search"
	"github.com/wildone/asset-share-commons/internal/usecase/search/fragment"
	"github.com/wildone/asset-share-commons/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	logger, closeLog, err := logpkg.WithFile(logger, logpkg.FileConfig{
		Path:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   true,
	})
	if err != nil {
		panic("failed to open log file: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
		_ = closeLog()
	}()

	logger.Info("Starting asset share search server",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("index", cfg.Search.IndexName),
	)

	// Valkey Search indexes no TEXT fields; fulltext needs the redis driver.
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:      cfg.Database.Addrs,
		Username:   cfg.Database.Username,
		Password:   cfg.Database.Password,
		DB:         cfg.Database.DB,
		TextSearch: cfg.Database.Driver == config.DriverRedis,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	searchRepo := searchrepo.New(store, cfg.Search.IndexName)
	if cfg.Search.EnsureIndex {
		if err := searchRepo.EnsureIndex(ctx); err != nil {
			logger.Fatal("Failed to ensure asset index", zap.Error(err))
		}
		logger.Info("Asset index ready", zap.String("index", searchRepo.IndexName()))
		logger.Debug("Asset index schema", zap.String("schema", searchRepo.Schema()))
	}

	pages, err := pageStores(cfg, store)
	if err != nil {
		logger.Fatal("Failed to load static pages", zap.Error(err))
	}
	configs := pageconfiguc.New(
		pages,
		cfg.Search.ConfigCacheSize,
		time.Duration(cfg.Search.ConfigCacheTTLSec)*time.Second,
		logger,
	)

	registry := buildFragments(cfg.Fragments)
	logger.Info("Fragments registered", zap.Strings("fragments", registry.Names()))

	searchSvc := searchuc.New(configs, registry, searchRepo, assetrepo.New(store), logger)
	healthSvc := healthuc.New(store, searchRepo)

	server := chiTransport.NewServer(searchSvc, healthSvc, logger,
		chiTransport.WithExposeQuery(env != "prod"))
	r := chiTransport.NewRouter(server, cfg.Auth.APIKeys, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// pageStores orders the page config sources: stored properties, inline config, pages file.
func pageStores(cfg config.Config, store *dbRedis.Store) (pcrepo.Chain, error) {
	chain := pcrepo.Chain{pcrepo.New(store), pcrepo.NewStatic(cfg.Pages)}
	if cfg.Search.PagesFile == "" {
		return chain, nil
	}
	fromFile, err := pcrepo.LoadStatic(cfg.Search.PagesFile)
	if err != nil {
		return nil, err
	}
	return append(chain, fromFile), nil
}

// buildFragments registers the built-in fragments plus the configured static ones.
// Configured fragments are added in name order; a configured name shadows a built-in.
func buildFragments(defs map[string]map[string]string) *fragment.Registry {
	fragments := []fragment.Fragment{fragment.NewNotExpired(time.Now)}

	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fragments = append(fragments, fragment.NewStatic(name, defs[name]))
	}
	return fragment.NewRegistry(fragments...)
}
