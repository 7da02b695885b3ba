package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/grant/suneater/catalog"
	"github.com/grant/suneater/config"
	"github.com/grant/suneater/github"
	"github.com/grant/suneater/logging"
	"github.com/grant/suneater/mcpsrv"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	fs := pflag.NewFlagSet("suneater-mcp", pflag.ExitOnError)
	cfgFile := fs.String("config", "", "config file")
	fs.String("port", "", "listen port (default 8080, or $PORT)")
	fs.BoolP("verbose", "v", false, "log at debug level")
	fs.String("log-file", "", "log file (default stderr)")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	cfg, err := config.Load(config.Options{File: *cfgFile, Flags: fs})
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{Verbose: cfg.Log.Verbose, File: cfg.Log.File})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source := github.New(github.Options{
		Owner:   cfg.GitHub.Owner,
		Repo:    cfg.GitHub.Repo,
		APIBase: cfg.GitHub.APIBase,
		WebBase: cfg.GitHub.WebBase,
		Timeout: cfg.GitHub.Timeout,
		Memoize: true,
	})
	opts := mcpsrv.ServerOptionsFrom(cfg.MCP)
	opts.Logger = logger
	server := mcpsrv.NewServer(catalog.Default(), source, version, opts)

	mcpHandler := mcpsrv.NewHandler(server, mcpsrv.StreamableOptions(cfg.MCP))
	mux := mcpsrv.NewMux(mcpsrv.WrapMCPHandler(mcpHandler, cfg.MCP), logger)

	if cfg.MCP.CacheClearInterval > 0 {
		go clearCachePeriodically(ctx, source, cfg.MCP.CacheClearInterval, logger)
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.MCP.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      0,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown error", zap.Error(err))
		}
	}()

	logger.Info("suneater-mcp listening",
		zap.String("addr", httpServer.Addr),
		zap.Bool("remote", cfg.RemoteEnabled()),
		zap.Bool("admin", opts.EnableAdmin),
		zap.String("config_file", cfg.File))
	err = httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func clearCachePeriodically(ctx context.Context, source *github.Client, every time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			source.ClearCache()
			logger.Debug("listing cache cleared")
		case <-ctx.Done():
			return
		}
	}
}
