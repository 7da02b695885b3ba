package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
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
	fs := pflag.NewFlagSet("suneater-mcp-stdio", pflag.ExitOnError)
	cfgFile := fs.String("config", "", "config file")
	fs.BoolP("verbose", "v", false, "log at debug level")
	fs.String("log-file", "", "log file (default stderr)")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	cfg, err := config.Load(config.Options{File: *cfgFile, Flags: fs})
	if err != nil {
		return err
	}
	// Stdout carries the protocol; logs go to stderr or the log file.
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
	// Admin tools are only exposed over HTTP where the API key is checked.
	server := mcpsrv.NewServer(catalog.Default(), source, version, &mcpsrv.ServerOptions{Logger: logger})

	if cfg.MCP.CacheClearInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.MCP.CacheClearInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					source.ClearCache()
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	logger.Debug("stdio mcp server starting", zap.Bool("remote", cfg.RemoteEnabled()))
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("stdio mcp server failed: %w", err)
	}
	return nil
}
