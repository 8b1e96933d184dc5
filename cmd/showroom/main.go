package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hazyhaar/showroom/pkg/api"
	"github.com/hazyhaar/showroom/pkg/chassis"
	"github.com/hazyhaar/showroom/pkg/importer"
	"github.com/hazyhaar/showroom/pkg/searchlog"
	"github.com/hazyhaar/showroom/pkg/site"
	"github.com/mark3labs/mcp-go/server"
)

const version = "0.3.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmdServe(os.Args[2:])
	case "build":
		cmdBuild(os.Args[2:])
	case "import":
		cmdImport(os.Args[2:])
	case "resolve":
		cmdResolve(os.Args[2:])
	case "misses":
		cmdMisses(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: showroom <command> [flags]

Commands:
  serve     Start the HTTP server (SIGHUP reloads content)
  build     Normalize content into snapshot.gob and report problems
  import    Refresh content files from their upstream feeds
  resolve   Show how a search query resolves
  misses    List the most frequent searches that found nothing
`)
}

// setup loads the config and builds the logger shared by every command.
func setup(fs *flag.FlagSet, args []string) (config, *slog.Logger) {
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg, os.Stderr)
	slog.SetDefault(logger)
	return cfg, logger
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfg, logger := setup(fs, args)

	// Load content.
	reg := site.NewRegistry(cfg.ContentDir, site.WithLogger(logger))
	if err := reg.Load(); err != nil {
		logger.Error("failed to load content", "dir", cfg.ContentDir, "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Error("create data dir", "error", err)
		os.Exit(1)
	}

	var opts []api.Option
	opts = append(opts, api.WithLogger(logger))
	if cfg.SearchLog {
		searches, err := searchlog.Open(filepath.Join(cfg.DataDir, "search.db"))
		if err != nil {
			logger.Error("open search log", "error", err)
			os.Exit(1)
		}
		defer searches.Close()
		opts = append(opts, api.WithSearchLog(searches.Middleware(logger)))
	}

	var mcpSrv *server.MCPServer
	if cfg.MCP {
		mcpSrv = server.NewMCPServer("showroom", version, server.WithToolCapabilities(false))
		api.RegisterMCPTools(mcpSrv, reg, opts...)
		opts = append(opts, api.WithMCP(mcpSrv))
	}

	router := api.NewRouter(reg, opts...)

	srv, err := chassis.New(chassis.Config{
		Addr:     cfg.Addr,
		TLS:      cfg.TLS.Enabled,
		CertFile: cfg.TLS.CertFile,
		KeyFile:  cfg.TLS.KeyFile,
		HTTP3:    cfg.TLS.HTTP3,
		Handler:  router,
		Logger:   logger,
	})
	if err != nil {
		logger.Error("chassis", "error", err)
		os.Exit(1)
	}

	// SIGHUP: hot reload content.
	// SIGINT/SIGTERM: graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	go func() {
		for range sighup {
			logger.Info("SIGHUP received, reloading content")
			if err := reg.Reload(); err != nil {
				logger.Error("reload failed, keeping previous content", "error", err)
			}
		}
	}()

	if interval, _ := cfg.checkInterval(); interval > 0 {
		go startChecker(ctx, cfg, reg, logger, interval)
	}

	logger.Info("showroom listening", "addr", cfg.Addr, "tls", cfg.TLS.Enabled, "mcp", cfg.MCP)
	if err := srv.Start(ctx); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Stop(shutdownCtx)
}

// startChecker runs the periodic feed availability check until ctx ends.
func startChecker(ctx context.Context, cfg config, reg *site.Registry, logger *slog.Logger, interval time.Duration) {
	s, err := reg.Site()
	if err != nil {
		return
	}
	sdb, err := importer.OpenSourceDB(filepath.Join(cfg.DataDir, "sources.db"))
	if err != nil {
		logger.Error("open source db", "error", err)
		return
	}
	defer sdb.Close()
	if err := sdb.Seed(importer.Feeds(s.Manifest())); err != nil {
		logger.Error("seed sources", "error", err)
		return
	}
	importer.NewChecker(sdb, logger, interval).Start(ctx)
}
