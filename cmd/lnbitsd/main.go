// Lnbitsd is an MCP server exposing LNbits Lightning payment tools.
//
// It speaks MCP over stdio by default, or over streamable HTTP with -http.
// Tools cover wallet queries, invoice creation, payments (bolt11 and
// lightning addresses), LNURLp pay links, and runtime credential
// configuration. Each caller session gets isolated credentials unless
// -single-user is set.
//
// Configuration is loaded from environment variables (LNBITS_URL,
// LNBITS_API_KEY, ...) or a YAML file. See internal/config for details.
//
// Usage:
//
//	# MCP over stdio with defaults
//	lnbitsd
//
//	# MCP over HTTP with env configuration
//	LNBITS_URL=https://demo.lnbits.com lnbitsd -http
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/lnbitsd/internal/config"
	"github.com/fyrsmithlabs/lnbitsd/internal/httpserver"
	"github.com/fyrsmithlabs/lnbitsd/internal/logging"
	"github.com/fyrsmithlabs/lnbitsd/internal/mcp"
	"github.com/fyrsmithlabs/lnbitsd/internal/runtimeconfig"
	"github.com/fyrsmithlabs/lnbitsd/internal/session"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file")
	httpMode := flag.Bool("http", false, "serve MCP over streamable HTTP instead of stdio")
	singleUser := flag.Bool("single-user", false, "disable session isolation; all callers share one configuration")
	flag.Parse()

	if args := flag.Args(); len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  lnbitsd            Start the MCP server\n")
			fmt.Fprintf(os.Stderr, "  lnbitsd version    Show version information\n")
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx, *configPath, *httpMode, *singleUser); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server shutdown complete")
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("lnbitsd by Fyrsmith Labs\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run wires configuration, logging, session management and the MCP server,
// then blocks on the chosen transport until ctx is cancelled.
func run(ctx context.Context, configPath string, httpMode, singleUser bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logging.Sync(logger)
	}()

	logger.Info("Starting lnbitsd",
		zap.String("version", version),
		zap.String("lnbits_url", cfg.LNbits.URL),
		zap.Bool("http", httpMode),
		zap.Bool("single_user", singleUser))

	var shared *runtimeconfig.Manager
	var registry *session.Registry
	if singleUser {
		shared = runtimeconfig.NewManager(cfg.LNbits, logger)
		defer shared.Close()
	} else {
		registry = session.NewRegistry(cfg.LNbits, cfg.Session, logger)
		registry.Start()
		defer registry.Stop()
	}

	srv, err := mcp.NewServer(&mcp.Config{
		Name:    "lnbitsd",
		Version: version,
		Logger:  logger,
	}, shared, registry)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	if !httpMode {
		return srv.Run(ctx)
	}

	httpSrv, err := httpserver.NewServer(cfg.Server, srv.HTTPHandler(), logger)
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	logger.Info("Server configured",
		zap.String("health_endpoint", fmt.Sprintf("http://%s:%d/health", cfg.Server.Host, cfg.Server.Port)),
		zap.String("mcp_endpoint", "/mcp"),
		zap.String("metrics_endpoint", "/metrics"))

	return httpSrv.Start(ctx)
}
