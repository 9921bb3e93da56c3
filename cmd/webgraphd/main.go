package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GoSim-25-26J-441/webgraph/internal/metrics"
	"github.com/GoSim-25-26J-441/webgraph/internal/pagesrv"
	"github.com/GoSim-25-26J-441/webgraph/internal/webgraph"
	"github.com/GoSim-25-26J-441/webgraph/pkg/config"
	"github.com/GoSim-25-26J-441/webgraph/pkg/logger"
	"github.com/GoSim-25-26J-441/webgraph/pkg/utils"
	"google.golang.org/grpc"
)

func main() {
	var configPath string
	var grpcAddr string
	var httpAddr string
	var logLevel string
	var seed int64

	flag.StringVar(&configPath, "config", "", "path to a YAML config file (defaults apply when empty)")
	flag.StringVar(&grpcAddr, "grpc-addr", "", "gRPC listen address (overrides config)")
	flag.StringVar(&httpAddr, "http-addr", "", "HTTP listen address (overrides config)")
	flag.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error; overrides config)")
	flag.Int64Var(&seed, "seed", 0, "random seed for the build (overrides config; 0 keeps it)")
	flag.Parse()

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			logger.Error("failed to load config", "path", configPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if grpcAddr != "" {
		cfg.Server.GRPCAddr = grpcAddr
	}
	if httpAddr != "" {
		cfg.Server.HTTPAddr = httpAddr
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if seed != 0 {
		cfg.RandomSeed = seed
	}

	logger.SetDefault(logger.NewFormat(cfg.LogFormat, cfg.LogLevel, os.Stdout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("building web graph",
		"pages", cfg.Graph.TotalPages,
		"avg_links", cfg.Graph.AvgLinksPerPage,
		"algorithm", cfg.Hash.Algorithm,
		"long_iterations", cfg.LongPool.Iterations,
		"short_iterations", cfg.ShortPool.Iterations)

	// Nothing is served until the whole graph is built and verified.
	site, err := webgraph.Build(ctx, cfg)
	if err != nil {
		var ie *webgraph.InternalError
		switch {
		case errors.As(err, &ie):
			logger.Error("web graph build broke an invariant", "op", ie.Op, "error", err)
		case webgraph.IsBuildError(err):
			logger.Error("web graph cannot be built from this configuration", "error", err)
		default:
			logger.Error("web graph build failed", "error", err)
		}
		os.Exit(1)
	}

	seedForLookups := cfg.RandomSeed
	if seedForLookups == 0 {
		seedForLookups = time.Now().UnixNano()
	}
	sim := webgraph.NewSimulator(site, utils.NewRandSource(seedForLookups))
	collector := metrics.NewCollector()
	collector.SetPages(site.Distribution())

	// TODO: Configure gRPC server security (e.g., TLS, authentication, rate limiting)
	// before using this service in a production environment.
	grpcServer := grpc.NewServer()
	pagesrv.RegisterPageServiceServer(grpcServer, pagesrv.NewPageGRPCServer(sim, collector))

	grpcLis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen for gRPC", "addr", cfg.Server.GRPCAddr, "error", err)
		stop()
		os.Exit(1)
	}

	// WriteTimeout must outlast the longest simulated delay.
	writeTimeout := 10*time.Second + cfg.DelaysMs.Max()
	httpSrv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           pagesrv.NewHTTPServer(sim, collector).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start servers.
	go func() {
		logger.Info("gRPC server listening", "addr", cfg.Server.GRPCAddr)
		if err := grpcServer.Serve(grpcLis); err != nil {
			logger.Error("gRPC server error", "error", err)
			stop()
		}
	}()

	go func() {
		logger.Info("HTTP server listening", "addr", cfg.Server.HTTPAddr, "root", pagesrv.PagePath(site.Root().ID))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown requested")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	grpcServer.GracefulStop()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
}
