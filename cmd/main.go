package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/angeloszaimis/agent-gateway/config"
	"github.com/angeloszaimis/agent-gateway/internal/circuitbreaker"
	"github.com/angeloszaimis/agent-gateway/internal/dispatch"
	"github.com/angeloszaimis/agent-gateway/internal/engine"
	"github.com/angeloszaimis/agent-gateway/internal/handler"
	"github.com/angeloszaimis/agent-gateway/internal/healthcheck"
	"github.com/angeloszaimis/agent-gateway/internal/httpserver"
	"github.com/angeloszaimis/agent-gateway/internal/mcpserver"
	"github.com/angeloszaimis/agent-gateway/internal/metrics"
	"github.com/angeloszaimis/agent-gateway/internal/routing"
	"github.com/angeloszaimis/agent-gateway/pkg/logger"
)

// Version is set at build time.
var Version = "0.1.0"

func main() {
	if err := newRootCmd(viper.New()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "agent-gateway",
		Short: "HTTP gateway in front of the dialogue and task agent engines",
		Long: `agent-gateway routes free-text tasks to a dialogue or a task engine
and answers with the engine result and a flow graph for visualization.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadWith(v, cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return serve(ctx, cfg)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config/config.yaml or ./config.yaml)")
	rootCmd.Flags().String("address", "", "address to listen on, e.g. :5000")
	rootCmd.Flags().String("log-level", "", "log level (debug|info|warn|error)")

	bindFlags(v, rootCmd.Flags(), map[string]string{
		"address":   "server.address",
		"log-level": "logging.level",
	})

	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "agent-gateway %s\n", Version)
		},
	}
}

type app struct {
	logger    *slog.Logger
	collector *metrics.Collector
	monitor   *healthcheck.Monitor
	handler   http.Handler
	server    *httpserver.Server
}

func newLogger(cfg *config.Config) *slog.Logger {
	var opts []logger.Option
	if cfg.Logging.File != "" {
		opts = append(opts, logger.WithFile(logger.FileOptions{
			Path:       cfg.Logging.File,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
			Compress:   cfg.Logging.Compress,
		}))
	}

	return logger.New(cfg.Logging.Level, true, cfg.Server.Environment, opts...)
}

// newApp wires every component of the gateway from a validated configuration.
func newApp(cfg *config.Config, log *slog.Logger) (*app, error) {
	collector := metrics.NewCollector(cfg.Metrics.BufferSize, log)

	engines := engine.Load(cfg.Engines.Enabled, log)
	interval := config.Duration(cfg.HealthCheck.Interval, 30*time.Second)
	monitor := healthcheck.NewMonitor(engines, interval, collector, log)

	breakers := circuitbreaker.NewRegistry(circuitbreaker.Settings{
		MaxRequests:      cfg.Breaker.MaxRequests,
		Timeout:          config.Duration(cfg.Breaker.Timeout, 5*time.Second),
		FailureThreshold: cfg.Breaker.FailureThreshold,
	}, log)

	strat := routing.NewKeywordStrategy(cfg.Routing.Keywords)
	log.Info("Keyword routing configured", slog.Any("keywords", strat.Keywords()))
	dispatcher := dispatch.NewDispatcher(strat, engines, breakers, log)

	agentHandler := handler.NewAgentHandler(log, dispatcher, monitor, collector, cfg.Flow.MaxExtraSteps)

	var mcpHandler http.Handler
	if cfg.MCP.Enabled {
		mcpHandler = mcpserver.New(dispatcher, Version, cfg.Flow.MaxExtraSteps, log).Handler()
	}

	router := setupRouter(routerDeps{
		logger:           log,
		agentHandler:     agentHandler,
		metricsCollector: collector,
		breakers:         breakers,
		mcpHandler:       mcpHandler,
		allowedOrigin:    cfg.CORS.AllowedOrigin,
	})

	srv, err := httpserver.New(cfg.Server.Address, router, httpserver.Timeouts{
		Read:  config.Duration(cfg.Server.ReadTimeout, httpserver.DefaultTimeouts.Read),
		Write: config.Duration(cfg.Server.WriteTimeout, httpserver.DefaultTimeouts.Write),
		Idle:  config.Duration(cfg.Server.IdleTimeout, httpserver.DefaultTimeouts.Idle),
	})
	if err != nil {
		return nil, fmt.Errorf("create server: %w", err)
	}

	return &app{
		logger:    log,
		collector: collector,
		monitor:   monitor,
		handler:   router,
		server:    srv,
	}, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := newLogger(cfg)

	a, err := newApp(cfg, log)
	if err != nil {
		log.Error("Failed to build gateway", slog.Any("err", err))
		return err
	}

	a.collector.Start(ctx)
	go a.monitor.Run(ctx)

	srvErrCh := make(chan error, 1)

	go func() {
		log.Info("Agent gateway listening",
			slog.String("address", a.server.Addr()),
			slog.Bool("engines_available", a.monitor.Available()),
			slog.Bool("mcp", cfg.MCP.Enabled))
		srvErrCh <- a.server.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := a.server.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
			return err
		}
		return nil
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Error starting agent gateway", slog.Any("err", err))
		}
		return err
	}
}
