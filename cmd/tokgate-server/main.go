package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync/atomic"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tokgate-go/internal/core/service"
	"github.com/yndnr/tokgate-go/internal/infra/buildinfo"
	"github.com/yndnr/tokgate-go/internal/infra/confloader"
	"github.com/yndnr/tokgate-go/internal/infra/shutdown"
	"github.com/yndnr/tokgate-go/internal/infra/tlscert"
	"github.com/yndnr/tokgate-go/internal/protocol/mtproto"
	"github.com/yndnr/tokgate-go/internal/server/config"
	"github.com/yndnr/tokgate-go/internal/server/httpserver"
	"github.com/yndnr/tokgate-go/internal/server/httpserver/handler"
	"github.com/yndnr/tokgate-go/internal/server/localserver"
	"github.com/yndnr/tokgate-go/internal/telemetry/logger"
	"github.com/yndnr/tokgate-go/internal/telemetry/metric"
	"github.com/yndnr/tokgate-go/internal/telemetry/tracer"
	"github.com/yndnr/tokgate-go/pkg/token"
)

func main() {
	app := &cli.App{
		Name:    "tokgate-server",
		Usage:   "stateless REST gateway for Telegram accounts",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to configuration file",
				EnvVars: []string{"TOKGATE_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "check",
				Usage: "validate configuration and exit",
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "HTTP listen address, overrides server.http.addr",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "overrides log.level",
			},
		},
		Action: func(c *cli.Context) error {
			opts := options{
				configFile: c.String("config"),
				checkOnly:  c.Bool("check"),
				overrides:  make(map[string]any),
			}
			if c.IsSet("addr") {
				opts.overrides["server.http.addr"] = c.String("addr")
			}
			if c.IsSet("log-level") {
				opts.overrides["log.level"] = c.String("log-level")
			}
			return run(opts)
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// options are the command-line inputs to run.
type options struct {
	configFile string
	checkOnly  bool
	overrides  map[string]any
}

func run(opts options) error {
	configFile := opts.configFile
	cfg, unknown, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.checkOnly {
		for _, k := range unknown {
			fmt.Printf("warning: unknown key %s\n", k)
		}
		fmt.Println("configuration OK")
		return nil
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	info := buildinfo.Get()
	log.Info("starting tokgate-server",
		"version", info.Version,
		"commit", info.Commit,
		"go_version", info.GoVersion,
		"config", configFile,
	)
	log.Debug("effective configuration", "config", config.Sanitize(cfg))
	for _, k := range unknown {
		log.Warn("unknown configuration key ignored", "key", k)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := tracer.New(ctx, tracer.Config{
		Enabled:        cfg.Telemetry.Tracing.Enabled,
		ServiceName:    "tokgate-server",
		ServiceVersion: info.Version,
		Endpoint:       cfg.Telemetry.Tracing.Endpoint,
		Insecure:       cfg.Telemetry.Tracing.Insecure,
		SampleRatio:    cfg.Telemetry.Tracing.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}

	app, err := newGateway(cfg, log)
	if err != nil {
		return err
	}

	var draining atomic.Bool
	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Handler: handler.Config{
			Auth:     app.auth,
			Chats:    app.chats,
			Messages: app.messages,
			Groups:   app.groups,
			Ready: func() error {
				if draining.Load() {
					return errors.New("shutting down")
				}
				return nil
			},
			MaxUploadBytes: cfg.Server.HTTP.MaxUploadBytes,
			SpoolDir:       cfg.Server.HTTP.SpoolDir,
		},
		Metrics:            app.metrics,
		Logger:             log,
		CORSAllowedOrigins: cfg.Server.HTTP.CORSAllowedOrigins,
		RateLimit:          rateLimit(cfg),
		RateBurst:          cfg.RateLimit.Burst,
		EnableAudit:        cfg.Server.HTTP.EnableAudit,
	})
	httpSrv := httpserver.New(cfg.Server.HTTP.Addr, router)

	shutdownHandler := shutdown.NewHandler(cfg.Server.HTTP.ShutdownTimeout, log)

	reload := func() (string, error) {
		next, _, err := loadConfig(opts)
		if err != nil {
			return "", err
		}
		logger.SetLevel(next.Log.Level)
		log.Info("configuration reloaded", "log_level", next.Log.Level)
		return logger.GetLevel(), nil
	}

	local := localserver.New(cfg.Server.Local.Path, localserver.NewHandler(localserver.Deps{
		Registry: app.registry,
		Reload:   reload,
		Shutdown: shutdownHandler.Trigger,
	}), log)

	// Hooks run in reverse: stop intake first, then drain connections.
	shutdownHandler.OnShutdown("tracer", tp.Shutdown)
	shutdownHandler.OnShutdown("registry", func(ctx context.Context) error {
		res := app.registry.Drain(ctx)
		log.Info("connections drained",
			"disconnected", res.Disconnected,
			"failed", res.Failed,
		)
		return errors.Join(res.Errors...)
	})
	shutdownHandler.OnShutdown("sweeper", func(context.Context) error {
		cancel()
		return nil
	})
	shutdownHandler.OnShutdown("local", local.Shutdown)
	shutdownHandler.OnShutdown("http", func(ctx context.Context) error {
		draining.Store(true)
		return httpSrv.Shutdown(ctx)
	})

	go app.auth.RunSweeper(ctx, cfg.Auth.SweepInterval)

	if path := configFile; path != "" {
		w, err := watchConfig(path, log, reload)
		if err != nil {
			log.Warn("config watcher disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown("config watcher", func(context.Context) error {
				return w.Stop()
			})
		}
	}

	if cfg.Server.Local.Path != "" {
		if err := local.Listen(); err != nil {
			log.Warn("local admin socket disabled", "path", cfg.Server.Local.Path, "error", err)
		} else {
			go func() {
				if err := local.Serve(); err != nil {
					log.Error("local admin socket error", "error", err)
				}
			}()
		}
	}

	go serveHTTP(httpSrv, cfg, log, shutdownHandler)

	log.Info("server started", "addr", cfg.Server.HTTP.Addr)
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// gateway holds the wired services.
type gateway struct {
	registry *service.Registry
	auth     *service.AuthService
	chats    *service.ChatService
	messages *service.MessageService
	groups   *service.GroupService
	metrics  *metric.Registry
}

func newGateway(cfg *config.ServerConfig, log logger.Logger) (*gateway, error) {
	codec, err := token.NewCodec([]byte(cfg.Security.CredentialKey))
	if err != nil {
		return nil, fmt.Errorf("init token codec: %w", err)
	}
	if cfg.Security.CredentialKey == "" {
		log.Warn("security.credential_key is empty; issuing obfuscated tokens without integrity protection")
	}

	var metrics *metric.Registry
	if cfg.Telemetry.Metrics.Enabled {
		metrics = metric.NewRegistry()
	}

	dev := cfg.Telegram.Device
	factory := mtproto.NewFactory(mtproto.Device{
		Model:         dev.Model,
		SystemVersion: dev.SystemVersion,
		AppVersion:    dev.AppVersion,
		LangCode:      dev.LangCode,
	}, log.With("component", "mtproto"))

	registry := service.NewRegistry(codec, factory,
		service.WithConnectTimeout(cfg.Telegram.ConnectTimeout),
		service.WithMetrics(metrics),
		service.WithRegistryLogger(log.With("component", "registry")),
	)
	if metrics != nil {
		if err := metrics.Register(metric.NewCollector(registry)); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}

	history := service.NewHistoryFetcher(service.HistoryConfig{
		PrefetchDelay: cfg.History.PrefetchDelay,
		BatchDelay:    cfg.History.BatchDelay,
		BatchSize:     cfg.History.BatchSize,
	}, service.WithHistoryMetrics(metrics))
	resolver := service.NewResolver()

	return &gateway{
		registry: registry,
		auth:     service.NewAuthService(registry, factory, cfg.Auth.PendingTTL),
		chats:    service.NewChatService(registry, resolver, history),
		messages: service.NewMessageService(registry, resolver),
		groups:   service.NewGroupService(registry),
		metrics:  metrics,
	}, nil
}

func serveHTTP(srv *httpserver.Server, cfg *config.ServerConfig, log logger.Logger, sh *shutdown.Handler) {
	h := cfg.Server.HTTP
	var err error
	if h.TLSCertFile != "" && h.TLSKeyFile != "" {
		var certs *tlscert.Watcher
		certs, err = tlscert.NewWatcher(h.TLSCertFile, h.TLSKeyFile, tlscert.WithLogger(log))
		if err == nil {
			certs.StartAsync()
			defer certs.Stop()
			srv.UseTLS(certs.TLSConfig())
			log.Info("HTTPS server listening", "addr", h.Addr)
			err = srv.ListenAndServe()
		}
	} else {
		log.Info("HTTP server listening", "addr", h.Addr)
		err = srv.ListenAndServe()
	}

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("HTTP server error", "error", err)
		sh.Trigger("http server failed")
	}
}

// loadConfig loads configuration from defaults, file, environment and
// flag overrides. It also returns the keys no field matched.
func loadConfig(opts options) (*config.ServerConfig, []string, error) {
	cfg := config.Default()

	loader := confloader.NewLoader(
		confloader.WithKnownKeys(config.Keys()...),
		confloader.WithConfigFile(opts.configFile),
		confloader.WithOverrides(opts.overrides),
	)
	if err := loader.Load(cfg); err != nil {
		return nil, nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, loader.Unknown(), nil
}

func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}

func rateLimit(cfg *config.ServerConfig) float64 {
	if !cfg.RateLimit.Enabled {
		return 0
	}
	return cfg.RateLimit.RequestsPerSecond
}

func watchConfig(path string, log logger.Logger, reload func() (string, error)) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		w.Stop()
		return nil, err
	}
	w.OnChange(func(string) {
		// Only the log level is applied live; other keys need a restart.
		if _, err := reload(); err != nil {
			log.Warn("config reload rejected", "error", err)
		}
	})
	w.StartAsync()
	return w, nil
}
