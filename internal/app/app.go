package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/afero"

	"github.com/MrSnakeDoc/wirelink/internal/command"
	"github.com/MrSnakeDoc/wirelink/internal/config"
	"github.com/MrSnakeDoc/wirelink/internal/httpserver"
	"github.com/MrSnakeDoc/wirelink/internal/httpserver/deps"
	"github.com/MrSnakeDoc/wirelink/internal/lifecycle"
	"github.com/MrSnakeDoc/wirelink/internal/logger"
	"github.com/MrSnakeDoc/wirelink/internal/marker"
	"github.com/MrSnakeDoc/wirelink/internal/redis"
	"github.com/MrSnakeDoc/wirelink/internal/registry"
	"github.com/MrSnakeDoc/wirelink/internal/scheduler"
	"github.com/MrSnakeDoc/wirelink/internal/sources/worlds"
	"github.com/MrSnakeDoc/wirelink/internal/store/disk"
	redisstore "github.com/MrSnakeDoc/wirelink/internal/store/redis"
	"github.com/MrSnakeDoc/wirelink/internal/utils"
	"github.com/MrSnakeDoc/wirelink/internal/version"
	"github.com/MrSnakeDoc/wirelink/internal/webhook"
	"github.com/MrSnakeDoc/wirelink/internal/world"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	controller  *lifecycle.Controller
	redisClient *goredis.Client
	webhooks    *webhook.Client
	gc          *scheduler.GarbageCollector
	reloader    *scheduler.WorldsReloader // nil without a worlds file
	reloadCh    chan struct{}
}

func New() (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	catalog, err := worlds.Open(cfg.WorldsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load world catalog: %w", err)
	}
	journaled, err := catalog.Attach(worlds.NewDataJournal(afero.NewOsFs(), cfg.DataDir))
	if err != nil {
		return nil, fmt.Errorf("failed to load world journal: %w", err)
	}
	loggerClient.Info("world catalog loaded",
		logger.Int("worlds", catalog.Len()),
		logger.Int("journaled", journaled))

	redisClient, err := redis.Connect(context.Background(), redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	store := disk.NewOS(cfg.DataDir)
	reg := registry.New()
	mem := world.NewMemory()
	hooks := webhook.New(cfg.WebhookTimeout, loggerClient)

	env := &marker.Env{
		World:    mem,
		Index:    reg,
		Store:    store,
		Webhooks: hooks,
	}

	var events *redisstore.Store
	if redisClient != nil {
		events = redisstore.NewStore(redisClient, loggerClient)
		env.Events = events
	} else {
		loggerClient.Info("redis not configured, event mirror disabled")
	}

	server := httpserver.New(cfg, loggerClient)
	controller := lifecycle.New(env, store, reg, catalog, server, loggerClient)
	if events != nil {
		controller.OnLoaded(scheduler.NewRedisSyncer(events, reg, loggerClient).Sync)
	}

	server.Mount(deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		AllowedHosts: cfg.AllowedHosts,
		AllowedCIDRS: cfg.AllowedCIDRS,
		TrustProxy:   cfg.TrustProxy,
		IndexURL:     cfg.IndexURL,
		RateBurst:    cfg.RateBurst,
		RatePerMin:   cfg.RatePerMin,
		Registry:     reg,
		Lifecycle:    controller,
		Commands:     command.New(env, reg, mem, loggerClient),
		World:        mem,
		Worlds:       catalog,
		Events:       events,
	})

	gc := scheduler.NewGarbageCollector(store, loggerClient, cfg.GCInterval, cfg.GCThreshold)

	reloadCh := make(chan struct{}, 1)
	var reloader *scheduler.WorldsReloader
	if cfg.WorldsFile != "" {
		reloader = scheduler.NewWorldsReloader(cfg.WorldsFile, catalog, loggerClient, cfg.WorldsReload, reloadCh)
	}

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		controller:  controller,
		redisClient: redisClient,
		webhooks:    hooks,
		gc:          gc,
		reloader:    reloader,
		reloadCh:    reloadCh,
	}, nil
}

func (a *App) Run() error {
	defer func() { _ = a.logger.Sync() }()

	a.logger.Info("starting wirelink",
		logger.String("version", version.String()),
		logger.String("addr", a.cfg.ListenPort),
		logger.String("data_dir", a.cfg.DataDir))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.controller.Start(ctx); err != nil {
		return err
	}

	if err := a.gc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start garbage collector: %w", err)
	}
	a.logger.Info("garbage collector started", logger.Duration("interval", a.cfg.GCInterval))

	if a.reloader != nil {
		if err := a.reloader.Start(ctx); err != nil {
			return fmt.Errorf("failed to start worlds reloader: %w", err)
		}
		a.logger.Info("worlds reloader started",
			logger.String("file", a.cfg.WorldsFile),
			logger.Duration("interval", a.cfg.WorldsReload))
		go a.forwardHangups(ctx)
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutting down")
	case runErr = <-a.controller.Errors():
		a.logger.Error("service failed", logger.Error(runErr))
	}

	a.gc.Stop()
	if a.reloader != nil {
		a.reloader.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.controller.Stop(shutdownCtx); err != nil && !errors.Is(err, lifecycle.ErrNotRunning) {
		runErr = errors.Join(runErr, err)
	}

	if err := a.webhooks.Wait(shutdownCtx); err != nil {
		a.logger.Warn("abandoning pending webhooks", logger.Error(err))
	}

	if a.redisClient != nil {
		utils.CloseLogged(a.redisClient, "redis", a.logger)
	}

	if runErr != nil {
		return runErr
	}
	a.logger.Info("wirelink stopped cleanly")
	return nil
}

// forwardHangups turns SIGHUP into a worlds reload. A reload already
// queued absorbs further signals.
func (a *App) forwardHangups(ctx context.Context) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-hup:
			select {
			case a.reloadCh <- struct{}{}:
			default:
			}
		case <-ctx.Done():
			return
		}
	}
}
