package main

import (
	"context"
	"fmt"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cory-johannsen/rollcontext/internal/config"
	"github.com/cory-johannsen/rollcontext/internal/game/dice"
	"github.com/cory-johannsen/rollcontext/internal/game/effect"
	"github.com/cory-johannsen/rollcontext/internal/game/history"
	"github.com/cory-johannsen/rollcontext/internal/game/rules"
	"github.com/cory-johannsen/rollcontext/internal/game/scenario"
	"github.com/cory-johannsen/rollcontext/internal/game/session"
	"github.com/cory-johannsen/rollcontext/internal/observability"
	"github.com/cory-johannsen/rollcontext/internal/scripting"
	"github.com/cory-johannsen/rollcontext/internal/storage/postgres"
	"github.com/cory-johannsen/rollcontext/internal/storage/redisstore"
)

// Options are the command-line inputs that shape the object graph.
type Options struct {
	ScenarioPath string
	// Seed makes dice rolls reproducible; 0 uses crypto/rand.
	Seed uint64
}

// App is the assembled command.
type App struct {
	Session *session.Session
	Logger  *zap.Logger
}

var providerSet = wire.NewSet(
	provideLogger,
	provideRegistry,
	provideScripts,
	rules.NewEngine,
	provideHistory,
	provideScene,
	provideRoller,
	provideSession,
	wire.Struct(new(App), "*"),
)

func provideLogger(cfg config.Config) (*zap.Logger, func(), error) {
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing logger: %w", err)
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func provideRegistry(cfg config.Config, logger *zap.Logger) (*effect.Registry, error) {
	reg, err := effect.LoadDirectory(cfg.Content.EffectsDir)
	if err != nil {
		return nil, fmt.Errorf("loading effects: %w", err)
	}
	logger.Debug("effects loaded", zap.Int("count", len(reg.All())))
	return reg, nil
}

// provideScripts returns a nil StrikeScripts when no script directory is
// configured, which disables scripted rules.
func provideScripts(cfg config.Config, reg *effect.Registry, logger *zap.Logger) (rules.StrikeScripts, func(), error) {
	if cfg.Content.ScriptsDir == "" {
		logger.Info("scripting disabled")
		return nil, func() {}, nil
	}
	mgr := scripting.NewManager(logger)
	if err := mgr.Load(cfg.Content.ScriptsDir, cfg.Content.InstructionLimit); err != nil {
		return nil, nil, err
	}
	if err := checkScriptHooks(reg, mgr); err != nil {
		mgr.Close()
		return nil, nil, err
	}
	return mgr, mgr.Close, nil
}

// checkScriptHooks fails when an adjust-strike rule names a hook the loaded
// scripts do not define.
func checkScriptHooks(reg *effect.Registry, scripts interface{ HasHook(string) bool }) error {
	for _, def := range reg.All() {
		for _, r := range def.Rules {
			if r.Key == effect.KeyAdjustStrike && r.Script != "" && !scripts.HasHook(r.Script) {
				return fmt.Errorf("effect %q: script hook %q is not defined", def.ID, r.Script)
			}
		}
	}
	return nil
}

func provideHistory(ctx context.Context, cfg config.Config, logger *zap.Logger) (history.Store, func(), error) {
	switch cfg.History.Backend {
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		logger.Info("roll history in postgres", zap.String("host", cfg.Database.Host))
		return postgres.NewHistoryRepository(pool.DB()), pool.Close, nil
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		store, err := redisstore.NewHistoryStore(&redisstore.Config{
			Client:   client,
			Key:      cfg.Redis.Key,
			Capacity: cfg.History.Capacity,
		})
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		logger.Info("roll history in redis", zap.String("addr", cfg.Redis.Addr), zap.String("key", cfg.Redis.Key))
		return store, func() { _ = client.Close() }, nil
	default:
		store, err := history.NewMemoryStore(cfg.History.Capacity)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}

func provideScene(opts Options, cfg config.Config, reg *effect.Registry) (*scenario.Scene, error) {
	sc, err := scenario.LoadFromFile(opts.ScenarioPath)
	if err != nil {
		return nil, err
	}
	return sc.Build(reg, scenario.BoardSettings{SquareSize: cfg.Board.SquareSize, Gridless: cfg.Board.Gridless})
}

func provideRoller(opts Options, logger *zap.Logger) *dice.Roller {
	src := dice.NewCryptoSource()
	if opts.Seed != 0 {
		src = dice.NewSeededSource(opts.Seed)
	}
	return dice.NewLoggedRoller(src, logger)
}

func provideSession(cfg config.Config, scene *scenario.Scene, engine *rules.Engine, reg *effect.Registry, store history.Store, roller *dice.Roller, logger *zap.Logger) (*session.Session, error) {
	return session.New(session.Config{
		Scene:        scene,
		Rules:        engine,
		Conditions:   reg,
		History:      store,
		HistoryDepth: cfg.History.Depth,
		Roller:       roller,
		Logger:       logger,
	})
}
