package app

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"recipe-share-go/internal/cache"
	"recipe-share-go/internal/config"
	"recipe-share-go/internal/db"
	collabdomain "recipe-share-go/internal/domain/collab"
	cookingdomain "recipe-share-go/internal/domain/cooking"
	recipedomain "recipe-share-go/internal/domain/recipe"
	userdomain "recipe-share-go/internal/domain/user"
	collabrepo "recipe-share-go/internal/repository/postgres/collab"
	reciperepo "recipe-share-go/internal/repository/postgres/recipe"
	userrepo "recipe-share-go/internal/repository/postgres/user"
	"recipe-share-go/internal/storage"
	"recipe-share-go/internal/transport/httpserver"
	"recipe-share-go/internal/transport/httpserver/handler"
	authmw "recipe-share-go/internal/transport/httpserver/middleware"
	"recipe-share-go/pkg/logger"
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
	redis      *cache.Redis
	log        logger.Logger
}

func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	log.Info("app: initializing database")
	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		return nil, err
	}

	log.Info("app: running migrations")
	if err := db.Migrate(dbConn); err != nil {
		return nil, err
	}

	var store cache.Store
	var redisStore *cache.Redis
	switch cfg.Cache.Backend {
	case "redis":
		log.Info("app: connecting to redis", "addr", cfg.Cache.RedisAddr)
		redisStore, err = cache.NewRedis(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, log)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		store = cache.NewMemory()
	}

	media, err := storage.NewLocal(cfg.Storage.Root, cfg.Storage.BaseURL)
	if err != nil {
		return nil, err
	}

	profileRepo := userrepo.NewPostgres(dbConn)
	recipeRepo := reciperepo.NewPostgres(dbConn)
	collabRepo := collabrepo.NewPostgres(dbConn)

	profiles := userdomain.NewService(profileRepo)
	collabs := collabdomain.NewService(collabRepo, store)
	recipes := recipedomain.NewService(recipeRepo, collabRepo, store, cfg.Cache.TTL)

	timers := cookingdomain.NewRegistry(cookingdomain.NewLogNotifier(log), time.Second)
	cooking := cookingdomain.NewManager(timers)

	handlers := handler.New(profiles, recipes, collabs, cooking, media, cfg.Storage.MaxUploadBytes, log)

	deps := httpserver.RouterDeps{
		Handlers:   handlers,
		Auth:       authmw.NewAuth(cfg.Auth, profiles, log),
		Metrics:    authmw.NewMetrics(prometheus.DefaultRegisterer),
		StaticRoot: media.Root(),
	}
	if cfg.RateLimit.Enabled {
		deps.Limiter = authmw.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	router := httpserver.NewRouter(cfg, deps)
	srv := httpserver.New(cfg, router)

	return &App{
		cfg:        cfg,
		httpServer: srv,
		db:         dbConn,
		redis:      redisStore,
		log:        log,
	}, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Env() string {
	return a.cfg.Env
}

func (a *App) Close() error {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Error("app: redis close failed", "err", err)
		}
	}
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
