package main

import (
	"bad-news/pkg/config"
	"bad-news/pkg/handlers"
	"bad-news/pkg/repositories"
	"bad-news/pkg/services"
	"context"
	"crypto/rand"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	// Initialize config
	config.Init()

	logger := newLogger()
	defer logger.Sync()

	repo, closeRepo := newRepository(logger)
	defer closeRepo()

	templates, err := services.LoadTemplates(config.TemplatesPath)
	if err != nil {
		logger.Fatal("failed to load templates", zap.String("path", config.TemplatesPath), zap.Error(err))
	}
	locale, err := services.LocaleByName(config.Locale)
	if err != nil {
		logger.Fatal("failed to select locale", zap.Error(err))
	}
	renderer := services.NewRenderer(templates, locale)

	newsHandler, err := handlers.NewNewsHandler(repo, config.PageSize, renderer, newPageCache(logger), logger)
	if err != nil {
		logger.Fatal("failed to create news handler", zap.Error(err))
	}

	r := gin.New()
	r.Use(gin.Recovery(), handlers.RequestLogger(logger))

	// Session Setup
	store := cookie.NewStore(sessionSecret(logger))
	r.Use(sessions.Sessions("badnews", store), handlers.Elevation)

	// Static Files
	static := r.Group("/static", handlers.CacheControl(24*time.Hour))
	static.Static("/", config.StaticPath)

	// --- Elevation Routes ---
	r.GET("/elevation/login", handlers.GithubLogin)
	r.GET("/auth/callback", handlers.AuthCallback)
	r.GET("/elevation/logout", handlers.Logout)

	// --- News ---
	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/news") })
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	newsHandler.Register(r)

	r.NoRoute(func(c *gin.Context) { c.String(http.StatusNotFound, "Not found") })

	logger.Info("starting server",
		zap.String("addr", config.ListenAddr),
		zap.String("store", config.StoreDriver),
		zap.Int("page_size", config.PageSize),
	)
	if err := r.Run(config.ListenAddr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger() *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if gin.Mode() == gin.ReleaseMode {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	return logger
}

func newRepository(logger *zap.Logger) (repositories.NewsRepository, func()) {
	switch config.StoreDriver {
	case "postgres":
		db, err := sqlx.Connect("postgres", config.DatabaseDSN)
		if err != nil {
			logger.Fatal("failed to connect to db", zap.Error(err))
		}
		repo := repositories.NewPostgresRepository(db)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := repo.Migrate(ctx); err != nil {
			logger.Fatal("failed to migrate db", zap.Error(err))
		}
		return repo, func() { db.Close() }
	case "files":
		return repositories.NewFileRepository(config.ContentPath, logger), func() {}
	default:
		logger.Fatal("unknown store driver", zap.String("driver", config.StoreDriver))
		return nil, nil
	}
}

func newPageCache(logger *zap.Logger) services.PageCache {
	if config.RedisAddr == "" {
		return services.NopPageCache{}
	}
	rdb := redis.NewClient(&redis.Options{Addr: config.RedisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, page cache disabled", zap.String("addr", config.RedisAddr), zap.Error(err))
		return services.NopPageCache{}
	}
	return services.NewRedisPageCache(rdb, "badnews:page:", config.PageCacheTTL)
}

// sessionSecret falls back to a random key, which logs everyone out on restart.
func sessionSecret(logger *zap.Logger) []byte {
	if config.SessionSecret != "" {
		return []byte(config.SessionSecret)
	}
	logger.Warn("SESSION_SECRET is not set, using a random key")
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		logger.Fatal("failed to generate session key", zap.Error(err))
	}
	return key
}
