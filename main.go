package main

import (
	"strings"

	"go.uber.org/zap"

	"github.com/cppla/yatube/config"
	"github.com/cppla/yatube/feed"
	"github.com/cppla/yatube/models"
	"github.com/cppla/yatube/routes"
	"github.com/cppla/yatube/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	db := config.InitDatabase(models.All()...)

	r := routes.SetupRouter(db, newFeedCache(cfg))

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}

// newFeedCache picks the front page cache backend. Redis falls back to the
// in-process cache when the server is unreachable.
func newFeedCache(cfg config.AppConfig) feed.Cache {
	ttl := cfg.FeedCacheTTL()
	if ttl <= 0 {
		utils.Logger.Info("feed cache disabled")
		return feed.NopCache{}
	}

	switch strings.ToLower(cfg.CacheBackend) {
	case "none":
		return feed.NopCache{}
	case "memory":
		utils.Logger.Info("feed cache in memory", zap.Duration("ttl", ttl))
		return feed.NewMemoryCache(ttl)
	default:
		if rc := utils.GetRedis(); rc != nil {
			utils.Logger.Info("feed cache in redis", zap.Duration("ttl", ttl))
			return feed.NewRedisCache(rc, ttl)
		}
		utils.Logger.Warn("redis unavailable, feed cache in memory", zap.Duration("ttl", ttl))
		return feed.NewMemoryCache(ttl)
	}
}
