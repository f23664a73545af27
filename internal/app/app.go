// Package app wires stores, services, handlers and routes into one HTTP
// application.
package app

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"weddingbudget/internal/config"
	"weddingbudget/internal/logger"
)

// App is the assembled API.
type App struct {
	Router   *gin.Engine
	Services Services
	cfg      *config.Config
}

// New assembles the API on db. rdb is optional: with it the plan lock and the
// undo slots are shared through Redis, without it they stay in-process.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	log := logger.Get()

	repos := wireRepos(db)
	coord := wireCoordination(cfg, rdb)
	log.Infow("coordination wired", "backend", coord.kind)

	svcs := wireServices(cfg, db, repos, coord)
	handlers := wireHandlers(svcs, healthChecks(db, rdb))
	router := NewRouter(cfg, handlers)

	return &App{Router: router, Services: svcs, cfg: cfg}
}

// Prepare seeds the built-in catalog entries that are missing.
func (a *App) Prepare(ctx context.Context) error {
	return a.Services.Catalog.EnsureDefaults(ctx)
}
