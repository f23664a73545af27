package app

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"weddingbudget/internal/config"
	"weddingbudget/internal/handlers"
	"weddingbudget/internal/lock"
	"weddingbudget/internal/repository"
	"weddingbudget/internal/services"
	"weddingbudget/internal/session"
)

// Repos are the storage adapters.
type Repos struct {
	Plans   repository.PlanStore
	Catalog repository.CatalogStore
	Quizzes repository.QuizStore
}

func wireRepos(db *gorm.DB) Repos {
	return Repos{
		Plans:   repository.NewPlanStore(db),
		Catalog: repository.NewCatalogStore(db),
		Quizzes: repository.NewQuizStore(db),
	}
}

type coordination struct {
	kind   string
	locker lock.Locker
	undo   session.UndoStore
}

func wireCoordination(cfg *config.Config, rdb *redis.Client) coordination {
	if rdb != nil {
		return coordination{
			kind:   "redis",
			locker: lock.NewRedisLocker(rdb, cfg.LockTimeout),
			undo:   session.NewRedisStore(rdb, cfg.UndoTTL),
		}
	}
	return coordination{
		kind:   "memory",
		locker: lock.NewMemoryLocker(cfg.LockTimeout),
		undo:   session.NewMemoryStore(cfg.UndoTTL),
	}
}

// Services are the domain services behind the handlers.
type Services struct {
	Plan      services.PlanServicer
	Decision  services.DecisionServicer
	Optimizer services.OptimizerServicer
	Catalog   services.CatalogServicer
	Quiz      services.QuizServicer
	Audit     services.AuditServicer
}

func wireServices(cfg *config.Config, db *gorm.DB, repos Repos, coord coordination) Services {
	backend := &services.Backend{
		Plans:     repos.Plans,
		Catalog:   repos.Catalog,
		Locker:    coord.locker,
		UndoSlots: coord.undo,
		Defaults:  services.DefaultsFromConfig(cfg),
	}
	return Services{
		Plan:      services.NewPlanService(backend),
		Decision:  services.NewDecisionService(backend),
		Optimizer: services.NewOptimizerService(backend),
		Catalog:   services.NewCatalogService(repos.Catalog),
		Quiz:      services.NewQuizService(backend, repos.Quizzes),
		Audit:     services.NewAuditService(db),
	}
}

// Handlers are the HTTP handlers mounted by the router.
type Handlers struct {
	Plan      *handlers.PlanHandler
	Decision  *handlers.DecisionHandler
	Optimizer *handlers.OptimizerHandler
	Catalog   *handlers.CatalogHandler
	Quiz      *handlers.QuizHandler
	Health    *handlers.HealthHandler
}

func wireHandlers(svcs Services, checks map[string]handlers.Pinger) Handlers {
	return Handlers{
		Plan:      handlers.NewPlanHandler(svcs.Plan, svcs.Audit),
		Decision:  handlers.NewDecisionHandler(svcs.Decision, svcs.Audit),
		Optimizer: handlers.NewOptimizerHandler(svcs.Optimizer, svcs.Audit),
		Catalog:   handlers.NewCatalogHandler(svcs.Catalog, svcs.Audit),
		Quiz:      handlers.NewQuizHandler(svcs.Quiz, svcs.Audit),
		Health:    handlers.NewHealthHandler(checks),
	}
}

func healthChecks(db *gorm.DB, rdb *redis.Client) map[string]handlers.Pinger {
	checks := map[string]handlers.Pinger{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	}
	return checks
}
