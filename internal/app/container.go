package app

import (
	"context"
	"errors"
	"time"

	"unimarket/internal/config"
	"unimarket/internal/database"
	dbpostgres "unimarket/internal/database/postgres"
	"unimarket/internal/infrastructure/cache"
	"unimarket/internal/pkg/jwt"
	"unimarket/internal/pkg/logger"
	"unimarket/internal/repository"
	"unimarket/internal/usecase"
	"unimarket/internal/usecase/achievement"
	"unimarket/internal/usecase/audit"
	ucauth "unimarket/internal/usecase/auth"
	"unimarket/internal/usecase/community"
	"unimarket/internal/usecase/enterprise"
	"unimarket/internal/usecase/job"
	"unimarket/internal/usecase/merchant"
	"unimarket/internal/usecase/org"
	"unimarket/internal/usecase/recommendation"
	useruc "unimarket/internal/usecase/user"
	"unimarket/internal/ws"
)

// Services holds every usecase, built once and shared by HTTP, cron and CLI.
type Services struct {
	Auth           usecase.AuthUsecase
	Accounts       *ucauth.Service
	Users          *useruc.Service
	Merchants      *merchant.Service
	Enterprises    *enterprise.Service
	Jobs           *job.Service
	Orgs           *org.Service
	Community      *community.Service
	Recommendation *recommendation.Service
	Achievements   *achievement.Service
	Audit          *audit.Service
}

type Container struct {
	Config   config.Config
	Logger   logger.Logger
	DB       database.DB
	Cache    *cache.Redis
	JWT      jwt.Service
	Hub      *ws.Hub
	Services Services
}

func NewContainer(cfg config.Config, log logger.Logger) (*Container, error) {
	if log == nil {
		log = logger.Nop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database, cfg.App.AppName, log)
	if err != nil {
		return nil, err
	}

	rdb := cache.NewRedis(cfg.Redis, cfg.Cache.DefaultTTL, log)
	return Wire(cfg, log, db, rdb), nil
}

// Wire assembles services over already-open connections.
func Wire(cfg config.Config, log logger.Logger, db database.DB, rdb *cache.Redis) *Container {
	if log == nil {
		log = logger.Nop()
	}

	jwtSvc := jwt.NewHMACService(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiresIn,
		cfg.JWT.RefreshExpiresIn,
	)
	hub := ws.NewHub(log.With(logger.String("component", "ws")))

	users := repository.NewPostgresUserRepository(db)
	accounts := ucauth.NewService(users, users)
	achievements := achievement.NewService(repository.NewPostgresAchievementRepository(db), log)
	enterprises := enterprise.NewService(repository.NewPostgresEnterpriseRepository(db))
	jobs := job.NewService(
		repository.NewPostgresJobPostRepository(db),
		repository.NewPostgresJobApplicationRepository(db),
		enterprises,
		achievements,
	)

	svc := Services{
		Auth:        usecase.NewAuthUsecase(accounts, jwtSvc),
		Accounts:    accounts,
		Users:       useruc.NewService(users),
		Merchants:   merchant.NewService(repository.NewPostgresMerchantRepository(db), repository.NewPostgresProductRepository(db)),
		Enterprises: enterprises,
		Jobs:        jobs,
		Orgs:        org.NewService(repository.NewPostgresOrganizationRepository(db), repository.NewPostgresCourseRepository(db)),
		Community: community.NewService(community.Repositories{
			Categories: repository.NewPostgresCategoryRepository(db),
			Posts:      repository.NewPostgresPostRepository(db),
			Comments:   repository.NewPostgresCommentRepository(db),
			Reactions:  repository.NewPostgresReactionRepository(db),
		}, rdb, hub, achievements, log.With(logger.String("component", "community"))),
		Recommendation: recommendation.NewService(
			repository.NewPostgresRecommendationRepository(db),
			jobs,
			rdb,
			cfg.Recommendation.TopN,
			log.With(logger.String("component", "recommendation")),
		),
		Achievements: achievements,
		Audit:        audit.NewService(repository.NewPostgresAuditRepository(db)),
	}

	return &Container{
		Config:   cfg,
		Logger:   log,
		DB:       db,
		Cache:    rdb,
		JWT:      jwtSvc,
		Hub:      hub,
		Services: svc,
	}
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	}
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	return errors.Join(errs...)
}
