package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"selfreg-backend/internal/config"
	"selfreg-backend/internal/db"
	"selfreg-backend/internal/handler"
	"selfreg-backend/internal/metrics"
	"selfreg-backend/internal/repository"
	"selfreg-backend/internal/server"
	"selfreg-backend/internal/service"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect database", "err", err)
		os.Exit(1)
	}
	defer pg.Close()

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, pg); err != nil {
			logger.Error("failed to run migrations", "err", err)
			os.Exit(1)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// repositories
	registrationRepo := repository.RegistrationRepository{DB: pg}
	categoryRepo := repository.CategoryRepository{DB: pg}
	panchayathRepo := repository.PanchayathRepository{DB: pg}
	announcementRepo := repository.AnnouncementRepository{DB: pg}
	utilityRepo := repository.UtilityRepository{DB: pg}
	adminRepo := repository.AdminUserRepository{DB: pg}
	permissionRepo := repository.PermissionRepository{DB: pg}
	ledgerRepo := repository.LedgerRepository{DB: pg}
	activityRepo := repository.ActivityLogRepository{DB: pg}

	// services
	access := service.Authorizer{Grants: permissionRepo, Metrics: m}
	activity := service.ActivityRecorder{Store: activityRepo, Logger: logger}
	authSvc := service.AuthService{Config: cfg, Admins: adminRepo, Logger: logger}
	registrationSvc := service.RegistrationService{
		Registrations:   registrationRepo,
		Categories:      categoryRepo,
		Access:          access,
		Activity:        activity,
		Metrics:         m,
		Logger:          logger,
		BulkConcurrency: cfg.BulkApproveConcurrency,
	}
	catalogSvc := service.CatalogService{
		Categories:    categoryRepo,
		Panchayaths:   panchayathRepo,
		Announcements: announcementRepo,
		Utilities:     utilityRepo,
		Access:        access,
		Activity:      activity,
	}
	adminSvc := service.AdminService{Admins: adminRepo, Grants: permissionRepo, Access: access, Activity: activity}
	ledgerSvc := service.LedgerService{Store: ledgerRepo, Access: access, Activity: activity, Metrics: m}
	reportSvc := service.ReportService{Registrations: registrationRepo, Ledger: ledgerRepo, Access: access, Logger: logger}
	activitySvc := service.ActivityService{Store: activityRepo, Access: access}

	if _, err := authSvc.EnsureBootstrapAdmin(ctx); err != nil {
		logger.Error("failed to bootstrap admin", "err", err)
		os.Exit(1)
	}

	// handlers
	handlers := server.Handlers{
		Health:        handler.HealthHandler{DB: pg},
		Auth:          handler.AuthHandler{Service: &authSvc, Access: access, Logger: logger},
		Public:        handler.PublicHandler{Registrations: registrationSvc, Catalog: catalogSvc, Logger: logger},
		Registrations: handler.RegistrationHandler{Service: registrationSvc, Logger: logger},
		Categories:    handler.CategoryHandler{Service: catalogSvc, Logger: logger},
		Panchayaths:   handler.PanchayathHandler{Service: catalogSvc, Logger: logger},
		Announcements: handler.AnnouncementHandler{Service: catalogSvc, Logger: logger},
		Utilities:     handler.UtilityHandler{Service: catalogSvc, Logger: logger},
		Admins:        handler.AdminHandler{Service: adminSvc, Logger: logger},
		Ledger:        handler.LedgerHandler{Service: ledgerSvc, Currency: cfg.DefaultCurrency, Logger: logger},
		Reports:       handler.ReportHandler{Service: reportSvc, Logger: logger},
		Activity:      handler.ActivityLogHandler{Service: activitySvc, Logger: logger},
	}

	router := server.NewRouter(cfg, logger, authSvc, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), handlers)

	if err := server.Start(ctx, cfg, router, logger); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}
