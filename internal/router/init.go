package router

import (
	"github.com/oksasatya/expense-tracker/internal/application"
	"github.com/oksasatya/expense-tracker/internal/cache"
	"github.com/oksasatya/expense-tracker/internal/container"
	"github.com/oksasatya/expense-tracker/internal/domain/repository"
	"github.com/oksasatya/expense-tracker/internal/infrastructure/archive"
	pginfra "github.com/oksasatya/expense-tracker/internal/infrastructure/postgres"
	"github.com/oksasatya/expense-tracker/internal/infrastructure/search"
	handlers "github.com/oksasatya/expense-tracker/internal/interface/http"
	"github.com/oksasatya/expense-tracker/internal/router/modules"
	"github.com/oksasatya/expense-tracker/pkg/mailer"
	mailtpl "github.com/oksasatya/expense-tracker/pkg/mailer/templates"
)

// Deps are the ports the application services are built from.
// Index and Archiver may be nil; the features they back are then skipped.
type Deps struct {
	Users    repository.UserRepository
	Expenses repository.ExpenseRepository
	Mailer   application.Mailer
	Index    application.ExpenseIndexer
	Archiver application.ReportArchiver
	Cache    application.ReportCache
}

// depsFromContainer builds Deps from the process singletons.
// Optional pointers are only boxed into interfaces when set.
func depsFromContainer() Deps {
	cfg := container.GetConfig()
	pool := container.GetPGPool()

	d := Deps{
		Users:    pginfra.NewUserRepository(pool),
		Expenses: pginfra.NewExpenseRepository(pool),
		Cache:    cache.NewReportCache(container.GetRedis(), cfg.ReportCacheTTL),
	}
	if n := container.GetNotifier(); n != nil {
		d.Mailer = n
	} else {
		d.Mailer = mailer.NewNotifier(
			mailer.LogTransport{Log: container.GetLogger()},
			mailtpl.Branding{CompanyName: cfg.CompanyName, AppName: cfg.AppName, SupportURL: cfg.SupportURL},
			cfg.ResetPasswordURL(),
		)
	}
	if es := container.GetES(); es != nil {
		d.Index = search.NewExpenseIndex(es, cfg.ESExpensesIndex)
	}
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		d.Archiver = archive.NewGCSArchiver(gcs, cfg.GCSBucket)
	}
	return d
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	InitModulesWith(r, depsFromContainer())
}

// InitModulesWith is InitModules over explicit dependencies.
func InitModulesWith(r *Registry, d Deps) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	jwt := container.GetJWT()

	authSvc := application.NewAuthService(d.Users, jwt, d.Mailer, logger, cfg.OTPTTL, cfg.ResetTTL, cfg.MailSendEnabled)
	expenseSvc := application.NewExpenseService(d.Expenses, d.Index, d.Cache, logger)
	reportSvc := application.NewReportService(d.Expenses, d.Users, d.Cache, d.Mailer, d.Archiver, logger)

	handlers.RegisterValidators()

	if r.Engine != nil {
		r.Engine.GET("/", handlers.Root)
		r.Engine.NoRoute(handlers.NotFound)
	}

	r.Add(modules.NewHealthModule())
	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(authSvc, logger), jwt, cfg.AuthRateLimitMax, cfg.RateLimitWindow))
	r.Add(modules.NewExpenseModule(handlers.NewExpenseHandler(expenseSvc, logger), jwt))
	r.Add(modules.NewReportModule(handlers.NewReportHandler(reportSvc, logger), jwt))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
