package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/expense-tracker/config"
	"github.com/oksasatya/expense-tracker/internal/container"
	pginfra "github.com/oksasatya/expense-tracker/internal/infrastructure/postgres"
	"github.com/oksasatya/expense-tracker/internal/infrastructure/search"
	"github.com/oksasatya/expense-tracker/internal/interface/middleware"
	"github.com/oksasatya/expense-tracker/internal/router"
	"github.com/oksasatya/expense-tracker/pkg/helpers"
	"github.com/oksasatya/expense-tracker/pkg/mailer"
	mailtpl "github.com/oksasatya/expense-tracker/pkg/mailer/templates"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	// Initialize Postgres pool
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		logger.Fatalf("migration failed: %v", err)
	}

	// Redis backs rate limiting and the report cache; both degrade when it is down
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("redis unreachable; rate limits fail open and reports are not cached")
	}

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetPGPool(pool)
	container.SetRedis(rdb)
	container.SetJWT(helpers.NewJWTManager(cfg.JWTSecret, cfg.AppName, cfg.JWTTTL))

	setupSearch(ctx, cfg, logger)
	setupArchive(ctx, cfg, logger)
	setupMail(cfg, logger)
	defer container.GetRabbitPub().Close()
	if gcs := container.GetGCS(); gcs != nil {
		defer func() { _ = gcs.Close() }()
	}

	// Gin engine and global middleware
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.RealIP())
	r.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	if cfg.HTTPLogEnabled {
		r.Use(middleware.AccessLog(logger))
	}
	r.Use(gin.Recovery())
	// CORS
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.Use(cors.New(corsCfg))

	// Registry: auto-register modules using container
	reg := router.NewRegistry(r)
	reg.Use(middleware.RateLimit(rdb, cfg.RateLimitMax, cfg.RateLimitWindow, middleware.KeyByIP("global"), middleware.AllowPaths("/api/health")))
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s (%s)", cfg.Port, cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

// setupSearch enables expense search when Elasticsearch is configured and reachable.
func setupSearch(ctx context.Context, cfg *config.Config, logger *logrus.Logger) {
	addrs := cfg.ESAddrs()
	if len(addrs) == 0 {
		logger.Info("elasticsearch not configured; expense search disabled")
		return
	}
	es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		logger.WithError(err).Warn("elasticsearch client init failed; expense search disabled")
		return
	}
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := search.NewExpenseIndex(es, cfg.ESExpensesIndex).EnsureIndex(c); err != nil {
		logger.WithError(err).Warn("elasticsearch index setup failed; expense search disabled")
		return
	}
	container.SetES(es)
}

// setupArchive enables GCS archival of emailed reports.
func setupArchive(ctx context.Context, cfg *config.Config, logger *logrus.Logger) {
	if cfg.GCSBucket == "" {
		return
	}
	gcs, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
	if err != nil {
		logger.WithError(err).Warn("gcs client init failed; report archival disabled")
		return
	}
	container.SetGCS(gcs)
}

// setupMail picks how outgoing email leaves the process:
// logged when sending is disabled, queued when RabbitMQ is configured, sent inline otherwise.
// Reset and report mail is always sent inline so its failure reaches the caller.
func setupMail(cfg *config.Config, logger *logrus.Logger) {
	var transport, critical mailer.Transport
	switch {
	case !cfg.MailSendEnabled:
		logger.Warn("MAIL_SEND_ENABLED=false; emails are written to the log")
		transport = mailer.LogTransport{Log: logger}
	case cfg.RabbitMQURL != "":
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; sending email inline")
			transport = mailer.DirectTransport{Sender: mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)}
			break
		}
		container.SetRabbitPub(pub)
		transport = mailer.QueueTransport{Publisher: pub}
		// reset and report mail must fail the request when the relay rejects it
		critical = mailer.DirectTransport{Sender: mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)}
	default:
		transport = mailer.DirectTransport{Sender: mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)}
	}

	n := mailer.NewNotifier(
		transport,
		mailtpl.Branding{CompanyName: cfg.CompanyName, AppName: cfg.AppName, SupportURL: cfg.SupportURL},
		cfg.ResetPasswordURL(),
	)
	n.Critical = critical
	container.SetNotifier(n)
}
