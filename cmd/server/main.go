package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Gabrielferreira1/fullstack-chat-app/internal/api"
	"github.com/Gabrielferreira1/fullstack-chat-app/internal/billing"
	"github.com/Gabrielferreira1/fullstack-chat-app/internal/cache"
	"github.com/Gabrielferreira1/fullstack-chat-app/internal/config"
	"github.com/Gabrielferreira1/fullstack-chat-app/internal/database"
	"github.com/Gabrielferreira1/fullstack-chat-app/internal/media"
	"github.com/Gabrielferreira1/fullstack-chat-app/internal/server"
	"github.com/Gabrielferreira1/fullstack-chat-app/internal/stats"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const defaultSigningKey = "wT0phFUusHZIrDhL9bUKPUhwaxKhpi/SaI6PtgB+MgU="

type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, strings.Split(value, ",")...)
	return nil
}

var (
	addr           string
	dsn            string
	signingKey     string
	allowedOrigins stringSliceFlag
	secureCookies  bool
	migrateDB      bool
	logLevel       string

	redisCfg  config.RedisConfig
	mediaCfg  config.MediaConfig
	stripeCfg config.StripeConfig
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := config.LoadDotEnv(); err != nil {
		logger.WithError(err).Fatal("load env")
	}

	flag.StringVar(&addr, "addr", config.EnvOrDefault("ADDR", "localhost:5001"), "server address")
	flag.StringVar(&dsn, "dsn", config.EnvOrDefault("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=postgres sslmode=disable"), "database connection string")
	flag.StringVar(&signingKey, "signing-key", config.EnvOrDefault("JWT_SIGNING_KEY", defaultSigningKey), "base64 encoded signing key")
	flag.Var(&allowedOrigins, "allowed-origins", "comma-separated list of allowed origins for CORS")
	flag.BoolVar(&secureCookies, "secure-cookies", config.EnvBoolOrDefault("SECURE_COOKIES", false), "mark session cookies as secure")
	flag.BoolVar(&migrateDB, "migrate", config.EnvBoolOrDefault("MIGRATE", true), "apply database migrations on startup")
	flag.StringVar(&logLevel, "log-level", config.EnvOrDefault("LOG_LEVEL", "info"), "log level")

	flag.StringVar(&redisCfg.Addr, "redis-addr", config.EnvOrDefault("REDIS_ADDR", ""), "redis address, empty disables the user cache")
	flag.StringVar(&redisCfg.Password, "redis-password", config.EnvOrDefault("REDIS_PASSWORD", ""), "redis password")
	flag.IntVar(&redisCfg.DB, "redis-db", config.EnvIntOrDefault("REDIS_DB", 0), "redis database")
	flag.DurationVar(&redisCfg.TTL, "cache-ttl", config.EnvDurationOrDefault("CACHE_TTL", cache.DefaultTTL), "user cache ttl")

	flag.StringVar(&mediaCfg.Endpoint, "media-endpoint", config.EnvOrDefault("MINIO_ENDPOINT", ""), "S3 compatible media host, empty disables uploads")
	flag.StringVar(&mediaCfg.AccessKey, "media-access-key", config.EnvOrDefault("MINIO_ACCESS_KEY", ""), "media host access key")
	flag.StringVar(&mediaCfg.SecretKey, "media-secret-key", config.EnvOrDefault("MINIO_SECRET_KEY", ""), "media host secret key")
	flag.StringVar(&mediaCfg.Bucket, "media-bucket", config.EnvOrDefault("MINIO_BUCKET", "chat-media"), "media bucket")
	flag.StringVar(&mediaCfg.PublicURL, "media-public-url", config.EnvOrDefault("MEDIA_PUBLIC_URL", ""), "base URL for stored media")
	flag.BoolVar(&mediaCfg.UseSSL, "media-ssl", config.EnvBoolOrDefault("MINIO_USE_SSL", false), "connect to the media host over TLS")

	flag.StringVar(&stripeCfg.SecretKey, "stripe-secret-key", config.EnvOrDefault("STRIPE_SECRET_KEY", ""), "stripe secret key, empty disables payments")
	flag.StringVar(&stripeCfg.WebhookSecret, "stripe-webhook-secret", config.EnvOrDefault("STRIPE_WEBHOOK_SECRET", ""), "stripe webhook signing secret")
	flag.StringVar(&stripeCfg.FrontendURL, "frontend-url", config.EnvOrDefault("FRONTEND_URL", "http://localhost:5173"), "frontend URL for checkout redirects")
	flag.Parse()

	if level, err := logrus.ParseLevel(logLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.WithError(err).Warn("invalid log level, using info")
	}

	if len(allowedOrigins) == 0 {
		if v := config.EnvOrDefault("ALLOWED_ORIGINS", ""); v != "" {
			allowedOrigins.Set(v)
		}
	}

	cfg, err := config.NewConfig(addr, dsn, signingKey, allowedOrigins)
	if err != nil {
		logger.WithError(err).Fatal("config")
	}
	cfg.SecureCookies = secureCookies
	cfg.Redis = redisCfg
	cfg.Media = mediaCfg
	cfg.Stripe = stripeCfg

	if migrateDB {
		if err := database.Migrate(cfg.DatabaseDSN); err != nil {
			logger.WithError(err).Fatal("db migrate")
		}
	}

	dbConn, err := database.NewPgGoChatRepository(cfg.DatabaseDSN)
	if err != nil {
		logger.WithError(err).Fatal("db open")
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.WithError(err).Error("db close")
		}
	}()

	var opts []api.Option

	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		opts = append(opts, api.WithUserCache(cache.NewRedisUserCache(rdb, cfg.Redis.TTL)))
		logger.WithField("addr", cfg.Redis.Addr).Info("user cache enabled")
	}

	if cfg.Media.Enabled() {
		initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		uploader, err := media.NewMinioUploader(initCtx, cfg.Media)
		cancel()
		if err != nil {
			logger.WithError(err).Fatal("media host")
		}
		opts = append(opts, api.WithUploader(uploader))
		logger.WithField("endpoint", cfg.Media.Endpoint).Info("media uploads enabled")
	}

	if cfg.Stripe.Enabled() {
		opts = append(opts, api.WithBilling(billing.NewStripeProvider(cfg.Stripe, nil)))
		logger.Info("payments enabled")
	}

	mux := http.NewServeMux()

	statsUpdater := stats.NewStatsUpdater(mux)

	chatServer, err := server.NewChatServer(logger, server.NewRegistry(), statsUpdater)
	if err != nil {
		logger.WithError(err).Fatal("new chat server")
	}

	srv := api.NewGoChatApp(mux, logger, chatServer, dbConn, statsUpdater, cfg, opts...)

	statsUpdater.Run()
	defer statsUpdater.Stop()

	go chatServer.Run()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Infof("received signal: %s", sig)
	case err := <-errCh:
		logger.WithError(err).Error("server")
	}

	shutDownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutDownCtx); err != nil {
		logger.WithError(err).Error("HTTP server shutdown")
	}

	logger.Info("shutting down chat server...")
	if err := chatServer.Shutdown(shutDownCtx); err != nil {
		logger.WithError(err).Error("chat server shutdown")
	}

	logger.Info("shutdown complete")
}
