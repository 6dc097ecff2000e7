package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"todo-api/internal/config"
	"todo-api/internal/db"
	"todo-api/internal/email"
	apihttp "todo-api/internal/http"
	"todo-api/internal/repository"
	"todo-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if cfg.DBAutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
		logger.Info("migrations applied")
	}

	userRepo := repository.NewPgUserRepository(pool)
	taskRepo := repository.NewPgTaskRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	} else {
		logger.Warn("smtp not configured, verification codes will not be delivered")
	}

	// Sin Redis cada instancia cuenta intentos en memoria.
	var (
		verifyLimiter service.RateLimiter
		resendLimiter service.RateLimiter
		redisClient   *redis.Client
	)
	signinLimiter := service.NewMemoryRateLimiter(cfg.SignInRateWindow, cfg.SignInRateLimit)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()

		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory rate limits", zap.Error(err))
		} else {
			verifyLimiter = service.NewRedisRateLimiter(redisClient, "todo:otp:verify:", cfg.OTPTTL, cfg.OTPMaxAttempts)
			resendLimiter = service.NewRedisRateLimiter(redisClient, "todo:otp:resend:", cfg.OTPTTL, cfg.OTPResendMax)
			signinLimiter = service.NewRedisRateLimiter(redisClient, "todo:signin:", cfg.SignInRateWindow, cfg.SignInRateLimit)
		}
		cancel()
	}
	if verifyLimiter == nil {
		verifyLimiter = service.NewMemoryRateLimiter(cfg.OTPTTL, cfg.OTPMaxAttempts)
	}
	if resendLimiter == nil {
		resendLimiter = service.NewMemoryRateLimiter(cfg.OTPTTL, cfg.OTPResendMax)
	}

	sessionSvc := service.NewSessionService(cfg.JWTSecret, cfg.SessionTTL)
	userSvc := service.NewUserService(logger, userRepo, emailSender, service.UserServiceOptions{
		OTPTTL:          cfg.OTPTTL,
		VerifyLimiter:   verifyLimiter,
		ResendLimiter:   resendLimiter,
		RequireVerified: cfg.RequireVerified,
	})
	taskSvc := service.NewTaskService(logger, taskRepo)

	authHandler := apihttp.NewAuthHandler(logger, userSvc, sessionSvc, cfg.SessionCookieSecure)
	todoHandler := apihttp.NewTodoHandler(logger, taskSvc)
	healthHandler := apihttp.NewHealthHandler(logger, pool)
	router := apihttp.NewRouter(logger, authHandler, todoHandler, healthHandler, sessionSvc, signinLimiter)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort), zap.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
}

// newLogger usa encoder de consola en desarrollo y JSON en el resto.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	if cfg.IsDevelopment() {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}
