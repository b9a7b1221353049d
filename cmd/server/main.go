package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/iliyamo/dorm-booking/internal/config"
	"github.com/iliyamo/dorm-booking/internal/database"
	"github.com/iliyamo/dorm-booking/internal/handler"
	"github.com/iliyamo/dorm-booking/internal/logger"
	"github.com/iliyamo/dorm-booking/internal/middleware"
	"github.com/iliyamo/dorm-booking/internal/queue"
	"github.com/iliyamo/dorm-booking/internal/repository"
	"github.com/iliyamo/dorm-booking/internal/router"
	"github.com/iliyamo/dorm-booking/internal/service"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: !cfg.IsProduction(), Service: "dorm-api"})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid timezone")
	}

	db, err := database.Open(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("mysql connect failed")
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("mysql migrate failed")
	}
	store := repository.NewStore(db)

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		log.Warn().Str("addr", cfg.Redis.Addr).Msg("redis unavailable: rate limiting and caching disabled")
	} else {
		defer rdb.Close()
	}

	opts := []service.Option{service.WithClock(func() time.Time { return time.Now().In(loc) })}
	if cfg.Rabbit.URL != "" {
		pub := queue.NewPublisher(cfg.Rabbit.URL, log.With().Str("component", "publisher").Logger())
		defer pub.Close()
		opts = append(opts, service.WithPublisher(pub))
	} else {
		log.Warn().Msg("RABBITMQ_URL not set: booking events are not published")
	}

	laundry := service.NewLaundryService(store, log, opts...)
	restroom := service.NewRestroomService(store, log, opts...)
	admin := service.NewAdminService(store, laundry, restroom, log, opts...)
	users := service.NewUserService(store, []byte(cfg.NamePepper), log, opts...)
	if err := users.Promote(ctx, cfg.AdminIDs...); err != nil {
		log.Fatal().Err(err).Msg("admin promotion failed")
	}

	if cfg.Rabbit.URL != "" && cfg.Rabbit.AuditEnabled {
		var w io.Writer = os.Stdout
		if cfg.Rabbit.AuditLogPath != "" {
			f, err := os.OpenFile(cfg.Rabbit.AuditLogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				log.Fatal().Err(err).Str("path", cfg.Rabbit.AuditLogPath).Msg("open audit log failed")
			}
			defer f.Close()
			w = f
		}
		consumer := queue.NewAuditConsumer(cfg.Rabbit.URL, w, log.With().Str("component", "audit").Logger())
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("audit consumer stopped")
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(log)
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))

	deps := map[string]handler.Pinger{"mysql": store}
	if rdb != nil {
		deps["redis"] = handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}
	router.RegisterRoutes(e, handler.NewHealthHandler(deps))

	v1 := router.RegisterResident(e, router.ResidentHandlers{
		Users:    handler.NewUserHandler(users),
		Laundry:  handler.NewLaundryHandler(laundry),
		Restroom: handler.NewRestroomHandler(restroom),
		Bookings: handler.NewBookingsHandler(laundry, restroom),
	}, cfg.JWTSecret, middleware.NewTokenBucket(cfg.RateLimit, rdb, log))
	router.RegisterAdmin(v1, handler.NewAdminHandler(admin),
		middleware.RequireAdmin(users, log),
		middleware.NewRedisCache(cfg.Cache, rdb, log))

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Str("timezone", loc.String()).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	shutdown(e, log)
}

func shutdown(e *echo.Echo, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return
	}
	log.Info().Msg("server stopped")
}
