// Command notifier publishes booking reminders to RabbitMQ. It shares the
// API server's database and settings.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/iliyamo/dorm-booking/internal/config"
	"github.com/iliyamo/dorm-booking/internal/database"
	"github.com/iliyamo/dorm-booking/internal/logger"
	"github.com/iliyamo/dorm-booking/internal/queue"
	"github.com/iliyamo/dorm-booking/internal/repository"
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

	interval := pflag.DurationP("interval", "i", cfg.Notifier.Interval, "time between reminder scans")
	once := pflag.Bool("once", false, "scan once and exit")
	pflag.Parse()

	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: !cfg.IsProduction(), Service: "dorm-notifier"})
	if cfg.Rabbit.URL == "" {
		log.Fatal().Msg("RABBITMQ_URL is required")
	}
	if *interval <= 0 {
		log.Fatal().Dur("interval", *interval).Msg("interval must be positive")
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

	pub := queue.NewPublisher(cfg.Rabbit.URL, log.With().Str("component", "publisher").Logger())
	defer pub.Close()

	reminders := service.NewReminderService(repository.NewStore(db), pub, log,
		service.WithClock(func() time.Time { return time.Now().In(loc) }))

	if *once {
		n, err := reminders.RunOnce(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("reminder scan failed")
		}
		log.Info().Int("sent", n).Msg("reminder scan done")
		return
	}

	log.Info().Dur("interval", *interval).Msg("notifier started")
	if err := reminders.Run(ctx, *interval); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("notifier stopped")
	}
}
