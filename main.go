package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"quickshow/internal/app"
	"quickshow/internal/observability"
)

func main() {
	log.Init(logrus.InfoLevel)
	watermillLogger := log.NewWatermill(logrus.NewEntry(logrus.StandardLogger()))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tp := observability.ConfigureTraceProvider()
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logrus.WithError(err).Error("failed to shut down trace provider")
		}
	}()

	redisClient := redis.NewClient(&redis.Options{
		Addr: os.Getenv("REDIS_ADDR"),
	})
	defer redisClient.Close()

	db, err := sqlx.Open("postgres", os.Getenv("POSTGRES_URL"))
	if err != nil {
		panic(err)
	}
	defer db.Close()

	a, err := app.NewApp(
		watermillLogger,
		app.Config{
			AppBaseURL:     os.Getenv("APP_BASE_URL"),
			PaymentsURL:    os.Getenv("PAYMENTS_URL"),
			PaymentsAPIKey: os.Getenv("PAYMENTS_API_KEY"),
			WebhookSecret:  os.Getenv("PAYMENTS_WEBHOOK_SECRET"),
			NotifierURL:    os.Getenv("NOTIFIER_URL"),
			NotifierAPIKey: os.Getenv("NOTIFIER_API_KEY"),
		},
		redisClient,
		db,
	)
	if err != nil {
		panic(err)
	}

	if err := a.Run(ctx); err != nil {
		panic(err)
	}
}
