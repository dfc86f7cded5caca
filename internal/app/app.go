package app

import (
	"context"
	"errors"
	"os"

	commonHTTP "github.com/ThreeDotsLabs/go-event-driven/common/http"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	watermillMessage "github.com/ThreeDotsLabs/watermill/message"
	trmsqlx "github.com/avito-tech/go-transaction-manager/drivers/sqlx/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"quickshow/internal/application/usecases/expiry"
	"quickshow/internal/application/usecases/reservation"
	"quickshow/internal/application/usecases/settlement"
	"quickshow/internal/infrastructure/clients"
	"quickshow/internal/infrastructure/event_publisher"
	"quickshow/internal/interfaces/http"
	"quickshow/internal/interfaces/message"
	"quickshow/internal/interfaces/message/events"
	"quickshow/internal/interfaces/message/outbox"
	"quickshow/internal/repository"
	"quickshow/internal/scheduler"
)

type Config struct {
	AppBaseURL     string
	PaymentsURL    string
	PaymentsAPIKey string
	WebhookSecret  string
	NotifierURL    string
	NotifierAPIKey string
}

type App struct {
	watermillLogger watermill.LoggerAdapter
	logger          zerolog.Logger
	router          *watermillMessage.Router
	srv             *http.Server
	forwarder       *outbox.Forwarder
	sweeper         *scheduler.Runner
	db              *sqlx.DB
}

func NewApp(
	watermillLogger watermill.LoggerAdapter,
	cfg Config,
	redisClient *redis.Client,
	db *sqlx.DB,
) (*App, error) {
	logger := zerolog.New(os.Stdout)

	trManager := manager.Must(trmsqlx.NewDefaultFactory(db))
	getter := trmsqlx.DefaultCtxGetter

	showsRepo := repository.NewShowsRepo(db, getter)
	bookingsRepo := repository.NewBookingsRepo(db, getter)
	checksRepo := repository.NewScheduledChecksRepo(db, getter)

	var publisher watermillMessage.Publisher
	publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: redisClient,
	}, watermillLogger)
	if err != nil {
		return nil, err
	}
	publisher = event_publisher.CorrelationPublisherDecorator{
		Publisher: publisher,
	}

	eventBus, err := events.NewEventBus(publisher, watermillLogger)
	if err != nil {
		return nil, err
	}

	paymentsClient := clients.NewPaymentsClient(cfg.PaymentsURL, cfg.PaymentsAPIKey)
	notificationsClient := clients.NewNotificationsClient(cfg.NotifierURL, cfg.NotifierAPIKey)

	sweeper := scheduler.NewRunner(checksRepo, eventBus, logger)

	confirmationPublisher := event_publisher.NewOutboxConfirmationPublisher(db, getter, watermillLogger)

	reservationsService := reservation.NewReserveSeatsUsecase(
		showsRepo,
		bookingsRepo,
		checksRepo,
		paymentsClient,
		trManager,
		cfg.AppBaseURL,
		sweeper.Wake,
	)
	settlementsService := settlement.NewSettlePaymentUsecase(bookingsRepo, confirmationPublisher, trManager)
	expiryService := expiry.NewExpireBookingUsecase(bookingsRepo, showsRepo, trManager)

	eventHandler := events.NewHandler(notificationsClient, bookingsRepo, expiryService)

	router, err := message.NewRouter(
		watermillLogger,
		eventHandler,
		events.NewEventProcessorConfig(redisClient, watermillLogger),
	)
	if err != nil {
		return nil, err
	}

	fwd, err := outbox.NewForwarder(db, redisClient, watermillLogger)
	if err != nil {
		return nil, err
	}

	e := commonHTTP.NewEcho()
	srv := http.NewServer(
		e,
		reservationsService,
		settlementsService,
		paymentsClient,
		showsRepo,
		bookingsRepo,
		cfg.WebhookSecret,
		router.IsRunning,
	)

	return &App{
		watermillLogger: watermillLogger,
		logger:          logger,
		router:          router,
		srv:             srv,
		forwarder:       fwd,
		sweeper:         sweeper,
		db:              db,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	if err := repository.InitializeDBSchema(a.db); err != nil {
		return err
	}

	a.forwarder.RunForwarder(ctx)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info().Msg("starting router")

		return a.router.Run(ctx)
	})

	g.Go(func() error {
		a.logger.Info().Msg("starting payment check sweeper")

		return a.sweeper.Run(ctx)
	})

	g.Go(func() error {
		<-a.router.Running()
		a.logger.Info().Msg("router is running")

		a.logger.Info().Msg("starting server")
		return a.srv.Start()
	})

	g.Go(func() error {
		// Shut down
		<-ctx.Done()

		err := a.srv.Stop(context.Background())
		if err != nil {
			a.logger.Err(err).Msg("error stopping server")
		}

		return err
	})

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
