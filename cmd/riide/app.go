package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"riide/internal/app/commands"
	"riide/internal/app/dto"
	bookingapp "riide/internal/app/handlers/bookings"
	catalogapp "riide/internal/app/handlers/catalog"
	"riide/internal/app/handlers/checkout"
	telemetryapp "riide/internal/app/handlers/telemetry"
	"riide/internal/app/middleware"
	"riide/internal/app/outbox"
	"riide/internal/app/policies"
	"riide/internal/app/queries"
	appschedule "riide/internal/app/schedule"
	authsvc "riide/internal/app/services/auth"
	"riide/internal/domain/pricing"
	domaintelemetry "riide/internal/domain/telemetry"
	"riide/internal/infra/broker/kafka"
	rediscache "riide/internal/infra/cache/redis"
	infracatalog "riide/internal/infra/catalog"
	"riide/internal/infra/config"
	ginserver "riide/internal/infra/http/gin"
	"riide/internal/infra/notify"
	"riide/internal/infra/obs"
	infraoutbox "riide/internal/infra/outbox"
	"riide/internal/infra/payments"
	"riide/internal/infra/schedule"
	"riide/internal/infra/security"
	"riide/internal/infra/storage/memory"
	"riide/internal/infra/validation"
)

const (
	eventSource    = "riide"
	jobTimeout     = time.Minute
	workerRestart  = 5 * time.Second
	purgeSchedule  = "@hourly"
	mailSenderName = "RIIDE"
)

type application struct {
	handlers ginserver.Handlers
	health   obs.HealthHandlers

	storage       *storage
	paymentsTopic string
	worker        *infraoutbox.Worker
	consumer      *kafka.Consumer
	producer      *kafka.Producer
	scheduler     *schedule.CronScheduler

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}
	st, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	app := &application{storage: st}
	checks := st.checks

	metrics, err := buildMetricsStore(ctx, cfg, checks)
	if err != nil {
		app.close(logger)
		return nil, err
	}

	if len(cfg.KafkaBrokers) > 0 {
		app.producer, err = kafka.NewProducer(cfg.KafkaBrokers, kafka.NewConfig(eventSource))
		if err != nil {
			app.close(logger)
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
	}

	clock := policies.SystemClock{Location: cfg.PricingLocation}
	calculator := pricing.NewCalculator(cat.Calendar)
	notifier := buildNotifier(cfg, logger)

	checkoutHandler := &checkout.CheckoutHandler{
		Catalog:    cat.Fleet,
		Calculator: calculator,
		Clock:      clock,
		Notifier:   notifier,
		Outbox:     st.outbox,
		Encoder:    outbox.JSONEventEncoder{},
		BaseURL:    cfg.BaseURL,
		Logger:     logger,
	}
	if cfg.PaymentsEnabled {
		checkoutHandler.Payments = &payments.Gateway{
			Producer:    app.producer,
			Topic:       cfg.KafkaTopicPrefix + cfg.KafkaCheckoutTopic,
			CheckoutURL: cfg.PaymentsCheckoutURL,
			Source:      eventSource,
		}
	}

	base := commands.NewInMemoryBus()
	commands.RegisterHandler[checkout.CheckoutCommand, *checkout.CheckoutResult](base, checkoutHandler)
	commands.RegisterHandler[checkout.ConfirmPaymentCommand, *checkout.ConfirmPaymentResult](base, &checkout.ConfirmPaymentHandler{
		Clock:    clock,
		Notifier: notifier,
		Outbox:   st.outbox,
		Encoder:  outbox.JSONEventEncoder{},
		Logger:   logger,
	})
	commands.RegisterHandler[checkout.ExpirePendingCommand, *checkout.ExpirePendingResult](base, &checkout.ExpirePendingHandler{
		Clock:   clock,
		TTL:     cfg.CheckoutTTL,
		Outbox:  st.outbox,
		Encoder: outbox.JSONEventEncoder{},
		Logger:  logger,
	})
	commands.RegisterHandler[telemetryapp.RecordMetricCommand, *telemetryapp.RecordMetricResult](base, &telemetryapp.RecordMetricHandler{
		Store:  metrics,
		Clock:  clock,
		Logger: logger,
	})

	queryBase := queries.NewInMemoryBus()
	queries.RegisterHandler[catalogapp.GetEstimateQuery, pricing.Estimate](queryBase, &catalogapp.GetEstimateHandler{
		UoWFactory: st.factory,
		Catalog:    cat.Fleet,
		Calculator: calculator,
		Clock:      clock,
	})
	queries.RegisterHandler[catalogapp.ListVehiclesQuery, dto.VehicleCollection](queryBase, &catalogapp.ListVehiclesHandler{Catalog: cat.Fleet})
	queries.RegisterHandler[catalogapp.ListDemandPeriodsQuery, dto.DemandPeriodCollection](queryBase, &catalogapp.ListDemandPeriodsHandler{Calendar: cat.Calendar})
	queries.RegisterHandler[bookingapp.PublicRangesQuery, dto.PublicRangeCollection](queryBase, &bookingapp.PublicRangesHandler{UoWFactory: st.factory, Clock: clock})
	queries.RegisterHandler[bookingapp.AdminListQuery, dto.AdminBookingCollection](queryBase, &bookingapp.AdminListHandler{UoWFactory: st.factory})
	queries.RegisterHandler[telemetryapp.ListMetricsQuery, dto.MetricCollection](queryBase, &telemetryapp.ListMetricsHandler{Store: metrics, Limit: cfg.MetricsReadLimit})

	validator := validation.New()
	commandBus := middleware.ChainCommands(base,
		middleware.Logging(logger),
		middleware.Validation(validator),
		middleware.Authorization(middleware.RoleAuthorizer{}),
		middleware.Idempotency(st.idempotency, nil, cfg.IdempotencyTTL),
		middleware.OutboxFlush(st.outbox),
		middleware.Transaction(st.factory, nil),
	)
	queryBus := middleware.ChainQueries(queryBase,
		middleware.QueryLogging(logger),
		middleware.QueryValidation(validator),
		middleware.QueryAuthorization(middleware.RoleAuthorizer{}),
	)

	auth, err := buildAuthService(cfg, logger)
	if err != nil {
		app.close(logger)
		return nil, err
	}

	app.worker = buildWorker(cfg, st, app.producer, logger)
	if cfg.PaymentsEnabled {
		app.consumer, err = kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, nil, &kafka.PaymentEventHandler{
			Bus:    commandBus,
			Inbox:  st.inbox,
			Logger: logger,
		})
		if err != nil {
			app.close(logger)
			return nil, fmt.Errorf("kafka consumer: %w", err)
		}
		app.consumer.Backoff = cfg.RetryBackoff
		app.paymentsTopic = cfg.KafkaTopicPrefix + cfg.KafkaPaymentsTopic
		app.consumer.Logger = logger
	}

	app.scheduler = schedule.NewCronScheduler(cfg.PricingLocation, jobTimeout, logger)
	if err := registerJobs(app.scheduler, cfg, st, commandBus, logger); err != nil {
		app.close(logger)
		return nil, err
	}

	app.health = obs.HealthHandlers{Checks: checks}
	app.handlers = ginserver.Handlers{
		Catalog:        ginserver.CatalogHandler{Queries: queryBus, PaymentsEnabled: cfg.PaymentsEnabled, Logger: logger},
		Booking:        ginserver.BookingHandler{Commands: commandBus, Queries: queryBus, Logger: logger},
		Telemetry:      ginserver.TelemetryHandler{Commands: commandBus, Logger: logger},
		Auth:           ginserver.AuthHandler{Service: auth, Logger: logger},
		Admin:          ginserver.AdminHandler{Queries: queryBus, Logger: logger},
		AuthMiddleware: ginserver.AuthMiddleware{Service: auth, Logger: logger}.Handle,
	}
	logger.Info("catalog loaded", "vehicles", cat.Fleet.Len(), "demand_periods", len(cat.Calendar.Periods()))
	return app, nil
}

func loadCatalog(cfg config.Config) (infracatalog.Catalog, error) {
	if cfg.CatalogFile == "" {
		return infracatalog.Default()
	}
	cat, err := infracatalog.Load(cfg.CatalogFile)
	if err != nil {
		return infracatalog.Catalog{}, fmt.Errorf("catalog %s: %w", cfg.CatalogFile, err)
	}
	return cat, nil
}

func buildMetricsStore(ctx context.Context, cfg config.Config, checks map[string]obs.Check) (domaintelemetry.Store, error) {
	if cfg.RedisAddr == "" {
		return memory.NewMetricsStore(cfg.MetricsCapacity), nil
	}
	store, err := rediscache.NewMetricsStore(rediscache.NewClient(cfg.RedisAddr, cfg.RedisDB), rediscache.DefaultMetricsKey, cfg.MetricsCapacity)
	if err != nil {
		return nil, err
	}
	if err := store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	checks["redis"] = store.Ping
	return store, nil
}

func buildNotifier(cfg config.Config, logger *slog.Logger) policies.Notifier {
	if cfg.SendgridAPIKey == "" {
		return notify.LogNotifier{Logger: logger}
	}
	return notify.NewSendGridNotifier(cfg.SendgridAPIKey, cfg.MailFrom, mailSenderName)
}

func buildAuthService(cfg config.Config, logger *slog.Logger) (*authsvc.Service, error) {
	hasher := security.BcryptHasher{}
	hash, err := hasher.PrepareSecret(cfg.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("admin password: %w", err)
	}
	secret := cfg.AdminTokenSecret
	if secret == "" {
		// dev only; config validation requires a secret elsewhere
		if secret, err = (security.RandomTokenGenerator{Size: 32}).NewToken(); err != nil {
			return nil, err
		}
		logger.Warn("ADMIN_TOKEN_SECRET not set; admin tokens will not survive a restart")
	}
	codec, err := security.NewJWTCodec(secret, security.DefaultIssuer)
	if err != nil {
		return nil, err
	}
	return &authsvc.Service{
		Passwords:    hasher,
		PasswordHash: hash,
		Tokens:       security.RandomTokenGenerator{},
		Codec:        codec,
		SessionTTL:   cfg.AdminTokenTTL,
		Logger:       logger,
	}, nil
}

func buildWorker(cfg config.Config, st *storage, producer *kafka.Producer, logger *slog.Logger) *infraoutbox.Worker {
	var sink infraoutbox.Producer = infraoutbox.LogProducer{Logger: logger}
	if producer != nil {
		sink = producer
	}
	worker := infraoutbox.NewWorker(st.outbox, sink)
	worker.Interval = cfg.OutboxPollInterval
	worker.TopicPrefix = cfg.KafkaTopicPrefix
	worker.Source = eventSource
	worker.Backoff = cfg.RetryBackoff
	worker.Logger = logger
	if host, err := os.Hostname(); err == nil {
		worker.ID = host
	}
	st.outbox.OnFlush(worker.Notify)
	return worker
}

func registerJobs(s appschedule.Scheduler, cfg config.Config, st *storage, bus commands.Bus, logger *slog.Logger) error {
	err := s.Register(appschedule.Job{
		Name: "expire-pending-checkouts",
		Spec: cfg.ExpirySchedule,
		Run: func(ctx context.Context) error {
			res, err := commands.Dispatch[checkout.ExpirePendingCommand, *checkout.ExpirePendingResult](ctx, bus, checkout.ExpirePendingCommand{})
			if err != nil {
				return err
			}
			if len(res.Cancelled) > 0 {
				logger.InfoContext(ctx, "pending checkouts expired", "count", len(res.Cancelled))
			}
			return nil
		},
	})
	if err != nil || st.purge == nil {
		return err
	}
	return s.Register(appschedule.Job{
		Name: "purge-idempotency-records",
		Spec: purgeSchedule,
		Run: func(ctx context.Context) error {
			n, err := st.purge(ctx)
			if err == nil && n > 0 {
				logger.InfoContext(ctx, "idempotency records purged", "count", n)
			}
			return err
		},
	})
}

func (a *application) startBackground(parent context.Context, logger *slog.Logger) {
	ctx, cancel := context.WithCancel(parent)
	a.cancel = cancel

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		for {
			err := a.worker.Run(ctx)
			if ctx.Err() != nil {
				return
			}
			logger.Error("outbox worker stopped, restarting", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(workerRestart):
			}
		}
	}()

	if a.consumer != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if err := a.consumer.Run(ctx, []string{a.paymentsTopic}); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("payment consumer stopped", "error", err)
			}
		}()
	}
	a.scheduler.Start()
}

func (a *application) stopBackground(ctx context.Context, logger *slog.Logger) {
	if a.cancel != nil {
		a.cancel()
	}
	if a.scheduler != nil {
		if err := a.scheduler.Stop(ctx); err != nil {
			logger.Warn("scheduler stop timed out", "error", err)
		}
	}
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		logger.Warn("background tasks did not stop in time")
	}
}

func (a *application) close(logger *slog.Logger) {
	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			logger.Warn("kafka consumer close failed", "error", err)
		}
		a.consumer = nil
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			logger.Warn("kafka producer close failed", "error", err)
		}
		a.producer = nil
	}
	if a.storage != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.storage.close(ctx); err != nil {
			logger.Warn("storage close failed", "error", err)
		}
		a.storage = nil
	}
}
