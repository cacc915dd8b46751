package main

import (
	"bookline/internal/bookings/handler"
	"bookline/internal/bookings/repository"
	"bookline/internal/bookings/service"
	"bookline/internal/bookings/validator"
	"bookline/internal/bookings/visibility"
	"bookline/internal/notify"
	"bookline/pkg/app"
	"bookline/pkg/config"
	"bookline/pkg/kafka"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)

	cfg.Log.Info("Starting Bookings service")
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	notifier, producer := initNotifier(cfg)
	if producer != nil {
		defer func() {
			if err := producer.Close(); err != nil {
				cfg.Log.Error("Failed to close notification producer", "error", err)
			}
		}()
	}

	bookingService := initServices(cfg, notifier)
	shaper := visibility.NewShaper(cfg.DefaultPageSize, cfg.MaxPageSize)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, handler.NewBookingHandler(bookingService, shaper, cfg.Log))
	serverApp.Run()
}

func initNotifier(cfg *config.Config) (notify.Notifier, *kafka.Producer) {
	if cfg.NotificationsDisabled {
		cfg.Log.Info("Notifications disabled, email events will not be published")
		return notify.NopNotifier{}, nil
	}

	producer, err := kafka.NewProducer(kafka.Config{
		Brokers: cfg.KafkaBrokers,
	}, cfg.NotificationsTopic, cfg.NotificationsDLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create notification producer", "error", err)
	}

	notifier := notify.NewKafkaNotifier(producer, notify.Config{
		AdminEmail:  cfg.AdminEmail,
		SenderEmail: cfg.SenderEmail,
		Source:      ServiceName,
	}, cfg.Log)

	cfg.Log.Info("Notification producer initialized",
		"topic", cfg.NotificationsTopic,
		"dlq_topic", cfg.NotificationsDLQTopic,
	)
	return notifier, producer
}

func initServices(cfg *config.Config, notifier notify.Notifier) service.BookingService {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	lockRepo := repository.NewSlotLockRepository(cfg)
	bookingService := service.NewBookingService(
		bookingRepo,
		lockRepo,
		bookingValidator,
		notifier,
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}
