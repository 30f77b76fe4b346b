package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	bookingrepo "lessondesk/internal/bookings/repository"
	"lessondesk/internal/bookings/service"
	catalogrepo "lessondesk/internal/catalog/repository"
	"lessondesk/internal/payments"
	"lessondesk/pkg/config"
	"lessondesk/pkg/kafka"

	mongodb "lessondesk/pkg/db/mongo"

	kafka_config "lessondesk/pkg/kafka/config"
)

const consumerGroupID = "payments-processor"

func main() {
	cfg := config.Load("payments")
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	log := cfg.Log

	kafkaCfg := kafka_config.Load()
	kafkaCfg.LogConfiguration(log.Info)

	confirmedProducer, err := kafka.NewProducer(kafkaCfg, kafka.TopicBookingConfirmed, kafka.TopicBookingsDLQ)
	if err != nil {
		log.Fatal("failed to create confirmed-bookings producer", "error", err)
	}
	defer confirmedProducer.Close()

	// Payment-driven commits go through the same coordinator as the HTTP
	// path; only the index refresh and selection wiring are absent here.
	svc := service.NewBookingService(
		bookingrepo.NewMongoBookingRepository(db, log),
		bookingrepo.NewMongoSlotLockRepository(db, log),
		bookingrepo.NewMongoStudentRepository(db, log),
		bookingrepo.NewMongoHolidayRepository(db, log),
		nil,
		catalogrepo.NewMongoPriceTierRepository(db, log),
		mongodb.NewTransactionManager(cfg.Client.Mongo),
		nil,
		nil,
		confirmedProducer,
		nil,
		service.Config{
			ExpansionTriesMultiplier: cfg.ExpansionTriesMultiplier,
			MaxRecurrenceWeeks:       cfg.MaxRecurrenceWeeks,
			VisibleWindowWeeks:       cfg.VisibleWindowWeeks,
		},
		log,
	)

	processor := payments.NewProcessor(svc, log)

	consumer, err := kafka.NewConsumer(kafkaCfg, kafka.TopicPaymentsCompleted, consumerGroupID, kafka.TopicPaymentsDLQ, processor.Handle)
	if err != nil {
		log.Fatal("failed to create payments consumer", "error", err)
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("payments consumer starting", "topic", kafka.TopicPaymentsCompleted, "group_id", consumerGroupID)
	if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("payments consumer stopped unexpectedly", "error", err)
	}
	log.Info("payments consumer stopped")
}
