package main

import (
	"context"
	"time"

	"lessondesk/internal/availability"
	"lessondesk/internal/bookings/handler"
	bookingrepo "lessondesk/internal/bookings/repository"
	"lessondesk/internal/bookings/service"
	catalogrepo "lessondesk/internal/catalog/repository"
	"lessondesk/internal/refresh"
	"lessondesk/pkg/app"
	"lessondesk/pkg/config"
	"lessondesk/pkg/kafka"
	"lessondesk/pkg/model"

	mongodb "lessondesk/pkg/db/mongo"

	kafka_config "lessondesk/pkg/kafka/config"
)

func main() {
	cfg := config.Load("bookings")
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	log := cfg.Log

	availRepo := availability.NewMongoAvailabilityRepository(db, log)
	index := availability.NewIndex(availRepo, log)

	from := time.Now().Format(model.DateLayout)
	to, err := model.AddWeeks(from, cfg.VisibleWindowWeeks)
	if err != nil {
		log.Fatal("failed to compute availability window", "error", err)
	}
	loadCtx, loadCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := index.Load(loadCtx, from, to); err != nil {
		loadCancel()
		log.Fatal("failed to load availability index", "error", err)
	}
	loadCancel()

	watcher := refresh.NewWatcher(index, cfg.RefreshInterval, cfg.SelectionTTL, log)
	watchCtx, stopWatcher := context.WithCancel(context.Background())
	defer stopWatcher()
	go func() {
		_ = watcher.Run(watchCtx)
	}()
	go func() {
		for batch := range watcher.Invalidations() {
			for _, inv := range batch {
				log.Warn("selected slot no longer available",
					"slot", inv.Slot.Key(), "reason", inv.Reason)
			}
		}
	}()

	kafkaCfg := kafka_config.Load()
	kafkaCfg.LogConfiguration(log.Info)

	confirmedProducer, err := kafka.NewProducer(kafkaCfg, kafka.TopicBookingConfirmed, kafka.TopicBookingsDLQ)
	if err != nil {
		log.Fatal("failed to create confirmed-bookings producer", "error", err)
	}
	defer confirmedProducer.Close()

	cancelledProducer, err := kafka.NewProducer(kafkaCfg, kafka.TopicBookingCancelled, kafka.TopicBookingsDLQ)
	if err != nil {
		log.Fatal("failed to create cancelled-bookings producer", "error", err)
	}
	defer cancelledProducer.Close()

	svc := service.NewBookingService(
		bookingrepo.NewMongoBookingRepository(db, log),
		bookingrepo.NewMongoSlotLockRepository(db, log),
		bookingrepo.NewMongoStudentRepository(db, log),
		bookingrepo.NewMongoHolidayRepository(db, log),
		availRepo,
		catalogrepo.NewMongoPriceTierRepository(db, log),
		mongodb.NewTransactionManager(cfg.Client.Mongo),
		index,
		watcher,
		confirmedProducer,
		cancelledProducer,
		service.Config{
			ExpansionTriesMultiplier: cfg.ExpansionTriesMultiplier,
			MaxRecurrenceWeeks:       cfg.MaxRecurrenceWeeks,
			VisibleWindowWeeks:       cfg.VisibleWindowWeeks,
		},
		log,
	)

	application := app.NewApplication(cfg, handler.NewBookingHandler(svc, log))
	application.Run()
}
