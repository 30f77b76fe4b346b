package main

import (
	"lessondesk/internal/catalog/handler"
	"lessondesk/internal/catalog/repository"
	"lessondesk/internal/catalog/service"
	"lessondesk/pkg/app"
	"lessondesk/pkg/config"
)

func main() {
	cfg := config.Load("catalog")
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	log := cfg.Log

	svc := service.NewCatalogService(
		repository.NewMongoTimeSlotRepository(db, log),
		repository.NewMongoTeacherRepository(db, log),
		repository.NewMongoHolidayRepository(db, log),
		repository.NewMongoPriceTierRepository(db, log),
		log,
	)

	application := app.NewApplication(cfg, handler.NewCatalogHandler(svc, log))
	application.Run()
}
