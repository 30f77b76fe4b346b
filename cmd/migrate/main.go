package main

import (
	"context"
	"time"

	migrations "lessondesk/internal/migrations/mongo"
	"lessondesk/pkg/config"
)

func main() {
	cfg := config.Load("migrate")
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := migrations.NewMigrator(db, cfg.Log).Run(ctx); err != nil {
		cfg.Log.Fatal("migration failed", "error", err)
	}
	cfg.Log.Info("migration completed")
}
