package database

import (
	"log"

	"github.com/wanderplan/trip-service/internal/catalog"
	"github.com/wanderplan/trip-service/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&repository.TripRecord{}, &catalog.CatalogActivity{}); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}

	if err := catalog.Seed(db); err != nil {
		log.Fatalf("failed to seed catalog: %v", err)
	}

	return db
}
