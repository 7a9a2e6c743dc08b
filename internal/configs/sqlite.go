package config

import (
	"log"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	model "household-tasks.com/household-tasks/internal/models"
)

func New(dsn string) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	if err := db.AutoMigrate(&model.User{}, &model.Task{}, &model.Notification{}); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	return db
}
