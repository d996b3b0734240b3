package db

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"snipnet/internal/models"
)

// Init opens the Postgres connection and runs migrations.
// The handle is returned to the caller and injected into handlers and
// services; there is no package-level connection state.
func Init(dsn string) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	log.Println("Database connection established")

	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	log.Println("Database migration completed")

	return conn, nil
}

// Migrate creates/updates the schema. Split out so tests can run it
// against an in-memory database.
func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&models.User{},
		&models.Snippet{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Dislike{},
		&models.CommentLike{},
		&models.CommentDislike{},
		&models.Save{},
		&models.Interest{},
		&models.CreditLog{},
		&models.Notification{},
	)
}
