package db

import (
	"fmt"
	"log"

	"examgate/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Store struct {
	DB *gorm.DB
}

func NewStore(cfg config.Config) (*Store, error) {
	if cfg.PostgresDSN == "" {
		log.Printf("POSTGRES_DSN not set; starting in no-db mode.")
		return &Store{DB: nil}, nil
	}

	gdb, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	return &Store{DB: gdb}, nil
}

// AutoMigrate creates the schema for all models owned by this service.
func (s *Store) AutoMigrate() error {
	if s.DB == nil {
		return errDBUnavailable
	}
	return s.DB.AutoMigrate(
		&ExamModel{},
		&AttemptModel{},
		&VerificationSessionModel{},
		&ArtifactModel{},
	)
}
