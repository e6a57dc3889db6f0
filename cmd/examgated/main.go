package main

import (
	"log"

	"examgate/internal/config"
	"examgate/internal/infra/db"
	httpinfra "examgate/internal/infra/http"
)

func main() {
	cfg := config.FromEnv()

	store, err := db.NewStore(cfg)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}
	if store.DB != nil {
		if err := store.AutoMigrate(); err != nil {
			log.Fatalf("failed to migrate schema: %v", err)
		}
	}

	srv, err := httpinfra.NewServer(cfg, store)
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}
	if err := srv.Run(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
