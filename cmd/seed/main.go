package main

import (
	"context"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/becalab/scholarship-api/internal/models"
	"github.com/becalab/scholarship-api/internal/repository"
	"github.com/becalab/scholarship-api/pkg/config"
	"github.com/becalab/scholarship-api/pkg/database"
)

// Seeds the bootstrap admin account. Safe to run repeatedly: an existing
// account gets its password refreshed, nothing else is touched.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.Seed.AdminEmail == "" || cfg.Seed.AdminPassword == "" {
		log.Fatal("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD must be set")
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Seed.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo := repository.NewAdminRepository(db)
	admin := &models.AdminUser{
		Email:        cfg.Seed.AdminEmail,
		PasswordHash: string(hash),
		Role:         models.AdminRole,
	}
	if err := repo.Upsert(ctx, admin); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	log.Printf("admin account ready: %s", admin.Email)
}
