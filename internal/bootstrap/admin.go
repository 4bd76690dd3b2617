package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"

	"socialnet/internal/config"
	"socialnet/internal/model"
	"socialnet/internal/repository"
)

// SeedAdmin ensures the configured administrator account exists. It is safe
// to run on every startup: when the account is already present nothing is
// written. Seeding is skipped entirely when ADMIN_EMAIL or ADMIN_PASSWORD is
// not set.
func SeedAdmin(ctx context.Context, cfg *config.Config, userRepo repository.UserRepository) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		log.Println("[Bootstrap] Admin seeding skipped: ADMIN_EMAIL or ADMIN_PASSWORD not set")
		return nil
	}

	_, err := userRepo.GetByEmail(ctx, cfg.AdminEmail)
	if err == nil {
		log.Printf("[Bootstrap] Admin account %s already exists", cfg.AdminEmail)
		return nil
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return fmt.Errorf("checking admin account: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	admin := &model.User{
		Email:             cfg.AdminEmail,
		Username:          cfg.AdminUsername,
		PasswordHashed:    string(hashed),
		IsAdmin:           true,
		ProfilePictureURL: cfg.AdminProfilePictureURL,
	}

	if err := userRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("creating admin account: %w", err)
	}

	log.Printf("[Bootstrap] Admin account %s created", cfg.AdminEmail)
	return nil
}
