// Command admin_seed creates the first staff account. Staff cannot sign up
// through the API.
package main

import (
	"context"
	"errors"
	"os"

	"freelink/internal/config"
	"freelink/internal/logging"
	"freelink/internal/models"
	"freelink/internal/repositories"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	_ = config.LoadEnv()
	cfg := config.Load()

	log, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	adminUsername := config.GetEnv("ADMIN_USERNAME", "admin")
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	adminPhone := os.Getenv("ADMIN_PHONE")

	if adminEmail == "" || adminPassword == "" || adminPhone == "" {
		log.Fatal("ADMIN_EMAIL, ADMIN_PASSWORD, and ADMIN_PHONE must be set in environment")
	}

	db, err := repositories.InitDB(cfg, log)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer func() {
		if err := repositories.Close(db); err != nil {
			log.Warn("failed to close database connection", zap.Error(err))
		}
	}()

	ctx := context.Background()
	store := repositories.NewStore(db)

	if _, err := store.Users().GetByLogin(ctx, adminEmail); err == nil {
		log.Info("admin user already exists", zap.String("email", adminEmail))
		return
	} else if !errors.Is(err, repositories.ErrNotFound) {
		log.Fatal("failed to look up admin user", zap.Error(err))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("failed to hash password", zap.Error(err))
	}

	admin := &models.User{
		Username:     adminUsername,
		Email:        adminEmail,
		Phone:        adminPhone,
		Password:     string(hashedPassword),
		IsStaff:      true,
		IsVerified:   true,
		TokenVersion: 1,
	}

	err = store.WithinTx(ctx, func(tx repositories.Store) error {
		if err := tx.Users().Create(ctx, admin); err != nil {
			return err
		}
		return tx.Wallets().Create(ctx, &models.Wallet{UserID: admin.ID, Currency: cfg.Currency})
	})
	if err != nil {
		log.Fatal("failed to create admin user", zap.Error(err))
	}

	log.Info("admin account created", zap.Uint("user_id", admin.ID), zap.String("email", adminEmail))
}
