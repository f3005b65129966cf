package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/booktime/booktime/config"
	"github.com/booktime/booktime/internal/app/repository"
	"github.com/booktime/booktime/internal/app/service"
	"github.com/booktime/booktime/internal/db"
	"github.com/booktime/booktime/pkg/logger"
	"github.com/booktime/booktime/pkg/util"
)

// createsuperuser bootstraps an admin account. The password may also be
// given through SUPERUSER_PASSWORD to keep it out of the shell history.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: createsuperuser <email> [password]")
		os.Exit(2)
	}
	email := os.Args[1]
	password := os.Getenv("SUPERUSER_PASSWORD")
	if len(os.Args) > 2 {
		password = os.Args[2]
	}

	if err := util.ValidatePassword(password, email); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}
	logger.Initialize(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: os.Stderr})

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	authService := service.NewAuthService(
		repository.NewUserRepository(db.GetDB()),
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	user, err := authService.CreateUser(service.NewUser{
		Email:       email,
		Password:    password,
		IsStaff:     true,
		IsSuperuser: true,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyExists) {
			fmt.Fprintln(os.Stderr, "Error: a user with that email already exists")
			os.Exit(1)
		}
		logger.Fatal("Failed to create superuser", err)
	}
	fmt.Printf("Superuser created successfully: %s\n", user.Email)
}
