package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/patelpulse/pulse-backend/internal/auth"
	"github.com/patelpulse/pulse-backend/pkg/config"
	"github.com/patelpulse/pulse-backend/pkg/db"
	"github.com/patelpulse/pulse-backend/pkg/enums"
	"github.com/patelpulse/pulse-backend/pkg/logger"
	"github.com/patelpulse/pulse-backend/pkg/security"
)

const (
	tempPasswordLength   = 20
	tempPasswordAttempts = 10
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "create-admin"})

	_ = godotenv.Load()

	email := flag.String("email", "", "admin email (required)")
	name := flag.String("name", "", "display name (required)")
	role := flag.String("role", string(enums.AdminRoleEditor), "admin|editor")
	password := flag.String("password", "", "initial password; generated when empty")
	flag.Parse()

	if *email == "" || *name == "" {
		fmt.Fprintln(os.Stderr, "usage: create-admin -email <email> -name <name> [-role admin|editor] [-password <pw>]")
		os.Exit(2)
	}

	parsedRole, err := enums.ParseAdminRole(*role)
	requireResource(ctx, logg, "role", err)

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "create-admin",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	generated := false
	if *password == "" {
		*password, err = tempPassword()
		requireResource(ctx, logg, "password generator", err)
		generated = true
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	svc, err := auth.NewService(auth.ServiceParams{
		Repo:        auth.NewRepository(dbClient.DB()),
		JWTConfig:   cfg.JWT,
		PasswordCfg: cfg.Password,
	})
	requireResource(ctx, logg, "auth service", err)

	admin, err := svc.CreateAdmin(ctx, auth.CreateAdminInput{
		Email:    *email,
		Name:     *name,
		Password: *password,
		Role:     parsedRole,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "create admin failed: %v\n", err)
		os.Exit(1)
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"admin_id": admin.ID.String(),
		"role":     admin.Role,
	}), "admin created")
	fmt.Printf("created %s (%s) id=%s\n", admin.Email, admin.Role, admin.ID)
	if generated {
		fmt.Printf("temporary password: %s\n", *password)
	}
}

// tempPassword draws until the result satisfies the admin password policy.
func tempPassword() (string, error) {
	for i := 0; i < tempPasswordAttempts; i++ {
		pw, err := security.GenerateTempPassword(tempPasswordLength)
		if err != nil {
			return "", err
		}
		if security.ValidatePassword(pw) == nil {
			return pw, nil
		}
	}
	return "", errors.New("could not generate a password that satisfies the policy")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
