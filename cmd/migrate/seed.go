package main

import (
	"context"
	"database/sql"
	"errors"
	"os"

	"github.com/erp/procurement/internal/domain/identity"
	"github.com/erp/procurement/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// adminPasswordEnv keeps the bootstrap password out of the process list
const adminPasswordEnv = "ERP_ADMIN_PASSWORD"

// seedAdmin creates the first administrator of a tenant. It is a no-op when
// the username is already taken.
func seedAdmin(ctx context.Context, db *sql.DB, log *zap.Logger, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: migrate seed-admin <tenant-id> <username>")
	}
	tenantID, err := uuid.Parse(args[0])
	if err != nil {
		return errors.New("tenant-id must be a UUID")
	}
	username := args[1]
	password := os.Getenv(adminPasswordEnv)
	if password == "" {
		return errors.New(adminPasswordEnv + " is not set")
	}

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return err
	}
	users := persistence.NewGormUserRepository(gdb)

	exists, err := users.ExistsByUsername(ctx, tenantID, username)
	if err != nil {
		return err
	}
	if exists {
		log.Info("Administrator already exists", zap.String("username", username))
		return nil
	}

	user, err := identity.NewUser(tenantID, username, password)
	if err != nil {
		return err
	}
	if err := user.SetGroups([]identity.Group{identity.GroupAdmin}); err != nil {
		return err
	}
	if err := users.Save(ctx, user); err != nil {
		return err
	}

	log.Info("Administrator created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("username", username),
		zap.String("user_id", user.ID.String()),
	)
	return nil
}
