// Package dbtest opens throwaway sqlite databases carrying the application schema.
package dbtest

import (
	"fmt"
	"io"
	"log"
	"testing"

	"github.com/google/uuid"
	"github.com/patelpulse/pulse-backend/pkg/db"
	"github.com/patelpulse/pulse-backend/pkg/db/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Models lists every persisted model in migration order.
var Models = []any{
	&models.AdminUser{},
	&models.Product{},
	&models.Review{},
	&models.Service{},
	&models.Project{},
	&models.TeamMember{},
	&models.BlogPost{},
	&models.Sale{},
	&models.PaymentWebhookEvent{},
	&models.OutboxEvent{},
}

// Open returns a client bound to a fresh in-memory database. A single
// connection is used, so code under WithTx must only touch the tx handle.
func Open(t testing.TB) *db.Client {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.New(log.New(io.Discard, "", 0), gormlogger.Config{LogLevel: gormlogger.Silent}),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := conn.AutoMigrate(Models...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db.FromConn(conn)
}
