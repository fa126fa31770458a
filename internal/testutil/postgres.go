// Package testutil provides shared helpers for database-backed tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/communityforum/backend/internal/models"
)

// OpenTestDB starts a throwaway Postgres container, opens a GORM handle
// against it and migrates the full schema. The container is torn down when
// the test finishes. Tests are skipped when no container runtime is
// available.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	// testcontainers panics (rather than returning an error) when no Docker
	// host can be resolved at all; recover so such environments hit the skip
	// path below instead of failing.
	container, err := func() (c *tcpostgres.PostgresContainer, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("container runtime unavailable: %v", r)
			}
		}()
		return tcpostgres.Run(ctx, "postgres:16-alpine",
			tcpostgres.WithDatabase("forum_test"),
			tcpostgres.WithUsername("forum"),
			tcpostgres.WithPassword("forum"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
	}()
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(container)
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open gorm: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Question{},
		&models.Answer{},
		&models.Vote{},
		&models.Article{},
		&models.Notification{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}
