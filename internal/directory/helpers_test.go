package directory

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/peopledesk/peopledesk-backend/internal/blobs"
	"github.com/peopledesk/peopledesk-backend/pkg/config"
	"github.com/peopledesk/peopledesk-backend/pkg/db/models"
	"github.com/peopledesk/peopledesk-backend/pkg/enums"
	"github.com/peopledesk/peopledesk-backend/pkg/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}, &models.Blob{}, &models.GalleryEntry{}); err != nil {
		t.Fatalf("migrate test schema: %v", err)
	}
	return conn
}

func newTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func fastPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func mustCreateTestUser(t *testing.T, tx *gorm.DB, mutate func(*models.User)) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Name:         "Repo Tester",
		Email:        fmt.Sprintf("pd_test_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		Role:         enums.RoleUser,
		AccountType:  enums.AccountTypePersonal,
	}
	if mutate != nil {
		mutate(user)
	}
	if err := tx.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

type recordingPurger struct {
	calls  []uuid.UUID
	result blobs.PurgeResult
}

func (p *recordingPurger) PurgeUserBlobs(_ context.Context, user *models.User) blobs.PurgeResult {
	p.calls = append(p.calls, user.ID)
	return p.result
}

func newTestService(t *testing.T, tx *gorm.DB, purger blobPurger) Service {
	t.Helper()
	if purger == nil {
		purger = &recordingPurger{}
	}
	svc, err := NewService(Params{
		Repo:     NewRepository(tx),
		Purger:   purger,
		Logger:   newTestLogger(),
		Password: fastPasswordConfig(),
		Avatar:   config.AvatarConfig{PlaceholderBaseURL: "https://placehold.co/150x150/E2D9FF/6842FF"},
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}
