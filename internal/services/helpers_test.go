package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"financial-mirror/internal/database"
	"financial-mirror/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func strPtr(s string) *string { return &s }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "services.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() { database.CloseDatabase(db, nil) })
	return db
}

// pagedLister serves accounts in fixed-size pages and records each request.
type pagedLister struct {
	mu       sync.Mutex
	accounts []models.Account
	err      error
	calls    []int
}

func (l *pagedLister) ListAccounts(_ context.Context, page, perPage int) ([]models.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls = append(l.calls, page)
	if l.err != nil {
		return nil, l.err
	}

	start := (page - 1) * perPage
	if start >= len(l.accounts) {
		return nil, nil
	}
	end := start + perPage
	if end > len(l.accounts) {
		end = len(l.accounts)
	}
	return l.accounts[start:end], nil
}

type staticResolver struct {
	accounts map[string]string
	err      error
}

func (r staticResolver) ResolveAccountIDByEmail(_ context.Context, email string) (string, bool, error) {
	if r.err != nil {
		return "", false, r.err
	}
	id, ok := r.accounts[models.NormalizeEmail(email)]
	return id, ok, nil
}

type failingWriter struct{}

func (failingWriter) Upsert(context.Context, string, models.SubscriptionFields) (*models.Subscription, error) {
	return nil, errors.New("connection refused")
}

// brokenEventLog fails every write.
type brokenEventLog struct {
	outcomes int
}

func (b *brokenEventLog) Record(context.Context, *models.WebhookEvent) error {
	return errors.New("audit table missing")
}

func (b *brokenEventLog) RecordOutcome(context.Context, uint, *string, models.EventOutcome) (int64, error) {
	b.outcomes++
	return 0, errors.New("audit table missing")
}

func (b *brokenEventLog) Get(context.Context, uint) (*models.WebhookEvent, error) {
	return nil, database.ErrEventNotFound
}

func (b *brokenEventLog) ListUnresolved(context.Context, string) ([]models.WebhookEvent, error) {
	return nil, nil
}

type recordingInviter struct {
	mu      sync.Mutex
	invited []string
}

func (r *recordingInviter) InviteBuyer(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invited = append(r.invited, email)
	return nil
}
