package logging

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/account-service/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newLogDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(&models.SystemLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestPGHandlerPersistsErrors(t *testing.T) {
	db := newLogDB(t)
	h := NewPGHandler(db, time.Hour)
	log := slog.New(h).With("request_id", "req-1")

	log.Info("not persisted")
	log.Error("redeem failed", "user_id", uint(7), "action", "password_reset_redeem", "error", "boom", "path", "/api/auth/x")
	h.Stop()

	var logs []models.SystemLog
	if err := db.Find(&logs).Error; err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 persisted record, got %d", len(logs))
	}
	got := logs[0]
	if got.RequestID != "req-1" || got.Action != "password_reset_redeem" || got.Error != "boom" {
		t.Fatalf("unexpected record %+v", got)
	}
	if got.UserID == nil || *got.UserID != 7 {
		t.Fatalf("expected user id 7, got %v", got.UserID)
	}
	if string(got.Extra) != `{"path":"/api/auth/x"}` {
		t.Fatalf("unexpected extra %s", got.Extra)
	}
}

func TestMultiHandlerFansOut(t *testing.T) {
	db := newLogDB(t)
	pg := NewPGHandler(db, time.Hour)
	m := NewMultiHandler(stdoutHandler(), pg)

	if !m.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("expected info to be enabled through the stdout handler")
	}
	slog.New(m).Error("fan out", "action", "test")
	pg.Stop()

	var count int64
	db.Model(&models.SystemLog{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 persisted record, got %d", count)
	}
}

type failingHandler struct{ err error }

func (h failingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h failingHandler) Handle(context.Context, slog.Record) error { return h.err }
func (h failingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h failingHandler) WithGroup(string) slog.Handler { return h }

func TestMultiHandlerKeepsGoingAfterFailure(t *testing.T) {
	db := newLogDB(t)
	pg := NewPGHandler(db, time.Hour)
	boom := errors.New("boom")
	m := NewMultiHandler(failingHandler{err: boom}, pg)

	r := slog.NewRecord(time.Now(), slog.LevelError, "still stored", 0)
	if err := m.Handle(context.Background(), r); !errors.Is(err, boom) {
		t.Fatalf("expected handler error to be reported, got %v", err)
	}
	pg.Stop()

	var count int64
	db.Model(&models.SystemLog{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 persisted record, got %d", count)
	}
}

func TestPurgeSystemLogs(t *testing.T) {
	db := newLogDB(t)
	now := time.Now()
	rows := []models.SystemLog{
		{ID: uuid.New(), Timestamp: now.Add(-40 * 24 * time.Hour), Level: "ERROR", Message: "old"},
		{ID: uuid.New(), Timestamp: now.Add(-time.Hour), Level: "ERROR", Message: "recent"},
	}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	deleted, err := PurgeSystemLogs(db, now.Add(-logRetention))
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted row, got %d", deleted)
	}
}
