package services

import (
	"context"
	"net/url"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/account-service/internal/cache"
	"github.com/ahmetcoskunkizilkaya/account-service/internal/config"
	"github.com/ahmetcoskunkizilkaya/account-service/internal/database"
	"github.com/ahmetcoskunkizilkaya/account-service/internal/dto"
	"github.com/ahmetcoskunkizilkaya/account-service/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "Str0ngP@ss"

type sentMail struct {
	to      string
	payload string
}

type fakeMailer struct {
	mu     sync.Mutex
	links  []sentMail
	codes  []sentMail
	resets []sentMail
	err    error
}

func (m *fakeMailer) SendActivationLink(_ context.Context, to, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.links = append(m.links, sentMail{to: to, payload: link})
	return nil
}

func (m *fakeMailer) SendActivationCode(_ context.Context, to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.codes = append(m.codes, sentMail{to: to, payload: code})
	return nil
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, to, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.resets = append(m.resets, sentMail{to: to, payload: link})
	return nil
}

func (m *fakeMailer) last(t *testing.T, list []sentMail) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(list) == 0 {
		t.Fatalf("expected a mail to have been sent")
	}
	return list[len(list)-1]
}

type testEnv struct {
	cfg     *config.Config
	db      *gorm.DB
	redis   *miniredis.Miniredis
	cache   *cache.RedisCache
	mailer  *fakeMailer
	tokens  *TokenService
	auth    *AuthService
	profile *ProfileService
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: time.Hour,
		ResetTokenTTL:    time.Hour,
		OTPTTL:           10 * time.Minute,
		BcryptCost:       bcrypt.MinCost,
		AppURL:           "http://localhost:8080",
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(database.DomainModels()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(s.Close)

	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := testConfig()
	db := newTestDB(t)
	c := cache.NewRedisCache(rdb)
	m := &fakeMailer{}
	tokens := NewTokenService(cfg)

	return &testEnv{
		cfg:     cfg,
		db:      db,
		redis:   s,
		cache:   c,
		mailer:  m,
		tokens:  tokens,
		auth:    NewAuthService(db, cfg, c, m, BcryptHasher{Cost: cfg.BcryptCost}, tokens),
		profile: NewProfileService(db),
	}
}

func (e *testEnv) register(t *testing.T, username, email string, otp bool) {
	t.Helper()
	_, err := e.auth.Register(context.Background(), &dto.RegisterRequest{
		Username: username,
		Role:     "Employee",
		Email:    email,
		Password: testPassword,
	}, otp)
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
}

// activeUser registers and activates username and returns the stored row.
func (e *testEnv) activeUser(t *testing.T, username, email string) *models.User {
	t.Helper()
	e.register(t, username, email, false)
	if err := e.db.Model(&models.User{}).Where("username = ?", username).Update("account_activation", true).Error; err != nil {
		t.Fatalf("activate %s: %v", username, err)
	}
	return e.reload(t, username)
}

func (e *testEnv) reload(t *testing.T, username string) *models.User {
	t.Helper()
	var user models.User
	if err := e.db.Where("username = ?", username).First(&user).Error; err != nil {
		t.Fatalf("load %s: %v", username, err)
	}
	return &user
}

// lastSegments returns the final n path segments of link.
func lastSegments(t *testing.T, link string, n int) []string {
	t.Helper()
	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse link %q: %v", link, err)
	}
	segs := make([]string, n)
	p := u.Path
	for i := n - 1; i >= 0; i-- {
		segs[i] = path.Base(p)
		p = path.Dir(p)
	}
	return segs
}

func strPtr(s string) *string { return &s }
