package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/trailmark/trailmark-backend/internal/config"
	"github.com/trailmark/trailmark-backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.MagicLink{},
		&models.RefreshToken{},
		&models.Trackable{},
		&models.Device{},
		&models.DeviceToken{},
		&models.Position{},
	); err != nil {
		t.Fatalf("migrate db: %v", err)
	}
	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		JWTSecret:       "test-secret-test-secret-test-secret",
		JWTIssuer:       "trailmark-test",
		JWTAccessExpiry: 15 * time.Minute,
		RefreshTTLDays:  30,
		MagicLinkTTL:    15 * time.Minute,
		MagicLinkURL:    "http://localhost:3000/login/email",
	}
}

// chanMailer hands each outgoing body to the test, so the raw magic
// link secret can be recovered the same way a user would.
type chanMailer struct {
	bodies chan string
}

func newChanMailer() *chanMailer {
	return &chanMailer{bodies: make(chan string, 4)}
}

func (m *chanMailer) Send(to, subject, body string) error {
	m.bodies <- body
	return nil
}

func (m *chanMailer) waitForToken(t *testing.T) string {
	t.Helper()
	select {
	case body := <-m.bodies:
		idx := strings.Index(body, "token=")
		if idx < 0 {
			t.Fatalf("mail body carries no token: %q", body)
		}
		token := body[idx+len("token="):]
		if end := strings.IndexAny(token, " \n"); end >= 0 {
			token = token[:end]
		}
		return token
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for magic link mail")
		return ""
	}
}
