// Package testutil holds helpers shared by the repository, service and
// handler tests.
package testutil

import (
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"
	"seungpyo.lee/BlogBoard/internal/config"
	"seungpyo.lee/BlogBoard/internal/database"
	"seungpyo.lee/BlogBoard/internal/domain"
	"seungpyo.lee/BlogBoard/internal/util"
	"seungpyo.lee/BlogBoard/pkg/logger"
)

// Logger discards everything.
func Logger() *logger.Logger {
	return logger.NewWithWriter("error", io.Discard)
}

// NewTestDB opens a migrated in-memory sqlite database private to t.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	db, err := database.Open(database.Options{
		Driver:   config.DBDriverSQLite,
		DSN:      "file:" + name + "?mode=memory&cache=shared",
		LogLevel: "error",
	}, Logger())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts a user with the password "password123".
func CreateUser(t *testing.T, db *gorm.DB, username string) *domain.User {
	t.Helper()
	hashed, err := util.HashPassword("password123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &domain.User{
		Username: username,
		Email:    username + "@example.com",
		Password: hashed,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

// CreatePost inserts a post owned by userID.
func CreatePost(t *testing.T, db *gorm.DB, userID uint, title string) *domain.Post {
	t.Helper()
	post := &domain.Post{Title: title, Content: title + " content", UserID: userID}
	if err := db.Omit("User").Create(post).Error; err != nil {
		t.Fatalf("create post %s: %v", title, err)
	}
	return post
}

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
