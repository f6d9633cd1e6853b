package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"seungpyo.lee/BlogBoard/internal/domain"
	"seungpyo.lee/BlogBoard/internal/testutil"
	"seungpyo.lee/BlogBoard/internal/util"
)

func TestTokenRepositoryStoresHashOnly(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "alice")
	repo := NewTokenRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, "raw-token", user.ID, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	var stored domain.RefreshToken
	if err := db.First(&stored).Error; err != nil {
		t.Fatalf("load token: %v", err)
	}
	if stored.TokenHash == "raw-token" || stored.TokenHash != util.HashToken("raw-token") {
		t.Fatalf("stored hash = %q", stored.TokenHash)
	}

	got, err := repo.GetByToken(ctx, "raw-token")
	if err != nil {
		t.Fatalf("GetByToken() error = %v", err)
	}
	if got.UserID != user.ID {
		t.Fatalf("UserID = %d, want %d", got.UserID, user.ID)
	}
	if _, err := repo.GetByToken(ctx, "other"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByToken(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestTokenRepositoryDelete(t *testing.T) {
	db := testutil.NewTestDB(t)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	repo := NewTokenRepository(db)
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	for _, tok := range []string{"a1", "a2"} {
		if err := repo.Create(ctx, tok, alice.ID, exp); err != nil {
			t.Fatalf("Create(%s) error = %v", tok, err)
		}
	}
	if err := repo.Create(ctx, "b1", bob.ID, exp); err != nil {
		t.Fatalf("Create(b1) error = %v", err)
	}

	if err := repo.Delete(ctx, "a1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(ctx, "a1"); err != nil {
		t.Fatalf("second Delete() error = %v", err)
	}
	if _, err := repo.GetByToken(ctx, "a1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("deleted token still present: %v", err)
	}

	if err := repo.DeleteByUserID(ctx, alice.ID); err != nil {
		t.Fatalf("DeleteByUserID() error = %v", err)
	}
	if _, err := repo.GetByToken(ctx, "a2"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("a2 survived DeleteByUserID: %v", err)
	}
	if _, err := repo.GetByToken(ctx, "b1"); err != nil {
		t.Fatalf("b1 removed by DeleteByUserID(alice): %v", err)
	}
}

func TestTokenRepositoryDeleteExpired(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "alice")
	repo := NewTokenRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	if err := repo.Create(ctx, "old", user.ID, now.Add(-time.Minute)); err != nil {
		t.Fatalf("Create(old) error = %v", err)
	}
	if err := repo.Create(ctx, "edge", user.ID, now); err != nil {
		t.Fatalf("Create(edge) error = %v", err)
	}
	if err := repo.Create(ctx, "fresh", user.ID, now.Add(time.Hour)); err != nil {
		t.Fatalf("Create(fresh) error = %v", err)
	}

	n, err := repo.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpired() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("DeleteExpired() = %d, want 2", n)
	}
	if _, err := repo.GetByToken(ctx, "fresh"); err != nil {
		t.Fatalf("fresh token purged: %v", err)
	}
}

func newRedisRepo(t *testing.T, clock *testutil.Clock) (domain.TokenRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisTokenRepository(client, clock.Now), mr
}

func TestRedisTokenRepositoryLifecycle(t *testing.T) {
	clock := testutil.NewClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	repo, mr := newRedisRepo(t, clock)
	ctx := context.Background()

	if err := repo.Create(ctx, "tok", 7, clock.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if mr.Exists("refresh:token:tok") {
		t.Fatal("raw token used as key")
	}
	if !mr.Exists("refresh:token:" + util.HashToken("tok")) {
		t.Fatal("hashed key missing")
	}
	if ttl := mr.TTL("refresh:token:" + util.HashToken("tok")); ttl != time.Hour {
		t.Fatalf("TTL = %v, want 1h", ttl)
	}

	got, err := repo.GetByToken(ctx, "tok")
	if err != nil {
		t.Fatalf("GetByToken() error = %v", err)
	}
	if got.UserID != 7 || !got.ExpiresAt.Equal(clock.Now().Add(time.Hour)) {
		t.Fatalf("record = %+v", got)
	}
	if err := repo.Create(ctx, "tok", 7, clock.Now().Add(time.Hour)); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate Create() error = %v, want ErrConflict", err)
	}

	if err := repo.Delete(ctx, "tok"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(ctx, "tok"); err != nil {
		t.Fatalf("second Delete() error = %v", err)
	}
	if _, err := repo.GetByToken(ctx, "tok"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByToken(deleted) error = %v", err)
	}
	if members, _ := mr.SMembers("refresh:user:7"); len(members) != 0 {
		t.Fatalf("user index not cleaned: %v", members)
	}
}

func TestRedisTokenRepositoryCreateIndexFailure(t *testing.T) {
	clock := testutil.NewClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	repo, mr := newRedisRepo(t, clock)
	ctx := context.Background()

	// A string under the index key makes SADD fail with WRONGTYPE.
	if err := mr.Set("refresh:user:7", "not-a-set"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := repo.Create(ctx, "tok", 7, clock.Now().Add(time.Hour)); err == nil {
		t.Fatal("expected error when the user index cannot be written")
	}
	if mr.Exists("refresh:token:" + util.HashToken("tok")) {
		t.Fatal("token kept without an index entry")
	}
}

func TestRedisTokenRepositoryRevokeAndPurge(t *testing.T) {
	clock := testutil.NewClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	repo, mr := newRedisRepo(t, clock)
	ctx := context.Background()

	for _, tok := range []string{"a", "b"} {
		if err := repo.Create(ctx, tok, 1, clock.Now().Add(time.Hour)); err != nil {
			t.Fatalf("Create(%s) error = %v", tok, err)
		}
	}
	if err := repo.Create(ctx, "short", 2, clock.Now().Add(time.Minute)); err != nil {
		t.Fatalf("Create(short) error = %v", err)
	}
	if err := repo.Create(ctx, "long", 2, clock.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Create(long) error = %v", err)
	}

	if err := repo.DeleteByUserID(ctx, 1); err != nil {
		t.Fatalf("DeleteByUserID() error = %v", err)
	}
	for _, tok := range []string{"a", "b"} {
		if _, err := repo.GetByToken(ctx, tok); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("token %s survived revocation: %v", tok, err)
		}
	}

	mr.FastForward(2 * time.Minute)
	if _, err := repo.GetByToken(ctx, "short"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expired token still readable: %v", err)
	}
	n, err := repo.DeleteExpired(ctx, clock.Now())
	if err != nil {
		t.Fatalf("DeleteExpired() error = %v", err)
	}
	if n != 1 {
		t.Fatalf("DeleteExpired() = %d, want 1", n)
	}
	members, err := mr.SMembers("refresh:user:2")
	if err != nil || len(members) != 1 || members[0] != util.HashToken("long") {
		t.Fatalf("user index = %v (err %v)", members, err)
	}
}
