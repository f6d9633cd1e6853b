package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"seungpyo.lee/BlogBoard/internal/domain"
	"seungpyo.lee/BlogBoard/internal/testutil"
)

func TestUserRepositoryCreateAndLookup(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &domain.User{Username: "alice", Email: "  Alice@Example.COM ", Password: "hash"}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("email = %q, want lower-cased", user.Email)
	}

	got, err := repo.GetByEmail(ctx, "ALICE@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("GetByEmail() id = %d, want %d", got.ID, user.ID)
	}
	if _, err := repo.GetByUsername(ctx, "alice"); err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if _, err := repo.GetByID(ctx, 42); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByID(missing) error = %v, want ErrNotFound", err)
	}

	dupEmail := &domain.User{Username: "alice2", Email: "alice@example.com", Password: "hash"}
	if err := repo.Create(ctx, dupEmail); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("Create(duplicate email) error = %v, want ErrConflict", err)
	}
	dupName := &domain.User{Username: "alice", Email: "other@example.com", Password: "hash"}
	if err := repo.Create(ctx, dupName); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("Create(duplicate username) error = %v, want ErrConflict", err)
	}
}

func TestUserRepositoryUpdateConflict(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	repo := NewUserRepository(db)

	bob.Username = "alice"
	if err := repo.Update(context.Background(), bob); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("Update() error = %v, want ErrConflict", err)
	}
}

func TestUserRepositoryDeleteRemovesOwnedRows(t *testing.T) {
	db := testutil.NewTestDB(t)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	posts := NewPostRepository(db)
	comments := NewCommentRepository(db)
	tokens := NewTokenRepository(db)
	resets := NewResetTokenRepository(db)
	images := NewImgRepository(db)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alicePost := testutil.CreatePost(t, db, alice.ID, "alice post")
	bobPost := testutil.CreatePost(t, db, bob.ID, "bob post")

	mustNoErr(t, comments.Create(ctx, &domain.Comment{Content: "bob on alice", UserID: bob.ID, PostID: alicePost.ID}))
	mustNoErr(t, comments.Create(ctx, &domain.Comment{Content: "alice on bob", UserID: alice.ID, PostID: bobPost.ID}))
	_, err := posts.ToggleReaction(ctx, alicePost.ID, bob.ID, domain.ReactionLike)
	mustNoErr(t, err)
	_, err = posts.ToggleReaction(ctx, bobPost.ID, alice.ID, domain.ReactionDislike)
	mustNoErr(t, err)
	mustNoErr(t, tokens.Create(ctx, "alice-refresh", alice.ID, time.Now().Add(time.Hour)))
	mustNoErr(t, resets.Create(ctx, "alice-reset", alice.ID, time.Now().Add(time.Hour)))
	mustNoErr(t, images.Create(ctx, &domain.Image{URL: "/uploads/a.png", Hash: "abc", UserID: &alice.ID}))

	if err := repo.Delete(ctx, alice.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := repo.GetByID(ctx, alice.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("user still present: %v", err)
	}
	if _, err := posts.GetByID(ctx, alicePost.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("alice's post still present: %v", err)
	}
	remaining, err := posts.GetByID(ctx, bobPost.ID)
	if err != nil {
		t.Fatalf("bob's post removed: %v", err)
	}
	if remaining.CommentsCount != 0 || len(remaining.Dislikes) != 0 {
		t.Fatalf("alice's activity left on bob's post: %+v", remaining)
	}
	if _, err := tokens.GetByToken(ctx, "alice-refresh"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("refresh token survived: %v", err)
	}
	if _, err := resets.GetByToken(ctx, "alice-reset"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("reset token survived: %v", err)
	}
	img, err := images.GetByHash(ctx, "abc")
	if err != nil {
		t.Fatalf("image removed: %v", err)
	}
	if img.UserID != nil {
		t.Fatalf("image owner = %d, want nil", *img.UserID)
	}

	if err := repo.Delete(ctx, alice.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second Delete() error = %v", err)
	}
}

func mustNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
