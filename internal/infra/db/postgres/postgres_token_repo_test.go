//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"

	"telegram-quest-bot/internal/domain"
	"telegram-quest-bot/internal/domain/model"
	"telegram-quest-bot/internal/domain/ports/repository"
)

func mustToken(t *testing.T, name string) *model.Token {
	t.Helper()
	tok, err := model.NewToken("", name)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	return tok
}

func TestTokenRepo_CreateAndFind(t *testing.T) {
	cleanup(t)
	repo := NewTokenRepo(testPool)
	ctx := context.Background()

	tok := mustToken(t, "station-entrance")
	if err := repo.Create(ctx, repository.NoTX, tok); err != nil {
		t.Fatalf("Create: %v", err)
	}

	byID, err := repo.FindByID(ctx, repository.NoTX, tok.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if byID.Name != "station-entrance" || !byID.Valid {
		t.Fatalf("unexpected token: %+v", byID)
	}

	byName, err := repo.FindByName(ctx, repository.NoTX, "station-entrance")
	if err != nil {
		t.Fatalf("FindByName: %v", err)
	}
	if byName.ID != tok.ID {
		t.Fatalf("expected %s, got %s", tok.ID, byName.ID)
	}
}

func TestTokenRepo_DuplicateName(t *testing.T) {
	cleanup(t)
	repo := NewTokenRepo(testPool)
	ctx := context.Background()

	if err := repo.Create(ctx, repository.NoTX, mustToken(t, "station-entrance")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := repo.Create(ctx, repository.NoTX, mustToken(t, "station-entrance"))
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestTokenRepo_SaveTogglesValidity(t *testing.T) {
	cleanup(t)
	repo := NewTokenRepo(testPool)
	ctx := context.Background()

	tok := mustToken(t, "station-library")
	if err := repo.Create(ctx, repository.NoTX, tok); err != nil {
		t.Fatalf("Create: %v", err)
	}

	tok.Valid = false
	if err := repo.Save(ctx, repository.NoTX, tok); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.FindByID(ctx, repository.NoTX, tok.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Valid {
		t.Fatal("validity toggle not persisted")
	}
}

func TestTokenRepo_SaveMissing(t *testing.T) {
	cleanup(t)
	repo := NewTokenRepo(testPool)

	missing := &model.Token{ID: "0b5b62bb-17f2-4f6a-a076-6e934e5425ad", Name: "ghost", Valid: true}
	if err := repo.Save(context.Background(), repository.NoTX, missing); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTokenRepo_DeleteIdempotent(t *testing.T) {
	cleanup(t)
	repo := NewTokenRepo(testPool)
	ctx := context.Background()

	tok := mustToken(t, "station-cafeteria")
	if err := repo.Create(ctx, repository.NoTX, tok); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Delete(ctx, repository.NoTX, tok.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, repository.NoTX, tok.ID); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if _, err := repo.FindByID(ctx, repository.NoTX, tok.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTokenRepo_NotFound(t *testing.T) {
	cleanup(t)
	repo := NewTokenRepo(testPool)
	ctx := context.Background()

	if _, err := repo.FindByID(ctx, repository.NoTX, "garbage"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for malformed id, got %v", err)
	}
	if _, err := repo.FindByName(ctx, repository.NoTX, "unknown"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTokenRepo_ListAll(t *testing.T) {
	cleanup(t)
	repo := NewTokenRepo(testPool)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		if err := repo.Create(ctx, repository.NoTX, mustToken(t, name)); err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}
	all, err := repo.ListAll(ctx, repository.NoTX)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 tokens, got %d", len(all))
	}
}
