//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"

	"telegram-quest-bot/internal/domain"
	"telegram-quest-bot/internal/usecase"
)

func TestTokenCreate(t *testing.T) {
	uc := usecase.NewTokenUseCase(NewMockTokenRepo(), testLogger())
	ctx := context.Background()

	token, err := uc.Create(ctx, "station-entrance")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if token.ID == "" {
		t.Fatal("expected generated token id")
	}
	if !token.Valid {
		t.Fatal("new tokens must be valid")
	}

	if _, err := uc.Create(ctx, "station-entrance"); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists for duplicate name, got %v", err)
	}
}

func TestTokenCreate_EmptyName(t *testing.T) {
	uc := usecase.NewTokenUseCase(NewMockTokenRepo(), testLogger())

	if _, err := uc.Create(context.Background(), ""); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestTokenSetValidity(t *testing.T) {
	uc := usecase.NewTokenUseCase(NewMockTokenRepo(), testLogger())
	ctx := context.Background()

	token, err := uc.Create(ctx, "station-library")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	off, err := uc.SetValidity(ctx, token.ID, false)
	if err != nil {
		t.Fatalf("SetValidity(false): %v", err)
	}
	if off.Valid {
		t.Fatal("expected token to be invalid after toggle")
	}

	got, err := uc.Get(ctx, token.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Valid {
		t.Fatal("toggle not persisted")
	}

	on, err := uc.SetValidity(ctx, token.ID, true)
	if err != nil {
		t.Fatalf("SetValidity(true): %v", err)
	}
	if !on.Valid {
		t.Fatal("expected token valid again")
	}
}

func TestTokenSetValidity_NotFound(t *testing.T) {
	uc := usecase.NewTokenUseCase(NewMockTokenRepo(), testLogger())

	if _, err := uc.SetValidity(context.Background(), "missing", false); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTokenDelete_Idempotent(t *testing.T) {
	uc := usecase.NewTokenUseCase(NewMockTokenRepo(), testLogger())
	ctx := context.Background()

	token, err := uc.Create(ctx, "station-cafeteria")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := uc.Delete(ctx, token.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	// Deleting an already-deleted token succeeds silently.
	if err := uc.Delete(ctx, token.ID); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if _, err := uc.Get(ctx, token.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestTokenGetByName(t *testing.T) {
	uc := usecase.NewTokenUseCase(NewMockTokenRepo(), testLogger())
	ctx := context.Background()

	created, err := uc.Create(ctx, "station-gym")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := uc.GetByName(ctx, "station-gym")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("expected %s, got %s", created.ID, got.ID)
	}

	if _, err := uc.GetByName(ctx, "unknown"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
