package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mpay/mpay/internal/domain"
	"github.com/mpay/mpay/internal/usecase"
	"github.com/mpay/mpay/internal/usecase/mocks"
)

func TestUserUseCase_CreateUser(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		userName  string
		wantErr   error
		wantClean string
	}{
		{name: "simple name", userName: "alice", wantClean: "alice"},
		{name: "surrounding whitespace is trimmed", userName: "  bob\n", wantClean: "bob"},
		{name: "uppercase rejected", userName: "Alice", wantErr: domain.ErrValidation},
		{name: "spaces rejected", userName: "a b", wantErr: domain.ErrValidation},
		{name: "empty rejected", userName: "", wantErr: domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockUserRepository()
			uc := usecase.NewUserUseCase(mocks.NewMockTransactionManager(), repo, zerolog.Nop())

			user, err := uc.CreateUser(ctx, tt.userName)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if user.Name != tt.wantClean {
				t.Errorf("name = %q, want %q", user.Name, tt.wantClean)
			}
			if !user.Balance.IsZero() {
				t.Errorf("a new user starts at zero, got %s", user.Balance)
			}
		})
	}

	t.Run("duplicate name is a conflict", func(t *testing.T) {
		repo := mocks.NewMockUserRepository()
		uc := usecase.NewUserUseCase(mocks.NewMockTransactionManager(), repo, zerolog.Nop())

		if _, err := uc.CreateUser(ctx, "alice"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := uc.CreateUser(ctx, "alice"); !errors.Is(err, domain.ErrConflict) {
			t.Errorf("expected ErrConflict, got %v", err)
		}
	})
}

func TestAgentUseCase_CreateAgent(t *testing.T) {
	ctx := context.Background()

	repo := mocks.NewMockAgentRepository()
	uc := usecase.NewAgentUseCase(mocks.NewMockTransactionManager(), repo, zerolog.Nop())

	desc := "grocery store"
	agent, err := uc.CreateAgent(ctx, "rewe", &desc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agent.ID == 0 {
		t.Error("expected an assigned id")
	}

	if _, err := uc.CreateAgent(ctx, "rewe", nil); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}

	if _, err := uc.CreateAgent(ctx, "bad name!", nil); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}
