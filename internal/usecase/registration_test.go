package usecase

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/JLCarveth/blog/internal/core/domain"
	"github.com/JLCarveth/blog/internal/infra/security"
)

const strongPassword = "tr4verse-Mountain-93"

func TestRegistrationService_Register(t *testing.T) {
	accounts := newAccountRepoStub()
	publisher := &publisherStub{}
	svc := NewRegistrationService(accounts, publisher, zaptest.NewLogger(t))

	account, err := svc.Register(context.Background(), "new@example.com", "newcomer", strongPassword)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if account.Role != domain.DefaultRoleName {
		t.Fatalf("expected default role %q, got %q", domain.DefaultRoleName, account.Role)
	}
	if account.PasswordHash != "" || account.Salt != "" {
		t.Fatal("returned account must not carry credential material")
	}
	if account.Verified {
		t.Fatal("new accounts start unverified")
	}

	stored, err := accounts.GetByEmail(context.Background(), "new@example.com")
	if err != nil {
		t.Fatalf("GetByEmail returned error: %v", err)
	}
	if !security.VerifyPassword(strongPassword, stored.PasswordHash, stored.Salt) {
		t.Fatal("stored hash should verify against the original password")
	}

	if len(publisher.registered) != 1 {
		t.Fatalf("expected 1 registered event, got %d", len(publisher.registered))
	}
}

func TestRegistrationService_RegisterDuplicateEmail(t *testing.T) {
	accounts := newAccountRepoStub(testAccount(t, "taken@example.com", strongPassword, "user"))
	svc := NewRegistrationService(accounts, &publisherStub{}, zaptest.NewLogger(t))

	if _, err := svc.Register(context.Background(), "taken@example.com", "other", strongPassword); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegistrationService_RegisterWeakPassword(t *testing.T) {
	svc := NewRegistrationService(newAccountRepoStub(), &publisherStub{}, zaptest.NewLogger(t))

	cases := []struct {
		name     string
		password string
	}{
		{name: "too short", password: "Ab1!"},
		{name: "single character class", password: "aaaaaaaaaaaaaa"},
		{name: "derived from email", password: "weak@example.com1A"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), "weak@example.com", "weakling", tc.password)
			if !errors.Is(err, ErrPasswordPolicyViolation) {
				t.Fatalf("expected ErrPasswordPolicyViolation, got %v", err)
			}
		})
	}
}

func TestRegistrationService_ChangePassword(t *testing.T) {
	accounts := newAccountRepoStub(testAccount(t, "reader@example.com", strongPassword, "user"))
	svc := NewRegistrationService(accounts, &publisherStub{}, zaptest.NewLogger(t))

	next := "Another-Val1d-Passw0rd"
	if err := svc.ChangePassword(context.Background(), "reader@example.com", strongPassword, next); err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}

	stored, err := accounts.GetByEmail(context.Background(), "reader@example.com")
	if err != nil {
		t.Fatalf("GetByEmail returned error: %v", err)
	}
	if !security.VerifyPassword(next, stored.PasswordHash, stored.Salt) {
		t.Fatal("new password should verify")
	}
	if security.VerifyPassword(strongPassword, stored.PasswordHash, stored.Salt) {
		t.Fatal("old password must stop verifying")
	}
}

func TestRegistrationService_ChangePasswordWrongCurrent(t *testing.T) {
	accounts := newAccountRepoStub(testAccount(t, "reader@example.com", strongPassword, "user"))
	svc := NewRegistrationService(accounts, &publisherStub{}, zaptest.NewLogger(t))

	err := svc.ChangePassword(context.Background(), "reader@example.com", "not the password", "Another-Val1d-Passw0rd")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegistrationService_ChangePasswordSameAsCurrent(t *testing.T) {
	accounts := newAccountRepoStub(testAccount(t, "reader@example.com", strongPassword, "user"))
	svc := NewRegistrationService(accounts, &publisherStub{}, zaptest.NewLogger(t))

	err := svc.ChangePassword(context.Background(), "reader@example.com", strongPassword, strongPassword)
	if !errors.Is(err, ErrPasswordPolicyViolation) {
		t.Fatalf("expected ErrPasswordPolicyViolation, got %v", err)
	}
}

func TestRegistrationService_DeleteAccount(t *testing.T) {
	accounts := newAccountRepoStub(testAccount(t, "reader@example.com", strongPassword, "user"))
	svc := NewRegistrationService(accounts, &publisherStub{}, zaptest.NewLogger(t))

	if err := svc.DeleteAccount(context.Background(), "reader@example.com"); err != nil {
		t.Fatalf("DeleteAccount returned error: %v", err)
	}
	if err := svc.DeleteAccount(context.Background(), "reader@example.com"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestRegistrationService_RegisterBlankFields(t *testing.T) {
	accounts := newAccountRepoStub()
	svc := NewRegistrationService(accounts, &publisherStub{}, zaptest.NewLogger(t))

	cases := []struct {
		name                      string
		email, username, password string
	}{
		{"blank email", "   ", "newcomer", strongPassword},
		{"blank username", "new@example.com", "\t", strongPassword},
		{"blank password", "new@example.com", "newcomer", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.email, tc.username, tc.password)
			if !errors.Is(err, ErrMissingField) {
				t.Fatalf("expected ErrMissingField, got %v", err)
			}
		})
	}
}
