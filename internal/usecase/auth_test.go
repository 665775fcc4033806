package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/JLCarveth/blog/internal/core/domain"
	"github.com/JLCarveth/blog/internal/infra/security"
)

func testAccount(t *testing.T, email, password, role string) domain.Account {
	t.Helper()

	hash, salt, err := security.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	return domain.Account{
		ID:           "account-" + email,
		Email:        email,
		Username:     "tester",
		PasswordHash: hash,
		Salt:         salt,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
}

func newAuthService(t *testing.T, accounts *accountRepoStub, publisher *publisherStub) (*AuthService, *security.LockoutTracker) {
	t.Helper()

	tracker := security.NewLockoutTracker(security.DefaultLockoutThreshold, security.DefaultDecayWindow)
	tokens := security.NewTokenService("test-secret", "blog-platform", time.Hour)
	return NewAuthService(accounts, tracker, tokens, publisher, zaptest.NewLogger(t)), tracker
}

func TestAuthService_LoginIssuesVerifiableToken(t *testing.T) {
	accounts := newAccountRepoStub(testAccount(t, "reader@example.com", "correct horse battery", "user"))
	publisher := &publisherStub{}
	svc, _ := newAuthService(t, accounts, publisher)

	result, err := svc.Login(context.Background(), "reader@example.com", "correct horse battery", "198.51.100.7")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	claims, err := svc.Verify(result.Token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if claims.Email != "reader@example.com" {
		t.Fatalf("expected claims email reader@example.com, got %s", claims.Email)
	}
	if claims.Role != "user" {
		t.Fatalf("expected claims role user, got %s", claims.Role)
	}

	if result.Account.PasswordHash != "" || result.Account.Salt != "" {
		t.Fatal("expected sanitized account without credential material")
	}

	if len(publisher.loginSucceeded) != 1 {
		t.Fatalf("expected 1 login succeeded event, got %d", len(publisher.loginSucceeded))
	}
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	accounts := newAccountRepoStub(testAccount(t, "reader@example.com", "correct horse battery", "user"))
	publisher := &publisherStub{}
	svc, _ := newAuthService(t, accounts, publisher)

	_, err := svc.Login(context.Background(), "reader@example.com", "wrong password", "198.51.100.7")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	if len(publisher.loginFailed) != 1 {
		t.Fatalf("expected 1 login failed event, got %d", len(publisher.loginFailed))
	}
}

func TestAuthService_UnknownEmailIndistinguishable(t *testing.T) {
	accounts := newAccountRepoStub(testAccount(t, "reader@example.com", "correct horse battery", "user"))
	svc, _ := newAuthService(t, accounts, &publisherStub{})

	_, wrongPassword := svc.Login(context.Background(), "reader@example.com", "nope", "198.51.100.7")
	_, unknownEmail := svc.Login(context.Background(), "ghost@example.com", "nope", "198.51.100.8")

	if !errors.Is(wrongPassword, ErrInvalidCredentials) || !errors.Is(unknownEmail, ErrInvalidCredentials) {
		t.Fatalf("expected identical ErrInvalidCredentials, got %v and %v", wrongPassword, unknownEmail)
	}
}

func TestAuthService_LockoutEngagesAfterThreshold(t *testing.T) {
	accounts := newAccountRepoStub(testAccount(t, "reader@example.com", "correct horse battery", "user"))
	publisher := &publisherStub{}
	svc, tracker := newAuthService(t, accounts, publisher)

	for i := 0; i < tracker.Threshold(); i++ {
		if _, err := svc.Login(context.Background(), "reader@example.com", "wrong", "203.0.113.5"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}

	if len(publisher.lockoutEngaged) != 1 {
		t.Fatalf("expected 1 lockout event, got %d", len(publisher.lockoutEngaged))
	}

	lookupsBefore := accounts.lookups

	// Correct password is rejected while locked, without touching the store.
	_, err := svc.Login(context.Background(), "reader@example.com", "correct horse battery", "203.0.113.5")
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
	if accounts.lookups != lookupsBefore {
		t.Fatal("locked-out login must not hit the account store")
	}

	// A different address is unaffected.
	if _, err := svc.Login(context.Background(), "reader@example.com", "correct horse battery", "203.0.113.6"); err != nil {
		t.Fatalf("other address should log in, got %v", err)
	}
}

func TestAuthService_MappedAddressSharesLockout(t *testing.T) {
	accounts := newAccountRepoStub(testAccount(t, "reader@example.com", "correct horse battery", "user"))
	svc, tracker := newAuthService(t, accounts, &publisherStub{})

	for i := 0; i < tracker.Threshold(); i++ {
		svc.Login(context.Background(), "reader@example.com", "wrong", "::ffff:203.0.113.5")
	}

	_, err := svc.Login(context.Background(), "reader@example.com", "correct horse battery", "203.0.113.5")
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected mapped and plain forms to share a lockout record, got %v", err)
	}
}

func TestAuthService_SuccessResetsFailureCount(t *testing.T) {
	accounts := newAccountRepoStub(testAccount(t, "reader@example.com", "correct horse battery", "user"))
	svc, tracker := newAuthService(t, accounts, &publisherStub{})

	for i := 0; i < tracker.Threshold()-1; i++ {
		svc.Login(context.Background(), "reader@example.com", "wrong", "203.0.113.9")
	}
	if _, err := svc.Login(context.Background(), "reader@example.com", "correct horse battery", "203.0.113.9"); err != nil {
		t.Fatalf("expected login to succeed, got %v", err)
	}

	// The counter restarted, so one more failure does not lock.
	svc.Login(context.Background(), "reader@example.com", "wrong", "203.0.113.9")
	if _, err := svc.Login(context.Background(), "reader@example.com", "correct horse battery", "203.0.113.9"); err != nil {
		t.Fatalf("expected login to succeed after reset, got %v", err)
	}
}

func TestAuthService_StoreFailureIsRetryable(t *testing.T) {
	accounts := newAccountRepoStub()
	accounts.failWith = errStoreDown
	svc, _ := newAuthService(t, accounts, &publisherStub{})

	_, err := svc.Login(context.Background(), "reader@example.com", "whatever", "203.0.113.9")
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestAuthService_LockoutIgnoresPasswordCorrectness(t *testing.T) {
	accounts := newAccountRepoStub(testAccount(t, "reader@example.com", "correct horse battery", "user"))
	svc, tracker := newAuthService(t, accounts, &publisherStub{})

	// Correct logins interleaved with single failures never lock.
	for i := 0; i < 5; i++ {
		svc.Login(context.Background(), "reader@example.com", "wrong", "203.0.113.9")
		if _, err := svc.Login(context.Background(), "reader@example.com", "correct horse battery", "203.0.113.9"); err != nil {
			t.Fatalf("round %d: expected interleaved login to succeed, got %v", i, err)
		}
	}

	// Consecutive failures lock the address even for the right password.
	for i := 0; i < tracker.Threshold(); i++ {
		svc.Login(context.Background(), "reader@example.com", "wrong", "203.0.113.9")
	}
	if _, err := svc.Login(context.Background(), "reader@example.com", "correct horse battery", "203.0.113.9"); !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}
