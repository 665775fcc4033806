package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/JLCarveth/blog/internal/core/domain"
)

func TestBlocklistCache_BanNormalizesAddress(t *testing.T) {
	publisher := &publisherStub{}
	cache := NewBlocklistCache(newBlocklistRepoStub(), publisher, zaptest.NewLogger(t))

	if err := cache.Ban(context.Background(), "::ffff:203.0.113.5", "abuse"); err != nil {
		t.Fatalf("Ban returned error: %v", err)
	}

	if !cache.IsBlocked("203.0.113.5") {
		t.Fatal("plain IPv4 form should be blocked")
	}
	if !cache.IsBlocked("::ffff:203.0.113.5") {
		t.Fatal("IPv4-mapped form should be blocked")
	}
	if cache.IsBlocked("203.0.113.6") {
		t.Fatal("unrelated address should not be blocked")
	}

	if len(publisher.addressBanned) != 1 {
		t.Fatalf("expected 1 banned event, got %d", len(publisher.addressBanned))
	}
	if publisher.addressBanned[0].Address != "203.0.113.5" {
		t.Fatalf("event should carry the normalized address, got %s", publisher.addressBanned[0].Address)
	}
}

func TestBlocklistCache_BanDuplicateIsNoop(t *testing.T) {
	cache := NewBlocklistCache(newBlocklistRepoStub(), &publisherStub{}, zaptest.NewLogger(t))

	if err := cache.Ban(context.Background(), "203.0.113.5", "abuse"); err != nil {
		t.Fatalf("Ban returned error: %v", err)
	}
	if err := cache.Ban(context.Background(), "::ffff:203.0.113.5", "abuse again"); err != nil {
		t.Fatalf("duplicate Ban should be a no-op, got %v", err)
	}
}

func TestBlocklistCache_Unban(t *testing.T) {
	publisher := &publisherStub{}
	cache := NewBlocklistCache(newBlocklistRepoStub(), publisher, zaptest.NewLogger(t))

	if err := cache.Ban(context.Background(), "203.0.113.5", "abuse"); err != nil {
		t.Fatalf("Ban returned error: %v", err)
	}
	if err := cache.Unban(context.Background(), "::ffff:203.0.113.5"); err != nil {
		t.Fatalf("Unban returned error: %v", err)
	}

	if cache.IsBlocked("203.0.113.5") {
		t.Fatal("address should no longer be blocked")
	}
	if len(publisher.addressUnbanned) != 1 {
		t.Fatalf("expected 1 unbanned event, got %d", len(publisher.addressUnbanned))
	}
}

func TestBlocklistCache_UnbanMissingAddress(t *testing.T) {
	cache := NewBlocklistCache(newBlocklistRepoStub(), &publisherStub{}, zaptest.NewLogger(t))

	if err := cache.Unban(context.Background(), "203.0.113.5"); !errors.Is(err, ErrAddressNotBlocked) {
		t.Fatalf("expected ErrAddressNotBlocked, got %v", err)
	}
}

func TestBlocklistCache_RefreshLoadsStore(t *testing.T) {
	store := newBlocklistRepoStub(domain.BlockedAddress{
		ID:      "ban-1",
		Address: "::ffff:198.51.100.20",
		Reason:  "spam",
		BanDate: time.Now().UTC(),
	})
	cache := NewBlocklistCache(store, &publisherStub{}, zaptest.NewLogger(t))

	if cache.IsBlocked("198.51.100.20") {
		t.Fatal("unrefreshed cache blocks nobody")
	}

	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}

	if !cache.IsBlocked("198.51.100.20") {
		t.Fatal("stored entry should block after refresh")
	}
}

func TestBlocklistCache_RefreshFailureKeepsSnapshot(t *testing.T) {
	store := newBlocklistRepoStub()
	cache := NewBlocklistCache(store, &publisherStub{}, zaptest.NewLogger(t))

	if err := cache.Ban(context.Background(), "203.0.113.5", "abuse"); err != nil {
		t.Fatalf("Ban returned error: %v", err)
	}

	store.failWith = errStoreDown
	if err := cache.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh to fail")
	}

	if !cache.IsBlocked("203.0.113.5") {
		t.Fatal("failed refresh must keep the previous snapshot")
	}
}
