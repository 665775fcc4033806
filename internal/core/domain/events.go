package domain

import "time"

// LoginSucceededEvent is published after a credential check passes and a
// token is issued.
type LoginSucceededEvent struct {
	EventID       string
	AccountID     string
	Email         string
	Role          string
	ClientAddress string
	OccurredAt    time.Time
}

// LoginFailedEvent is published on every failed credential check.
type LoginFailedEvent struct {
	EventID       string
	Email         string
	ClientAddress string
	OccurredAt    time.Time
}

// LockoutEngagedEvent is published when a client address crosses the
// lockout threshold.
type LockoutEngagedEvent struct {
	EventID       string
	ClientAddress string
	Attempts      int
	OccurredAt    time.Time
}

// AccountRegisteredEvent is published after a new account is persisted.
type AccountRegisteredEvent struct {
	EventID    string
	AccountID  string
	Email      string
	Username   string
	Role       string
	OccurredAt time.Time
}

// AddressBannedEvent is published after an address is added to the
// blocklist store.
type AddressBannedEvent struct {
	EventID    string
	Address    string
	Reason     string
	OccurredAt time.Time
}

// AddressUnbannedEvent is published after an address is removed from the
// blocklist store.
type AddressUnbannedEvent struct {
	EventID    string
	Address    string
	OccurredAt time.Time
}
