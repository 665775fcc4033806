package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/JLCarveth/blog/internal/core/domain"
	"github.com/JLCarveth/blog/internal/repository"
)

// accountRepoStub is an in-memory account store keyed by email. lookups
// counts GetByEmail calls so tests can assert the lockout short-circuit.
type accountRepoStub struct {
	mu       sync.Mutex
	accounts map[string]domain.Account
	lookups  int
	failWith error
}

func newAccountRepoStub(accounts ...domain.Account) *accountRepoStub {
	stub := &accountRepoStub{accounts: make(map[string]domain.Account)}
	for _, account := range accounts {
		stub.accounts[account.Email] = account
	}
	return stub
}

func (s *accountRepoStub) Create(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if _, exists := s.accounts[account.Email]; exists {
		return repository.ErrDuplicate
	}
	s.accounts[account.Email] = account
	return nil
}

func (s *accountRepoStub) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	if s.failWith != nil {
		return nil, s.failWith
	}
	account, ok := s.accounts[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &account, nil
}

func (s *accountRepoStub) GetByID(_ context.Context, id string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, account := range s.accounts {
		if account.ID == id {
			return &account, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *accountRepoStub) UpdatePassword(_ context.Context, id, passwordHash, salt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for email, account := range s.accounts {
		if account.ID == id {
			account.PasswordHash = passwordHash
			account.Salt = salt
			s.accounts[email] = account
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *accountRepoStub) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[email]; !ok {
		return repository.ErrNotFound
	}
	delete(s.accounts, email)
	return nil
}

// roleRepoStub serves a fixed role table.
type roleRepoStub struct {
	mu       sync.Mutex
	roles    map[string]domain.Role
	failWith error
}

func newRoleRepoStub(roles ...domain.Role) *roleRepoStub {
	stub := &roleRepoStub{roles: make(map[string]domain.Role)}
	for _, role := range roles {
		stub.roles[role.Name] = role
	}
	return stub
}

func (s *roleRepoStub) Create(_ context.Context, role domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if _, exists := s.roles[role.Name]; exists {
		return repository.ErrDuplicate
	}
	s.roles[role.Name] = role
	return nil
}

func (s *roleRepoStub) List(_ context.Context) ([]domain.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	roles := make([]domain.Role, 0, len(s.roles))
	for _, role := range s.roles {
		roles = append(roles, role)
	}
	return roles, nil
}

func (s *roleRepoStub) GetByName(_ context.Context, name string) (*domain.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	role, ok := s.roles[name]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &role, nil
}

func (s *roleRepoStub) GrantPermissions(_ context.Context, name string, permissions []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	role, ok := s.roles[name]
	if !ok {
		return repository.ErrNotFound
	}
	role.Permissions = append(role.Permissions, permissions...)
	s.roles[name] = role
	return nil
}

func (s *roleRepoStub) RevokePermissions(_ context.Context, name string, permissions []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	role, ok := s.roles[name]
	if !ok {
		return repository.ErrNotFound
	}
	revoked := make(map[string]struct{}, len(permissions))
	for _, permission := range permissions {
		revoked[permission] = struct{}{}
	}
	kept := role.Permissions[:0]
	for _, permission := range role.Permissions {
		if _, drop := revoked[permission]; !drop {
			kept = append(kept, permission)
		}
	}
	role.Permissions = kept
	s.roles[name] = role
	return nil
}

// blocklistRepoStub stores banned addresses in memory.
type blocklistRepoStub struct {
	mu       sync.Mutex
	entries  map[string]domain.BlockedAddress
	failWith error
}

func newBlocklistRepoStub(entries ...domain.BlockedAddress) *blocklistRepoStub {
	stub := &blocklistRepoStub{entries: make(map[string]domain.BlockedAddress)}
	for _, entry := range entries {
		stub.entries[domain.NormalizeAddress(entry.Address)] = entry
	}
	return stub
}

func (s *blocklistRepoStub) ListBlocked(_ context.Context) ([]domain.BlockedAddress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	entries := make([]domain.BlockedAddress, 0, len(s.entries))
	for _, entry := range s.entries {
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *blocklistRepoStub) Insert(_ context.Context, entry domain.BlockedAddress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	key := domain.NormalizeAddress(entry.Address)
	if _, exists := s.entries[key]; exists {
		return repository.ErrDuplicate
	}
	s.entries[key] = entry
	return nil
}

func (s *blocklistRepoStub) Remove(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := domain.NormalizeAddress(address)
	if _, ok := s.entries[key]; !ok {
		return repository.ErrNotFound
	}
	delete(s.entries, key)
	return nil
}

// postRepoStub stores posts in memory.
type postRepoStub struct {
	mu    sync.Mutex
	posts map[string]domain.Post
}

func newPostRepoStub(posts ...domain.Post) *postRepoStub {
	stub := &postRepoStub{posts: make(map[string]domain.Post)}
	for _, post := range posts {
		stub.posts[post.ID] = post
	}
	return stub
}

func (s *postRepoStub) Create(_ context.Context, post domain.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[post.ID] = post
	return nil
}

func (s *postRepoStub) GetByID(_ context.Context, id string) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	post.Views++
	s.posts[id] = post
	return &post, nil
}

func (s *postRepoStub) ListApproved(_ context.Context, limit, offset int) ([]domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var posts []domain.Post
	for _, post := range s.posts {
		if post.Approved {
			posts = append(posts, post)
		}
	}
	return posts, nil
}

func (s *postRepoStub) ListByAuthor(_ context.Context, authorID string) ([]domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var posts []domain.Post
	for _, post := range s.posts {
		if post.AuthorID == authorID {
			posts = append(posts, post)
		}
	}
	return posts, nil
}

func (s *postRepoStub) Update(_ context.Context, post domain.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.posts[post.ID]
	if !ok {
		return repository.ErrNotFound
	}
	post.Views = existing.Views
	post.Approved = existing.Approved
	s.posts[post.ID] = post
	return nil
}

func (s *postRepoStub) SetApproved(_ context.Context, id string, approved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[id]
	if !ok {
		return repository.ErrNotFound
	}
	post.Approved = approved
	s.posts[id] = post
	return nil
}

func (s *postRepoStub) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

// publisherStub records published events by type.
type publisherStub struct {
	mu              sync.Mutex
	loginSucceeded  []domain.LoginSucceededEvent
	loginFailed     []domain.LoginFailedEvent
	lockoutEngaged  []domain.LockoutEngagedEvent
	registered      []domain.AccountRegisteredEvent
	addressBanned   []domain.AddressBannedEvent
	addressUnbanned []domain.AddressUnbannedEvent
}

func (p *publisherStub) PublishLoginSucceeded(_ context.Context, event domain.LoginSucceededEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loginSucceeded = append(p.loginSucceeded, event)
	return nil
}

func (p *publisherStub) PublishLoginFailed(_ context.Context, event domain.LoginFailedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loginFailed = append(p.loginFailed, event)
	return nil
}

func (p *publisherStub) PublishLockoutEngaged(_ context.Context, event domain.LockoutEngagedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lockoutEngaged = append(p.lockoutEngaged, event)
	return nil
}

func (p *publisherStub) PublishAccountRegistered(_ context.Context, event domain.AccountRegisteredEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registered = append(p.registered, event)
	return nil
}

func (p *publisherStub) PublishAddressBanned(_ context.Context, event domain.AddressBannedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.addressBanned = append(p.addressBanned, event)
	return nil
}

func (p *publisherStub) PublishAddressUnbanned(_ context.Context, event domain.AddressUnbannedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.addressUnbanned = append(p.addressUnbanned, event)
	return nil
}

var errStoreDown = errors.New("store down")
