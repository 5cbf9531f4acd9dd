package store

import (
	"context"
	"sync"
	"time"

	"github.com/layer-3/tipgate/core"
	"github.com/layer-3/tipgate/ports"
)

// MemoryStore is an in-memory implementation of the Store interface.
// Its contents live as long as the process.
type MemoryStore struct {
	accounts   map[string]core.Account
	pages      map[string]*core.Page
	challenges map[string]core.Challenge
	now        func() time.Time
	mu         sync.RWMutex
}

var (
	_ ports.Store             = (*MemoryStore)(nil)
	_ ports.AtomicProvisioner = (*MemoryStore)(nil)
)

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:   make(map[string]core.Account),
		pages:      make(map[string]*core.Page),
		challenges: make(map[string]core.Challenge),
		now:        time.Now,
	}
}

// GetAccount returns the account for a wallet
func (s *MemoryStore) GetAccount(ctx context.Context, walletAddress string) (*core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[walletAddress]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &account, nil
}

// CreateAccountIfAbsent stores the account unless the wallet already has one
func (s *MemoryStore) CreateAccountIfAbsent(ctx context.Context, account *core.Account) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.createAccountLocked(account), nil
}

func (s *MemoryStore) createAccountLocked(account *core.Account) bool {
	if _, exists := s.accounts[account.WalletAddress]; exists {
		return false
	}
	s.accounts[account.WalletAddress] = *account
	return true
}

// GetPage returns a copy of the stored page
func (s *MemoryStore) GetPage(ctx context.Context, pageWalletID string) (*core.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	page, ok := s.pages[pageWalletID]
	if !ok {
		return nil, core.ErrNotFound
	}
	return clonePage(page), nil
}

// PutPage stores or replaces a page
func (s *MemoryStore) PutPage(ctx context.Context, page *core.Page) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pages[page.PageWalletID] = clonePage(page)
	return nil
}

// CreatePageIfAbsent stores the page unless one exists for its id
func (s *MemoryStore) CreatePageIfAbsent(ctx context.Context, page *core.Page) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.pages[page.PageWalletID]; exists {
		return false, nil
	}
	s.pages[page.PageWalletID] = clonePage(page)
	return true, nil
}

// CreateAccountWithPage writes the account and its page under one lock
func (s *MemoryStore) CreateAccountWithPage(ctx context.Context, account *core.Account, page *core.Page) (bool, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.createAccountLocked(account) {
		return false, false, nil
	}
	if _, exists := s.pages[page.PageWalletID]; exists {
		return true, false, nil
	}
	s.pages[page.PageWalletID] = clonePage(page)
	return true, true, nil
}

// SaveChallenge replaces the wallet's live challenge
func (s *MemoryStore) SaveChallenge(ctx context.Context, challenge *core.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.challenges[challenge.Address] = *challenge
	return nil
}

// ConsumeChallenge deletes the wallet's challenge and reports whether it
// was live and carried the given message
func (s *MemoryStore) ConsumeChallenge(ctx context.Context, walletAddress, message string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	challenge, ok := s.challenges[walletAddress]
	if !ok {
		return false, nil
	}
	delete(s.challenges, walletAddress)

	return challenge.Message == message && s.now().Before(challenge.ExpiresAt), nil
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}

func clonePage(p *core.Page) *core.Page {
	c := *p
	if p.Links != nil {
		c.Links = make([]core.Link, len(p.Links))
		copy(c.Links, p.Links)
	}
	return &c
}
