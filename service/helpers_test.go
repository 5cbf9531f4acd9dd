package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/layer-3/tipgate/core"
	"github.com/layer-3/tipgate/ports"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// verifierFunc adapts a function to ports.SignatureVerifier
type verifierFunc func(walletAddress, message, signature string) bool

func (f verifierFunc) Verify(walletAddress, message, signature string) bool {
	return f(walletAddress, message, signature)
}

// acceptSignature accepts exactly the signature "valid"
var acceptSignature = verifierFunc(func(_, _, signature string) bool {
	return signature == "valid"
})

type allowAll struct{}

func (allowAll) Admit(string) error { return nil }

type denyAll struct{}

func (denyAll) Admit(string) error { return &core.RateLimitError{} }

type recordingPublisher struct {
	mu          sync.Mutex
	events      []*core.Account
	provisioned []bool
	err         error
}

func (p *recordingPublisher) PublishAccountCreated(_ context.Context, account *core.Account, pageProvisioned bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, account)
	p.provisioned = append(p.provisioned, pageProvisioned)
	return p.err
}

func (p *recordingPublisher) pageFlags() []bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]bool(nil), p.provisioned...)
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

var errBackend = errors.New("backend unavailable")

// failingPages wraps a page store and fails every create
type failingPages struct {
	ports.PageStore
}

func (failingPages) CreatePageIfAbsent(context.Context, *core.Page) (bool, error) {
	return false, errBackend
}

// failingAccounts fails every lookup
type failingAccounts struct{}

func (failingAccounts) GetAccount(context.Context, string) (*core.Account, error) {
	return nil, errBackend
}

func (failingAccounts) CreateAccountIfAbsent(context.Context, *core.Account) (bool, error) {
	return false, errBackend
}
