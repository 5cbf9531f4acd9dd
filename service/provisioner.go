package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/layer-3/tipgate/core"
	"github.com/layer-3/tipgate/ports"
)

// Provisioner resolves a wallet to its account, creating the account and a
// default page the first time the wallet logs in.
//
// Account creation is a conditional write: when several requests race for a
// new wallet, the store lets exactly one insert win and the others read the
// winner's record back. The default page is written afterwards on the
// creating path only and a failure there is logged, not returned; the
// account exists either way. With atomic set and a store implementing
// ports.AtomicProvisioner, both records are written in one transaction.
type Provisioner struct {
	accounts ports.AccountStore
	pages    ports.PageStore
	events   ports.EventPublisher
	atomic   ports.AtomicProvisioner
	now      func() time.Time
	logger   *slog.Logger
}

// ProvisionerOption configures a Provisioner
type ProvisionerOption func(*Provisioner)

// WithAtomicProvisioning writes account and page in a single transaction
func WithAtomicProvisioning(atomic ports.AtomicProvisioner) ProvisionerOption {
	return func(p *Provisioner) {
		p.atomic = atomic
	}
}

// WithProvisionerClock overrides the time source used for createdAt
func WithProvisionerClock(now func() time.Time) ProvisionerOption {
	return func(p *Provisioner) {
		p.now = now
	}
}

// NewProvisioner creates a new account provisioner
func NewProvisioner(
	accounts ports.AccountStore,
	pages ports.PageStore,
	events ports.EventPublisher,
	logger *slog.Logger,
	opts ...ProvisionerOption,
) *Provisioner {
	p := &Provisioner{
		accounts: accounts,
		pages:    pages,
		events:   events,
		now:      time.Now,
		logger:   logger.With("component", "provisioner"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GetOrCreate returns the wallet's account, creating it on first use
func (p *Provisioner) GetOrCreate(ctx context.Context, walletAddress string) (*core.Account, error) {
	account, err := p.accounts.GetAccount(ctx, walletAddress)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	now := p.now().UTC()
	candidate := &core.Account{WalletAddress: walletAddress, CreatedAt: now}
	page := core.DefaultPage(walletAddress, now)

	var created, pageProvisioned bool
	if p.atomic != nil {
		created, pageProvisioned, err = p.atomic.CreateAccountWithPage(ctx, candidate, page)
	} else {
		created, err = p.accounts.CreateAccountIfAbsent(ctx, candidate)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if !created {
		// Lost the race: converge on the winner's record.
		account, err := p.accounts.GetAccount(ctx, walletAddress)
		if err != nil {
			return nil, fmt.Errorf("failed to read concurrently created account: %w", err)
		}
		return account, nil
	}

	if p.atomic == nil {
		pageProvisioned = p.provisionPage(ctx, page)
	}

	p.logger.Info("account created", "wallet", walletAddress, "page_provisioned", pageProvisioned)

	if err := p.events.PublishAccountCreated(ctx, candidate, pageProvisioned); err != nil {
		p.logger.Warn("failed to publish account created event", "wallet", walletAddress, "error", err)
	}

	return candidate, nil
}

// provisionPage reports whether the default page was written. A page already
// stored under the wallet's id is kept as is.
func (p *Provisioner) provisionPage(ctx context.Context, page *core.Page) bool {
	created, err := p.pages.CreatePageIfAbsent(ctx, page)
	if err != nil {
		p.logger.Error("failed to provision default page", "wallet", page.WalletAddress, "error", err)
		return false
	}
	if !created {
		p.logger.Warn("page id already taken, default page not written", "wallet", page.WalletAddress)
	}
	return created
}
