package ports

import (
	"context"

	"github.com/layer-3/tipgate/core"
)

// AccountStore persists accounts keyed by wallet address.
type AccountStore interface {
	// GetAccount returns core.ErrNotFound when the wallet has no account.
	GetAccount(ctx context.Context, walletAddress string) (*core.Account, error)

	// CreateAccountIfAbsent writes the account only if none exists for its
	// wallet. It reports false, without error, when another writer won.
	CreateAccountIfAbsent(ctx context.Context, account *core.Account) (bool, error)
}

// PageStore persists pages keyed by page wallet id.
type PageStore interface {
	// GetPage returns core.ErrNotFound when no page exists for the id.
	GetPage(ctx context.Context, pageWalletID string) (*core.Page, error)
	PutPage(ctx context.Context, page *core.Page) error
	CreatePageIfAbsent(ctx context.Context, page *core.Page) (bool, error)
}

// ChallengeStore keeps at most one live challenge per wallet.
type ChallengeStore interface {
	SaveChallenge(ctx context.Context, challenge *core.Challenge) error

	// ConsumeChallenge removes the wallet's live challenge and reports
	// whether its message matched. A challenge can be consumed once.
	ConsumeChallenge(ctx context.Context, walletAddress, message string) (bool, error)
}

// Store bundles every collection a backend provides.
type Store interface {
	AccountStore
	PageStore
	ChallengeStore
	Close() error
}

// AtomicProvisioner is implemented by backends able to write an account and
// its default page in a single transaction. Nothing is written when the
// account already exists; an existing page is left untouched and reported
// through pageCreated.
type AtomicProvisioner interface {
	CreateAccountWithPage(ctx context.Context, account *core.Account, page *core.Page) (accountCreated, pageCreated bool, err error)
}
