package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/layer-3/tipgate/adapters/store"
	"github.com/layer-3/tipgate/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wallet = "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T"

func TestProvisioner_CreatesAccountAndDefaultPage(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	pub := &recordingPublisher{}
	now := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	p := NewProvisioner(s, s, pub, discardLogger(), WithProvisionerClock(func() time.Time { return now }))

	account, err := p.GetOrCreate(ctx, wallet)
	require.NoError(t, err)
	assert.Equal(t, wallet, account.WalletAddress)
	assert.True(t, now.Equal(account.CreatedAt))

	page, err := s.GetPage(ctx, wallet)
	require.NoError(t, err)
	assert.Equal(t, core.DefaultPageName, page.Name)
	assert.Equal(t, wallet, page.WalletAddress)
	assert.Equal(t, []bool{true}, pub.pageFlags())

	again, err := p.GetOrCreate(ctx, wallet)
	require.NoError(t, err)
	assert.Equal(t, account, again)
	assert.Equal(t, 1, pub.count(), "only the creating path publishes")
}

func TestProvisioner_ConcurrentFirstLogin(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	pub := &recordingPublisher{}

	var tick atomic.Int64
	clock := func() time.Time {
		return time.Unix(1_700_000_000+tick.Add(1), 0)
	}
	p := NewProvisioner(s, s, pub, discardLogger(), WithProvisionerClock(clock))

	const n = 32
	results := make([]*core.Account, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			account, err := p.GetOrCreate(ctx, wallet)
			assert.NoError(t, err)
			results[i] = account
		}(i)
	}
	wg.Wait()

	stored, err := s.GetAccount(ctx, wallet)
	require.NoError(t, err)
	for i, account := range results {
		require.NotNil(t, account, "caller %d", i)
		assert.Equal(t, *stored, *account, "caller %d", i)
	}
	assert.Equal(t, 1, pub.count())
}

func TestProvisioner_PageFailureDoesNotFailProvisioning(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	pub := &recordingPublisher{}
	p := NewProvisioner(s, failingPages{s}, pub, discardLogger())

	account, err := p.GetOrCreate(ctx, wallet)
	require.NoError(t, err)
	assert.Equal(t, wallet, account.WalletAddress)

	_, err = s.GetPage(ctx, wallet)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, []bool{false}, pub.pageFlags())
}

func TestProvisioner_EventFailureIsSwallowed(t *testing.T) {
	s := store.NewMemoryStore()
	p := NewProvisioner(s, s, &recordingPublisher{err: errBackend}, discardLogger())

	_, err := p.GetOrCreate(context.Background(), wallet)
	assert.NoError(t, err)
}

func TestProvisioner_StoreFailure(t *testing.T) {
	s := store.NewMemoryStore()
	p := NewProvisioner(failingAccounts{}, s, &recordingPublisher{}, discardLogger())

	_, err := p.GetOrCreate(context.Background(), wallet)
	assert.ErrorIs(t, err, errBackend)
}

func TestProvisioner_Atomic(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	pub := &recordingPublisher{}
	p := NewProvisioner(s, failingPages{s}, pub, discardLogger(), WithAtomicProvisioning(s))

	_, err := p.GetOrCreate(ctx, wallet)
	require.NoError(t, err)

	// The page comes from the transactional path, not the failing two-step one.
	page, err := s.GetPage(ctx, wallet)
	require.NoError(t, err)
	assert.Equal(t, core.DefaultPageName, page.Name)
	assert.Equal(t, []bool{true}, pub.pageFlags())
}

func TestProvisioner_ExistingPageIsNotReportedAsProvisioned(t *testing.T) {
	for _, atomicMode := range []bool{false, true} {
		name := "two-step"
		if atomicMode {
			name = "atomic"
		}
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := store.NewMemoryStore()
			squatted := core.DefaultPage(wallet, time.Now())
			squatted.WalletAddress = "squatter"
			squatted.Name = "Taken"
			require.NoError(t, s.PutPage(ctx, squatted))

			pub := &recordingPublisher{}
			var opts []ProvisionerOption
			if atomicMode {
				opts = append(opts, WithAtomicProvisioning(s))
			}
			p := NewProvisioner(s, s, pub, discardLogger(), opts...)

			_, err := p.GetOrCreate(ctx, wallet)
			require.NoError(t, err)
			assert.Equal(t, []bool{false}, pub.pageFlags())

			page, err := s.GetPage(ctx, wallet)
			require.NoError(t, err)
			assert.Equal(t, "Taken", page.Name)
		})
	}
}
