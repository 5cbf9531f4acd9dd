package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/layer-3/tipgate/core"
	"github.com/layer-3/tipgate/ports"
)

// PageService reads pages and applies owner-authorised writes
type PageService struct {
	pages  ports.PageStore
	now    func() time.Time
	logger *slog.Logger
}

// NewPageService creates a new page service
func NewPageService(pages ports.PageStore, logger *slog.Logger) *PageService {
	return &PageService{
		pages:  pages,
		now:    time.Now,
		logger: logger.With("component", "pages"),
	}
}

// Get returns the page stored under pageWalletID
func (s *PageService) Get(ctx context.Context, pageWalletID string) (*core.Page, error) {
	if strings.TrimSpace(pageWalletID) == "" {
		return nil, &core.ValidationError{Field: "pageWalletId", Reason: "Missing pageWalletId."}
	}

	page, err := s.pages.GetPage(ctx, pageWalletID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read page: %w", err)
	}
	return page, nil
}

// Save validates the request, checks that walletAddress owns the page and
// stores the request merged over the default field values. A wallet may only
// create the page keyed by its own address; every other id is reserved for
// the wallet it names.
func (s *PageService) Save(ctx context.Context, walletAddress string, req *core.PageRequest) (*core.Page, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.WalletAddress != "" && req.WalletAddress != walletAddress {
		return nil, core.ErrOwnership
	}

	existing, err := s.pages.GetPage(ctx, req.PageWalletID)
	switch {
	case err == nil:
		if existing.WalletAddress != walletAddress {
			return nil, core.ErrOwnership
		}
	case errors.Is(err, core.ErrNotFound):
		if req.PageWalletID != walletAddress {
			return nil, core.ErrOwnership
		}
	default:
		return nil, fmt.Errorf("failed to read page: %w", err)
	}

	page := req.Page(walletAddress, s.now())
	if err := s.pages.PutPage(ctx, page); err != nil {
		return nil, fmt.Errorf("failed to store page: %w", err)
	}

	s.logger.Info("page saved", "page", page.PageWalletID, "wallet", walletAddress)
	return page, nil
}
