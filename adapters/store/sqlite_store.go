package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/layer-3/tipgate/core"
	"github.com/layer-3/tipgate/ports"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface on an embedded SQLite
// database. Create-if-absent writes use INSERT ... ON CONFLICT DO NOTHING.
type SQLiteStore struct {
	db     *sql.DB
	now    func() time.Time
	logger *slog.Logger
}

var (
	_ ports.Store             = (*SQLiteStore)(nil)
	_ ports.AtomicProvisioner = (*SQLiteStore)(nil)
)

// NewSQLiteStore opens (and if needed creates) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite allows a single writer; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		now:    time.Now,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS accounts (
			wallet_address TEXT PRIMARY KEY,
			created_at     TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS pages (
			page_wallet_id TEXT PRIMARY KEY,
			owner          TEXT NOT NULL,
			data           TEXT NOT NULL,
			updated_at     TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_pages_owner ON pages(owner);

		CREATE TABLE IF NOT EXISTS challenges (
			wallet_address TEXT PRIMARY KEY,
			message        TEXT NOT NULL,
			expires_at     INTEGER NOT NULL
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

// execer is satisfied by both *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// GetAccount reads an account row
func (s *SQLiteStore) GetAccount(ctx context.Context, walletAddress string) (*core.Account, error) {
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT created_at FROM accounts WHERE wallet_address = ?`, walletAddress,
	).Scan(&createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying account: %w", err)
	}

	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing account created_at: %w", err)
	}

	return &core.Account{WalletAddress: walletAddress, CreatedAt: t}, nil
}

// CreateAccountIfAbsent inserts the account unless the wallet has one
func (s *SQLiteStore) CreateAccountIfAbsent(ctx context.Context, account *core.Account) (bool, error) {
	return insertAccount(ctx, s.db, account)
}

func insertAccount(ctx context.Context, ex execer, account *core.Account) (bool, error) {
	res, err := ex.ExecContext(ctx,
		`INSERT INTO accounts (wallet_address, created_at) VALUES (?, ?)
		 ON CONFLICT(wallet_address) DO NOTHING`,
		account.WalletAddress, account.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return false, fmt.Errorf("inserting account: %w", err)
	}
	return affected(res)
}

// GetPage reads a page row
func (s *SQLiteStore) GetPage(ctx context.Context, pageWalletID string) (*core.Page, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM pages WHERE page_wallet_id = ?`, pageWalletID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying page: %w", err)
	}

	var page core.Page
	if err := json.Unmarshal([]byte(data), &page); err != nil {
		return nil, fmt.Errorf("decoding page: %w", err)
	}
	return &page, nil
}

// PutPage inserts or replaces a page row
func (s *SQLiteStore) PutPage(ctx context.Context, page *core.Page) error {
	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("encoding page: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO pages (page_wallet_id, owner, data, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(page_wallet_id) DO UPDATE SET
			owner = excluded.owner,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		page.PageWalletID, page.WalletAddress, string(data), s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upserting page: %w", err)
	}
	return nil
}

// CreatePageIfAbsent inserts the page unless one exists for its id
func (s *SQLiteStore) CreatePageIfAbsent(ctx context.Context, page *core.Page) (bool, error) {
	return s.insertPage(ctx, s.db, page)
}

func (s *SQLiteStore) insertPage(ctx context.Context, ex execer, page *core.Page) (bool, error) {
	data, err := json.Marshal(page)
	if err != nil {
		return false, fmt.Errorf("encoding page: %w", err)
	}

	res, err := ex.ExecContext(ctx,
		`INSERT INTO pages (page_wallet_id, owner, data, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(page_wallet_id) DO NOTHING`,
		page.PageWalletID, page.WalletAddress, string(data), s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return false, fmt.Errorf("inserting page: %w", err)
	}
	return affected(res)
}

// CreateAccountWithPage writes the account and its default page in one
// transaction. Nothing is written when the account already exists.
func (s *SQLiteStore) CreateAccountWithPage(ctx context.Context, account *core.Account, page *core.Page) (bool, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	created, err := insertAccount(ctx, tx, account)
	if err != nil || !created {
		return false, false, err
	}

	pageCreated, err := s.insertPage(ctx, tx, page)
	if err != nil {
		return false, false, err
	}

	if err := tx.Commit(); err != nil {
		return false, false, fmt.Errorf("committing transaction: %w", err)
	}
	return true, pageCreated, nil
}

// SaveChallenge replaces the wallet's live challenge
func (s *SQLiteStore) SaveChallenge(ctx context.Context, challenge *core.Challenge) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO challenges (wallet_address, message, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(wallet_address) DO UPDATE SET
			message = excluded.message,
			expires_at = excluded.expires_at`,
		challenge.Address, challenge.Message, challenge.ExpiresAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("saving challenge: %w", err)
	}
	return nil
}

// ConsumeChallenge deletes the wallet's challenge and reports whether it
// was live and carried the given message
func (s *SQLiteStore) ConsumeChallenge(ctx context.Context, walletAddress, message string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		stored    string
		expiresAt int64
	)
	err = tx.QueryRowContext(ctx,
		`SELECT message, expires_at FROM challenges WHERE wallet_address = ?`, walletAddress,
	).Scan(&stored, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying challenge: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM challenges WHERE wallet_address = ?`, walletAddress); err != nil {
		return false, fmt.Errorf("deleting challenge: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing transaction: %w", err)
	}

	return stored == message && s.now().UnixNano() < expiresAt, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading rows affected: %w", err)
	}
	return n == 1, nil
}
