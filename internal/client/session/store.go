package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gamehive/gamehive/internal/client/session/migrations"
	"github.com/gamehive/gamehive/pkg/cryptox"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "modernc.org/sqlite"
)

// Storage keys, matching the mobile client's key-value layout.
const (
	keyToken = "token"
	keyUser  = "user"
)

// Store is the durable local key-value store backing Session persistence.
// Values are sealed (AES-256-GCM) before they touch disk.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the store at the given SQLite path and applies any
// pending schema migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	s := &Store{db: db}
	if err := s.applyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate session store: %w", err)
	}

	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// applyMigrations applies the embedded migration files. Embedding keeps the
// binary self-contained; there is nothing to ship alongside it.
func (s *Store) applyMigrations() error {
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return err
	}

	source, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return err
	}

	instance, err := migrate.NewWithInstance("iofs", source, "", driver)
	if err != nil {
		return err
	}

	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}

// Save persists the session, replacing any previous one. Both keys are
// written in a single transaction so a crash can't leave a token without its
// user record.
func (s *Store) Save(ctx context.Context, sess Session) error {
	userJSON, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("failed to encode user record: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := putTx(ctx, tx, keyToken, []byte(sess.Token)); err != nil {
		return err
	}
	if err := putTx(ctx, tx, keyUser, userJSON); err != nil {
		return err
	}

	return tx.Commit()
}

// Load reads the persisted session. Returns ErrNoSession when either key is
// absent, and an error when a stored value cannot be unsealed or decoded.
func (s *Store) Load(ctx context.Context) (*Session, error) {
	token, err := s.get(ctx, keyToken)
	if err != nil {
		return nil, err
	}
	userJSON, err := s.get(ctx, keyUser)
	if err != nil {
		return nil, err
	}

	var user User
	if err := json.Unmarshal(userJSON, &user); err != nil {
		return nil, fmt.Errorf("failed to decode stored user record: %w", err)
	}

	return &Session{Token: string(token), User: user}, nil
}

// Clear removes any persisted session. Clearing an empty store is not an
// error.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM session_store WHERE key IN (?, ?)`, keyToken, keyUser)
	return err
}

func putTx(ctx context.Context, tx *sql.Tx, key string, value []byte) error {
	sealed, err := cryptox.Seal(value)
	if err != nil {
		return fmt.Errorf("failed to seal %s: %w", key, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO session_store (key, value, updated_at)
		VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		ON CONFLICT(key) DO UPDATE SET
			value      = excluded.value,
			updated_at = excluded.updated_at`,
		key, sealed)
	return err
}

func (s *Store) get(ctx context.Context, key string) ([]byte, error) {
	var sealed []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM session_store WHERE key = ?`, key).Scan(&sealed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}

	value, err := cryptox.Open(sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to unseal %s: %w", key, err)
	}
	return value, nil
}
