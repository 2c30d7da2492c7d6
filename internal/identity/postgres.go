package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/chattrust/internal/common"
	"github.com/dmitrijs2005/chattrust/internal/identity/migrations"
)

// PostgresStore persists identities in PostgreSQL via the pgx stdlib
// driver.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens dsn, runs embedded migrations and returns the
// store.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.runMigrations(ctx); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return s, nil
}

func (s *PostgresStore) runMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.UpContext(ctx, s.db, "."); err != nil {
		return err
	}

	return nil
}

// Conn exposes the underlying handle for lifecycle management.
func (s *PostgresStore) Conn() *sql.DB {
	return s.db
}

func (s *PostgresStore) Get(ctx context.Context, username string) (*Identity, error) {
	query :=
		`SELECT username, srp_salt, srp_verifier, long_term_public_key FROM identities
		 WHERE username = $1
		 `

	id := &Identity{}
	err := s.db.QueryRowContext(ctx, query, username).
		Scan(&id.Username, &id.SRPSalt, &id.SRPVerifier, &id.LongTermPublicKey)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return id, nil
}

func (s *PostgresStore) Put(ctx context.Context, identity *Identity) error {
	if identity == nil || identity.Username == "" {
		return common.ErrInvalidInput
	}

	query :=
		`INSERT INTO identities (username, srp_salt, srp_verifier, long_term_public_key)
         VALUES ($1, $2, $3, $4)
		 ON CONFLICT (username) DO UPDATE
		 SET srp_salt = EXCLUDED.srp_salt,
		     srp_verifier = EXCLUDED.srp_verifier,
		     long_term_public_key = EXCLUDED.long_term_public_key
		 `

	_, err := s.db.ExecContext(ctx, query,
		identity.Username, identity.SRPSalt, identity.SRPVerifier, identity.LongTermPublicKey)

	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	return nil
}
