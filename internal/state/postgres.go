package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/donaldgifford/deal-notifier/pkg/types"
)

const defaultPoolSize = 4

// PostgresStore implements Store on PostgreSQL. Each reported ID is a row in
// notified_deals; the last batch size lives in the single-row
// notification_state table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore with connection pooling.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	cfg.MaxConns = defaultPoolSize

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

// Load reads both tables in one read-only snapshot.
func (s *PostgresStore) Load(ctx context.Context) (*domain.NotificationState, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("beginning load transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `SELECT deal_id FROM notified_deals`)
	if err != nil {
		return nil, fmt.Errorf("querying notified deals: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning notified deals: %w", err)
	}

	var count int
	err = tx.QueryRow(ctx, `SELECT last_batch_count FROM notification_state WHERE id = 1`).Scan(&count)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("querying notification state: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing load transaction: %w", err)
	}

	st := domain.NewNotificationState()
	for _, id := range ids {
		st.SentIDs.Add(domain.DealID(id))
	}
	st.LastBatchCount = count
	return st, nil
}

// Save records every ID of st and the batch count in one transaction.
// Rows are only ever added, matching the monotonic growth of the sent set.
func (s *PostgresStore) Save(ctx context.Context, st *domain.NotificationState) error {
	if st == nil {
		return errors.New("saving nil state")
	}

	ids := make([]string, 0, st.SentIDs.Len())
	for _, id := range st.SentIDs.Sorted() {
		ids = append(ids, id.String())
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning save transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if len(ids) > 0 {
		if _, err := tx.Exec(ctx, `
			INSERT INTO notified_deals (deal_id)
			SELECT unnest(@ids::text[])
			ON CONFLICT (deal_id) DO NOTHING`,
			pgx.NamedArgs{"ids": ids},
		); err != nil {
			return fmt.Errorf("inserting notified deals: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO notification_state (id, last_batch_count, updated_at)
		VALUES (1, @count, now())
		ON CONFLICT (id) DO UPDATE
		SET last_batch_count = EXCLUDED.last_batch_count,
		    updated_at = EXCLUDED.updated_at`,
		pgx.NamedArgs{"count": st.LastBatchCount},
	); err != nil {
		return fmt.Errorf("upserting notification state: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing save transaction: %w", err)
	}
	return nil
}
