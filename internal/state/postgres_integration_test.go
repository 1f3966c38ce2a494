//go:build integration

package state_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/donaldgifford/deal-notifier/internal/state"
	domain "github.com/donaldgifford/deal-notifier/pkg/types"
)

func setupPostgres(t *testing.T) *state.PostgresStore {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("deal_notifier_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := state.NewPostgresStore(ctx, connStr)
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
	})

	require.NoError(t, s.Migrate(ctx))

	return s
}

func TestPostgresStore(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, s.Ping(ctx))
	})

	t.Run("migrate is idempotent", func(t *testing.T) {
		require.NoError(t, s.Migrate(ctx))
	})

	t.Run("first run is empty", func(t *testing.T) {
		st, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, st.SentIDs.Len())
		assert.Equal(t, 0, st.LastBatchCount)
	})

	t.Run("empty save round-trips", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, domain.NewNotificationState()))

		st, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, st.SentIDs.Len())
		assert.Equal(t, 0, st.LastBatchCount)
	})

	t.Run("save and load", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, &domain.NotificationState{
			SentIDs:        domain.NewIDSet("1", "2"),
			LastBatchCount: 2,
		}))

		st, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []domain.DealID{"1", "2"}, st.SentIDs.Sorted())
		assert.Equal(t, 2, st.LastBatchCount)
	})

	t.Run("later save grows the set", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, &domain.NotificationState{
			SentIDs:        domain.NewIDSet("1", "2", "3", "abc"),
			LastBatchCount: 2,
		}))

		st, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []domain.DealID{"1", "2", "3", "abc"}, st.SentIDs.Sorted())
		assert.Equal(t, 2, st.LastBatchCount)
	})

	t.Run("nil state", func(t *testing.T) {
		require.Error(t, s.Save(ctx, nil))
	})
}
