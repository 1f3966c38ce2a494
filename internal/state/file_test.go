package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/deal-notifier/pkg/types"
)

func TestFileStore_Load_FirstRun(t *testing.T) {
	t.Parallel()

	s := NewFileStore(filepath.Join(t.TempDir(), "sent_ids.json"))

	st, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, st.SentIDs.Len())
	assert.Equal(t, 0, st.LastBatchCount)
}

func TestFileStore_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		state *domain.NotificationState
	}{
		{
			name:  "empty set",
			state: domain.NewNotificationState(),
		},
		{
			name: "numeric ids",
			state: &domain.NotificationState{
				SentIDs:        domain.NewIDSet("1", "2", "3"),
				LastBatchCount: 1,
			},
		},
		{
			name: "mixed ids",
			state: &domain.NotificationState{
				SentIDs:        domain.NewIDSet("10", "2", "abc-7"),
				LastBatchCount: 3,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := NewFileStore(filepath.Join(t.TempDir(), "sent_ids.json"))
			ctx := context.Background()

			require.NoError(t, s.Save(ctx, tt.state))

			got, err := s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.state.SentIDs.Sorted(), got.SentIDs.Sorted())
			assert.Equal(t, tt.state.LastBatchCount, got.LastBatchCount)
		})
	}
}

func TestFileStore_Save_Layout(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sent_ids.json")
	s := NewFileStore(path)

	require.NoError(t, s.Save(context.Background(), &domain.NotificationState{
		SentIDs:        domain.NewIDSet("6", "5"),
		LastBatchCount: 2,
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ids": [5, 6], "last_message_count": 2}`, string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(stateFileMode), info.Mode().Perm())
}

func TestFileStore_Save_ReplacesAndLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "sent_ids.json")
	s := NewFileStore(path)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &domain.NotificationState{SentIDs: domain.NewIDSet("1"), LastBatchCount: 1}))
	require.NoError(t, s.Save(ctx, &domain.NotificationState{SentIDs: domain.NewIDSet("1", "2"), LastBatchCount: 1}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "sent_ids.json", entries[0].Name())

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.DealID{"1", "2"}, got.SentIDs.Sorted())
}

func TestFileStore_Save_CreatesDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "state", "sent_ids.json")
	s := NewFileStore(path)

	require.NoError(t, s.Save(context.Background(), domain.NewNotificationState()))
	_, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path())
}

func TestSyncDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, syncDir(dir))

	err := syncDir(filepath.Join(dir, "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening state directory")
}

func TestFileStore_Save_Nil(t *testing.T) {
	t.Parallel()

	s := NewFileStore(filepath.Join(t.TempDir(), "sent_ids.json"))
	require.Error(t, s.Save(context.Background(), nil))
}

func TestFileStore_Load_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{name: "corrupt json", content: `{"ids": [1, 2`, errMsg: "parsing state file"},
		{name: "empty file", content: ``, errMsg: "parsing state file"},
		{name: "negative count", content: `{"ids": [], "last_message_count": -1}`, errMsg: "negative"},
		{name: "bad id", content: `{"ids": [true]}`, errMsg: "parsing state file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "sent_ids.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := NewFileStore(path).Load(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestFileStore_Load_LegacyDocument(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sent_ids.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"ids": [101, 102, 103]}`), 0o600))

	st, err := NewFileStore(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.DealID{"101", "102", "103"}, st.SentIDs.Sorted())
	assert.Equal(t, 0, st.LastBatchCount)
}

func TestFileStore_Load_UnreadablePath(t *testing.T) {
	t.Parallel()

	// A directory where the file should be cannot be read as a document.
	dir := t.TempDir()

	_, err := NewFileStore(dir).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading state file")
}

// compile-time interface checks.
var (
	_ Store  = (*FileStore)(nil)
	_ Store  = (*MemoryStore)(nil)
	_ Store  = (*PostgresStore)(nil)
	_ Pinger = (*PostgresStore)(nil)
)
