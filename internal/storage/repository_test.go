package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notas/internal/core"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "notas.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedUser(t *testing.T, repo *Repository, username string) int64 {
	t.Helper()
	id, err := repo.CreateUser(context.Background(), username, "digest")
	require.NoError(t, err)
	return id
}

func TestCreateUserDuplicate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedUser(t, repo, "maria")
	_, err := repo.CreateUser(ctx, "maria", "other")
	assert.ErrorIs(t, err, ErrDuplicateUser)

	u, err := repo.UserByUsername(ctx, "maria")
	require.NoError(t, err)
	assert.Equal(t, "digest", u.PasswordHash)

	_, err = repo.UserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordCRUDScopedByOwner(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := seedUser(t, repo, "owner")
	other := seedUser(t, repo, "other")

	id, err := repo.CreateRecord(ctx, core.Record{
		UserID:  owner,
		Date:    "2025-01-05",
		Company: "Acme",
		Number:  "10",
		Amount:  core.Money{Cents: 10000},
	})
	require.NoError(t, err)

	// The other user sees nothing.
	records, err := repo.ListRecords(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, records)

	// An update against a record the requester does not own is ErrNotFound
	// and leaves the row untouched.
	err = repo.UpdateRecord(ctx, core.Record{
		ID: id, UserID: other,
		Date: "2025-06-01", Company: "Hijack", Number: "99",
	})
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := repo.GetRecord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Company)

	// The owner can replace every field.
	err = repo.UpdateRecord(ctx, core.Record{
		ID: id, UserID: owner,
		Date: "2025-01-06", Company: "Acme Ltda", Number: "10b",
		Amount: core.Money{Cents: 12550}, Note: "corrigida",
	})
	require.NoError(t, err)

	got, err = repo.GetRecord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltda", got.Company)
	assert.Equal(t, int64(12550), got.Amount.Cents)

	// Delete by the wrong user fails; by the owner succeeds.
	_, err = repo.DeleteRecord(ctx, id, other)
	assert.ErrorIs(t, err, ErrNotFound)
	deleted, err := repo.DeleteRecord(ctx, id, owner)
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltda", deleted.Company)

	_, err = repo.GetRecord(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListRecordsOrderedByDateDescending(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := seedUser(t, repo, "owner")

	for _, d := range []string{"2025-01-05", "2025-02-01", "2025-01-20"} {
		_, err := repo.CreateRecord(ctx, core.Record{
			UserID: owner, Date: d, Company: "C", Number: "1",
		})
		require.NoError(t, err)
	}

	records, err := repo.ListRecords(ctx, owner)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "2025-02-01", records[0].Date)
	assert.Equal(t, "2025-01-20", records[1].Date)
	assert.Equal(t, "2025-01-05", records[2].Date)
}

func TestSyncBookkeeping(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := seedUser(t, repo, "owner")

	id, err := repo.CreateRecord(ctx, core.Record{
		UserID: owner, Date: "2025-01-05", Company: "Acme", Number: "10",
	})
	require.NoError(t, err)

	pending, err := repo.PendingSync(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, id, pending[0].ID)
	assert.Equal(t, int64(1), pending[0].Version)

	require.NoError(t, repo.MarkSynced(ctx, id, 1))
	pending, err = repo.PendingSync(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// An update bumps the version and re-queues the record; marking the
	// old version synced must not clear the newer pending state.
	require.NoError(t, repo.UpdateRecord(ctx, core.Record{
		ID: id, UserID: owner, Date: "2025-01-06", Company: "Acme", Number: "10",
	}))
	require.NoError(t, repo.MarkSynced(ctx, id, 1))
	pending, err = repo.PendingSync(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(2), pending[0].Version)
}

func TestDeletingUserCascadesToRecords(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := seedUser(t, repo, "owner")

	id, err := repo.CreateRecord(ctx, core.Record{
		UserID: owner, Date: "2025-01-05", Company: "Acme", Number: "10",
	})
	require.NoError(t, err)

	_, err = repo.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, owner)
	require.NoError(t, err)

	_, err = repo.GetRecord(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}
