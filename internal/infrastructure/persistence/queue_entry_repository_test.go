package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/stitchline/backoffice/internal/domain/printqueue"
	"github.com/stitchline/backoffice/internal/domain/shared"
)

// newMockQueueEntryRepository creates a GormQueueEntryRepository with a mocked SQL connection
func newMockQueueEntryRepository(t *testing.T) (*GormQueueEntryRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormQueueEntryRepository(gormDB), mock, mockDB
}

func queueEntryColumns() []string {
	return []string{"id", "line_item_id", "added_at", "added_by", "is_printed", "printed_at", "printed_by", "created_at", "updated_at"}
}

func TestGormQueueEntryRepository_FindByID(t *testing.T) {
	t.Run("finds existing entry", func(t *testing.T) {
		repo, mock, mockDB := newMockQueueEntryRepository(t)
		defer mockDB.Close()

		entryID := uuid.New()
		lineItemID := uuid.New()
		actorID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows(queueEntryColumns()).
			AddRow(entryID, lineItemID, now, actorID, false, nil, nil, now, now)

		mock.ExpectQuery(`SELECT \* FROM "print_queue_entries" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(entryID, 1).
			WillReturnRows(rows)

		entry, err := repo.FindByID(context.Background(), entryID)

		assert.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, entryID, entry.ID)
		assert.Equal(t, lineItemID, entry.LineItemID)
		assert.False(t, entry.IsPrinted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing entry", func(t *testing.T) {
		repo, mock, mockDB := newMockQueueEntryRepository(t)
		defer mockDB.Close()

		entryID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "print_queue_entries" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(entryID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		entry, err := repo.FindByID(context.Background(), entryID)

		assert.Nil(t, entry)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormQueueEntryRepository_FindUnprinted(t *testing.T) {
	t.Run("returns entries oldest first with limit", func(t *testing.T) {
		repo, mock, mockDB := newMockQueueEntryRepository(t)
		defer mockDB.Close()

		actorID := uuid.New()
		now := time.Now()
		first := uuid.New()
		second := uuid.New()

		rows := sqlmock.NewRows(queueEntryColumns()).
			AddRow(first, uuid.New(), now.Add(-2*time.Hour), actorID, false, nil, nil, now, now).
			AddRow(second, uuid.New(), now.Add(-time.Hour), actorID, false, nil, nil, now, now)

		mock.ExpectQuery(`SELECT \* FROM "print_queue_entries" WHERE is_printed = \$1 ORDER BY added_at ASC, id ASC LIMIT .*`).
			WithArgs(false, 4).
			WillReturnRows(rows)

		entries, err := repo.FindUnprinted(context.Background(), 4)

		assert.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, first, entries[0].ID)
		assert.Equal(t, second, entries[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("omits limit clause when limit is zero", func(t *testing.T) {
		repo, mock, mockDB := newMockQueueEntryRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "print_queue_entries" WHERE is_printed = \$1 ORDER BY added_at ASC, id ASC$`).
			WithArgs(false).
			WillReturnRows(sqlmock.NewRows(queueEntryColumns()))

		entries, err := repo.FindUnprinted(context.Background(), 0)

		assert.NoError(t, err)
		assert.Empty(t, entries)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormQueueEntryRepository_Enqueue(t *testing.T) {
	lockedSelect := `SELECT \* FROM "print_queue_entries" WHERE line_item_id IN .* ORDER BY line_item_id, added_at DESC FOR UPDATE`

	t.Run("creates an entry when the line item has none", func(t *testing.T) {
		repo, mock, mockDB := newMockQueueEntryRepository(t)
		defer mockDB.Close()

		lineItemID := uuid.New()
		actorID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(lockedSelect).
			WillReturnRows(sqlmock.NewRows(queueEntryColumns()))
		// is_printed carries a column default, so the insert returns it
		mock.ExpectQuery(`INSERT INTO "print_queue_entries"`).
			WillReturnRows(sqlmock.NewRows([]string{"is_printed"}).AddRow(false))
		mock.ExpectCommit()

		results, err := repo.Enqueue(context.Background(), []uuid.UUID{lineItemID}, actorID)

		assert.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, printqueue.EnqueueCreated, results[0].Outcome)
		require.NotNil(t, results[0].Entry)
		assert.Equal(t, lineItemID, results[0].Entry.LineItemID)
		assert.False(t, results[0].Entry.IsPrinted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("skips a line item that is already waiting", func(t *testing.T) {
		repo, mock, mockDB := newMockQueueEntryRepository(t)
		defer mockDB.Close()

		entryID := uuid.New()
		lineItemID := uuid.New()
		actorID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows(queueEntryColumns()).
			AddRow(entryID, lineItemID, now, actorID, false, nil, nil, now, now)

		mock.ExpectBegin()
		mock.ExpectQuery(lockedSelect).WillReturnRows(rows)
		mock.ExpectCommit()

		results, err := repo.Enqueue(context.Background(), []uuid.UUID{lineItemID}, actorID)

		assert.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, printqueue.EnqueueSkipped, results[0].Outcome)
		require.NotNil(t, results[0].Entry)
		assert.Equal(t, entryID, results[0].Entry.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("resets a printed entry with a fresh added_at", func(t *testing.T) {
		repo, mock, mockDB := newMockQueueEntryRepository(t)
		defer mockDB.Close()

		entryID := uuid.New()
		lineItemID := uuid.New()
		actorID := uuid.New()
		printedBy := uuid.New()
		oldAddedAt := time.Now().Add(-48 * time.Hour)
		printedAt := time.Now().Add(-24 * time.Hour)
		now := time.Now()

		rows := sqlmock.NewRows(queueEntryColumns()).
			AddRow(entryID, lineItemID, oldAddedAt, actorID, true, printedAt, printedBy, now, now)

		mock.ExpectBegin()
		mock.ExpectQuery(lockedSelect).WillReturnRows(rows)
		mock.ExpectExec(`UPDATE "print_queue_entries" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		results, err := repo.Enqueue(context.Background(), []uuid.UUID{lineItemID}, actorID)

		assert.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, printqueue.EnqueueReset, results[0].Outcome)
		require.NotNil(t, results[0].Entry)
		assert.Equal(t, entryID, results[0].Entry.ID)
		assert.False(t, results[0].Entry.IsPrinted)
		assert.Nil(t, results[0].Entry.PrintedAt)
		assert.True(t, results[0].Entry.AddedAt.After(oldAddedAt))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("retries and skips when a concurrent insert wins the race", func(t *testing.T) {
		repo, mock, mockDB := newMockQueueEntryRepository(t)
		defer mockDB.Close()

		entryID := uuid.New()
		lineItemID := uuid.New()
		actorID := uuid.New()
		winner := uuid.New()
		now := time.Now()

		// First attempt sees no row, then loses the insert to the partial
		// unique index.
		mock.ExpectBegin()
		mock.ExpectQuery(lockedSelect).
			WillReturnRows(sqlmock.NewRows(queueEntryColumns()))
		mock.ExpectQuery(`INSERT INTO "print_queue_entries"`).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_print_queue_unprinted_line_item"})
		mock.ExpectRollback()

		// The rerun sees the winner's row and reports a skip.
		mock.ExpectBegin()
		mock.ExpectQuery(lockedSelect).
			WillReturnRows(sqlmock.NewRows(queueEntryColumns()).
				AddRow(entryID, lineItemID, now, winner, false, nil, nil, now, now))
		mock.ExpectCommit()

		results, err := repo.Enqueue(context.Background(), []uuid.UUID{lineItemID}, actorID)

		assert.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, printqueue.EnqueueSkipped, results[0].Outcome)
		require.NotNil(t, results[0].Entry)
		assert.Equal(t, entryID, results[0].Entry.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty input is a no-op", func(t *testing.T) {
		repo, mock, mockDB := newMockQueueEntryRepository(t)
		defer mockDB.Close()

		results, err := repo.Enqueue(context.Background(), nil, uuid.New())

		assert.NoError(t, err)
		assert.Nil(t, results)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormQueueEntryRepository_MarkPrinted(t *testing.T) {
	t.Run("marks all entries in one transaction", func(t *testing.T) {
		repo, mock, mockDB := newMockQueueEntryRepository(t)
		defer mockDB.Close()

		entryIDs := []uuid.UUID{uuid.New(), uuid.New()}
		actorID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows(queueEntryColumns()).
			AddRow(entryIDs[0], uuid.New(), now, actorID, false, nil, nil, now, now).
			AddRow(entryIDs[1], uuid.New(), now, actorID, false, nil, nil, now, now)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "print_queue_entries" WHERE id IN .* AND is_printed = .* FOR UPDATE`).
			WillReturnRows(rows)
		mock.ExpectExec(`UPDATE "print_queue_entries" SET`).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		err := repo.MarkPrinted(context.Background(), entryIDs, actorID)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when an entry was already printed", func(t *testing.T) {
		repo, mock, mockDB := newMockQueueEntryRepository(t)
		defer mockDB.Close()

		entryIDs := []uuid.UUID{uuid.New(), uuid.New()}
		actorID := uuid.New()
		now := time.Now()

		// Only one of the two rows is still unprinted
		rows := sqlmock.NewRows(queueEntryColumns()).
			AddRow(entryIDs[0], uuid.New(), now, actorID, false, nil, nil, now, now)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "print_queue_entries" WHERE id IN .* AND is_printed = .* FOR UPDATE`).
			WillReturnRows(rows)
		mock.ExpectRollback()

		err := repo.MarkPrinted(context.Background(), entryIDs, actorID)

		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		repo, mock, mockDB := newMockQueueEntryRepository(t)
		defer mockDB.Close()

		err := repo.MarkPrinted(context.Background(), nil, uuid.New())

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormQueueEntryRepository_Remove(t *testing.T) {
	t.Run("deletes entries", func(t *testing.T) {
		repo, mock, mockDB := newMockQueueEntryRepository(t)
		defer mockDB.Close()

		entryIDs := []uuid.UUID{uuid.New(), uuid.New()}

		mock.ExpectExec(`DELETE FROM "print_queue_entries" WHERE id IN`).
			WillReturnResult(sqlmock.NewResult(0, 2))

		err := repo.Remove(context.Background(), entryIDs)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found when nothing matched", func(t *testing.T) {
		repo, mock, mockDB := newMockQueueEntryRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`DELETE FROM "print_queue_entries" WHERE id IN`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Remove(context.Background(), []uuid.UUID{uuid.New()})

		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormQueueEntryRepository_DeletePrintedBefore(t *testing.T) {
	t.Run("reports deleted row count", func(t *testing.T) {
		repo, mock, mockDB := newMockQueueEntryRepository(t)
		defer mockDB.Close()

		cutoff := time.Now().AddDate(0, 0, -7)

		mock.ExpectExec(`DELETE FROM "print_queue_entries" WHERE is_printed = \$1 AND printed_at < \$2`).
			WithArgs(true, cutoff).
			WillReturnResult(sqlmock.NewResult(0, 5))

		deleted, err := repo.DeletePrintedBefore(context.Background(), cutoff)

		assert.NoError(t, err)
		assert.Equal(t, int64(5), deleted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormQueueEntryRepository_CountOrphaned(t *testing.T) {
	t.Run("counts entries without a line item", func(t *testing.T) {
		repo, mock, mockDB := newMockQueueEntryRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "print_queue_entries" WHERE NOT EXISTS`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		count, err := repo.CountOrphaned(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, int64(3), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormQueueEntryRepository_CountPrintedBefore(t *testing.T) {
	t.Run("counts printed entries past the cutoff", func(t *testing.T) {
		repo, mock, mockDB := newMockQueueEntryRepository(t)
		defer mockDB.Close()

		cutoff := time.Now().AddDate(0, 0, -7)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "print_queue_entries" WHERE is_printed = \$1 AND printed_at < \$2`).
			WithArgs(true, cutoff).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

		count, err := repo.CountPrintedBefore(context.Background(), cutoff)

		assert.NoError(t, err)
		assert.Equal(t, int64(12), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
