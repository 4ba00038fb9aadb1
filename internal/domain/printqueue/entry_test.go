package printqueue

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/stitchline/backoffice/internal/domain/shared"
)

func TestNewQueueEntry_Success(t *testing.T) {
	lineItemID := uuid.New()
	actorID := uuid.New()

	entry, err := NewQueueEntry(lineItemID, actorID)

	assert.NoError(t, err)
	assert.Equal(t, lineItemID, entry.LineItemID)
	assert.Equal(t, actorID, entry.AddedBy)
	assert.False(t, entry.IsPrinted)
	assert.Nil(t, entry.PrintedAt)
	assert.Equal(t, entry.CreatedAt, entry.AddedAt)
}

func TestNewQueueEntry_EmptyLineItem(t *testing.T) {
	_, err := NewQueueEntry(uuid.Nil, uuid.New())

	assert.Error(t, err)
	assert.Equal(t, "INVALID_LINE_ITEM", shared.ErrorCode(err))
}

func TestNewQueueEntry_EmptyActor(t *testing.T) {
	_, err := NewQueueEntry(uuid.New(), uuid.Nil)

	assert.Error(t, err)
	assert.Equal(t, "INVALID_ACTOR", shared.ErrorCode(err))
}

func TestQueueEntry_MarkPrinted(t *testing.T) {
	entry, _ := NewQueueEntry(uuid.New(), uuid.New())
	printer := uuid.New()

	err := entry.MarkPrinted(printer)

	assert.NoError(t, err)
	assert.True(t, entry.IsPrinted)
	assert.NotNil(t, entry.PrintedAt)
	assert.Equal(t, printer, *entry.PrintedBy)
}

func TestQueueEntry_MarkPrinted_AlreadyPrinted(t *testing.T) {
	entry, _ := NewQueueEntry(uuid.New(), uuid.New())
	_ = entry.MarkPrinted(uuid.New())

	err := entry.MarkPrinted(uuid.New())

	assert.Error(t, err)
	assert.Equal(t, "INVALID_STATE", shared.ErrorCode(err))
}

func TestQueueEntry_Reset_MovesToBackOfQueue(t *testing.T) {
	entry, _ := NewQueueEntry(uuid.New(), uuid.New())
	_ = entry.MarkPrinted(uuid.New())
	originalAddedAt := entry.AddedAt
	requeuer := uuid.New()

	time.Sleep(time.Millisecond)
	err := entry.Reset(requeuer)

	assert.NoError(t, err)
	assert.False(t, entry.IsPrinted)
	assert.Nil(t, entry.PrintedAt)
	assert.Nil(t, entry.PrintedBy)
	assert.Equal(t, requeuer, entry.AddedBy)
	assert.True(t, entry.AddedAt.After(originalAddedAt))
}

func TestQueueEntry_Reset_UnprintedRejected(t *testing.T) {
	entry, _ := NewQueueEntry(uuid.New(), uuid.New())

	err := entry.Reset(uuid.New())

	assert.Error(t, err)
	assert.Equal(t, "INVALID_STATE", shared.ErrorCode(err))
}

func TestQueueEntry_Age(t *testing.T) {
	entry, _ := NewQueueEntry(uuid.New(), uuid.New())
	entry.AddedAt = time.Now().Add(-time.Hour)

	age := entry.Age(time.Now())

	assert.InDelta(t, time.Hour.Seconds(), age.Seconds(), 1)
}
