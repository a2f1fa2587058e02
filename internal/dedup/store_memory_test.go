package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certdedup/internal/adjudicate"
	id "certdedup/pkg/domain"
	"certdedup/pkg/platform/sentinel"
)

func testResult(subjectID id.SubjectID, courseID id.CourseID, hash string) Result {
	return Result{
		ID:              id.CheckID(uuid.New()),
		SubjectID:       subjectID,
		CourseID:        courseID,
		ItemID:          "item-1",
		ContentHash:     hash,
		Status:          adjudicate.StatusUnique,
		SimilarityScore: 0.12,
		CheckedAt:       time.Now().UTC(),
	}
}

func TestInMemoryResultStore(t *testing.T) {
	ctx := context.Background()
	subjectID := id.SubjectID(uuid.New())
	courseID := id.CourseID(uuid.New())

	t.Run("create then find", func(t *testing.T) {
		store := NewInMemoryResultStore()
		want := testResult(subjectID, courseID, "hash-a")
		require.NoError(t, store.Create(ctx, want))

		got, err := store.FindByHash(ctx, subjectID, courseID, "hash-a")
		require.NoError(t, err)
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Status, got.Status)
	})

	t.Run("duplicate key conflicts and keeps first row", func(t *testing.T) {
		store := NewInMemoryResultStore()
		first := testResult(subjectID, courseID, "hash-a")
		require.NoError(t, store.Create(ctx, first))

		second := testResult(subjectID, courseID, "hash-a")
		second.Status = adjudicate.StatusDuplicate
		assert.ErrorIs(t, store.Create(ctx, second), sentinel.ErrConflict)

		got, err := store.FindByHash(ctx, subjectID, courseID, "hash-a")
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)
		assert.Equal(t, adjudicate.StatusUnique, got.Status)
	})

	t.Run("key includes subject and course", func(t *testing.T) {
		store := NewInMemoryResultStore()
		require.NoError(t, store.Create(ctx, testResult(subjectID, courseID, "hash-a")))

		require.NoError(t, store.Create(ctx, testResult(id.SubjectID(uuid.New()), courseID, "hash-a")))
		require.NoError(t, store.Create(ctx, testResult(subjectID, id.CourseID(uuid.New()), "hash-a")))

		_, err := store.FindByHash(ctx, subjectID, courseID, "hash-b")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
