package repository

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
)

func newTestMemoryRepo(ttl time.Duration) (*memSession, *time.Time) {
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	repo, _ := NewMemorySessionRepository(ttl).(*memSession)
	repo.now = func() time.Time { return clock }

	return repo, &clock
}

func sessionWithMove() *entity.Session {
	session := entity.NewSession("123")

	loc := entity.LocationOf(4)
	session.History = append(session.History, entity.MoveRecord{
		Board:    entity.Board{}.Place(4, entity.PlayerX),
		Location: &loc,
	})
	session.CurrentMove = 1
	session.Counter.Clicks = 3

	return session
}

func TestMemorySessionRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("GetByID_Success", func(t *testing.T) {
		repo, _ := newTestMemoryRepo(0)

		// Given: a stored session
		session := sessionWithMove()
		require.NoError(t, repo.CreateOrUpdate(ctx, session))

		// When: GetByID is called with existing ID
		retrieved, err := repo.GetByID(ctx, session.ID)

		// Then: the retrieved session should match the saved one
		require.NoError(t, err)
		assert.Equal(t, session, retrieved)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		repo, _ := newTestMemoryRepo(0)

		// When: GetByID is called with non-existent ID
		retrieved, err := repo.GetByID(ctx, "9999999")

		// Then: an ErrSessionNotFound error should be returned
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
		assert.Nil(t, retrieved)
	})

	t.Run("Stored copy is isolated from the caller", func(t *testing.T) {
		repo, _ := newTestMemoryRepo(0)

		// Given: a stored session that the caller keeps mutating
		session := sessionWithMove()
		require.NoError(t, repo.CreateOrUpdate(ctx, session))

		session.History[1].Location.Row = 3
		session.Counter.Clicks = 100

		// When: reading it back
		retrieved, err := repo.GetByID(ctx, session.ID)

		// Then: the stored copy is unchanged
		require.NoError(t, err)
		assert.Equal(t, 2, retrieved.History[1].Location.Row)
		assert.Equal(t, 3, retrieved.Counter.Clicks)
	})

	t.Run("Expired session is gone", func(t *testing.T) {
		repo, clock := newTestMemoryRepo(time.Minute)

		// Given: a stored session
		require.NoError(t, repo.CreateOrUpdate(ctx, sessionWithMove()))

		// When: the ttl passes without access
		*clock = clock.Add(time.Minute)

		// Then: the session is not found
		_, err := repo.GetByID(ctx, "123")
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})

	t.Run("Reads slide the expiry", func(t *testing.T) {
		repo, clock := newTestMemoryRepo(time.Minute)

		// Given: a stored session read shortly before it expires
		require.NoError(t, repo.CreateOrUpdate(ctx, sessionWithMove()))

		*clock = clock.Add(50 * time.Second)
		_, err := repo.GetByID(ctx, "123")
		require.NoError(t, err)

		// When: another 50 seconds pass
		*clock = clock.Add(50 * time.Second)

		// Then: the session is still there
		_, err = repo.GetByID(ctx, "123")
		require.NoError(t, err)
	})
}

func TestMemorySessionRepository_DeleteByID(t *testing.T) {
	ctx := context.Background()

	t.Run("DeleteByID_Success", func(t *testing.T) {
		repo, _ := newTestMemoryRepo(0)

		// Given: a stored session
		require.NoError(t, repo.CreateOrUpdate(ctx, sessionWithMove()))

		// When: DeleteByID is called with existing ID
		err := repo.DeleteByID(ctx, "123")

		// Then: no error should be returned and the session is gone
		require.NoError(t, err)

		_, err = repo.GetByID(ctx, "123")
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})

	t.Run("DeleteByID_NotFound", func(t *testing.T) {
		repo, _ := newTestMemoryRepo(0)

		err := repo.DeleteByID(ctx, "9999999")

		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})
}

func TestMemorySessionRepository_Sweep(t *testing.T) {
	ctx := context.Background()

	t.Run("Writes drop sessions nobody touched again", func(t *testing.T) {
		repo, clock := newTestMemoryRepo(time.Minute)

		// Given: many sessions that are never read again
		for i := 0; i < 1000; i++ {
			require.NoError(t, repo.CreateOrUpdate(ctx, entity.NewSession("stale-"+strconv.Itoa(i))))
		}

		// When: an hour later a new session is written
		*clock = clock.Add(time.Hour)
		require.NoError(t, repo.CreateOrUpdate(ctx, entity.NewSession("fresh")))

		// Then: only the fresh session remains in memory
		assert.Len(t, repo.sessions, 1)
		assert.Contains(t, repo.sessions, "fresh")
	})

	t.Run("Live sessions survive a sweep", func(t *testing.T) {
		repo, clock := newTestMemoryRepo(time.Minute)

		// Given: one session written early and one shortly before the sweep
		require.NoError(t, repo.CreateOrUpdate(ctx, entity.NewSession("old")))
		*clock = clock.Add(50 * time.Second)
		require.NoError(t, repo.CreateOrUpdate(ctx, entity.NewSession("recent")))

		// When: a write happens once the first has expired
		*clock = clock.Add(20 * time.Second)
		require.NoError(t, repo.CreateOrUpdate(ctx, entity.NewSession("fresh")))

		// Then: the expired one is gone and the recent one is still readable
		assert.NotContains(t, repo.sessions, "old")

		_, err := repo.GetByID(ctx, "recent")
		require.NoError(t, err)
	})

	t.Run("Sessions without ttl are never swept", func(t *testing.T) {
		repo, clock := newTestMemoryRepo(0)

		require.NoError(t, repo.CreateOrUpdate(ctx, entity.NewSession("kept")))
		*clock = clock.Add(24 * time.Hour)
		require.NoError(t, repo.CreateOrUpdate(ctx, entity.NewSession("fresh")))

		assert.Len(t, repo.sessions, 2)
	})
}
