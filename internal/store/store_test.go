package store

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbbyGrylls/impetus9-backend/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testRegistration(event, team string, createdAt time.Time, members ...model.TeamMember) *model.Registration {
	return &model.Registration{
		ID:              model.NewRegistrationID(),
		EventName:       event,
		TeamName:        team,
		CapName:         "Captain " + team,
		CapPhone:        "9876543210",
		CapRoll:         "101",
		ParticipantType: model.ParticipantTypeInternal,
		Members:         members,
		CreatedAt:       createdAt,
	}
}

func TestCreateAndFetchRegistrations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	reg := testRegistration("Hackathon", "Alpha", now,
		model.TeamMember{Name: "Bob", Roll: "102", Phone: "9000000001"},
		model.TeamMember{Name: "Carol", Roll: "103", Phone: "9000000002"},
	)
	require.NoError(t, s.CreateRegistration(ctx, reg))

	regs, err := s.RegistrationsByEvent(ctx, "Hackathon")
	require.NoError(t, err)
	require.Len(t, regs, 1)

	got := regs[0]
	assert.Equal(t, reg.ID, got.ID)
	assert.Equal(t, "Alpha", got.TeamName)
	assert.Equal(t, model.ParticipantTypeInternal, got.ParticipantType)
	require.Len(t, got.Members, 2)
	assert.Equal(t, "Bob", got.Members[0].Name)
	assert.Equal(t, "Carol", got.Members[1].Name)
	assert.WithinDuration(t, now, got.CreatedAt, time.Second)
}

func TestRegistrationsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, s.CreateRegistration(ctx, testRegistration("Hackathon", "Oldest", base.Add(-2*time.Minute))))
	require.NoError(t, s.CreateRegistration(ctx, testRegistration("Hackathon", "Newest", base)))
	require.NoError(t, s.CreateRegistration(ctx, testRegistration("Hackathon", "Middle", base.Add(-time.Minute))))

	// Registrations for another event must not leak in.
	require.NoError(t, s.CreateRegistration(ctx, testRegistration("RoboRace", "Other", base)))

	regs, err := s.RegistrationsByEvent(ctx, "Hackathon")
	require.NoError(t, err)
	require.Len(t, regs, 3)
	assert.Equal(t, "Newest", regs[0].TeamName)
	assert.Equal(t, "Middle", regs[1].TeamName)
	assert.Equal(t, "Oldest", regs[2].TeamName)
}

func TestRegistrationsByEventEmpty(t *testing.T) {
	s := newTestStore(t)

	regs, err := s.RegistrationsByEvent(context.Background(), "Hackathon")
	require.NoError(t, err)
	assert.Empty(t, regs)
}

func TestEnsureLockIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	lock, err := s.EnsureLock(ctx, "Hackathon")
	require.NoError(t, err)
	assert.False(t, lock.VCardsDownloaded)
	assert.Nil(t, lock.FirstDownloaderName)
	assert.Nil(t, lock.DownloadTime)

	// A second ensure returns the same unclaimed record.
	again, err := s.EnsureLock(ctx, "Hackathon")
	require.NoError(t, err)
	assert.False(t, again.VCardsDownloaded)
}

func TestEnsureLockDoesNotResetClaim(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.EnsureLock(ctx, "Hackathon")
	require.NoError(t, err)

	claimedAt := time.Now().UTC().Truncate(time.Second)
	won, err := s.TryClaimLock(ctx, "Hackathon", "Dana", claimedAt)
	require.NoError(t, err)
	require.True(t, won)

	lock, err := s.EnsureLock(ctx, "Hackathon")
	require.NoError(t, err)
	assert.True(t, lock.VCardsDownloaded)
	require.NotNil(t, lock.FirstDownloaderName)
	assert.Equal(t, "Dana", *lock.FirstDownloaderName)
	require.NotNil(t, lock.DownloadTime)
	assert.WithinDuration(t, claimedAt, *lock.DownloadTime, time.Second)
}

func TestGetLockNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetLock(context.Background(), "NeverReferenced")
	assert.ErrorIs(t, err, ErrLockNotFound)
}

func TestTryClaimLockSecondAttemptLoses(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.EnsureLock(ctx, "Hackathon")
	require.NoError(t, err)

	won, err := s.TryClaimLock(ctx, "Hackathon", "Dana", time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, won)

	won, err = s.TryClaimLock(ctx, "Hackathon", "Evan", time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, won)

	// The original claimant must survive the losing attempt untouched.
	lock, err := s.GetLock(ctx, "Hackathon")
	require.NoError(t, err)
	require.NotNil(t, lock.FirstDownloaderName)
	assert.Equal(t, "Dana", *lock.FirstDownloaderName)
}

// TestTryClaimLockConcurrent verifies the claim transition happens exactly once
// under concurrent coordinators racing for the same event.
func TestTryClaimLockConcurrent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.EnsureLock(ctx, "Hackathon")
	require.NoError(t, err)

	const coordinators = 16
	var wins atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < coordinators; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			<-start
			won, err := s.TryClaimLock(ctx, "Hackathon", "Coordinator"+string(rune('A'+n)), time.Now().UTC())
			assert.NoError(t, err)
			if won {
				wins.Add(1)
			}
		}(i)
	}

	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load(), "exactly one coordinator must win the claim")

	lock, err := s.GetLock(ctx, "Hackathon")
	require.NoError(t, err)
	assert.True(t, lock.VCardsDownloaded)
	assert.NotNil(t, lock.FirstDownloaderName)
	assert.NotNil(t, lock.DownloadTime)
}

func TestLocksAreIndependentPerEvent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.EnsureLock(ctx, "Hackathon")
	require.NoError(t, err)
	_, err = s.EnsureLock(ctx, "RoboRace")
	require.NoError(t, err)

	won, err := s.TryClaimLock(ctx, "Hackathon", "Dana", time.Now().UTC())
	require.NoError(t, err)
	require.True(t, won)

	other, err := s.GetLock(ctx, "RoboRace")
	require.NoError(t, err)
	assert.False(t, other.VCardsDownloaded)
}
