package waitlist

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-EnrollmentService/internal/domain"
	slotRepository "github.com/m04kA/SMC-EnrollmentService/internal/infra/storage/slot"
	waitlistRepository "github.com/m04kA/SMC-EnrollmentService/internal/infra/storage/waitlist"
	"github.com/m04kA/SMC-EnrollmentService/pkg/keymutex"
	"github.com/m04kA/SMC-EnrollmentService/pkg/types"
)

type fakeTimeProvider struct {
	now time.Time
}

func (f *fakeTimeProvider) Now() time.Time {
	return f.now
}

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

// memWaitlistRepo in-memory репозиторий с семантикой SQL-реализации
type memWaitlistRepo struct {
	mu      sync.Mutex
	nextID  int64
	entries map[int64]*domain.WaitlistEntry
}

func newMemWaitlistRepo() *memWaitlistRepo {
	return &memWaitlistRepo{entries: make(map[int64]*domain.WaitlistEntry)}
}

func (r *memWaitlistRepo) Create(_ context.Context, entry *domain.WaitlistEntry) (*domain.WaitlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	stored := *entry
	stored.ID = r.nextID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	r.entries[stored.ID] = &stored

	result := stored
	return &result, nil
}

func (r *memWaitlistRepo) GetActiveBySlot(_ context.Context, slotID int64, now time.Time) ([]*domain.WaitlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*domain.WaitlistEntry
	for _, e := range r.entries {
		if e.SlotID == slotID && e.ExpiresAt.After(now) {
			copied := *e
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Priority < result[j].Priority })
	return result, nil
}

func (r *memWaitlistRepo) GetActiveByStudent(_ context.Context, studentID int64, now time.Time) ([]*domain.WaitlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*domain.WaitlistEntry
	for _, e := range r.entries {
		if e.StudentID == studentID && e.ExpiresAt.After(now) {
			copied := *e
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *memWaitlistRepo) GetActiveByStudentAndSlot(_ context.Context, studentID, slotID int64, now time.Time) (*domain.WaitlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.StudentID == studentID && e.SlotID == slotID && e.ExpiresAt.After(now) {
			copied := *e
			return &copied, nil
		}
	}
	return nil, waitlistRepository.ErrEntryNotFound
}

func (r *memWaitlistRepo) CountActiveBySlot(_ context.Context, slotID int64, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, e := range r.entries {
		if e.SlotID == slotID && e.ExpiresAt.After(now) {
			count++
		}
	}
	return count, nil
}

func (r *memWaitlistRepo) GetExpiredBySlot(_ context.Context, slotID int64, now time.Time) ([]*domain.WaitlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*domain.WaitlistEntry
	for _, e := range r.entries {
		if e.SlotID == slotID && !e.ExpiresAt.After(now) {
			copied := *e
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Priority > result[j].Priority })
	return result, nil
}

func (r *memWaitlistRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return waitlistRepository.ErrEntryNotFound
	}
	delete(r.entries, id)
	return nil
}

func (r *memWaitlistRepo) ShiftPrioritiesAfter(_ context.Context, slotID int64, priority int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.SlotID == slotID && e.Priority > priority {
			e.Priority--
		}
	}
	return nil
}

type memSlotRepo struct {
	slots map[int64]*domain.Slot
}

func (r *memSlotRepo) GetByID(_ context.Context, id int64) (*domain.Slot, error) {
	slot, ok := r.slots[id]
	if !ok {
		return nil, slotRepository.ErrSlotNotFound
	}
	copied := *slot
	return &copied, nil
}

type memBookingRepo struct {
	booked map[[2]int64]bool
}

func (r *memBookingRepo) HasSeatOccupying(_ context.Context, studentID, slotID int64) (bool, error) {
	return r.booked[[2]int64{studentID, slotID}], nil
}

type fakeLedger struct {
	hasCapacity bool
}

func (f *fakeLedger) HasCapacity(context.Context, int64) (bool, error) {
	return f.hasCapacity, nil
}

type testEnv struct {
	service  *Service
	repo     *memWaitlistRepo
	slots    *memSlotRepo
	bookings *memBookingRepo
	clock    *fakeTimeProvider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	startTime, err := types.NewTimeStringFromString("10:00")
	require.NoError(t, err)

	slots := &memSlotRepo{slots: map[int64]*domain.Slot{
		1: {
			ID:              1,
			BranchID:        1,
			SlotDate:        time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
			StartTime:       startTime,
			DurationMinutes: 60,
			Capacity:        2,
		},
	}}

	repo := newMemWaitlistRepo()
	bookings := &memBookingRepo{booked: make(map[[2]int64]bool)}
	clock := &fakeTimeProvider{now: now}

	service := NewService(
		repo,
		slots,
		bookings,
		&fakeLedger{hasCapacity: false},
		keymutex.New(),
		24*time.Hour,
		nopLogger{},
	).WithTimeProvider(clock)

	return &testEnv{
		service:  service,
		repo:     repo,
		slots:    slots,
		bookings: bookings,
		clock:    clock,
	}
}

func TestEnqueue_AssignsPrioritiesInArrivalOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i, studentID := range []int64{101, 102, 103} {
		entry, err := env.service.Enqueue(ctx, studentID, 1)
		require.NoError(t, err)
		assert.Equal(t, i+1, entry.Priority)
		assert.Equal(t, env.clock.now.Add(24*time.Hour), entry.ExpiresAt)
	}

	entries, err := env.service.ListForSlot(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, int64(101), entries[0].StudentID)
	assert.Equal(t, int64(103), entries[2].StudentID)
}

func TestEnqueue_SlotNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.Enqueue(context.Background(), 101, 999)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestEnqueue_SlotInPast(t *testing.T) {
	env := newTestEnv(t)
	env.clock.now = time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC)

	_, err := env.service.Enqueue(context.Background(), 101, 1)
	assert.ErrorIs(t, err, ErrSlotInPast)
}

func TestEnqueue_DuplicateEntry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.service.Enqueue(ctx, 101, 1)
	require.NoError(t, err)

	_, err = env.service.Enqueue(ctx, 101, 1)
	assert.ErrorIs(t, err, ErrAlreadyWaitlisted)

	// Запись не задублировалась
	count, err := env.repo.CountActiveBySlot(ctx, 1, env.clock.now)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestEnqueue_AlreadyBooked(t *testing.T) {
	env := newTestEnv(t)
	env.bookings.booked[[2]int64{101, 1}] = true

	_, err := env.service.Enqueue(context.Background(), 101, 1)
	assert.ErrorIs(t, err, ErrAlreadyBooked)
}

func TestEnqueue_PurgesExpiredEntriesFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Студент 101 на позиции 1 с истекшим TTL, студент 102 активен на позиции 2
	_, err := env.repo.Create(ctx, &domain.WaitlistEntry{
		StudentID: 101, SlotID: 1, Priority: 1,
		ExpiresAt: env.clock.now.Add(-time.Minute),
	})
	require.NoError(t, err)
	_, err = env.repo.Create(ctx, &domain.WaitlistEntry{
		StudentID: 102, SlotID: 1, Priority: 2,
		ExpiresAt: env.clock.now.Add(time.Hour),
	})
	require.NoError(t, err)

	entry, err := env.service.Enqueue(ctx, 103, 1)
	require.NoError(t, err)

	// Просроченная запись вытеснена, 102 сдвинут на позицию 1, новичок получил 2
	assert.Equal(t, 2, entry.Priority)

	entries, err := env.service.ListForSlot(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(102), entries[0].StudentID)
	assert.Equal(t, 1, entries[0].Priority)
	assert.Equal(t, int64(103), entries[1].StudentID)
	assert.Equal(t, 2, entries[1].Priority)
}

func TestLeave_RenumbersRemainingEntries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, studentID := range []int64{101, 102, 103} {
		_, err := env.service.Enqueue(ctx, studentID, 1)
		require.NoError(t, err)
	}

	require.NoError(t, env.service.Leave(ctx, 102, 1))

	entries, err := env.service.ListForSlot(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(101), entries[0].StudentID)
	assert.Equal(t, 1, entries[0].Priority)
	assert.Equal(t, int64(103), entries[1].StudentID)
	assert.Equal(t, 2, entries[1].Priority)
}

func TestLeave_NotWaitlisted(t *testing.T) {
	env := newTestEnv(t)

	err := env.service.Leave(context.Background(), 101, 1)
	assert.ErrorIs(t, err, ErrNotWaitlisted)
}

func TestPopNext_ReturnsHeadInFIFOOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, studentID := range []int64{101, 102} {
		_, err := env.service.Enqueue(ctx, studentID, 1)
		require.NoError(t, err)
	}

	head, err := env.service.PopNext(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, head)
	assert.Equal(t, int64(101), head.StudentID)

	// Оставшийся сдвинут на позицию 1
	entries, err := env.service.ListForSlot(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(102), entries[0].StudentID)
	assert.Equal(t, 1, entries[0].Priority)

	head, err = env.service.PopNext(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(102), head.StudentID)

	head, err = env.service.PopNext(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, head)
}

func TestPopNext_SkipsExpiredEntries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.repo.Create(ctx, &domain.WaitlistEntry{
		StudentID: 101, SlotID: 1, Priority: 1,
		ExpiresAt: env.clock.now.Add(-time.Minute),
	})
	require.NoError(t, err)
	_, err = env.repo.Create(ctx, &domain.WaitlistEntry{
		StudentID: 102, SlotID: 1, Priority: 2,
		ExpiresAt: env.clock.now.Add(time.Hour),
	})
	require.NoError(t, err)

	head, err := env.service.PopNext(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, head)
	assert.Equal(t, int64(102), head.StudentID)
}

func TestRemoveExpired_ReturnsRemovedEntries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.repo.Create(ctx, &domain.WaitlistEntry{
		StudentID: 101, SlotID: 1, Priority: 1,
		ExpiresAt: env.clock.now.Add(-2 * time.Minute),
	})
	require.NoError(t, err)
	_, err = env.repo.Create(ctx, &domain.WaitlistEntry{
		StudentID: 102, SlotID: 1, Priority: 2,
		ExpiresAt: env.clock.now.Add(-time.Minute),
	})
	require.NoError(t, err)
	_, err = env.repo.Create(ctx, &domain.WaitlistEntry{
		StudentID: 103, SlotID: 1, Priority: 3,
		ExpiresAt: env.clock.now.Add(time.Hour),
	})
	require.NoError(t, err)

	removed, err := env.service.RemoveExpired(ctx, 1)
	require.NoError(t, err)
	require.Len(t, removed, 2)

	// Активная запись сдвинута на позицию 1
	entries, err := env.service.ListForSlot(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(103), entries[0].StudentID)
	assert.Equal(t, 1, entries[0].Priority)

	// Повторный запуск ничего не находит
	removed, err = env.service.RemoveExpired(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestListForStudent_ReturnsOwnEntriesOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	startTime, err := types.NewTimeStringFromString("15:00")
	require.NoError(t, err)
	env.slots.slots[2] = &domain.Slot{
		ID:              2,
		BranchID:        1,
		SlotDate:        time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
		StartTime:       startTime,
		DurationMinutes: 60,
		Capacity:        1,
	}

	_, err = env.service.Enqueue(ctx, 101, 1)
	require.NoError(t, err)
	_, err = env.service.Enqueue(ctx, 101, 2)
	require.NoError(t, err)
	_, err = env.service.Enqueue(ctx, 102, 1)
	require.NoError(t, err)

	entries, err := env.service.ListForStudent(ctx, 101)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	for _, entry := range entries {
		assert.Equal(t, int64(101), entry.StudentID)
	}
}
