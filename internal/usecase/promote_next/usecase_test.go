package promote_next

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-EnrollmentService/internal/domain"
	slotRepository "github.com/m04kA/SMC-EnrollmentService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-EnrollmentService/pkg/keymutex"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeSlotRepo struct {
	slots map[int64]*domain.Slot
}

func (r *fakeSlotRepo) GetByID(_ context.Context, id int64) (*domain.Slot, error) {
	slot, ok := r.slots[id]
	if !ok {
		return nil, slotRepository.ErrSlotNotFound
	}
	return slot, nil
}

type fakeBookingRepo struct {
	nextID  int64
	count   int
	created []*domain.Booking
}

func (r *fakeBookingRepo) Create(_ context.Context, booking *domain.Booking) (*domain.Booking, error) {
	r.nextID++
	stored := *booking
	stored.ID = r.nextID
	stored.CreatedAt = time.Now()
	r.created = append(r.created, &stored)
	r.count++
	return &stored, nil
}

func (r *fakeBookingRepo) CountSeatOccupying(_ context.Context, slotID int64) (int, error) {
	return r.count, nil
}

type fakeQueue struct {
	entries []*domain.WaitlistEntry
}

func (q *fakeQueue) PopNext(_ context.Context, slotID int64) (*domain.WaitlistEntry, error) {
	for i, entry := range q.entries {
		if entry.SlotID == slotID {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return entry, nil
		}
	}
	return nil, nil
}

type fakeNotifier struct {
	sent []domain.NotificationKind
	err  error
}

func (n *fakeNotifier) NotifyWithGracefulDegradation(_ context.Context, _ int64, kind domain.NotificationKind, _ map[string]string) error {
	n.sent = append(n.sent, kind)
	return n.err
}

type countingMetrics struct {
	promotions           int
	notificationFailures int
}

func (m *countingMetrics) IncPromotion()           { m.promotions++ }
func (m *countingMetrics) IncNotificationFailure() { m.notificationFailures++ }

type testEnv struct {
	useCase  *UseCase
	bookings *fakeBookingRepo
	queue    *fakeQueue
	notifier *fakeNotifier
	metrics  *countingMetrics
}

func newTestEnv(t *testing.T, capacity int) *testEnv {
	t.Helper()

	env := &testEnv{
		bookings: &fakeBookingRepo{},
		queue:    &fakeQueue{},
		notifier: &fakeNotifier{},
		metrics:  &countingMetrics{},
	}

	slots := &fakeSlotRepo{slots: map[int64]*domain.Slot{
		1: {ID: 1, BranchID: 1, Capacity: capacity},
	}}

	env.useCase = NewUseCase(
		slots,
		env.bookings,
		env.queue,
		env.notifier,
		fakeTxManager{},
		keymutex.New(),
		env.metrics,
		nopLogger{},
	)

	return env
}

func TestExecute_PromotesHeadOfQueue(t *testing.T) {
	env := newTestEnv(t, 2)
	env.bookings.count = 1
	env.queue.entries = []*domain.WaitlistEntry{
		{ID: 1, StudentID: 101, SlotID: 1, Priority: 1},
		{ID: 2, StudentID: 102, SlotID: 1, Priority: 2},
	}

	booking, err := env.useCase.Execute(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, booking)

	assert.Equal(t, int64(101), booking.StudentID)
	assert.Equal(t, domain.StatusConfirmed, booking.Status)
	assert.Equal(t, 1, env.metrics.promotions)

	require.Len(t, env.notifier.sent, 1)
	assert.Equal(t, domain.NotificationPromoted, env.notifier.sent[0])

	// Второй в очереди остался
	require.Len(t, env.queue.entries, 1)
	assert.Equal(t, int64(102), env.queue.entries[0].StudentID)
}

func TestExecute_EmptyQueue(t *testing.T) {
	env := newTestEnv(t, 2)

	booking, err := env.useCase.Execute(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, booking)
	assert.Empty(t, env.bookings.created)
	assert.Zero(t, env.metrics.promotions)
}

func TestExecute_CapacityExceededLeavesQueueIntact(t *testing.T) {
	env := newTestEnv(t, 1)
	env.bookings.count = 1
	env.queue.entries = []*domain.WaitlistEntry{
		{ID: 1, StudentID: 101, SlotID: 1, Priority: 1},
	}

	_, err := env.useCase.Execute(context.Background(), 1)
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	// Очередь не тронута, бронирование не создано
	require.Len(t, env.queue.entries, 1)
	assert.Empty(t, env.bookings.created)
	assert.Empty(t, env.notifier.sent)
}

func TestExecute_SlotNotFound(t *testing.T) {
	env := newTestEnv(t, 2)

	_, err := env.useCase.Execute(context.Background(), 999)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestExecute_NotificationFailureDoesNotFailPromotion(t *testing.T) {
	env := newTestEnv(t, 2)
	env.queue.entries = []*domain.WaitlistEntry{
		{ID: 1, StudentID: 101, SlotID: 1, Priority: 1},
	}
	env.notifier.err = assert.AnError

	booking, err := env.useCase.Execute(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, booking)
	assert.Equal(t, 1, env.metrics.notificationFailures)
}
