package request_seat

import (
	"context"
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
	booked  map[[2]int64]bool
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

func (r *fakeBookingRepo) HasSeatOccupying(_ context.Context, studentID, slotID int64) (bool, error) {
	return r.booked[[2]int64{studentID, slotID}], nil
}

type fakeWaitlistRepo struct {
	waitlisted map[[2]int64]*domain.WaitlistEntry
}

func (r *fakeWaitlistRepo) GetActiveByStudentAndSlot(_ context.Context, studentID, slotID int64, _ time.Time) (*domain.WaitlistEntry, error) {
	entry, ok := r.waitlisted[[2]int64{studentID, slotID}]
	if !ok {
		return nil, waitlistRepository.ErrEntryNotFound
	}
	return entry, nil
}

type fakeWaitlistService struct {
	entries []*domain.WaitlistEntry
	err     error
}

func (s *fakeWaitlistService) Enqueue(_ context.Context, studentID, slotID int64) (*domain.WaitlistEntry, error) {
	if s.err != nil {
		return nil, s.err
	}
	entry := &domain.WaitlistEntry{
		ID:        int64(len(s.entries) + 1),
		StudentID: studentID,
		SlotID:    slotID,
		Priority:  len(s.entries) + 1,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	s.entries = append(s.entries, entry)
	return entry, nil
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
	confirmed            int
	waitlisted           int
	notificationFailures int
}

func (m *countingMetrics) IncSeatConfirmed()       { m.confirmed++ }
func (m *countingMetrics) IncStudentWaitlisted()   { m.waitlisted++ }
func (m *countingMetrics) IncNotificationFailure() { m.notificationFailures++ }

type testEnv struct {
	useCase     *UseCase
	slots       *fakeSlotRepo
	bookings    *fakeBookingRepo
	waitlist    *fakeWaitlistRepo
	waitlistSvc *fakeWaitlistService
	notifier    *fakeNotifier
	metrics     *countingMetrics
	clock       *fakeTimeProvider
}

func newTestEnv(t *testing.T, capacity int) *testEnv {
	t.Helper()

	startTime, err := types.NewTimeStringFromString("10:00")
	require.NoError(t, err)

	env := &testEnv{
		slots: &fakeSlotRepo{slots: map[int64]*domain.Slot{
			1: {
				ID:              1,
				BranchID:        1,
				SlotDate:        time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
				StartTime:       startTime,
				DurationMinutes: 60,
				Capacity:        capacity,
			},
		}},
		bookings:    &fakeBookingRepo{booked: make(map[[2]int64]bool)},
		waitlist:    &fakeWaitlistRepo{waitlisted: make(map[[2]int64]*domain.WaitlistEntry)},
		waitlistSvc: &fakeWaitlistService{},
		notifier:    &fakeNotifier{},
		metrics:     &countingMetrics{},
		clock:       &fakeTimeProvider{now: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)},
	}

	env.useCase = NewUseCase(
		env.slots,
		env.bookings,
		env.waitlist,
		env.waitlistSvc,
		env.notifier,
		fakeTxManager{},
		keymutex.New(),
		env.metrics,
		nopLogger{},
	).WithTimeProvider(env.clock)

	return env
}

func TestExecute_ConfirmsBookingWhenSeatFree(t *testing.T) {
	env := newTestEnv(t, 2)

	resp, err := env.useCase.Execute(context.Background(), &Request{StudentID: 101, SlotID: 1})
	require.NoError(t, err)

	assert.Equal(t, OutcomeConfirmed, resp.Outcome)
	require.NotNil(t, resp.Booking)
	assert.Equal(t, int64(101), resp.Booking.StudentID)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Booking.Status)
	assert.Nil(t, resp.WaitlistEntry)

	assert.Equal(t, 1, env.metrics.confirmed)
	assert.Empty(t, env.waitlistSvc.entries)
	assert.Empty(t, env.notifier.sent)
}

func TestExecute_WaitlistsStudentWhenSlotFull(t *testing.T) {
	env := newTestEnv(t, 1)
	env.bookings.count = 1

	resp, err := env.useCase.Execute(context.Background(), &Request{StudentID: 102, SlotID: 1})
	require.NoError(t, err)

	assert.Equal(t, OutcomeWaitlisted, resp.Outcome)
	require.NotNil(t, resp.WaitlistEntry)
	assert.Equal(t, 1, resp.WaitlistEntry.Priority)
	assert.Nil(t, resp.Booking)

	assert.Equal(t, 1, env.metrics.waitlisted)
	require.Len(t, env.notifier.sent, 1)
	assert.Equal(t, domain.NotificationWaitlisted, env.notifier.sent[0])
}

func TestExecute_AlreadyBooked(t *testing.T) {
	env := newTestEnv(t, 2)
	env.bookings.booked[[2]int64{101, 1}] = true

	_, err := env.useCase.Execute(context.Background(), &Request{StudentID: 101, SlotID: 1})
	assert.ErrorIs(t, err, ErrAlreadyBooked)
}

func TestExecute_AlreadyWaitlisted(t *testing.T) {
	env := newTestEnv(t, 2)
	env.waitlist.waitlisted[[2]int64{101, 1}] = &domain.WaitlistEntry{
		StudentID: 101, SlotID: 1, Priority: 1,
	}

	_, err := env.useCase.Execute(context.Background(), &Request{StudentID: 101, SlotID: 1})
	assert.ErrorIs(t, err, ErrAlreadyWaitlisted)

	// Бронирование не создано
	assert.Empty(t, env.bookings.created)
}

func TestExecute_SlotNotFound(t *testing.T) {
	env := newTestEnv(t, 2)

	_, err := env.useCase.Execute(context.Background(), &Request{StudentID: 101, SlotID: 999})
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestExecute_SlotInPast(t *testing.T) {
	env := newTestEnv(t, 2)
	env.clock.now = time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC)

	_, err := env.useCase.Execute(context.Background(), &Request{StudentID: 101, SlotID: 1})
	assert.ErrorIs(t, err, ErrSlotInPast)
}

func TestExecute_InvalidInput(t *testing.T) {
	env := newTestEnv(t, 2)

	_, err := env.useCase.Execute(context.Background(), &Request{StudentID: 0, SlotID: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.useCase.Execute(context.Background(), &Request{StudentID: 101, SlotID: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_NotificationFailureDoesNotFailRequest(t *testing.T) {
	env := newTestEnv(t, 1)
	env.bookings.count = 1
	env.notifier.err = assert.AnError

	resp, err := env.useCase.Execute(context.Background(), &Request{StudentID: 102, SlotID: 1})
	require.NoError(t, err)

	assert.Equal(t, OutcomeWaitlisted, resp.Outcome)
	assert.Equal(t, 1, env.metrics.notificationFailures)
}
