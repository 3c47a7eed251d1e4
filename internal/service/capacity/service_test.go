package capacity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-EnrollmentService/internal/domain"
	slotRepository "github.com/m04kA/SMC-EnrollmentService/internal/infra/storage/slot"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

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
	counts map[int64]int
}

func (r *fakeBookingRepo) CountSeatOccupying(_ context.Context, slotID int64) (int, error) {
	return r.counts[slotID], nil
}

func TestHasCapacity(t *testing.T) {
	slots := &fakeSlotRepo{slots: map[int64]*domain.Slot{
		1: {ID: 1, Capacity: 2},
		2: {ID: 2, Capacity: 2},
	}}
	bookings := &fakeBookingRepo{counts: map[int64]int{1: 1, 2: 2}}

	svc := NewService(slots, bookings, nopLogger{})

	hasCapacity, err := svc.HasCapacity(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, hasCapacity)

	hasCapacity, err = svc.HasCapacity(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, hasCapacity)
}

func TestHasCapacity_UnknownSlotFailsClosed(t *testing.T) {
	svc := NewService(
		&fakeSlotRepo{slots: map[int64]*domain.Slot{}},
		&fakeBookingRepo{counts: map[int64]int{}},
		nopLogger{},
	)

	hasCapacity, err := svc.HasCapacity(context.Background(), 999)
	require.NoError(t, err)
	assert.False(t, hasCapacity)
}
