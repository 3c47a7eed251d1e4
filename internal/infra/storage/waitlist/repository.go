package waitlist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-EnrollmentService/internal/domain"
	"github.com/m04kA/SMC-EnrollmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-EnrollmentService/pkg/psqlbuilder"
)

// Repository репозиторий для работы с записями листа ожидания
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория листа ожидания
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую запись листа ожидания
func (r *Repository) Create(ctx context.Context, entry *domain.WaitlistEntry) (*domain.WaitlistEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("waitlist_entries").
		Columns(
			"student_id",
			"slot_id",
			"priority",
			"expires_at",
		).
		Values(
			entry.StudentID,
			entry.SlotID,
			entry.Priority,
			entry.ExpiresAt,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&entry.ID,
		&createdAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	entry.CreatedAt = createdAt.Time

	return entry, nil
}

// GetActiveBySlot получает непросроченные записи слота по возрастанию priority
// Внутри транзакции строки блокируются через FOR UPDATE
func (r *Repository) GetActiveBySlot(ctx context.Context, slotID int64, now time.Time) ([]*domain.WaitlistEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"id",
		"student_id",
		"slot_id",
		"priority",
		"created_at",
		"expires_at",
	).
		From("waitlist_entries").
		Where(squirrel.Eq{"slot_id": slotID}).
		Where(squirrel.Gt{"expires_at": now}).
		OrderBy("priority ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveBySlot - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveBySlot - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanEntries(rows, "GetActiveBySlot")
}

// GetActiveByStudent получает непросроченные записи студента,
// отсортированные от новых к старым
func (r *Repository) GetActiveByStudent(ctx context.Context, studentID int64, now time.Time) ([]*domain.WaitlistEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"student_id",
		"slot_id",
		"priority",
		"created_at",
		"expires_at",
	).
		From("waitlist_entries").
		Where(squirrel.Eq{"student_id": studentID}).
		Where(squirrel.Gt{"expires_at": now}).
		OrderBy("created_at DESC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByStudent - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByStudent - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanEntries(rows, "GetActiveByStudent")
}

// GetActiveByStudentAndSlot получает активную запись студента на слот
func (r *Repository) GetActiveByStudentAndSlot(ctx context.Context, studentID, slotID int64, now time.Time) (*domain.WaitlistEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"student_id",
		"slot_id",
		"priority",
		"created_at",
		"expires_at",
	).
		From("waitlist_entries").
		Where(squirrel.Eq{"student_id": studentID, "slot_id": slotID}).
		Where(squirrel.Gt{"expires_at": now}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByStudentAndSlot - build select query: %v", ErrBuildQuery, err)
	}

	var entry domain.WaitlistEntry
	var createdAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&entry.ID,
		&entry.StudentID,
		&entry.SlotID,
		&entry.Priority,
		&createdAt,
		&entry.ExpiresAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByStudentAndSlot - scan entry: %v", ErrScanRow, err)
	}

	entry.CreatedAt = createdAt.Time

	return &entry, nil
}

// CountActiveBySlot подсчитывает непросроченные записи слота
func (r *Repository) CountActiveBySlot(ctx context.Context, slotID int64, now time.Time) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("waitlist_entries").
		Where(squirrel.Eq{"slot_id": slotID}).
		Where(squirrel.Gt{"expires_at": now}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CountActiveBySlot - build count query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountActiveBySlot - scan count: %v", ErrScanRow, err)
	}

	return count, nil
}

// GetExpiredBySlot получает просроченные записи слота по убыванию priority
// Убывание важно: последовательный Delete + ShiftPrioritiesAfter не ломает
// приоритеты ещё не обработанных записей
func (r *Repository) GetExpiredBySlot(ctx context.Context, slotID int64, now time.Time) ([]*domain.WaitlistEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"student_id",
		"slot_id",
		"priority",
		"created_at",
		"expires_at",
	).
		From("waitlist_entries").
		Where(squirrel.Eq{"slot_id": slotID}).
		Where(squirrel.LtOrEq{"expires_at": now}).
		OrderBy("priority DESC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetExpiredBySlot - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetExpiredBySlot - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanEntries(rows, "GetExpiredBySlot")
}

// GetExpiredSlotIDs получает ID слотов, у которых есть просроченные записи
// Используется sweeper-ом, чтобы обрабатывать слоты по одному под per-slot блокировкой
func (r *Repository) GetExpiredSlotIDs(ctx context.Context, now time.Time) ([]int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("DISTINCT slot_id").
		From("waitlist_entries").
		Where(squirrel.LtOrEq{"expires_at": now}).
		OrderBy("slot_id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetExpiredSlotIDs - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetExpiredSlotIDs - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	slotIDs := make([]int64, 0)
	for rows.Next() {
		var slotID int64
		if err := rows.Scan(&slotID); err != nil {
			return nil, fmt.Errorf("%w: GetExpiredSlotIDs - scan slot_id: %v", ErrScanRow, err)
		}
		slotIDs = append(slotIDs, slotID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetExpiredSlotIDs - rows error: %v", ErrScanRow, err)
	}

	return slotIDs, nil
}

// Delete удаляет запись листа ожидания
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("waitlist_entries").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrEntryNotFound
	}

	return nil
}

// ShiftPrioritiesAfter сдвигает на единицу вниз приоритеты записей слота,
// стоявших позже удаленной позиции
func (r *Repository) ShiftPrioritiesAfter(ctx context.Context, slotID int64, priority int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("waitlist_entries").
		Set("priority", squirrel.Expr("priority - 1")).
		Where(squirrel.Eq{"slot_id": slotID}).
		Where(squirrel.Gt{"priority": priority}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: ShiftPrioritiesAfter - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: ShiftPrioritiesAfter - execute update: %v", ErrExecQuery, err)
	}

	return nil
}

// scanEntries сканирует результаты запроса в слайс записей
func (r *Repository) scanEntries(rows *sql.Rows, method string) ([]*domain.WaitlistEntry, error) {
	entries := make([]*domain.WaitlistEntry, 0)

	for rows.Next() {
		var entry domain.WaitlistEntry
		var createdAt sql.NullTime

		err := rows.Scan(
			&entry.ID,
			&entry.StudentID,
			&entry.SlotID,
			&entry.Priority,
			&createdAt,
			&entry.ExpiresAt,
		)

		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, method, err)
		}

		entry.CreatedAt = createdAt.Time

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, method, err)
	}

	return entries, nil
}
