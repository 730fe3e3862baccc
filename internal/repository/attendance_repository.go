package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/model"
)

// AttendanceRepository handles attendance record data access. The table
// carries a UNIQUE (event_id, student_id) constraint, so marking is always an
// upsert.
type AttendanceRepository struct {
	pool *pgxpool.Pool
}

// NewAttendanceRepository creates a new AttendanceRepository.
func NewAttendanceRepository(pool *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

const attendanceColumns = `id, event_id, student_id, promotion_id, attended,
	attended_at, marked_by, notes, created_at, updated_at`

func scanAttendance(row pgx.Row) (*model.AttendanceRecord, error) {
	rec := &model.AttendanceRecord{}
	err := row.Scan(&rec.ID, &rec.EventID, &rec.StudentID, &rec.PromotionID, &rec.Attended,
		&rec.AttendedAt, &rec.MarkedBy, &rec.Notes, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Upsert inserts or replaces the record for (event, student). attended_at is
// stamped only when attended is true, and cleared otherwise.
func (r *AttendanceRepository) Upsert(ctx context.Context, rec *model.AttendanceRecord) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO attendance_records (event_id, student_id, promotion_id, attended, attended_at, marked_by, notes)
		 VALUES ($1, $2, $3, $4, CASE WHEN $4 THEN NOW() END, $5, $6)
		 ON CONFLICT (event_id, student_id) DO UPDATE
		 SET attended = EXCLUDED.attended,
		     attended_at = CASE WHEN EXCLUDED.attended THEN NOW() END,
		     promotion_id = EXCLUDED.promotion_id,
		     marked_by = EXCLUDED.marked_by,
		     notes = EXCLUDED.notes,
		     updated_at = CURRENT_TIMESTAMP
		 RETURNING id, attended_at, created_at, updated_at`,
		rec.EventID, rec.StudentID, rec.PromotionID, rec.Attended, rec.MarkedBy, rec.Notes,
	).Scan(&rec.ID, &rec.AttendedAt, &rec.CreatedAt, &rec.UpdatedAt)
}

// BulkUpsert marks a whole batch in one UNNEST statement with the same
// conflict semantics as Upsert. Calling it twice with the same payload leaves
// one record per (event, student) pair holding the latest values.
func (r *AttendanceRepository) BulkUpsert(ctx context.Context, records []model.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}

	n := len(records)
	eventIDs := make([]uuid.UUID, n)
	studentIDs := make([]int, n)
	promotionIDs := make([]int, n)
	attendeds := make([]bool, n)
	markedBys := make([]*int, n)
	notes := make([]string, n)

	for i, rec := range records {
		eventIDs[i] = rec.EventID
		studentIDs[i] = rec.StudentID
		promotionIDs[i] = rec.PromotionID
		attendeds[i] = rec.Attended
		markedBys[i] = rec.MarkedBy
		notes[i] = rec.Notes
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO attendance_records (event_id, student_id, promotion_id, attended, attended_at, marked_by, notes)
		 SELECT u.event_id, u.student_id, u.promotion_id, u.attended,
		        CASE WHEN u.attended THEN NOW() END, u.marked_by, u.notes
		 FROM UNNEST($1::uuid[], $2::int[], $3::int[], $4::bool[], $5::int[], $6::text[])
		      AS u (event_id, student_id, promotion_id, attended, marked_by, notes)
		 ON CONFLICT (event_id, student_id) DO UPDATE
		 SET attended = EXCLUDED.attended,
		     attended_at = CASE WHEN EXCLUDED.attended THEN NOW() END,
		     promotion_id = EXCLUDED.promotion_id,
		     marked_by = EXCLUDED.marked_by,
		     notes = EXCLUDED.notes,
		     updated_at = CURRENT_TIMESTAMP`,
		eventIDs, studentIDs, promotionIDs, attendeds, markedBys, notes)
	return err
}

// ListByEvent returns all records for one event.
func (r *AttendanceRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.AttendanceRecord, error) {
	return r.queryRecords(ctx,
		`SELECT `+attendanceColumns+` FROM attendance_records
		 WHERE event_id = $1 ORDER BY student_id`, eventID)
}

// ListByStudent returns a student's records in a promotion, newest event
// first, capped at limit. Ordering follows the event start time so the
// consecutive-absence scan sees the most recent sessions first.
func (r *AttendanceRepository) ListByStudent(ctx context.Context, promotionID, studentID, limit int) ([]model.AttendanceRecord, error) {
	return r.queryRecords(ctx,
		`SELECT ar.id, ar.event_id, ar.student_id, ar.promotion_id, ar.attended,
		        ar.attended_at, ar.marked_by, ar.notes, ar.created_at, ar.updated_at
		 FROM attendance_records ar
		 JOIN events e ON e.id = ar.event_id
		 WHERE ar.promotion_id = $1 AND ar.student_id = $2
		 ORDER BY e.start_at DESC
		 LIMIT $3`, promotionID, studentID, limit)
}

// ListByPromotionSince returns all records of a promotion whose event started
// at or after the cutoff, oldest first.
func (r *AttendanceRepository) ListByPromotionSince(ctx context.Context, promotionID int, since time.Time) ([]model.AttendanceRecord, error) {
	return r.queryRecords(ctx,
		`SELECT ar.id, ar.event_id, ar.student_id, ar.promotion_id, ar.attended,
		        ar.attended_at, ar.marked_by, ar.notes, ar.created_at, ar.updated_at
		 FROM attendance_records ar
		 JOIN events e ON e.id = ar.event_id
		 WHERE ar.promotion_id = $1 AND e.start_at >= $2
		 ORDER BY e.start_at`, promotionID, since)
}

// CountByStudent returns (attended, total) for a student in a promotion.
func (r *AttendanceRepository) CountByStudent(ctx context.Context, promotionID, studentID int) (attended, total int, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE attended), COUNT(*)
		 FROM attendance_records
		 WHERE promotion_id = $1 AND student_id = $2`, promotionID, studentID,
	).Scan(&attended, &total)
	return attended, total, err
}

func (r *AttendanceRepository) queryRecords(ctx context.Context, query string, args ...interface{}) ([]model.AttendanceRecord, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.AttendanceRecord
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}
