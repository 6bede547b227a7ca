package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/papergen/papergen-backend/internal/model"
)

// ExamRepository handles generated-paper data access. Question snapshots and
// realized scales are stored as JSONB and written exactly once at creation.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

const examColumns = `id, label, time_minutes, sku, max_score, scales, questions, status, enable, owner_id, lesson_id, lesson_name, created_at, updated_at`

// GetByID retrieves an exam by its UUID.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e := &model.Exam{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams WHERE id = $1`, id,
	).Scan(&e.ID, &e.Label, &e.Time, &e.SKU, &e.MaxScore, &e.Scales, &e.Questions,
		&e.Status, &e.Enable, &e.OwnerID, &e.LessonRef.LessonID, &e.LessonRef.Name,
		&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListByLesson retrieves the exams generated for a lesson.
func (r *ExamRepository) ListByLesson(ctx context.Context, lessonID uuid.UUID) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+` FROM exams
		 WHERE lesson_id = $1
		 ORDER BY created_at DESC`, lessonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectExams(rows)
}

// ListPaginated retrieves exams with pagination. Pass ownerID=0 for all.
func (r *ExamRepository) ListPaginated(ctx context.Context, ownerID, limit, offset int) ([]model.Exam, int, error) {
	where := `WHERE ($1 = 0 OR owner_id = $1 OR status = 'PUBLIC')`

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exams `+where, ownerID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+` FROM exams `+where+`
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		ownerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	exams, err := collectExams(rows)
	return exams, total, err
}

// Insert persists a freshly generated paper.
func (r *ExamRepository) Insert(ctx context.Context, e *model.Exam) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exams (label, time_minutes, sku, max_score, scales, questions, status, enable, owner_id, lesson_id, lesson_name)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at, updated_at`,
		e.Label, e.Time, e.SKU, e.MaxScore, e.Scales, e.Questions,
		e.Status, e.Enable, e.OwnerID, e.LessonRef.LessonID, e.LessonRef.Name,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// UpdateMeta modifies the mutable metadata of an exam. The snapshot columns
// are deliberately absent from this statement.
func (r *ExamRepository) UpdateMeta(ctx context.Context, e *model.Exam) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exams
		 SET label = $1, time_minutes = $2, status = $3, enable = $4,
		     lesson_id = $5, lesson_name = $6, updated_at = NOW()
		 WHERE id = $7`,
		e.Label, e.Time, e.Status, e.Enable,
		e.LessonRef.LessonID, e.LessonRef.Name, e.ID)
	return err
}

// Delete removes an exam.
func (r *ExamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM exams WHERE id = $1`, id)
	return err
}

// RefreshLessonName rewrites the denormalized lesson name on every exam of a
// lesson. Bulk update keyed on the foreign id.
func (r *ExamRepository) RefreshLessonName(ctx context.Context, lessonID uuid.UUID, name string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exams SET lesson_name = $1, updated_at = NOW() WHERE lesson_id = $2`,
		name, lessonID)
	return err
}

// CountByLesson counts the exams generated for a lesson.
func (r *ExamRepository) CountByLesson(ctx context.Context, lessonID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exams WHERE lesson_id = $1`, lessonID).Scan(&n)
	return n, err
}

func collectExams(rows pgx.Rows) ([]model.Exam, error) {
	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.Label, &e.Time, &e.SKU, &e.MaxScore, &e.Scales, &e.Questions,
			&e.Status, &e.Enable, &e.OwnerID, &e.LessonRef.LessonID, &e.LessonRef.Name,
			&e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}
