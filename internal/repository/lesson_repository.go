package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/papergen/papergen-backend/internal/model"
)

// LessonRepository handles lesson data access.
type LessonRepository struct {
	pool *pgxpool.Pool
}

// NewLessonRepository creates a new LessonRepository.
func NewLessonRepository(pool *pgxpool.Pool) *LessonRepository {
	return &LessonRepository{pool: pool}
}

const lessonColumns = `id, name, label, description, status, enable, chapter_ids, exam_ids, owner_id, version, created_at, updated_at`

// GetByID retrieves a lesson by its UUID.
func (r *LessonRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Lesson, error) {
	l := &model.Lesson{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+lessonColumns+` FROM lessons WHERE id = $1`, id,
	).Scan(&l.ID, &l.Name, &l.Label, &l.Description, &l.Status, &l.Enable,
		&l.ChapterIDs, &l.ExamIDs, &l.OwnerID, &l.Version, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// ListPaginated retrieves lessons with pagination and optional name search.
// Pass ownerID=0 to list across all owners (admin).
func (r *LessonRepository) ListPaginated(ctx context.Context, ownerID, limit, offset int, search string) ([]model.Lesson, int, error) {
	where := `WHERE ($1 = 0 OR owner_id = $1 OR status = 'PUBLIC')
	          AND ($2 = '' OR name ILIKE '%' || $2 || '%')`

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM lessons `+where, ownerID, search).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+lessonColumns+` FROM lessons `+where+`
		 ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		ownerID, search, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var lessons []model.Lesson
	for rows.Next() {
		var l model.Lesson
		if err := rows.Scan(&l.ID, &l.Name, &l.Label, &l.Description, &l.Status, &l.Enable,
			&l.ChapterIDs, &l.ExamIDs, &l.OwnerID, &l.Version, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, 0, err
		}
		lessons = append(lessons, l)
	}
	return lessons, total, rows.Err()
}

// Create inserts a new lesson.
func (r *LessonRepository) Create(ctx context.Context, l *model.Lesson) error {
	if l.ChapterIDs == nil {
		l.ChapterIDs = []uuid.UUID{}
	}
	if l.ExamIDs == nil {
		l.ExamIDs = []uuid.UUID{}
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO lessons (name, label, description, status, enable, chapter_ids, exam_ids, owner_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, version, created_at, updated_at`,
		l.Name, l.Label, l.Description, l.Status, l.Enable, l.ChapterIDs, l.ExamIDs, l.OwnerID,
	).Scan(&l.ID, &l.Version, &l.CreatedAt, &l.UpdatedAt)
}

// Update modifies a lesson's metadata fields.
func (r *LessonRepository) Update(ctx context.Context, l *model.Lesson) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE lessons
		 SET name = $1, label = $2, description = $3, status = $4, enable = $5, updated_at = NOW()
		 WHERE id = $6`,
		l.Name, l.Label, l.Description, l.Status, l.Enable, l.ID)
	return err
}

// Delete removes a lesson.
func (r *LessonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM lessons WHERE id = $1`, id)
	return err
}

// AddChapter links a chapter into the lesson's chapter-id list.
func (r *LessonRepository) AddChapter(ctx context.Context, lessonID, chapterID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE lessons
		 SET chapter_ids = array_append(chapter_ids, $1), updated_at = NOW()
		 WHERE id = $2 AND NOT ($1 = ANY(chapter_ids))`,
		chapterID, lessonID)
	return err
}

// RemoveChapter unlinks a chapter from the lesson's chapter-id list.
func (r *LessonRepository) RemoveChapter(ctx context.Context, lessonID, chapterID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE lessons
		 SET chapter_ids = array_remove(chapter_ids, $1), updated_at = NOW()
		 WHERE id = $2`,
		chapterID, lessonID)
	return err
}

// AppendExamIDs appends exam ids to the lesson's exam list with a
// compare-and-swap on the version column. Returns false when the version
// moved underneath the caller, who should re-read and retry.
func (r *LessonRepository) AppendExamIDs(ctx context.Context, lessonID uuid.UUID, examIDs []uuid.UUID, expectedVersion int) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE lessons
		 SET exam_ids = exam_ids || $1, version = version + 1, updated_at = NOW()
		 WHERE id = $2 AND version = $3`,
		examIDs, lessonID, expectedVersion)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// RemoveExamID detaches one exam from the lesson's exam list.
func (r *LessonRepository) RemoveExamID(ctx context.Context, lessonID, examID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE lessons
		 SET exam_ids = array_remove(exam_ids, $1), version = version + 1, updated_at = NOW()
		 WHERE id = $2`,
		examID, lessonID)
	return err
}
