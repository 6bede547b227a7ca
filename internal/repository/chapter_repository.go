package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/papergen/papergen-backend/internal/model"
)

// ChapterRepository handles chapter data access.
type ChapterRepository struct {
	pool *pgxpool.Pool
}

// NewChapterRepository creates a new ChapterRepository.
func NewChapterRepository(pool *pgxpool.Pool) *ChapterRepository {
	return &ChapterRepository{pool: pool}
}

const chapterColumns = `id, lesson_id, name, label, description, status, enable, owner_id, created_at, updated_at`

func scanChapter(row pgx.Row) (*model.Chapter, error) {
	c := &model.Chapter{}
	err := row.Scan(&c.ID, &c.LessonID, &c.Name, &c.Label, &c.Description,
		&c.Status, &c.Enable, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetByID retrieves a chapter by its UUID.
func (r *ChapterRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Chapter, error) {
	return scanChapter(r.pool.QueryRow(ctx,
		`SELECT `+chapterColumns+` FROM chapters WHERE id = $1`, id))
}

// ListPaginated retrieves chapters with pagination and optional name search.
// Pass ownerID=0 to list across all owners (admin).
func (r *ChapterRepository) ListPaginated(ctx context.Context, ownerID, limit, offset int, search string) ([]model.Chapter, int, error) {
	where := `WHERE ($1 = 0 OR owner_id = $1 OR status = 'PUBLIC')
	          AND ($2 = '' OR name ILIKE '%' || $2 || '%')`

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM chapters `+where, ownerID, search).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+chapterColumns+` FROM chapters `+where+`
		 ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		ownerID, search, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var chapters []model.Chapter
	for rows.Next() {
		var c model.Chapter
		if err := rows.Scan(&c.ID, &c.LessonID, &c.Name, &c.Label, &c.Description,
			&c.Status, &c.Enable, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		chapters = append(chapters, c)
	}
	return chapters, total, rows.Err()
}

// Create inserts a new chapter.
func (r *ChapterRepository) Create(ctx context.Context, c *model.Chapter) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO chapters (lesson_id, name, label, description, status, enable, owner_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		c.LessonID, c.Name, c.Label, c.Description, c.Status, c.Enable, c.OwnerID,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// Update modifies an existing chapter.
func (r *ChapterRepository) Update(ctx context.Context, c *model.Chapter) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE chapters
		 SET lesson_id = $1, name = $2, label = $3, description = $4,
		     status = $5, enable = $6, updated_at = NOW()
		 WHERE id = $7`,
		c.LessonID, c.Name, c.Label, c.Description, c.Status, c.Enable, c.ID)
	return err
}

// Delete removes a chapter.
func (r *ChapterRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM chapters WHERE id = $1`, id)
	return err
}

// DetachLesson clears the lesson link on every chapter of a lesson. Used
// when the lesson itself is removed.
func (r *ChapterRepository) DetachLesson(ctx context.Context, lessonID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE chapters SET lesson_id = NULL, updated_at = NOW() WHERE lesson_id = $1`,
		lessonID)
	return err
}

// CountQuestions counts the questions stored under a chapter.
func (r *ChapterRepository) CountQuestions(ctx context.Context, chapterID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM questions WHERE chapter_id = $1`, chapterID).Scan(&n)
	return n, err
}
