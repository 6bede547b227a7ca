package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/papergen/papergen-backend/internal/model"
)

// QuestionRepository handles question-bank data access. Answer choices are
// stored embedded as JSONB, mirroring the document shape of the domain.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

const questionColumns = `id, chapter_id, content, picture, remark, level, category, answers, owner_id, enable, status, created_at, updated_at`

// GetByID retrieves a question by its UUID.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q := &model.Question{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = $1`, id,
	).Scan(&q.ID, &q.ChapterID, &q.Content, &q.Picture, &q.Remark, &q.Level,
		&q.Category, &q.Answers, &q.OwnerID, &q.Enable, &q.Status, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// ListByChapter retrieves all questions of a chapter.
func (r *QuestionRepository) ListByChapter(ctx context.Context, chapterID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions
		 WHERE chapter_id = $1
		 ORDER BY created_at`, chapterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQuestions(rows)
}

// ListByChapterAndLevel retrieves the enabled questions of one
// chapter+level bucket. This is the pool the sampler draws from.
func (r *QuestionRepository) ListByChapterAndLevel(ctx context.Context, chapterID uuid.UUID, level model.Level) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions
		 WHERE chapter_id = $1 AND level = $2 AND enable = TRUE
		 ORDER BY created_at`, chapterID, level)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQuestions(rows)
}

// ListByIDs retrieves the questions with the given ids.
func (r *QuestionRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQuestions(rows)
}

// Create inserts a new question with its embedded answers.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (chapter_id, content, picture, remark, level, category, answers, owner_id, enable, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at, updated_at`,
		q.ChapterID, q.Content, q.Picture, q.Remark, q.Level, q.Category,
		q.Answers, q.OwnerID, q.Enable, q.Status,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// Update replaces a question's mutable fields, answers included.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE questions
		 SET chapter_id = $1, content = $2, picture = $3, remark = $4, level = $5,
		     answers = $6, enable = $7, status = $8, updated_at = NOW()
		 WHERE id = $9`,
		q.ChapterID, q.Content, q.Picture, q.Remark, q.Level,
		q.Answers, q.Enable, q.Status, q.ID)
	return err
}

// Delete removes a question.
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	return err
}

// ReferencedByExam reports whether any generated paper snapshot still
// references this question id.
func (r *QuestionRepository) ReferencedByExam(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM exams
		   WHERE questions @> jsonb_build_array(jsonb_build_object('question_id', $1::text))
		 )`, id.String()).Scan(&exists)
	return exists, err
}

func collectQuestions(rows pgx.Rows) ([]model.Question, error) {
	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.ChapterID, &q.Content, &q.Picture, &q.Remark, &q.Level,
			&q.Category, &q.Answers, &q.OwnerID, &q.Enable, &q.Status, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
