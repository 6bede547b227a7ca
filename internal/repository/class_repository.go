package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/papergen/papergen-backend/internal/model"
)

// ClassRepository handles class data access. The embedded lesson entries
// (with fanned-out exam ids) live in a JSONB column.
type ClassRepository struct {
	pool *pgxpool.Pool
}

// NewClassRepository creates a new ClassRepository.
func NewClassRepository(pool *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{pool: pool}
}

const classColumns = `id, name, code, start_year, end_year, lessons, owner_id, created_at, updated_at`

// GetByID retrieves a class by its UUID.
func (r *ClassRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Class, error) {
	c := &model.Class{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+classColumns+` FROM classes WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Code, &c.StartYear, &c.EndYear, &c.Lessons,
		&c.OwnerID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ExistsByCode reports whether the owner already has a class with this code.
func (r *ClassRepository) ExistsByCode(ctx context.Context, ownerID int, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM classes WHERE owner_id = $1 AND code = $2)`,
		ownerID, code).Scan(&exists)
	return exists, err
}

// ListPaginated retrieves classes with pagination. Pass ownerID=0 for all.
func (r *ClassRepository) ListPaginated(ctx context.Context, ownerID, limit, offset int, search string) ([]model.Class, int, error) {
	where := `WHERE ($1 = 0 OR owner_id = $1)
	          AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR code ILIKE '%' || $2 || '%')`

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM classes `+where, ownerID, search).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+classColumns+` FROM classes `+where+`
		 ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		ownerID, search, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	classes, err := collectClasses(rows)
	return classes, total, err
}

// ListByLesson retrieves every class embedding the given lesson. Used by the
// fan-out worker to find the consumers of a lesson's exam-list change.
func (r *ClassRepository) ListByLesson(ctx context.Context, lessonID uuid.UUID) ([]model.Class, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+classColumns+` FROM classes
		 WHERE lessons @> jsonb_build_array(jsonb_build_object('lesson_id', $1::text))`,
		lessonID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectClasses(rows)
}

// Create inserts a new class.
func (r *ClassRepository) Create(ctx context.Context, c *model.Class) error {
	if c.Lessons == nil {
		c.Lessons = []model.ClassLesson{}
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO classes (name, code, start_year, end_year, lessons, owner_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		c.Name, c.Code, c.StartYear, c.EndYear, c.Lessons, c.OwnerID,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// Update modifies an existing class, embedded lessons included.
func (r *ClassRepository) Update(ctx context.Context, c *model.Class) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE classes
		 SET name = $1, code = $2, start_year = $3, end_year = $4, lessons = $5, updated_at = NOW()
		 WHERE id = $6`,
		c.Name, c.Code, c.StartYear, c.EndYear, c.Lessons, c.ID)
	return err
}

// Delete removes a class.
func (r *ClassRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM classes WHERE id = $1`, id)
	return err
}

func collectClasses(rows pgx.Rows) ([]model.Class, error) {
	var classes []model.Class
	for rows.Next() {
		var c model.Class
		if err := rows.Scan(&c.ID, &c.Name, &c.Code, &c.StartYear, &c.EndYear, &c.Lessons,
			&c.OwnerID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}
