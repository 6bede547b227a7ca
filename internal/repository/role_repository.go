package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/papergen/papergen-backend/internal/model"
)

// RoleRepository handles role and permission data access.
type RoleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository creates a new RoleRepository.
func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

// GetByID retrieves a role by id.
func (r *RoleRepository) GetByID(ctx context.Context, id int) (*model.Role, error) {
	role := &model.Role{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, is_admin FROM roles WHERE id = $1`, id,
	).Scan(&role.ID, &role.Name, &role.IsAdmin)
	if err != nil {
		return nil, err
	}
	return role, nil
}

// GetByName retrieves a role by name, creating it if absent.
func (r *RoleRepository) GetByName(ctx context.Context, name string, isAdmin bool) (*model.Role, error) {
	role := &model.Role{}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO roles (name, is_admin) VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id, name, is_admin`, name, isAdmin,
	).Scan(&role.ID, &role.Name, &role.IsAdmin)
	if err != nil {
		return nil, err
	}
	return role, nil
}

// PermissionCodes retrieves the permission codes attached to a role.
func (r *RoleRepository) PermissionCodes(ctx context.Context, roleID int) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.code FROM permissions p
		 JOIN role_permissions rp ON rp.permission_id = p.id
		 WHERE rp.role_id = $1
		 ORDER BY p.code`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// GrantAll attaches every known permission to a role.
func (r *RoleRepository) GrantAll(ctx context.Context, roleID int) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO role_permissions (role_id, permission_id)
		 SELECT $1, id FROM permissions
		 ON CONFLICT DO NOTHING`, roleID)
	return err
}
