package repository

import (
	"context"
	"time"

	"selfreg-backend/internal/db"
	"selfreg-backend/internal/domain"
	"selfreg-backend/internal/ports"
)

type AdminUserRepository struct {
	DB *db.Postgres
}

const adminColumns = `id, username, password_hash, role, is_active, last_login, created_at, updated_at`

func (r AdminUserRepository) Create(ctx context.Context, p ports.CreateAdminParams) (*domain.AdminUser, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO admin_users (username, password_hash, role, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4, now(), now())
		RETURNING `+adminColumns,
		p.Username, p.PasswordHash, string(p.Role), p.IsActive)
	u, err := scanAdmin(row)
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}

func (r AdminUserRepository) GetByUsername(ctx context.Context, username string) (*domain.AdminUser, error) {
	row := r.DB.Pool.QueryRow(ctx, `SELECT `+adminColumns+` FROM admin_users WHERE lower(username)=lower($1)`, username)
	u, err := scanAdmin(row)
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}

func (r AdminUserRepository) GetByID(ctx context.Context, id int64) (*domain.AdminUser, error) {
	row := r.DB.Pool.QueryRow(ctx, `SELECT `+adminColumns+` FROM admin_users WHERE id=$1`, id)
	u, err := scanAdmin(row)
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}

func (r AdminUserRepository) List(ctx context.Context) ([]domain.AdminUser, error) {
	rows, err := r.DB.Pool.Query(ctx, `SELECT `+adminColumns+` FROM admin_users ORDER BY username ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []domain.AdminUser
	for rows.Next() {
		u, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *u)
	}
	return items, rows.Err()
}

func (r AdminUserRepository) Update(ctx context.Context, id int64, p ports.UpdateAdminParams) (*domain.AdminUser, error) {
	var role *string
	if p.Role != nil {
		s := string(*p.Role)
		role = &s
	}
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE admin_users SET
			password_hash = COALESCE($2, password_hash),
			role = COALESCE($3, role),
			is_active = COALESCE($4, is_active),
			updated_at = now()
		WHERE id = $1
		RETURNING `+adminColumns,
		id, p.PasswordHash, role, p.IsActive)
	u, err := scanAdmin(row)
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}

func (r AdminUserRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `DELETE FROM admin_users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r AdminUserRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := r.DB.Pool.Exec(ctx, `UPDATE admin_users SET last_login=$2 WHERE id=$1`, id, at)
	return err
}

func (r AdminUserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM admin_users`).Scan(&n)
	return n, err
}

func scanAdmin(row rowScanner) (*domain.AdminUser, error) {
	var (
		u    domain.AdminUser
		role string
	)
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&role,
		&u.IsActive,
		&u.LastLogin,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.Role = domain.AdminRole(role)
	return &u, nil
}
