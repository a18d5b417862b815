package repository

import (
	"context"

	"selfreg-backend/internal/db"
	"selfreg-backend/internal/domain"
)

type UtilityRepository struct {
	DB *db.Postgres
}

func (r UtilityRepository) List(ctx context.Context, activeOnly bool) ([]domain.Utility, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, name, url, description, is_active, created_at, updated_at
		FROM utilities
		WHERE NOT $1 OR is_active
		ORDER BY name ASC
	`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []domain.Utility
	for rows.Next() {
		var u domain.Utility
		if err := rows.Scan(&u.ID, &u.Name, &u.URL, &u.Description, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

func (r UtilityRepository) Create(ctx context.Context, in domain.Utility) (*domain.Utility, error) {
	var u domain.Utility
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO utilities (name, url, description, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4, now(), now())
		RETURNING id, name, url, description, is_active, created_at, updated_at
	`, in.Name, in.URL, in.Description, in.IsActive).Scan(&u.ID, &u.Name, &u.URL, &u.Description, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r UtilityRepository) Update(ctx context.Context, in domain.Utility) (*domain.Utility, error) {
	var u domain.Utility
	err := r.DB.Pool.QueryRow(ctx, `
		UPDATE utilities SET name = $2, url = $3, description = $4, is_active = $5, updated_at = now()
		WHERE id = $1
		RETURNING id, name, url, description, is_active, created_at, updated_at
	`, in.ID, in.Name, in.URL, in.Description, in.IsActive).Scan(&u.ID, &u.Name, &u.URL, &u.Description, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r UtilityRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `DELETE FROM utilities WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
