package repository

import (
	"context"

	"selfreg-backend/internal/db"
	"selfreg-backend/internal/domain"
)

type PanchayathRepository struct {
	DB *db.Postgres
}

// List returns all panchayaths ordered by district then name.
func (r PanchayathRepository) List(ctx context.Context) ([]domain.Panchayath, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, name, district, created_at, updated_at
		FROM panchayaths
		ORDER BY district ASC, name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Panchayath
	for rows.Next() {
		var p domain.Panchayath
		if err := rows.Scan(&p.ID, &p.Name, &p.District, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r PanchayathRepository) Create(ctx context.Context, in domain.Panchayath) (*domain.Panchayath, error) {
	var p domain.Panchayath
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO panchayaths (name, district, created_at, updated_at)
		VALUES ($1, $2, now(), now())
		RETURNING id, name, district, created_at, updated_at
	`, in.Name, in.District).Scan(&p.ID, &p.Name, &p.District, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r PanchayathRepository) Update(ctx context.Context, in domain.Panchayath) (*domain.Panchayath, error) {
	var p domain.Panchayath
	err := r.DB.Pool.QueryRow(ctx, `
		UPDATE panchayaths SET name = $2, district = $3, updated_at = now()
		WHERE id = $1
		RETURNING id, name, district, created_at, updated_at
	`, in.ID, in.Name, in.District).Scan(&p.ID, &p.Name, &p.District, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r PanchayathRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `DELETE FROM panchayaths WHERE id=$1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
