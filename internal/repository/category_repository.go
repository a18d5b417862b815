package repository

import (
	"context"

	"selfreg-backend/internal/db"
	"selfreg-backend/internal/domain"
)

type CategoryRepository struct {
	DB *db.Postgres
}

const categoryColumns = `id, name, actual_fee, offer_fee, is_active, description, popup_warning, image_url, qr_image_url, created_at, updated_at`

func (r CategoryRepository) List(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE NOT $1 OR is_active
		ORDER BY name ASC
	`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

func (r CategoryRepository) Get(ctx context.Context, id int64) (*domain.Category, error) {
	row := r.DB.Pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id=$1`, id)
	c, err := scanCategory(row)
	if err != nil {
		return nil, translate(err)
	}
	return c, nil
}

func (r CategoryRepository) Create(ctx context.Context, in domain.Category) (*domain.Category, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO categories (name, actual_fee, offer_fee, is_active, description, popup_warning, image_url, qr_image_url, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8, now(), now())
		RETURNING `+categoryColumns,
		in.Name, in.ActualFee, in.OfferFee, in.IsActive, in.Description, in.PopupWarning, in.ImageURL, in.QRImageURL)
	c, err := scanCategory(row)
	if err != nil {
		return nil, translate(err)
	}
	return c, nil
}

func (r CategoryRepository) Update(ctx context.Context, in domain.Category) (*domain.Category, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE categories SET
			name = $2, actual_fee = $3, offer_fee = $4, is_active = $5, description = $6,
			popup_warning = $7, image_url = $8, qr_image_url = $9, updated_at = now()
		WHERE id = $1
		RETURNING `+categoryColumns,
		in.ID, in.Name, in.ActualFee, in.OfferFee, in.IsActive, in.Description, in.PopupWarning, in.ImageURL, in.QRImageURL)
	c, err := scanCategory(row)
	if err != nil {
		return nil, translate(err)
	}
	return c, nil
}

// Delete removes a category. Categories still referenced by registrations fail with ErrInvalidReference.
func (r CategoryRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCategory(row rowScanner) (*domain.Category, error) {
	var c domain.Category
	if err := row.Scan(&c.ID, &c.Name, &c.ActualFee, &c.OfferFee, &c.IsActive, &c.Description, &c.PopupWarning, &c.ImageURL, &c.QRImageURL, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
